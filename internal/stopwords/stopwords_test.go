package stopwords

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/relterms/internal/hooks"
)

func writeLocale(t *testing.T, dir, locale, content string) {
	t.Helper()
	path := filepath.Join(dir, locale+FileExt)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoader_Load_ReadsLocaleFile(t *testing.T) {
	// Given: a locale file with mixed case and padding
	dir := t.TempDir()
	writeLocale(t, dir, "en_US", "- The\n- ' and '\n- of\n- ''\n")

	// When: loading it
	set := NewLoader(dir).Load("en_US")

	// Then: entries are normalised and empty ones dropped
	assert.Len(t, set, 3)
	assert.True(t, set.Contains("the"))
	assert.True(t, set.Contains("and"))
	assert.True(t, set.Contains("of"))
}

func TestLoader_Load_FlowSequence(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "nl_NL", "['de', 'het', 'een']\n")

	set := NewLoader(dir).Load("nl_NL")
	assert.Len(t, set, 3)
	assert.True(t, set.Contains("het"))
}

func TestLoader_Load_DefaultLocale(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "de_DE", "- der\n- die\n")

	set := NewLoader(dir, WithDefaultLocale("de_DE")).Load("")
	assert.True(t, set.Contains("die"))
}

func TestLoader_Load_MissingFileIsEmpty(t *testing.T) {
	set := NewLoader(t.TempDir()).Load("xx_XX")
	assert.NotNil(t, set)
	assert.Empty(t, set)
}

func TestLoader_Load_MalformedIsEmpty(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "mapping", content: "words: [a, b]\n"},
		{name: "scalar", content: "just a string\n"},
		{name: "nested sequence", content: "- [a, b]\n- c\n"},
		{name: "empty file", content: ""},
		{name: "invalid yaml", content: "[a, b\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeLocale(t, dir, "en_US", tt.content)

			assert.Empty(t, NewLoader(dir).Load("en_US"))
		})
	}
}

func TestLoader_Load_RejectsTraversal(t *testing.T) {
	// Given: a readable stop-word file outside the base directory
	root := t.TempDir()
	base := filepath.Join(root, "stopwords")
	require.NoError(t, os.MkdirAll(base, 0o755))
	writeLocale(t, root, "secret", "- leaked\n")
	writeLocale(t, base, "en_US", "- the\n")

	loader := NewLoader(base)

	// When/Then: any escaping identifier yields an empty set
	for _, locale := range []string{
		"../secret",
		"en_US/../../secret",
		"..",
		filepath.Join(root, "secret"),
		`..\secret`,
		"c:secret",
		"en\x00US",
	} {
		t.Run(locale, func(t *testing.T) {
			assert.Empty(t, loader.Load(locale))
		})
	}

	// And: the valid locale still loads
	assert.True(t, loader.Load("en_US").Contains("the"))
}

func TestLoader_Load_RejectsSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "stopwords")
	require.NoError(t, os.MkdirAll(base, 0o755))
	writeLocale(t, root, "outside", "- leaked\n")

	link := filepath.Join(base, "en_GB"+FileExt)
	if err := os.Symlink(filepath.Join(root, "outside"+FileExt), link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	assert.Empty(t, NewLoader(base).Load("en_GB"))
}

func TestLoader_Load_AllowsSubdirectory(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "regional/fr_CA", "- le\n")

	assert.True(t, NewLoader(dir).Load("regional/fr_CA").Contains("le"))
}

func TestLoader_Load_AppliesHook(t *testing.T) {
	// Given: a hook that adds and removes words
	dir := t.TempDir()
	writeLocale(t, dir, "en_US", "- the\n- of\n")

	reg := hooks.NewRegistry()
	hooks.Add(reg, hooks.IgnoredWords, func(words []string) []string {
		out := []string{"Lorem"}
		for _, w := range words {
			if w != "of" {
				out = append(out, w)
			}
		}
		return out
	})

	// When: loading
	set := NewLoader(dir, WithHooks(reg)).Load("en_US")

	// Then: hook output is normalised into the set
	assert.True(t, set.Contains("lorem"))
	assert.True(t, set.Contains("the"))
	assert.False(t, set.Contains("of"))
}

func TestLoader_Load_HookRunsOnMissingLocale(t *testing.T) {
	reg := hooks.NewRegistry()
	hooks.Add(reg, hooks.IgnoredWords, func(words []string) []string {
		return append(words, "extra")
	})

	set := NewLoader(t.TempDir(), WithHooks(reg)).Load("xx_XX")
	assert.True(t, set.Contains("extra"))
}

func TestCleanLocale(t *testing.T) {
	tests := map[string]string{
		"en_US.UTF-8":      "en_US",
		"de_DE.UTF-8@euro": "de_DE",
		"nl_NL":            "nl_NL",
		"C":                "",
		"POSIX":            "",
		"":                 "",
	}
	for in, want := range tests {
		assert.Equal(t, want, cleanLocale(in), in)
	}
}

func TestSystemLocale(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "fr_FR.UTF-8")
	assert.Equal(t, "fr_FR", SystemLocale())

	t.Setenv("LANG", "C")
	assert.Equal(t, FallbackLocale, SystemLocale())

	t.Setenv("LC_ALL", "pt_BR.UTF-8")
	assert.Equal(t, "pt_BR", SystemLocale())
}
