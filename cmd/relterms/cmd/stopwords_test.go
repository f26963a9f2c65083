package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/relterms/internal/config"
	apperrors "github.com/Aman-CERP/relterms/internal/errors"
)

func TestStopwordsList_IncludesExtra(t *testing.T) {
	// Given: a locale file and extra words in the config
	home := testEnv(t)
	writeFile(t, filepath.Join(home, "stopwords", "en_US.yaml"), "[the, and]\n")
	writeFile(t, filepath.Join(home, "relterms.yaml"), "stopwords:\n  locale: en_US\n  extra: [lorem]\n")

	// When: listing
	res := run(t, "stopwords", "list")

	// Then: file words come first, then the extra words
	require.NoError(t, res.err)
	assert.Equal(t, "the\nand\nlorem\n", res.stdout)
}

func TestStopwordsList_UnknownLocaleIsEmpty(t *testing.T) {
	testEnv(t)

	res := run(t, "stopwords", "list", "--locale", "../../etc/passwd")

	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)
}

func TestStopwordsTidy_FromTextFile(t *testing.T) {
	home := testEnv(t)
	writeFile(t, filepath.Join(home, "words.txt"), "Beta\nalpha\n'beta'\n# comment\n\nÃ©t\n")

	res := run(t, "stopwords", "tidy", "--from", "words.txt")

	require.NoError(t, res.err)
	assert.Equal(t, "['Beta', 'alpha']\n", res.stdout)
}

func TestStopwordsTidy_FromYAMLFile(t *testing.T) {
	home := testEnv(t)
	writeFile(t, filepath.Join(home, "words.yaml"), "[zeta, Zeta, eta]\n")

	res := run(t, "stopwords", "tidy", "--from", "words.yaml")

	require.NoError(t, res.err)
	assert.Equal(t, "['eta', 'zeta']\n", res.stdout)
}

func TestStopwordsTidy_CurrentList(t *testing.T) {
	home := testEnv(t)
	writeFile(t, filepath.Join(home, "stopwords", "en_US.yaml"), "[or, and, And]\n")

	res := run(t, "stopwords", "tidy")

	require.NoError(t, res.err)
	assert.Equal(t, "['and', 'or']\n", res.stdout)
}

func TestStopwordsTidy_Seed(t *testing.T) {
	testEnv(t)

	res := run(t, "stopwords", "tidy", "--seed", "bleve", "--locale", "nl_NL")

	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "'de'")
}

func TestStopwordsTidy_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{name: "unknown seed source", args: []string{"--seed", "nltk"}, code: apperrors.ErrCodeInvalidInput},
		{name: "no seed for language", args: []string{"--seed", "bleve", "--locale", "xx_XX"}, code: apperrors.ErrCodeUnknownLocale},
		{name: "missing file", args: []string{"--from", "missing.txt"}, code: apperrors.ErrCodeInvalidInput},
		{name: "path in locale", args: []string{"--from", "words.txt", "--locale", "../evil", "--write"}, code: apperrors.ErrCodeUnknownLocale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := testEnv(t)
			writeFile(t, filepath.Join(home, "words.txt"), "word\n")

			res := run(t, append([]string{"stopwords", "tidy"}, tt.args...)...)

			require.Error(t, res.err)
			assert.Equal(t, tt.code, apperrors.GetCode(res.err))
		})
	}
}

func TestStopwordsTidy_WriteBacksUpExistingFile(t *testing.T) {
	// Given: an existing locale file
	home := testEnv(t)
	path := filepath.Join(home, "stopwords", "de_DE.yaml")
	writeFile(t, path, "[alt]\n")
	writeFile(t, filepath.Join(home, "words.txt"), "und\noder\n")

	// When: writing a tidied list over it
	res := run(t, "stopwords", "tidy", "--from", "words.txt", "--locale", "de_DE", "--write")

	// Then: the file is replaced and the old one kept as a backup
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Wrote")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "['oder', 'und']\n", string(data))

	backups, err := config.ListBackups(path)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	old, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Equal(t, "[alt]\n", string(old))
}
