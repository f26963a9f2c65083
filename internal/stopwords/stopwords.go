// Package stopwords loads locale-scoped stop-word lists.
//
// Each locale lives in its own YAML file under a fixed base directory:
//
//	<dir>/en_US.yaml
//	<dir>/nl_NL.yaml
//
// A file holds a single YAML sequence of words. Loading is fail-closed: a
// locale that would resolve outside the base directory, a missing file, or a
// file that is not a sequence of scalars all produce an empty Set, which
// means "no filtering".
package stopwords

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/relterms/internal/hooks"
)

// FileExt is the extension of locale files.
const FileExt = ".yaml"

// FallbackLocale is used when neither the caller nor the process supplies one.
const FallbackLocale = "en_US"

var errNotSequence = errors.New("stop-word file is not a sequence of words")

// Set is a set of normalised stop words.
type Set map[string]struct{}

// NewSet builds a Set from words, lowercasing and trimming each entry.
// Empty entries are skipped.
func NewSet(words []string) Set {
	s := make(Set, len(words))
	for _, w := range words {
		w = Normalize(w)
		if w == "" {
			continue
		}
		s[w] = struct{}{}
	}
	return s
}

// Contains reports whether the already-normalised term is a stop word.
func (s Set) Contains(term string) bool {
	_, ok := s[term]
	return ok
}

// Normalize lowercases and trims a term.
func Normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Loader resolves and reads locale files.
type Loader struct {
	dir           string
	defaultLocale string
	hooks         *hooks.Registry
	logger        *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithDefaultLocale sets the locale used when Load receives an empty one.
func WithDefaultLocale(locale string) Option {
	return func(l *Loader) {
		if locale != "" {
			l.defaultLocale = locale
		}
	}
}

// WithHooks sets the registry whose hooks.IgnoredWords filters run on every
// loaded list.
func WithHooks(r *hooks.Registry) Option {
	return func(l *Loader) { l.hooks = r }
}

// WithLogger sets the logger used for rejected or unreadable locales.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a Loader reading from dir.
func NewLoader(dir string, opts ...Option) *Loader {
	l := &Loader{
		dir:           dir,
		defaultLocale: SystemLocale(),
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the stop-word set for locale. It never fails.
func (l *Loader) Load(locale string) Set {
	return NewSet(l.List(locale))
}

// List returns the raw word list for locale after the ignored_words hooks
// have run. An unresolvable locale yields an empty list.
func (l *Loader) List(locale string) []string {
	words := l.read(locale)
	if words == nil {
		words = []string{}
	}
	return hooks.Apply(l.hooks, hooks.IgnoredWords, words)
}

func (l *Loader) read(locale string) []string {
	if locale == "" {
		locale = l.defaultLocale
	}

	path, ok := l.resolve(locale)
	if !ok {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.Debug("stopwords_read_failed",
			slog.String("locale", locale),
			slog.String("error", err.Error()))
		return nil
	}

	words, err := parse(data)
	if err != nil {
		l.logger.Debug("stopwords_malformed",
			slog.String("locale", locale),
			slog.String("error", err.Error()))
		return nil
	}
	return words
}

// resolve maps locale to a file path inside the base directory.
// ok is false when the locale is rejected or no file exists for it.
func (l *Loader) resolve(locale string) (string, bool) {
	if locale == "" || strings.ContainsAny(locale, "\x00\\:") {
		l.reject(locale)
		return "", false
	}

	rel := locale + FileExt
	if !filepath.IsLocal(rel) {
		l.reject(locale)
		return "", false
	}

	base, err := filepath.Abs(l.dir)
	if err != nil {
		return "", false
	}
	path := filepath.Join(base, rel)
	if !within(base, path) {
		l.reject(locale)
		return "", false
	}

	// Symlinks may point anywhere; compare real locations.
	realPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", false
	}
	realBase, err := filepath.EvalSymlinks(base)
	if err != nil {
		return "", false
	}
	if !within(realBase, realPath) {
		l.reject(locale)
		return "", false
	}

	info, err := os.Stat(realPath)
	if err != nil || info.IsDir() {
		return "", false
	}
	return realPath, true
}

func (l *Loader) reject(locale string) {
	l.logger.Warn("stopwords_rejected_locale", slog.String("locale", locale))
}

// within reports whether path is base itself or lies below it.
func within(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return filepath.IsLocal(rel)
}

// parse decodes a YAML sequence of scalar words.
func parse(data []byte) ([]string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil, errNotSequence
	}

	seq := doc.Content[0]
	if seq.Kind != yaml.SequenceNode {
		return nil, errNotSequence
	}

	words := make([]string, 0, len(seq.Content))
	for _, item := range seq.Content {
		if item.Kind != yaml.ScalarNode {
			return nil, errNotSequence
		}
		words = append(words, item.Value)
	}
	return words, nil
}

// SystemLocale returns the process locale (e.g. "en_US") from LC_ALL,
// LC_MESSAGES or LANG, or FallbackLocale when none is usable.
func SystemLocale() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := cleanLocale(os.Getenv(key)); v != "" {
			return v
		}
	}
	return FallbackLocale
}

// cleanLocale strips encoding and modifier suffixes ("de_DE.UTF-8@euro" -> "de_DE").
func cleanLocale(v string) string {
	if i := strings.IndexAny(v, ".@"); i >= 0 {
		v = v[:i]
	}
	v = strings.TrimSpace(v)
	if v == "C" || v == "POSIX" {
		return ""
	}
	return v
}
