// Package prompt loads and renders the AI prompt templates (Task 3.1).
// Templates ship embedded in the binary; an operator can override any of
// them by dropping files into a configured directory. Localized variants
// resolve before the generic file.
package prompt

import (
	"embed"
	"os"
	"path/filepath"
	"strings"
)

// defaults embeds the stock templates.
//
//go:embed templates/*.txt
var defaults embed.FS

// Loader resolves template names to template text.
type Loader struct {
	overrideDir string // optional; wins over embedded defaults
	locale      string // e.g. "pt_BR"; empty or "en_US" disables variants
}

// NewLoader creates a Loader. overrideDir may be empty.
func NewLoader(overrideDir, locale string) *Loader {
	return &Loader{overrideDir: overrideDir, locale: locale}
}

// Template returns the template text for name, or "" when nothing matches.
// Resolution order: per directory (override first, then embedded), the
// locale variant, then the language variant, then the plain file. An
// override's plain file therefore beats an embedded localized one.
func (l *Loader) Template(name string) string {
	name = sanitizeName(name)
	if name == "" {
		return ""
	}

	for _, file := range l.candidates(name) {
		if l.overrideDir != "" {
			if data, err := os.ReadFile(filepath.Join(l.overrideDir, file)); err == nil {
				return string(data)
			}
		}
	}
	for _, file := range l.candidates(name) {
		if data, err := defaults.ReadFile("templates/" + file); err == nil {
			return string(data)
		}
	}
	return ""
}

// candidates lists the filenames to try for name, most specific first.
func (l *Loader) candidates(name string) []string {
	files := make([]string, 0, 3)
	if l.locale != "" && l.locale != "en_US" {
		files = append(files, name+"-"+l.locale+".txt")
		if lang, _, found := strings.Cut(l.locale, "_"); found && lang != "" {
			files = append(files, name+"-"+lang+".txt")
		}
	}
	return append(files, name+".txt")
}

// sanitizeName lowercases and strips everything but alphanumerics, dash and
// underscore so a template name can never escape the template directories.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
