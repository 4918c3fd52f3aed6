// Package models manages the offline speech recognition models.
package models

import "strings"

// ModelInfo describes a downloadable Vosk model.
type ModelInfo struct {
	ID       string // "vosk-es-small"
	Language string // primary language subtag: "es"
	Name     string // display name
	Dir      string // directory inside the archive and on disk
	URL      string
	Size     int64 // approximate, for progress when the server sends none
}

// Registry lists every known model. The first entry per language is the default for it.
var Registry = []ModelInfo{
	{
		ID:       "vosk-es-small",
		Language: "es",
		Name:     "Español (pequeño)",
		Dir:      "vosk-model-small-es-0.42",
		URL:      "https://alphacephei.com/vosk/models/vosk-model-small-es-0.42.zip",
		Size:     39 * 1024 * 1024,
	},
	{
		ID:       "vosk-en-small",
		Language: "en",
		Name:     "English (small)",
		Dir:      "vosk-model-small-en-us-0.15",
		URL:      "https://alphacephei.com/vosk/models/vosk-model-small-en-us-0.15.zip",
		Size:     40 * 1024 * 1024,
	},
	{
		ID:       "vosk-es",
		Language: "es",
		Name:     "Español (grande)",
		Dir:      "vosk-model-es-0.42",
		URL:      "https://alphacephei.com/vosk/models/vosk-model-es-0.42.zip",
		Size:     1400 * 1024 * 1024,
	},
}

// Get returns the model with the given ID.
func Get(id string) (ModelInfo, bool) {
	for _, m := range Registry {
		if m.ID == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// Language extracts the primary subtag of a locale: "es-ES" -> "es".
func Language(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "-_"); i >= 0 {
		locale = locale[:i]
	}
	return locale
}

// ForLocale returns the default model for the locale's language.
func ForLocale(locale string) (ModelInfo, bool) {
	lang := Language(locale)
	for _, m := range Registry {
		if m.Language == lang {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// Resolve picks the model by ID when it exists and matches the locale's
// language, otherwise falls back to the locale default.
func Resolve(id, locale string) (ModelInfo, bool) {
	if m, ok := Get(id); ok && m.Language == Language(locale) {
		return m, true
	}
	return ForLocale(locale)
}
