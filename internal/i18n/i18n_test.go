package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslationsHaveSameKeys(t *testing.T) {
	for key := range translations[ES] {
		_, ok := translations[EN][key]
		assert.True(t, ok, "missing EN translation for %q", key)
	}
	for key := range translations[EN] {
		_, ok := translations[ES][key]
		assert.True(t, ok, "missing ES translation for %q", key)
	}
}

func TestTFallsBackToKey(t *testing.T) {
	assert.Equal(t, "no_such_key", T("no_such_key"))
}

func TestTf(t *testing.T) {
	SetLanguage(ES)
	assert.Equal(t, "Bienvenido, Ana", Tf("home_welcome_name", "Ana"))

	SetLanguage(EN)
	defer SetLanguage(ES)
	assert.Equal(t, "Welcome, Ana", Tf("home_welcome_name", "Ana"))
}

func TestFromLocale(t *testing.T) {
	assert.Equal(t, ES, FromLocale("es-ES"))
	assert.Equal(t, EN, FromLocale("en-US"))
	assert.Equal(t, ES, FromLocale("fr-FR"))
	assert.Equal(t, ES, FromLocale(""))
}
