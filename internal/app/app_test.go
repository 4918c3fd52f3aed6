package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vapajomi/internal/auth"
	"vapajomi/internal/config"
	"vapajomi/internal/i18n"
	"vapajomi/internal/profile"
)

func localProfiles(t *testing.T) *profile.SQLite {
	t.Helper()
	db, err := auth.OpenSQLite(t.Context(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return profile.NewSQLite(db.DB())
}

func TestOpenProfilesWithoutURL(t *testing.T) {
	local := localProfiles(t)
	store, closeFn := OpenProfiles(t.Context(), "", local)
	assert.Same(t, local, store)
	assert.NoError(t, closeFn())
}

func TestOpenProfilesFallsBackToLocal(t *testing.T) {
	local := localProfiles(t)
	store, closeFn := OpenProfiles(t.Context(), "not a redis url", local)
	assert.Same(t, local, store)
	assert.NoError(t, closeFn())
}

func TestOpenProfilesUsesRedis(t *testing.T) {
	srv := miniredis.RunT(t)
	store, closeFn := OpenProfiles(t.Context(), "redis://"+srv.Addr(), localProfiles(t))
	defer closeFn()
	assert.IsType(t, &profile.Redis{}, store)

	require.NoError(t, store.Put(t.Context(), profile.Profile{ID: "u1", Name: "Ana"}))
	assert.Equal(t, "Ana", srv.HGet("users:u1", "name"))
}

func TestUILanguage(t *testing.T) {
	dir := t.TempDir()

	cfg := config.New(filepath.Join(dir, "default.json"))
	assert.Equal(t, i18n.ES, UILanguage(cfg))

	path := filepath.Join(dir, "en.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"locale":"en-US","notifications":true}`), 0o644))
	assert.Equal(t, i18n.EN, UILanguage(config.New(path)))

	path = filepath.Join(dir, "override.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"locale":"es-ES","ui_language":"en"}`), 0o644))
	assert.Equal(t, i18n.EN, UILanguage(config.New(path)))
}
