package i18n

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten(t *testing.T) {
	nested := map[string]interface{}{
		"tahap": map[string]interface{}{
			"title": "Tahap {tahap}",
			"upload": map[string]interface{}{"srid": "Sistem koordinat"},
		},
		"max": 5,
	}
	flat := make(catalogue)
	flatten("", nested, flat)

	assert.Equal(t, "Tahap {tahap}", flat["tahap.title"])
	assert.Equal(t, "Sistem koordinat", flat["tahap.upload.srid"])
	assert.Equal(t, "5", flat["max"])
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "Tahap 3 selesai", format("Tahap {tahap} selesai", map[string]interface{}{"tahap": 3}))
	assert.Equal(t, "Tahap {tahap}", format("Tahap {tahap}"))
	assert.Equal(t, "Tahap {tahap}", format("Tahap {tahap}", map[string]interface{}{"kode": "X"}))
	assert.Equal(t, "BKS-1 / Budi", format("{kode} / {pemohon}", map[string]interface{}{"kode": "BKS-1", "pemohon": "Budi"}))
}

func TestGetLocale(t *testing.T) {
	assert.Equal(t, DefaultLang, GetLocale(context.Background()))
	assert.Equal(t, "en", GetLocale(WithLocale(context.Background(), "en")))
	assert.Equal(t, DefaultLang, GetLocale(WithLocale(context.Background(), "")))
}

func TestTranslateFallback(t *testing.T) {
	require.NoError(t, Load())

	saved := translations
	translations = map[string]catalogue{
		"id": {"uji.halo": "Halo", "uji.sapa": "Selamat datang {nama}"},
		"en": {"uji.halo": "Hello"},
	}
	defer func() { translations = saved }()

	assert.Equal(t, "Hello", Translate("en", "uji.halo"))
	assert.Equal(t, "Halo", Translate("id", "uji.halo"))
	assert.Equal(t, "Selamat datang Budi", Translate("en", "uji.sapa", map[string]interface{}{"nama": "Budi"}))
	assert.Equal(t, "Halo", Translate("fr", "uji.halo"))
	assert.Equal(t, "uji.tidak_ada", Translate("en", "uji.tidak_ada"))
}

func TestT(t *testing.T) {
	ctx := WithLocale(context.Background(), "id")
	assert.Equal(t, "Tahap 3 berhasil diupdate.", T(ctx, "tahap.updated", map[string]interface{}{"tahap": 3}))
	assert.Equal(t, "Proyek tidak ditemukan atau error.", T(context.Background(), "proyek.not_found"))
}

func TestCataloguesHaveSameKeys(t *testing.T) {
	require.NoError(t, Load())
	require.NotEmpty(t, translations["id"])

	for key := range translations["id"] {
		_, ok := translations["en"][key]
		assert.True(t, ok, "missing en key %s", key)
	}
	for key := range translations["en"] {
		_, ok := translations["id"][key]
		assert.True(t, ok, "missing id key %s", key)
	}
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("id"))
	assert.True(t, Supported("en"))
	assert.False(t, Supported("fr"))
	assert.False(t, Supported(""))
}
