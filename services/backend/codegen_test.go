package backend

import (
	"regexp"
	"testing"
	"time"

	"kjsb_flow_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	t.Run("first code of the year", func(t *testing.T) {
		code, err := GenerateCode(db, "BKS", now)
		require.NoError(t, err)
		assert.Equal(t, "BKS-2026-0001", code)
		assert.Regexp(t, regexp.MustCompile(`^BKS-\d{4}-\d{4}$`), code)
	})

	t.Run("continues after the highest sequence", func(t *testing.T) {
		for _, code := range []string{"BKS-2026-0007", "BKS-2026-0003", "BKS-2025-0042", "BKS-2026-MANUAL"} {
			require.NoError(t, db.Create(&models.Case{KodeKJSB: strPtr(code)}).Error)
		}
		code, err := GenerateCode(db, "BKS", now)
		require.NoError(t, err)
		assert.Equal(t, "BKS-2026-0008", code)
	})

	t.Run("five digit manual codes are ignored", func(t *testing.T) {
		require.NoError(t, db.Create(&models.Case{KodeKJSB: strPtr("BKS-2026-99999")}).Error)
		code, err := GenerateCode(db, "BKS", now)
		require.NoError(t, err)
		assert.Equal(t, "BKS-2026-0008", code)
	})

	t.Run("fails once the year is full", func(t *testing.T) {
		full := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, db.Create(&models.Case{KodeKJSB: strPtr("BKS-2030-9999")}).Error)
		code, err := GenerateCode(db, "BKS", full)
		assert.ErrorIs(t, err, ErrCodeSequenceExhausted)
		assert.Empty(t, code)

		_, err = EnsureUniqueCode(db, "BKS", full)
		assert.ErrorIs(t, err, ErrCodeSequenceExhausted)
	})

	t.Run("empty prefix falls back to default", func(t *testing.T) {
		code, err := GenerateCode(db, "", now.AddDate(1, 0, 0))
		require.NoError(t, err)
		assert.Equal(t, "BKS-2027-0001", code)
	})
}

func TestEnsureUniqueCode(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	require.NoError(t, db.Create(&models.Case{KodeKJSB: strPtr("KJSB-2026-0001")}).Error)

	code, err := EnsureUniqueCode(db, "KJSB", now)
	require.NoError(t, err)
	assert.Equal(t, "KJSB-2026-0002", code)
}
