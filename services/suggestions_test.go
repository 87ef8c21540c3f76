package services

import (
	"context"
	"testing"

	"kjsb_flow_app_go/models"
	"kjsb_flow_app_go/services/backend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeq(t *testing.T) {
	assert.Equal(t, int64(7), ParseSeq("7"))
	assert.Equal(t, int64(0), ParseSeq(""))
	assert.Equal(t, int64(0), ParseSeq("-3"))
	assert.Equal(t, int64(0), ParseSeq("abc"))
}

func TestSuggestions(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	for _, name := range []string{"Budi Santoso", "Budi Santoso", "Budiman", "Siti"} {
		_, err := store.CreateCase(ctx, backend.Stage1Create{NewApplicant: &models.Applicant{NamaPemohon: name}})
		require.NoError(t, err)
	}

	t.Run("empty query echoes seq with no items", func(t *testing.T) {
		s, err := SuggestApplicantNames(ctx, store, "  ", 4)
		require.NoError(t, err)
		assert.Equal(t, int64(4), s.Seq)
		assert.Empty(t, s.Items)
		assert.NotNil(t, s.Items)
	})

	t.Run("names are distinct", func(t *testing.T) {
		s, err := SuggestApplicantNames(ctx, store, "budi", 9)
		require.NoError(t, err)
		assert.Equal(t, int64(9), s.Seq)
		assert.ElementsMatch(t, []string{"Budi Santoso", "Budiman"}, s.Items)
	})

	t.Run("codes", func(t *testing.T) {
		s, err := SuggestCodes(ctx, store, "bks", 2)
		require.NoError(t, err)
		assert.Len(t, s.Items, 4)
		assert.Equal(t, int64(2), s.Seq)
	})

	t.Run("contact search", func(t *testing.T) {
		applicants, err := SearchApplicants(ctx, store, "siti")
		require.NoError(t, err)
		assert.Len(t, applicants, 1)

		clients, err := SearchClients(ctx, store, "")
		require.NoError(t, err)
		assert.Empty(t, clients)
	})
}
