package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"kjsb_flow_app_go/models"
	"kjsb_flow_app_go/services/backend"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPolygon = `{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[106.80,-6.20],[106.81,-6.20],[106.81,-6.21],[106.80,-6.21],[106.80,-6.20]]]}}`

// setupTestStore returns a local backend on a private in-memory database
func setupTestStore(t *testing.T) *backend.Local {
	dbName := "mem_" + uuid.New().String()
	db, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	store := backend.NewLocal(db, "BKS", zap.NewNop())
	require.NoError(t, store.Migrate())
	return store
}

// seedCase creates a case through the store and loads it back
func seedCase(t *testing.T, store backend.Store, fields map[string]any) *models.Case {
	ctx := context.Background()
	ref, err := store.CreateCase(ctx, backend.Stage1Create{
		NewApplicant: &models.Applicant{NamaPemohon: "Budi Santoso"},
		Fields:       fields,
	})
	require.NoError(t, err)
	c, err := store.GetCase(ctx, ref.KodeKJSB)
	require.NoError(t, err)
	return c
}

// countingCache records invalidations
type countingCache struct {
	NoopCache
	invalidated int
}

func (c *countingCache) Invalidate(context.Context) { c.invalidated++ }

func useCache(t *testing.T, c FeatureCache) {
	prev := Cache
	Cache = c
	t.Cleanup(func() { Cache = prev })
}

func useStorage(t *testing.T, s StorageProvider) {
	prev := Storage
	Storage = s
	t.Cleanup(func() { Storage = prev })
}

// failingStorage refuses every upload and records deletions
type failingStorage struct {
	deleted []string
}

func (f *failingStorage) UploadReader(context.Context, io.Reader, string, string, int64) (*StorageResult, error) {
	return nil, errors.New("bucket unavailable")
}

func (f *failingStorage) Get(context.Context, string) (io.ReadCloser, string, error) {
	return nil, "", errors.New("bucket unavailable")
}

func (f *failingStorage) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *failingStorage) IsConfigured() bool { return true }

func stringPtr(s string) *string {
	return &s
}

func today() string {
	return time.Now().Format(DateLayout)
}
