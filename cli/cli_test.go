package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kjsb_flow_app_go/config"
	"kjsb_flow_app_go/models"
	"kjsb_flow_app_go/services"
	"kjsb_flow_app_go/services/backend"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPolygon = `{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[106.80,-6.20],[106.81,-6.20],[106.81,-6.21],[106.80,-6.21],[106.80,-6.20]]]}}`

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

// run executes kjsbctl with args against store and returns stdout
func run(t *testing.T, store backend.Store, stdin string, args ...string) (string, error) {
	opts := &RootOptions{
		Config: &config.Config{Backend: config.BackendLocal, MaxUploadBytes: 1 << 20},
		Store:  store,
	}
	cmd := newRootCommand(opts)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "kjsbctl", cmd.Use)

	for _, name := range []string{"hash-password", "migrate", "export", "import", "upload-geojson", "surveyor"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, nil, "", "--format", "xml", "migrate")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestHashPassword(t *testing.T) {
	t.Run("reads stdin", func(t *testing.T) {
		out, err := run(t, nil, "rahasia-kantor-7\n", "hash-password")
		require.NoError(t, err)
		hash := strings.TrimSpace(out)
		assert.True(t, services.CheckPassword("rahasia-kantor-7", hash))
	})

	t.Run("json output", func(t *testing.T) {
		out, err := run(t, nil, "", "--format", "json", "hash-password", "--password", "rahasia-kantor-7")
		require.NoError(t, err)
		var res map[string]string
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.True(t, services.CheckPassword("rahasia-kantor-7", res["office_password_hash"]))
	})

	t.Run("too short", func(t *testing.T) {
		_, err := run(t, nil, "pendek\n", "hash-password")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
	})
}

func TestSurveyorCommands(t *testing.T) {
	store := setupTestStore(t)

	_, err := run(t, store, "", "surveyor", "add")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out, err := run(t, store, "", "surveyor", "add", "--nama", "Andi", "--lisensi", "LIS-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Andi")

	out, err = run(t, store, "", "surveyor", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Andi\tLIS-1")
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := setupTestStore(t)
	_, err := src.CreateCase(ctx, backend.Stage1Create{
		KodeKJSB:     "EXP-1",
		NewApplicant: &models.Applicant{NamaPemohon: "Dewi"},
		Fields:       map[string]any{"no_sla": "SLA-1"},
	})
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "proyek.xlsx")
	_, err = run(t, src, "", "export", "--out", file)
	require.NoError(t, err)

	dst := setupTestStore(t)
	out, err := run(t, dst, "", "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "1 of 1 rows imported")

	got, err := dst.GetCase(ctx, "EXP-1")
	require.NoError(t, err)
	assert.Equal(t, "Dewi", got.ApplicantName())
	require.NotNil(t, got.NoSLA)
	assert.Equal(t, "SLA-1", *got.NoSLA)
}

func TestUploadGeoJSON(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	_, err := store.CreateCase(ctx, backend.Stage1Create{KodeKJSB: "GEO-1"})
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "batas.geojson")
	require.NoError(t, os.WriteFile(file, []byte(testPolygon), 0o644))

	_, err = run(t, store, "", "upload-geojson", "NOPE", file)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out, err := run(t, store, "", "upload-geojson", "GEO-1", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Tahap 4 (GeoJSON + atribut) berhasil disimpan.")

	got, err := store.GetCase(ctx, "GEO-1")
	require.NoError(t, err)
	assert.True(t, got.HasGeometry())
}
