package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kjsb_flow_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Header http.Header
	Body   map[string]any
}

func setupPostgREST(t *testing.T, handler func(w http.ResponseWriter, r recordedRequest)) (*PostgREST, *[]recordedRequest) {
	var calls []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  map[string]string{},
			Header: r.Header.Clone(),
		}
		for k, v := range r.URL.Query() {
			rec.Query[k] = v[0]
		}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.Body)
		}
		calls = append(calls, rec)
		w.Header().Set("Content-Type", "application/json")
		handler(w, rec)
	}))
	t.Cleanup(srv.Close)

	return NewPostgREST(srv.URL, "anon-key", 5*time.Second, nil), &calls
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestPostgRESTSearchClients(t *testing.T) {
	store, calls := setupPostgREST(t, func(w http.ResponseWriter, r recordedRequest) {
		writeJSON(w, http.StatusOK, `[{"id":"c1","nama_klien":"Budi","nomor_telepon_klien":"0811"}]`)
	})

	rows, err := store.SearchClients(context.Background(), " bud ")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Budi", rows[0].NamaKlien)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "/rest/v1/klien", call.Path)
	assert.Equal(t, "ilike.*bud*", call.Query["nama_klien"])
	assert.Equal(t, "nama_klien.asc", call.Query["order"])
	assert.Equal(t, "10", call.Query["limit"])
	assert.Equal(t, "anon-key", call.Header.Get("apikey"))
	assert.Equal(t, "Bearer anon-key", call.Header.Get("Authorization"))

	rows, err = store.SearchClients(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Len(t, *calls, 1)
}

func TestPostgRESTGetCase(t *testing.T) {
	t.Run("decodes case with projections", func(t *testing.T) {
		store, calls := setupPostgREST(t, func(w http.ResponseWriter, r recordedRequest) {
			writeJSON(w, http.StatusOK, `{"id":"p1","kode_kjsb":"BKS-2026-0001","luas_permohonan":120.5,
				"pemohon":{"nama_pemohon":"Ani"},"geom":null}`)
		})
		c, err := store.GetCase(context.Background(), "BKS-2026-0001")
		require.NoError(t, err)
		assert.Equal(t, "BKS-2026-0001", c.Code())
		assert.Equal(t, "Ani", c.ApplicantName())
		assert.Equal(t, 120.5, *c.LuasPermohonan)
		assert.False(t, c.HasGeometry())

		call := (*calls)[0]
		assert.Equal(t, "eq.BKS-2026-0001", call.Query["kode_kjsb"])
		assert.Equal(t, acceptObject, call.Header.Get("Accept"))
	})

	t.Run("zero rows is not found", func(t *testing.T) {
		store, _ := setupPostgREST(t, func(w http.ResponseWriter, r recordedRequest) {
			writeJSON(w, http.StatusNotAcceptable, `{"code":"PGRST116","message":"JSON object requested, multiple (or no) rows returned","details":"The result contains 0 rows"}`)
		})
		_, err := store.GetCase(context.Background(), "X")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("other errors keep the backend message", func(t *testing.T) {
		store, _ := setupPostgREST(t, func(w http.ResponseWriter, r recordedRequest) {
			writeJSON(w, http.StatusUnauthorized, `{"code":"42501","message":"permission denied for table proyek_kjsb"}`)
		})
		_, err := store.GetCase(context.Background(), "X")
		var be *Error
		require.True(t, errors.As(err, &be))
		assert.Equal(t, http.StatusUnauthorized, be.Status)
		assert.Equal(t, "permission denied for table proyek_kjsb", Message(err))
	})
}

func TestPostgRESTUpdateCase(t *testing.T) {
	t.Run("sends patch", func(t *testing.T) {
		store, calls := setupPostgREST(t, func(w http.ResponseWriter, r recordedRequest) {
			writeJSON(w, http.StatusOK, `[{"id":"p1"}]`)
		})
		err := store.UpdateCase(context.Background(), "K1", map[string]any{"no_st": "ST-1", "tgl_st": nil})
		require.NoError(t, err)

		call := (*calls)[0]
		assert.Equal(t, http.MethodPatch, call.Method)
		assert.Equal(t, "eq.K1", call.Query["kode_kjsb"])
		assert.Equal(t, preferRepresentation, call.Header.Get("Prefer"))
		assert.Equal(t, "ST-1", call.Body["no_st"])
		v, present := call.Body["tgl_st"]
		assert.True(t, present)
		assert.Nil(t, v)
	})

	t.Run("no matched row", func(t *testing.T) {
		store, _ := setupPostgREST(t, func(w http.ResponseWriter, r recordedRequest) {
			writeJSON(w, http.StatusOK, `[]`)
		})
		err := store.UpdateCase(context.Background(), "K1", map[string]any{"no_st": "ST-1"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPostgRESTStage4(t *testing.T) {
	store, calls := setupPostgREST(t, func(w http.ResponseWriter, r recordedRequest) {
		w.WriteHeader(http.StatusNoContent)
	})
	err := store.UpdateStage4WithGeometry(context.Background(), Stage4Call{
		KodeKJSB:  "K1",
		GeoJSON:   `{"type":"Polygon","coordinates":[]}`,
		InputSRID: 23835,
		Fields:    map[string]any{"no_gu": "GU-1", "luas_hasil_ukur": 12.5},
	})
	require.NoError(t, err)

	call := (*calls)[0]
	assert.Equal(t, "/rest/v1/rpc/update_proyek_tahap4_with_geom", call.Path)
	assert.Equal(t, "K1", call.Body["p_kode_kjsb"])
	assert.Equal(t, float64(23835), call.Body["p_input_srid"])
	assert.Equal(t, "GU-1", call.Body["p_no_gu"])
	assert.Equal(t, 12.5, call.Body["p_luas_hasil_ukur"])
	// 3 fixed parameters plus the 13 stage 4 fields
	assert.Len(t, call.Body, 16)
	v, present := call.Body["p_tgl_pbt"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestPostgRESTCreateCase(t *testing.T) {
	t.Run("creates contacts then case", func(t *testing.T) {
		store, calls := setupPostgREST(t, func(w http.ResponseWriter, r recordedRequest) {
			switch r.Path {
			case "/rest/v1/klien":
				writeJSON(w, http.StatusCreated, `[{"id":"k1","nama_klien":"PT A"}]`)
			case "/rest/v1/pemohon":
				writeJSON(w, http.StatusCreated, `[{"id":"pm1","nama_pemohon":"Ani"}]`)
			case "/rest/v1/proyek_kjsb":
				writeJSON(w, http.StatusCreated, `[{"id":"p1","kode_kjsb":"BKS-2026-0001"}]`)
			}
		})
		ref, err := store.CreateCase(context.Background(), Stage1Create{
			NewClient:    &models.Client{NamaKlien: "PT A"},
			NewApplicant: &models.Applicant{NamaPemohon: "Ani"},
			Fields:       map[string]any{"no_sla": "S1"},
		})
		require.NoError(t, err)
		assert.Equal(t, "BKS-2026-0001", ref.KodeKJSB)

		require.Len(t, *calls, 3)
		caseCall := (*calls)[2]
		assert.Equal(t, "k1", caseCall.Body["klien_id"])
		assert.Equal(t, "pm1", caseCall.Body["pemohon_id"])
		assert.Equal(t, "S1", caseCall.Body["no_sla"])
		assert.Nil(t, caseCall.Body["kode_kjsb"])
	})

	t.Run("case failure removes created contacts", func(t *testing.T) {
		store, calls := setupPostgREST(t, func(w http.ResponseWriter, r recordedRequest) {
			switch {
			case r.Method == http.MethodDelete:
				w.WriteHeader(http.StatusNoContent)
			case r.Path == "/rest/v1/klien":
				writeJSON(w, http.StatusCreated, `[{"id":"k1","nama_klien":"PT A"}]`)
			case r.Path == "/rest/v1/proyek_kjsb":
				writeJSON(w, http.StatusConflict, `{"code":"23505","message":"duplicate key value violates unique constraint"}`)
			}
		})
		_, err := store.CreateCase(context.Background(), Stage1Create{
			KodeKJSB:  "DUP",
			NewClient: &models.Client{NamaKlien: "PT A"},
		})
		require.Error(t, err)
		assert.Equal(t, "duplicate key value violates unique constraint", Message(err))

		last := (*calls)[len(*calls)-1]
		assert.Equal(t, http.MethodDelete, last.Method)
		assert.Equal(t, "/rest/v1/klien", last.Path)
		assert.Equal(t, "eq.k1", last.Query["id"])
	})

	t.Run("missing generated code removes the case and contacts", func(t *testing.T) {
		store, calls := setupPostgREST(t, func(w http.ResponseWriter, r recordedRequest) {
			switch {
			case r.Method == http.MethodDelete:
				w.WriteHeader(http.StatusNoContent)
			case r.Path == "/rest/v1/pemohon":
				writeJSON(w, http.StatusCreated, `[{"id":"pm1","nama_pemohon":"Ani"}]`)
			case r.Path == "/rest/v1/proyek_kjsb":
				writeJSON(w, http.StatusCreated, `[{"id":"p1","kode_kjsb":null}]`)
			}
		})
		_, err := store.CreateCase(context.Background(), Stage1Create{
			NewApplicant: &models.Applicant{NamaPemohon: "Ani"},
		})
		assert.ErrorIs(t, err, ErrCodeNotGenerated)

		var deletes []recordedRequest
		for _, c := range *calls {
			if c.Method == http.MethodDelete {
				deletes = append(deletes, c)
			}
		}
		require.Len(t, deletes, 2)
		assert.Equal(t, "/rest/v1/proyek_kjsb", deletes[0].Path)
		assert.Equal(t, "eq.p1", deletes[0].Query["id"])
		assert.Equal(t, "/rest/v1/pemohon", deletes[1].Path)
		assert.Equal(t, "eq.pm1", deletes[1].Query["id"])
	})
}

func TestPostgRESTSuggestions(t *testing.T) {
	t.Run("codes drop empties", func(t *testing.T) {
		store, calls := setupPostgREST(t, func(w http.ResponseWriter, r recordedRequest) {
			writeJSON(w, http.StatusOK, `[{"kode_kjsb":"A-1"},{"kode_kjsb":null},{"kode_kjsb":""},{"kode_kjsb":"A-2"}]`)
		})
		codes, err := store.SuggestCodes(context.Background(), "a-")
		require.NoError(t, err)
		assert.Equal(t, []string{"A-1", "A-2"}, codes)
		assert.Equal(t, "kode_kjsb.asc", (*calls)[0].Query["order"])
	})

	t.Run("names deduplicated and capped", func(t *testing.T) {
		store, calls := setupPostgREST(t, func(w http.ResponseWriter, r recordedRequest) {
			var rows []map[string]any
			for _, n := range []string{"A", "A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"} {
				rows = append(rows, map[string]any{"nama_pemohon": n})
			}
			rows = append(rows, map[string]any{"nama_pemohon": nil})
			raw, _ := json.Marshal(rows)
			writeJSON(w, http.StatusOK, string(raw))
		})
		names, err := store.SuggestApplicantNames(context.Background(), "x")
		require.NoError(t, err)
		assert.Len(t, names, 10)
		assert.Equal(t, "A", names[0])
		assert.Equal(t, "B", names[1])
		assert.Equal(t, "/rest/v1/proyek_kjsb_map", (*calls)[0].Path)
		assert.Equal(t, "20", (*calls)[0].Query["limit"])
	})

	t.Run("map features filter", func(t *testing.T) {
		store, calls := setupPostgREST(t, func(w http.ResponseWriter, r recordedRequest) {
			writeJSON(w, http.StatusOK, `[{"id":"1","kode_kjsb":"K","nama_pemohon":"Ani","geom":{"type":"Polygon","coordinates":[[[1,1],[2,1],[2,2],[1,1]]]}}]`)
		})
		features, err := store.ListMapFeatures(context.Background(), "ani")
		require.NoError(t, err)
		require.Len(t, features, 1)
		assert.True(t, models.HasGeometry(features[0].Geom))
		assert.Equal(t, "ilike.*ani*", (*calls)[0].Query["nama_pemohon"])

		_, err = store.ListMapFeatures(context.Background(), "")
		require.NoError(t, err)
		_, filtered := (*calls)[1].Query["nama_pemohon"]
		assert.False(t, filtered)
	})
}
