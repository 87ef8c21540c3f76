package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kjsb_flow_app_go/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	caseSelect    = "*,klien(nama_klien,nomor_telepon_klien),pemohon(nama_pemohon,nomor_telepon_pemohon,nik_pemohon,alamat_pemohon),surveyor(nama,hp,lisensi)"
	clientCols    = "id,nama_klien,nomor_telepon_klien,created_at,updated_at"
	applicantCols = "id,nama_pemohon,nomor_telepon_pemohon,nik_pemohon,alamat_pemohon,created_at,updated_at"
	surveyorCols  = "id,nama,hp,lisensi,created_at"

	acceptObject         = "application/vnd.pgrst.object+json"
	preferRepresentation = "return=representation"
	codeNoRows           = "PGRST116"
)

// PostgREST is the Store backed by a Supabase project's REST layer. Calls
// are never retried; a failure is reported once.
type PostgREST struct {
	client *resty.Client
	logger *zap.Logger
}

// NewPostgREST creates a client for {baseURL}/rest/v1 authenticated with
// the project's anon key
func NewPostgREST(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *PostgREST {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/") + "/rest/v1").
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("apikey", apiKey).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &PostgREST{client: client, logger: logger}
}

type request struct {
	method  string
	path    string
	query   url.Values
	body    any
	headers map[string]string
}

// do executes a request and decodes a successful body into out (when set)
func (p *PostgREST) do(ctx context.Context, r request, out any) error {
	req := p.client.R().SetContext(ctx)
	if r.query != nil {
		req.SetQueryParamsFromValues(r.query)
	}
	if r.headers != nil {
		req.SetHeaders(r.headers)
	}
	if r.body != nil {
		req.SetBody(r.body)
	}

	resp, err := req.Execute(r.method, r.path)
	if err != nil {
		p.logger.Error("Backend request failed",
			zap.String("method", r.method),
			zap.String("path", r.path),
			zap.Error(err),
		)
		return fmt.Errorf("backend request failed: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		apiErr := &Error{Status: resp.StatusCode()}
		if len(resp.Body()) > 0 {
			_ = json.Unmarshal(resp.Body(), apiErr)
		}
		p.logger.Warn("Backend returned error",
			zap.String("method", r.method),
			zap.String("path", r.path),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("code", apiErr.Code),
			zap.String("message", apiErr.Message),
		)
		if apiErr.Code == codeNoRows {
			return ErrNotFound
		}
		return apiErr
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to decode backend response: %w", err)
	}
	return nil
}

func ilikeContains(q string) string {
	return "ilike.*" + q + "*"
}

// SearchClients returns up to 10 clients whose name contains query
func (p *PostgREST) SearchClients(ctx context.Context, query string) ([]models.Client, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []models.Client{}, nil
	}
	var rows []models.Client
	err := p.do(ctx, request{
		method: http.MethodGet,
		path:   "/klien",
		query: url.Values{
			"select":     {clientCols},
			"nama_klien": {ilikeContains(q)},
			"order":      {"nama_klien.asc"},
			"limit":      {fmt.Sprint(SearchLimit)},
		},
	}, &rows)
	return rows, err
}

// SearchApplicants returns up to 10 applicants whose name contains query
func (p *PostgREST) SearchApplicants(ctx context.Context, query string) ([]models.Applicant, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []models.Applicant{}, nil
	}
	var rows []models.Applicant
	err := p.do(ctx, request{
		method: http.MethodGet,
		path:   "/pemohon",
		query: url.Values{
			"select":       {applicantCols},
			"nama_pemohon": {ilikeContains(q)},
			"order":        {"nama_pemohon.asc"},
			"limit":        {fmt.Sprint(SearchLimit)},
		},
	}, &rows)
	return rows, err
}

func phoneFilter(phone string) string {
	if phone == "" {
		return "is.null"
	}
	return "eq." + phone
}

// FindClient looks up a client by exact (case-insensitive) name and phone
func (p *PostgREST) FindClient(ctx context.Context, name, phone string) (*models.Client, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	var rows []models.Client
	err := p.do(ctx, request{
		method: http.MethodGet,
		path:   "/klien",
		query: url.Values{
			"select":              {clientCols},
			"nama_klien":          {"ilike." + name},
			"nomor_telepon_klien": {phoneFilter(phone)},
			"limit":               {fmt.Sprint(SearchLimit)},
		},
	}, &rows)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if strings.EqualFold(strings.TrimSpace(rows[i].NamaKlien), name) {
			return &rows[i], nil
		}
	}
	return nil, ErrNotFound
}

// FindApplicant looks up an applicant by exact (case-insensitive) name and phone
func (p *PostgREST) FindApplicant(ctx context.Context, name, phone string) (*models.Applicant, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	var rows []models.Applicant
	err := p.do(ctx, request{
		method: http.MethodGet,
		path:   "/pemohon",
		query: url.Values{
			"select":                {applicantCols},
			"nama_pemohon":          {"ilike." + name},
			"nomor_telepon_pemohon": {phoneFilter(phone)},
			"limit":                 {fmt.Sprint(SearchLimit)},
		},
	}, &rows)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if strings.EqualFold(strings.TrimSpace(rows[i].NamaPemohon), name) {
			return &rows[i], nil
		}
	}
	return nil, ErrNotFound
}

// insertOne posts a row and decodes the single returned representation
func (p *PostgREST) insertOne(ctx context.Context, path, cols string, body map[string]any, out any) error {
	var raw []json.RawMessage
	err := p.do(ctx, request{
		method:  http.MethodPost,
		path:    path,
		query:   url.Values{"select": {cols}},
		body:    body,
		headers: map[string]string{"Prefer": preferRepresentation},
	}, &raw)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return fmt.Errorf("insert into %s returned no row", strings.TrimPrefix(path, "/"))
	}
	return json.Unmarshal(raw[0], out)
}

// CreateClient inserts a client
func (p *PostgREST) CreateClient(ctx context.Context, c *models.Client) (*models.Client, error) {
	var created models.Client
	err := p.insertOne(ctx, "/klien", clientCols, map[string]any{
		"nama_klien":          c.NamaKlien,
		"nomor_telepon_klien": c.NomorTeleponKlien,
	}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// CreateApplicant inserts an applicant
func (p *PostgREST) CreateApplicant(ctx context.Context, a *models.Applicant) (*models.Applicant, error) {
	var created models.Applicant
	err := p.insertOne(ctx, "/pemohon", applicantCols, map[string]any{
		"nama_pemohon":          a.NamaPemohon,
		"nomor_telepon_pemohon": a.NomorTeleponPemohon,
		"nik_pemohon":           a.NIKPemohon,
		"alamat_pemohon":        a.AlamatPemohon,
	}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// CreateSurveyor inserts a surveyor
func (p *PostgREST) CreateSurveyor(ctx context.Context, s *models.Surveyor) (*models.Surveyor, error) {
	var created models.Surveyor
	err := p.insertOne(ctx, "/surveyor", surveyorCols, map[string]any{
		"nama":    s.Nama,
		"hp":      s.HP,
		"lisensi": s.Lisensi,
	}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ListSurveyors returns every surveyor ordered by name
func (p *PostgREST) ListSurveyors(ctx context.Context) ([]models.Surveyor, error) {
	var rows []models.Surveyor
	err := p.do(ctx, request{
		method: http.MethodGet,
		path:   "/surveyor",
		query:  url.Values{"select": {surveyorCols}, "order": {"nama.asc"}},
	}, &rows)
	return rows, err
}

// CreateCase inserts new contacts and then the case. When the case insert
// fails or comes back without a generated code, the rows created by this
// call are deleted again, the case first.
func (p *PostgREST) CreateCase(ctx context.Context, in Stage1Create) (*CaseRef, error) {
	var created []string // "table:id"
	rollback := func() {
		for _, ref := range created {
			table, id, _ := strings.Cut(ref, ":")
			err := p.do(context.WithoutCancel(ctx), request{
				method: http.MethodDelete,
				path:   "/" + table,
				query:  url.Values{"id": {"eq." + id}},
			}, nil)
			if err != nil {
				p.logger.Error("Failed to remove row after case insert failure",
					zap.String("table", table),
					zap.String("id", id),
					zap.Error(err),
				)
			}
		}
	}

	clientID := in.ClientID
	if in.NewClient != nil {
		c, err := p.CreateClient(ctx, in.NewClient)
		if err != nil {
			return nil, err
		}
		clientID = c.ID
		created = append(created, "klien:"+c.ID)
	}

	applicantID := in.ApplicantID
	if in.NewApplicant != nil {
		a, err := p.CreateApplicant(ctx, in.NewApplicant)
		if err != nil {
			rollback()
			return nil, err
		}
		applicantID = a.ID
		created = append(created, "pemohon:"+a.ID)
	}

	body := make(map[string]any, len(in.Fields)+3)
	for k, v := range in.Fields {
		body[k] = v
	}
	body["kode_kjsb"] = nullIfEmpty(in.KodeKJSB)
	body["klien_id"] = nullIfEmpty(clientID)
	body["pemohon_id"] = nullIfEmpty(applicantID)

	var ref CaseRef
	if err := p.insertOne(ctx, "/proyek_kjsb", "id,kode_kjsb", body, &ref); err != nil {
		rollback()
		return nil, err
	}
	if ref.KodeKJSB == "" {
		if ref.ID != "" {
			created = append([]string{"proyek_kjsb:" + ref.ID}, created...)
		}
		rollback()
		return nil, ErrCodeNotGenerated
	}
	return &ref, nil
}

// GetCase loads a case with its contact and surveyor projections
func (p *PostgREST) GetCase(ctx context.Context, code string) (*models.Case, error) {
	var c models.Case
	err := p.do(ctx, request{
		method: http.MethodGet,
		path:   "/proyek_kjsb",
		query: url.Values{
			"select":    {caseSelect},
			"kode_kjsb": {"eq." + code},
		},
		headers: map[string]string{"Accept": acceptObject},
	}, &c)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateCase patches the columns in patch on the case with the given code
func (p *PostgREST) UpdateCase(ctx context.Context, code string, patch map[string]any) error {
	var rows []struct {
		ID string `json:"id"`
	}
	err := p.do(ctx, request{
		method: http.MethodPatch,
		path:   "/proyek_kjsb",
		query: url.Values{
			"kode_kjsb": {"eq." + code},
			"select":    {"id"},
		},
		body:    patch,
		headers: map[string]string{"Prefer": preferRepresentation},
	}, &rows)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStage4WithGeometry calls the stored procedure that reprojects the
// geometry, computes the area and stores the stage 4 fields
func (p *PostgREST) UpdateStage4WithGeometry(ctx context.Context, call Stage4Call) error {
	return p.do(ctx, request{
		method: http.MethodPost,
		path:   "/rpc/" + Stage4Procedure,
		body:   call.Params(),
	}, nil)
}

// ListCases returns every case ordered by code
func (p *PostgREST) ListCases(ctx context.Context) ([]models.Case, error) {
	var rows []models.Case
	err := p.do(ctx, request{
		method: http.MethodGet,
		path:   "/proyek_kjsb",
		query:  url.Values{"select": {caseSelect}, "order": {"kode_kjsb.asc"}},
	}, &rows)
	return rows, err
}

// SuggestCodes returns up to 10 codes containing query, alphabetically
func (p *PostgREST) SuggestCodes(ctx context.Context, query string) ([]string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []string{}, nil
	}
	var rows []struct {
		KodeKJSB *string `json:"kode_kjsb"`
	}
	err := p.do(ctx, request{
		method: http.MethodGet,
		path:   "/proyek_kjsb",
		query: url.Values{
			"select":    {"kode_kjsb"},
			"kode_kjsb": {ilikeContains(q)},
			"order":     {"kode_kjsb.asc"},
			"limit":     {fmt.Sprint(SuggestionLimit)},
		},
	}, &rows)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.KodeKJSB != nil && *r.KodeKJSB != "" {
			codes = append(codes, *r.KodeKJSB)
		}
	}
	return codes, nil
}

// SuggestApplicantNames returns distinct applicant names on the map that
// contain query
func (p *PostgREST) SuggestApplicantNames(ctx context.Context, query string) ([]string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []string{}, nil
	}
	var rows []struct {
		NamaPemohon *string `json:"nama_pemohon"`
	}
	err := p.do(ctx, request{
		method: http.MethodGet,
		path:   "/proyek_kjsb_map",
		query: url.Values{
			"select":       {"nama_pemohon"},
			"nama_pemohon": {ilikeContains(q)},
			"limit":        {fmt.Sprint(SuggestionFetchLimit)},
		},
	}, &rows)
	if err != nil {
		return nil, err
	}
	names := make([]*string, len(rows))
	for i, r := range rows {
		names[i] = r.NamaPemohon
	}
	return DistinctNames(names, SuggestionLimit), nil
}

// ListMapFeatures returns the map view, optionally filtered by applicant name
func (p *PostgREST) ListMapFeatures(ctx context.Context, applicantName string) ([]models.MapFeature, error) {
	query := url.Values{"select": {"id,kode_kjsb,nama_pemohon,geom"}}
	if name := strings.TrimSpace(applicantName); name != "" {
		query.Set("nama_pemohon", ilikeContains(name))
	}
	var rows []models.MapFeature
	err := p.do(ctx, request{method: http.MethodGet, path: "/proyek_kjsb_map", query: query}, &rows)
	return rows, err
}

// Ping checks that the REST layer answers
func (p *PostgREST) Ping(ctx context.Context) error {
	return p.do(ctx, request{
		method: http.MethodGet,
		path:   "/surveyor",
		query:  url.Values{"select": {"id"}, "limit": {"1"}},
	}, nil)
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.TrimSpace(s)
}

// DistinctNames drops blank names and duplicates, keeping first-seen order,
// and caps the result at limit
func DistinctNames(names []*string, limit int) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, limit)
	for _, n := range names {
		if n == nil || strings.TrimSpace(*n) == "" || seen[*n] {
			continue
		}
		seen[*n] = true
		out = append(out, *n)
		if len(out) == limit {
			break
		}
	}
	return out
}
