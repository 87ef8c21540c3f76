package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"kjsb_flow_app_go/models"
	"kjsb_flow_app_go/services/geo"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Local is the Store backed by a GORM database. It reproduces what the
// managed backend does server side: code generation, the map view and the
// stage 4 stored procedure.
type Local struct {
	db     *gorm.DB
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

// NewLocal wraps an open database. prefix is the case code prefix.
func NewLocal(db *gorm.DB, prefix string, logger *zap.Logger) *Local {
	if prefix == "" {
		prefix = DefaultCodePrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Local{db: db, prefix: prefix, logger: logger, now: time.Now}
}

// Models lists the tables the local backend needs
func Models() []interface{} {
	return []interface{}{&models.Client{}, &models.Applicant{}, &models.Surveyor{}, &models.Case{}}
}

// Migrate creates or updates the local tables
func (l *Local) Migrate() error {
	if err := l.db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// likeContains builds a lower-cased LIKE pattern with wildcards escaped
func likeContains(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(q)) + "%"
}

const likeEscape = ` ESCAPE '\'`

// SearchClients returns up to 10 clients whose name contains query
func (l *Local) SearchClients(ctx context.Context, query string) ([]models.Client, error) {
	rows := []models.Client{}
	q := strings.TrimSpace(query)
	if q == "" {
		return rows, nil
	}
	err := l.db.WithContext(ctx).
		Where("LOWER(nama_klien) LIKE ?"+likeEscape, likeContains(q)).
		Order("nama_klien").
		Limit(SearchLimit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search clients: %w", err)
	}
	return rows, nil
}

// SearchApplicants returns up to 10 applicants whose name contains query
func (l *Local) SearchApplicants(ctx context.Context, query string) ([]models.Applicant, error) {
	rows := []models.Applicant{}
	q := strings.TrimSpace(query)
	if q == "" {
		return rows, nil
	}
	err := l.db.WithContext(ctx).
		Where("LOWER(nama_pemohon) LIKE ?"+likeEscape, likeContains(q)).
		Order("nama_pemohon").
		Limit(SearchLimit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search applicants: %w", err)
	}
	return rows, nil
}

func wherePhone(tx *gorm.DB, column, phone string) *gorm.DB {
	if phone == "" {
		return tx.Where(fmt.Sprintf("(%s IS NULL OR %s = '')", column, column))
	}
	return tx.Where(column+" = ?", phone)
}

// FindClient looks up a client by exact (case-insensitive) name and phone
func (l *Local) FindClient(ctx context.Context, name, phone string) (*models.Client, error) {
	var c models.Client
	tx := l.db.WithContext(ctx).Where("LOWER(TRIM(nama_klien)) = ?", strings.ToLower(strings.TrimSpace(name)))
	err := wherePhone(tx, "nomor_telepon_klien", strings.TrimSpace(phone)).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	return &c, nil
}

// FindApplicant looks up an applicant by exact (case-insensitive) name and phone
func (l *Local) FindApplicant(ctx context.Context, name, phone string) (*models.Applicant, error) {
	var a models.Applicant
	tx := l.db.WithContext(ctx).Where("LOWER(TRIM(nama_pemohon)) = ?", strings.ToLower(strings.TrimSpace(name)))
	err := wherePhone(tx, "nomor_telepon_pemohon", strings.TrimSpace(phone)).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find applicant: %w", err)
	}
	return &a, nil
}

// CreateClient inserts a client
func (l *Local) CreateClient(ctx context.Context, c *models.Client) (*models.Client, error) {
	if err := l.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return c, nil
}

// CreateApplicant inserts an applicant
func (l *Local) CreateApplicant(ctx context.Context, a *models.Applicant) (*models.Applicant, error) {
	if err := l.db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, fmt.Errorf("failed to create applicant: %w", err)
	}
	return a, nil
}

// CreateSurveyor inserts a surveyor
func (l *Local) CreateSurveyor(ctx context.Context, s *models.Surveyor) (*models.Surveyor, error) {
	if err := l.db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, fmt.Errorf("failed to create surveyor: %w", err)
	}
	return s, nil
}

// ListSurveyors returns every surveyor ordered by name
func (l *Local) ListSurveyors(ctx context.Context) ([]models.Surveyor, error) {
	rows := []models.Surveyor{}
	if err := l.db.WithContext(ctx).Order("nama").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list surveyors: %w", err)
	}
	return rows, nil
}

// applyFields copies column-keyed values onto a case through its JSON tags
func applyFields(c *models.Case, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, c)
}

// CreateCase creates new contacts and the case in one transaction
func (l *Local) CreateCase(ctx context.Context, in Stage1Create) (*CaseRef, error) {
	var ref CaseRef
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c := models.Case{}
		if err := applyFields(&c, in.Fields); err != nil {
			return &Error{Code: "22P02", Message: "invalid case fields", Details: err.Error(), Status: http.StatusBadRequest}
		}

		if in.NewClient != nil {
			if err := tx.Create(in.NewClient).Error; err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}
			c.KlienID = &in.NewClient.ID
		} else if in.ClientID != "" {
			id := in.ClientID
			c.KlienID = &id
		}

		if in.NewApplicant != nil {
			if err := tx.Create(in.NewApplicant).Error; err != nil {
				return fmt.Errorf("failed to create applicant: %w", err)
			}
			c.PemohonID = &in.NewApplicant.ID
		} else if in.ApplicantID != "" {
			id := in.ApplicantID
			c.PemohonID = &id
		}

		code := strings.TrimSpace(in.KodeKJSB)
		if code != "" {
			var count int64
			if err := tx.Model(&models.Case{}).Where("kode_kjsb = ?", code).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check case code: %w", err)
			}
			if count > 0 {
				return &Error{
					Code:    "23505",
					Message: fmt.Sprintf("Kode KJSB %s sudah digunakan", code),
					Status:  http.StatusConflict,
				}
			}
		} else {
			generated, err := EnsureUniqueCode(tx, l.prefix, l.now())
			if err != nil {
				return err
			}
			code = generated
		}
		c.KodeKJSB = &code

		if err := tx.Create(&c).Error; err != nil {
			return fmt.Errorf("failed to create case: %w", err)
		}
		ref = CaseRef{ID: c.ID, KodeKJSB: code}
		return nil
	})
	if err != nil {
		l.logger.Warn("Case creation rolled back", zap.Error(err))
		return nil, err
	}
	return &ref, nil
}

// GetCase loads a case with its contacts and surveyor
func (l *Local) GetCase(ctx context.Context, code string) (*models.Case, error) {
	var c models.Case
	err := l.db.WithContext(ctx).
		Preload("Klien").
		Preload("Pemohon").
		Preload("Surveyor").
		Where("kode_kjsb = ?", code).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load case: %w", err)
	}
	return &c, nil
}

// UpdateCase patches the columns in patch on the case with the given code
func (l *Local) UpdateCase(ctx context.Context, code string, patch map[string]any) error {
	if len(patch) == 0 {
		_, err := l.GetCase(ctx, code)
		return err
	}
	result := l.db.WithContext(ctx).Model(&models.Case{}).Where("kode_kjsb = ?", code).Updates(patch)
	if result.Error != nil {
		return fmt.Errorf("failed to update case: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStage4WithGeometry emulates update_proyek_tahap4_with_geom: the
// geometry is reprojected to EPSG:4326, its area stored in
// luas_hitung_otomatis and the stage 4 fields applied, in one transaction.
func (l *Local) UpdateStage4WithGeometry(ctx context.Context, call Stage4Call) error {
	g, _, err := geo.ExtractGeometry([]byte(call.GeoJSON))
	if err != nil {
		return &Error{Code: "22023", Message: err.Error(), Status: http.StatusBadRequest}
	}
	srid := call.InputSRID
	if srid != geo.SRIDTM3 {
		srid = geo.SRIDWGS84
	}

	area := geo.Area(g, srid)
	encoded, err := json.Marshal(geojson.NewGeometry(geo.ReprojectToWGS84(g, srid)))
	if err != nil {
		return fmt.Errorf("failed to encode geometry: %w", err)
	}

	updates := map[string]any{
		"geom":                 datatypes.JSON(encoded),
		"luas_hitung_otomatis": area,
	}
	for _, f := range models.FieldsForStage(4) {
		updates[f.Name] = call.Fields[f.Name]
	}

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Case{}).Where("kode_kjsb = ?", call.KodeKJSB).Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to store stage 4: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListCases returns every case ordered by code
func (l *Local) ListCases(ctx context.Context) ([]models.Case, error) {
	rows := []models.Case{}
	err := l.db.WithContext(ctx).
		Preload("Klien").
		Preload("Pemohon").
		Preload("Surveyor").
		Order("kode_kjsb").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	return rows, nil
}

// SuggestCodes returns up to 10 codes containing query, alphabetically
func (l *Local) SuggestCodes(ctx context.Context, query string) ([]string, error) {
	codes := []string{}
	q := strings.TrimSpace(query)
	if q == "" {
		return codes, nil
	}
	err := l.db.WithContext(ctx).Model(&models.Case{}).
		Where("kode_kjsb IS NOT NULL AND kode_kjsb <> ''").
		Where("LOWER(kode_kjsb) LIKE ?"+likeEscape, likeContains(q)).
		Order("kode_kjsb").
		Limit(SuggestionLimit).
		Pluck("kode_kjsb", &codes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to suggest codes: %w", err)
	}
	return codes, nil
}

// mapView mirrors the proyek_kjsb_map view
func (l *Local) mapView(ctx context.Context) *gorm.DB {
	return l.db.WithContext(ctx).
		Table("proyek_kjsb").
		Select("proyek_kjsb.id AS id, proyek_kjsb.kode_kjsb AS kode_kjsb, pemohon.nama_pemohon AS nama_pemohon, proyek_kjsb.geom AS geom").
		Joins("LEFT JOIN pemohon ON pemohon.id = proyek_kjsb.pemohon_id")
}

// SuggestApplicantNames returns distinct applicant names on the map that
// contain query
func (l *Local) SuggestApplicantNames(ctx context.Context, query string) ([]string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []string{}, nil
	}
	var rows []models.MapFeature
	err := l.mapView(ctx).
		Where("LOWER(pemohon.nama_pemohon) LIKE ?"+likeEscape, likeContains(q)).
		Limit(SuggestionFetchLimit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to suggest applicant names: %w", err)
	}
	names := make([]*string, len(rows))
	for i := range rows {
		names[i] = rows[i].NamaPemohon
	}
	return DistinctNames(names, SuggestionLimit), nil
}

// ListMapFeatures returns the map view, optionally filtered by applicant name
func (l *Local) ListMapFeatures(ctx context.Context, applicantName string) ([]models.MapFeature, error) {
	rows := []models.MapFeature{}
	tx := l.mapView(ctx)
	if name := strings.TrimSpace(applicantName); name != "" {
		tx = tx.Where("LOWER(pemohon.nama_pemohon) LIKE ?"+likeEscape, likeContains(name))
	}
	if err := tx.Order("proyek_kjsb.kode_kjsb").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list map features: %w", err)
	}
	return rows, nil
}

// Ping checks the database connection
func (l *Local) Ping(ctx context.Context) error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
