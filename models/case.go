package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Land use options recorded at stage 1 (penggunaan_tanah_a)
const (
	LandUsePertanian    = "pertanian"
	LandUseHunian       = "hunian"
	LandUseKomersial    = "komersial"
	LandUseIndustri     = "industri"
	LandUsePertambangan = "pertambangan"
)

// Land use options recorded at stage 4 (penggunaan_tanah_b)
const (
	LandUseBPertanian    = "pertanian"
	LandUseBNonPertanian = "non_pertanian"
)

// Case is one land-registration workflow instance (proyek_kjsb).
// Every stage field is optional; dates are ISO YYYY-MM-DD strings as the
// backend returns them.
type Case struct {
	ID                 string         `gorm:"type:uuid;primarykey" json:"id"`
	KodeKJSB           *string        `gorm:"column:kode_kjsb;uniqueIndex" json:"kode_kjsb"`
	Geom               datatypes.JSON `json:"geom,omitempty"`
	LuasHitungOtomatis *float64       `json:"luas_hitung_otomatis,omitempty"`

	// Contacts
	KlienID    *string    `gorm:"type:uuid;index" json:"klien_id,omitempty"`
	Klien      *Client    `gorm:"foreignKey:KlienID" json:"klien,omitempty"`
	PemohonID  *string    `gorm:"type:uuid;index" json:"pemohon_id,omitempty"`
	Pemohon    *Applicant `gorm:"foreignKey:PemohonID" json:"pemohon,omitempty"`
	SurveyorID *string    `gorm:"type:uuid;index" json:"surveyor_id,omitempty"`
	Surveyor   *Surveyor  `gorm:"foreignKey:SurveyorID" json:"surveyor,omitempty"`

	// Stage 1 - registration, documents and payment
	TglPermohonan    *string  `json:"tgl_permohonan,omitempty"`
	LuasPermohonan   *float64 `json:"luas_permohonan,omitempty"`
	PenggunaanTanahA *string  `json:"penggunaan_tanah_a,omitempty"`
	NoTandaTerima    *string  `json:"no_tanda_terima,omitempty"`
	TglTandaTerima   *string  `json:"tgl_tanda_terima,omitempty"`
	NoSLA            *string  `gorm:"column:no_sla" json:"no_sla,omitempty"`
	TglSLA           *string  `gorm:"column:tgl_sla" json:"tgl_sla,omitempty"`
	NoInvoice        *string  `json:"no_invoice,omitempty"`
	TglInvoice       *string  `json:"tgl_invoice,omitempty"`
	NoKwitansi       *string  `json:"no_kwitansi,omitempty"`
	TglKwitansi      *string  `json:"tgl_kwitansi,omitempty"`
	NominalBayar     *float64 `json:"nominal_bayar,omitempty"`

	// Stage 2 - spatial file and SPS
	NoBerkasSpasial    *string  `json:"no_berkas_spasial,omitempty"`
	TglBerkasSpasial   *string  `json:"tgl_berkas_spasial,omitempty"`
	NIBEksisting       *string  `gorm:"column:nib_eksisting" json:"nib_eksisting,omitempty"`
	TglSPSSpasial      *string  `gorm:"column:tgl_sps_spasial" json:"tgl_sps_spasial,omitempty"`
	BiayaSPSSpasial    *float64 `gorm:"column:biaya_sps_spasial" json:"biaya_sps_spasial,omitempty"`
	TglBayarSPSSpasial *string  `gorm:"column:tgl_bayar_sps_spasial" json:"tgl_bayar_sps_spasial,omitempty"`
	TglDownload        *string  `json:"tgl_download,omitempty"`

	// Stage 3 - assignment letter, notice and measurement
	NoST                  *string `gorm:"column:no_st" json:"no_st,omitempty"`
	TglST                 *string `gorm:"column:tgl_st" json:"tgl_st,omitempty"`
	NoSuratPemberitahuan  *string `json:"no_surat_pemberitahuan,omitempty"`
	TglSuratPemberitahuan *string `json:"tgl_surat_pemberitahuan,omitempty"`
	TglPengukuran         *string `json:"tgl_pengukuran,omitempty"`

	// Stage 4 - GU legalisation, NIB and PBT
	NoBerkasLegalisasiGU  *string  `gorm:"column:no_berkas_legalisasi_gu" json:"no_berkas_legalisasi_gu,omitempty"`
	TglBerkasLegalisasiGU *string  `gorm:"column:tgl_berkas_legalisasi_gu" json:"tgl_berkas_legalisasi_gu,omitempty"`
	LuasHasilUkur         *float64 `json:"luas_hasil_ukur,omitempty"`
	PenggunaanTanahB      *string  `json:"penggunaan_tanah_b,omitempty"`
	TglSPSLegalGU         *string  `gorm:"column:tgl_sps_legal_gu" json:"tgl_sps_legal_gu,omitempty"`
	BiayaSPSLegalGU       *float64 `gorm:"column:biaya_sps_legal_gu" json:"biaya_sps_legal_gu,omitempty"`
	TglBayarSPSLegalGU    *string  `gorm:"column:tgl_bayar_sps_legal_gu" json:"tgl_bayar_sps_legal_gu,omitempty"`
	NoGU                  *string  `gorm:"column:no_gu" json:"no_gu,omitempty"`
	TglGU                 *string  `gorm:"column:tgl_gu" json:"tgl_gu,omitempty"`
	NIB                   *string  `gorm:"column:nib" json:"nib,omitempty"`
	TglNIB                *string  `gorm:"column:tgl_nib" json:"tgl_nib,omitempty"`
	NoPBT                 *string  `gorm:"column:no_pbt" json:"no_pbt,omitempty"`
	TglPBT                *string  `gorm:"column:tgl_pbt" json:"tgl_pbt,omitempty"`

	// Stage 5 - signing, upload and completion at BPN
	TglTTEGU      *string `gorm:"column:tgl_tte_gu" json:"tgl_tte_gu,omitempty"`
	TglTTEPBT     *string `gorm:"column:tgl_tte_pbt" json:"tgl_tte_pbt,omitempty"`
	TglUploadGU   *string `gorm:"column:tgl_upload_gu" json:"tgl_upload_gu,omitempty"`
	TglUploadPBT  *string `gorm:"column:tgl_upload_pbt" json:"tgl_upload_pbt,omitempty"`
	TglSelesaiBPN *string `gorm:"column:tgl_selesai_bpn" json:"tgl_selesai_bpn,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook to generate UUID
func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Case model
func (Case) TableName() string {
	return "proyek_kjsb"
}

// Code returns the case code or an empty string when it was never generated
func (c *Case) Code() string {
	if c == nil || c.KodeKJSB == nil {
		return ""
	}
	return *c.KodeKJSB
}

// ApplicantName returns the linked applicant's name, if any
func (c *Case) ApplicantName() string {
	if c == nil || c.Pemohon == nil {
		return ""
	}
	return c.Pemohon.NamaPemohon
}

// HasGeometry reports whether a boundary has been stored for the case
func (c *Case) HasGeometry() bool {
	return HasGeometry(c.Geom)
}

// IsCompleted checks if the case was closed at BPN (stage 5)
func (c *Case) IsCompleted() bool {
	return c.TglSelesaiBPN != nil && strings.TrimSpace(*c.TglSelesaiBPN) != ""
}

// FieldValues flattens the case columns into display strings keyed by
// column name. Missing and null columns map to "".
func (c *Case) FieldValues() map[string]string {
	values := make(map[string]string)
	if c == nil {
		return values
	}

	raw, err := json.Marshal(c)
	if err != nil {
		return values
	}
	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return values
	}

	for key, v := range generic {
		switch val := v.(type) {
		case string:
			values[key] = val
		case float64:
			values[key] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			values[key] = strconv.FormatBool(val)
		}
	}
	return values
}

// HasGeometry reports whether a raw GeoJSON column holds a geometry
func HasGeometry(raw []byte) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed != "" && trimmed != "null"
}

// IsValidLandUseA checks a stage 1 land use value
func IsValidLandUseA(v string) bool {
	switch v {
	case LandUsePertanian, LandUseHunian, LandUseKomersial, LandUseIndustri, LandUsePertambangan:
		return true
	}
	return false
}

// IsValidLandUseB checks a stage 4 land use value
func IsValidLandUseB(v string) bool {
	return v == LandUseBPertanian || v == LandUseBNonPertanian
}
