package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client is the party commissioning the survey (klien)
type Client struct {
	ID                string    `gorm:"type:uuid;primarykey" json:"id"`
	NamaKlien         string    `gorm:"not null;index" json:"nama_klien"`
	NomorTeleponKlien *string   `json:"nomor_telepon_klien"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// BeforeCreate hook to generate UUID
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Client model
func (Client) TableName() string {
	return "klien"
}

// Phone returns the phone number or an empty string
func (c *Client) Phone() string {
	if c == nil || c.NomorTeleponKlien == nil {
		return ""
	}
	return *c.NomorTeleponKlien
}

// Applicant is the land holder named on the application (pemohon)
type Applicant struct {
	ID                  string    `gorm:"type:uuid;primarykey" json:"id"`
	NamaPemohon         string    `gorm:"not null;index" json:"nama_pemohon"`
	NomorTeleponPemohon *string   `json:"nomor_telepon_pemohon"`
	NIKPemohon          *string   `gorm:"column:nik_pemohon" json:"nik_pemohon"`
	AlamatPemohon       *string   `json:"alamat_pemohon"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// BeforeCreate hook to generate UUID
func (a *Applicant) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Applicant model
func (Applicant) TableName() string {
	return "pemohon"
}

// Phone returns the phone number or an empty string
func (a *Applicant) Phone() string {
	if a == nil || a.NomorTeleponPemohon == nil {
		return ""
	}
	return *a.NomorTeleponPemohon
}

// Surveyor is a licensed field surveyor linked to a case at stage 3
type Surveyor struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	Nama      string    `gorm:"not null" json:"nama"`
	HP        *string   `gorm:"column:hp" json:"hp"`
	Lisensi   *string   `json:"lisensi"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate hook to generate UUID
func (s *Surveyor) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Surveyor model
func (Surveyor) TableName() string {
	return "surveyor"
}
