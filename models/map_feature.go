package models

import "gorm.io/datatypes"

// MapFeature is one row of the proyek_kjsb_map view: the case code, the
// applicant's name and the stored boundary in EPSG:4326.
type MapFeature struct {
	ID          string         `gorm:"column:id" json:"id"`
	KodeKJSB    *string        `gorm:"column:kode_kjsb" json:"kode_kjsb"`
	NamaPemohon *string        `gorm:"column:nama_pemohon" json:"nama_pemohon"`
	Geom        datatypes.JSON `gorm:"column:geom" json:"geom"`
}

// Code returns the case code or an empty string
func (f MapFeature) Code() string {
	if f.KodeKJSB == nil {
		return ""
	}
	return *f.KodeKJSB
}

// ApplicantName returns the applicant name or an empty string
func (f MapFeature) ApplicantName() string {
	if f.NamaPemohon == nil {
		return ""
	}
	return *f.NamaPemohon
}
