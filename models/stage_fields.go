package models

// FieldKind drives how a stage field is rendered, parsed and validated
type FieldKind string

const (
	FieldText   FieldKind = "text"
	FieldDate   FieldKind = "date"
	FieldNumber FieldKind = "number"
	FieldEnum   FieldKind = "enum"
)

// Option is one choice of an enum field
type Option struct {
	Value string
	Label string
}

// FieldSpec describes one proyek_kjsb column edited at a given stage
type FieldSpec struct {
	Name    string
	Label   string
	Kind    FieldKind
	Section string
	Options []Option
}

// StageCount is the number of workflow stages
const StageCount = 5

// LandUseAOptions are the stage 1 land use choices
var LandUseAOptions = []Option{
	{Value: LandUsePertanian, Label: "Pertanian"},
	{Value: LandUseHunian, Label: "Hunian"},
	{Value: LandUseKomersial, Label: "Komersial"},
	{Value: LandUseIndustri, Label: "Industri"},
	{Value: LandUsePertambangan, Label: "Pertambangan"},
}

// LandUseBOptions are the stage 4 land use choices
var LandUseBOptions = []Option{
	{Value: LandUseBPertanian, Label: "Pertanian"},
	{Value: LandUseBNonPertanian, Label: "Non Pertanian"},
}

// SRIDOptions are the coordinate systems accepted for stage 4 uploads
var SRIDOptions = []Option{
	{Value: "23835", Label: "TM-3 Zona 49.1 (EPSG:23835), hasil pengukuran"},
	{Value: "4326", Label: "WGS84 (lon/lat derajat, EPSG:4326)"},
}

const (
	sectionDocuments = "Dokumen & Pembayaran"
	sectionSpatial   = "Berkas Spasial & SPS"
	sectionNotice    = "ST & Surat Pemberitahuan"
	sectionGU        = "Legalisasi GU & Dokumen"
	sectionSigning   = "TTE & Selesai"
)

// StageFields lists, per stage, the case columns the stage form edits in
// display order. Contact and surveyor inputs are handled separately.
var StageFields = map[int][]FieldSpec{
	1: {
		{Name: "tgl_permohonan", Label: "Tanggal Permohonan", Kind: FieldDate, Section: "Data Klien & Pemohon"},
		{Name: "luas_permohonan", Label: "Luas Permohonan (m²)", Kind: FieldNumber, Section: "Data Klien & Pemohon"},
		{Name: "penggunaan_tanah_a", Label: "Penggunaan Tanah A", Kind: FieldEnum, Section: "Data Klien & Pemohon", Options: LandUseAOptions},
		{Name: "no_tanda_terima", Label: "No. Tanda Terima", Kind: FieldText, Section: sectionDocuments},
		{Name: "tgl_tanda_terima", Label: "Tgl. Tanda Terima", Kind: FieldDate, Section: sectionDocuments},
		{Name: "no_sla", Label: "No. SLA", Kind: FieldText, Section: sectionDocuments},
		{Name: "tgl_sla", Label: "Tgl. SLA", Kind: FieldDate, Section: sectionDocuments},
		{Name: "no_invoice", Label: "No. Invoice", Kind: FieldText, Section: sectionDocuments},
		{Name: "tgl_invoice", Label: "Tgl. Invoice", Kind: FieldDate, Section: sectionDocuments},
		{Name: "no_kwitansi", Label: "No. Kwitansi", Kind: FieldText, Section: sectionDocuments},
		{Name: "tgl_kwitansi", Label: "Tgl. Kwitansi", Kind: FieldDate, Section: sectionDocuments},
		{Name: "nominal_bayar", Label: "Nominal Bayar", Kind: FieldNumber, Section: sectionDocuments},
	},
	2: {
		{Name: "no_berkas_spasial", Label: "No. Berkas Spasial", Kind: FieldText, Section: sectionSpatial},
		{Name: "tgl_berkas_spasial", Label: "Tgl. Berkas Spasial", Kind: FieldDate, Section: sectionSpatial},
		{Name: "nib_eksisting", Label: "NIB Eksisting", Kind: FieldText, Section: sectionSpatial},
		{Name: "tgl_sps_spasial", Label: "Tgl. SPS Spasial", Kind: FieldDate, Section: sectionSpatial},
		{Name: "biaya_sps_spasial", Label: "Biaya SPS Spasial", Kind: FieldNumber, Section: sectionSpatial},
		{Name: "tgl_bayar_sps_spasial", Label: "Tgl. Bayar SPS Spasial", Kind: FieldDate, Section: sectionSpatial},
		{Name: "tgl_download", Label: "Tgl. Download", Kind: FieldDate, Section: sectionSpatial},
	},
	3: {
		{Name: "no_st", Label: "No. ST", Kind: FieldText, Section: sectionNotice},
		{Name: "tgl_st", Label: "Tgl. ST", Kind: FieldDate, Section: sectionNotice},
		{Name: "no_surat_pemberitahuan", Label: "No. Surat Pemberitahuan", Kind: FieldText, Section: sectionNotice},
		{Name: "tgl_surat_pemberitahuan", Label: "Tgl. Surat Pemberitahuan", Kind: FieldDate, Section: sectionNotice},
		{Name: "tgl_pengukuran", Label: "Tgl. Pengukuran", Kind: FieldDate, Section: sectionNotice},
	},
	4: {
		{Name: "no_berkas_legalisasi_gu", Label: "No. Berkas Legalisasi GU", Kind: FieldText, Section: sectionGU},
		{Name: "tgl_berkas_legalisasi_gu", Label: "Tgl. Berkas Legalisasi GU", Kind: FieldDate, Section: sectionGU},
		{Name: "luas_hasil_ukur", Label: "Luas Hasil Ukur (m²)", Kind: FieldNumber, Section: sectionGU},
		{Name: "penggunaan_tanah_b", Label: "Penggunaan Tanah B", Kind: FieldEnum, Section: sectionGU, Options: LandUseBOptions},
		{Name: "tgl_sps_legal_gu", Label: "Tgl. SPS Legal GU", Kind: FieldDate, Section: sectionGU},
		{Name: "biaya_sps_legal_gu", Label: "Biaya SPS Legal GU", Kind: FieldNumber, Section: sectionGU},
		{Name: "tgl_bayar_sps_legal_gu", Label: "Tgl. Bayar SPS Legal GU", Kind: FieldDate, Section: sectionGU},
		{Name: "no_gu", Label: "No. GU", Kind: FieldText, Section: sectionGU},
		{Name: "tgl_gu", Label: "Tgl. GU", Kind: FieldDate, Section: sectionGU},
		{Name: "nib", Label: "NIB", Kind: FieldText, Section: sectionGU},
		{Name: "tgl_nib", Label: "Tgl. NIB", Kind: FieldDate, Section: sectionGU},
		{Name: "no_pbt", Label: "No. PBT", Kind: FieldText, Section: sectionGU},
		{Name: "tgl_pbt", Label: "Tgl. PBT", Kind: FieldDate, Section: sectionGU},
	},
	5: {
		{Name: "tgl_tte_gu", Label: "Tgl. TTE GU", Kind: FieldDate, Section: sectionSigning},
		{Name: "tgl_tte_pbt", Label: "Tgl. TTE PBT", Kind: FieldDate, Section: sectionSigning},
		{Name: "tgl_upload_gu", Label: "Tgl. Upload GU", Kind: FieldDate, Section: sectionSigning},
		{Name: "tgl_upload_pbt", Label: "Tgl. Upload PBT", Kind: FieldDate, Section: sectionSigning},
		{Name: "tgl_selesai_bpn", Label: "Tgl. Selesai BPN", Kind: FieldDate, Section: sectionSigning},
	},
}

// StageDescriptions are shown under each stage page heading
var StageDescriptions = map[int]string{
	1: "Pendaftaran proyek baru – data klien, pemohon, dan dokumen administrasi.",
	2: "Data berkas spasial dan SPS.",
	3: "Data ST, surat pemberitahuan, pengukuran, dan surveyor.",
	4: "Legalisasi GU, GeoJSON, dan dokumen GU/NIB/PBT.",
	5: "TTE, upload dokumen, dan tanggal selesai BPN.",
}

// IsValidStage reports whether n names one of the workflow stages
func IsValidStage(n int) bool {
	return n >= 1 && n <= StageCount
}

// FieldsForStage returns the catalogue entries of a stage (nil when unknown)
func FieldsForStage(stage int) []FieldSpec {
	return StageFields[stage]
}

// LookupField finds a field of a stage by column name
func LookupField(stage int, name string) (FieldSpec, bool) {
	for _, f := range StageFields[stage] {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// AllFields returns every catalogue field in stage order
func AllFields() []FieldSpec {
	var all []FieldSpec
	for stage := 1; stage <= StageCount; stage++ {
		all = append(all, StageFields[stage]...)
	}
	return all
}

// HasOption reports whether value is one of the field's enum options
func (f FieldSpec) HasOption(value string) bool {
	for _, o := range f.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// DisplayValue renders a stored value for reading: enum values become their
// option label, everything else is returned unchanged.
func (f FieldSpec) DisplayValue(value string) string {
	if f.Kind == FieldEnum {
		for _, o := range f.Options {
			if o.Value == value {
				return o.Label
			}
		}
	}
	return value
}
