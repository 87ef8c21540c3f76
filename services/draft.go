package services

import (
	"context"
	"math"
	"net/url"
	"strconv"

	"kjsb_flow_app_go/models"
	"kjsb_flow_app_go/services/i18n"
)

// Draft holds the edits of one stage form against the values loaded from
// the backend. Only fields that actually changed are submitted.
type Draft struct {
	stage    int
	fields   []models.FieldSpec
	original map[string]string
	values   map[string]string
	loaded   bool
}

// NewDraft snapshots the stage fields of c. A nil case starts an empty
// draft used for creation.
func NewDraft(stage int, c *models.Case) *Draft {
	d := &Draft{
		stage:    stage,
		fields:   models.FieldsForStage(stage),
		original: make(map[string]string),
		values:   make(map[string]string),
		loaded:   c != nil,
	}
	if c != nil {
		current := c.FieldValues()
		for _, f := range d.fields {
			d.original[f.Name] = current[f.Name]
			d.values[f.Name] = current[f.Name]
		}
	}
	return d
}

// Stage returns the stage the draft belongs to
func (d *Draft) Stage() int {
	return d.stage
}

// Fields returns the catalogue entries edited by the draft
func (d *Draft) Fields() []models.FieldSpec {
	return d.fields
}

// IsCreate reports whether no case was loaded
func (d *Draft) IsCreate() bool {
	return !d.loaded
}

// Set records an edit. Unknown fields are ignored.
func (d *Draft) Set(field, raw string) {
	if _, ok := models.LookupField(d.stage, field); !ok {
		return
	}
	d.values[field] = SanitizeText(raw)
}

// BindForm applies every stage field present in form
func (d *Draft) BindForm(form url.Values) {
	for _, f := range d.fields {
		if vals, ok := form[f.Name]; ok && len(vals) > 0 {
			d.Set(f.Name, vals[0])
		}
	}
}

// Value returns the current value of a field
func (d *Draft) Value(field string) string {
	return d.values[field]
}

// Values returns a copy of the current values keyed by column
func (d *Draft) Values() map[string]string {
	out := make(map[string]string, len(d.values))
	for k, v := range d.values {
		out[k] = v
	}
	return out
}

// Validate checks dates, numbers and enum options. The first offending
// field is reported.
func (d *Draft) Validate(ctx context.Context) error {
	for _, f := range d.fields {
		v := d.values[f.Name]
		if v == "" {
			continue
		}
		args := map[string]interface{}{"label": f.Label}
		switch f.Kind {
		case models.FieldDate:
			if _, err := ParseDate(v); err != nil {
				return NewValidationError(f.Name, i18n.T(ctx, "validation.invalid_date", args))
			}
		case models.FieldNumber:
			if _, ok := parseNumber(v); !ok {
				return NewValidationError(f.Name, i18n.T(ctx, "validation.invalid_number", args))
			}
		case models.FieldEnum:
			if !f.HasOption(v) {
				return NewValidationError(f.Name, i18n.T(ctx, "validation.invalid_option", args))
			}
		}
	}
	return nil
}

// Diff returns the changed fields with typed values. A cleared field maps
// to nil so the column is set to null.
func (d *Draft) Diff() map[string]any {
	diff := make(map[string]any)
	for _, f := range d.fields {
		before, after := d.original[f.Name], d.values[f.Name]
		if sameValue(f.Kind, before, after) {
			continue
		}
		diff[f.Name] = typedValue(f.Kind, after)
	}
	return diff
}

// Dirty reports whether any field changed
func (d *Draft) Dirty() bool {
	return len(d.Diff()) > 0
}

// Typed returns every stage field with its typed value, empty as nil
func (d *Draft) Typed() map[string]any {
	out := make(map[string]any, len(d.fields))
	for _, f := range d.fields {
		out[f.Name] = typedValue(f.Kind, d.values[f.Name])
	}
	return out
}

// Filled returns only the non-empty fields with typed values
func (d *Draft) Filled() map[string]any {
	out := make(map[string]any)
	for _, f := range d.fields {
		if v := d.values[f.Name]; v != "" {
			out[f.Name] = typedValue(f.Kind, v)
		}
	}
	return out
}

func sameValue(kind models.FieldKind, a, b string) bool {
	if a == b {
		return true
	}
	if kind == models.FieldNumber && a != "" && b != "" {
		fa, okA := parseNumber(a)
		fb, okB := parseNumber(b)
		return okA && okB && fa == fb
	}
	return false
}

func typedValue(kind models.FieldKind, v string) any {
	if v == "" {
		return nil
	}
	if kind == models.FieldNumber {
		if f, ok := parseNumber(v); ok {
			return f
		}
	}
	return v
}

func parseNumber(v string) (float64, bool) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
