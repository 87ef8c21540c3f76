package partials

import (
	"strconv"

	"kjsb_flow_app_go/services"
)

// sections groups the draft's fields under their catalogue headings, in
// catalogue order
func sections(draft *services.Draft) []FormSection {
	var out []FormSection
	for _, f := range draft.Fields() {
		field := FormField{
			Name:    f.Name,
			Label:   f.Label,
			Kind:    string(f.Kind),
			Value:   draft.Value(f.Name),
			Options: f.Options,
		}
		if n := len(out); n > 0 && out[n-1].Title == f.Section {
			out[n-1].Fields = append(out[n-1].Fields, field)
			continue
		}
		out = append(out, FormSection{Title: f.Section, Fields: []FormField{field}})
	}
	return out
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// formatFileSize renders the stage 4 upload limit shown under the file input
func formatFileSize(n int64) string {
	units := []string{"B", "KB", "MB"}
	size := float64(n)
	unit := 0
	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}
	if unit == 0 {
		return strconv.FormatInt(n, 10) + " B"
	}
	return strconv.FormatFloat(size, 'f', 2, 64) + " " + units[unit]
}
