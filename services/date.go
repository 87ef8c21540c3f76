package services

import (
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the ISO date format used for every date column
const DateLayout = "2006-01-02"

var indonesianMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// ParseDate parses a date column value or an HTML date input (YYYY-MM-DD).
// Every date field of the stage forms and the import goes through it.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return t, nil
}

// FormatDateID renders a stored date the way BPN letters write it
// ("2 Mei 2024"). Values that are not ISO dates are returned unchanged.
func FormatDateID(value string) string {
	t, err := ParseDate(value)
	if err != nil {
		return value
	}
	return strconv.Itoa(t.Day()) + " " + indonesianMonths[t.Month()-1] + " " + strconv.Itoa(t.Year())
}
