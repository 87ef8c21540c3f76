package backend

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"kjsb_flow_app_go/models"

	"gorm.io/gorm"
)

// DefaultCodePrefix is used when no KODE_PREFIX is configured
const DefaultCodePrefix = "BKS"

// MaxCodeSequence is the last sequence that fits the four digit format
const MaxCodeSequence = 9999

// ErrCodeSequenceExhausted is returned once a year has used every four
// digit sequence
var ErrCodeSequenceExhausted = errors.New("case code sequence exhausted")

// GenerateCode returns the next case code for the year of now
// Format: {PREFIX}-{YEAR}-{SEQUENCE}
// Example: BKS-2026-0042
func GenerateCode(db *gorm.DB, prefix string, now time.Time) (string, error) {
	if prefix == "" {
		prefix = DefaultCodePrefix
	}
	year := now.Year()
	yearPrefix := fmt.Sprintf("%s-%d-", prefix, year)

	// Manual codes may share the prefix; only four digit suffixes count
	var codes []string
	err := db.Model(&models.Case{}).
		Where("kode_kjsb LIKE ?", yearPrefix+"%").
		Pluck("kode_kjsb", &codes).Error
	if err != nil {
		return "", fmt.Errorf("failed to query case codes: %w", err)
	}

	sequence := 0
	for _, code := range codes {
		suffix := strings.TrimPrefix(code, yearPrefix)
		if len(suffix) != 4 {
			continue
		}
		parsed, convErr := strconv.Atoi(suffix)
		if convErr != nil || parsed < 0 {
			continue
		}
		if parsed > sequence {
			sequence = parsed
		}
	}

	if sequence >= MaxCodeSequence {
		return "", fmt.Errorf("%w: %s%04d already used", ErrCodeSequenceExhausted, yearPrefix, MaxCodeSequence)
	}
	return fmt.Sprintf("%s%04d", yearPrefix, sequence+1), nil
}

// EnsureUniqueCode generates the next code and checks that no case holds it.
// It runs inside the caller's transaction, so a second attempt would read
// the same rows; a concurrent insert of the same code fails on the unique
// index of kode_kjsb instead.
func EnsureUniqueCode(db *gorm.DB, prefix string, now time.Time) (string, error) {
	code, err := GenerateCode(db, prefix, now)
	if err != nil {
		return "", err
	}

	var count int64
	if err := db.Model(&models.Case{}).Where("kode_kjsb = ?", code).Count(&count).Error; err != nil {
		return "", fmt.Errorf("failed to check case code uniqueness: %w", err)
	}
	if count > 0 {
		return "", fmt.Errorf("generated case code %s is already taken", code)
	}
	return code, nil
}
