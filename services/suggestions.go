package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"kjsb_flow_app_go/models"
	"kjsb_flow_app_go/services/backend"
)

// Suggestions is one autocomplete response. Seq echoes the caller's request
// token so the page can drop responses that arrive after a newer request.
type Suggestions struct {
	Seq   int64    `json:"seq"`
	Items []string `json:"items"`
}

// ParseSeq reads a request token; anything unparsable is 0
func ParseSeq(raw string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// SuggestApplicantNames returns up to ten distinct applicant names matching q
func SuggestApplicantNames(ctx context.Context, store backend.Store, q string, seq int64) (*Suggestions, error) {
	out := &Suggestions{Seq: seq, Items: []string{}}
	q = strings.TrimSpace(q)
	if q == "" {
		return out, nil
	}
	names, err := store.SuggestApplicantNames(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest applicant names: %w", err)
	}
	ptrs := make([]*string, len(names))
	for i := range names {
		ptrs[i] = &names[i]
	}
	out.Items = backend.DistinctNames(ptrs, backend.SuggestionLimit)
	return out, nil
}

// SuggestCodes returns up to ten case codes containing q
func SuggestCodes(ctx context.Context, store backend.Store, q string, seq int64) (*Suggestions, error) {
	out := &Suggestions{Seq: seq, Items: []string{}}
	q = strings.TrimSpace(q)
	if q == "" {
		return out, nil
	}
	codes, err := store.SuggestCodes(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest codes: %w", err)
	}
	for _, c := range codes {
		if c == "" || len(out.Items) == backend.SuggestionLimit {
			continue
		}
		out.Items = append(out.Items, c)
	}
	return out, nil
}

// SearchClients is the stage 1 client autocomplete
func SearchClients(ctx context.Context, store backend.Store, q string) ([]models.Client, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []models.Client{}, nil
	}
	clients, err := store.SearchClients(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to search clients: %w", err)
	}
	return clients, nil
}

// SearchApplicants is the stage 1 applicant autocomplete
func SearchApplicants(ctx context.Context, store backend.Store, q string) ([]models.Applicant, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []models.Applicant{}, nil
	}
	applicants, err := store.SearchApplicants(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to search applicants: %w", err)
	}
	return applicants, nil
}
