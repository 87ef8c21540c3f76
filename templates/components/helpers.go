// Package components holds the layout shared by every page and the helpers
// the page and partial templates call.
package components

import (
	"context"
	"fmt"

	"kjsb_flow_app_go/models"
	"kjsb_flow_app_go/services/i18n"
)

// Chrome holds what the page header needs
type Chrome struct {
	Title      string
	CSRF       string
	OfficeAuth bool
	// Active names the nav entry to highlight ("map", "tahap1".."tahap5")
	Active string
	// Bare drops the navigation bar (login page)
	Bare bool
}

// T translates key in the request locale. pairs alternate placeholder
// names and values.
func T(ctx context.Context, key string, pairs ...any) string {
	if len(pairs) == 0 {
		return i18n.T(ctx, key)
	}
	args := make(map[string]interface{}, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		args[fmt.Sprint(pairs[i])] = pairs[i+1]
	}
	return i18n.T(ctx, key, args)
}

// Stages lists the stage numbers in order
func Stages() []int {
	stages := make([]int, models.StageCount)
	for i := range stages {
		stages[i] = i + 1
	}
	return stages
}

// StageNav is the Chrome.Active value of a stage page
func StageNav(stage int) string {
	return fmt.Sprintf("tahap%d", stage)
}

// NextStage is the stage to open when editing a case whose last filled
// stage is current.
func NextStage(current int) int {
	switch {
	case current < 1:
		return 1
	case current >= models.StageCount:
		return models.StageCount
	default:
		return current + 1
	}
}
