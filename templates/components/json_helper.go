package components

import (
	"encoding/json"

	"go.uber.org/zap"
)

// JSON marshals an object to a JSON string, returning "null" on error
func JSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		zap.L().Warn("failed to marshal template value", zap.Error(err))
		return "null"
	}
	return string(b)
}

// csrfHeaders is the hx-headers value carrying the CSRF token on every
// htmx request of a page
func csrfHeaders(token string) string {
	return JSON(map[string]string{"X-CSRF-Token": token})
}
