package mysql

import (
	"encoding/json"
	"strings"

	domain "github.com/bryanwahyu/mealsense/internal/domain/analysis"
)

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// decodeResult re-normalizes the stored JSON so rows written by older versions
// still come back fully populated.
func decodeResult(raw string) (domain.Normalized, error) {
	c, err := domain.ParseCandidate([]byte(raw))
	if err != nil {
		return domain.Normalized{}, err
	}
	return domain.Normalize(c), nil
}

func encodeResult(n domain.Normalized) (string, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
