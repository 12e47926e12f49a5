package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/insight/internal/warehouse/domain"
)

// dateLayout is the only accepted calendar-date form. Anything else becomes
// null, never an error and never a placeholder date.
const dateLayout = "2006-01-02"

func parseDate(raw string) *time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	parsed, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return nil
	}
	return &parsed
}

// blankToNil implements the blank-to-null rule for nullable text fields.
func blankToNil(raw string) *string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	return &value
}

// upperOrNil standardizes a nullable categorical field. Uppercasing a null
// leaves it null.
func upperOrNil(raw string) *string {
	value := blankToNil(raw)
	if value == nil {
		return nil
	}
	upper := strings.ToUpper(*value)
	return &upper
}

func parsePriority(raw string) *domain.Priority {
	value := upperOrNil(raw)
	if value == nil {
		return nil
	}
	priority := domain.Priority(*value)
	return &priority
}

func parseIntPtr(raw string) *int {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &parsed
}

// parseInt coerces a required integer field; failures degrade to zero so the
// row always survives.
func parseInt(raw string) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return parsed
}

func parseFloat(raw string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return parsed
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "t", "1", "yes", "y":
		return true
	default:
		return false
	}
}
