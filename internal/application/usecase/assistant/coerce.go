package assistant

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

// rawString decodes a JSON string field. Missing, null, non-string or blank values
// are reported as absent, as is the literal text "null".
func (f jsonFields) rawString(key string) (string, bool) {
	raw, ok := f[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return "", false
	}
	return s, true
}

// number decodes a JSON number or a numeric string. Null and non-finite values are absent.
func (f jsonFields) number(key string) (float64, bool) {
	raw, ok := f[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return 0, false
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		s, ok := f.rawString(key)
		if !ok {
			return 0, false
		}
		n, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// amount coerces a money field. Missing or unparseable values become zero, negatives clamp to zero.
func (f jsonFields) amount(key string) decimal.Decimal {
	n, ok := f.number(key)
	if !ok || n < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(n).Round(2)
}

// confidence coerces a confidence score into [MinConfidence, MaxConfidence].
func (f jsonFields) confidence(key string) float64 {
	n, ok := f.number(key)
	if !ok {
		return entity.DefaultConfidence
	}
	return clampConfidence(n)
}

func clampConfidence(n float64) float64 {
	return math.Max(entity.MinConfidence, math.Min(entity.MaxConfidence, n))
}

// category coerces a category field, falling back to Other.
func (f jsonFields) category(key string) entity.Category {
	s, ok := f.rawString(key)
	if !ok {
		return entity.CategoryOther
	}
	c, _ := entity.ParseCategory(s)
	return c
}

// calendarDate parses a YYYY-MM-DD field.
func (f jsonFields) calendarDate(key string) (time.Time, bool) {
	s, ok := f.rawString(key)
	if !ok {
		return time.Time{}, false
	}
	d, err := entity.ParseCalendarDate(s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// stringList decodes a JSON array, keeping only non-blank string elements.
func (f jsonFields) stringList(key string) []string {
	raw, ok := f[key]
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
