package discover

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Raw query-string field names.
const (
	FieldPage         = "page"
	FieldGenre        = "genre"
	FieldYear         = "year"
	FieldMinRating    = "min_rating"
	FieldMaxRating    = "max_rating"
	FieldMinRuntime   = "min_runtime"
	FieldMaxRuntime   = "max_runtime"
	FieldSortBy       = "sort_by"
	FieldLanguage     = "language"
	FieldRegion       = "region"
	FieldQuery        = "query"
	FieldIncludeAdult = "include_adult"
	FieldTimeWindow   = "time_window"
)

// checker reads fields out of a raw query and records a violation for every
// value that fails its check. It never stops early.
type checker struct {
	raw        url.Values
	violations []Violation
}

func newChecker(raw url.Values) *checker {
	if raw == nil {
		raw = url.Values{}
	}
	return &checker{raw: raw}
}

func (c *checker) add(v Violation) {
	c.violations = append(c.violations, v)
}

// err returns nil when every check passed.
func (c *checker) err() error {
	if len(c.violations) == 0 {
		return nil
	}
	return &ValidationFailure{Violations: c.violations}
}

// value returns the first value for field. Empty values count as absent.
func (c *checker) value(field string) (string, bool) {
	s := strings.TrimSpace(c.raw.Get(field))
	if s == "" {
		return "", false
	}
	return s, true
}

func (c *checker) typeError(field, raw, typ string) {
	c.add(Violation{
		Field:   field,
		Kind:    FormatViolation,
		Message: fmt.Sprintf("%q should be of type %s", field, typ),
		Value:   raw,
	})
}

func (c *checker) intField(field string, lo, hi int) *int {
	raw, ok := c.value(field)
	if !ok {
		return nil
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		c.typeError(field, raw, "integer")
		return nil
	}
	if i < lo || i > hi {
		c.add(Violation{
			Field:   field,
			Kind:    RangeViolation,
			Message: fmt.Sprintf("%q must be between %d and %d", field, lo, hi),
			Value:   raw,
		})
		return nil
	}
	return &i
}

func (c *checker) floatField(field string, lo, hi float64) *float64 {
	raw, ok := c.value(field)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		c.typeError(field, raw, "number")
		return nil
	}
	if f < lo || f > hi {
		c.add(Violation{
			Field:   field,
			Kind:    RangeViolation,
			Message: fmt.Sprintf("%q must be between %s and %s", field, formatFloat(lo), formatFloat(hi)),
			Value:   raw,
		})
		return nil
	}
	return &f
}

func (c *checker) boolField(field string) *bool {
	raw, ok := c.value(field)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		c.typeError(field, raw, "boolean")
		return nil
	}
	return &b
}

func (c *checker) sortField(field string) SortOption {
	raw, ok := c.value(field)
	if !ok {
		return 0
	}
	opt, ok := ParseSortOption(raw)
	if !ok {
		c.enumError(field, raw, sortOptionStrings())
		return 0
	}
	return opt
}

func (c *checker) timeWindowField(field string) TimeWindow {
	raw, ok := c.value(field)
	if !ok {
		return DefaultTimeWindow
	}
	w, ok := ParseTimeWindow(raw)
	if !ok {
		c.enumError(field, raw, timeWindowStrings())
		return 0
	}
	return w
}

func (c *checker) enumError(field, raw string, valid []string) {
	quoted := make([]string, len(valid))
	for i, v := range valid {
		quoted[i] = strconv.Quote(v)
	}
	c.add(Violation{
		Field:   field,
		Kind:    EnumViolation,
		Message: fmt.Sprintf("%q must be one of the following: %s", field, strings.Join(quoted, ", ")),
		Value:   raw,
	})
}

// genreField accepts "28,12", repeated keys, or a mix of both. Input order is
// kept.
func (c *checker) genreField(field string, required bool) []int {
	var parts []string
	for _, v := range c.raw[field] {
		if strings.TrimSpace(v) == "" {
			continue
		}
		parts = append(parts, strings.Split(v, ",")...)
	}
	if len(parts) == 0 {
		if required {
			c.add(Violation{
				Field:   field,
				Kind:    FormatViolation,
				Message: fmt.Sprintf("%q is required", field),
			})
		}
		return nil
	}

	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || id < 1 {
			c.add(Violation{
				Field:   field,
				Kind:    FormatViolation,
				Message: fmt.Sprintf("%q must be a comma-separated list of positive integers", field),
				Value:   strings.Join(c.raw[field], ","),
			})
			return nil
		}
		ids = append(ids, id)
	}
	return ids
}

// codeField checks short locale/country codes: ASCII letters only, within the
// given length bounds.
func (c *checker) codeField(field string, minLen, maxLen int) *string {
	raw, ok := c.value(field)
	if !ok {
		return nil
	}
	if len(raw) < minLen || len(raw) > maxLen || !isASCIILetters(raw) {
		msg := fmt.Sprintf("%q must be %d to %d letters", field, minLen, maxLen)
		if minLen == maxLen {
			msg = fmt.Sprintf("%q must be %d letters", field, minLen)
		}
		c.add(Violation{
			Field:   field,
			Kind:    FormatViolation,
			Message: msg,
			Value:   raw,
		})
		return nil
	}
	return &raw
}

// languageField checks a language code with IsLanguageCode.
func (c *checker) languageField(field string) *string {
	raw, ok := c.value(field)
	if !ok {
		return nil
	}
	if !IsLanguageCode(raw) {
		c.add(Violation{
			Field:   field,
			Kind:    FormatViolation,
			Message: fmt.Sprintf("%q must be a language code like \"en\" or \"en-US\"", field),
			Value:   raw,
		})
		return nil
	}
	return &raw
}

// IsLanguageCode accepts an ISO 639-1 code with an optional ISO 3166-1
// region, e.g. "en" or "pt-BR".
func IsLanguageCode(s string) bool {
	return languageRE.MatchString(s)
}

var languageRE = regexp.MustCompile(`^[a-z]{2}(-[A-Z]{2})?$`)

func (c *checker) textField(field string, required bool) *string {
	raw, ok := c.value(field)
	if !ok {
		if required {
			c.add(Violation{
				Field:   field,
				Kind:    FormatViolation,
				Message: fmt.Sprintf("%q is required", field),
			})
		}
		return nil
	}
	if len([]rune(raw)) > MaxQueryLength {
		c.add(Violation{
			Field:   field,
			Kind:    FormatViolation,
			Message: fmt.Sprintf("%q length must be less than or equal to %d characters", field, MaxQueryLength),
			Value:   raw,
		})
		return nil
	}
	if ContainsInjection(raw) {
		c.add(Violation{
			Field:   field,
			Kind:    FormatViolation,
			Message: fmt.Sprintf("%q contains disallowed characters", field),
			Value:   raw,
		})
		return nil
	}
	return &raw
}

func (c *checker) pagination() Pagination {
	page := c.intField(FieldPage, MinPage, MaxPage)
	if page == nil {
		return Pagination{Page: DefaultPage}
	}
	return Pagination{Page: *page}
}

// orderedInts records a cross-field violation when both bounds are present and
// high < low.
func (c *checker) orderedInts(lowField string, low *int, highField string, high *int) {
	if low == nil || high == nil || *high >= *low {
		return
	}
	c.crossField(highField, strconv.Itoa(*high), lowField, strconv.Itoa(*low))
}

func (c *checker) orderedFloats(lowField string, low *float64, highField string, high *float64) {
	if low == nil || high == nil || *high >= *low {
		return
	}
	c.crossField(highField, formatFloat(*high), lowField, formatFloat(*low))
}

// notWithQuery records that field can't be combined with a free-text query.
func (c *checker) notWithQuery(field, value, query string) {
	c.add(Violation{
		Field:        field,
		Kind:         CrossFieldViolation,
		Message:      fmt.Sprintf("%q can't be combined with %q", field, FieldQuery),
		Value:        value,
		RelatedField: FieldQuery,
		RelatedValue: query,
	})
}

func (c *checker) crossField(field, value, related, relatedValue string) {
	c.add(Violation{
		Field:        field,
		Kind:         CrossFieldViolation,
		Message:      fmt.Sprintf("%q (%s) must be greater than or equal to %q (%s)", field, value, related, relatedValue),
		Value:        value,
		RelatedField: related,
		RelatedValue: relatedValue,
	})
}

func isASCIILetters(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
