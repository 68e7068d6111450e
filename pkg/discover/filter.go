// Package discover validates raw movie queries and translates them into TMDB
// query parameters.
package discover

import (
	"net/url"
	"strconv"
)

// Field domains.
const (
	MinPage     = 1
	MaxPage     = 500
	DefaultPage = 1

	MinYear = 1900
	MaxYear = 2030

	MinRating = 0.0
	MaxRating = 10.0

	MinRuntime = 0
	MaxRuntime = 500

	RegionLength = 2
)

// Pagination is shared by every request type.
type Pagination struct {
	Page int
}

// FilterRequest is a validated discover query. Nil pointers and a zero SortBy
// mean the caller didn't supply that filter.
type FilterRequest struct {
	Pagination

	GenreIDs     []int
	Year         *int
	MinRating    *float64
	MaxRating    *float64
	MinRuntime   *int
	MaxRuntime   *int
	SortBy       SortOption
	Language     *string
	Region       *string
	Query        *string
	IncludeAdult *bool
}

type filterCheck func(c *checker, f *FilterRequest)

// filterPipeline runs in order. Cross-field checks come last and only see
// values that already passed their own field checks.
var filterPipeline = []filterCheck{
	func(c *checker, f *FilterRequest) { f.Pagination = c.pagination() },
	func(c *checker, f *FilterRequest) { f.GenreIDs = c.genreField(FieldGenre, false) },
	func(c *checker, f *FilterRequest) { f.Year = c.intField(FieldYear, MinYear, MaxYear) },
	func(c *checker, f *FilterRequest) { f.MinRating = c.floatField(FieldMinRating, MinRating, MaxRating) },
	func(c *checker, f *FilterRequest) { f.MaxRating = c.floatField(FieldMaxRating, MinRating, MaxRating) },
	func(c *checker, f *FilterRequest) { f.MinRuntime = c.intField(FieldMinRuntime, MinRuntime, MaxRuntime) },
	func(c *checker, f *FilterRequest) { f.MaxRuntime = c.intField(FieldMaxRuntime, MinRuntime, MaxRuntime) },
	func(c *checker, f *FilterRequest) { f.SortBy = c.sortField(FieldSortBy) },
	func(c *checker, f *FilterRequest) { f.Language = c.languageField(FieldLanguage) },
	func(c *checker, f *FilterRequest) { f.Region = c.codeField(FieldRegion, RegionLength, RegionLength) },
	func(c *checker, f *FilterRequest) { f.Query = c.textField(FieldQuery, false) },
	func(c *checker, f *FilterRequest) { f.IncludeAdult = c.boolField(FieldIncludeAdult) },
	func(c *checker, f *FilterRequest) {
		c.orderedFloats(FieldMinRating, f.MinRating, FieldMaxRating, f.MaxRating)
	},
	func(c *checker, f *FilterRequest) {
		c.orderedInts(FieldMinRuntime, f.MinRuntime, FieldMaxRuntime, f.MaxRuntime)
	},
	func(c *checker, f *FilterRequest) {
		if f.Query == nil {
			return
		}
		for _, sf := range f.discoverOnly() {
			c.notWithQuery(sf.field, sf.value, *f.Query)
		}
	},
}

type suppliedField struct {
	field string
	value string
}

// discoverOnly returns the supplied filters that TMDB's search endpoint
// doesn't support. A free-text query is served by search, so these can't be
// honored alongside it.
func (f *FilterRequest) discoverOnly() []suppliedField {
	var out []suppliedField
	if len(f.GenreIDs) > 0 {
		out = append(out, suppliedField{FieldGenre, joinIDs(f.GenreIDs)})
	}
	if f.MinRating != nil {
		out = append(out, suppliedField{FieldMinRating, formatFloat(*f.MinRating)})
	}
	if f.MaxRating != nil {
		out = append(out, suppliedField{FieldMaxRating, formatFloat(*f.MaxRating)})
	}
	if f.MinRuntime != nil {
		out = append(out, suppliedField{FieldMinRuntime, strconv.Itoa(*f.MinRuntime)})
	}
	if f.MaxRuntime != nil {
		out = append(out, suppliedField{FieldMaxRuntime, strconv.Itoa(*f.MaxRuntime)})
	}
	if f.SortBy.Valid() {
		out = append(out, suppliedField{FieldSortBy, f.SortBy.String()})
	}
	if f.Language != nil {
		out = append(out, suppliedField{FieldLanguage, *f.Language})
	}
	return out
}

// ValidateFilter turns a raw discover query into a FilterRequest. On failure
// the error is a *ValidationFailure listing every violation.
func ValidateFilter(raw url.Values) (*FilterRequest, error) {
	c := newChecker(raw)
	f := &FilterRequest{}
	for _, check := range filterPipeline {
		check(c, f)
	}
	if err := c.err(); err != nil {
		return nil, err
	}
	return f, nil
}
