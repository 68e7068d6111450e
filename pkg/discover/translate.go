package discover

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// TMDB parameter names.
const (
	ParamPage                 = "page"
	ParamWithGenres           = "with_genres"
	ParamPrimaryReleaseYear   = "primary_release_year"
	ParamVoteAverageGTE       = "vote_average.gte"
	ParamVoteAverageLTE       = "vote_average.lte"
	ParamWithRuntimeGTE       = "with_runtime.gte"
	ParamWithRuntimeLTE       = "with_runtime.lte"
	ParamSortBy               = "sort_by"
	ParamWithOriginalLanguage = "with_original_language"
	ParamRegion               = "region"
	ParamQuery                = "query"
	ParamIncludeAdult         = "include_adult"
)

// Params is a flat set of TMDB query parameters. Values are string, int or
// float64.
type Params map[string]any

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Values renders p as query values using canonical number formatting.
func (p Params) Values() url.Values {
	v := make(url.Values, len(p))
	for k, val := range p {
		v.Set(k, formatParam(val))
	}
	return v
}

// Encode returns the sorted, URL-encoded query string. Equal Params always
// encode to the same bytes.
func (p Params) Encode() string {
	return p.Values().Encode()
}

func formatParam(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return formatFloat(v)
	default:
		return fmt.Sprint(v)
	}
}

// Translate maps f onto TMDB's discover dialect. Only supplied filters are
// emitted; page is always present.
func (f *FilterRequest) Translate() Params {
	p := Params{ParamPage: f.Page}
	if len(f.GenreIDs) > 0 {
		p[ParamWithGenres] = joinIDs(f.GenreIDs)
	}
	if f.Year != nil {
		p[ParamPrimaryReleaseYear] = *f.Year
	}
	if f.MinRating != nil {
		p[ParamVoteAverageGTE] = *f.MinRating
	}
	if f.MaxRating != nil {
		p[ParamVoteAverageLTE] = *f.MaxRating
	}
	if f.MinRuntime != nil {
		p[ParamWithRuntimeGTE] = *f.MinRuntime
	}
	if f.MaxRuntime != nil {
		p[ParamWithRuntimeLTE] = *f.MaxRuntime
	}
	if f.SortBy.Valid() {
		p[ParamSortBy] = f.SortBy.String()
	}
	if f.Language != nil {
		p[ParamWithOriginalLanguage] = *f.Language
	}
	if f.Region != nil {
		p[ParamRegion] = *f.Region
	}
	if f.Query != nil {
		p[ParamQuery] = *f.Query
	}
	if f.IncludeAdult != nil {
		p[ParamIncludeAdult] = strconv.FormatBool(*f.IncludeAdult)
	}
	return p
}

func (r *SearchRequest) Translate() Params {
	return Params{
		ParamPage:  r.Page,
		ParamQuery: r.Query,
	}
}

func (r *GenreRequest) Translate() Params {
	p := Params{
		ParamPage:       r.Page,
		ParamWithGenres: joinIDs(r.GenreIDs),
	}
	if r.SortBy.Valid() {
		p[ParamSortBy] = r.SortBy.String()
	}
	return p
}

// Translate returns only the page; the window is part of the TMDB path.
func (r *TrendingRequest) Translate() Params {
	return Params{ParamPage: r.Page}
}

func (r *ListRequest) Translate() Params {
	return Params{ParamPage: r.Page}
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
