package discover

import (
	"net/url"
)

// SearchRequest is a plain title search.
type SearchRequest struct {
	Pagination

	Query string
}

func ValidateSearch(raw url.Values) (*SearchRequest, error) {
	c := newChecker(raw)
	r := &SearchRequest{Pagination: c.pagination()}
	if q := c.textField(FieldQuery, true); q != nil {
		r.Query = *q
	}
	if err := c.err(); err != nil {
		return nil, err
	}
	return r, nil
}

// GenreRequest browses movies that carry all of the given genres.
type GenreRequest struct {
	Pagination

	GenreIDs []int
	SortBy   SortOption
}

func ValidateGenre(raw url.Values) (*GenreRequest, error) {
	c := newChecker(raw)
	r := &GenreRequest{Pagination: c.pagination()}
	r.GenreIDs = c.genreField(FieldGenre, true)
	r.SortBy = c.sortField(FieldSortBy)
	if err := c.err(); err != nil {
		return nil, err
	}
	return r, nil
}

// TrendingRequest selects a page of TMDB's trending list for a window.
type TrendingRequest struct {
	Pagination

	TimeWindow TimeWindow
}

func ValidateTrending(raw url.Values) (*TrendingRequest, error) {
	c := newChecker(raw)
	r := &TrendingRequest{Pagination: c.pagination()}
	r.TimeWindow = c.timeWindowField(FieldTimeWindow)
	if err := c.err(); err != nil {
		return nil, err
	}
	return r, nil
}

// ListRequest pages through one of TMDB's curated lists (popular, now
// playing, top rated).
type ListRequest struct {
	Pagination
}

func ValidateList(raw url.Values) (*ListRequest, error) {
	c := newChecker(raw)
	r := &ListRequest{Pagination: c.pagination()}
	if err := c.err(); err != nil {
		return nil, err
	}
	return r, nil
}
