package discover

import (
	"github.com/pkg/errors"
)

// SortOption is one of TMDB's discover sort orders. The zero value means no
// sort was requested and TMDB's own default applies.
type SortOption int

// Supported sort orders.
const (
	SortPopularityDesc SortOption = iota + 1
	SortPopularityAsc
	SortVoteAverageDesc
	SortVoteAverageAsc
	SortReleaseDateDesc
	SortReleaseDateAsc
	SortRevenueDesc
	SortRevenueAsc
)

var sortOptionWire = map[SortOption]string{
	SortPopularityDesc:  "popularity.desc",
	SortPopularityAsc:   "popularity.asc",
	SortVoteAverageDesc: "vote_average.desc",
	SortVoteAverageAsc:  "vote_average.asc",
	SortReleaseDateDesc: "release_date.desc",
	SortReleaseDateAsc:  "release_date.asc",
	SortRevenueDesc:     "revenue.desc",
	SortRevenueAsc:      "revenue.asc",
}

// SortOptions returns every sort order in declaration order.
func SortOptions() []SortOption {
	return []SortOption{
		SortPopularityDesc,
		SortPopularityAsc,
		SortVoteAverageDesc,
		SortVoteAverageAsc,
		SortReleaseDateDesc,
		SortReleaseDateAsc,
		SortRevenueDesc,
		SortRevenueAsc,
	}
}

// ParseSortOption looks up the sort order for a TMDB wire string. Anything
// outside the fixed set reports false.
func ParseSortOption(s string) (SortOption, bool) {
	for _, opt := range SortOptions() {
		if sortOptionWire[opt] == s {
			return opt, true
		}
	}
	return 0, false
}

// Valid reports whether s is a member of the fixed set.
func (s SortOption) Valid() bool {
	_, ok := sortOptionWire[s]
	return ok
}

// String returns the TMDB wire value, or the empty string for an unset option.
func (s SortOption) String() string {
	return sortOptionWire[s]
}

func (s SortOption) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, errors.Errorf("invalid sort option %d", int(s))
	}
	return []byte(s.String()), nil
}

// TimeWindow is the aggregation window for TMDB's trending lists.
type TimeWindow int

const (
	TimeWindowDay TimeWindow = iota + 1
	TimeWindowWeek
)

// DefaultTimeWindow is used when the caller doesn't pick a window.
const DefaultTimeWindow = TimeWindowWeek

var timeWindowWire = map[TimeWindow]string{
	TimeWindowDay:  "day",
	TimeWindowWeek: "week",
}

func TimeWindows() []TimeWindow {
	return []TimeWindow{TimeWindowDay, TimeWindowWeek}
}

func ParseTimeWindow(s string) (TimeWindow, bool) {
	for _, w := range TimeWindows() {
		if timeWindowWire[w] == s {
			return w, true
		}
	}
	return 0, false
}

func (w TimeWindow) Valid() bool {
	_, ok := timeWindowWire[w]
	return ok
}

func (w TimeWindow) String() string {
	return timeWindowWire[w]
}

func (w TimeWindow) MarshalText() ([]byte, error) {
	if !w.Valid() {
		return nil, errors.Errorf("invalid time window %d", int(w))
	}
	return []byte(w.String()), nil
}

func sortOptionStrings() []string {
	opts := SortOptions()
	out := make([]string, len(opts))
	for i, opt := range opts {
		out[i] = opt.String()
	}
	return out
}

func timeWindowStrings() []string {
	windows := TimeWindows()
	out := make([]string, len(windows))
	for i, w := range windows {
		out[i] = w.String()
	}
	return out
}
