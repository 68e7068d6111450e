package discover

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSearch(t *testing.T) {
	t.Parallel()

	r, err := ValidateSearch(url.Values{"query": {" blade runner "}, "page": {"2"}})
	require.NoError(t, err)
	assert.Equal(t, "blade runner", r.Query)
	assert.Equal(t, 2, r.Page)

	_, err = ValidateSearch(url.Values{})
	vf := requireFailure(t, err)
	assert.True(t, vf.Has(FieldQuery, FormatViolation))

	_, err = ValidateSearch(url.Values{"query": {`<iframe src="x">`}, "page": {"0"}})
	vf = requireFailure(t, err)
	assert.Equal(t, []ViolationKind{RangeViolation, FormatViolation}, vf.Kinds())
}

func TestValidateSearch_QueryLength(t *testing.T) {
	t.Parallel()

	long := make([]byte, MaxQueryLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err := ValidateSearch(url.Values{"query": {string(long)}})
	vf := requireFailure(t, err)
	assert.True(t, vf.Has(FieldQuery, FormatViolation))

	_, err = ValidateSearch(url.Values{"query": {string(long[:MaxQueryLength])}})
	assert.NoError(t, err)
}

func TestValidateGenre(t *testing.T) {
	t.Parallel()

	r, err := ValidateGenre(url.Values{"genre": {"28,12,16"}, "sort_by": {"popularity.asc"}})
	require.NoError(t, err)
	assert.Equal(t, []int{28, 12, 16}, r.GenreIDs)
	assert.Equal(t, SortPopularityAsc, r.SortBy)

	_, err = ValidateGenre(url.Values{"sort_by": {"nope"}})
	vf := requireFailure(t, err)
	assert.True(t, vf.Has(FieldGenre, FormatViolation))
	assert.True(t, vf.Has(FieldSortBy, EnumViolation))
}

func TestValidateTrending(t *testing.T) {
	t.Parallel()

	r, err := ValidateTrending(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, TimeWindowWeek, r.TimeWindow)
	assert.Equal(t, 1, r.Page)

	r, err = ValidateTrending(url.Values{"time_window": {"day"}})
	require.NoError(t, err)
	assert.Equal(t, TimeWindowDay, r.TimeWindow)

	_, err = ValidateTrending(url.Values{"time_window": {"month"}})
	vf := requireFailure(t, err)
	assert.True(t, vf.Has(FieldTimeWindow, EnumViolation))
}

func TestValidateList(t *testing.T) {
	t.Parallel()

	r, err := ValidateList(url.Values{"page": {"500"}})
	require.NoError(t, err)
	assert.Equal(t, 500, r.Page)

	_, err = ValidateList(url.Values{"page": {"501"}})
	vf := requireFailure(t, err)
	assert.True(t, vf.Has(FieldPage, RangeViolation))
}

func TestContainsInjection(t *testing.T) {
	t.Parallel()

	for _, s := range []string{
		"<script>alert(1)</script>",
		"<SCRIPT src=x>",
		"javascript:alert(1)",
		`x" onerror="alert(1)`,
		"<iframe src=evil>",
	} {
		assert.True(t, ContainsInjection(s), s)
	}

	for _, s := range []string{"The Matrix", "Fast & Furious", `"quoted"`, "Amélie", "one: two"} {
		assert.False(t, ContainsInjection(s), s)
	}
}
