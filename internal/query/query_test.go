package query

import (
	"fmt"
	"regexp"
	"testing"

	apperrors "property-catalog/internal/errors"
	"property-catalog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseDefaults(t *testing.T) {
	q, err := Parse(Criteria{}, DefaultBounds)
	require.NoError(t, err)

	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, int64(0), q.Skip())
	assert.Equal(t, int64(10), q.LimitN())
	assert.Empty(t, q.Filter(), "no criteria must match every record")
}

func TestParsePageWindow(t *testing.T) {
	q, err := Parse(Criteria{Page: "3", Limit: "25"}, DefaultBounds)
	require.NoError(t, err)
	assert.Equal(t, int64(50), q.Skip())
	assert.Equal(t, int64(25), q.LimitN())

	q, err = Parse(Criteria{Limit: "500"}, DefaultBounds)
	require.NoError(t, err)
	assert.Equal(t, 100, q.Limit, "limit is clamped to the maximum")
}

func TestParseRejectsMalformedInput(t *testing.T) {
	cases := map[string]Criteria{
		"minPrice": {MinPrice: "cheap"},
		"maxPrice": {MaxPrice: "1e400"},
		"page":     {Page: "0"},
		"limit":    {Limit: "-5"},
		"type":     {Type: "Castle"},
	}
	for field, c := range cases {
		t.Run(field, func(t *testing.T) {
			_, err := Parse(c, DefaultBounds)
			require.Error(t, err)
			var vErr *apperrors.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, field, vErr.Field)
		})
	}

	_, err := Parse(Criteria{MinPrice: "300", MaxPrice: "100"}, DefaultBounds)
	assert.True(t, apperrors.IsValidation(err))

	_, err = Parse(Criteria{MinPrice: "-1"}, DefaultBounds)
	assert.True(t, apperrors.IsValidation(err))
}

func TestFilterCombinesCriteria(t *testing.T) {
	q, err := Parse(Criteria{
		Location: "Austin",
		Type:     "Commercial",
		MinPrice: "100000",
		MaxPrice: "300000",
		Search:   "lake.view",
	}, DefaultBounds)
	require.NoError(t, err)

	filter := q.Filter()
	assert.Equal(t, "Austin", filter["propertyLocation"])
	assert.Equal(t, models.Commercial, filter["propertyType"])
	assert.Equal(t, bson.M{"$gte": 100000.0, "$lte": 300000.0}, filter["propertyPrice"])

	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 3)
	pattern := primitive.Regex{Pattern: `lake\.view`, Options: "i"}
	assert.Equal(t, bson.M{"propertyName": pattern}, or[0])
	assert.Equal(t, bson.M{"propertyLocation": pattern}, or[1])
	assert.Equal(t, bson.M{"propertyType": pattern}, or[2])
}

func TestFilterOnlyMinPrice(t *testing.T) {
	q, err := Parse(Criteria{MinPrice: "5"}, DefaultBounds)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"propertyPrice": bson.M{"$gte": 5.0}}, q.Filter())
}

func TestMatches(t *testing.T) {
	lakeview := &models.Property{Name: "Lakeview", Type: models.Commercial, Location: "Austin", Price: 250000}
	barn := &models.Property{Name: "Old Barn", Type: models.Land, Location: "Waco", Price: 90000}

	tests := []struct {
		name     string
		criteria Criteria
		lakeview bool
		barn     bool
	}{
		{"no criteria", Criteria{}, true, true},
		{"location is exact and case sensitive", Criteria{Location: "austin"}, false, false},
		{"location exact", Criteria{Location: "Austin"}, true, false},
		{"type", Criteria{Type: "Land"}, false, true},
		{"price range", Criteria{MinPrice: "100000", MaxPrice: "300000"}, true, false},
		{"search on name ignores case", Criteria{Search: "LAKE"}, true, false},
		{"search on location", Criteria{Search: "wac"}, false, true},
		{"search on type", Criteria{Search: "merc"}, true, false},
		{"search AND location", Criteria{Search: "barn", Location: "Austin"}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.criteria, DefaultBounds)
			require.NoError(t, err)
			assert.Equal(t, tt.lakeview, q.Matches(lakeview))
			assert.Equal(t, tt.barn, q.Matches(barn))
		})
	}
}

// evalFilter applies a rendered Filter document to a record the way the
// server would for the operators Filter emits.
func evalFilter(t *testing.T, filter bson.M, p *models.Property) bool {
	t.Helper()
	fields := map[string]any{
		"propertyName":     p.Name,
		"propertyType":     string(p.Type),
		"propertyLocation": p.Location,
		"propertyPrice":    p.Price,
	}
	for key, cond := range filter {
		switch c := cond.(type) {
		case bson.A:
			require.Equal(t, "$or", key)
			hit := false
			for _, branch := range c {
				if evalFilter(t, branch.(bson.M), p) {
					hit = true
				}
			}
			if !hit {
				return false
			}
		case primitive.Regex:
			require.Equal(t, "i", c.Options)
			re := regexp.MustCompile("(?i)" + c.Pattern)
			if !re.MatchString(fields[key].(string)) {
				return false
			}
		case bson.M:
			price := fields[key].(float64)
			if lo, ok := c["$gte"]; ok && price < lo.(float64) {
				return false
			}
			if hi, ok := c["$lte"]; ok && price > hi.(float64) {
				return false
			}
		default:
			if fmt.Sprint(cond) != fmt.Sprint(fields[key]) {
				return false
			}
		}
	}
	return true
}

func TestFilterAgreesWithMatches(t *testing.T) {
	records := []*models.Property{
		{Name: "Lakeview", Type: models.Commercial, Location: "Austin", Price: 250000},
		{Name: "Old Barn", Type: models.Land, Location: "Waco", Price: 90000},
		{Name: "lake.view loft", Type: models.Residential, Location: "Austin", Price: 100000},
		{Name: "Mill", Type: models.Industrial, Location: "El Paso", Price: 0},
		{Name: "Corner Lot", Type: models.Land, Location: "austin", Price: 300000},
	}
	criteria := []Criteria{
		{},
		{Location: "Austin"},
		{Location: "austin"},
		{Type: "Land"},
		{MinPrice: "100000"},
		{MaxPrice: "100000"},
		{MinPrice: "90000", MaxPrice: "250000"},
		{Search: "LAKE"},
		{Search: "lake.view"},
		{Search: "paso"},
		{Search: "dustr"},
		{Search: "a", Location: "Austin", Type: "Land"},
		{Search: "(", MaxPrice: "1"},
	}
	for _, c := range criteria {
		q, err := Parse(c, DefaultBounds)
		require.NoError(t, err)
		for _, p := range records {
			assert.Equal(t, q.Matches(p), evalFilter(t, q.Filter(), p), "%+v on %s", c, p.Name)
		}
	}
}

func TestTotalPages(t *testing.T) {
	q, err := Parse(Criteria{Limit: "10"}, DefaultBounds)
	require.NoError(t, err)

	for total, want := range map[int64]int{0: 0, 1: 1, 10: 1, 11: 2, 99: 10, 100: 10, 101: 11} {
		assert.Equal(t, want, q.TotalPages(total), "total=%d", total)
	}
}

func TestCacheKeyDistinguishesQueries(t *testing.T) {
	a, _ := Parse(Criteria{Location: "Austin", Page: "1"}, DefaultBounds)
	b, _ := Parse(Criteria{Location: "Austin", Page: "2"}, DefaultBounds)
	c, _ := Parse(Criteria{Location: "Austin", Page: "1"}, DefaultBounds)

	assert.NotEqual(t, a.CacheKey(), b.CacheKey())
	assert.Equal(t, a.CacheKey(), c.CacheKey())
}
