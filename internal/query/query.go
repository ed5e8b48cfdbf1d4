// Package query turns raw listing parameters into a validated filter and page window.
package query

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	apperrors "property-catalog/internal/errors"
	"property-catalog/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Criteria holds the optional, string-typed listing parameters as received.
type Criteria struct {
	Location string `form:"location"`
	Type     string `form:"type"`
	MinPrice string `form:"minPrice"`
	MaxPrice string `form:"maxPrice"`
	Search   string `form:"search"`
	Page     string `form:"page"`
	Limit    string `form:"limit"`
}

// Bounds configures page-size defaults.
type Bounds struct {
	DefaultLimit int
	MaxLimit     int
}

var DefaultBounds = Bounds{DefaultLimit: 10, MaxLimit: 100}

// Query is the parsed form of Criteria. The zero value matches everything on page 1.
type Query struct {
	Location string
	Type     models.PropertyType
	MinPrice *float64
	MaxPrice *float64
	Search   string
	Page     int
	Limit    int
}

// Parse validates criteria. Malformed numbers are rejected rather than ignored.
func Parse(c Criteria, bounds Bounds) (*Query, error) {
	if bounds.DefaultLimit <= 0 {
		bounds.DefaultLimit = DefaultBounds.DefaultLimit
	}
	if bounds.MaxLimit < bounds.DefaultLimit {
		bounds.MaxLimit = bounds.DefaultLimit
	}

	q := &Query{
		Location: strings.TrimSpace(c.Location),
		Search:   strings.TrimSpace(c.Search),
		Page:     1,
		Limit:    bounds.DefaultLimit,
	}

	if t := strings.TrimSpace(c.Type); t != "" {
		q.Type = models.PropertyType(t)
		if !q.Type.Valid() {
			return nil, apperrors.NewValidationError("type", fmt.Sprintf("must be one of %s", typeList()))
		}
	}

	var err error
	if q.MinPrice, err = parsePrice("minPrice", c.MinPrice); err != nil {
		return nil, err
	}
	if q.MaxPrice, err = parsePrice("maxPrice", c.MaxPrice); err != nil {
		return nil, err
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return nil, apperrors.NewValidationError("minPrice", "must not be greater than maxPrice")
	}

	if q.Page, err = parsePositive("page", c.Page, 1); err != nil {
		return nil, err
	}
	if q.Limit, err = parsePositive("limit", c.Limit, bounds.DefaultLimit); err != nil {
		return nil, err
	}
	if q.Limit > bounds.MaxLimit {
		q.Limit = bounds.MaxLimit
	}

	return q, nil
}

func parsePrice(field, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, apperrors.NewValidationError(field, "must be a number")
	}
	if v < 0 {
		return nil, apperrors.NewValidationError(field, "must not be negative")
	}
	return &v, nil
}

func parsePositive(field, raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, apperrors.NewValidationError(field, "must be a positive integer")
	}
	return v, nil
}

func typeList() string {
	names := make([]string, len(models.PropertyTypes))
	for i, t := range models.PropertyTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// Filter renders the predicate in MongoDB query syntax.
func (q *Query) Filter() bson.M {
	filter := bson.M{}
	if q.Location != "" {
		filter["propertyLocation"] = q.Location
	}
	if q.Type != "" {
		filter["propertyType"] = q.Type
	}
	if q.MinPrice != nil || q.MaxPrice != nil {
		price := bson.M{}
		if q.MinPrice != nil {
			price["$gte"] = *q.MinPrice
		}
		if q.MaxPrice != nil {
			price["$lte"] = *q.MaxPrice
		}
		filter["propertyPrice"] = price
	}
	if q.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"propertyName": pattern},
			bson.M{"propertyLocation": pattern},
			bson.M{"propertyType": pattern},
		}
	}
	return filter
}

// Sort is the deterministic listing order: insertion order by ObjectID.
func (q *Query) Sort() bson.D {
	return bson.D{{Key: "_id", Value: 1}}
}

// Matches evaluates the same predicate as Filter against an in-memory record.
func (q *Query) Matches(p *models.Property) bool {
	if q.Location != "" && p.Location != q.Location {
		return false
	}
	if q.Type != "" && p.Type != q.Type {
		return false
	}
	if q.MinPrice != nil && p.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && p.Price > *q.MaxPrice {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Location), needle) &&
			!strings.Contains(strings.ToLower(string(p.Type)), needle) {
			return false
		}
	}
	return true
}

func (q *Query) Skip() int64 {
	return int64(q.Page-1) * int64(q.Limit)
}

func (q *Query) LimitN() int64 {
	return int64(q.Limit)
}

// TotalPages is ceil(total/limit).
func (q *Query) TotalPages(total int64) int {
	if total <= 0 {
		return 0
	}
	limit := int64(q.Limit)
	return int((total + limit - 1) / limit)
}

// CacheKey is a canonical string identifying the filter and page window.
func (q *Query) CacheKey() string {
	var b strings.Builder
	fmt.Fprintf(&b, "loc=%s|type=%s|search=%s", q.Location, q.Type, strings.ToLower(q.Search))
	if q.MinPrice != nil {
		fmt.Fprintf(&b, "|min=%g", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		fmt.Fprintf(&b, "|max=%g", *q.MaxPrice)
	}
	fmt.Fprintf(&b, "|page=%d|limit=%d", q.Page, q.Limit)
	return b.String()
}
