package utils

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPageURLKeepsFilters(t *testing.T) {
	params := url.Values{
		"location": {"Austin"},
		"page":     {"1"},
		"limit":    {"5"},
	}

	got := BuildPageURL("/api/private/properties", 2, 5, params)

	u, err := url.Parse(got)
	assert.NoError(t, err)
	assert.Equal(t, "/api/private/properties", u.Path)
	assert.Equal(t, "Austin", u.Query().Get("location"))
	assert.Equal(t, "2", u.Query().Get("page"))
	assert.Equal(t, "5", u.Query().Get("limit"))
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, "ignored"))

	base := errors.New("connection refused")
	wrapped := WrapError(base, "insert property %s", "abc")
	assert.EqualError(t, wrapped, "insert property abc: connection refused")
	assert.ErrorIs(t, wrapped, base)
}
