package utils

import (
	"net/url"
	"strconv"
)

// BuildPageURL returns baseURL with page and limit replaced and every other query parameter kept.
func BuildPageURL(baseURL string, page, limit int, params url.Values) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	q := url.Values{}
	for key, values := range params {
		if key == "page" || key == "limit" {
			continue
		}
		for _, value := range values {
			q.Add(key, value)
		}
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()
	return u.String()
}
