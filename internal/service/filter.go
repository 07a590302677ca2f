package service

import (
	"math"
	"strconv"
	"strings"

	"github.com/aayush4jha/kirayawale-beta-version/internal/model"
)

// FilterListings returns the listings matching every non-empty criterion,
// in their original order. The input slice is not modified.
func FilterListings(listings []model.Listing, c model.FilterCriteria) []model.Listing {
	m := newMatcher(c)
	out := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		if m.match(l) {
			out = append(out, l)
		}
	}
	return out
}

type matcher struct {
	category model.Category
	location string
	query    string
	min, max float64
	hasMin   bool
	hasMax   bool
}

func newMatcher(c model.FilterCriteria) matcher {
	m := matcher{
		category: model.Category(strings.TrimSpace(string(c.Category))),
		location: strings.ToLower(strings.TrimSpace(c.Location)),
		query:    strings.ToLower(strings.TrimSpace(c.SearchQuery)),
	}
	m.min, m.hasMin = parsePrice(c.MinPrice)
	m.max, m.hasMax = parsePrice(c.MaxPrice)
	return m
}

func (m matcher) match(l model.Listing) bool {
	if m.category != "" && l.Category != m.category {
		return false
	}
	if m.location != "" && !strings.Contains(strings.ToLower(l.Location), m.location) {
		return false
	}
	if m.hasMin && l.PricePerDay < m.min {
		return false
	}
	if m.hasMax && l.PricePerDay > m.max {
		return false
	}
	if m.query != "" &&
		!strings.Contains(strings.ToLower(l.Title), m.query) &&
		!strings.Contains(strings.ToLower(l.Description), m.query) &&
		!strings.Contains(strings.ToLower(string(l.Category)), m.query) {
		return false
	}
	return true
}

// parsePrice treats blank, unparseable, NaN and infinite input as no
// constraint.
func parsePrice(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
