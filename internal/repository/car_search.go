package repository

import "strings"

// Free-text search over listings is applied in memory after the SQL
// filter: the term is matched case-insensitively as a substring of the
// brand name, the model name and the description. This keeps the SQL
// layer to indexed predicates while search semantics stay identical
// for every storage backend.

// MatchesSearch reports whether a listing matches the search term. An
// empty or whitespace-only term matches everything.
func MatchesSearch(term string, d *CarDetail) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(d.BrandName), term) {
		return true
	}
	if strings.Contains(strings.ToLower(d.ModelName), term) {
		return true
	}
	if d.Description != nil && strings.Contains(strings.ToLower(*d.Description), term) {
		return true
	}
	return false
}

// FilterBySearch returns the listings matching term, preserving order.
func FilterBySearch(term string, cars []*CarDetail) []*CarDetail {
	if strings.TrimSpace(term) == "" {
		return cars
	}
	out := cars[:0:0]
	for _, c := range cars {
		if MatchesSearch(term, c) {
			out = append(out, c)
		}
	}
	return out
}
