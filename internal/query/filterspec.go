// Package query compiles inbound browse requests into explicit, independently
// testable pipeline stages executed over joined in-memory car documents, and
// shapes the results (page, totals, price range, facet counts).
package query

import (
	"math"
	"strconv"
	"strings"
)

// RawQuery carries the request parameters exactly as received. Parsing is
// deliberately permissive: malformed values fall back to documented defaults
// instead of erroring, for compatibility with loosely-formed client input.
type RawQuery struct {
	Page     string
	Limit    string
	Search   string
	Details  string
	Features string
	SortBy   string
	MinPrice string
	MaxPrice string
	Scope    string
}

// fieldDefaults is the permissive-parsing policy table: the value each numeric
// parameter falls back to when absent or unparsable.
var fieldDefaults = map[string]float64{
	"page":     1,
	"limit":    24,
	"minPrice": 0,
	"maxPrice": math.Inf(1),
}

// DetailFilter is one facet constraint: match cars carrying at least one of
// Values for the detail named Name.
type DetailFilter struct {
	Name   string
	Values []string
}

// SortField is one recognized sort key with its direction.
type SortField struct {
	Field      string
	Descending bool
}

// sortableFields are the logical sort keys that map to derived numeric values.
var sortableFields = map[string]bool{
	"price":   true,
	"year":    true,
	"mileage": true,
	"size":    true,
	"weight":  true,
}

// FilterSpec is the parsed, validated filter model a request compiles to.
type FilterSpec struct {
	Scope    string
	Search   string
	Details  []DetailFilter
	Features []string
	MinPrice float64
	MaxPrice float64
	Sort     []SortField
	Page     int
	Limit    int
}

// ParseFilterSpec converts raw request parameters into a FilterSpec.
// It never fails: every malformed piece degrades to its default.
func ParseFilterSpec(raw RawQuery) FilterSpec {
	spec := FilterSpec{
		Scope:    strings.TrimSpace(raw.Scope),
		Search:   strings.TrimSpace(raw.Search),
		Details:  parseDetailFilters(raw.Details),
		Features: parseList(raw.Features),
		MinPrice: parseFloatDefault(raw.MinPrice, "minPrice"),
		MaxPrice: parseFloatDefault(raw.MaxPrice, "maxPrice"),
		Sort:     parseSortFields(raw.SortBy),
		Page:     parseIntDefault(raw.Page, "page"),
		Limit:    parseIntDefault(raw.Limit, "limit"),
	}
	if spec.Page < 1 {
		spec.Page = int(fieldDefaults["page"])
	}
	if spec.Limit < 1 {
		spec.Limit = int(fieldDefaults["limit"])
	}
	if spec.MaxPrice < spec.MinPrice {
		spec.MaxPrice = fieldDefaults["maxPrice"]
	}
	return spec
}

// Offset is the number of records skipped before the current page.
func (s FilterSpec) Offset() int {
	return (s.Page - 1) * s.Limit
}

// WithoutDetail returns a copy of the spec with the named facet's own
// constraint removed; all other constraints stay. Used for cross-filtered
// facet counting. Name comparison is case-insensitive.
func (s FilterSpec) WithoutDetail(name string) FilterSpec {
	out := s
	out.Details = make([]DetailFilter, 0, len(s.Details))
	for _, d := range s.Details {
		if strings.EqualFold(d.Name, name) {
			continue
		}
		out.Details = append(out.Details, d)
	}
	return out
}

// WithoutFeatures returns a copy of the spec with the feature constraint
// removed, for cross-filtered feature counting.
func (s FilterSpec) WithoutFeatures() FilterSpec {
	out := s
	out.Features = nil
	return out
}

// parseDetailFilters parses "name1:valA,valB;name2:valC". Entries whose value
// list is empty after splitting are dropped (facet not constrained), never
// treated as match-nothing.
func parseDetailFilters(raw string) []DetailFilter {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var filters []DetailFilter
	for _, entry := range strings.Split(raw, ";") {
		name, values, _ := strings.Cut(entry, ":")
		name = strings.TrimSpace(name)
		vals := parseList(values)
		if name == "" || len(vals) == 0 {
			continue
		}
		filters = append(filters, DetailFilter{Name: name, Values: vals})
	}
	return filters
}

// parseSortFields parses "field:asc,field2:desc". Unknown field names are
// silently dropped; "asc" means ascending, anything else descending. An empty
// result means the caller falls back to the manual car order.
func parseSortFields(raw string) []SortField {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var fields []SortField
	for _, entry := range strings.Split(raw, ",") {
		name, dir, _ := strings.Cut(entry, ":")
		name = strings.ToLower(strings.TrimSpace(name))
		if !sortableFields[name] {
			continue
		}
		fields = append(fields, SortField{Field: name, Descending: strings.TrimSpace(dir) != "asc"})
	}
	return fields
}

func parseList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseIntDefault(raw, field string) int {
	if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		return v
	}
	return int(fieldDefaults[field])
}

func parseFloatDefault(raw, field string) float64 {
	if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil && !math.IsNaN(v) {
		return v
	}
	return fieldDefaults[field]
}
