package query

import "strings"

// Stage is one named, independently testable step of a compiled pipeline.
type Stage struct {
	Name  string
	Apply func(docs []CarDocument) []CarDocument
}

// Pipeline is an ordered sequence of stages.
type Pipeline struct {
	stages []Stage
}

func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run applies every stage in order.
func (p *Pipeline) Run(docs []CarDocument) []CarDocument {
	for _, s := range p.stages {
		docs = s.Apply(docs)
	}
	return docs
}

// StageNames lists the compiled stage names, for failure logs.
func (p *Pipeline) StageNames() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name
	}
	return names
}

func keep(docs []CarDocument, pred func(CarDocument) bool) []CarDocument {
	out := docs[:0:0]
	for _, d := range docs {
		if pred(d) {
			out = append(out, d)
		}
	}
	return out
}

// MatchScope restricts documents to a storefront section. "inventory" shows
// everything; "reserved" additionally includes cars tagged "sold"; any other
// scope shows cars tagged with it plus untagged cars.
func MatchScope(scope string) Stage {
	return Stage{Name: "matchScope", Apply: func(docs []CarDocument) []CarDocument {
		switch scope {
		case "", "inventory":
			return docs
		case "reserved":
			return keep(docs, func(d CarDocument) bool {
				return hasPage(d.Pages, "reserved") || hasPage(d.Pages, "sold")
			})
		default:
			return keep(docs, func(d CarDocument) bool {
				return len(d.Pages) == 0 || hasPage(d.Pages, scope)
			})
		}
	}}
}

func hasPage(pages []string, tag string) bool {
	for _, p := range pages {
		if p == tag {
			return true
		}
	}
	return false
}

// MatchSearch keeps documents whose name or any resolved option name contains
// the term, case-insensitively. An empty term matches everything.
func MatchSearch(term string) Stage {
	term = strings.ToLower(strings.TrimSpace(term))
	return Stage{Name: "matchSearch", Apply: func(docs []CarDocument) []CarDocument {
		if term == "" {
			return docs
		}
		return keep(docs, func(d CarDocument) bool {
			if strings.Contains(strings.ToLower(d.Name), term) {
				return true
			}
			for _, p := range d.Details {
				if p.Valid() && strings.Contains(strings.ToLower(p.OptionName), term) {
					return true
				}
			}
			return false
		})
	}}
}

// MatchDetails applies the facet constraints: AND across details, OR within a
// detail's selected values. A pair only satisfies a constraint when it is
// valid (option owned by the matched detail).
func MatchDetails(filters []DetailFilter) Stage {
	return Stage{Name: "matchDetails", Apply: func(docs []CarDocument) []CarDocument {
		if len(filters) == 0 {
			return docs
		}
		return keep(docs, func(d CarDocument) bool {
			for _, f := range filters {
				if !matchesDetailFilter(d, f) {
					return false
				}
			}
			return true
		})
	}}
}

func matchesDetailFilter(d CarDocument, f DetailFilter) bool {
	for _, p := range d.Details {
		if !p.Valid() || !strings.EqualFold(p.DetailName, f.Name) {
			continue
		}
		for _, v := range f.Values {
			if p.OptionName == v {
				return true
			}
		}
	}
	return false
}

// MatchFeatures keeps documents carrying at least one of the requested
// feature names (any-of, not all-of).
func MatchFeatures(names []string) Stage {
	return Stage{Name: "matchFeatures", Apply: func(docs []CarDocument) []CarDocument {
		if len(names) == 0 {
			return docs
		}
		return keep(docs, func(d CarDocument) bool {
			for _, have := range d.Features {
				for _, want := range names {
					if have == want {
						return true
					}
				}
			}
			return false
		})
	}}
}

// DeriveNumerics attaches the normalized numeric projection of every sortable
// field. Both the price-range stage and the sort comparator read these values,
// never the display strings, so filter and sort cannot diverge.
func DeriveNumerics() Stage {
	return Stage{Name: "deriveNumerics", Apply: func(docs []CarDocument) []CarDocument {
		for i := range docs {
			d := &docs[i]
			d.Numeric = map[string]float64{
				"price":   NumericValue(d.Price),
				"year":    NumericValue(d.Year),
				"mileage": NumericValue(d.Mileage),
				"size":    NumericValue(d.Size),
				"weight":  NumericValue(d.Weight),
			}
		}
		return docs
	}}
}

// MatchPrice keeps documents whose derived price lies in [min, max].
// Runs after DeriveNumerics.
func MatchPrice(min, max float64) Stage {
	return Stage{Name: "matchPrice", Apply: func(docs []CarDocument) []CarDocument {
		return keep(docs, func(d CarDocument) bool {
			p := d.Numeric["price"]
			return p >= min && p <= max
		})
	}}
}

// matchStages compiles the shared constraint sequence both the listing and
// facet pipelines start from.
func matchStages(spec FilterSpec) []Stage {
	return []Stage{
		MatchScope(spec.Scope),
		MatchSearch(spec.Search),
		MatchDetails(spec.Details),
		MatchFeatures(spec.Features),
		DeriveNumerics(),
		MatchPrice(spec.MinPrice, spec.MaxPrice),
	}
}
