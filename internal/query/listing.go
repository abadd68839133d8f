package query

import "sort"

// PriceRange is the {min, max} of the derived price across all matches.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ListingResult is one page of matches plus pre-pagination metadata.
type ListingResult struct {
	Cars       []CarDocument
	TotalCars  int
	PriceRange PriceRange
}

// ListingPipeline is the compiled listing query: constraint stages, a sort
// plan and a pagination window.
type ListingPipeline struct {
	match    *Pipeline
	sort     []SortField
	carOrder OrderIndex
	offset   int
	limit    int
}

// CompileListingPipeline compiles the full filter spec (every constraint
// applied). carOrder is the manual car ordering for the active page scope; it
// is the primary order when no sort is requested and the tie-break otherwise,
// with the document id as the final key so pagination stays stable.
func CompileListingPipeline(spec FilterSpec, carOrder OrderIndex) *ListingPipeline {
	return &ListingPipeline{
		match:    NewPipeline(matchStages(spec)...),
		sort:     spec.Sort,
		carOrder: carOrder,
		offset:   spec.Offset(),
		limit:    spec.Limit,
	}
}

// StageNames exposes the compiled constraint stages, for failure logs.
func (lp *ListingPipeline) StageNames() []string {
	return lp.match.StageNames()
}

// Execute runs the pipeline over the joined documents. Total count and price
// range cover the whole match set, not just the returned page.
func (lp *ListingPipeline) Execute(docs []CarDocument) ListingResult {
	matched := lp.match.Run(docs)

	res := ListingResult{TotalCars: len(matched)}
	for i, d := range matched {
		p := d.Numeric["price"]
		if i == 0 || p < res.PriceRange.Min {
			res.PriceRange.Min = p
		}
		if i == 0 || p > res.PriceRange.Max {
			res.PriceRange.Max = p
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return lp.less(matched[i], matched[j])
	})

	start := lp.offset
	if start > len(matched) {
		start = len(matched)
	}
	end := start + lp.limit
	if end > len(matched) {
		end = len(matched)
	}
	res.Cars = matched[start:end]
	return res
}

// less orders by each requested numeric key in turn, then by manual car order,
// then by id. With no requested sort the manual order is primary.
func (lp *ListingPipeline) less(a, b CarDocument) bool {
	for _, f := range lp.sort {
		va, vb := a.Numeric[f.Field], b.Numeric[f.Field]
		if va == vb {
			continue
		}
		if f.Descending {
			return va > vb
		}
		return va < vb
	}
	if a.ID == b.ID {
		return false
	}
	return lp.carOrder.Less(a.ID, b.ID)
}
