package query

import "sort"

// FacetCount is one selectable option of a facet with the number of cars that
// would match it under every other active filter.
type FacetCount struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Count int    `json:"count"`
}

// FacetPipeline is the compiled facet-count query for one target detail.
type FacetPipeline struct {
	match       *Pipeline
	detail      Detail
	options     []DetailOption
	optionOrder OrderIndex
	known       bool
}

// CompileFacetPipeline compiles the cross-filtered count query for facetName:
// the target facet's own constraint is removed, every other constraint stays,
// so selecting an option never suppresses its own alternatives. optionOrder is
// the global "CarDetail" manual list. An unknown facet name compiles to a
// pipeline that returns an empty list.
func CompileFacetPipeline(spec FilterSpec, facetName string, cat Catalog, optionOrder OrderIndex) *FacetPipeline {
	fp := &FacetPipeline{optionOrder: optionOrder}
	d, ok := cat.DetailByName(facetName)
	if !ok {
		return fp
	}
	fp.known = true
	fp.detail = d
	fp.options = cat.OptionsForDetail(d.ID)
	fp.match = NewPipeline(matchStages(spec.WithoutDetail(facetName))...)
	return fp
}

// StageNames exposes the compiled constraint stages, for failure logs.
func (fp *FacetPipeline) StageNames() []string {
	if fp.match == nil {
		return nil
	}
	return fp.match.StageNames()
}

// Execute counts matches per option of the target detail. Every valid option
// is returned, zero counts included, so the UI can render disabled-but-visible
// choices. Order: manual option order first, then natural id order.
func (fp *FacetPipeline) Execute(docs []CarDocument) []FacetCount {
	if !fp.known {
		return []FacetCount{}
	}
	counts := make(map[string]int, len(fp.options))
	for _, d := range fp.match.Run(docs) {
		seen := map[string]bool{}
		for _, p := range d.Details {
			if !p.Valid() || p.DetailID != fp.detail.ID || seen[p.OptionID] {
				continue
			}
			seen[p.OptionID] = true
			counts[p.OptionID]++
		}
	}
	out := make([]FacetCount, 0, len(fp.options))
	for _, o := range fp.options {
		out = append(out, FacetCount{ID: o.ID, Name: o.Name, Icon: o.Icon, Count: counts[o.ID]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return fp.optionOrder.Less(out[i].ID, out[j].ID)
	})
	return out
}

// FeaturePipeline is the compiled per-feature count query.
type FeaturePipeline struct {
	match    *Pipeline
	features []FeatureTag
}

// CompileFeaturePipeline counts cars per feature tag with the feature
// constraint removed, mirroring the facet cross-filtering semantics.
func CompileFeaturePipeline(spec FilterSpec, cat Catalog) *FeaturePipeline {
	features := make([]FeatureTag, 0, len(cat.Features))
	for _, f := range cat.Features {
		features = append(features, f)
	}
	sort.Slice(features, func(i, j int) bool { return features[i].ID < features[j].ID })
	return &FeaturePipeline{
		match:    NewPipeline(matchStages(spec.WithoutFeatures())...),
		features: features,
	}
}

// Execute returns every feature with its count, zero counts included, in
// natural id order.
func (fp *FeaturePipeline) Execute(docs []CarDocument) []FacetCount {
	counts := make(map[string]int, len(fp.features))
	for _, d := range fp.match.Run(docs) {
		for _, name := range d.Features {
			counts[name]++
		}
	}
	out := make([]FacetCount, 0, len(fp.features))
	for _, f := range fp.features {
		out = append(out, FacetCount{ID: f.ID, Name: f.Name, Count: counts[f.Name]})
	}
	return out
}
