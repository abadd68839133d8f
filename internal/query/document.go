package query

import (
	"sort"
	"strings"

	"jdmport-backend/internal/domain"
)

// Detail, DetailOption and FeatureTag are the catalog projections the pipeline
// works with. IDs are uuid strings so they compare directly against the stored
// ordering lists.
type Detail struct {
	ID   string
	Name string
}

type DetailOption struct {
	ID       string
	DetailID string
	Name     string
	Icon     string
}

type FeatureTag struct {
	ID   string
	Name string
}

// Catalog indexes the detail/option/feature collections for the join stage.
type Catalog struct {
	Details  map[string]Detail
	Options  map[string]DetailOption
	Features map[string]FeatureTag
}

// BuildCatalog projects the domain catalog rows into lookup maps.
func BuildCatalog(details []domain.CarDetail, options []domain.CarDetailOption, features []domain.Feature) Catalog {
	cat := Catalog{
		Details:  make(map[string]Detail, len(details)),
		Options:  make(map[string]DetailOption, len(options)),
		Features: make(map[string]FeatureTag, len(features)),
	}
	for _, d := range details {
		cat.Details[d.DetailID.String()] = Detail{ID: d.DetailID.String(), Name: d.Name}
	}
	for _, o := range options {
		cat.Options[o.OptionID.String()] = DetailOption{
			ID:       o.OptionID.String(),
			DetailID: o.DetailID.String(),
			Name:     o.Name,
			Icon:     o.Icon,
		}
	}
	for _, f := range features {
		cat.Features[f.FeatureID.String()] = FeatureTag{ID: f.FeatureID.String(), Name: f.Name}
	}
	return cat
}

// DetailByName finds a detail by display name, case-insensitively.
func (c Catalog) DetailByName(name string) (Detail, bool) {
	for _, d := range c.Details {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	return Detail{}, false
}

// OptionsForDetail returns every option belonging to a detail in natural
// (id) order. Manual ordering, when present, is applied on top of this.
func (c Catalog) OptionsForDetail(detailID string) []DetailOption {
	var out []DetailOption
	for _, o := range c.Options {
		if o.DetailID == detailID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DetailPair is one resolved (detail, option) pair on a car document.
type DetailPair struct {
	DetailID       string `json:"detail_id"`
	DetailName     string `json:"detail"`
	OptionID       string `json:"option_id"`
	OptionName     string `json:"option"`
	OptionDetailID string `json:"-"`
	OptionIcon     string `json:"icon,omitempty"`
	resolved       bool
}

// Valid reports whether both references resolved and the option actually
// belongs to the referenced detail. Option names repeat across details, so a
// pair borrowed from another detail must never satisfy a facet match.
func (p DetailPair) Valid() bool {
	return p.resolved && p.OptionDetailID == p.DetailID
}

// CarDocument is the joined, denormalized record the pipeline stages operate
// on: catalog references resolved to names, feature names flattened, derived
// numeric fields attached by the derive stage.
type CarDocument struct {
	ID           string
	Name         string
	Price        string
	Year         string
	Mileage      string
	Size         string
	Weight       string
	ThumbnailURL string
	Pages        []string
	Details      []DetailPair
	Features     []string
	Numeric      map[string]float64
}

// JoinCars resolves each car's detail/option/feature references against the
// catalog. Pairs whose references do not resolve are kept but never pass
// Valid, mirroring how a dangling database reference simply fails to match.
func JoinCars(cars []domain.Car, cat Catalog) []CarDocument {
	docs := make([]CarDocument, 0, len(cars))
	for _, car := range cars {
		doc := CarDocument{
			ID:           car.CarID.String(),
			Name:         car.Name,
			Price:        car.Price,
			Year:         car.Year,
			Mileage:      car.Mileage,
			Size:         car.Size,
			Weight:       car.Weight,
			ThumbnailURL: car.ThumbnailURL,
			Pages:        car.Pages,
		}
		entries := append([]domain.CarDetailEntry(nil), car.Details...)
		sort.Slice(entries, func(i, j int) bool { return entries[i].Position < entries[j].Position })
		for _, e := range entries {
			pair := DetailPair{
				DetailID: e.DetailID.String(),
				OptionID: e.OptionID.String(),
			}
			d, okD := cat.Details[pair.DetailID]
			o, okO := cat.Options[pair.OptionID]
			if okD && okO {
				pair.DetailName = d.Name
				pair.OptionName = o.Name
				pair.OptionDetailID = o.DetailID
				pair.OptionIcon = o.Icon
				pair.resolved = true
			}
			doc.Details = append(doc.Details, pair)
		}
		for _, f := range car.Features {
			doc.Features = append(doc.Features, f.Name)
		}
		docs = append(docs, doc)
	}
	return docs
}
