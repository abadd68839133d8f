package query

import (
	"github.com/google/uuid"

	"jdmport-backend/internal/domain"
)

// Fixture catalog: Make {Toyota, Honda}, Condition {New, Used}, features
// {Sunroof, 4WD}. Option ids are fixed so ordering assertions are stable.
var (
	makeDetailID      = uuid.MustParse("11111111-0000-0000-0000-000000000001")
	conditionDetailID = uuid.MustParse("11111111-0000-0000-0000-000000000002")

	toyotaOptionID = uuid.MustParse("22222222-0000-0000-0000-000000000001")
	hondaOptionID  = uuid.MustParse("22222222-0000-0000-0000-000000000002")
	newOptionID    = uuid.MustParse("22222222-0000-0000-0000-000000000003")
	usedOptionID   = uuid.MustParse("22222222-0000-0000-0000-000000000004")

	sunroofFeatureID = uuid.MustParse("33333333-0000-0000-0000-000000000001")
	fourWDFeatureID  = uuid.MustParse("33333333-0000-0000-0000-000000000002")
)

func testCatalog() Catalog {
	return BuildCatalog(
		[]domain.CarDetail{
			{DetailID: makeDetailID, Name: "Make"},
			{DetailID: conditionDetailID, Name: "Condition"},
		},
		[]domain.CarDetailOption{
			{OptionID: toyotaOptionID, DetailID: makeDetailID, Name: "Toyota", Icon: "toyota.svg"},
			{OptionID: hondaOptionID, DetailID: makeDetailID, Name: "Honda"},
			{OptionID: newOptionID, DetailID: conditionDetailID, Name: "New"},
			{OptionID: usedOptionID, DetailID: conditionDetailID, Name: "Used"},
		},
		[]domain.Feature{
			{FeatureID: sunroofFeatureID, Name: "Sunroof"},
			{FeatureID: fourWDFeatureID, Name: "4WD"},
		},
	)
}

type carFixture struct {
	id       string
	name     string
	price    string
	year     string
	mileage  string
	pages    []string
	pairs    [][2]uuid.UUID // (detail, option)
	features []domain.Feature
}

func buildDocs(cat Catalog, fixtures ...carFixture) []CarDocument {
	cars := make([]domain.Car, 0, len(fixtures))
	for _, f := range fixtures {
		car := domain.Car{
			CarID:   uuid.MustParse(f.id),
			Name:    f.name,
			Price:   f.price,
			Year:    f.year,
			Mileage: f.mileage,
			Pages:   f.pages,
		}
		for i, p := range f.pairs {
			car.Details = append(car.Details, domain.CarDetailEntry{
				CarID:    car.CarID,
				DetailID: p[0],
				OptionID: p[1],
				Position: i,
			})
		}
		car.Features = f.features
		cars = append(cars, car)
	}
	return JoinCars(cars, cat)
}

func carID(n byte) string {
	return "aaaaaaaa-0000-0000-0000-0000000000" + string([]byte{'0', n})
}

// defaultFleet is four japan-scoped cars covering both makes and conditions.
func defaultFleet(cat Catalog) []CarDocument {
	return buildDocs(cat,
		carFixture{
			id: carID('1'), name: "Toyota Aqua", price: "$12,500", year: "2018", mileage: "45,000 km",
			pages: []string{"japan"},
			pairs: [][2]uuid.UUID{{makeDetailID, toyotaOptionID}, {conditionDetailID, usedOptionID}},
			features: []domain.Feature{{FeatureID: sunroofFeatureID, Name: "Sunroof"}},
		},
		carFixture{
			id: carID('2'), name: "Toyota Vitz", price: "$8,000.50", year: "2015", mileage: "80,000 km",
			pages: []string{"japan"},
			pairs: [][2]uuid.UUID{{makeDetailID, toyotaOptionID}, {conditionDetailID, newOptionID}},
		},
		carFixture{
			id: carID('3'), name: "Honda Fit", price: "Call for price", year: "2020", mileage: "12,000 km",
			pages: []string{"japan"},
			pairs: [][2]uuid.UUID{{makeDetailID, hondaOptionID}, {conditionDetailID, newOptionID}},
			features: []domain.Feature{{FeatureID: fourWDFeatureID, Name: "4WD"}},
		},
		carFixture{
			id: carID('4'), name: "Honda Vezel", price: "$15,900", year: "2019", mileage: "30,000 km",
			pages: nil, // untagged: visible under default sections
			pairs: [][2]uuid.UUID{{makeDetailID, hondaOptionID}, {conditionDetailID, usedOptionID}},
			features: []domain.Feature{{FeatureID: sunroofFeatureID, Name: "Sunroof"}},
		},
	)
}

func docIDs(docs []CarDocument) []string {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids
}
