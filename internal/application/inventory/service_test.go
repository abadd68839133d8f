package inventory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"jdmport-backend/internal/domain"
	"jdmport-backend/internal/infrastructure/cache"
	"jdmport-backend/internal/query"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.CarDetail{}, &domain.CarDetailOption{}, &domain.Feature{},
		&domain.Car{}, &domain.CarDetailEntry{}, &domain.Ordering{},
	))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	return &Service{
		DB:           db,
		Cache:        cache.New(rdb, time.Minute),
		QueryTimeout: 10 * time.Second,
	}, db
}

type seeded struct {
	makeDetail, condition     domain.CarDetail
	toyota, honda, newOpt, used domain.CarDetailOption
	sunroof                   domain.Feature
	aqua, vitz, fit           domain.Car
}

func seedShowroom(t *testing.T, db *gorm.DB) seeded {
	t.Helper()
	var s seeded

	s.makeDetail = domain.CarDetail{Name: "Make"}
	s.condition = domain.CarDetail{Name: "Condition"}
	require.NoError(t, db.Create(&s.makeDetail).Error)
	require.NoError(t, db.Create(&s.condition).Error)

	s.toyota = domain.CarDetailOption{DetailID: s.makeDetail.DetailID, Name: "Toyota", Icon: "toyota.svg"}
	s.honda = domain.CarDetailOption{DetailID: s.makeDetail.DetailID, Name: "Honda"}
	s.newOpt = domain.CarDetailOption{DetailID: s.condition.DetailID, Name: "New"}
	s.used = domain.CarDetailOption{DetailID: s.condition.DetailID, Name: "Used"}
	for _, o := range []*domain.CarDetailOption{&s.toyota, &s.honda, &s.newOpt, &s.used} {
		require.NoError(t, db.Create(o).Error)
	}

	s.sunroof = domain.Feature{Name: "Sunroof"}
	require.NoError(t, db.Create(&s.sunroof).Error)

	s.aqua = domain.Car{
		Name: "Toyota Aqua", Price: "$12,500", Year: "2018", Mileage: "45,000 km",
		Pages: domain.PageTags{"japan"},
		Details: []domain.CarDetailEntry{
			{DetailID: s.makeDetail.DetailID, OptionID: s.toyota.OptionID, Position: 0},
			{DetailID: s.condition.DetailID, OptionID: s.used.OptionID, Position: 1},
		},
		Features: []domain.Feature{s.sunroof},
	}
	s.vitz = domain.Car{
		Name: "Toyota Vitz", Price: "$8,000.50", Year: "2015", Mileage: "80,000 km",
		Pages: domain.PageTags{"japan"},
		Details: []domain.CarDetailEntry{
			{DetailID: s.makeDetail.DetailID, OptionID: s.toyota.OptionID, Position: 0},
			{DetailID: s.condition.DetailID, OptionID: s.newOpt.OptionID, Position: 1},
		},
	}
	s.fit = domain.Car{
		Name: "Honda Fit", Price: "Call for price", Year: "2020", Mileage: "12,000 km",
		Pages: domain.PageTags{"reserved"},
		Details: []domain.CarDetailEntry{
			{DetailID: s.makeDetail.DetailID, OptionID: s.honda.OptionID, Position: 0},
			{DetailID: s.condition.DetailID, OptionID: s.newOpt.OptionID, Position: 1},
		},
	}
	for _, c := range []*domain.Car{&s.aqua, &s.vitz, &s.fit} {
		require.NoError(t, db.Create(c).Error)
	}
	return s
}

func TestBrowse_ScopeAndDetailFilter(t *testing.T) {
	svc, db := setupService(t)
	seed := seedShowroom(t, db)

	res, err := svc.Browse(context.Background(), query.RawQuery{
		Scope:   "japan",
		Details: "Make:Toyota",
	})
	require.NoError(t, err)

	require.Len(t, res.Data, 2)
	assert.Equal(t, 2, res.Pagination.TotalItems)
	assert.Equal(t, 1, res.Pagination.TotalPages)
	assert.Equal(t, 24, res.Pagination.Limit)
	for _, car := range res.Data {
		found := false
		for _, p := range car.Details {
			if p.OptionID == seed.toyota.OptionID.String() {
				found = true
			}
		}
		assert.True(t, found, "every returned car must carry the Toyota option")
	}
}

func TestBrowse_PriceRangeAndSort(t *testing.T) {
	svc, db := setupService(t)
	seedShowroom(t, db)

	res, err := svc.Browse(context.Background(), query.RawQuery{
		Scope:  "japan",
		SortBy: "price:asc",
	})
	require.NoError(t, err)

	require.Len(t, res.Data, 2)
	assert.Equal(t, "Toyota Vitz", res.Data[0].Name)
	assert.Equal(t, "Toyota Aqua", res.Data[1].Name)
	assert.Equal(t, query.PriceRange{Min: 8000.5, Max: 12500}, res.Pagination.PriceRange)
}

func TestBrowse_EmptyResultIsNotAnError(t *testing.T) {
	svc, db := setupService(t)
	seedShowroom(t, db)

	res, err := svc.Browse(context.Background(), query.RawQuery{
		Scope:   "japan",
		Details: "Make:Nissan",
	})
	require.NoError(t, err)

	assert.Empty(t, res.Data)
	assert.Equal(t, 0, res.Pagination.TotalItems)
	assert.Equal(t, 0, res.Pagination.TotalPages)
}

func TestBrowse_ManualCarOrdering(t *testing.T) {
	svc, db := setupService(t)
	seed := seedShowroom(t, db)

	ids, _ := json.Marshal([]string{seed.vitz.CarID.String(), seed.aqua.CarID.String()})
	require.NoError(t, db.Create(&domain.Ordering{
		Name: domain.OrderingCar,
		Page: "japan",
		IDs:  ids,
	}).Error)

	res, err := svc.Browse(context.Background(), query.RawQuery{Scope: "japan"})
	require.NoError(t, err)

	require.Len(t, res.Data, 2)
	assert.Equal(t, "Toyota Vitz", res.Data[0].Name)
	assert.Equal(t, "Toyota Aqua", res.Data[1].Name)
}

func TestBrowse_ReservedScopeIncludesSold(t *testing.T) {
	svc, db := setupService(t)
	seedShowroom(t, db)

	sold := domain.Car{Name: "Sold Car", Price: "$1,000", Pages: domain.PageTags{"sold"}}
	require.NoError(t, db.Create(&sold).Error)

	res, err := svc.Browse(context.Background(), query.RawQuery{Scope: "reserved"})
	require.NoError(t, err)

	names := []string{}
	for _, c := range res.Data {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"Honda Fit", "Sold Car"}, names)
}

func TestFacetCounts_CrossFiltered(t *testing.T) {
	svc, db := setupService(t)
	seedShowroom(t, db)

	counts, err := svc.FacetCounts(context.Background(), query.RawQuery{
		Scope:   "japan",
		Details: "Make:Toyota",
	}, "Condition")
	require.NoError(t, err)

	require.Len(t, counts, 2)
	byName := map[string]int{}
	for _, c := range counts {
		byName[c.Name] = c.Count
	}
	assert.Equal(t, 1, byName["New"])
	assert.Equal(t, 1, byName["Used"])
}

func TestFacetCounts_ManualOptionOrdering(t *testing.T) {
	svc, db := setupService(t)
	seed := seedShowroom(t, db)

	ids, _ := json.Marshal([]string{seed.honda.OptionID.String(), seed.toyota.OptionID.String()})
	require.NoError(t, db.Create(&domain.Ordering{
		Name: domain.OrderingCarDetail,
		IDs:  ids,
	}).Error)

	counts, err := svc.FacetCounts(context.Background(), query.RawQuery{Scope: "japan"}, "Make")
	require.NoError(t, err)

	require.Len(t, counts, 2)
	assert.Equal(t, "Honda", counts[0].Name)
	assert.Equal(t, "Toyota", counts[1].Name)
}

func TestFacetCounts_UnknownFacetIsEmpty(t *testing.T) {
	svc, db := setupService(t)
	seedShowroom(t, db)

	counts, err := svc.FacetCounts(context.Background(), query.RawQuery{Scope: "japan"}, "Transmission")
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestFeatureCounts(t *testing.T) {
	svc, db := setupService(t)
	seedShowroom(t, db)

	counts, err := svc.FeatureCounts(context.Background(), query.RawQuery{Scope: "japan"})
	require.NoError(t, err)

	require.Len(t, counts, 1)
	assert.Equal(t, "Sunroof", counts[0].Name)
	assert.Equal(t, 1, counts[0].Count)
}

func TestBrowse_CatalogServedFromCacheAfterFirstLoad(t *testing.T) {
	svc, db := setupService(t)
	seedShowroom(t, db)

	_, err := svc.Browse(context.Background(), query.RawQuery{Scope: "japan"})
	require.NoError(t, err)

	// A detail created after the first load is invisible until the snapshot
	// expires, proving the catalog came from the cache.
	require.NoError(t, db.Create(&domain.CarDetail{Name: "Transmission"}).Error)

	counts, err := svc.FacetCounts(context.Background(), query.RawQuery{Scope: "japan"}, "Transmission")
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestBrowse_SurvivesWithoutRedis(t *testing.T) {
	svc, db := setupService(t)
	seedShowroom(t, db)
	svc.Cache = nil

	res, err := svc.Browse(context.Background(), query.RawQuery{Scope: "japan"})
	require.NoError(t, err)
	assert.Len(t, res.Data, 2)
}

func TestBrowse_OrderingLookupFailureSurfaces(t *testing.T) {
	svc, db := setupService(t)
	seedShowroom(t, db)

	// A missing row falls back to natural order, but a failing query is a
	// collaborator failure and must not silently degrade the response.
	require.NoError(t, db.Migrator().DropTable(&domain.Ordering{}))

	_, err := svc.Browse(context.Background(), query.RawQuery{Scope: "japan"})
	assert.Error(t, err)
}

func TestFacetCounts_OrderingLookupFailureSurfaces(t *testing.T) {
	svc, db := setupService(t)
	seedShowroom(t, db)

	require.NoError(t, db.Migrator().DropTable(&domain.Ordering{}))

	_, err := svc.FacetCounts(context.Background(), query.RawQuery{Scope: "japan"}, "Make")
	assert.Error(t, err)
}

func TestLoadOrderingIDs_MalformedColumnMeansNoManualOrder(t *testing.T) {
	svc, db := setupService(t)
	seedShowroom(t, db)

	require.NoError(t, db.Create(&domain.Ordering{
		OrderingID: uuid.New(),
		Name:       domain.OrderingCar,
		Page:       "japan",
		IDs:        []byte(`"not-an-array"`),
	}).Error)

	res, err := svc.Browse(context.Background(), query.RawQuery{Scope: "japan"})
	require.NoError(t, err)
	assert.Len(t, res.Data, 2)
}
