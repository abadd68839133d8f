package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"jdmport-backend/internal/domain"
	"jdmport-backend/internal/infrastructure/cache"
	"jdmport-backend/internal/query"

	"gorm.io/gorm"
)

// Cache keys for the read-through catalog/ordering cache.
const (
	cacheKeyCatalog     = "browse:catalog"
	cacheKeyOrderPrefix = "browse:ordering:"
)

// Service executes browse queries: it loads the catalog and ordering lists,
// joins the car rows into documents and runs the compiled pipelines.
type Service struct {
	DB           *gorm.DB
	Cache        *cache.Client
	QueryTimeout time.Duration
}

// CarView is one listing in the browse response, shaped for the storefront
// grid: display strings plus resolved detail pairs and feature names.
type CarView struct {
	CarID        string             `json:"car_id"`
	Name         string             `json:"name"`
	Price        string             `json:"price"`
	Year         string             `json:"year"`
	Mileage      string             `json:"mileage"`
	Size         string             `json:"size"`
	Weight       string             `json:"weight"`
	ThumbnailURL string             `json:"thumbnail_url"`
	Pages        []string           `json:"pages"`
	Details      []query.DetailPair `json:"details"`
	Features     []string           `json:"features"`
}

// Pagination matches the exact field names the filter popups and pagination
// controls read.
type Pagination struct {
	CurrentPage int              `json:"currentPage"`
	TotalPages  int              `json:"totalPages"`
	Limit       int              `json:"limit"`
	TotalItems  int              `json:"totalItems"`
	PriceRange  query.PriceRange `json:"priceRange"`
}

// BrowseResult is the listing-query response contract.
type BrowseResult struct {
	Data       []CarView  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// catalogSnapshot is the cacheable projection of the three catalog tables.
type catalogSnapshot struct {
	Details  []domain.CarDetail       `json:"details"`
	Options  []domain.CarDetailOption `json:"options"`
	Features []domain.Feature         `json:"features"`
}

func (s *Service) budget(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.QueryTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// Browse runs the listing query: the full filter spec applied, sorted and
// paginated, with total count and price range over all matches.
func (s *Service) Browse(ctx context.Context, raw query.RawQuery) (*BrowseResult, error) {
	ctx, cancel := s.budget(ctx)
	defer cancel()

	spec := query.ParseFilterSpec(raw)

	cat, carOrder, _, err := s.loadQueryInputs(ctx, spec.Scope, false)
	if err != nil {
		return nil, err
	}
	docs, err := s.loadCarDocuments(ctx, cat)
	if err != nil {
		return nil, err
	}

	res := query.CompileListingPipeline(spec, carOrder).Execute(docs)

	views := make([]CarView, 0, len(res.Cars))
	for _, d := range res.Cars {
		views = append(views, carView(d))
	}
	return &BrowseResult{
		Data: views,
		Pagination: Pagination{
			CurrentPage: spec.Page,
			TotalPages:  int(math.Ceil(float64(res.TotalCars) / float64(spec.Limit))),
			Limit:       spec.Limit,
			TotalItems:  res.TotalCars,
			PriceRange:  res.PriceRange,
		},
	}, nil
}

// FacetCounts runs the cross-filtered count query for one facet: every option
// of the named detail with the number of cars matching all other constraints.
func (s *Service) FacetCounts(ctx context.Context, raw query.RawQuery, facetName string) ([]query.FacetCount, error) {
	ctx, cancel := s.budget(ctx)
	defer cancel()

	spec := query.ParseFilterSpec(raw)

	cat, _, optionOrder, err := s.loadQueryInputs(ctx, spec.Scope, true)
	if err != nil {
		return nil, err
	}
	docs, err := s.loadCarDocuments(ctx, cat)
	if err != nil {
		return nil, err
	}
	return query.CompileFacetPipeline(spec, facetName, cat, optionOrder).Execute(docs), nil
}

// FeatureCounts counts cars per feature tag under every non-feature constraint.
func (s *Service) FeatureCounts(ctx context.Context, raw query.RawQuery) ([]query.FacetCount, error) {
	ctx, cancel := s.budget(ctx)
	defer cancel()

	spec := query.ParseFilterSpec(raw)

	cat, _, _, err := s.loadQueryInputs(ctx, spec.Scope, false)
	if err != nil {
		return nil, err
	}
	docs, err := s.loadCarDocuments(ctx, cat)
	if err != nil {
		return nil, err
	}
	return query.CompileFeaturePipeline(spec, cat).Execute(docs), nil
}

// loadQueryInputs fetches the catalog plus the ordering lists a query needs.
// The two ordering lookups are independent, so they run concurrently.
func (s *Service) loadQueryInputs(ctx context.Context, scope string, wantOptionOrder bool) (query.Catalog, query.OrderIndex, query.OrderIndex, error) {
	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return query.Catalog{}, query.OrderIndex{}, query.OrderIndex{}, err
	}

	var wg sync.WaitGroup
	var carIDs, optionIDs []string
	var carErr, optionErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		carIDs, carErr = s.loadOrderingIDs(ctx, domain.OrderingCar, scope)
	}()
	if wantOptionOrder {
		wg.Add(1)
		go func() {
			defer wg.Done()
			optionIDs, optionErr = s.loadOrderingIDs(ctx, domain.OrderingCarDetail, "")
		}()
	}
	wg.Wait()

	if carErr != nil {
		return query.Catalog{}, query.OrderIndex{}, query.OrderIndex{}, carErr
	}
	if optionErr != nil {
		return query.Catalog{}, query.OrderIndex{}, query.OrderIndex{}, optionErr
	}
	return cat, query.NewOrderIndex(carIDs), query.NewOrderIndex(optionIDs), nil
}

func (s *Service) loadCatalog(ctx context.Context) (query.Catalog, error) {
	var snap catalogSnapshot
	if !s.Cache.GetJSON(ctx, cacheKeyCatalog, &snap) {
		if err := s.DB.WithContext(ctx).Find(&snap.Details).Error; err != nil {
			return query.Catalog{}, fmt.Errorf("Failed to fetch car details: %v", err)
		}
		if err := s.DB.WithContext(ctx).Find(&snap.Options).Error; err != nil {
			return query.Catalog{}, fmt.Errorf("Failed to fetch detail options: %v", err)
		}
		if err := s.DB.WithContext(ctx).Find(&snap.Features).Error; err != nil {
			return query.Catalog{}, fmt.Errorf("Failed to fetch features: %v", err)
		}
		s.Cache.SetJSON(ctx, cacheKeyCatalog, snap)
	}
	return query.BuildCatalog(snap.Details, snap.Options, snap.Features), nil
}

// loadOrderingIDs reads one manual ordering list. A missing row, a cache
// failure or a malformed column all resolve to "no manual order"; any other
// query failure is a collaborator failure and surfaces to the caller.
func (s *Service) loadOrderingIDs(ctx context.Context, name, page string) ([]string, error) {
	key := cacheKeyOrderPrefix + name + ":" + page
	var ids []string
	if s.Cache.GetJSON(ctx, key, &ids) {
		return ids, nil
	}
	var ordering domain.Ordering
	err := s.DB.WithContext(ctx).Where("name = ? AND page = ?", name, page).First(&ordering).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch %s ordering: %v", name, err)
	}
	ids = ordering.IDList()
	s.Cache.SetJSON(ctx, key, ids)
	return ids, nil
}

func (s *Service) loadCarDocuments(ctx context.Context, cat query.Catalog) ([]query.CarDocument, error) {
	var cars []domain.Car
	err := s.DB.WithContext(ctx).
		Preload("Details").
		Preload("Features").
		Find(&cars).Error
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch cars: %v", err)
	}
	return query.JoinCars(cars, cat), nil
}

func carView(d query.CarDocument) CarView {
	v := CarView{
		CarID:        d.ID,
		Name:         d.Name,
		Price:        d.Price,
		Year:         d.Year,
		Mileage:      d.Mileage,
		Size:         d.Size,
		Weight:       d.Weight,
		ThumbnailURL: d.ThumbnailURL,
		Pages:        d.Pages,
		Details:      d.Details,
		Features:     d.Features,
	}
	if v.Pages == nil {
		v.Pages = []string{}
	}
	if v.Details == nil {
		v.Details = []query.DetailPair{}
	}
	if v.Features == nil {
		v.Features = []string{}
	}
	return v
}
