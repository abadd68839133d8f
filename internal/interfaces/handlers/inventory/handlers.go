package inventory

import (
	"net/url"

	invsvc "jdmport-backend/internal/application/inventory"
	"jdmport-backend/internal/middleware"
	"jdmport-backend/internal/pkg/response"
	"jdmport-backend/internal/query"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers bundles the browse endpoints. The listing and facet queries are
// independent round trips: a facet failure must never block a listing
// response, so each handler fails on its own.
type Handlers struct {
	Service *invsvc.Service
}

// rawQuery lifts the request parameters into the permissive query model.
// forcedScope overrides any caller-supplied scope on section-specific routes.
func rawQuery(c *fiber.Ctx, forcedScope string) query.RawQuery {
	scope := forcedScope
	if scope == "" {
		scope = c.Query("scope")
	}
	return query.RawQuery{
		Page:     c.Query("page"),
		Limit:    c.Query("limit"),
		Search:   c.Query("search"),
		Details:  c.Query("details"),
		Features: c.Query("features"),
		SortBy:   c.Query("sortBy"),
		MinPrice: c.Query("minPrice"),
		MaxPrice: c.Query("maxPrice"),
		Scope:    scope,
	}
}

// GetCars GET /api/v1/cars
// Response contract (consumed by the grid + pagination controls):
// { data: [...], pagination: { currentPage, totalPages, limit, totalItems, priceRange } }
func (h *Handlers) GetCars(c *fiber.Ctx) error {
	return h.getCars(c, "")
}

// GetJapanCars GET /api/v1/japan/cars — scope is the route's own section,
// overriding any caller-supplied value.
func (h *Handlers) GetJapanCars(c *fiber.Ctx) error {
	return h.getCars(c, "japan")
}

func (h *Handlers) getCars(c *fiber.Ctx, forcedScope string) error {
	raw := rawQuery(c, forcedScope)
	result, err := h.Service.Browse(c.Context(), raw)
	if err != nil {
		log.Error().Err(err).
			Str("trace_id", middleware.GetTraceID(c)).
			Str("scope", raw.Scope).
			Str("details", raw.Details).
			Msg("listing query failed")
		return response.Error(c, "Failed to fetch car data", fiber.StatusInternalServerError, nil)
	}
	return c.JSON(result)
}

// GetFacetCounts GET /api/v1/cars/facets/:detail
// Returns the ordered option list for one facet with cross-filtered counts,
// zero-count options included.
func (h *Handlers) GetFacetCounts(c *fiber.Ctx) error {
	return h.getFacetCounts(c, "")
}

// GetJapanFacetCounts GET /api/v1/japan/cars/facets/:detail
func (h *Handlers) GetJapanFacetCounts(c *fiber.Ctx) error {
	return h.getFacetCounts(c, "japan")
}

func (h *Handlers) getFacetCounts(c *fiber.Ctx, forcedScope string) error {
	// Detail names may contain spaces ("Body Type"), which arrive
	// percent-encoded in the path segment.
	facet := c.Params("detail")
	if decoded, err := url.PathUnescape(facet); err == nil {
		facet = decoded
	}
	raw := rawQuery(c, forcedScope)
	counts, err := h.Service.FacetCounts(c.Context(), raw, facet)
	if err != nil {
		log.Error().Err(err).
			Str("trace_id", middleware.GetTraceID(c)).
			Str("facet", facet).
			Str("scope", raw.Scope).
			Msg("facet query failed")
		return response.Error(c, "Failed to fetch filters", fiber.StatusInternalServerError, nil)
	}
	return c.JSON(counts)
}

// GetFeatureCounts GET /api/v1/cars/features
func (h *Handlers) GetFeatureCounts(c *fiber.Ctx) error {
	return h.getFeatureCounts(c, "")
}

// GetJapanFeatureCounts GET /api/v1/japan/cars/features
func (h *Handlers) GetJapanFeatureCounts(c *fiber.Ctx) error {
	return h.getFeatureCounts(c, "japan")
}

func (h *Handlers) getFeatureCounts(c *fiber.Ctx, forcedScope string) error {
	raw := rawQuery(c, forcedScope)
	counts, err := h.Service.FeatureCounts(c.Context(), raw)
	if err != nil {
		log.Error().Err(err).
			Str("trace_id", middleware.GetTraceID(c)).
			Str("scope", raw.Scope).
			Msg("feature query failed")
		return response.Error(c, "Failed to fetch filters", fiber.StatusInternalServerError, nil)
	}
	return c.JSON(counts)
}
