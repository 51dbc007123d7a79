// Package chi exposes the discovery and search API over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sokohub/geosearch/internal/domain"
	domgeo "github.com/sokohub/geosearch/internal/domain/geo"
	searchdom "github.com/sokohub/geosearch/internal/domain/search"
	"github.com/sokohub/geosearch/internal/geocode"
	geouc "github.com/sokohub/geosearch/internal/usecase/geo"
	healthuc "github.com/sokohub/geosearch/internal/usecase/health"
	searchuc "github.com/sokohub/geosearch/internal/usecase/search"
)

// Error codes returned to clients.
const (
	codeBadRequest          = "bad_request"
	codeValidationFailed    = "validation_failed"
	codeNotFound            = "not_found"
	codeProviderUnavailable = "provider_unavailable"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SearchRequest is the POST /v1/search body.
type SearchRequest struct {
	Keyword  string   `json:"keyword" validate:"max=256"`
	Category string   `json:"category,omitempty"`
	MinPrice *float64 `json:"minPrice,omitempty" validate:"omitempty,gte=0"`
	MaxPrice *float64 `json:"maxPrice,omitempty" validate:"omitempty,gte=0"`

	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	RadiusMeters *float64 `json:"radiusMeters,omitempty"`

	Bounds *BoundsDTO `json:"bounds,omitempty"`

	Sort      string `json:"sort,omitempty" validate:"omitempty,oneof=price createdAt name rating distance"`
	Direction string `json:"direction,omitempty" validate:"omitempty,oneof=asc desc"`
	Limit     int    `json:"limit,omitempty" validate:"gte=0,lte=100"`
	Offset    int    `json:"offset,omitempty" validate:"gte=0"`
}

// BoundsDTO is a viewport on the wire. West longitude greater than east means
// the box wraps the antimeridian.
type BoundsDTO struct {
	SWLatitude  float64 `json:"swLat" validate:"gte=-90,lte=90"`
	SWLongitude float64 `json:"swLon" validate:"gte=-180,lte=180"`
	NELatitude  float64 `json:"neLat" validate:"gte=-90,lte=90"`
	NELongitude float64 `json:"neLon" validate:"gte=-180,lte=180"`
}

type searchItemDTO struct {
	Product        productDTO `json:"product"`
	Owner          ownerDTO   `json:"owner"`
	DistanceMeters *float64   `json:"distanceMeters,omitempty"`
}

type productDTO struct {
	ID          string  `json:"id"`
	BusinessID  string  `json:"businessId"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	InStock     bool    `json:"inStock"`
	Category    string  `json:"category"`
	CreatedAt   int64   `json:"createdAt"`
}

type ownerDTO struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Verified bool    `json:"verified"`
	Rating   float64 `json:"rating"`
}

type pageDTO struct {
	Items  []searchItemDTO `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type businessDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Kind        string   `json:"kind"`
	Verified    bool     `json:"verified"`
	Rating      float64  `json:"rating"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	CreatedAt   int64    `json:"createdAt"`
}

type nearbyItemDTO struct {
	Business       businessDTO `json:"business"`
	DistanceMeters float64     `json:"distanceMeters"`
}

type nearbyPageDTO struct {
	Items  []nearbyItemDTO `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type distanceDTO struct {
	Meters     float64 `json:"meters"`
	Kilometers float64 `json:"kilometers"`
	Miles      float64 `json:"miles"`
}

// Server wires the use cases into HTTP handlers.
type Server struct {
	search   *searchuc.Service
	geo      *geouc.Service
	geocoder geocode.Resolver
	health   *healthuc.Service
	logger   *zap.Logger
	validate *validator.Validate
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	geo *geouc.Service,
	geocoder geocode.Resolver,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		search:   search,
		geo:      geo,
		geocoder: geocoder,
		health:   health,
		logger:   logger,
		validate: validator.New(),
	}
}

// Routes mounts all handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/search", s.handleSearch)
	r.Get("/v1/nearby", s.handleNearby)
	r.Get("/v1/bounds", s.handleBounds)
	r.Get("/v1/distance", s.handleDistance)
	r.Get("/v1/geocode/forward", s.handleForwardGeocode)
	r.Get("/v1/geocode/reverse", s.handleReverseGeocode)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	params, err := paramsFromRequest(&req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	q, err := searchdom.New(params)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	page, err := s.search.Search(r.Context(), &q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pageToDTO(page))
}

func (s *Server) handleNearby(w http.ResponseWriter, r *http.Request) {
	lat, err := queryFloat(r, "lat")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	lon, err := queryFloat(r, "lon")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	radius, err := queryFloat(r, "radius")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	req := geouc.NearbyRequest{
		Latitude:     lat,
		Longitude:    lon,
		RadiusMeters: radius,
		Kind:         domain.BusinessKind(r.URL.Query().Get("kind")),
		VerifiedOnly: r.URL.Query().Get("verified") == "true",
	}
	if v := r.URL.Query().Get("minRating"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "minRating must be a number")
			return
		}
		req.MinRating = f
	}
	req.Limit, req.Offset, err = queryPaging(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	page, err := s.geo.FindNearby(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := nearbyPageDTO{
		Items:  make([]nearbyItemDTO, 0, len(page.Items)),
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	for _, item := range page.Items {
		resp.Items = append(resp.Items, nearbyItemDTO{
			Business:       businessToDTO(&item.Business),
			DistanceMeters: item.DistanceMeters,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBounds(w http.ResponseWriter, r *http.Request) {
	var req geouc.BoundsRequest
	var err error
	if req.SWLatitude, err = queryFloat(r, "swLat"); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	if req.SWLongitude, err = queryFloat(r, "swLon"); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	if req.NELatitude, err = queryFloat(r, "neLat"); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	if req.NELongitude, err = queryFloat(r, "neLon"); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	businesses, err := s.geo.FindInBounds(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]businessDTO, 0, len(businesses))
	for i := range businesses {
		items = append(items, businessToDTO(&businesses[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

func (s *Server) handleDistance(w http.ResponseWriter, r *http.Request) {
	coords := [4]float64{}
	for i, name := range []string{"fromLat", "fromLon", "toLat", "toLon"} {
		v, err := queryFloat(r, name)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
			return
		}
		coords[i] = v
	}

	dist, err := s.geo.Distance(coords[0], coords[1], coords[2], coords[3])
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, distanceDTO{
		Meters:     dist.Meters(),
		Kilometers: dist.Kilometers(),
		Miles:      dist.Miles(),
	})
}

func (s *Server) handleForwardGeocode(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "address is required")
		return
	}

	result, err := s.geocoder.Forward(r.Context(), address)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleReverseGeocode(w http.ResponseWriter, r *http.Request) {
	lat, err := queryFloat(r, "lat")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	lon, err := queryFloat(r, "lon")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	point, err := domgeo.NewPoint(lat, lon)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	result, err := s.geocoder.Reverse(r.Context(), point)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	case errors.Is(err, domain.ErrProviderUnavailable):
		writeError(w, http.StatusBadGateway, codeProviderUnavailable, "geocoding providers unavailable")
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func paramsFromRequest(req *SearchRequest) (searchdom.Params, error) {
	p := searchdom.Params{
		Keyword:   req.Keyword,
		Category:  domain.Category(req.Category),
		MinPrice:  req.MinPrice,
		MaxPrice:  req.MaxPrice,
		SortBy:    searchdom.Sort(req.Sort),
		Direction: searchdom.Direction(req.Direction),
		Limit:     req.Limit,
		Offset:    req.Offset,
	}

	if req.Latitude != nil || req.Longitude != nil || req.RadiusMeters != nil {
		if req.Latitude == nil || req.Longitude == nil || req.RadiusMeters == nil {
			return searchdom.Params{}, domain.NewValidationError(
				"center", "latitude, longitude and radiusMeters must be provided together")
		}
		p.Center = &domgeo.Point{Latitude: *req.Latitude, Longitude: *req.Longitude}
		p.RadiusMeters = *req.RadiusMeters
	}
	if req.Bounds != nil {
		p.Bounds = &domgeo.Bounds{
			SouthWest: domgeo.Point{Latitude: req.Bounds.SWLatitude, Longitude: req.Bounds.SWLongitude},
			NorthEast: domgeo.Point{Latitude: req.Bounds.NELatitude, Longitude: req.Bounds.NELongitude},
		}
	}
	return p, nil
}

func pageToDTO(page *searchdom.Page) pageDTO {
	out := pageDTO{
		Items:  make([]searchItemDTO, 0, len(page.Items)),
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	for i := range page.Items {
		item := &page.Items[i]
		out.Items = append(out.Items, searchItemDTO{
			Product: productDTO{
				ID:          item.Product.ID,
				BusinessID:  item.Product.BusinessID,
				Name:        item.Product.Name,
				Description: item.Product.Description,
				Price:       item.Product.Price,
				Quantity:    item.Product.Quantity,
				InStock:     item.Product.InStock(),
				Category:    string(item.Product.Category),
				CreatedAt:   item.Product.CreatedAt.Unix(),
			},
			Owner: ownerDTO{
				ID:       item.Owner.ID,
				Name:     item.Owner.Name,
				Verified: item.Owner.Verified,
				Rating:   item.Owner.Rating,
			},
			DistanceMeters: item.DistanceMeters,
		})
	}
	return out
}

func businessToDTO(b *domain.Business) businessDTO {
	dto := businessDTO{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Kind:        string(b.Kind),
		Verified:    b.Verified,
		Rating:      b.Rating,
		CreatedAt:   b.CreatedAt.Unix(),
	}
	if b.Location != nil {
		lat, lon := b.Location.Latitude, b.Location.Longitude
		dto.Latitude = &lat
		dto.Longitude = &lon
	}
	return dto
}

func queryFloat(r *http.Request, name string) (float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, errors.New(name + " is required")
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.New(name + " must be a number")
	}
	return f, nil
}

func queryPaging(r *http.Request) (limit, offset int, err error) {
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, errors.New("limit must be an integer")
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		offset, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, errors.New("offset must be an integer")
		}
	}
	return limit, offset, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
