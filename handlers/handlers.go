package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"verdix/carbon"
	"verdix/image"
	"verdix/llm"
	"verdix/middleware"
	"verdix/osm"
	"verdix/service"
	"verdix/version"
)

const serviceName = "verdix"

// Handlers represents the HTTP handlers
type Handlers struct {
	svc             *service.Service
	recycling       osm.Finder
	defaultRadiusKm float64
	maxBodyBytes    int64
}

// NewHandlers creates new HTTP handlers. maxImageBytes bounds the decoded
// image; the request body may be a third larger for base64.
func NewHandlers(svc *service.Service, recycling osm.Finder, defaultRadiusKm float64, maxImageBytes int) *Handlers {
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = 5
	}
	if maxImageBytes <= 0 {
		maxImageBytes = 10 << 20
	}
	return &Handlers{
		svc:             svc,
		recycling:       recycling,
		defaultRadiusKm: defaultRadiusKm,
		maxBodyBytes:    int64(maxImageBytes)*4/3 + 4096,
	}
}

func (h *Handlers) respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{
		"success":   false,
		"error":     msg,
		"timestamp": h.svc.Timestamp(),
	})
}

// bindJSON decodes a size-limited body. It reports false after writing the
// error response.
func (h *Handlers) bindJSON(c *gin.Context, dst interface{}, allowEmpty bool) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	err := c.ShouldBindJSON(dst)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.respondError(c, http.StatusRequestEntityTooLarge, "Image too large")
		return false
	}
	h.respondError(c, http.StatusBadRequest, "Invalid request body")
	return false
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   serviceName,
		"version":   version.Get(serviceName).Short(),
		"timestamp": h.svc.Timestamp(),
	})
}

func (h *Handlers) Version(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get(serviceName))
}

type AnalyzeRequest struct {
	Image string `json:"image"`
}

// Analyze runs a base64 product photo through the model and parser
func (h *Handlers) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if !h.bindJSON(c, &req, true) {
		return
	}

	result, err := h.svc.Analyze(c.Request.Context(), middleware.UserID(c), req.Image)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, image.ErrNoImage):
		h.respondError(c, http.StatusBadRequest, "No image provided")
	case errors.Is(err, image.ErrInvalidDataURL):
		h.respondError(c, http.StatusBadRequest, "Invalid image format. Expected base64 data URL")
	case errors.Is(err, image.ErrTooManyPixels):
		h.respondError(c, http.StatusRequestEntityTooLarge, "Image dimensions too large")
	case errors.Is(err, llm.ErrEmptyResponse):
		h.respondError(c, http.StatusBadGateway, "The model returned no analysis")
	case errors.Is(err, context.DeadlineExceeded):
		h.respondError(c, http.StatusBadGateway, "The model did not answer in time")
	case errors.Is(err, service.ErrAnalysisFailed):
		// upstream errors may carry request URLs, keep them in the log
		h.respondError(c, http.StatusBadGateway, "Failed to analyze image")
	default:
		log.WithError(err).Error("Analyze failed")
		h.respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

type ParseRequest struct {
	Analysis string `json:"analysis"`
}

// Parse runs caller-supplied analysis text through the report parser
func (h *Handlers) Parse(c *gin.Context) {
	var req ParseRequest
	if !h.bindJSON(c, &req, true) {
		return
	}
	if req.Analysis == "" {
		h.respondError(c, http.StatusBadRequest, "No analysis provided")
		return
	}
	report := h.svc.ParseText(req.Analysis)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"report":    report,
		"timestamp": h.svc.Timestamp(),
	})
}

func (h *Handlers) GetHistory(c *gin.Context) {
	scans, err := h.svc.History(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		log.WithError(err).Error("Failed to load history")
		h.respondError(c, http.StatusInternalServerError, "Failed to load history")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"scans":     scans,
		"count":     len(scans),
		"timestamp": h.svc.Timestamp(),
	})
}

func (h *Handlers) ClearHistory(c *gin.Context) {
	n, err := h.svc.ClearHistory(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		log.WithError(err).Error("Failed to clear history")
		h.respondError(c, http.StatusInternalServerError, "Failed to clear history")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"deleted":   n,
		"timestamp": h.svc.Timestamp(),
	})
}

func (h *Handlers) GetProfile(c *gin.Context) {
	p, err := h.svc.Profile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		log.WithError(err).Error("Failed to build profile")
		h.respondError(c, http.StatusInternalServerError, "Failed to load profile")
		return
	}
	c.JSON(http.StatusOK, p)
}

// GetRecyclingCenters lists recycling points around lat/lon, as JSON or
// GeoJSON when format=geojson
func (h *Handlers) GetRecyclingCenters(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	if errLat != nil || errLon != nil {
		h.respondError(c, http.StatusBadRequest, "lat and lon query parameters are required")
		return
	}
	radius := h.defaultRadiusKm
	if s := c.Query("radius_km"); s != "" {
		r, err := strconv.ParseFloat(s, 64)
		if err != nil {
			h.respondError(c, http.StatusBadRequest, "radius_km must be a number")
			return
		}
		radius = r
	}

	centers, err := h.recycling.FindRecyclingCenters(c.Request.Context(), lat, lon, radius)
	switch {
	case errors.Is(err, osm.ErrInvalidRadius), errors.Is(err, osm.ErrInvalidCoordinates):
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.WithError(err).Warn("Recycling center lookup failed")
		h.respondError(c, http.StatusBadGateway, "Failed to fetch recycling centers")
		return
	}

	if c.Query("format") == "geojson" {
		c.Header("Content-Type", "application/geo+json")
		c.JSON(http.StatusOK, osm.FeatureCollection(centers))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"centers":   centers,
		"count":     len(centers),
		"radius_km": radius,
		"timestamp": h.svc.Timestamp(),
	})
}

type CarbonRequest struct {
	Product *carbon.Product `json:"product,omitempty"`
	carbon.Inputs
}

// CalculateCarbon projects a product's footprint over a group and a timeframe
func (h *Handlers) CalculateCarbon(c *gin.Context) {
	var req CarbonRequest
	if !h.bindJSON(c, &req, true) {
		return
	}
	var product carbon.Product
	if req.Product != nil {
		product = *req.Product
	}

	impact, err := carbon.Calculate(product, req.Inputs)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"impact":    impact,
		"timestamp": h.svc.Timestamp(),
	})
}
