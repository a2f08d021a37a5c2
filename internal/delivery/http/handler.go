package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/retailmatch/backend/internal/domain"
	"github.com/retailmatch/backend/internal/infrastructure/export"
)

// BrandMatcher is the use case surface the handlers depend on
type BrandMatcher interface {
	DefaultCatalog() *domain.Catalog
	UploadCatalog(ctx context.Context, r io.Reader, source string) (*domain.Catalog, error)
	MatchURL(ctx context.Context, request *domain.MatchRequest) (*domain.MatchReport, error)
}

// HandlerConfig holds request limits for the HTTP handlers
type HandlerConfig struct {
	MaxUploadBytes int64
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	matcher BrandMatcher
	config  HandlerConfig
}

// NewHandler creates a new HTTP handler. A nil matcher makes the catalog and
// match endpoints answer 503.
func NewHandler(matcher BrandMatcher, config HandlerConfig) *Handler {
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = 10 << 20
	}
	return &Handler{matcher: matcher, config: config}
}

// MatchResponse is the JSON body returned by the match endpoint
type MatchResponse struct {
	Report  *domain.MatchReport `json:"report"`
	Table   export.Table        `json:"table"`
	Message string              `json:"message"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "retailmatch-backend",
		"version": "1.0.0",
	})
}

// CatalogStatus reports whether the preloaded catalog is available
func (h *Handler) CatalogStatus(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	catalog := h.matcher.DefaultCatalog()
	if catalog == nil {
		c.JSON(http.StatusOK, gin.H{"loaded": false, "brands": 0})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"loaded":   true,
		"brands":   catalog.Len(),
		"source":   catalog.Source,
		"loadedAt": catalog.LoadedAt,
	})
}

// UploadCatalog accepts a CSV brand list in the multipart field "file"
func (h *Handler) UploadCatalog(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.config.MaxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.Is(err, http.ErrMissingFile):
			c.JSON(http.StatusBadRequest, gin.H{"error": "catalog csv file is required"})
			return
		case errors.As(err, &maxBytesErr):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "catalog file too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to read uploaded file"})
		return
	}
	defer f.Close()

	catalog, err := h.matcher.UploadCatalog(c.Request.Context(), f, fileHeader.Filename)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"catalogId": catalog.ID,
		"brands":    catalog.Len(),
		"source":    catalog.Source,
	})
}

// MatchBrands fetches the retailer page and returns the matching brands
func (h *Handler) MatchBrands(c *gin.Context) {
	report, ok := h.match(c)
	if !ok {
		return
	}

	message := "No matching brands found"
	if report.HasMatches() {
		message = fmt.Sprintf("Found %d matching brands", len(report.Matches))
	}

	c.JSON(http.StatusOK, MatchResponse{
		Report:  report,
		Table:   export.NewTable(report.Matches),
		Message: message,
	})
}

// ExportMatches runs the same match and returns the result as a CSV download
func (h *Handler) ExportMatches(c *gin.Context) {
	report, ok := h.match(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, report.Matches); err != nil {
		log.Error().Err(err).Msg("csv export failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to build export"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", export.FileName))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) match(c *gin.Context) (*domain.MatchReport, bool) {
	if !h.ready(c) {
		return nil, false
	}

	var req domain.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: url is required"})
		return nil, false
	}

	report, err := h.matcher.MatchURL(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return nil, false
	}
	return report, true
}

func (h *Handler) ready(c *gin.Context) bool {
	if h.matcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Brand matching is not configured"})
		return false
	}
	return true
}

// handleError maps domain errors to HTTP status codes
func (h *Handler) handleError(c *gin.Context, err error) {
	var fetchErr *domain.FetchError

	switch {
	case errors.As(err, &fetchErr):
		body := gin.H{"error": "Unable to fetch retailer page", "detail": fetchErr.Error()}
		if fetchErr.Status != 0 {
			body["status"] = fetchErr.Status
		}
		c.JSON(http.StatusBadGateway, body)
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCatalogSchema):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCatalogNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCatalogSourceMissing):
		c.JSON(http.StatusNotFound, gin.H{"error": "No brand catalog available: upload one first"})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
