package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SVatsa12/teamforge/internal/aggregator"
	"github.com/SVatsa12/teamforge/internal/allocator"
	"github.com/SVatsa12/teamforge/internal/config"
	"github.com/SVatsa12/teamforge/internal/domain"
	"github.com/SVatsa12/teamforge/internal/logger"
	"github.com/SVatsa12/teamforge/internal/repository"
	"github.com/SVatsa12/teamforge/internal/sources"
)

// debugPreviewBytes caps the body preview returned by the debug endpoint.
const debugPreviewBytes = 2000

// AllocatorService is the allocator surface the API depends on.
type AllocatorService interface {
	Allocate(ctx context.Context, req allocator.Request) (*domain.AllocationResult, error)
	Unassign(ctx context.Context, id string) (*domain.Assignment, error)
	ListAssignments(ctx context.Context) ([]domain.Assignment, error)
}

// AggregatorService is the aggregator surface the API depends on.
type AggregatorService interface {
	Events(ctx context.Context, q aggregator.Query) *aggregator.EventsResult
	Sources() []sources.Source
}

// Handler holds the route handlers and their dependencies.
type Handler struct {
	alloc  AllocatorService
	agg    AggregatorService
	client *http.Client
	logger logger.Logger
}

// NewHandler creates the API handler set.
func NewHandler(alloc AllocatorService, agg AggregatorService, cfg *config.Config, log logger.Logger) *Handler {
	return &Handler{
		alloc:  alloc,
		agg:    agg,
		client: &http.Client{Timeout: cfg.Aggregator.Fetch.RequestTimeout},
		logger: log,
	}
}

// ListEvents serves the aggregated event list with query-time filtering.
func (h *Handler) ListEvents(c *gin.Context) {
	q := aggregator.Query{
		Q:            c.Query("q"),
		UpcomingOnly: c.Query("upcoming") == "true",
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		q.Limit = limit
	}

	c.JSON(http.StatusOK, h.agg.Events(c.Request.Context(), q))
}

// ListSources serves the configured source descriptors.
func (h *Handler) ListSources(c *gin.Context) {
	srcs := h.agg.Sources()

	out := make([]gin.H, 0, len(srcs))
	for _, s := range srcs {
		out = append(out, gin.H{
			"id":   s.ID,
			"name": s.Name,
			"type": s.Type,
			"url":  s.URL,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"sources": out,
		"count":   len(out),
	})
}

// Allocate runs a scoring pass and returns the ranked candidates.
func (h *Handler) Allocate(c *gin.Context) {
	var req allocator.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	result, err := h.alloc.Allocate(c.Request.Context(), req)
	if err != nil {
		h.respondAllocError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListAssignments serves all persisted assignments.
func (h *Handler) ListAssignments(c *gin.Context) {
	assignments, err := h.alloc.ListAssignments(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list assignments", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list assignments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assignments": assignments,
		"count":       len(assignments),
	})
}

// Unassign removes an assignment by id.
func (h *Handler) Unassign(c *gin.Context) {
	id := c.Param("id")

	removed, err := h.alloc.Unassign(c.Request.Context(), id)
	if err != nil {
		h.respondAllocError(c, err)
		return
	}

	c.JSON(http.StatusOK, removed)
}

// respondAllocError maps allocator error kinds to HTTP statuses.
func (h *Handler) respondAllocError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, allocator.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Allocation failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Allocation failed"})
	}
}

// DebugFetch is a diagnostic passthrough returning status, headers, and a
// body preview for any URL. Not part of the stable contract.
func (h *Handler) DebugFetch(c *gin.Context) {
	target := c.Query("url")
	if target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url query parameter is required"})
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, target, http.NoBody)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid url", "details": err.Error()})
		return
	}

	resp, err := h.client.Do(req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "fetch failed", "details": err.Error()})
		return
	}
	defer resp.Body.Close()

	preview, err := io.ReadAll(io.LimitReader(resp.Body, debugPreviewBytes))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "read failed", "details": err.Error()})
		return
	}

	headers := make(map[string]string, len(resp.Header))
	for key := range resp.Header {
		headers[key] = resp.Header.Get(key)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       resp.StatusCode,
		"headers":      headers,
		"body_preview": string(preview),
	})
}
