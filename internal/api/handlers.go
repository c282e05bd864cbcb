package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-karriere-scraper/internal/scraper"
)

// Crawler runs one crawl per request.
type Crawler interface {
	Crawl(ctx context.Context, q scraper.Query) (*scraper.Result, error)
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

type searchParams struct {
	Field     string `form:"field" binding:"required"`
	Region    string `form:"region" binding:"required"`
	PageLimit *int   `form:"page_limit" binding:"omitempty,min=1,max=50"`
	MaxJobs   *int   `form:"max_jobs" binding:"omitempty,min=1,max=2000"`
}

type Handler struct {
	crawler          Crawler
	pageLimitDefault int
	log              *zap.Logger
}

func NewHandler(crawler Crawler, pageLimitDefault int, log *zap.Logger) *Handler {
	if pageLimitDefault < 1 {
		pageLimitDefault = 3
	}
	return &Handler{crawler: crawler, pageLimitDefault: pageLimitDefault, log: log}
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Karriere.at Scraper API is running!",
		"status":  "healthy",
	})
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Search handles GET /karriere/search.
func (h *Handler) Search(c *gin.Context) {
	var params searchParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Detail: err.Error()})
		return
	}

	q := scraper.Query{
		Field:     params.Field,
		Region:    params.Region,
		PageLimit: h.pageLimitDefault,
	}
	if params.PageLimit != nil {
		q.PageLimit = *params.PageLimit
	}
	if params.MaxJobs != nil {
		q.MaxJobs = *params.MaxJobs
	}

	result, err := h.crawler.Crawl(c.Request.Context(), q)
	if err != nil {
		h.log.Error("❌ Crawl failed", zap.String("field", q.Field), zap.String("region", q.Region), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

const rawPrefix = "/url="

// RawOnly lets GET /url=<raw> through and answers 404 for anything else.
// The route cannot be registered directly because nothing separates the
// parameter from the literal prefix.
func RawOnly(c *gin.Context) {
	if c.Request.Method != http.MethodGet || !strings.HasPrefix(c.Request.URL.EscapedPath(), rawPrefix) {
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Detail: "Not Found"})
		return
	}
	c.Next()
}

// Raw echoes the decoded value of GET /url=<raw>.
func (h *Handler) Raw(c *gin.Context) {
	raw := strings.TrimPrefix(c.Request.URL.EscapedPath(), rawPrefix)
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		decoded = raw
	}
	c.JSON(http.StatusOK, gin.H{
		"hint": "Prefer /karriere/search with query params.",
		"raw":  decoded,
	})
}
