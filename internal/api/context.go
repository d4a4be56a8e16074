package api

import (
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/types"
)

// currentUser returns the authenticated user id
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, false
	}
	return id, true
}

// viewer returns the requester's id, or nil for anonymous requests
func viewer(c *gin.Context) *uuid.UUID {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return nil
	}
	id, ok := userID.(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return uuid.Nil, false
	}
	return id, true
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return uint(id), true
}

// flagQuery reads boolean filters given as 1/0 or true/false
func flagQuery(c *gin.Context, name string) bool {
	switch strings.ToLower(c.Query(name)) {
	case "1", "true":
		return true
	}
	return false
}

// intQuery returns the positive integer query value or def
func intQuery(c *gin.Context, name string, def int) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil || n < 0 {
		return def
	}
	return n
}

// Paginator reads page/limit query parameters and builds page envelopes
type Paginator struct {
	DefaultLimit int
	MaxLimit     int
}

func (p Paginator) Parse(c *gin.Context) types.Pagination {
	page := intQuery(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := intQuery(c, "limit", p.DefaultLimit)
	if limit < 1 {
		limit = p.DefaultLimit
	}
	if p.MaxLimit > 0 && limit > p.MaxLimit {
		limit = p.MaxLimit
	}
	if limit > 0 && page > math.MaxInt32/limit {
		page = math.MaxInt32 / limit
	}
	return types.Pagination{Page: page, Limit: limit}
}

// NewPage wraps results with count and neighbour page links
func NewPage[T any](c *gin.Context, page types.Pagination, count int64, results []T) types.Page[T] {
	if results == nil {
		results = []T{}
	}
	out := types.Page[T]{Count: count, Results: results}
	if int64(page.Page*page.Limit) < count {
		next := pageURL(c, page.Page+1)
		out.Next = &next
	}
	if page.Page > 1 {
		prev := pageURL(c, page.Page-1)
		out.Previous = &prev
	}
	return out
}

func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	q := c.Request.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}

	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path, RawQuery: q.Encode()}
	return u.String()
}
