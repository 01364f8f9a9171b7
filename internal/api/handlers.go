package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Atlas-Final-Project/data-crawling/internal/ingest"
	"github.com/Atlas-Final-Project/data-crawling/internal/storage"
)

const maxListLimit = 1000

func (s *Server) handleHealth(c *gin.Context) {
	status := http.StatusOK
	checks := gin.H{}

	if err := s.params.Store.Ping(c.Request.Context()); err != nil {
		status = http.StatusServiceUnavailable
		checks["elasticsearch"] = gin.H{"status": "unhealthy", "error": err.Error()}
	} else {
		checks["elasticsearch"] = gin.H{"status": "healthy"}
	}

	body := gin.H{
		"status":  "healthy",
		"service": "data-crawling",
		"checks":  checks,
	}
	if status != http.StatusOK {
		body["status"] = "unhealthy"
	}
	c.JSON(status, body)
}

func (s *Server) handleListArticles(c *gin.Context) {
	q := storage.Query{
		Source:        c.Query("source"),
		Category:      c.Query("category"),
		IncidentsOnly: c.Query("incidents") == "true",
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > maxListLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer between 1 and 1000"})
			return
		}
		q.Limit = limit
	}

	articles, err := s.params.Store.FindMany(c.Request.Context(), q)
	if err != nil {
		s.log.Error("list articles failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "article lookup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(articles), "articles": articles})
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.params.Store.Stats(c.Request.Context())
	if err != nil {
		s.log.Error("stats lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats lookup failed"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleRateLimits(c *gin.Context) {
	if s.params.Limiter == nil {
		c.JSON(http.StatusOK, gin.H{"sources": gin.H{}})
		return
	}

	out := gin.H{}
	now := time.Now()
	for _, name := range s.params.SourceNames {
		state := s.params.Limiter.Snapshot(name)
		entry := gin.H{
			"delay":    state.Delay.String(),
			"failures": state.Failures,
		}
		if state.CooldownUntil.After(now) {
			entry["cooldown_until"] = state.CooldownUntil
		}
		out[name] = entry
	}
	c.JSON(http.StatusOK, gin.H{"sources": out})
}

func (s *Server) handleTriggerCycle(c *gin.Context) {
	if s.params.Runner == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "cycle trigger not configured"})
		return
	}

	summary, err := s.params.Runner.Run(c.Request.Context())
	switch {
	case errors.Is(err, ingest.ErrCycleInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "a cycle is already running"})
	case err != nil:
		s.log.Error("manual cycle failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, summary)
	}
}
