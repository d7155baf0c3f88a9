package handles

import (
	"time"

	"github.com/fragrancepalette/backend/internal/cache"
	"github.com/fragrancepalette/backend/internal/db"
	"github.com/gin-gonic/gin"
)

// availability reports whether an optional capability can serve requests.
type availability interface {
	Available() bool
}

type HealthHandler struct {
	db    *db.DB
	cache *cache.Client
	queue availability
}

func NewHealthHandler(database *db.DB, c *cache.Client, q availability) *HealthHandler {
	return &HealthHandler{db: database, cache: c, queue: q}
}

type healthResp struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Error     string            `json:"error,omitempty"`
}

// Health reports per-service availability. Only a dead database makes the
// whole service unhealthy; cache and queue degrade gracefully.
func (h *HealthHandler) Health(c *gin.Context) {
	resp := healthResp{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  map[string]string{"database": "connected", "redis": "connected", "queue": "connected"},
	}
	code := 200
	if err := h.db.Ping(); err != nil {
		resp.Status = "unhealthy"
		resp.Error = err.Error()
		resp.Services["database"] = "disconnected"
		code = 503
	}
	if !h.cache.Ping(c.Request.Context()) {
		resp.Services["redis"] = "disconnected"
	}
	if h.queue == nil || !h.queue.Available() {
		resp.Services["queue"] = "disconnected"
	}
	c.JSON(code, resp)
}
