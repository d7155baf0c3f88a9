package server

import (
	"net/http"
	"time"

	"github.com/fragrancepalette/backend/internal/cache"
	"github.com/fragrancepalette/backend/internal/conf"
	"github.com/fragrancepalette/backend/internal/db"
	"github.com/fragrancepalette/backend/internal/queue"
	"github.com/fragrancepalette/backend/internal/task"
	"github.com/fragrancepalette/backend/server/common"
	"github.com/fragrancepalette/backend/server/handles"
	"github.com/fragrancepalette/backend/server/middlewares"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Deps carries the process-scoped resources into the HTTP layer; nothing is
// reached through package globals.
type Deps struct {
	Config    *conf.Config
	DB        *db.DB
	Cache     *cache.Client
	Tasks     *task.Store
	Publisher queue.Publisher
	Broker    *queue.Broker
}

// maxBodyBytes caps request bodies; the only payloads are short credential
// and description objects.
const maxBodyBytes = 1 << 20

const (
	rateLimitMax    = 100
	rateLimitWindow = 15 * time.Minute
)

func Init(e *gin.Engine, deps Deps) {
	e.Use(requestLogger())
	e.Use(secure.New(secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "no-referrer",
	}))
	e.Use(middlewares.RateLimit(rateLimitMax, rateLimitWindow))
	e.Use(limitBody(maxBodyBytes))
	e.Use(cors.New(cors.Config{
		AllowOrigins:     []string{deps.Config.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	publisher := deps.Publisher
	if publisher == nil {
		publisher = queue.Unavailable
	}
	var queueHealth interface{ Available() bool }
	if deps.Broker != nil {
		queueHealth = deps.Broker
	}

	authHandler := handles.NewAuthHandler(deps.DB, deps.Config.JWTSecret)
	formulaHandler := handles.NewFormulaHandler(deps.DB, deps.Cache, deps.Tasks, publisher)
	healthHandler := handles.NewHealthHandler(deps.DB, deps.Cache, queueHealth)

	api := e.Group("/api")
	api.GET("/health", healthHandler.Health)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	formulas := api.Group("/formulas", middlewares.Auth(deps.Config.JWTSecret, deps.DB))
	formulas.POST("/generate", formulaHandler.Generate)
	formulas.GET("/status/:taskId", formulaHandler.Status)
	formulas.GET("", formulaHandler.List)

	e.NoRoute(func(c *gin.Context) {
		common.ErrorStrResp(c, "Route not found", 404)
	})
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start),
		}).Debug("request")
	}
}
