package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cvmatch-backend/internal/account"
	"cvmatch-backend/internal/analyses"
	googleauth "cvmatch-backend/internal/auth"
	"cvmatch-backend/internal/documents"
	"cvmatch-backend/internal/shared/config"
	"cvmatch-backend/internal/shared/metrics"
	"cvmatch-backend/internal/shared/server/middleware"
	"cvmatch-backend/internal/shared/server/respond"
	"cvmatch-backend/internal/usage"
	"cvmatch-backend/internal/users"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config          config.Config
	AnalysisHandler *analyses.Handler
	DocumentHandler *documents.Handler
	UsageHandler    *usage.Handler
	UserHandler     *users.Handler
	AccountHandler  *account.Handler
	AdminHandler    *account.AdminHandler
	GoogleAuth      *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"ANALYZE": {Rate: 1, Burst: 30},
			},
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == http.MethodPost &&
					(strings.HasPrefix(c.Request.URL.Path, "/api/v1/analyses") ||
						strings.HasPrefix(c.Request.URL.Path, "/api/v1/rewrites")) {
					return "ANALYZE"
				}
				return ""
			},
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(api)
	}
	if deps.UsageHandler != nil {
		deps.UsageHandler.RegisterRoutes(api)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(api)
	}
	if deps.AdminHandler != nil {
		admin := api.Group("")
		admin.Use(middleware.AdminToken(deps.Config.AdminToken))
		deps.AdminHandler.RegisterRoutes(admin)
	}
	if deps.Config.Env == "dev" && deps.UsageHandler != nil {
		dev := api.Group("/dev")
		deps.UsageHandler.RegisterDevRoutes(dev)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
