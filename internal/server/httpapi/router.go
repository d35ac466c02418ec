// Package httpapi is the REST surface of notesum: routing, request binding,
// authentication, CORS, rate limiting and metrics on top of gin.
package httpapi

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/notesum/internal/logging"
	"github.com/dmitrijs2005/notesum/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Deps are the collaborators of the router. Summarizer, Limiter and Metrics
// are optional. With no TrustedProxies the client address is the socket peer
// and forwarding headers are ignored.
type Deps struct {
	Users          UserService
	Summaries      SummaryService
	Summarizer     Summarizer
	Limiter        *RateLimiter
	Metrics        *Metrics
	AllowedOrigins []string
	TrustedProxies []string
	Logger         logging.Logger
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(services.JSONFieldName)
	}
}

// NewRouter wires every route of the API.
func NewRouter(d Deps) (*gin.Engine, error) {
	log := d.Logger
	if log == nil {
		log = logging.Nop()
	}

	h := &handlers{
		users:      d.Users,
		summaries:  d.Summaries,
		summarizer: d.Summarizer,
		log:        log.With("module", "http"),
	}

	r := gin.New()

	var proxies []string
	if len(d.TrustedProxies) > 0 {
		proxies = d.TrustedProxies
	}
	if err := r.SetTrustedProxies(proxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	r.Use(RequestID(), Recovery(h.log), RequestLogger(h.log))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
	}
	r.Use(CORS(d.AllowedOrigins))

	r.GET("/health", h.health)
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	api := r.Group("")
	if d.Limiter != nil {
		api.Use(d.Limiter.Middleware())
	}

	requireAuth := AuthMiddleware(d.Users)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.register)
	authGroup.POST("/login", h.login)
	authGroup.GET("/me", requireAuth, h.me)

	s := api.Group("/summaries")
	s.GET("", OptionalAuth(d.Users), h.listSummaries)
	s.POST("", requireAuth, h.createSummary)
	s.PUT("/:id", requireAuth, h.updateSummary)
	s.DELETE("/:id", requireAuth, h.deleteSummary)
	s.PATCH("/:id/star", h.starSummary)
	s.POST("/:id/share", h.shareSummary)
	s.GET("/:id/export", requireAuth, h.exportSummary)
	s.POST("/:id/archive", requireAuth, h.archiveSummary)

	api.GET("/s/:slug", h.sharedSummary)
	api.POST("/summarize", requireAuth, h.summarize)

	r.NoRoute(func(c *gin.Context) {
		abortWithMessage(c, http.StatusNotFound, msgNotFound)
	})

	return r, nil
}
