// Package webapp serves the JSON backend of the Telegram mini-app.
package webapp

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vladimiradmaev/diabetes-webapp/internal/identity"
	"github.com/vladimiradmaev/diabetes-webapp/internal/logger"
	"github.com/vladimiradmaev/diabetes-webapp/internal/presentation"
	"github.com/vladimiradmaev/diabetes-webapp/internal/services"
)

// APIPrefix is the mount point of the mini-app API.
const APIPrefix = "/webapp/api"

// Deps is everything the router needs.
type Deps struct {
	Resolver  *identity.Resolver
	Users     *services.UserService
	Glucose   *services.GlucoseService
	Food      *services.FoodService
	Dashboard *services.DashboardService
	Insights  *services.InsightService
	Mapper    *presentation.Mapper
	Gatherer  prometheus.Gatherer
	// StaticDir, when set, is served under /webapp.
	StaticDir string
}

// NewRouter builds the gin engine.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(), instrument())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	h := &handler{
		users:     d.Users,
		glucose:   d.Glucose,
		food:      d.Food,
		dashboard: d.Dashboard,
		insights:  d.Insights,
		mapper:    d.Mapper,
	}

	apiGroup := r.Group(APIPrefix)
	apiGroup.Use(requireIdentity(d.Resolver), loadUser(d.Users))
	{
		apiGroup.GET("/me", h.getMe)
		apiGroup.PUT("/me/settings", h.updateSettings)
		apiGroup.PUT("/me/diabetes-info", h.updateDiabetesInfo)
		apiGroup.DELETE("/me/data", h.deleteData)

		apiGroup.GET("/dashboard", h.getDashboard)

		apiGroup.GET("/glucose", h.getGlucose)
		apiGroup.GET("/glucose/chart", h.getGlucoseChart)
		apiGroup.GET("/glucose/mini", h.getGlucoseMini)
		apiGroup.POST("/glucose", h.createGlucose)
		apiGroup.PUT("/glucose/:id", h.updateGlucose)
		apiGroup.DELETE("/glucose/:id", h.deleteGlucose)

		apiGroup.GET("/food", h.getFood)
		apiGroup.POST("/food", h.createFood)
		apiGroup.PUT("/food/:id", h.updateFood)
		apiGroup.DELETE("/food/:id", h.deleteFood)

		apiGroup.GET("/insight", h.getInsight)
	}

	if d.StaticDir != "" {
		files := http.StripPrefix("/webapp", http.FileServer(http.Dir(d.StaticDir)))
		r.NoRoute(func(c *gin.Context) {
			path := c.Request.URL.Path
			if path == "/webapp" {
				c.Redirect(http.StatusMovedPermanently, "/webapp/")
				return
			}
			if c.Request.Method == http.MethodGet && strings.HasPrefix(path, "/webapp/") && !strings.HasPrefix(path, APIPrefix+"/") {
				files.ServeHTTP(c.Writer, c.Request)
				return
			}
			c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
		})
	}

	return r
}

// Server runs the router until its context is cancelled.
type Server struct {
	http *http.Server
}

func NewServer(host, port string, handler http.Handler) *Server {
	return &Server{http: &http.Server{
		Addr:              net.JoinHostPort(host, port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Mini-app server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("Shutting down mini-app server")
	return s.http.Shutdown(shutdownCtx)
}
