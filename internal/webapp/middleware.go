package webapp

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vladimiradmaev/diabetes-webapp/internal/api"
	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
	"github.com/vladimiradmaev/diabetes-webapp/internal/identity"
	"github.com/vladimiradmaev/diabetes-webapp/internal/logger"
	"github.com/vladimiradmaev/diabetes-webapp/internal/metrics"
	"github.com/vladimiradmaev/diabetes-webapp/internal/services"
)

const userKey = "webapp.user"

// requestID reuses the caller's X-Request-ID or assigns a new one, and tags
// the request logger with it.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(api.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(api.HeaderRequestID, id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithContext(c.Request.Context()).Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.ActiveRequests.Inc()
		defer metrics.ActiveRequests.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// requireIdentity validates the init data header and puts the identity on
// the request context.
func requireIdentity(resolver *identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := resolver.Resolve(c.GetHeader(identity.HeaderInitData))
		if err != nil {
			abortWithError(c, err)
			return
		}
		ctx := identity.NewContext(c.Request.Context(), id)
		ctx = logger.IntoContext(ctx, logger.WithContext(ctx).With("telegram_id", id.TelegramID))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// loadUser resolves the current user once per request.
func loadUser(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.Current(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *domain.User {
	return c.MustGet(userKey).(*domain.User)
}
