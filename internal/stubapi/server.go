package stubapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"eventhub/pkg/middleware"
)

// Server wires the stub's HTTP surface over a Store.
type Server struct {
	store  *Store
	secret string
	logger *zap.Logger
}

// NewServer creates a stub server signing tokens with secret.
func NewServer(store *Store, secret string, logger *zap.Logger) *Server {
	return &Server{store: store, secret: secret, logger: logger}
}

// NewRouter creates and configures the Gin router.
func (s *Server) NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CorrelationID())
	r.Use(middleware.RequestLogger(s.logger))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Identity provider
	r.POST("/v1/signup", s.signUp)
	r.POST("/v1/signin", s.signIn)
	r.POST("/v1/oauth", s.oauth)
	r.POST("/v1/token", s.refreshToken)

	// Public events surface
	r.GET("/events/search", s.searchEvents)
	r.GET("/events/:id", s.getEventByID)

	authed := r.Group("/", s.authRequired())
	{
		authed.GET("/v1/me", s.getProfile)
		authed.PATCH("/v1/me", s.updateProfile)

		authed.POST("/events", s.createEvent)
		authed.PATCH("/events/:id", s.updateEvent)
		authed.DELETE("/events/:id", s.deleteEvent)
		authed.GET("/events/my-events", s.myEvents)

		authed.POST("/joinedEvents", s.joinEvent)
		authed.GET("/joinedEvents/my-joined", s.myJoinedEvents)
	}

	return r
}
