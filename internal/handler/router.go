package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// BuildInfo is reported by /health and /version
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// NewRouter wires the REST relay routes
func NewRouter(log *slog.Logger, allowedOrigins []string, build BuildInfo, flats *FlatHandler, inquiries *InquiryHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log))

	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", TraceHeader}
	corsConfig.ExposeHeaders = []string{TraceHeader, HasMoreHeader}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"service":    "residence-relay",
			"version":    build.Version,
			"build_time": build.BuildTime,
			"git_commit": build.GitCommit,
		})
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    build.Version,
			"build_time": build.BuildTime,
			"git_commit": build.GitCommit,
		})
	})

	api := router.Group("/api")
	{
		api.GET("/flats", flats.ListFlats)
		api.GET("/flats/:id", flats.GetFlat)
		api.GET("/testimonials", flats.Testimonials)
		api.GET("/apartment", flats.ApartmentDetails)

		api.POST("/inquiries", inquiries.Create)
	}

	return router
}
