package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Brownie44l1/leafdoc/internal/logger"
	"github.com/Brownie44l1/leafdoc/internal/metrics"
)

const requestIDHeader = "X-Request-ID"

type RouterOptions struct {
	CORS    bool
	Metrics *metrics.Metrics
	Log     logger.Logger
}

// NewRouter wires every endpoint onto a gin engine.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestContext(opts.Log))
	if opts.CORS {
		r.Use(cors())
	}
	r.SetHTMLTemplate(loadTemplates())

	r.GET("/health", h.Health)
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	r.GET("/", h.Index)
	r.POST("/analyze", h.Analyze)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/predict", h.Predict)
		v1.POST("/predict/image", h.PredictFromImage)
		v1.GET("/catalog/:id", h.CatalogEntry)
	}

	return r
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Accept-Language")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// requestContext tags each request with an ID and writes an access log line.
func requestContext(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx := logger.WithRequestID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)
		c.Header(requestIDHeader, id)

		start := time.Now()
		c.Next()

		log.Infof(ctx, "%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}
