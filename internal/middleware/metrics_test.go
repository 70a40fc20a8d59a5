package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/stores/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpRequestTotal.WithLabelValues(http.MethodGet, "/stores/:id", "200"))
	doGet(r, "/stores/1", "")
	doGet(r, "/stores/2", "")
	after := testutil.ToFloat64(httpRequestTotal.WithLabelValues(http.MethodGet, "/stores/:id", "200"))
	assert.Equal(t, before+2, after, "按路由模板聚合")

	unmatched := testutil.ToFloat64(httpRequestTotal.WithLabelValues(http.MethodGet, unmatchedPath, "404"))
	doGet(r, "/nope", "")
	assert.Equal(t, unmatched+1, testutil.ToFloat64(httpRequestTotal.WithLabelValues(http.MethodGet, unmatchedPath, "404")))
}
