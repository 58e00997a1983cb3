package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/uep-attendance-analytics/internal/models"
	"github.com/noah-isme/uep-attendance-analytics/internal/service"
	appErrors "github.com/noah-isme/uep-attendance-analytics/pkg/errors"
)

type stubValidator struct {
	claims *models.JWTClaims
	token  string
}

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != s.token {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return s.claims, nil
}

func newRouter(role models.UserRole, allowed ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	v := stubValidator{token: "good", claims: &models.JWTClaims{UserID: "u-1", Role: role}}
	r.GET("/protected", JWT(v), RequireRoles(allowed...), func(c *gin.Context) {
		value, _ := c.Get(ContextUserKey)
		c.JSON(http.StatusOK, gin.H{"user": value.(*models.JWTClaims).UserID})
	})
	return r
}

func doRequest(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJWTRejectsMissingAndMalformedHeaders(t *testing.T) {
	r := newRouter(models.RoleAdmin, models.RoleAdmin)

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "Token good").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "Bearer bad").Code)
}

func TestJWTAndRolesAllowMatchingRole(t *testing.T) {
	r := newRouter(models.RoleOrganizer, models.RoleOrganizer, models.RoleAdmin)

	rec := doRequest(r, "bearer good")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "u-1", body["user"])
}

func TestRequireRolesForbidsOtherRoles(t *testing.T) {
	r := newRouter(models.RoleStudent, models.RoleAdmin)

	rec := doRequest(r, "Bearer good")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "").Code)
}

func TestResponseMetaRecordsCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var captured map[string]interface{}
	r.GET("/protected", func(c *gin.Context) {
		c.Set("request_id", "req-1")
		c.Next()
	}, WithResponseMeta(), func(c *gin.Context) {
		SetCacheHit(c, true)
		captured = ResponseMeta(c)
		c.Status(http.StatusOK)
	})

	doRequest(r, "")
	require.NotNil(t, captured)
	assert.Equal(t, true, captured["cache_hit"])
	assert.Equal(t, "req-1", captured["request_id"])
	assert.Contains(t, captured, "processing_time_ms")
}

func TestResponseMetaWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	SetCacheHit(c, false)
	meta := ResponseMeta(c)
	assert.Equal(t, false, meta["cache_hit"])
	assert.NotContains(t, meta, "processing_time_ms")
}

func TestMetricsMiddlewareObservesRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/protected", func(c *gin.Context) {
		time.Sleep(time.Millisecond)
		c.Status(http.StatusTeapot)
	})

	doRequest(r, "")
	doRequest(r, "")
	assert.Equal(t, uint64(2), metrics.Snapshot().RequestsTotal)
}

type routeRecorder struct{ routes []string }

func (r *routeRecorder) ObserveHTTPRequest(_, route string, _ int, _ time.Duration) {
	r.routes = append(r.routes, route)
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := &routeRecorder{}
	r := gin.New()
	r.Use(Metrics(rec))
	r.GET("/events/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/events/e-1", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, []string{"/events/:id", "unmatched"}, rec.routes)
}

func TestAuditLogsSuccessfulRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.GET("/protected", func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: "u-9", Role: models.RoleAdmin})
		c.Next()
	}, Audit(zap.New(core), "export_events"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/failing", Audit(zap.New(core), "export_events"), func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
	})

	doRequest(r, "")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/failing", nil))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "export_events", fields["action"])
	assert.Equal(t, "u-9", fields["user_id"])
}
