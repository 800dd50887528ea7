package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/services"
	"github.com/yukikurage/project-management-api/internal/testutil"
)

func TestBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc123", "abc123", true},
		{"bearer abc123", "abc123", true},
		{"Basic abc123", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.Header.Set("Authorization", tc.header)

		token, ok := BearerToken(c)
		assert.Equal(t, tc.ok, ok, tc.header)
		assert.Equal(t, tc.token, token, tc.header)
	}
}

func TestRequireAuthAndAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := repository.NewStore(testutil.NewDB(t))
	auth := services.NewAuthService(store, "test-secret", time.Hour)
	access := services.NewAccessControl(store.Projects)

	admin, err := auth.Register(services.RegisterInput{Username: "admin@example.com", Password: "supersecret"})
	require.NoError(t, err)
	user, err := auth.Register(services.RegisterInput{Username: "user@example.com", Password: "supersecret"})
	require.NoError(t, err)

	adminToken, err := auth.IssueToken(admin)
	require.NoError(t, err)
	userToken, err := auth.IssueToken(user)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/admin", RequireAuth(auth), RequireAdmin(access), func(c *gin.Context) {
		id, _ := GetUserID(c)
		c.String(http.StatusOK, id)
	})

	call := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := call(adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, admin.ID, w.Body.String())

	assert.Equal(t, http.StatusForbidden, call(userToken).Code)
	assert.Equal(t, http.StatusUnauthorized, call("").Code)
	assert.Equal(t, http.StatusUnauthorized, call("not-a-token").Code)
}

func TestRequestLoggerFields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	r := gin.New()
	r.Use(RequestLogger(logger))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing?x=1", nil))

	out := buf.String()
	assert.Contains(t, out, `"status":404`)
	assert.Contains(t, out, `"path":"/missing"`)
	assert.Contains(t, out, `"level":"warning"`)
}
