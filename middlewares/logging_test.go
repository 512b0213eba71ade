package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger_LevelFollowsStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, hook := test.NewNullLogger()

	s := gin.New()
	s.Use(RequestLogger(log))
	s.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	s.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	s.GET("/broken", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	want := map[string]logrus.Level{
		"/ok":      logrus.InfoLevel,
		"/missing": logrus.WarnLevel,
		"/broken":  logrus.ErrorLevel,
	}
	for path, level := range want {
		hook.Reset()
		s.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
		entry := hook.LastEntry()
		require.NotNil(t, entry, path)
		assert.Equal(t, level, entry.Level, path)
		assert.Equal(t, path, entry.Data["path"])
	}
}

func TestRecovery_Returns500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, hook := test.NewNullLogger()

	s := gin.New()
	s.Use(Recovery(log))
	s.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "kaboom", hook.LastEntry().Data["panic"])
}
