package middlewares

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"eventhub/models"
	"eventhub/utils"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

var testTokens = utils.NewTokens("middleware-test-secret", time.Hour)

func newAuthServer(roles ...models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler(quietLogger(), false), Authenticate(testTokens))
	if len(roles) > 0 {
		r.Use(Authorize(roles...))
	}
	r.GET("/p", func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUserID(c).String())
	})
	return r
}

func get(r http.Handler, path, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)
	return w
}

func tokenFor(t *testing.T, role models.Role) (uuid.UUID, string) {
	t.Helper()
	id := uuid.New()
	tok, err := testTokens.GenerateToken(utils.Principal{ID: id, Email: "x@y.z", Role: string(role)})
	if err != nil {
		t.Fatalf("gen token: %v", err)
	}
	return id, tok
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return body
}

// no Authorization header -> 401 with the error envelope
func TestAuthenticate_MissingToken_401(t *testing.T) {
	w := get(newAuthServer(), "/p", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", w.Code)
	}
	if body := decodeError(t, w); body.Error != "unauthorized" || body.Message != "No token provided" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestAuthenticate_InvalidToken_401(t *testing.T) {
	w := get(newAuthServer(), "/p", "Bearer this-is-not-a-jwt")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", w.Code)
	}
}

func TestAuthenticate_ExpiredToken_401(t *testing.T) {
	expired := utils.NewTokens("middleware-test-secret", -time.Minute)
	tok, err := expired.GenerateToken(utils.Principal{ID: uuid.New(), Role: "admin"})
	if err != nil {
		t.Fatalf("gen: %v", err)
	}
	w := get(newAuthServer(), "/p", "Bearer "+tok)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", w.Code)
	}
	if body := decodeError(t, w); body.Message != "Token expired" {
		t.Fatalf("want Token expired, got %q", body.Message)
	}
}

// both "Bearer <tok>" and a bare token are accepted and the user id lands in the context
func TestAuthenticate_OK(t *testing.T) {
	id, tok := tokenFor(t, models.RoleStaff)
	for _, header := range []string{"Bearer " + tok, tok} {
		w := get(newAuthServer(), "/p", header)
		if w.Code != http.StatusOK {
			t.Fatalf("want 200, got %d body=%s", w.Code, w.Body.String())
		}
		if w.Body.String() != id.String() {
			t.Fatalf("want user id %s, got %s", id, w.Body.String())
		}
	}
}

func TestAuthorize(t *testing.T) {
	_, staff := tokenFor(t, models.RoleStaff)
	_, admin := tokenFor(t, models.RoleAdmin)

	r := newAuthServer(models.RoleAdmin)
	if w := get(r, "/p", staff); w.Code != http.StatusForbidden {
		t.Fatalf("staff on admin route: want 403, got %d", w.Code)
	}
	if w := get(r, "/p", admin); w.Code != http.StatusOK {
		t.Fatalf("admin on admin route: want 200, got %d", w.Code)
	}
}
