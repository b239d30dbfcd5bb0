// Package apitest holds helpers shared by the API route tests.
package apitest

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vitastore.GO/api"
	"vitastore.GO/core/cache"
	inventoryRepo "vitastore.GO/model/repository/inventory"
	"vitastore.GO/service/notify"
)

const (
	User = "admin"
	Pass = "secret"
)

// DB opens a migrated sqlite database in a temp dir.
func DB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA busy_timeout=5000")
	if err := inventoryRepo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Recorder is a Dispatcher that keeps every event.
type Recorder struct {
	mu     sync.Mutex
	Events []notify.StockOutEvent
}

func (r *Recorder) Notify(ev notify.StockOutEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, ev)
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Events)
}

// Services wires real services over db with a recording dispatcher and an
// in-memory summary cache.
func Services(t *testing.T, db *gorm.DB) (*api.Services, *Recorder) {
	t.Helper()
	rec := &Recorder{}
	return api.NewServices(db, rec, nil, cache.NewMemoryStore(cache.NewCache()), 0), rec
}

// Server mounts modules under a basic-auth /api group.
func Server(s *api.Services, modules ...api.ModuleFunc) *echo.Echo {
	e := echo.New()
	g := e.Group("/api")
	g.Use(middleware.BasicAuth(func(user, pass string, c echo.Context) (bool, error) {
		return user == User && pass == Pass, nil
	}))
	for _, m := range modules {
		m(g, s)
	}
	return e
}

// Do performs an authenticated JSON request.
func Do(e *echo.Echo, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Basic "+base64.StdEncoding.EncodeToString([]byte(User+":"+Pass)))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// Decode unmarshals the response body or fails the test.
func Decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

// Expect fails when the status differs.
func Expect(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, want, rec.Body.String())
	}
}
