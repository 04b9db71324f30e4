package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"homedash/internal/db"
	"homedash/internal/diagnostics"
	"homedash/internal/metrics"
	"homedash/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// recordingNotifier remembers every dispatched alert id.
type recordingNotifier struct {
	mu  sync.Mutex
	ids []int64
}

func (n *recordingNotifier) Dispatch(id int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ids = append(n.ids, id)
}

func (n *recordingNotifier) dispatched() []int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]int64(nil), n.ids...)
}

type testServer struct {
	router   *gin.Engine
	store    store.Store
	notifier *recordingNotifier
}

// newTestServer wires a router over a seeded, file-backed SQLite database.
func newTestServer(t *testing.T, prober diagnostics.Prober, cacheTTL time.Duration) *testServer {
	t.Helper()
	gormDB, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gormDB))
	_, err = db.Seed(context.Background(), gormDB)
	require.NoError(t, err)

	s := store.NewGormStore(gormDB)
	return newTestServerWithStore(t, s, prober, cacheTTL)
}

func newTestServerWithStore(t *testing.T, s store.Store, prober diagnostics.Prober, cacheTTL time.Duration) *testServer {
	t.Helper()
	notifier := &recordingNotifier{}
	h := NewHandler(Deps{
		Store:    s,
		Prober:   prober,
		Notifier: notifier,
		Metrics:  metrics.New(s, zap.NewNop()),
		Log:      zap.NewNop(),
	})

	router, err := NewRouter(h, RouterConfig{CacheTTL: cacheTTL})
	require.NoError(t, err)

	return &testServer{router: router, store: s, notifier: notifier}
}

func (ts *testServer) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func (ts *testServer) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) sendJSON(method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ts.router.ServeHTTP(w, req)
	return w
}
