package itest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/Overland-East-Bay/scoring-api/internal/adapters/httpapi"
	memclock "github.com/Overland-East-Bay/scoring-api/internal/adapters/memory/clock"
	memkv "github.com/Overland-East-Bay/scoring-api/internal/adapters/memory/kvstore"
	pgkv "github.com/Overland-East-Bay/scoring-api/internal/adapters/postgres/kvstore"
	postgres_testutil "github.com/Overland-East-Bay/scoring-api/internal/adapters/postgres/testutil"
	rediskv "github.com/Overland-East-Bay/scoring-api/internal/adapters/redis/kvstore"
	valkeykv "github.com/Overland-East-Bay/scoring-api/internal/adapters/valkey/kvstore"
	"github.com/Overland-East-Bay/scoring-api/internal/app/auth"
	"github.com/Overland-East-Bay/scoring-api/internal/app/dispatch"
	"github.com/Overland-East-Bay/scoring-api/internal/app/requests"
	"github.com/Overland-East-Bay/scoring-api/internal/app/scoring"
	"github.com/Overland-East-Bay/scoring-api/internal/domain"
	"github.com/Overland-East-Bay/scoring-api/internal/platform/metrics"
	"github.com/Overland-East-Bay/scoring-api/internal/platform/resilience"
	"github.com/Overland-East-Bay/scoring-api/internal/platform/store"
	kvport "github.com/Overland-East-Bay/scoring-api/internal/ports/out/kvstore"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendRedis    backend = "redis"
	backendValkey   backend = "valkey"
	backendPostgres backend = "postgres"
)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory}
	case "redis":
		return []backend{backendRedis}
	case "valkey":
		return []backend{backendValkey}
	case "postgres":
		return []backend{backendPostgres}
	case "all":
		return []backend{backendMemory, backendRedis, backendValkey, backendPostgres}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|redis|valkey|postgres|all)")
		return nil
	}
}

type testServer struct {
	baseURL string
	client  *http.Client
	clock   *memclock.ManualClock
	auth    *auth.Authenticator
	backend kvport.Backend
	// mem is set only for the memory backend, which supports failure injection.
	mem *memkv.Store
}

func newTestServer(t *testing.T, b backend) *testServer {
	t.Helper()

	clk := memclock.NewManualClock(time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local))

	ts := &testServer{clock: clk}
	switch b {
	case backendMemory:
		ts.mem = memkv.NewStore()
		ts.backend = ts.mem
	case backendRedis:
		addr := os.Getenv("SCORING_TEST_REDIS_ADDR")
		if addr == "" {
			t.Skip("SCORING_TEST_REDIS_ADDR not set")
		}
		s := rediskv.NewStore(rediskv.Options{Addr: addr})
		t.Cleanup(func() { _ = s.Close() })
		ts.backend = s
	case backendValkey:
		addr := os.Getenv("SCORING_TEST_VALKEY_ADDR")
		if addr == "" {
			t.Skip("SCORING_TEST_VALKEY_ADDR not set")
		}
		s, err := valkeykv.NewStore(valkeykv.Options{Addr: addr})
		if err != nil {
			t.Fatalf("valkey: %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		ts.backend = s
	case backendPostgres:
		pool := postgres_testutil.OpenPool(t)
		s := pgkv.NewStore(pool)
		if err := s.Migrate(context.Background()); err != nil {
			t.Fatalf("migrate: %v", err)
		}
		ts.backend = s
	default:
		t.Fatalf("unknown backend: %s", b)
	}

	log, _ := logtest.NewNullLogger()
	m := metrics.New()
	st := store.New(ts.backend, clk, store.Options{
		Retry:    resilience.Policy{Retries: 2, Delay: time.Millisecond},
		CacheTTL: time.Minute,
		Timeout:  2 * time.Second,
		Logger:   log,
		Metrics:  m,
	})
	ts.auth = auth.NewAuthenticator(auth.Config{}, clk)
	d := dispatch.New(requests.NewCatalog(clk), ts.auth, scoring.NewService(st), log)
	handler := httpapi.NewRouter(httpapi.NewServer(d, log, m), httpapi.RouterOptions{Metrics: m.Handler(), Logger: log})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	ts.baseURL = srv.URL
	ts.client = srv.Client()
	return ts
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

// seedInterests stores a client's interests in the backend.
func (s *testServer) seedInterests(t *testing.T, id domain.ClientID, interests []string) {
	t.Helper()
	b, err := json.Marshal(interests)
	if err != nil {
		t.Fatalf("marshal interests: %v", err)
	}
	if err := s.backend.Set(context.Background(), domain.InterestsKey(id), b); err != nil {
		t.Fatalf("seed interests: %v", err)
	}
}

// envelopeFor builds a method envelope carrying a valid token for account and login.
func (s *testServer) envelopeFor(account, login, method string, args map[string]any) map[string]any {
	return map[string]any{
		"account":   account,
		"login":     login,
		"method":    method,
		"token":     s.auth.ExpectedToken(account, login),
		"arguments": args,
	}
}

func (s *testServer) doJSON(t *testing.T, method string, path string, body any) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

type errorResponse struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

type successResponse[T any] struct {
	Code     int `json:"code"`
	Response T   `json:"response"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireError(t *testing.T, status int, body []byte, wantStatus int) errorResponse {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status=%d want=%d body=%s", status, wantStatus, string(body))
	}
	got := mustUnmarshal[errorResponse](t, body)
	if got.Code != wantStatus || got.Error == "" {
		t.Fatalf("envelope=%+v want code=%d with a message body=%s", got, wantStatus, string(body))
	}
	return got
}

func requireHeaderPresent(t *testing.T, h http.Header, key string) {
	t.Helper()
	if strings.TrimSpace(h.Get(key)) == "" {
		t.Fatalf("expected header %q to be present", key)
	}
}
