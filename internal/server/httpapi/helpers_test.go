package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/goalkeeper/internal/logging"
	"github.com/dmitrijs2005/goalkeeper/internal/server/config"
	"github.com/dmitrijs2005/goalkeeper/internal/server/events"
	"github.com/dmitrijs2005/goalkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/goalkeeper/internal/server/repositories/memory"
	"github.com/dmitrijs2005/goalkeeper/internal/server/services"
	"github.com/dmitrijs2005/goalkeeper/internal/server/sessions"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testAPI struct {
	server      *Server
	ts          *httptest.Server
	revocations *sessions.MemoryStore
	metrics     *metrics.Metrics
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BcryptCost = bcrypt.MinCost
	cfg.RateLimit = 1000

	rm := memory.NewManager()
	met := metrics.New()
	pub := events.Nop{}
	ids := services.NewIdentityService(rm, cfg, logging.Nop(), met, pub)
	gs := services.NewGoalService(rm, cfg, logging.Nop(), met, pub)
	rev := sessions.NewMemoryStore()

	srv := NewServer(cfg, logging.Nop(), ids, gs, rev, met, rm)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	return &testAPI{server: srv, ts: ts, revocations: rev, metrics: met}
}

// browser returns a client that keeps cookies like a browser would.
func (a *testAPI) browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func (a *testAPI) do(t *testing.T, c *http.Client, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, a.ts.URL+path, rdr)
	require.NoError(t, err)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "goalkeeper_session" {
			return c
		}
	}
	return nil
}

func decodeBody(resp *http.Response, v any) error {
	return json.NewDecoder(resp.Body).Decode(v)
}
