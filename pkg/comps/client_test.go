package comps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dealdesk/internal/model"
	"github.com/sells-group/dealdesk/internal/retry"
)

var testAddr = model.Address{
	Street:  "123 Maple St",
	City:    "Atlanta",
	State:   "GA",
	ZipCode: "30303",
}

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := New(Config{
		Key:        "test-key",
		BaseURL:    srv.URL,
		RatePerSec: 1000, // no throttling in tests
		Burst:      1000,
	})
	c.policy = retry.Policy{MaxAttempts: 3, InitialDelay: time.Millisecond, Multiplier: 1}
	return c, srv
}

func TestEstimatedValue(t *testing.T) {
	t.Parallel()

	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/estimate", r.URL.Path)
		assert.Equal(t, "123 Maple St", r.URL.Query().Get("street"))
		assert.Equal(t, "30303", r.URL.Query().Get("zip"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value": "245000", "confidence": 0.82, "comps_used": 9}`))
	})
	defer srv.Close()

	est, err := c.EstimatedValue(context.Background(), testAddr)
	require.NoError(t, err)
	v, _ := est.Value.Float64()
	assert.InDelta(t, 245000, v, 0.001)
	assert.InDelta(t, 0.82, est.Confidence, 0.001)
	assert.Equal(t, 9, est.CompsUsed)
}

func TestEstimatedValueRetriesServerErrors(t *testing.T) {
	t.Parallel()

	attempts := 0
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"value": "190000", "confidence": 0.5, "comps_used": 4}`))
	})
	defer srv.Close()

	est, err := c.EstimatedValue(context.Background(), testAddr)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 4, est.CompsUsed)
}

func TestEstimatedValueNoComps(t *testing.T) {
	t.Parallel()

	attempts := 0
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	})
	defer srv.Close()

	_, err := c.EstimatedValue(context.Background(), testAddr)
	require.Error(t, err)
	assert.Equal(t, 1, attempts, "404 is not retryable")
}

func TestEstimatedValueRequiresAddress(t *testing.T) {
	t.Parallel()

	c := New(Config{BaseURL: "http://localhost:0"})
	_, err := c.EstimatedValue(context.Background(), model.Address{City: "Atlanta"})
	require.Error(t, err)
}

func TestEstimatedValueGivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	attempts := 0
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer srv.Close()

	_, err := c.EstimatedValue(context.Background(), testAddr)
	require.Error(t, err)
	assert.Equal(t, c.policy.MaxAttempts, attempts)
}
