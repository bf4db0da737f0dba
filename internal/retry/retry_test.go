package retry

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDoValSucceedsFirstTry(t *testing.T) {
	t.Parallel()

	calls := 0
	got, err := DoVal(context.Background(), fastPolicy(), "lookup", func(context.Context) (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, calls)
}

func TestDoValRetriesTransient(t *testing.T) {
	t.Parallel()

	calls := 0
	got, err := DoVal(context.Background(), fastPolicy(), "lookup", func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", MarkTransient(eris.New("server hiccup"), 502)
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestDoValStopsOnPermanentError(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := DoVal(context.Background(), fastPolicy(), "lookup", func(context.Context) (int, error) {
		calls++
		return 0, eris.New("bad request")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoValExhaustsAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := DoVal(context.Background(), fastPolicy(), "lookup", func(context.Context) (int, error) {
		calls++
		return 0, MarkTransient(eris.New("still down"), 503)
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoValStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := DoVal(ctx, fastPolicy(), "lookup", func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, MarkTransient(eris.New("interrupted"), 500)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestTemporary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"marked transient", MarkTransient(eris.New("x"), 502), true},
		{"wrapped transient", eris.Wrap(MarkTransient(eris.New("x"), 429), "outer"), true},
		{"connection refused", syscall.ECONNREFUSED, true},
		{"reset message", eris.New("read tcp: connection reset by peer"), true},
		{"plain error", eris.New("no comparables"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Temporary(tc.err))
		})
	}
}

func TestTransientStatus(t *testing.T) {
	t.Parallel()

	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, TransientStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 301, 400, 401, 404, 422} {
		assert.False(t, TransientStatus(code), "status %d", code)
	}
}
