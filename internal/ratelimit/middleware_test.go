package ratelimit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "voluntr/pkg/domain"
	"voluntr/pkg/testutil"
)

type failingStore struct{}

func (failingStore) Allow(context.Context, string, Rule) (Result, error) {
	return Result{}, errors.New("redis down")
}

type recordingStore struct {
	keys []string
	Store
}

func (s *recordingStore) Allow(ctx context.Context, key string, rule Rule) (Result, error) {
	s.keys = append(s.keys, key)
	return s.Store.Allow(ctx, key, rule)
}

func newLimited(t *testing.T, store Store, opts ...Option) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := New(store, logger, opts...)
	return m.Limit(ClassWrite)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestLimitRejectsOverBudget(t *testing.T) {
	mem, err := NewInMemory(10)
	require.NoError(t, err)
	h := newLimited(t, mem, WithRule(ClassWrite, Rule{Limit: 2, Window: time.Minute}))

	for range 2 {
		rr := testutil.DoRequest(h, testutil.NewRequest(t, http.MethodPost, "/events"))
		testutil.AssertStatus(t, rr, http.StatusNoContent)
	}
	rr := testutil.DoRequest(h, testutil.NewRequest(t, http.MethodPost, "/events"))
	testutil.AssertStatusAndError(t, rr, http.StatusTooManyRequests, "rate_limit_exceeded")
	assert.Equal(t, "30", rr.Header().Get("Retry-After"))
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))
}

func TestLimitKeysByAccountWhenAuthenticated(t *testing.T) {
	mem, err := NewInMemory(10)
	require.NoError(t, err)
	rec := &recordingStore{Store: mem}
	h := newLimited(t, rec)

	accountID := id.NewAccountID()
	testutil.DoRequest(h, testutil.WithAccountID(testutil.NewRequest(t, http.MethodPost, "/events"), accountID))
	req := testutil.NewRequest(t, http.MethodPost, "/events")
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	testutil.DoRequest(h, req)

	assert.Equal(t, []string{
		"write:account:" + accountID.String(),
		"write:ip:203.0.113.7",
	}, rec.keys)
}

func TestLimitFailsOpen(t *testing.T) {
	h := newLimited(t, failingStore{})
	rr := testutil.DoRequest(h, testutil.NewRequest(t, http.MethodPost, "/events"))
	testutil.AssertStatus(t, rr, http.StatusNoContent)
}

func TestLimitDisabled(t *testing.T) {
	h := newLimited(t, failingStore{}, WithDisabled(true))
	rr := testutil.DoRequest(h, testutil.NewRequest(t, http.MethodPost, "/events"))
	testutil.AssertStatus(t, rr, http.StatusNoContent)
	assert.Empty(t, rr.Header().Get("X-RateLimit-Limit"))
}
