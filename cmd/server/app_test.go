package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventhandler "voluntr/internal/event/handler"
	eventservice "voluntr/internal/event/service"
	identitymodels "voluntr/internal/identity/models"
	"voluntr/internal/platform/config"
	"voluntr/pkg/testutil"
)

func memoryConfig(t *testing.T) config.Server {
	t.Helper()
	for _, key := range []string{"DATABASE_URL", "REDIS_URL", "KAFKA_BROKERS", "GOOGLE_CLIENT_ID", "ADMIN_API_TOKEN"} {
		t.Setenv(key, "")
	}
	cfg := config.FromEnv()
	cfg.Uploads.Dir = t.TempDir()
	return cfg
}

func newMemoryApp(t *testing.T, cfg config.Server) *app {
	t.Helper()
	a, err := newApp(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestDemoFixturesParse(t *testing.T) {
	f, err := parseFixtures(bytes.NewReader(demoFixtures))
	require.NoError(t, err)
	assert.Len(t, f.Organizations, 2)
	assert.NotEmpty(t, f.Volunteers)

	_, err = parseFixtures(bytes.NewReader([]byte("organisations: []\n")))
	require.Error(t, err, "unknown keys are rejected")
}

func TestSeedThroughServices(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Events.DiscoverRequireVerified = true
	a := newMemoryApp(t, cfg)
	ctx := context.Background()

	f, err := parseFixtures(bytes.NewReader(demoFixtures))
	require.NoError(t, err)
	n, err := a.seed(ctx, f, time.Now())
	require.NoError(t, err)
	assert.Equal(t, seeded{orgs: 2, events: 3, volunteers: 1}, n)

	views, err := a.events.ListDiscoverable(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, views, 2, "only the verified organization's events are discoverable")
	for _, v := range views {
		assert.Equal(t, "Green Earth Trust", v.Organization.Name)
	}

	again, err := a.seed(ctx, &fixtures{Organizations: f.Organizations[:1]}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, again.orgs, "admins are matched by email on re-runs")
	orgs, err := a.orgs.List(ctx)
	require.NoError(t, err)
	assert.Len(t, orgs, 2)
}

func TestRouterInMemory(t *testing.T) {
	a := newMemoryApp(t, memoryConfig(t))
	f, err := parseFixtures(bytes.NewReader(demoFixtures))
	require.NoError(t, err)
	_, err = a.seed(context.Background(), f, time.Now())
	require.NoError(t, err)

	router, err := a.router()
	require.NoError(t, err)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/events?cause=environment"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	list := testutil.UnmarshalResponse[eventhandler.ListResponse[eventservice.View]](t, rr)
	assert.Len(t, list.Events, 2)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/auth/google/login"))
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/me"))
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

func TestLandingRoutesAreServed(t *testing.T) {
	ctx := context.Background()
	a := newMemoryApp(t, memoryConfig(t))
	f, err := parseFixtures(bytes.NewReader(demoFixtures))
	require.NoError(t, err)
	_, err = a.seed(ctx, f, time.Now())
	require.NoError(t, err)
	router, err := a.router()
	require.NoError(t, err)

	tests := map[string]string{
		"meera@example.com":        identitymodels.RouteVolunteerDashboard,
		"priya@greenearth.example": identitymodels.RouteNGODashboard,
		"newcomer@example.com":     identitymodels.RouteOnboarding,
	}
	for email, landing := range tests {
		t.Run(email, func(t *testing.T) {
			session, err := a.identity.Login(ctx, identitymodels.ExternalIdentity{Email: email, Provider: "google"})
			require.NoError(t, err)
			as := func(req *http.Request) *http.Request {
				req.Header.Set("Authorization", "Bearer "+session.Token)
				return req
			}
			require.Equal(t, landing, session.Account.NextRoute())

			rr := testutil.DoRequest(router, as(testutil.NewRequest(t, http.MethodGet, "/dashboard")))
			testutil.AssertRedirect(t, rr, landing)

			rr = testutil.DoRequest(router, as(testutil.NewRequest(t, http.MethodGet, landing)))
			testutil.AssertStatus(t, rr, http.StatusOK)
		})
	}
}
