package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventmodels "voluntr/internal/event/models"
	eventservice "voluntr/internal/event/service"
	eventstore "voluntr/internal/event/store"
	"voluntr/internal/organization/models"
	"voluntr/internal/organization/service"
	"voluntr/internal/organization/store"
	id "voluntr/pkg/domain"
	"voluntr/pkg/platform/middleware/admin"
	"voluntr/pkg/testutil"
)

const adminToken = "operator-secret"

type fixture struct {
	router chi.Router
	orgs   *service.Service
	events *eventstore.InMemory
	org    *models.Organization
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	orgs := service.New(store.NewInMemory())
	events := eventstore.NewInMemory()
	h := New(orgs, eventservice.New(events, orgs), logger)

	r := chi.NewRouter()
	h.Register(r)
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(adminToken, logger))
		h.RegisterAdmin(r)
	})

	org, err := orgs.Register(ctx, id.NewAccountID(), models.Profile{Name: "Food Bank", TaxID: "TAX-1"})
	require.NoError(t, err)
	return &fixture{router: r, orgs: orgs, events: events, org: org}
}

func (f *fixture) addEvent(t *testing.T, title string, in time.Duration, status eventmodels.Status) {
	t.Helper()
	e, err := eventmodels.NewEvent(id.NewEventID(), f.org.ID, eventmodels.Draft{
		Title:              title,
		Location:           "Delhi",
		Date:               time.Now().Add(in),
		RequiredVolunteers: 2,
	}, time.Now())
	require.NoError(t, err)
	require.NoError(t, f.events.Create(context.Background(), e))
	if status != eventmodels.StatusOpen {
		require.NoError(t, f.events.SetStatus(context.Background(), e.ID, status))
	}
}

func TestListOrganizations(t *testing.T) {
	f := newFixture(t)

	rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/organizations"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	list := testutil.UnmarshalResponse[ListResponse](t, rr)
	require.Len(t, list.Organizations, 1)
	assert.Equal(t, "Food Bank", list.Organizations[0].Name)
	assert.NotContains(t, rr.Body.String(), "TAX-1")
}

func TestGetOrganizationListsOpenEventsSoonestFirst(t *testing.T) {
	f := newFixture(t)
	f.addEvent(t, "Later", 72*time.Hour, eventmodels.StatusOpen)
	f.addEvent(t, "Sooner", 24*time.Hour, eventmodels.StatusOpen)
	f.addEvent(t, "Done", 48*time.Hour, eventmodels.StatusCompleted)

	rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/organizations/"+f.org.ID.String()))
	testutil.AssertStatus(t, rr, http.StatusOK)
	detail := testutil.UnmarshalResponse[DetailResponse](t, rr)
	assert.Equal(t, f.org.ID, detail.ID)
	require.Len(t, detail.Events, 2)
	assert.Equal(t, "Sooner", detail.Events[0].Title)
	assert.Equal(t, "Later", detail.Events[1].Title)

	rr = testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/organizations/"+id.NewOrganizationID().String()))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}

func TestSetVerification(t *testing.T) {
	path := func(f *fixture) string { return "/admin/organizations/" + f.org.ID.String() + "/verification" }

	t.Run("requires the admin token", func(t *testing.T) {
		f := newFixture(t)
		req := testutil.NewJSONRequest(t, http.MethodPatch, path(f), map[string]string{"status": "verified"})
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("verifies", func(t *testing.T) {
		f := newFixture(t)
		req := testutil.NewJSONRequest(t, http.MethodPatch, path(f), map[string]string{"status": "Verified"})
		req.Header.Set(admin.HeaderName, adminToken)
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[OrganizationResponse](t, rr)
		assert.Equal(t, models.VerificationVerified, resp.VerificationStatus)

		ids, err := f.orgs.VerifiedIDs(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []id.OrganizationID{f.org.ID}, ids)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		f := newFixture(t)
		req := testutil.NewJSONRequest(t, http.MethodPatch, path(f), map[string]string{"status": "trusted"})
		req.Header.Set(admin.HeaderName, adminToken)
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("same status is invalid state", func(t *testing.T) {
		f := newFixture(t)
		req := testutil.NewJSONRequest(t, http.MethodPatch, path(f), map[string]string{"status": "pending"})
		req.Header.Set(admin.HeaderName, adminToken)
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusUnprocessableEntity, "invalid_state")
	})
}
