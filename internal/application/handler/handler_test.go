package handler

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"voluntr/internal/accesscontrol"
	"voluntr/internal/application/models"
	"voluntr/internal/application/service"
	"voluntr/internal/application/store"
	eventmodels "voluntr/internal/event/models"
	eventstore "voluntr/internal/event/store"
	identitymodels "voluntr/internal/identity/models"
	identityservice "voluntr/internal/identity/service"
	identitystore "voluntr/internal/identity/store"
	orgmodels "voluntr/internal/organization/models"
	orgservice "voluntr/internal/organization/service"
	orgstore "voluntr/internal/organization/store"
	id "voluntr/pkg/domain"
	"voluntr/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	ctx       context.Context
	router    chi.Router
	events    *eventstore.InMemory
	identity  *identityservice.Service
	admin     *identitymodels.Account
	volunteer *identitymodels.Account
	event     *eventmodels.Event
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctx = context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.events = eventstore.NewInMemory()
	orgs := orgservice.New(orgstore.NewInMemory())
	s.identity = identityservice.New(identitystore.NewInMemory(), orgs, nil, nil)
	guard, err := accesscontrol.New(s.identity, orgs, logger)
	s.Require().NoError(err)

	svc := service.New(store.NewInMemory(), s.events, s.identity, orgs, guard, service.WithLogger(logger))
	s.router = chi.NewRouter()
	New(svc, guard, logger).Register(s.router)

	s.admin = s.onboard("admin@example.org", identitymodels.RoleNGOAdmin)
	s.volunteer = s.onboard("vol@example.org", identitymodels.RoleVolunteer)

	org, err := orgs.ForAdmin(s.ctx, s.admin.ID)
	s.Require().NoError(err)
	s.event, err = eventmodels.NewEvent(id.NewEventID(), org.ID, eventmodels.Draft{
		Title:              "Tree Planting",
		Location:           "Pune",
		Date:               time.Now().Add(48 * time.Hour),
		RequiredVolunteers: 3,
	}, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.events.Create(s.ctx, s.event))
}

func (s *HandlerSuite) onboard(email string, role identitymodels.Role) *identitymodels.Account {
	a, err := s.identity.ResolveOrCreateAccount(s.ctx, identitymodels.ExternalIdentity{Email: email, DisplayName: email})
	s.Require().NoError(err)
	if role == identitymodels.RoleNGOAdmin {
		a, _, err = s.identity.CompleteNGOOnboarding(s.ctx, a.ID, orgmodels.Profile{Name: "NGO " + email})
	} else {
		a, err = s.identity.CompleteVolunteerOnboarding(s.ctx, a.ID, identitymodels.VolunteerProfile{
			LegalName: "Asha Rao",
			Phone:     "+91 90000 00000",
			Location:  "Pune",
		})
	}
	s.Require().NoError(err)
	return a
}

func (s *HandlerSuite) do(req *http.Request, as *identitymodels.Account) *httptest.ResponseRecorder {
	if as != nil {
		req = testutil.WithAccountID(req, as.ID)
	}
	return testutil.DoRequest(s.router, req)
}

func (s *HandlerSuite) apply() *models.Application {
	rr := s.do(testutil.NewRequest(s.T(), http.MethodPost, "/events/"+s.event.ID.String()+"/apply"), s.volunteer)
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	return testutil.UnmarshalResponse[models.Application](s.T(), rr)
}

func (s *HandlerSuite) TestApply() {
	app := s.apply()
	s.Equal(models.StatusPending, app.Status)

	s.Run("duplicate", func() {
		rr := s.do(testutil.NewRequest(s.T(), http.MethodPost, "/events/"+s.event.ID.String()+"/apply"), s.volunteer)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")
	})

	s.Run("unauthenticated", func() {
		rr := s.do(testutil.NewRequest(s.T(), http.MethodPost, "/events/"+s.event.ID.String()+"/apply"), nil)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("admins cannot apply", func() {
		rr := s.do(testutil.NewRequest(s.T(), http.MethodPost, "/events/"+s.event.ID.String()+"/apply"), s.admin)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
	})

	s.Run("not onboarded", func() {
		fresh, err := s.identity.ResolveOrCreateAccount(s.ctx, identitymodels.ExternalIdentity{Email: "new@example.org"})
		s.Require().NoError(err)
		rr := s.do(testutil.NewRequest(s.T(), http.MethodPost, "/events/"+s.event.ID.String()+"/apply"), fresh)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "profile_incomplete")
	})

	s.Run("malformed event id", func() {
		rr := s.do(testutil.NewRequest(s.T(), http.MethodPost, "/events/not-a-uuid/apply"), s.volunteer)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})
}

func (s *HandlerSuite) TestCancel() {
	app := s.apply()

	rr := s.do(testutil.NewRequest(s.T(), http.MethodDelete, "/applications/"+app.ID.String()), s.volunteer)
	testutil.AssertStatus(s.T(), rr, http.StatusNoContent)

	rr = s.do(testutil.NewRequest(s.T(), http.MethodDelete, "/applications/"+app.ID.String()), s.volunteer)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *HandlerSuite) TestDecide() {
	app := s.apply()
	path := "/events/" + s.event.ID.String() + "/applications/" + app.ID.String()

	s.Run("approve", func() {
		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPatch, path, map[string]string{"status": "Approved"}), s.admin)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		decided := testutil.UnmarshalResponse[models.Application](s.T(), rr)
		s.Equal(models.StatusApproved, decided.Status)

		e, err := s.events.FindByID(s.ctx, s.event.ID)
		s.Require().NoError(err)
		s.Equal([]id.AccountID{s.volunteer.ID}, e.Attendees)
	})

	s.Run("unknown status", func() {
		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPatch, path, map[string]string{"status": "pending"}), s.admin)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("missing status", func() {
		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPatch, path, map[string]string{}), s.admin)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("volunteer cannot decide", func() {
		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPatch, path, map[string]string{"status": "rejected"}), s.volunteer)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
	})

	s.Run("cancel after decision", func() {
		rr := s.do(testutil.NewRequest(s.T(), http.MethodDelete, "/applications/"+app.ID.String()), s.volunteer)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "invalid_state")
	})
}

func (s *HandlerSuite) TestListings() {
	app := s.apply()

	rr := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/events/"+s.event.ID.String()+"/applications"), s.admin)
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	forEvent := testutil.UnmarshalResponse[ListResponse[service.EventApplication]](s.T(), rr)
	s.Require().Len(forEvent.Applications, 1)
	s.Equal("vol@example.org", forEvent.Applications[0].Applicant.Email)

	rr = s.do(testutil.NewRequest(s.T(), http.MethodGet, "/applications/mine"), s.volunteer)
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	mine := testutil.UnmarshalResponse[ListResponse[service.VolunteerApplication]](s.T(), rr)
	s.Require().Len(mine.Applications, 1)
	s.Equal(app.ID, mine.Applications[0].ID)
	s.Equal("Tree Planting", mine.Applications[0].Event.Title)

	rr = s.do(testutil.NewRequest(s.T(), http.MethodGet, "/dashboard/volunteer"), s.volunteer)
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	dash := testutil.UnmarshalResponse[ListResponse[service.VolunteerApplication]](s.T(), rr)
	s.Require().Len(dash.Applications, 1)
	s.Equal(app.ID, dash.Applications[0].ID)

	rr = s.do(testutil.NewRequest(s.T(), http.MethodGet, "/events/"+s.event.ID.String()+"/application"), s.volunteer)
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	own := testutil.UnmarshalResponse[MyApplicationResponse](s.T(), rr)
	s.Require().NotNil(own.Application)
	s.Equal(app.ID, own.Application.ID)
}

func (s *HandlerSuite) TestMyApplicationIsNullBeforeApplying() {
	rr := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/events/"+s.event.ID.String()+"/application"), s.volunteer)
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.JSONEq(`{"application": null}`, rr.Body.String())
}

func (s *HandlerSuite) TestExport() {
	app := s.apply()
	rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPatch,
		"/events/"+s.event.ID.String()+"/applications/"+app.ID.String(),
		map[string]string{"status": "approved"}), s.admin)
	testutil.AssertStatus(s.T(), rr, http.StatusOK)

	rr = s.do(testutil.NewRequest(s.T(), http.MethodGet, "/events/"+s.event.ID.String()+"/export"), s.admin)
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.Equal("text/csv", rr.Header().Get("Content-Type"))

	records, err := csv.NewReader(strings.NewReader(rr.Body.String())).ReadAll()
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(exportHeader, records[0])
	s.Equal("Asha Rao", records[1][0])
	s.Equal("vol@example.org", records[1][1])
	s.Equal(app.AppliedAt.UTC().Format(time.DateOnly), records[1][4])
}
