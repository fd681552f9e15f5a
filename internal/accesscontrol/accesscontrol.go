// Package accesscontrol gates lifecycle operations on role, onboarding state
// and ownership. Role permissions live in a casbin policy; ownership is
// derived from the resource's own foreign keys.
package accesscontrol

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	identitymodels "voluntr/internal/identity/models"
	orgmodels "voluntr/internal/organization/models"
	id "voluntr/pkg/domain"
	dErrors "voluntr/pkg/domain-errors"
	"voluntr/pkg/requestcontext"
)

type Object string

type Action string

const (
	ObjEvent       Object = "event"
	ObjApplication Object = "application"
	ObjDashboard   Object = "dashboard"

	ActCreate    Action = "create"
	ActListOwn   Action = "list_own"
	ActApply     Action = "apply"
	ActCancel    Action = "cancel"
	ActViewOwn   Action = "view_own"
	ActListEvent Action = "list_event"
	ActDecide    Action = "decide"
	ActExport    Action = "export"
	ActStats     Action = "stats"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

var policies = [][]string{
	{"role::volunteer", string(ObjApplication), string(ActApply)},
	{"role::volunteer", string(ObjApplication), string(ActCancel)},
	{"role::volunteer", string(ObjApplication), string(ActListOwn)},
	{"role::volunteer", string(ObjApplication), string(ActViewOwn)},
	{"role::ngo_admin", string(ObjEvent), string(ActCreate)},
	{"role::ngo_admin", string(ObjEvent), string(ActListOwn)},
	{"role::ngo_admin", string(ObjApplication), string(ActListEvent)},
	{"role::ngo_admin", string(ObjApplication), string(ActDecide)},
	{"role::ngo_admin", string(ObjApplication), string(ActExport)},
	{"role::ngo_admin", string(ObjDashboard), string(ActStats)},
}

type Accounts interface {
	Get(ctx context.Context, accountID id.AccountID) (*identitymodels.Account, error)
}

type Organizations interface {
	ForAdmin(ctx context.Context, admin id.AccountID) (*orgmodels.Organization, error)
}

// OrganizationOwned is implemented by resources owned by an organization.
type OrganizationOwned interface {
	OwnerOrganizationID() id.OrganizationID
}

// ApplicantOwned is implemented by resources owned by a volunteer.
type ApplicantOwned interface {
	ApplicantID() id.AccountID
}

// Guard evaluates access predicates. It never mutates state.
type Guard struct {
	enforcer *casbin.SyncedEnforcer
	accounts Accounts
	orgs     Organizations
	logger   *slog.Logger
}

func New(accounts Accounts, orgs Organizations, logger *slog.Logger) (*Guard, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("load rbac model: %w", err)
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}
	if _, err := e.AddPolicies(policies); err != nil {
		return nil, fmt.Errorf("load rbac policies: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{enforcer: e, accounts: accounts, orgs: orgs, logger: logger}, nil
}

// RequireAuthenticated re-reads the session's account so role and onboarding
// state are never taken from a cached claim.
func (g *Guard) RequireAuthenticated(ctx context.Context) (*identitymodels.Account, error) {
	accountID := requestcontext.AccountID(ctx)
	if accountID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	account, err := g.accounts.Get(ctx, accountID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "account no longer exists")
		}
		return nil, err
	}
	return account, nil
}

// RequirePermission checks that the caller is onboarded and that their role
// grants act on obj. Accounts without a completed profile get
// ProfileIncomplete; onboarded accounts with the wrong role get Forbidden.
func (g *Guard) RequirePermission(ctx context.Context, obj Object, act Action) (*identitymodels.Account, error) {
	account, err := g.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	if !account.IsOnboarded() {
		return nil, dErrors.New(dErrors.CodeProfileIncomplete, "complete onboarding first")
	}
	allowed, err := g.enforcer.Enforce("role::"+string(account.Role), string(obj), string(act))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to evaluate policy")
	}
	if !allowed {
		g.logger.WarnContext(ctx, "access denied",
			"account_id", account.ID,
			"role", account.Role,
			"object", obj,
			"action", act,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.New(dErrors.CodeForbidden, "role "+string(account.Role)+" may not "+string(act)+" "+string(obj))
	}
	return account, nil
}

// RequireOrganizationOwner resolves the admin's organization and checks it
// owns resource.
func (g *Guard) RequireOrganizationOwner(ctx context.Context, admin *identitymodels.Account, resource OrganizationOwned) (*orgmodels.Organization, error) {
	org, err := g.orgs.ForAdmin(ctx, admin.ID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeForbidden, "no organization is registered for this account")
		}
		return nil, err
	}
	if org.ID != resource.OwnerOrganizationID() {
		g.logger.WarnContext(ctx, "access denied - not the owning organization",
			"account_id", admin.ID,
			"organization_id", org.ID,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.New(dErrors.CodeForbidden, "resource belongs to another organization")
	}
	return org, nil
}

// RequireApplicant checks that account submitted resource.
func (g *Guard) RequireApplicant(account *identitymodels.Account, resource ApplicantOwned) error {
	if resource.ApplicantID() != account.ID {
		return dErrors.New(dErrors.CodeForbidden, "application belongs to another volunteer")
	}
	return nil
}
