package rbac

import (
	_ "embed"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/rs/zerolog/log"
)

// casbinModel grants an exact (role, capability) pair. Ranks are not part of
// the model, the content rank gate lives in Visible.
//
//go:embed model.conf
var casbinModel string

// Reason explains a denial.
type Reason int

const (
	// ReasonNone is used for allowed decisions.
	ReasonNone Reason = iota
	// ReasonUnauthenticated means no identity was presented.
	ReasonUnauthenticated
	// ReasonForbidden means the identity lacks the capability.
	ReasonForbidden
)

// String implements fmt.Stringer.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "allow"
	case ReasonUnauthenticated:
		return "unauthenticated"
	case ReasonForbidden:
		return "forbidden"
	}

	return "unknown"
}

// Decision is the result of Authorize: Allow, or Deny with a Reason.
type Decision struct {
	Allowed    bool
	Reason     Reason
	Capability Capability
}

// Err converts a denial into ErrUnauthenticated or a *ForbiddenError.
// It returns nil for an allowed decision.
func (d Decision) Err() error {
	switch {
	case d.Allowed:
		return nil
	case d.Reason == ReasonUnauthenticated:
		return ErrUnauthenticated
	default:
		return &ForbiddenError{Capability: d.Capability}
	}
}

// Enforcer is the single chokepoint every protected operation passes through.
// The grants of its PermissionTable are loaded into a casbin enforcer once.
type Enforcer struct {
	table    *PermissionTable
	enforcer *casbin.SyncedEnforcer
}

// New binds an enforcer to table. A nil table falls back to DefaultTable.
func New(table *PermissionTable) (*Enforcer, error) {
	if table == nil {
		table = DefaultTable()
	}

	m, err := model.NewModelFromString(casbinModel)
	if err != nil {
		return nil, fmt.Errorf("load casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}

	if rules := table.policies(); len(rules) > 0 {
		if _, err = enforcer.AddPolicies(rules); err != nil {
			return nil, fmt.Errorf("load permission table: %w", err)
		}
	}

	return &Enforcer{table: table, enforcer: enforcer}, nil
}

// NewEnforcer is New for tables known to be valid. It panics on error.
func NewEnforcer(table *PermissionTable) *Enforcer {
	e, err := New(table)
	if err != nil {
		panic(err)
	}

	return e
}

// Table returns the permission table used by the enforcer.
func (e *Enforcer) Table() *PermissionTable {
	return e.table
}

func (e *Enforcer) granted(role Role, c Capability) bool {
	ok, err := e.enforcer.Enforce(string(role), string(c))
	if err != nil {
		log.Error().Err(err).Str("role", role.String()).Str("capability", c.String()).Msg("casbin enforce failed")

		return false
	}

	return ok
}

// Authorize decides whether identity may use c. A nil or invalid identity is
// unauthenticated. The decision depends only on its arguments.
func (e *Enforcer) Authorize(identity *Identity, c Capability) Decision {
	d := Decision{Capability: c}

	switch {
	case !identity.Valid():
		d.Reason = ReasonUnauthenticated
	case !e.granted(identity.Role, c):
		d.Reason = ReasonForbidden
	default:
		d.Allowed = true
	}

	observeDecision(d)

	return d
}

// Can is a shortcut for Authorize(identity, c).Allowed. Used for conditional rendering.
func (e *Enforcer) Can(identity *Identity, c Capability) bool {
	return e.Authorize(identity, c).Allowed
}
