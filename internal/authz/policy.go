package authz

import (
	"context"
	"fmt"
	"log/slog"
)

// Evaluation bundles the inputs a rule may consult.
type Evaluation struct {
	Actor   Principal
	OwnerID int64
	Action  Action

	// reports holds the actor's direct-report ids, loaded once per evaluation
	// and only when a rule needs the leadership relation.
	reports map[int64]struct{}
}

// Rule is one strategy in the ordered decision chain.
type Rule interface {
	Name() string
	Evaluate(ev *Evaluation) Decision
}

// superuserRule grants administrators everything, unconditionally.
type superuserRule struct{}

func (superuserRule) Name() string { return "superuser" }

func (superuserRule) Evaluate(ev *Evaluation) Decision {
	if ev.Actor.IsSuperUser() {
		return Allow
	}
	return Abstain
}

// groupLeaderRule grants leaders access to records owned by their direct
// reports or by themselves. Anything outside the led group falls through.
type groupLeaderRule struct{}

func (groupLeaderRule) Name() string { return "group_leader" }

func (groupLeaderRule) Evaluate(ev *Evaluation) Decision {
	if ev.Actor.GetRole() != RoleGroupLeader {
		return Abstain
	}
	if ev.OwnerID == ev.Actor.GetID() {
		return Allow
	}
	if _, ok := ev.reports[ev.OwnerID]; ok {
		return Allow
	}
	return Abstain
}

// ownerRule grants access to the record's owner.
type ownerRule struct{}

func (ownerRule) Name() string { return "owner" }

func (ownerRule) Evaluate(ev *Evaluation) Decision {
	if ev.OwnerID == ev.Actor.GetID() {
		return Allow
	}
	return Abstain
}

// Policy evaluates the rule chain in fixed priority order.
type Policy struct {
	directory Directory
	logger    *slog.Logger
	rules     []Rule
}

// NewPolicy constructs the standard CRM policy: superuser, group leader, owner.
func NewPolicy(directory Directory, logger *slog.Logger) *Policy {
	return &Policy{
		directory: directory,
		logger:    logger,
		rules: []Rule{
			superuserRule{},
			groupLeaderRule{},
			ownerRule{},
		},
	}
}

// CanAccess reports whether actor may perform action on the record. The
// decision is a pure function of the actor, the record owner and the current
// leadership edges; the only returned errors are directory lookup failures.
// Callers must reject unauthenticated requests before invoking this.
func (p *Policy) CanAccess(ctx context.Context, actor Principal, record Owned, action Action) (bool, error) {
	if actor == nil {
		return false, fmt.Errorf("authz: nil actor")
	}

	ev := &Evaluation{Actor: actor, OwnerID: record.GetOwnerID(), Action: action}
	if actor.GetRole() == RoleGroupLeader && !actor.IsSuperUser() {
		reports, err := p.directory.ListDirectReportIDs(ctx, actor.GetID())
		if err != nil {
			return false, fmt.Errorf("authz: list direct reports: %w", err)
		}
		ev.reports = make(map[int64]struct{}, len(reports))
		for _, id := range reports {
			ev.reports[id] = struct{}{}
		}
	}

	for _, rule := range p.rules {
		switch rule.Evaluate(ev) {
		case Allow:
			p.log(actor, action, ev.OwnerID, rule.Name(), true)
			return true, nil
		case Deny:
			p.log(actor, action, ev.OwnerID, rule.Name(), false)
			return false, nil
		}
	}
	p.log(actor, action, ev.OwnerID, "default", false)
	return false, nil
}

func (p *Policy) log(actor Principal, action Action, ownerID int64, rule string, allowed bool) {
	if p.logger == nil {
		return
	}
	p.logger.Debug("access decision",
		slog.Int64("actor_id", actor.GetID()),
		slog.String("action", string(action)),
		slog.Int64("owner_id", ownerID),
		slog.String("rule", rule),
		slog.Bool("allowed", allowed),
	)
}
