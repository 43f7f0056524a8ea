package service

import (
	"fmt"

	"github.com/clubpulse/clubpulse/internal/domain"
)

// Capability declares which actor classes may perform an operation. Each
// operation evaluates exactly one capability instead of repeating role
// conditionals at every call site.
type Capability struct {
	Owner    bool // the member owning the resource
	Assignee bool // a member listed on the task
	Staff    bool // leader or admin
	Admin    bool // admin only
}

// Permits reports whether the actor satisfies the capability against the
// resource's owner and assignee set.
func (c Capability) Permits(actor *domain.Member, ownerID string, assignees []string) bool {
	if c.Admin && actor.Role == domain.RoleAdmin {
		return true
	}
	if c.Staff && actor.Role.IsStaff() {
		return true
	}
	if c.Owner && ownerID != "" && actor.ID == ownerID {
		return true
	}
	if c.Assignee {
		for _, id := range assignees {
			if id == actor.ID {
				return true
			}
		}
	}
	return false
}

// Check returns ErrForbidden with context when the actor lacks the capability.
func (c Capability) Check(actor *domain.Member, ownerID string, assignees []string) error {
	if c.Permits(actor, ownerID, assignees) {
		return nil
	}
	return fmt.Errorf("%w: member %s (%s)", domain.ErrForbidden, actor.ID, actor.Role)
}

// Capabilities per operation.
var (
	capCancelRegistration  = Capability{Owner: true, Staff: true}
	capConfirmRegistration = Capability{Staff: true}
	capMarkAttendance      = Capability{Staff: true}
	capAddFeedback         = Capability{Owner: true}
	capCreateEvent         = Capability{Staff: true}
	capCreateTask          = Capability{Admin: true}
	capMutateTask          = Capability{Assignee: true, Staff: true}
	capGrantBadge          = Capability{Staff: true}
	capAdjustPoints        = Capability{Admin: true}
)
