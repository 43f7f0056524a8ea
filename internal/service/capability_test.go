package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clubpulse/clubpulse/internal/domain"
	"github.com/clubpulse/clubpulse/internal/service"
)

func member(id string, role domain.Role) *domain.Member {
	return &domain.Member{ID: id, Role: role, IsActive: true}
}

func TestCapabilityPermits(t *testing.T) {
	owner := member("owner-1", domain.RoleMember)
	assignee := member("assignee-1", domain.RoleMember)
	stranger := member("stranger-1", domain.RoleMember)
	leader := member("leader-1", domain.RoleLeader)
	admin := member("admin-1", domain.RoleAdmin)

	assignees := []string{"assignee-1", "assignee-2"}

	tests := []struct {
		name       string
		capability service.Capability
		actor      *domain.Member
		want       bool
	}{
		{"owner cap permits owner", service.Capability{Owner: true}, owner, true},
		{"owner cap rejects stranger", service.Capability{Owner: true}, stranger, false},
		{"owner cap rejects leader without staff bit", service.Capability{Owner: true}, leader, false},

		{"staff cap permits leader", service.Capability{Staff: true}, leader, true},
		{"staff cap permits admin", service.Capability{Staff: true}, admin, true},
		{"staff cap rejects plain member", service.Capability{Staff: true}, owner, false},

		{"admin cap permits admin", service.Capability{Admin: true}, admin, true},
		{"admin cap rejects leader", service.Capability{Admin: true}, leader, false},

		{"assignee cap permits listed member", service.Capability{Assignee: true}, assignee, true},
		{"assignee cap rejects unlisted member", service.Capability{Assignee: true}, stranger, false},

		{"owner-or-staff permits owner", service.Capability{Owner: true, Staff: true}, owner, true},
		{"owner-or-staff permits leader", service.Capability{Owner: true, Staff: true}, leader, true},
		{"owner-or-staff rejects stranger", service.Capability{Owner: true, Staff: true}, stranger, false},

		{"assignee-or-staff permits assignee", service.Capability{Assignee: true, Staff: true}, assignee, true},
		{"assignee-or-staff permits admin", service.Capability{Assignee: true, Staff: true}, admin, true},
		{"assignee-or-staff rejects stranger", service.Capability{Assignee: true, Staff: true}, stranger, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.capability.Permits(tt.actor, "owner-1", assignees)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCapabilityCheck(t *testing.T) {
	stranger := member("stranger-1", domain.RoleMember)
	leader := member("leader-1", domain.RoleLeader)

	staffOnly := service.Capability{Staff: true}

	assert.NoError(t, staffOnly.Check(leader, "", nil))

	err := staffOnly.Check(stranger, "", nil)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// Empty owner must never match an actor with an empty ID.
func TestCapabilityPermits_EmptyOwner(t *testing.T) {
	actor := &domain.Member{ID: "", Role: domain.RoleMember}
	ownerOnly := service.Capability{Owner: true}
	assert.False(t, ownerOnly.Permits(actor, "", nil))
}
