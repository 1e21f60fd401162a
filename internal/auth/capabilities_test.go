package auth

import (
	"testing"

	"relay/internal/domain"
)

func TestCan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		role   domain.Role
		action Action
		want   bool
	}{
		{name: "principal sends broadcasts", role: domain.RolePrincipal, action: ActionSendBroadcast, want: true},
		{name: "principal runs scheduler", role: domain.RolePrincipal, action: ActionRunScheduler, want: true},
		{name: "vice principal moderates", role: domain.RoleVicePrincipal, action: ActionModerate, want: true},
		{name: "vice principal cannot run scheduler", role: domain.RoleVicePrincipal, action: ActionRunScheduler, want: false},
		{name: "hod acknowledges", role: domain.RoleHOD, action: ActionAcknowledge, want: true},
		{name: "hod cannot send broadcasts", role: domain.RoleHOD, action: ActionSendBroadcast, want: false},
		{name: "staff reads inbox", role: domain.RoleStaff, action: ActionReadInbox, want: true},
		{name: "staff cannot moderate", role: domain.RoleStaff, action: ActionModerate, want: false},
		{name: "unknown role can do nothing", role: domain.Role("JANITOR"), action: ActionReadInbox, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Can(tt.role, tt.action); got != tt.want {
				t.Fatalf("Can(%q, %q) = %v, want %v", tt.role, tt.action, got, tt.want)
			}
		})
	}
}
