package auth

import "relay/internal/domain"

// Action is a named operation a caller may be permitted to perform.
type Action string

const (
	ActionSendBroadcast  Action = "send_broadcast"
	ActionSendVoice      Action = "send_voice"
	ActionModerate       Action = "moderate"
	ActionViewStats      Action = "view_stats"
	ActionAcknowledge    Action = "acknowledge"
	ActionRunScheduler   Action = "run_scheduler"
	ActionManageContacts Action = "manage_contacts"
	ActionReadInbox      Action = "read_inbox"
	ActionReply          Action = "reply"
)

// capabilities maps each role to the set of actions it may perform. The map
// is consulted once per request; roles absent from the map can do nothing.
var capabilities = map[domain.Role]map[Action]struct{}{
	domain.RolePrincipal: actionSet(
		ActionSendBroadcast,
		ActionSendVoice,
		ActionModerate,
		ActionViewStats,
		ActionAcknowledge,
		ActionRunScheduler,
		ActionManageContacts,
		ActionReadInbox,
		ActionReply,
	),
	domain.RoleVicePrincipal: actionSet(
		ActionSendBroadcast,
		ActionSendVoice,
		ActionModerate,
		ActionViewStats,
		ActionAcknowledge,
		ActionReadInbox,
		ActionReply,
	),
	domain.RoleHOD: actionSet(
		ActionAcknowledge,
		ActionReadInbox,
		ActionReply,
	),
	domain.RoleStaff: actionSet(
		ActionAcknowledge,
		ActionReadInbox,
		ActionReply,
	),
}

func actionSet(actions ...Action) map[Action]struct{} {
	set := make(map[Action]struct{}, len(actions))
	for _, action := range actions {
		set[action] = struct{}{}
	}
	return set
}

// Can reports whether the role is permitted to perform the action.
func Can(role domain.Role, action Action) bool {
	actions, ok := capabilities[role]
	if !ok {
		return false
	}
	_, ok = actions[action]
	return ok
}
