package domain

import (
	"errors"
	"testing"
)

func TestParseTargetGroupFromString(t *testing.T) {
	t.Parallel()

	got, err := ParseTargetGroupFromString(" both ")
	if err != nil {
		t.Fatalf("ParseTargetGroupFromString() unexpected error = %v", err)
	}
	if got != TargetGroupBoth {
		t.Fatalf("ParseTargetGroupFromString() = %s, want %s", got, TargetGroupBoth)
	}

	_, err = ParseTargetGroupFromString("everyone")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("ParseTargetGroupFromString() error = %v, want ErrValidation", err)
	}
}

func TestTargetGroupGroupNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		group TargetGroup
		want  []string
	}{
		{TargetGroupHOD, []string{"HOD"}},
		{TargetGroupStaff, []string{"STAFF"}},
		{TargetGroupBoth, []string{"HOD", "STAFF"}},
	}

	for _, tt := range tests {
		got := tt.group.GroupNames()
		if len(got) != len(tt.want) {
			t.Fatalf("GroupNames(%s) = %v, want %v", tt.group, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("GroupNames(%s) = %v, want %v", tt.group, got, tt.want)
			}
		}
	}
}

func TestParseRoleFromString(t *testing.T) {
	t.Parallel()

	got, err := ParseRoleFromString(" vice_principal ")
	if err != nil {
		t.Fatalf("ParseRoleFromString() unexpected error = %v", err)
	}
	if got != RoleVicePrincipal {
		t.Fatalf("ParseRoleFromString() = %s, want %s", got, RoleVicePrincipal)
	}

	_, err = ParseRoleFromString("janitor")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("ParseRoleFromString() error = %v, want ErrValidation", err)
	}
}

func TestVoiceMessageValidate(t *testing.T) {
	t.Parallel()

	valid := VoiceMessage{
		SenderName:  "principal",
		SenderRole:  RolePrincipal,
		TargetGroup: TargetGroupBoth,
		Priority:    PriorityNormal,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(m *VoiceMessage)
	}{
		{name: "missing sender", mutate: func(m *VoiceMessage) { m.SenderName = " " }},
		{name: "invalid role", mutate: func(m *VoiceMessage) { m.SenderRole = "INTERN" }},
		{name: "invalid target group", mutate: func(m *VoiceMessage) { m.TargetGroup = "NOBODY" }},
		{name: "invalid priority", mutate: func(m *VoiceMessage) { m.Priority = "ASAP" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := valid
			tt.mutate(&m)
			if err := m.Validate(); !errors.Is(err, ErrValidation) {
				t.Fatalf("Validate() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestBoardMessageValidate(t *testing.T) {
	t.Parallel()

	empty := BoardMessage{TargetRole: "STAFF"}
	if err := empty.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("Validate() error = %v, want ErrValidation for empty body", err)
	}

	audio := "https://files.example/audio.m4a"
	withAudio := BoardMessage{AudioURL: &audio, TargetRole: TargetRoleAll}
	if err := withAudio.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error = %v", err)
	}

	badRole := BoardMessage{Text: "hi", TargetRole: "EVERYBODY"}
	if err := badRole.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("Validate() error = %v, want ErrValidation for target role", err)
	}
}
