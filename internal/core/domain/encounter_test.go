package domain

import "testing"

func TestEncounterStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from EncounterStatus
		to   EncounterStatus
		want bool
	}{
		{StatusWaitTriage, StatusTriaged, true},
		{StatusTriaged, StatusInConsult, true},
		{StatusInConsult, StatusCompleted, true},
		// one-directional: no going back
		{StatusTriaged, StatusWaitTriage, false},
		{StatusInConsult, StatusTriaged, false},
		// no skipping stages
		{StatusWaitTriage, StatusInConsult, false},
		{StatusWaitTriage, StatusCompleted, false},
		{StatusTriaged, StatusCompleted, false},
		// completed is terminal
		{StatusCompleted, StatusWaitTriage, false},
		{StatusCompleted, StatusInConsult, false},
		// self-transitions are not transitions
		{StatusTriaged, StatusTriaged, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestParseRole(t *testing.T) {
	for _, role := range Roles {
		got, ok := ParseRole(string(role))
		if !ok || got != role {
			t.Errorf("ParseRole(%q) = (%q, %v), want (%q, true)", role, got, ok, role)
		}
	}

	for _, bad := range []string{"", "admin", "doctor", "NURSE", "ADMIN "} {
		if _, ok := ParseRole(bad); ok {
			t.Errorf("ParseRole(%q) accepted an invalid role", bad)
		}
	}
}
