package model

import "testing"

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role     string
		minimum  string
		expected bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleUser, true},
		{RoleUser, RoleAdmin, false},
		{RoleUser, RoleUser, true},
		// Unknown roles fail-closed.
		{"unknown", RoleUser, false},
		{RoleAdmin, "unknown", false},
		{"", "", false},
		{"", RoleUser, false},
	}

	for _, tt := range tests {
		got := RoleAtLeast(tt.role, tt.minimum)
		if got != tt.expected {
			t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.minimum, got, tt.expected)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}

func TestValidProjectStatus(t *testing.T) {
	for _, s := range []string{ProjectStatusDraft, ProjectStatusActive, ProjectStatusCompleted, ProjectStatusCancelled} {
		if !ValidProjectStatus(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if ValidProjectStatus("archived") {
		t.Error("expected unknown status to be invalid")
	}
}

func TestIdentityAuthenticated(t *testing.T) {
	if (Identity{}).Authenticated() {
		t.Error("zero identity must be anonymous")
	}
	if !(Identity{UserID: 3, Username: "ana"}).Authenticated() {
		t.Error("identity with user id must be authenticated")
	}
}
