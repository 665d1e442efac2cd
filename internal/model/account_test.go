package model

import "testing"

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role, minimum string
		want          bool
	}{
		{AccountRoleAdmin, AccountRoleAdmin, true},
		{AccountRoleAdmin, AccountRoleGateway, true},
		{AccountRoleGateway, AccountRoleGateway, true},
		{AccountRoleGateway, AccountRoleAdmin, false},
		{"unknown", AccountRoleGateway, false},
	}

	for _, tt := range tests {
		if got := RoleAtLeast(tt.role, tt.minimum); got != tt.want {
			t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.minimum, got, tt.want)
		}
	}
}
