package domain

import "testing"

func TestValidateRouteTables(t *testing.T) {
	if err := ValidateRouteTables(); err != nil {
		t.Fatalf("static route tables are invalid: %v", err)
	}
}

func TestRoleAllowsPath_Matrix(t *testing.T) {
	// Every role must reach its own landing route and nothing under another
	// role's section; ADMIN reaches everything.
	for _, role := range Roles {
		if !RoleAllowsPath(role, RoleLandingRoute[role]) {
			t.Errorf("role %s cannot reach its own landing route %s", role, RoleLandingRoute[role])
		}
		for _, other := range Roles {
			if other == role {
				continue
			}
			allowed := RoleAllowsPath(role, RoleLandingRoute[other])
			if role == RoleAdmin {
				if !allowed {
					t.Errorf("ADMIN denied %s", RoleLandingRoute[other])
				}
			} else if allowed {
				t.Errorf("role %s may reach %s section", role, other)
			}
		}
	}
}

func TestRoleAllowsPath_PrefixBoundary(t *testing.T) {
	if !RoleAllowsPath(RoleDoctor, "/doctor/consultation/123") {
		t.Error("sub-path of an allowed prefix must match")
	}
	// "/doctors" shares the prefix string but is a different section.
	if RoleAllowsPath(RoleDoctor, "/doctors") {
		t.Error("prefix match must stop at a path segment boundary")
	}
	if RoleAllowsPath(RoleTriage, "/triageX/queue") {
		t.Error("prefix match must stop at a path segment boundary")
	}
}

func TestPathIsRoleScoped(t *testing.T) {
	for _, scoped := range []string{"/doctor", "/doctor/queue", "/registration/new", "/admin/users"} {
		if !PathIsRoleScoped(scoped) {
			t.Errorf("%s should be role-scoped", scoped)
		}
	}
	for _, open := range []string{"/profile", "/about", "/doctors"} {
		if PathIsRoleScoped(open) {
			t.Errorf("%s should not be role-scoped", open)
		}
	}
}
