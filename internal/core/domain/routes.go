package domain

import (
	"fmt"
	"strings"
)

// RolePathPrefixes is the declarative authorization table: each role may
// navigate only under its listed path prefixes. ADMIN additionally matches
// every prefix (explicit bypass in RoleAllowsPath rather than listing each
// section here, so new sections cannot drift out of sync).
var RolePathPrefixes = map[Role][]string{
	RoleAdmin:        {"/admin"},
	RoleRegistration: {"/registration"},
	RoleTriage:       {"/triage"},
	RoleDoctor:       {"/doctor"},
	RoleLab:          {"/lab"},
	RolePharmacy:     {"/pharmacy"},
}

// RoleLandingRoute maps each role to its post-login landing path.
var RoleLandingRoute = map[Role]string{
	RoleAdmin:        "/admin",
	RoleRegistration: "/registration",
	RoleTriage:       "/triage",
	RoleDoctor:       "/doctor",
	RoleLab:          "/lab",
	RolePharmacy:     "/pharmacy",
}

// ValidateRouteTables checks the static tables at startup: every role must
// have a non-empty prefix list and a landing route inside its own set.
func ValidateRouteTables() error {
	for _, role := range Roles {
		prefixes := RolePathPrefixes[role]
		if len(prefixes) == 0 {
			return fmt.Errorf("role %s has no allowed path prefixes", role)
		}
		landing, ok := RoleLandingRoute[role]
		if !ok || landing == "" {
			return fmt.Errorf("role %s has no landing route", role)
		}
		if !matchesAny(landing, prefixes) {
			return fmt.Errorf("role %s landing route %s is outside its allowed prefixes", role, landing)
		}
	}
	return nil
}

// PathIsRoleScoped reports whether path falls under any role's section.
// Paths outside every section only require a valid session.
func PathIsRoleScoped(path string) bool {
	for _, prefixes := range RolePathPrefixes {
		if matchesAny(path, prefixes) {
			return true
		}
	}
	return false
}

// RoleAllowsPath reports whether the role may access the path. ADMIN matches
// every prefix; other roles match an entry exactly or as "<prefix>/...".
func RoleAllowsPath(role Role, path string) bool {
	if role == RoleAdmin {
		return true
	}
	return matchesAny(path, RolePathPrefixes[role])
}

func matchesAny(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
