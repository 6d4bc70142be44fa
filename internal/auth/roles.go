package auth

// Role is the enumerated form of a provider-issued role claim. Claims are
// parsed once at the token boundary; strings we do not recognize map to
// RoleUnknown instead of being dropped, so a misconfigured realm shows up
// in logs rather than as a silent permission hole.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleClient  Role = "CLIENT"
	RoleUnknown Role = "UNKNOWN"
)

// ParseRole maps a raw claim string to a Role. Matching is exact and
// case-sensitive, same as the provider issues them.
func ParseRole(s string) Role {
	switch s {
	case "ADMIN":
		return RoleAdmin
	case "CLIENT":
		return RoleClient
	default:
		return RoleUnknown
	}
}

// ParseRoles converts raw claim strings, deduplicating the result.
func ParseRoles(raw []string) []Role {
	seen := make(map[Role]bool, len(raw))
	roles := make([]Role, 0, len(raw))
	for _, s := range raw {
		r := ParseRole(s)
		if seen[r] {
			continue
		}
		seen[r] = true
		roles = append(roles, r)
	}
	return roles
}
