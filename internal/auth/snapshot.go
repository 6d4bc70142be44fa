package auth

// Snapshot is the guard's read-only view of session state. Loading is true
// while the identity provider has not resolved the session yet; Roles is
// only meaningful when Authenticated is true.
type Snapshot struct {
	Loading       bool
	Authenticated bool
	Subject       string
	Username      string
	Roles         []Role
}

func (s Snapshot) HasRole(r Role) bool {
	for _, have := range s.Roles {
		if have == r {
			return true
		}
	}
	return false
}

func (s Snapshot) IsAdmin() bool  { return s.HasRole(RoleAdmin) }
func (s Snapshot) IsClient() bool { return s.HasRole(RoleClient) }
