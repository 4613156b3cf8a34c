package auth

// Scope is the ownership predicate applied to every order and invoice query.
// It is built before the fetch so rows outside it are never loaded.
type Scope struct {
	// All disables the owner filter.
	All bool
	// OwnerID restricts rows to those owned by this caller when All is false.
	OwnerID string
}

// ScopeFor returns the scope a caller may see.
func ScopeFor(c *Caller, privileged Privilege) Scope {
	if privileged != nil && privileged(c) {
		return Scope{All: true}
	}
	return Scope{OwnerID: c.ID}
}

// Unrestricted is used by operator tooling that runs outside any request.
func Unrestricted() Scope {
	return Scope{All: true}
}

// Allows reports whether a row owned by ownerID is inside the scope.
func (s Scope) Allows(ownerID string) bool {
	return s.All || (s.OwnerID != "" && s.OwnerID == ownerID)
}
