package domain

// Actor identifies the authenticated caller of a service operation. It is
// filled from the JWT claims by the API middleware.
type Actor struct {
	UserID uint
	Email  string
	Role   string
}

// IsAdmin reports whether the actor carries the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == "admin"
}
