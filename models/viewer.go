package models

import "github.com/google/uuid"

type Role string

const (
	RoleUser   Role = "USER"
	RoleMentor Role = "MENTOR"
	RoleAdmin  Role = "ADMIN"
)

// Viewer is the identity behind a request: either Anonymous or Identified.
// Code that depends on the viewer switches on the concrete type.
type Viewer interface {
	viewer()
}

type Anonymous struct{}

type Identified struct {
	UserID uuid.UUID
	Role   Role
}

func (Anonymous) viewer()  {}
func (Identified) viewer() {}

// IsAdmin reports whether v is an identified admin.
func IsAdmin(v Viewer) bool {
	id, ok := v.(Identified)
	return ok && id.Role == RoleAdmin
}

// ViewerID returns the user id of an identified viewer.
func ViewerID(v Viewer) (uuid.UUID, bool) {
	id, ok := v.(Identified)
	if !ok {
		return uuid.Nil, false
	}
	return id.UserID, true
}
