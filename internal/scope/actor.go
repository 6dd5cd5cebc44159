package scope

import "github.com/google/uuid"

// Role splits actors into branch-bound staff and global (head-office) users.
// Only global actors may ever see data across branches.
type Role string

const (
	RoleBranch Role = "branch"
	RoleGlobal Role = "global"
)

// Actor is the authenticated principal for one request. It is supplied by the
// authentication layer (JWT claims) — this package never derives it.
type Actor struct {
	ID           uuid.UUID
	Role         Role
	HomeBranchID *uuid.UUID
	// AuthorizedBranchIDs is the set of branches the actor may touch.
	// Invariant: for branch-bound actors, HomeBranchID is a member when set.
	AuthorizedBranchIDs []uuid.UUID
}

// IsGlobal reports whether the actor holds the global role.
func (a Actor) IsGlobal() bool { return a.Role == RoleGlobal }

// Authorized reports membership of id in the actor's authorized set.
func (a Actor) Authorized(id uuid.UUID) bool {
	for _, b := range a.AuthorizedBranchIDs {
		if b == id {
			return true
		}
	}
	return false
}

// Normalize repairs the home-branch invariant: a branch-bound actor whose home
// branch is missing from the authorized set gets it appended. Called once by
// the auth middleware when the actor is built from claims.
func (a Actor) Normalize() Actor {
	if a.HomeBranchID != nil && !a.Authorized(*a.HomeBranchID) {
		a.AuthorizedBranchIDs = append(a.AuthorizedBranchIDs, *a.HomeBranchID)
	}
	return a
}

// BypassScope is the explicit side-channel for the global "all branches" view.
// It travels alongside the requested branch id, never inside a filter payload,
// so data predicates and control flags can never be conflated.
type BypassScope bool
