package scope

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func branchActor(home uuid.UUID, authorized ...uuid.UUID) Actor {
	return Actor{
		ID:                  uuid.New(),
		Role:                RoleBranch,
		HomeBranchID:        &home,
		AuthorizedBranchIDs: authorized,
	}.Normalize()
}

func TestResolve_GlobalBypassIsUnrestricted(t *testing.T) {
	actor := Actor{ID: uuid.New(), Role: RoleGlobal}
	sc := Resolve(actor, nil, BypassScope(true))
	assert.Equal(t, KindUnrestricted, sc.Kind())
}

func TestResolve_BranchActorCannotBypass(t *testing.T) {
	home := uuid.New()
	actor := branchActor(home)

	sc := Resolve(actor, nil, BypassScope(true))

	// The flag is ignored for branch-bound actors; resolution continues.
	assert.Equal(t, KindExactBranch, sc.Kind())
	assert.True(t, sc.Contains(home))
}

func TestResolve_RequestedBranchInAuthorizedSet(t *testing.T) {
	home, other := uuid.New(), uuid.New()
	actor := branchActor(home, home, other)

	sc := Resolve(actor, &other, BypassScope(false))

	assert.Equal(t, KindExactBranch, sc.Kind())
	assert.True(t, sc.Contains(other))
	assert.False(t, sc.Contains(home))
}

func TestResolve_RequestedBranchOutsideSetIsForbidden(t *testing.T) {
	home, foreign := uuid.New(), uuid.New()
	actor := branchActor(home)

	sc := Resolve(actor, &foreign, BypassScope(false))

	assert.Equal(t, KindForbidden, sc.Kind())
	assert.False(t, sc.Contains(foreign))
}

func TestResolve_GlobalMayRequestAnyBranch(t *testing.T) {
	branch := uuid.New()
	actor := Actor{ID: uuid.New(), Role: RoleGlobal}

	sc := Resolve(actor, &branch, BypassScope(false))

	assert.Equal(t, KindExactBranch, sc.Kind())
	assert.True(t, sc.Contains(branch))
}

func TestResolve_GlobalWithoutHomeSeesEverything(t *testing.T) {
	actor := Actor{ID: uuid.New(), Role: RoleGlobal}
	sc := Resolve(actor, nil, BypassScope(false))
	assert.Equal(t, KindUnrestricted, sc.Kind())
}

func TestResolve_MultiBranchActorGetsBranchSet(t *testing.T) {
	home, other := uuid.New(), uuid.New()
	actor := branchActor(home, home, other)

	sc := Resolve(actor, nil, BypassScope(false))

	assert.Equal(t, KindBranchSet, sc.Kind())
	assert.True(t, sc.Contains(home))
	assert.True(t, sc.Contains(other))
	assert.False(t, sc.Contains(uuid.New()))
}

func TestResolve_SingleBranchCollapsesToExact(t *testing.T) {
	home := uuid.New()
	actor := branchActor(home)

	sc := Resolve(actor, nil, BypassScope(false))

	assert.Equal(t, KindExactBranch, sc.Kind())
}

func TestResolve_EmptyAuthorizedSetIsForbidden(t *testing.T) {
	actor := Actor{ID: uuid.New(), Role: RoleBranch}
	sc := Resolve(actor, nil, BypassScope(false))
	assert.Equal(t, KindForbidden, sc.Kind())
}

func TestResolve_ZeroValueScopeDeniesEverything(t *testing.T) {
	var sc EffectiveScope
	assert.Equal(t, KindForbidden, sc.Kind())
	assert.False(t, sc.Contains(uuid.New()))
}

func TestNormalize_AppendsMissingHomeBranch(t *testing.T) {
	home := uuid.New()
	actor := Actor{ID: uuid.New(), Role: RoleBranch, HomeBranchID: &home}.Normalize()
	assert.True(t, actor.Authorized(home))

	// Idempotent: no duplicate entry.
	again := actor.Normalize()
	assert.Len(t, again.AuthorizedBranchIDs, 1)
}
