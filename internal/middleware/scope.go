package middleware

import (
	"net/http"

	"machtrade/internal/apierror"
	"machtrade/internal/scope"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ActorKey = "actor"
	ScopeKey = "scope"

	// HeaderBranchID narrows the request to one branch the caller is
	// authorized for. HeaderBypassScope lifts branch scoping entirely; it is
	// only honored for global users.
	HeaderBranchID    = "X-Branch-ID"
	HeaderBypassScope = "X-Bypass-Scope"
)

// ResolveScope builds the actor from the JWT claims and computes the
// effective scope for the request. Runs after JWTAuth on every protected
// route, so handlers never decide visibility themselves.
func ResolveScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Authentication required"))
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token invalid or expired"))
			return
		}

		actor := scope.Actor{
			ID:   userID,
			Role: scope.Role(claims.Role),
		}
		if claims.HomeBranchID != nil {
			if id, err := uuid.Parse(*claims.HomeBranchID); err == nil {
				actor.HomeBranchID = &id
			}
		}
		for _, raw := range claims.BranchIDs {
			if id, err := uuid.Parse(raw); err == nil {
				actor.AuthorizedBranchIDs = append(actor.AuthorizedBranchIDs, id)
			}
		}
		actor = actor.Normalize()

		var requested *uuid.UUID
		if raw := c.GetHeader(HeaderBranchID); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, apierror.New("Invalid "+HeaderBranchID+" header"))
				return
			}
			requested = &id
		}

		bypass := scope.BypassScope(c.GetHeader(HeaderBypassScope) == "true")

		c.Set(ActorKey, actor)
		c.Set(ScopeKey, scope.Resolve(actor, requested, bypass))
		c.Next()
	}
}

// GetActor retrieves the typed actor from the Gin context.
func GetActor(c *gin.Context) scope.Actor {
	actor, _ := c.MustGet(ActorKey).(scope.Actor)
	return actor
}

// GetScope retrieves the effective scope from the Gin context.
func GetScope(c *gin.Context) scope.EffectiveScope {
	sc, _ := c.MustGet(ScopeKey).(scope.EffectiveScope)
	return sc
}
