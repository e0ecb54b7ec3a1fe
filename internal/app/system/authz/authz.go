// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/creatorhub/internal/app/system/auth"
	"github.com/dalemusser/creatorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a
// found flag. If no user is present in context or the user ID is malformed,
// it returns "visitor", "", NilObjectID, false, so ok=true always means a
// valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsManager reports whether the current request's user is a manager.
func IsManager(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleManager
}

// IsCreator reports whether the current request's user is a creator.
func IsCreator(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleCreator
}

// Capabilities are the role-derived flags consumers read alongside the
// current company state. Exactly one of the two is true for a known
// role: managers own, everyone else joins.
type Capabilities struct {
	CanOwnCompany  bool `json:"can_own_company"`
	CanJoinCompany bool `json:"can_join_company"`
}

// CapabilitiesFor derives capability flags from a platform role.
func CapabilitiesFor(role string) Capabilities {
	if strings.ToLower(role) == models.RoleManager {
		return Capabilities{CanOwnCompany: true}
	}
	return Capabilities{CanJoinCompany: true}
}
