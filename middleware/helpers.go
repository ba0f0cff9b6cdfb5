package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
	"github.com/ssched/scrimmage-api/models"
)

const (
	jwtClaimUserID = "user_id"
	jwtClaimRoles  = "roles"
)

func GetUserIDFromContext(ctx context.Context) (int, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return 0, errors.New("user claims not found in context or invalid type")
	}

	userIDClaim, ok := claims[jwtClaimUserID]
	if !ok {
		return 0, fmt.Errorf("missing '%s' claim in token", jwtClaimUserID)
	}

	// JSON-числа после разбора токена приходят как float64.
	userIDFloat, ok := userIDClaim.(float64)
	if !ok {
		return 0, fmt.Errorf("invalid type for '%s' claim: expected number, got %T", jwtClaimUserID, userIDClaim)
	}
	if userIDFloat != float64(int(userIDFloat)) {
		return 0, fmt.Errorf("'%s' claim is not an integer: %f", jwtClaimUserID, userIDFloat)
	}

	userID := int(userIDFloat)
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user ID value in '%s' claim: %d", jwtClaimUserID, userID)
	}

	return userID, nil
}

func GetUserRolesFromContext(ctx context.Context) (models.RoleSet, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return nil, errors.New("user claims not found in context or invalid type")
	}

	rolesClaim, ok := claims[jwtClaimRoles]
	if !ok {
		return nil, fmt.Errorf("missing '%s' claim in token", jwtClaimRoles)
	}

	rolesStr, ok := rolesClaim.(string)
	if !ok {
		return nil, fmt.Errorf("invalid type for '%s' claim: expected string, got %T", jwtClaimRoles, rolesClaim)
	}

	return models.ParseRoleSet(rolesStr), nil
}
