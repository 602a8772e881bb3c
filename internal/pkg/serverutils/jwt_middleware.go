package serverutils

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const LocalUserID = "user_id"

// JwtMiddleware rejects requests without a valid bearer token
func JwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		userID, err := identityFromHeader(ctx.Get("Authorization"), secret)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, err.Error()))
		}
		ctx.Locals(LocalUserID, userID)
		return ctx.Next()
	}
}

// OptionalJwtMiddleware records the token identity when one is present and valid.
// Requests without a token pass through unchanged.
func OptionalJwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if secret == "" || ctx.Get("Authorization") == "" {
			return ctx.Next()
		}
		userID, err := identityFromHeader(ctx.Get("Authorization"), secret)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, err.Error()))
		}
		ctx.Locals(LocalUserID, userID)
		return ctx.Next()
	}
}

// UserIDFromLocals returns the identity set by one of the middlewares, if any
func UserIDFromLocals(ctx *fiber.Ctx) string {
	if v, ok := ctx.Locals(LocalUserID).(string); ok {
		return v
	}
	return ""
}

func identityFromHeader(authHeader, secret string) (string, error) {
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return "", fmt.Errorf("Missing token")
	}
	return IdentityFromToken(authHeader[7:], secret)
}

// IdentityFromToken validates an HMAC-signed token and returns its user_id claim
func IdentityFromToken(tokenStr, secret string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("Invalid claims")
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("Invalid claims")
	}
	return userID, nil
}
