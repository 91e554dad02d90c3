package utils

import (
	"errors"
	"strings"
	"time"

	"learnhub/backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrMissingToken = errors.New("missing authorization token")
	ErrInvalidToken = errors.New("invalid token")
)

// TokenClaims is the decoded payload of an access token.
type TokenClaims struct {
	UserID uint
	Role   string
}

func GenerateJWTToken(userID uint, role string, cfg *config.Config) (string, error) {
	ttl := cfg.JWTTTL
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

func ParseJWTToken(tokenString string, cfg *config.Config) (TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return TokenClaims{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return TokenClaims{}, ErrInvalidToken
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok || userIDFloat <= 0 {
		return TokenClaims{}, ErrInvalidToken
	}
	role, _ := claims["role"].(string)

	return TokenClaims{UserID: uint(userIDFloat), Role: role}, nil
}

// ExtractToken reads the token from the Authorization header ("Bearer <t>"
// or a bare token) and falls back to the session cookie.
func ExtractToken(c *fiber.Ctx, cfg *config.Config) (string, error) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if header != "" {
		fields := strings.Fields(header)
		switch {
		case len(fields) == 1:
			return strings.Trim(fields[0], "\"'"), nil
		case len(fields) == 2 && strings.EqualFold(fields[0], "Bearer"):
			return strings.Trim(fields[1], "\"'"), nil
		default:
			return "", ErrInvalidToken
		}
	}
	if tok := strings.TrimSpace(c.Cookies(cfg.CookieName)); tok != "" {
		return tok, nil
	}
	return "", ErrMissingToken
}

func ExtractClaimsFromRequest(c *fiber.Ctx, cfg *config.Config) (TokenClaims, error) {
	tokenString, err := ExtractToken(c, cfg)
	if err != nil {
		return TokenClaims{}, err
	}
	return ParseJWTToken(tokenString, cfg)
}
