package server

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"writescape/internal/cache"
	"writescape/internal/middleware"
	"writescape/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer   = "writescape-api"
	tokenAudience = "writescape-client"

	defaultTokenTTL = 720 * time.Hour
)

var errNoTicketStore = errors.New("ticket store unavailable")

// principal is the authenticated caller of a request.
type principal struct {
	userID  uint
	jti     string
	expires time.Time
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, appErr := s.authenticate(c)
		if appErr != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, appErr)
		}
		setPrincipal(c, p)
		return c.Next()
	}
}

// OptionalAuth identifies the caller when valid credentials are present
// and otherwise lets the request through anonymously.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if p, appErr := s.authenticate(c); appErr == nil {
			setPrincipal(c, p)
		}
		return c.Next()
	}
}

func setPrincipal(c *fiber.Ctx, p *principal) {
	c.Locals("userID", p.userID)
	if p.jti != "" {
		c.Locals("jti", p.jti)
		c.Locals("tokenExpires", p.expires)
	}
	// Sync to UserContext for logging and downstream services
	c.SetUserContext(middleware.WithUserID(c.UserContext(), p.userID))
}

// authenticate tries, in order, a one-time websocket ticket, a bearer
// token, and on websocket paths a `token` query parameter.
func (s *Server) authenticate(c *fiber.Ctx) (*principal, *models.AppError) {
	ctx := c.UserContext()

	if ticket := c.Query("ticket"); ticket != "" {
		userID, err := s.consumeWSTicket(ctx, ticket)
		if err != nil {
			return nil, models.NewUnauthorizedError("Invalid or expired WebSocket ticket")
		}
		return &principal{userID: userID}, nil
	}

	tokenString := ""
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		scheme, value, ok := strings.Cut(header, " ")
		if ok && scheme == "Bearer" {
			tokenString = strings.TrimSpace(value)
		}
	}
	if tokenString == "" && strings.HasPrefix(c.Path(), "/api/ws") {
		tokenString = c.Query("token")
	}
	if tokenString == "" {
		return nil, models.NewUnauthorizedError("Authorization required")
	}

	p, appErr := s.parseToken(tokenString)
	if appErr != nil {
		return nil, appErr
	}

	if p.jti != "" && s.redis != nil {
		revoked, err := s.redis.Exists(ctx, cache.RevokedTokenKey(p.jti)).Result()
		if err == nil && revoked > 0 {
			return nil, models.NewUnauthorizedError("Token has been revoked")
		}
	}
	return p, nil
}

func (s *Server) parseToken(tokenString string) (*principal, *models.AppError) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid token claims")
	}
	if issuer, _ := claims["iss"].(string); issuer != tokenIssuer {
		return nil, models.NewUnauthorizedError("Invalid token issuer")
	}
	if audience, _ := claims["aud"].(string); audience != tokenAudience {
		return nil, models.NewUnauthorizedError("Invalid token audience")
	}

	sub, _ := claims["sub"].(string)
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return nil, models.NewUnauthorizedError("Invalid user ID in token")
	}

	p := &principal{userID: uint(userID)}
	p.jti, _ = claims["jti"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		p.expires = exp.Time
	}
	return p, nil
}

// consumeWSTicket redeems a ticket exactly once.
func (s *Server) consumeWSTicket(ctx context.Context, ticket string) (uint, error) {
	if s.redis == nil {
		return 0, errNoTicketStore
	}
	raw, err := s.redis.GetDel(ctx, cache.WSTicketKey(ticket)).Result()
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func (s *Server) tokenTTL() time.Duration {
	if s.config.TokenTTLHours > 0 {
		return time.Duration(s.config.TokenTTLHours) * time.Hour
	}
	return defaultTokenTTL
}

// requireFeature answers 404 when the flag is off for the caller.
func (s *Server) requireFeature(flag string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !s.featureFlags.Enabled(flag, currentUserID(c)) {
			return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundMessage("Not found"))
		}
		return c.Next()
	}
}

func requireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}
