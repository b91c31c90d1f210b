package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/crm-timesheet-api/internal/constants"
	apierrors "github.com/yukikurage/crm-timesheet-api/internal/errors"
	"github.com/yukikurage/crm-timesheet-api/internal/models"
	"github.com/yukikurage/crm-timesheet-api/internal/services"
	"go.uber.org/zap"
)

const bearerPrefix = "Bearer "

// TokenVerifier validates a bearer token and returns its claims
type TokenVerifier interface {
	Verify(token string) (*services.Claims, error)
}

// SessionChecker rejects claims that were revoked server side
type SessionChecker interface {
	CheckSession(claims *services.Claims) error
}

// AuthOptions configures a guard. An empty Roles list admits any authenticated caller.
// With Required unset, requests without an Authorization header pass through anonymously.
type AuthOptions struct {
	Required bool
	Roles    []models.Role
}

// Gate guards routes with bearer claims and role allow-lists
type Gate struct {
	tokens   TokenVerifier
	sessions SessionChecker
	log      *zap.Logger
}

// NewGate creates a Gate. sessions may be nil to keep claims stateless.
func NewGate(tokens TokenVerifier, sessions SessionChecker, log *zap.Logger) *Gate {
	return &Gate{
		tokens:   tokens,
		sessions: sessions,
		log:      log,
	}
}

// Require admits authenticated callers holding one of roles, or any role when none are given
func (g *Gate) Require(roles ...models.Role) gin.HandlerFunc {
	return g.Guard(AuthOptions{Required: true, Roles: roles})
}

// Optional attaches claims when a token is sent but also admits anonymous callers
func (g *Gate) Optional() gin.HandlerFunc {
	return g.Guard(AuthOptions{})
}

// Guard returns the middleware for opts
func (g *Gate) Guard(opts AuthOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" && !opts.Required {
			c.Next()
			return
		}

		token, ok := bearerToken(header)
		if !ok {
			apierrors.Unauthorized(c, "Missing or malformed bearer token")
			return
		}

		claims, err := g.tokens.Verify(token)
		if err != nil {
			if errors.Is(err, services.ErrTokenExpired) {
				g.log.Debug("rejected expired token", zap.String("path", c.Request.URL.Path))
				apierrors.UnauthorizedWithCode(c, apierrors.ErrCodeTokenExpired, "Token expired")
				return
			}
			g.log.Debug("rejected invalid token", zap.String("path", c.Request.URL.Path), zap.Error(err))
			apierrors.UnauthorizedWithCode(c, apierrors.ErrCodeInvalidToken, "Invalid token")
			return
		}

		if g.sessions != nil {
			if err := g.sessions.CheckSession(claims); err != nil {
				if errors.Is(err, services.ErrSessionRevoked) {
					g.log.Debug("rejected revoked session", zap.Uint64("user_id", claims.ID))
					apierrors.UnauthorizedWithCode(c, apierrors.ErrCodeInvalidToken, err.Error())
					return
				}
				g.log.Error("session check failed", zap.Error(err))
				apierrors.InternalError(c, "")
				return
			}
		}

		if !RoleAllowed(claims.Role, opts.Roles) {
			apierrors.Forbidden(c, "")
			return
		}

		c.Set(constants.ContextKeyClaims, claims)
		c.Next()
	}
}

// RoleAllowed reports whether role is in allowed, ignoring case. An empty list allows every role.
func RoleAllowed(role string, allowed []models.Role) bool {
	if len(allowed) == 0 {
		return true
	}

	parsed, ok := models.ParseRole(role)
	if !ok {
		return false
	}
	for _, r := range allowed {
		if r == parsed {
			return true
		}
	}
	return false
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// GetClaims retrieves the verified claims from context
func GetClaims(c *gin.Context) (*services.Claims, bool) {
	value, exists := c.Get(constants.ContextKeyClaims)
	if !exists {
		return nil, false
	}

	claims, ok := value.(*services.Claims)
	return claims, ok
}

// GetActor builds the service-layer caller from the verified claims
func GetActor(c *gin.Context) (services.Actor, bool) {
	claims, ok := GetClaims(c)
	if !ok {
		return services.Actor{}, false
	}

	role, ok := models.ParseRole(claims.Role)
	if !ok {
		role = models.Role(claims.Role)
	}

	return services.Actor{
		UserID:   claims.ID,
		Username: claims.Username,
		Role:     role,
	}, true
}
