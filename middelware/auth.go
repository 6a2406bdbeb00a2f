package middelware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"orgconsole/models"
	"orgconsole/services"
	"orgconsole/utils/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ConsoleKey is the gin context key holding the request's *services.Console
const ConsoleKey = "console"

var errInvalidSession = errors.New("invalid session cookie")

// SessionManager binds browsers to consoles through a signed cookie
type SessionManager struct {
	Config   *models.Config
	Logger   logger.Logger
	Registry *services.Registry
}

// NewSessionManager creates a new session manager
func NewSessionManager(cfg *models.Config, log logger.Logger, registry *services.Registry) *SessionManager {
	return &SessionManager{
		Config:   cfg,
		Logger:   log,
		Registry: registry,
	}
}

// Issue signs a session cookie value for the console and backend token
func (s *SessionManager) Issue(sessionID, token string) (string, error) {
	now := time.Now()
	claims := models.SessionClaims{
		SessionID: sessionID,
		Token:     token,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   sessionID,
			Issuer:    s.Config.AppName,
			Audience:  jwt.ClaimStrings{s.Config.AppName},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.Config.SessionTTL)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.Config.SessionSecret))
	if err != nil {
		s.Logger.Errorf("Failed to sign session cookie: %v", err)
		return "", err
	}
	return signed, nil
}

// Parse validates a session cookie value and returns its claims
func (s *SessionManager) Parse(value string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(value, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if method, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		} else if method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("invalid signing algorithm: %v", method.Alg())
		}
		return []byte(s.Config.SessionSecret), nil
	},
		jwt.WithIssuer(s.Config.AppName),
		jwt.WithAudience(s.Config.AppName),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, errInvalidSession
	}
	return claims, nil
}

// Middleware resolves the console for the request, creating one when the
// cookie is missing, invalid or points at an evicted console. An evicted
// console is recreated with the token carried by the cookie.
func (s *SessionManager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			console *services.Console
			token   string
		)

		if value, err := c.Cookie(s.Config.SessionCookieName); err == nil && value != "" {
			claims, err := s.Parse(value)
			if err != nil {
				s.Logger.Debugf("Discarding session cookie: %v", err)
			} else if existing, ok := s.Registry.Get(claims.SessionID); ok {
				console = existing
			} else {
				token = claims.Token
			}
		}

		if console == nil {
			console = s.Registry.Create(c.Request.Context(), token)
			s.Logger.Infof("Started console %s", console.ID())
			if err := s.Persist(c, console); err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, models.APIResponse{
					Status:  "error",
					Code:    http.StatusInternalServerError,
					Message: "Failed to start session",
					Error: &models.APIError{
						Type:    "SessionError",
						Details: err.Error(),
					},
				})
				return
			}
		}

		c.Set(ConsoleKey, console)
		c.Next()
	}
}

// Persist re-issues the session cookie so it reflects the console's current token
func (s *SessionManager) Persist(c *gin.Context, console *services.Console) error {
	value, err := s.Issue(console.ID(), console.Token())
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Config.SessionCookieName, value, int(s.Config.SessionTTL.Seconds()), "/", "", s.Config.SecureCookies, true)
	return nil
}

// ConsoleFrom returns the console the middleware attached to c
func ConsoleFrom(c *gin.Context) (*services.Console, bool) {
	v, ok := c.Get(ConsoleKey)
	if !ok {
		return nil, false
	}
	console, ok := v.(*services.Console)
	return console, ok
}
