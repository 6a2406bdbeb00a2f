package middelware

import (
	"encoding/json"
	"net/http"

	"orgconsole/models"
	"orgconsole/utils/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// CSRFCookieName names the cookie holding the masked CSRF secret
const CSRFCookieName = "orgconsole_csrf"

// CSRFMiddleware guards every state-changing console route
type CSRFMiddleware struct {
	config *models.Config
	logger logger.Logger
}

// NewCSRFMiddleware creates a new CSRF middleware
func NewCSRFMiddleware(cfg *models.Config, log logger.Logger) *CSRFMiddleware {
	return &CSRFMiddleware{
		config: cfg,
		logger: log,
	}
}

// Protect adapts gorilla/csrf to gin. Safe methods pass through and get a
// token for the template; other methods need a matching token.
func (m *CSRFMiddleware) Protect() gin.HandlerFunc {
	protect := csrf.Protect(
		[]byte(m.config.CSRFKey),
		csrf.Secure(m.config.SecureCookies),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.CookieName(CSRFCookieName),
		csrf.ErrorHandler(http.HandlerFunc(m.reject)),
	)

	return func(c *gin.Context) {
		passed := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		})

		r := c.Request
		if !m.config.SecureCookies {
			r = csrf.PlaintextHTTPRequest(r)
		}
		protect(next).ServeHTTP(c.Writer, r)
		if !passed {
			c.Abort()
		}
	}
}

func (m *CSRFMiddleware) reject(w http.ResponseWriter, r *http.Request) {
	reason := csrf.FailureReason(r)
	m.logger.Warnf("CSRF check failed for %s %s: %v", r.Method, r.URL.Path, reason)

	details := "request could not be verified"
	if reason != nil {
		details = reason.Error()
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(models.APIResponse{
		Status:  "error",
		Code:    http.StatusForbidden,
		Message: "Your session form expired, please reload the page",
		Error: &models.APIError{
			Type:    "CSRFError",
			Details: details,
		},
	})
}
