package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/payamancoders/trustcheck/internal/config"
)

// preflightMaxAge lets browsers cache a preflight for ten minutes.
const preflightMaxAge = 600

// corsPolicy is the resolved form of the CORS_* settings for the job board and admin frontends.
type corsPolicy struct {
	origins     map[string]struct{}
	anyOrigin   bool
	credentials bool
	methods     string
	headers     string
}

func newCORSPolicy(cfg config.Config) corsPolicy {
	p := corsPolicy{
		origins:     make(map[string]struct{}, len(cfg.CORSAllowedOrigins)),
		credentials: cfg.CORSAllowCredentials,
		methods:     strings.Join(cfg.CORSAllowedMethods, ", "),
		headers:     strings.Join(cfg.CORSAllowedHeaders, ", "),
	}
	for _, o := range cfg.CORSAllowedOrigins {
		if o == "*" {
			p.anyOrigin = true
			continue
		}
		p.origins[canonicalOrigin(o)] = struct{}{}
	}
	return p
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin, if any.
// A wildcard is echoed as the request origin when credentials are enabled.
func (p corsPolicy) allowOrigin(origin string) (string, bool) {
	if _, ok := p.origins[canonicalOrigin(origin)]; ok {
		return origin, true
	}
	if !p.anyOrigin {
		return "", false
	}
	if p.credentials {
		return origin, true
	}
	return "*", true
}

func canonicalOrigin(origin string) string {
	return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(origin), "/"))
}

// CORS applies the configured cross-origin policy. Preflights are answered here and never reach
// the authenticated routes.
func CORS(cfg config.Config) gin.HandlerFunc {
	policy := newCORSPolicy(cfg)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}

		header := c.Writer.Header()
		header.Add("Vary", "Origin")
		preflight := c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != ""

		allowed, ok := policy.allowOrigin(origin)
		if !ok {
			if preflight {
				c.AbortWithStatus(http.StatusNoContent)
				return
			}
			c.Next()
			return
		}

		header.Set("Access-Control-Allow-Origin", allowed)
		header.Set("Access-Control-Expose-Headers", "X-Request-ID")
		if policy.credentials {
			header.Set("Access-Control-Allow-Credentials", "true")
		}

		if !preflight {
			c.Next()
			return
		}
		header.Set("Access-Control-Allow-Methods", policy.methods)
		header.Set("Access-Control-Allow-Headers", policy.headers)
		header.Set("Access-Control-Max-Age", strconv.Itoa(preflightMaxAge))
		c.AbortWithStatus(http.StatusNoContent)
	}
}
