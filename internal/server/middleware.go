package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	authdomain "github.com/fieldline/fieldline/internal/auth/domain"
	"github.com/fieldline/fieldline/internal/orgcontext"
)

const (
	HeaderOrg = "X-Org-ID"

	contextUserIDKey  = "user_id"
	contextSessionKey = "session"
	contextOrgIDKey   = "org_id"
	contextRoleKey    = "member_role"
)

// AuthRequired authenticates the session cookie, falling back to a
// bearer token for API clients.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			token = bearerToken(c)
		}
		if strings.TrimSpace(token) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		session, err := s.authSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserIDKey, session.UserID)
		c.Set(contextSessionKey, session)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// OrgContext resolves the acting organization from the X-Org-ID header
// or the session's active org, verifies membership, and stores the org
// id on the request context for the service layer.
func (s *Server) OrgContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := s.sessionFromContext(c)
		if session == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		orgID, err := s.resolveOrgID(c, session)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		role, err := s.organizationSvc.MemberRole(c.Request.Context(), orgID, session.UserID)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextOrgIDKey, orgID)
		c.Set(contextRoleKey, role)
		c.Request = c.Request.WithContext(orgcontext.WithOrgID(c.Request.Context(), int64(orgID)))
		c.Next()
	}
}

func (s *Server) resolveOrgID(c *gin.Context, session *authdomain.Session) (snowflake.ID, error) {
	if raw := strings.TrimSpace(c.GetHeader(HeaderOrg)); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return 0, newValidationError("org_id", "invalid_org_id", "invalid organization id")
		}
		return id, nil
	}
	if session.ActiveOrgID != 0 {
		return snowflake.ID(session.ActiveOrgID), nil
	}
	if s.cfg.DefaultOrgID != 0 {
		return snowflake.ID(s.cfg.DefaultOrgID), nil
	}
	return 0, newValidationError("org_id", "missing_org_id", "organization id is required")
}

func (s *Server) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(contextRoleKey)
		for _, allowed := range roles {
			if strings.EqualFold(role, allowed) {
				c.Next()
				return
			}
		}
		AbortWithError(c, ErrForbidden)
	}
}

// AdvisoryRateLimit throttles the AI endpoints per organization.
func (s *Server) AdvisoryRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.advisoryLimiter.Enabled() {
			c.Next()
			return
		}
		orgID, ok := s.orgIDFromContext(c)
		if !ok {
			c.Next()
			return
		}
		allowed, err := s.advisoryLimiter.AllowOrg(c.Request.Context(), orgID.String())
		if err != nil {
			// Rate limiting is advisory here. Redis trouble must not take
			// the endpoints down.
			c.Next()
			return
		}
		if !allowed {
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

func (s *Server) sessionFromContext(c *gin.Context) *authdomain.Session {
	value, ok := c.Get(contextSessionKey)
	if !ok {
		return nil
	}
	session, ok := value.(*authdomain.Session)
	if !ok {
		return nil
	}
	return session
}

func (s *Server) userIDFromContext(c *gin.Context) (snowflake.ID, bool) {
	value, ok := c.Get(contextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := value.(snowflake.ID)
	return id, ok
}

func (s *Server) orgIDFromContext(c *gin.Context) (snowflake.ID, bool) {
	value, ok := c.Get(contextOrgIDKey)
	if !ok {
		return 0, false
	}
	id, ok := value.(snowflake.ID)
	return id, ok
}
