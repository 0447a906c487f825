package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	organizationdomain "github.com/fieldline/fieldline/internal/organization/domain"
)

type createOrgRequest struct {
	Name string `json:"name"`
}

func (s *Server) CreateOrg(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	org, err := s.organizationSvc.Create(c.Request.Context(), userID, organizationdomain.CreateOrganizationRequest{
		Name: strings.TrimSpace(req.Name),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": org})
}

func (s *Server) GetOrg(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil || id == 0 {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid organization id"))
		return
	}

	org, err := s.organizationSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": org})
}

func (s *Server) ListUserOrgs(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	orgs, err := s.organizationSvc.ListForUser(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orgs})
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (s *Server) AddOrgMember(c *gin.Context) {
	orgID, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil || orgID == 0 {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid organization id"))
		return
	}

	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil || userID == 0 {
		AbortWithError(c, newValidationError("user_id", "invalid_user_id", "invalid user id"))
		return
	}

	member, err := s.organizationSvc.AddMember(c.Request.Context(), orgID, userID, strings.TrimSpace(req.Role))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": member})
}

func (s *Server) UseOrg(c *gin.Context) {
	session := s.sessionFromContext(c)
	if session == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	orgID, err := snowflake.ParseString(strings.TrimSpace(c.Param("orgId")))
	if err != nil || orgID == 0 {
		AbortWithError(c, newValidationError("orgId", "invalid_org_id", "invalid organization id"))
		return
	}

	// Only members may pin an org on their session.
	if _, err := s.organizationSvc.MemberRole(c.Request.Context(), orgID, session.UserID); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authSvc.SwitchActiveOrg(c.Request.Context(), session.ID, int64(orgID)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func isOrganizationValidationError(err error) bool {
	switch err {
	case organizationdomain.ErrInvalidName,
		organizationdomain.ErrInvalidUser,
		organizationdomain.ErrInvalidRole:
		return true
	default:
		return false
	}
}
