package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	TwoFACode string `json:"two_fa_code"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (s *Server) handleLogin(c *gin.Context) {
	tenantID := c.GetHeader("X-Tenant-ID")
	if tenantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Tenant-ID header required"})
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !s.store.authenticate(tenantID, req.Email, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if code, needs2FA := s.cfg.TwoFACodes[req.Email]; needs2FA {
		if req.TwoFACode == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Second factor required", "requires_2fa": true})
			return
		}
		if req.TwoFACode != code {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid second factor"})
			return
		}
	}

	s.issueTokens(c, tenantID, req.Email)
}

func (s *Server) handleRefresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, ok := s.store.redeemRefresh(req.RefreshToken)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	s.issueTokens(c, rec.tenantID, rec.email)
}

func (s *Server) issueTokens(c *gin.Context, tenantID, email string) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":    email,
		"tenant": tenantID,
		"iat":    now.Unix(),
		"exp":    now.Add(s.cfg.TokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign token"})
		return
	}

	s.logger.Debug("issued token", zap.String("tenant", tenantID), zap.String("email", email))
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  token,
		RefreshToken: s.store.issueRefresh(tenantID, email),
		ExpiresIn:    int64(s.cfg.TokenTTL.Seconds()),
	})
}

// authRequired validates the bearer token and pins the request to the
// token's tenant. A mismatched X-Tenant-ID header is a 403: a caller may
// not borrow another tenant's token.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
			return
		}

		token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(s.cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid claims"})
			return
		}
		tenantID, _ := claims["tenant"].(string)
		email, _ := claims["sub"].(string)
		if tenantID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Tenant not found in token"})
			return
		}
		if header := c.GetHeader("X-Tenant-ID"); header != tenantID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Tenant mismatch"})
			return
		}

		c.Set("tenant_id", tenantID)
		c.Set("email", email)
		c.Next()
	}
}

type projectRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	TeamMembers []string `json:"team_members"`
}

func (s *Server) handleCreateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}

	p := s.store.createProject(c.GetString("tenant_id"), req.Name, req.Description, req.TeamMembers)
	c.JSON(http.StatusCreated, p)
}

func (s *Server) handleListProjects(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	projects, total := s.store.listProjects(c.GetString("tenant_id"), page, limit)
	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
		"page":     page,
		"limit":    limit,
		"total":    total,
	})
}

func (s *Server) handleGetProject(c *gin.Context) {
	p, ok := s.store.getProject(c.GetString("tenant_id"), c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleUpdateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tenantID := c.GetString("tenant_id")
	p, ok := s.store.getProject(tenantID, c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	s.store.mu.Lock()
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Description != "" {
		p.Description = req.Description
	}
	if req.Status != "" {
		p.Status = req.Status
	}
	if req.TeamMembers != nil {
		p.TeamMembers = req.TeamMembers
	}
	s.store.mu.Unlock()

	c.JSON(http.StatusOK, p)
}

func (s *Server) handleDeleteProject(c *gin.Context) {
	if !s.store.deleteProject(c.GetString("tenant_id"), c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleAddMember(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, ok := s.store.addMember(c.GetString("tenant_id"), c.Param("id"), req.Email)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleRemoveMember(c *gin.Context) {
	p, ok := s.store.removeMember(c.GetString("tenant_id"), c.Param("id"), c.Param("email"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}
