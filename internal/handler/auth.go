package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quizbuddy/internal/account"
	"quizbuddy/internal/auth"
	"quizbuddy/internal/translate"
)

func (h *Handler) register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Phone    string `json:"phone"`
		RollNo   string `json:"roll_no"`
		Name     string `json:"name"`
		College  string `json:"college"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.Accounts.Register(c.Request.Context(), account.Registration{
		Email:    req.Email,
		Phone:    req.Phone,
		RollNo:   req.RollNo,
		Password: req.Password,
		Name:     req.Name,
		College:  req.College,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	if !created {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"email": req.Email})
}

func (h *Handler) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	role, err := h.Accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	email := h.Accounts.AdminEmail()
	if role == account.RoleStudent {
		user, err := h.Accounts.Get(ctx, req.Email)
		if err != nil || user == nil {
			h.fail(c, errors.Join(account.ErrInvalidCredentials, err))
			return
		}
		email = user.Email
	}

	sess, err := h.Sessions.Create(ctx, email, role)
	if err != nil {
		h.fail(c, err)
		return
	}
	tok, err := auth.Issue(email, string(role), sess.ID, h.JWTIssuer, h.JWTSigningKey, h.Sessions.TTL())
	if err != nil {
		_ = h.Sessions.Delete(ctx, sess.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	h.Log.Info("login", zap.String("email", email), zap.String("role", string(role)))

	c.JSON(http.StatusOK, gin.H{
		"access_token": tok.AccessToken,
		"expires_at":   tok.ExpiresAt.Unix(),
		"role":         role,
	})
}

func (h *Handler) logout(c *gin.Context) {
	sess := auth.CurrentSession(c)
	if err := h.Sessions.Delete(c.Request.Context(), sess.ID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) me(c *gin.Context) {
	sess := auth.CurrentSession(c)
	resp := gin.H{
		"email":     sess.Email,
		"role":      sess.Role,
		"language":  sess.Language,
		"languages": translate.Languages(),
	}
	if claims, ok := auth.CurrentClaims(c); ok && claims.ExpiresAt != nil {
		resp["expires_at"] = claims.ExpiresAt.Unix()
	}
	if user := currentUser(c); user != nil {
		resp["profile"] = user
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) setLanguage(c *gin.Context) {
	var req struct {
		Language string `json:"language" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lang, err := translate.ParseLanguage(req.Language)
	if err != nil {
		h.fail(c, err)
		return
	}
	sess := auth.CurrentSession(c)
	sess.Language = lang
	if !h.save(c, sess) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"language": lang})
}
