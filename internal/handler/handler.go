package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quizbuddy/internal/account"
	"quizbuddy/internal/auth"
	"quizbuddy/internal/logger"
	"quizbuddy/internal/marks"
	"quizbuddy/internal/quiz"
	"quizbuddy/internal/session"
	"quizbuddy/internal/translate"
)

// Deps wires the HTTP layer to the services.
type Deps struct {
	Accounts *account.Service
	Marks    *marks.Service
	Quizzes  *quiz.Service
	Sessions *session.Store

	JWTIssuer     string
	JWTSigningKey string

	Log *zap.Logger
}

// Handler serves the JSON API.
type Handler struct {
	Deps
}

// New creates a handler.
func New(d Deps) *Handler {
	d.Log = logger.OrNop(d.Log)
	return &Handler{Deps: d}
}

// Routes mounts every /v1 route on r.
func (h *Handler) Routes(r gin.IRouter) {
	v1 := r.Group("/v1")

	v1.POST("/auth/register", h.register)
	v1.POST("/auth/login", h.login)

	authed := v1.Group("", auth.RequireSession(h.JWTSigningKey, h.JWTIssuer, h.Sessions), h.requireAccount)
	authed.POST("/auth/logout", h.logout)
	authed.GET("/me", h.me)
	authed.PUT("/me/language", h.setLanguage)

	student := authed.Group("", auth.RequireRole(account.RoleStudent))
	student.GET("/quizzes", h.listQuizzes)
	student.POST("/attempts", h.startAttempt)
	student.GET("/attempts/current", h.currentAttempt)
	student.POST("/attempts/current/submit", h.submitAttempt)
	student.GET("/me/marks", h.myMarks)

	admin := authed.Group("/admin", auth.RequireRole(account.RoleAdmin))
	admin.POST("/quizzes", h.createQuiz)
	admin.GET("/quizzes", h.listQuizzes)
	admin.DELETE("/quizzes/:id", h.deleteQuiz)
	admin.GET("/students", h.listStudents)
	admin.DELETE("/students/:email", h.deleteStudent)
	admin.GET("/marks", h.listMarks)
	admin.DELETE("/marks/:email/:subject", h.deleteMark)
}

const userKey = "user"

// requireAccount ends student sessions whose user row was deleted, so a
// removed student cannot record marks again.
func (h *Handler) requireAccount(c *gin.Context) {
	sess := auth.CurrentSession(c)
	if sess.Role != account.RoleStudent {
		c.Next()
		return
	}
	ctx := c.Request.Context()
	user, err := h.Accounts.Get(ctx, sess.Email)
	if err != nil {
		h.fail(c, err)
		c.Abort()
		return
	}
	if user == nil {
		if err := h.Sessions.Delete(ctx, sess.ID); err != nil {
			h.Log.Warn("session delete failed", zap.String("email", sess.Email), zap.Error(err))
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account no longer exists"})
		return
	}
	c.Set(userKey, user)
	c.Next()
}

// currentUser is the student loaded by requireAccount, or nil for admins.
func currentUser(c *gin.Context) *account.User {
	v, _ := c.Get(userKey)
	user, _ := v.(*account.User)
	return user
}

// fail maps domain errors to status codes. Unknown errors are logged and
// reported as 500 without detail.
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"
	switch {
	case errors.Is(err, quiz.ErrGenerationFailed):
		status, msg = http.StatusBadGateway, "quiz generation failed"
	case errors.Is(err, quiz.ErrQuizNotFound), errors.Is(err, quiz.ErrNoAttempt):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, quiz.ErrInvalidLevel), errors.Is(err, quiz.ErrInvalidRequest),
		errors.Is(err, translate.ErrUnsupportedLanguage), errors.Is(err, account.ErrInvalidRegistration):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, account.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, err.Error()
	}
	if status >= http.StatusInternalServerError || status == http.StatusBadGateway {
		h.Log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": msg})
}

// save persists session changes made by a handler.
func (h *Handler) save(c *gin.Context, sess *session.Session) bool {
	if err := h.Sessions.Save(c.Request.Context(), sess); err != nil {
		h.fail(c, err)
		return false
	}
	return true
}
