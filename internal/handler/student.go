package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quizbuddy/internal/auth"
	"quizbuddy/internal/quiz"
)

// quizBody is the wire form of a quiz request.
type quizBody struct {
	Skill string `json:"skill"`
	Topic string `json:"topic"`
	Level string `json:"level"`
	Count int    `json:"number_of_questions"`
}

func (b quizBody) request() quiz.Request {
	return quiz.Request{Skill: b.Skill, Topic: b.Topic, Level: quiz.Level(b.Level), Count: b.Count}
}

type questionView struct {
	Number  int      `json:"number"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// attemptView hides the answer key from the student.
func attemptView(a *quiz.Attempt) gin.H {
	qs := make([]questionView, len(a.Questions))
	for i, q := range a.Questions {
		qs[i] = questionView{Number: i + 1, Text: q.Text, Options: q.Options}
	}
	return gin.H{
		"id":         a.ID,
		"quiz_id":    a.QuizID,
		"subject":    a.Subject,
		"skill":      a.Skill,
		"level":      a.Level,
		"language":   a.Language,
		"started_at": a.StartedAt,
		"questions":  qs,
	}
}

func (h *Handler) listQuizzes(c *gin.Context) {
	defs, err := h.Quizzes.ListQuizzes(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quizzes": defs})
}

func (h *Handler) startAttempt(c *gin.Context) {
	var req struct {
		QuizID string `json:"quiz_id"`
		quizBody
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := auth.CurrentSession(c)
	attempt, err := h.Quizzes.Start(c.Request.Context(), quiz.StartRequest{
		QuizID:   req.QuizID,
		Quiz:     req.request(),
		Language: sess.Language,
		Memo:     sess.Translations,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	sess.Attempt = attempt
	if !h.save(c, sess) {
		return
	}
	c.JSON(http.StatusCreated, attemptView(attempt))
}

func (h *Handler) currentAttempt(c *gin.Context) {
	sess := auth.CurrentSession(c)
	if sess.Attempt == nil {
		h.fail(c, quiz.ErrNoAttempt)
		return
	}
	c.JSON(http.StatusOK, attemptView(sess.Attempt))
}

func (h *Handler) submitAttempt(c *gin.Context) {
	var req struct {
		Answers []int `json:"answers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := auth.CurrentSession(c)
	if sess.Attempt == nil {
		h.fail(c, quiz.ErrNoAttempt)
		return
	}
	user := currentUser(c)
	student := quiz.Student{Email: user.Email, RollNo: user.RollNo}

	res, err := h.Quizzes.Submit(c.Request.Context(), student, sess.Attempt, req.Answers)
	if err != nil {
		h.fail(c, err)
		return
	}
	sess.Attempt = nil
	if !h.save(c, sess) {
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) myMarks(c *gin.Context) {
	rows, err := h.Marks.ListByStudent(c.Request.Context(), auth.CurrentSession(c).Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marks": rows})
}
