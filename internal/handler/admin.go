package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) createQuiz(c *gin.Context) {
	var req quizBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	def, err := h.Quizzes.CreateQuiz(c.Request.Context(), req.request())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, def)
}

func (h *Handler) deleteQuiz(c *gin.Context) {
	if err := h.Quizzes.DeleteQuiz(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listStudents(c *gin.Context) {
	users, err := h.Accounts.ListStudents(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": users})
}

func (h *Handler) deleteStudent(c *gin.Context) {
	ok, err := h.Accounts.DeleteStudent(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listMarks(c *gin.Context) {
	rows, err := h.Marks.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marks": rows})
}

func (h *Handler) deleteMark(c *gin.Context) {
	ok, err := h.Marks.Delete(c.Request.Context(), c.Param("email"), c.Param("subject"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "mark not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
