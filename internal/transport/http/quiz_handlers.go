package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"metislap/internal/app"
	"metislap/internal/domain"
)

type questionRequest struct {
	Text      string              `json:"questionText" binding:"required"`
	Type      domain.QuestionType `json:"questionType" binding:"required"`
	Options   []string            `json:"options"`
	Answer    string              `json:"correctAnswer" binding:"required"`
	TimeLimit int                 `json:"timeLimit"`
	Points    int                 `json:"points"`
}

func (h *Handler) addQuestion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body"))
		return
	}
	q, err := h.quiz.AddQuestion(c.Request.Context(), actorFrom(c), id, app.QuestionInput{
		Text:      req.Text,
		Type:      req.Type,
		Options:   req.Options,
		Answer:    req.Answer,
		TimeLimit: req.TimeLimit,
		Points:    req.Points,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

func (h *Handler) listQuestions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, err := h.rooms.Room(c.Request.Context(), actorFrom(c), id); err != nil {
		writeError(c, err)
		return
	}
	questions, err := h.quiz.Questions(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

type questionPatchRequest struct {
	Text      *string  `json:"questionText"`
	Options   []string `json:"options"`
	Answer    *string  `json:"correctAnswer"`
	TimeLimit *int     `json:"timeLimit"`
	Points    *int     `json:"points"`
}

func (h *Handler) updateQuestion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req questionPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body"))
		return
	}
	q, err := h.quiz.UpdateQuestion(c.Request.Context(), actorFrom(c), id, app.QuestionPatch{
		Text:      req.Text,
		Options:   req.Options,
		Answer:    req.Answer,
		TimeLimit: req.TimeLimit,
		Points:    req.Points,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *Handler) deleteQuestion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.quiz.DeleteQuestion(c.Request.Context(), actorFrom(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type answerRequest struct {
	QuestionID    uuid.UUID `json:"questionId" binding:"required"`
	ParticipantID uuid.UUID `json:"participantId" binding:"required"`
	Selected      string    `json:"selectedAnswer" binding:"required"`
	ElapsedMs     *int      `json:"answerTimeMs"`
}

func (h *Handler) submitAnswer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body"))
		return
	}
	result, err := h.quiz.SubmitAnswer(c.Request.Context(), req.QuestionID, req.ParticipantID, req.Selected, req.ElapsedMs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) participantProgress(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	prog, err := h.quiz.ParticipantProgress(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, prog)
}

func (h *Handler) roomProgress(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	prog, err := h.quiz.RoomProgress(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, prog)
}

func (h *Handler) answersReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	answers, stats, err := h.quiz.AnswersReport(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answers": answers, "stats": stats})
}
