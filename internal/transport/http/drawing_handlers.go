package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"metislap/internal/domain"
)

type wordRequest struct {
	Word string `json:"word" binding:"required"`
	Hint string `json:"hint"`
}

func (h *Handler) addWord(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req wordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body"))
		return
	}
	w, err := h.drawing.AddWord(c.Request.Context(), actorFrom(c), id, req.Word, req.Hint)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (h *Handler) listWords(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, err := h.rooms.Room(c.Request.Context(), actorFrom(c), id); err != nil {
		writeError(c, err)
		return
	}
	words, err := h.drawing.Words(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"words": words})
}

type wordPatchRequest struct {
	Word *string `json:"word"`
	Hint *string `json:"hint"`
}

func (h *Handler) updateWord(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req wordPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body"))
		return
	}
	w, err := h.drawing.UpdateWord(c.Request.Context(), actorFrom(c), id, req.Word, req.Hint)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *Handler) deleteWord(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.drawing.DeleteWord(c.Request.Context(), actorFrom(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type snapshotRequest struct {
	ParticipantID uuid.UUID `json:"participantId" binding:"required"`
	DrawingData   string    `json:"drawingData" binding:"required"`
}

func (h *Handler) submitSnapshot(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req snapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body"))
		return
	}
	if err := h.drawing.SubmitSnapshot(c.Request.Context(), id, req.ParticipantID, req.DrawingData); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) snapshot(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	data, status, err := h.drawing.Snapshot(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"drawingData": data, "status": status})
}

type guessRequest struct {
	ParticipantID uuid.UUID `json:"participantId" binding:"required"`
	Text          string    `json:"guessText" binding:"required"`
}

func (h *Handler) submitGuess(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req guessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body"))
		return
	}
	result, err := h.drawing.SubmitGuess(c.Request.Context(), id, req.ParticipantID, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) guesses(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	guesses, correct, err := h.drawing.Guesses(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"guesses": guesses, "correctCount": correct})
}
