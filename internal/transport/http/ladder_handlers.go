package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"metislap/internal/domain"
)

type itemRequest struct {
	Text string `json:"itemText" binding:"required"`
}

func (h *Handler) addItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body"))
		return
	}
	it, err := h.ladder.AddItem(c.Request.Context(), actorFrom(c), id, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

func (h *Handler) listItems(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, err := h.rooms.Room(c.Request.Context(), actorFrom(c), id); err != nil {
		writeError(c, err)
		return
	}
	items, err := h.ladder.Items(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) updateItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body"))
		return
	}
	it, err := h.ladder.UpdateItem(c.Request.Context(), actorFrom(c), id, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (h *Handler) deleteItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.ladder.DeleteItem(c.Request.Context(), actorFrom(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type selectionRequest struct {
	RoomID        uuid.UUID `json:"roomId" binding:"required"`
	ParticipantID uuid.UUID `json:"participantId" binding:"required"`
	Start         *int      `json:"startPosition" binding:"required"`
}

func (h *Handler) selectPosition(c *gin.Context) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body"))
		return
	}
	sel, err := h.ladder.Select(c.Request.Context(), req.RoomID, req.ParticipantID, *req.Start)
	if err != nil {
		writeError(c, err)
		return
	}
	h.invalidateState(c, req.RoomID)
	c.JSON(http.StatusCreated, sel)
}

type revealRequest struct {
	ParticipantID uuid.UUID `json:"participantId" binding:"required"`
}

func (h *Handler) reveal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req revealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body"))
		return
	}
	sel, err := h.ladder.Reveal(c.Request.Context(), actorFrom(c), id, req.ParticipantID)
	if err != nil {
		writeError(c, err)
		return
	}
	h.invalidateState(c, id)
	c.JSON(http.StatusOK, sel)
}
