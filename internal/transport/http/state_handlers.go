package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"metislap/internal/domain"
)

func stateKey(roomID uuid.UUID, game string) string {
	return "state:" + roomID.String() + ":" + game
}

// invalidateState drops a room's cached snapshots after a lifecycle
// mutation so pollers see the transition on their next request.
func (h *Handler) invalidateState(c *gin.Context, roomID uuid.UUID) {
	keys := []string{
		stateKey(roomID, "quiz"),
		stateKey(roomID, "drawing"),
		stateKey(roomID, "ladder"),
	}
	if err := h.cache.Invalidate(c.Request.Context(), keys...); err != nil {
		h.log.Warn().Err(err).Str("room_id", roomID.String()).Msg("state cache invalidation failed")
	}
}

func (h *Handler) quizState(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var state domain.QuizState
	err := h.cache.GetState(c.Request.Context(), stateKey(id, "quiz"), &state, func(ctx context.Context) (interface{}, error) {
		return h.quiz.State(ctx, id)
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handler) drawingState(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var state domain.DrawingState
	err := h.cache.GetState(c.Request.Context(), stateKey(id, "drawing"), &state, func(ctx context.Context) (interface{}, error) {
		return h.drawing.State(ctx, id)
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handler) ladderState(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var state domain.LadderState
	err := h.cache.GetState(c.Request.Context(), stateKey(id, "ladder"), &state, func(ctx context.Context) (interface{}, error) {
		return h.ladder.State(ctx, id)
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}
