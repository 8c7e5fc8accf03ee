package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"metislap/internal/app"
	"metislap/internal/domain"
)

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, domain.Validationf("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

type createRoomRequest struct {
	Name     string          `json:"roomName" binding:"required"`
	GameType domain.GameType `json:"gameType" binding:"required"`
	Capacity int             `json:"maxParticipants"`
}

func (h *Handler) createRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body"))
		return
	}
	room, err := h.rooms.CreateRoom(c.Request.Context(), actorFrom(c), req.Name, req.GameType, req.Capacity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

func (h *Handler) listRooms(c *gin.Context) {
	var status *domain.RoomStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.RoomStatus(raw)
		status = &s
	}
	rooms, err := h.rooms.Rooms(c.Request.Context(), actorFrom(c), status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (h *Handler) getRoom(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	room, err := h.rooms.Room(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

type updateRoomRequest struct {
	Name     *string `json:"roomName"`
	Capacity *int    `json:"maxParticipants"`
}

func (h *Handler) updateRoom(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body"))
		return
	}
	room, err := h.rooms.UpdateRoom(c.Request.Context(), actorFrom(c), id, req.Name, req.Capacity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *Handler) deleteRoom(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.rooms.DeleteRoom(c.Request.Context(), actorFrom(c), id); err != nil {
		writeError(c, err)
		return
	}
	h.invalidateState(c, id)
	c.Status(http.StatusNoContent)
}

type startGameRequest struct {
	DrawerID uuid.UUID `json:"drawerId"`
}

func (h *Handler) startGame(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req startGameRequest
	_ = c.ShouldBindJSON(&req) // body optional for quiz and ladder rooms
	room, err := h.rooms.StartGame(c.Request.Context(), actorFrom(c), id, app.StartOptions{DrawerID: req.DrawerID})
	if err != nil {
		writeError(c, err)
		return
	}
	h.invalidateState(c, id)
	c.JSON(http.StatusOK, room)
}

type advanceGameRequest struct {
	DrawerID uuid.UUID `json:"drawerId"`
}

func (h *Handler) advanceGame(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req advanceGameRequest
	_ = c.ShouldBindJSON(&req)
	room, err := h.rooms.AdvanceGame(c.Request.Context(), actorFrom(c), id, app.AdvanceOptions{DrawerID: req.DrawerID})
	if err != nil {
		writeError(c, err)
		return
	}
	h.invalidateState(c, id)
	c.JSON(http.StatusOK, room)
}

func (h *Handler) endGame(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	room, err := h.rooms.EndGame(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	h.invalidateState(c, id)
	c.JSON(http.StatusOK, room)
}

func (h *Handler) resetGame(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	room, err := h.rooms.ResetGame(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	h.invalidateState(c, id)
	c.JSON(http.StatusOK, room)
}

func (h *Handler) participants(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	activeOnly := c.Query("all") == ""
	list, err := h.rooms.Participants(c.Request.Context(), actorFrom(c), id, activeOnly)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": list})
}

func (h *Handler) lookupRoom(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		writeError(c, domain.Validationf("room code is required"))
		return
	}
	includeFinished := c.Query("include_finished") == "true"
	room, err := h.rooms.RoomByCode(c.Request.Context(), code, includeFinished)
	if err != nil {
		writeError(c, err)
		return
	}
	count, err := h.rooms.ActiveCount(c.Request.Context(), room.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room, "participantCount": count})
}

type joinRequest struct {
	Code     string `json:"roomCode" binding:"required"`
	Nickname string `json:"nickname" binding:"required"`
}

func (h *Handler) join(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body"))
		return
	}
	p, room, err := h.rooms.Join(c.Request.Context(), req.Code, req.Nickname)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"participant": p, "room": room})
}

func (h *Handler) leave(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.rooms.Leave(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
