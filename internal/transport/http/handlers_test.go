package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"metislap/internal/app"
	"metislap/internal/auth"
	"metislap/internal/domain"
	"metislap/internal/infra/memory"
)

type fixture struct {
	router *gin.Engine
	token  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	log := zerolog.Nop()
	quiz := app.NewQuizService(store, log)
	drawing := app.NewDrawingService(store, log)
	ladder := app.NewLadderService(store, log)
	rooms := app.NewRoomService(store, map[domain.GameType]app.GameEngine{
		domain.GameQuiz:    quiz,
		domain.GameDrawing: drawing,
		domain.GameLadder:  ladder,
	}, log)

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	token, err := tokens.Mint("instr-1", true)
	require.NoError(t, err)

	cache := memory.NewStateCache(50 * time.Millisecond)
	handler := NewHandler(rooms, quiz, drawing, ladder, cache, tokens, log)
	return &fixture{router: handler.Router(), token: token}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest))
}

func (f *fixture) createRoom(t *testing.T, gameType string) domain.Room {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/rooms", gin.H{
		"roomName": "test room",
		"gameType": gameType,
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var room domain.Room
	decode(t, rec, &room)
	return room
}

func (f *fixture) join(t *testing.T, code, nickname string) domain.Participant {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/join", gin.H{
		"roomCode": code,
		"nickname": nickname,
	}, false)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		Participant domain.Participant `json:"participant"`
	}
	decode(t, rec, &resp)
	return resp.Participant
}

func TestInstructorRoutesRequireToken(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/rooms", gin.H{"roomName": "x", "gameType": "quiz"}, false)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateAndLookupRoom(t *testing.T) {
	f := newFixture(t)
	room := f.createRoom(t, "quiz")
	require.Len(t, room.Code, 6)
	require.Equal(t, domain.RoomWaiting, room.Status)

	rec := f.do(t, http.MethodGet, "/api/join?code="+room.Code, nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	var lookup struct {
		Room             domain.Room `json:"room"`
		ParticipantCount int         `json:"participantCount"`
	}
	decode(t, rec, &lookup)
	require.Equal(t, room.ID, lookup.Room.ID)
	require.Zero(t, lookup.ParticipantCount)

	rec = f.do(t, http.MethodGet, "/api/join?code=ZZZZZZ", nil, false)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJoinConflictMapsTo409(t *testing.T) {
	f := newFixture(t)
	room := f.createRoom(t, "quiz")
	f.join(t, room.Code, "mina")

	rec := f.do(t, http.MethodPost, "/api/join", gin.H{"roomCode": room.Code, "nickname": "mina"}, false)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestQuizFlowOverHTTP(t *testing.T) {
	f := newFixture(t)
	room := f.createRoom(t, "quiz")

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/api/rooms/%s/questions", room.ID), gin.H{
		"questionText":  "2+2?",
		"questionType":  "multiple_choice",
		"options":       []string{"3", "4"},
		"correctAnswer": "4",
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var q domain.Question
	decode(t, rec, &q)
	require.Equal(t, 1, q.Order)
	require.Equal(t, 30, q.TimeLimit)

	p := f.join(t, room.Code, "mina")

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/rooms/%s/start", room.ID), nil, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/answers", gin.H{
		"questionId":     q.ID,
		"participantId":  p.ID,
		"selectedAnswer": "4",
	}, false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result domain.AnswerResult
	decode(t, rec, &result)
	require.True(t, result.Correct)
	require.Equal(t, 100, result.Points)

	// Duplicate submission conflicts.
	rec = f.do(t, http.MethodPost, "/api/answers", gin.H{
		"questionId":     q.ID,
		"participantId":  p.ID,
		"selectedAnswer": "4",
	}, false)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/participants/%s/progress", p.ID), nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	var prog domain.Progress
	decode(t, rec, &prog)
	require.True(t, prog.Completed)

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/rooms/%s/progress", room.ID), nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	// Advancing past the only question finishes the game.
	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/rooms/%s/quiz/advance", room.ID), nil, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var finished domain.Room
	decode(t, rec, &finished)
	require.Equal(t, domain.RoomFinished, finished.Status)
}

func TestQuizStateIsPublicAndReflectsLifecycle(t *testing.T) {
	f := newFixture(t)
	room := f.createRoom(t, "quiz")
	f.do(t, http.MethodPost, fmt.Sprintf("/api/rooms/%s/questions", room.ID), gin.H{
		"questionText":  "q",
		"questionType":  "true_false",
		"correctAnswer": "O",
	}, true)

	rec := f.do(t, http.MethodGet, fmt.Sprintf("/api/rooms/%s/quiz/state", room.ID), nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	var state domain.QuizState
	decode(t, rec, &state)
	require.Equal(t, domain.RoomWaiting, state.Room.Status)
	require.Nil(t, state.Current)

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/rooms/%s/start", room.ID), nil, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Start invalidates the cached snapshot, so the next poll sees it.
	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/rooms/%s/quiz/state", room.ID), nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &state)
	require.Equal(t, domain.RoomInProgress, state.Room.Status)
	require.NotNil(t, state.Current)
	require.Equal(t, []string{"O", "X"}, state.Current.Options)
}

func TestDrawingFlowOverHTTP(t *testing.T) {
	f := newFixture(t)
	room := f.createRoom(t, "drawing")

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/api/rooms/%s/words", room.ID), gin.H{
		"word": "apple", "hint": "fruit",
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	drawer := f.join(t, room.Code, "drawer")
	guesser := f.join(t, room.Code, "guesser")

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/rooms/%s/start", room.ID), gin.H{
		"drawerId": drawer.ID,
	}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/rooms/%s/drawing/state", room.ID), nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	var state domain.DrawingState
	decode(t, rec, &state)
	require.NotNil(t, state.Round)

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/rounds/%s/drawing", state.Round.ID), gin.H{
		"participantId": drawer.ID,
		"drawingData":   "strokes-blob",
	}, false)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/rounds/%s/drawing", state.Round.ID), nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	var snapshot struct {
		DrawingData string `json:"drawingData"`
	}
	decode(t, rec, &snapshot)
	require.Equal(t, "strokes-blob", snapshot.DrawingData)

	// The guesser may not draw.
	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/rounds/%s/drawing", state.Round.ID), gin.H{
		"participantId": guesser.ID,
		"drawingData":   "x",
	}, false)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/rounds/%s/guesses", state.Round.ID), gin.H{
		"participantId": guesser.ID,
		"guessText":     "Apple",
	}, false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var guess domain.GuessResult
	decode(t, rec, &guess)
	require.True(t, guess.Correct)
	require.Equal(t, 100, guess.Points)
}

func TestLadderFlowOverHTTP(t *testing.T) {
	f := newFixture(t)
	room := f.createRoom(t, "ladder")

	for _, item := range []string{"coffee", "tea"} {
		rec := f.do(t, http.MethodPost, fmt.Sprintf("/api/rooms/%s/items", room.ID), gin.H{
			"itemText": item,
		}, true)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	p := f.join(t, room.Code, "mina")
	rec := f.do(t, http.MethodPost, fmt.Sprintf("/api/rooms/%s/start", room.ID), nil, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/ladder/selections", gin.H{
		"roomId":        room.ID,
		"participantId": p.ID,
		"startPosition": 0,
	}, false)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/rooms/%s/ladder/reveal", room.ID), gin.H{
		"participantId": p.ID,
	}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var sel domain.Selection
	decode(t, rec, &sel)
	require.True(t, sel.Revealed)
	require.NotNil(t, sel.Result)

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/rooms/%s/ladder/reveal", room.ID), gin.H{
		"participantId": p.ID,
	}, true)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestValidationErrorsMapTo400(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/rooms", gin.H{"gameType": "quiz"}, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/rooms", gin.H{"roomName": "x", "gameType": "chess"}, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/rooms/not-a-uuid", nil, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
