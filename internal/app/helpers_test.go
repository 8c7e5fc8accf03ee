package app

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"metislap/internal/domain"
	"metislap/internal/infra/memory"
)

type env struct {
	store   *memory.Store
	rooms   *RoomService
	quiz    *QuizService
	drawing *DrawingService
	ladder  *LadderService
	actor   domain.Actor
}

func newEnv() *env {
	store := memory.NewStore()
	log := zerolog.Nop()
	quiz := NewQuizService(store, log)
	drawing := NewDrawingService(store, log)
	ladder := NewLadderService(store, log)
	rooms := NewRoomService(store, map[domain.GameType]GameEngine{
		domain.GameQuiz:    quiz,
		domain.GameDrawing: drawing,
		domain.GameLadder:  ladder,
	}, log)
	return &env{
		store:   store,
		rooms:   rooms,
		quiz:    quiz,
		drawing: drawing,
		ladder:  ladder,
		actor:   domain.Actor{InstructorID: "instr-1", Approved: true},
	}
}

func (e *env) createRoom(t *testing.T, gameType domain.GameType) *domain.Room {
	t.Helper()
	room, err := e.rooms.CreateRoom(context.Background(), e.actor, "test room", gameType, 0)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	return room
}

func (e *env) join(t *testing.T, room *domain.Room, nickname string) *domain.Participant {
	t.Helper()
	p, _, err := e.rooms.Join(context.Background(), room.Code, nickname)
	if err != nil {
		t.Fatalf("join %s: %v", nickname, err)
	}
	return p
}

func (e *env) addQuestion(t *testing.T, room *domain.Room, text, answer string) *domain.Question {
	t.Helper()
	q, err := e.quiz.AddQuestion(context.Background(), e.actor, room.ID, QuestionInput{
		Text:    text,
		Type:    domain.QuestionMultipleChoice,
		Options: []string{answer, "wrong"},
		Answer:  answer,
	})
	if err != nil {
		t.Fatalf("add question: %v", err)
	}
	return q
}

func (e *env) addWord(t *testing.T, room *domain.Room, word string) *domain.Word {
	t.Helper()
	w, err := e.drawing.AddWord(context.Background(), e.actor, room.ID, word, "")
	if err != nil {
		t.Fatalf("add word: %v", err)
	}
	return w
}

func (e *env) addItem(t *testing.T, room *domain.Room, text string) *domain.LadderItem {
	t.Helper()
	it, err := e.ladder.AddItem(context.Background(), e.actor, room.ID, text)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	return it
}

func (e *env) start(t *testing.T, room *domain.Room, opts StartOptions) *domain.Room {
	t.Helper()
	started, err := e.rooms.StartGame(context.Background(), e.actor, room.ID, opts)
	if err != nil {
		t.Fatalf("start game: %v", err)
	}
	return started
}

func (e *env) participant(t *testing.T, id uuid.UUID) *domain.Participant {
	t.Helper()
	p, err := e.store.ParticipantByID(context.Background(), id)
	if err != nil {
		t.Fatalf("load participant: %v", err)
	}
	return p
}
