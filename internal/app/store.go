package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"metislap/internal/domain"
)

// The store interfaces abstract the backing relational store. The
// postgres implementation enforces the duplicate-submission invariants
// with unique constraints and translates constraint violations into the
// matching domain conflict errors; the memory implementation mirrors the
// same rules for tests and no-database runs.

// RoomStore persists rooms.
type RoomStore interface {
	CreateRoom(ctx context.Context, room *domain.Room) error
	RoomByID(ctx context.Context, id uuid.UUID) (*domain.Room, error)
	RoomByCode(ctx context.Context, code string) (*domain.Room, error)
	RoomsByInstructor(ctx context.Context, instructorID string, status *domain.RoomStatus) ([]*domain.Room, error)
	UpdateRoom(ctx context.Context, room *domain.Room) error
	DeleteRoom(ctx context.Context, id uuid.UUID) error
}

// ParticipantStore persists the per-room roster.
type ParticipantStore interface {
	CreateParticipant(ctx context.Context, p *domain.Participant) error
	ParticipantByID(ctx context.Context, id uuid.UUID) (*domain.Participant, error)
	// ParticipantByNickname matches active and inactive rows alike so that
	// join can reactivate a displaced nickname.
	ParticipantByNickname(ctx context.Context, roomID uuid.UUID, nickname string) (*domain.Participant, error)
	UpdateParticipant(ctx context.Context, p *domain.Participant) error
	AddScore(ctx context.Context, id uuid.UUID, delta int) error
	Participants(ctx context.Context, roomID uuid.UUID, activeOnly bool) ([]*domain.Participant, error)
	ActiveParticipantCount(ctx context.Context, roomID uuid.UUID) (int, error)
}

// QuizStore persists questions and answers.
type QuizStore interface {
	CreateQuestion(ctx context.Context, q *domain.Question) error
	QuestionByID(ctx context.Context, id uuid.UUID) (*domain.Question, error)
	Questions(ctx context.Context, roomID uuid.UUID) ([]*domain.Question, error)
	QuestionByOrder(ctx context.Context, roomID uuid.UUID, order int) (*domain.Question, error)
	QuestionCount(ctx context.Context, roomID uuid.UUID) (int, error)
	UpdateQuestion(ctx context.Context, q *domain.Question) error
	// DeleteQuestion removes the question and renumbers the remaining
	// questions of the room to a contiguous 1-based sequence.
	DeleteQuestion(ctx context.Context, id uuid.UUID) error

	CreateAnswer(ctx context.Context, a *domain.Answer) error
	AnswerCount(ctx context.Context, roomID, participantID uuid.UUID) (int, error)
	AnswersByQuestion(ctx context.Context, questionID uuid.UUID) ([]*domain.Answer, error)
	// CompletedCount counts active participants whose answered-question
	// count has reached total.
	CompletedCount(ctx context.Context, roomID uuid.UUID, total int) (int, error)
}

// DrawingStore persists words, rounds and guesses.
type DrawingStore interface {
	CreateWord(ctx context.Context, w *domain.Word) error
	WordByID(ctx context.Context, id uuid.UUID) (*domain.Word, error)
	Words(ctx context.Context, roomID uuid.UUID) ([]*domain.Word, error)
	WordByOrder(ctx context.Context, roomID uuid.UUID, order int) (*domain.Word, error)
	WordCount(ctx context.Context, roomID uuid.UUID) (int, error)
	UpdateWord(ctx context.Context, w *domain.Word) error
	// DeleteWord removes the word and renumbers the remainder.
	DeleteWord(ctx context.Context, id uuid.UUID) error

	// ResetRounds drops all rounds of a room before a (re)start.
	ResetRounds(ctx context.Context, roomID uuid.UUID) error
	CreateRound(ctx context.Context, r *domain.Round) error
	RoundByID(ctx context.Context, id uuid.UUID) (*domain.Round, error)
	RoundByNumber(ctx context.Context, roomID uuid.UUID, number int) (*domain.Round, error)
	FinishRound(ctx context.Context, id uuid.UUID, endedAt time.Time) error
	UpdateSnapshot(ctx context.Context, id uuid.UUID, data string) error

	CreateGuess(ctx context.Context, g *domain.Guess) error
	HasCorrectGuess(ctx context.Context, roundID, participantID uuid.UUID) (bool, error)
	CorrectGuessCount(ctx context.Context, roundID uuid.UUID) (int, error)
	Guesses(ctx context.Context, roundID uuid.UUID) ([]*domain.Guess, error)
}

// LadderStore persists items, the generated graph and selections.
type LadderStore interface {
	CreateItem(ctx context.Context, it *domain.LadderItem) error
	ItemByID(ctx context.Context, id uuid.UUID) (*domain.LadderItem, error)
	Items(ctx context.Context, roomID uuid.UUID) ([]*domain.LadderItem, error)
	ItemCount(ctx context.Context, roomID uuid.UUID) (int, error)
	UpdateItem(ctx context.Context, it *domain.LadderItem) error
	// DeleteItem removes the item and renumbers the remainder to a
	// contiguous 0-based sequence.
	DeleteItem(ctx context.Context, id uuid.UUID) error

	// ReplaceLadder drops any previous graph and selections for the room
	// and stores the new graph.
	ReplaceLadder(ctx context.Context, l *domain.Ladder) error
	LadderByRoom(ctx context.Context, roomID uuid.UUID) (*domain.Ladder, error)

	CreateSelection(ctx context.Context, sel *domain.Selection) error
	SelectionByParticipant(ctx context.Context, roomID, participantID uuid.UUID) (*domain.Selection, error)
	Selections(ctx context.Context, roomID uuid.UUID) ([]*domain.Selection, error)
	RevealSelection(ctx context.Context, id uuid.UUID, result int) error
}

// Store is the full persistence surface.
type Store interface {
	RoomStore
	ParticipantStore
	QuizStore
	DrawingStore
	LadderStore
}
