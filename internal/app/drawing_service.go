package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"metislap/internal/domain"
)

const (
	guessBasePoints  = 100
	guessRankStep    = 20
	guessFloorPoints = 20
	drawerBonus      = 30
)

// DrawingService implements the drawing engine: word management, round
// rotation, snapshot relay and guess scoring.
type DrawingService struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time
}

func NewDrawingService(store Store, log zerolog.Logger) *DrawingService {
	return &DrawingService{
		store: store,
		log:   log.With().Str("component", "drawing").Logger(),
		now:   time.Now,
	}
}

// WithClock overrides the service clock; test use only.
func (s *DrawingService) WithClock(now func() time.Time) *DrawingService {
	s.now = now
	return s
}

// AddWord appends a word with the next order index to a waiting room.
func (s *DrawingService) AddWord(ctx context.Context, actor domain.Actor, roomID uuid.UUID, word, hint string) (*domain.Word, error) {
	room, err := ownedRoom(ctx, s.store, actor, roomID)
	if err != nil {
		return nil, err
	}
	if room.GameType != domain.GameDrawing {
		return nil, domain.ErrWrongGameType
	}
	if room.Status != domain.RoomWaiting {
		return nil, domain.ErrRoomNotWaiting
	}
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, domain.Validationf("word is required")
	}
	count, err := s.store.WordCount(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	w := &domain.Word{
		ID:        uuid.New(),
		RoomID:    room.ID,
		Word:      word,
		Hint:      strings.TrimSpace(hint),
		Order:     count + 1,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateWord(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// UpdateWord edits a waiting room's word in place.
func (s *DrawingService) UpdateWord(ctx context.Context, actor domain.Actor, wordID uuid.UUID, word, hint *string) (*domain.Word, error) {
	w, room, err := s.ownedWord(ctx, actor, wordID)
	if err != nil {
		return nil, err
	}
	if room.Status != domain.RoomWaiting {
		return nil, domain.ErrRoomNotWaiting
	}
	if word != nil {
		trimmed := strings.TrimSpace(*word)
		if trimmed == "" {
			return nil, domain.Validationf("word is required")
		}
		w.Word = trimmed
	}
	if hint != nil {
		w.Hint = strings.TrimSpace(*hint)
	}
	if err := s.store.UpdateWord(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// DeleteWord removes a word; the rest are renumbered contiguously.
func (s *DrawingService) DeleteWord(ctx context.Context, actor domain.Actor, wordID uuid.UUID) error {
	w, room, err := s.ownedWord(ctx, actor, wordID)
	if err != nil {
		return err
	}
	if room.Status != domain.RoomWaiting {
		return domain.ErrRoomNotWaiting
	}
	return s.store.DeleteWord(ctx, w.ID)
}

// Words lists a room's words in order.
func (s *DrawingService) Words(ctx context.Context, roomID uuid.UUID) ([]*domain.Word, error) {
	if _, err := s.store.RoomByID(ctx, roomID); err != nil {
		return nil, err
	}
	return s.store.Words(ctx, roomID)
}

// SubmitSnapshot stores the drawer's latest drawing blob; latest write
// wins, there is no stroke history.
func (s *DrawingService) SubmitSnapshot(ctx context.Context, roundID, participantID uuid.UUID, data string) error {
	round, err := s.store.RoundByID(ctx, roundID)
	if err != nil {
		return err
	}
	if round.DrawerID != participantID {
		return domain.ErrNotDrawer
	}
	if round.Status != domain.RoundDrawing {
		return domain.ErrRoundNotActive
	}
	return s.store.UpdateSnapshot(ctx, round.ID, data)
}

// Snapshot returns the round's current drawing blob for guessers.
func (s *DrawingService) Snapshot(ctx context.Context, roundID uuid.UUID) (string, domain.RoundStatus, error) {
	round, err := s.store.RoundByID(ctx, roundID)
	if err != nil {
		return "", "", err
	}
	return round.Snapshot, round.Status, nil
}

// SubmitGuess checks a guess against the round's word and applies the
// rank-based scoring. The rank is count-then-insert and best-effort
// under concurrent correct guesses; the partial unique constraint still
// guarantees at most one correct guess per participant.
func (s *DrawingService) SubmitGuess(ctx context.Context, roundID, participantID uuid.UUID, text string) (*domain.GuessResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.Validationf("guess text is required")
	}
	round, err := s.store.RoundByID(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if round.DrawerID == participantID {
		return nil, domain.ErrDrawerCannotGuess
	}
	if round.Status != domain.RoundDrawing {
		return nil, domain.ErrRoundNotActive
	}
	p, err := s.store.ParticipantByID(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if !p.Active || p.RoomID != round.RoomID {
		return nil, domain.ErrParticipantInactive
	}
	already, err := s.store.HasCorrectGuess(ctx, round.ID, participantID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, domain.ErrAlreadyGuessed
	}
	word, err := s.store.WordByID(ctx, round.WordID)
	if err != nil {
		return nil, err
	}

	correct := normalizeGuess(text) == normalizeGuess(word.Word)
	points := 0
	if correct {
		rank, err := s.store.CorrectGuessCount(ctx, round.ID)
		if err != nil {
			return nil, err
		}
		points = guessPoints(rank + 1)
	}
	g := &domain.Guess{
		ID:            uuid.New(),
		RoundID:       round.ID,
		ParticipantID: participantID,
		Text:          text,
		Correct:       correct,
		Points:        points,
		CreatedAt:     s.now(),
	}
	if err := s.store.CreateGuess(ctx, g); err != nil {
		return nil, err
	}
	if correct {
		if err := s.store.AddScore(ctx, participantID, points); err != nil {
			return nil, err
		}
		if err := s.store.AddScore(ctx, round.DrawerID, drawerBonus); err != nil {
			return nil, err
		}
		return &domain.GuessResult{Correct: true, Points: points, Word: word.Word}, nil
	}
	return &domain.GuessResult{Correct: false}, nil
}

// Guesses lists a round's guesses in submission order with the correct
// count.
func (s *DrawingService) Guesses(ctx context.Context, roundID uuid.UUID) ([]*domain.Guess, int, error) {
	guesses, err := s.store.Guesses(ctx, roundID)
	if err != nil {
		return nil, 0, err
	}
	correct := 0
	for _, g := range guesses {
		if g.Correct {
			correct++
		}
	}
	return guesses, correct, nil
}

// State is the polled drawing snapshot: room, round count, and the
// active round with its word and drawer.
func (s *DrawingService) State(ctx context.Context, roomID uuid.UUID) (*domain.DrawingState, error) {
	room, err := s.store.RoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	total, err := s.store.WordCount(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	state := &domain.DrawingState{Room: room, TotalRounds: total}
	if room.Status != domain.RoomInProgress || room.CurrentRound == nil {
		return state, nil
	}
	round, err := s.store.RoundByNumber(ctx, room.ID, *room.CurrentRound)
	if err == domain.ErrRoundNotFound {
		return state, nil
	}
	if err != nil {
		return nil, err
	}
	state.Round = round
	if w, err := s.store.WordByID(ctx, round.WordID); err == nil {
		state.Word = w
	}
	if d, err := s.store.ParticipantByID(ctx, round.DrawerID); err == nil {
		state.Drawer = d
	}
	return state, nil
}

// StartGame implements GameEngine: requires at least one word and an
// instructor-chosen drawer, clears stale rounds, and opens round 1.
func (s *DrawingService) StartGame(ctx context.Context, room *domain.Room, opts StartOptions) error {
	count, err := s.store.WordCount(ctx, room.ID)
	if err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrNoWords
	}
	if err := s.store.ResetRounds(ctx, room.ID); err != nil {
		return err
	}
	if err := s.openRound(ctx, room, 1, opts.DrawerID); err != nil {
		return err
	}
	first := 1
	room.CurrentRound = &first
	return nil
}

// AdvanceGame implements GameEngine: finishes the current round and
// opens the next, or reports the game finished past the last word.
func (s *DrawingService) AdvanceGame(ctx context.Context, room *domain.Room, opts AdvanceOptions) (bool, error) {
	count, err := s.store.WordCount(ctx, room.ID)
	if err != nil {
		return false, err
	}
	current := 0
	if room.CurrentRound != nil {
		current = *room.CurrentRound
	}
	next := current + 1
	if next > count {
		return true, nil
	}
	if current > 0 {
		if round, err := s.store.RoundByNumber(ctx, room.ID, current); err == nil {
			if err := s.store.FinishRound(ctx, round.ID, s.now()); err != nil {
				return false, err
			}
		} else if err != domain.ErrRoundNotFound {
			return false, err
		}
	}
	if err := s.openRound(ctx, room, next, opts.DrawerID); err != nil {
		return false, err
	}
	room.CurrentRound = &next
	return false, nil
}

// EndGame implements GameEngine: closes any open round.
func (s *DrawingService) EndGame(ctx context.Context, room *domain.Room) error {
	if room.CurrentRound == nil {
		return nil
	}
	round, err := s.store.RoundByNumber(ctx, room.ID, *room.CurrentRound)
	if err == domain.ErrRoundNotFound {
		room.CurrentRound = nil
		return nil
	}
	if err != nil {
		return err
	}
	if round.Status == domain.RoundDrawing {
		if err := s.store.FinishRound(ctx, round.ID, s.now()); err != nil {
			return err
		}
	}
	room.CurrentRound = nil
	return nil
}

func (s *DrawingService) openRound(ctx context.Context, room *domain.Room, number int, drawerID uuid.UUID) error {
	if drawerID == uuid.Nil {
		return domain.ErrDrawerRequired
	}
	drawer, err := s.store.ParticipantByID(ctx, drawerID)
	if err != nil {
		return err
	}
	if !drawer.Active || drawer.RoomID != room.ID {
		return domain.Validationf("the chosen drawer is not an active participant of this room")
	}
	word, err := s.store.WordByOrder(ctx, room.ID, number)
	if err != nil {
		return err
	}
	round := &domain.Round{
		ID:        uuid.New(),
		RoomID:    room.ID,
		WordID:    word.ID,
		DrawerID:  drawerID,
		Number:    number,
		Status:    domain.RoundDrawing,
		StartedAt: s.now(),
	}
	if err := s.store.CreateRound(ctx, round); err != nil {
		return err
	}
	s.log.Info().Str("room", room.Code).Int("round", number).Msg("round opened")
	return nil
}

func (s *DrawingService) ownedWord(ctx context.Context, actor domain.Actor, wordID uuid.UUID) (*domain.Word, *domain.Room, error) {
	w, err := s.store.WordByID(ctx, wordID)
	if err != nil {
		return nil, nil, err
	}
	room, err := ownedRoom(ctx, s.store, actor, w.RoomID)
	if err != nil {
		return nil, nil, err
	}
	return w, room, nil
}

// normalizeGuess lowercases and strips all whitespace so "Red Apple"
// matches "redapple".
func normalizeGuess(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "")
}

// guessPoints is the rank-based award for the nth correct guesser
// (1-indexed): 100, 80, 60, 40, then floored at 20.
func guessPoints(rank int) int {
	points := guessBasePoints - (rank-1)*guessRankStep
	if points < guessFloorPoints {
		return guessFloorPoints
	}
	return points
}
