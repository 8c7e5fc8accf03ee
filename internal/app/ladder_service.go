package app

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"metislap/internal/domain"
)

// LadderService implements the ladder engine: result items, graph
// generation and the selection/reveal protocol.
type LadderService struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time
	rnd   *rand.Rand
}

func NewLadderService(store Store, log zerolog.Logger) *LadderService {
	return &LadderService{
		store: store,
		log:   log.With().Str("component", "ladder").Logger(),
		now:   time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithRand overrides the graph RNG; test use only.
func (s *LadderService) WithRand(rnd *rand.Rand) *LadderService {
	s.rnd = rnd
	return s
}

// WithClock overrides the service clock; test use only.
func (s *LadderService) WithClock(now func() time.Time) *LadderService {
	s.now = now
	return s
}

// AddItem appends a result label at the next 0-based position.
func (s *LadderService) AddItem(ctx context.Context, actor domain.Actor, roomID uuid.UUID, text string) (*domain.LadderItem, error) {
	room, err := ownedRoom(ctx, s.store, actor, roomID)
	if err != nil {
		return nil, err
	}
	if room.GameType != domain.GameLadder {
		return nil, domain.ErrWrongGameType
	}
	if room.Status != domain.RoomWaiting {
		return nil, domain.ErrRoomNotWaiting
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.Validationf("item text is required")
	}
	count, err := s.store.ItemCount(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	it := &domain.LadderItem{
		ID:        uuid.New(),
		RoomID:    room.ID,
		Text:      text,
		Position:  count,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateItem(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

// UpdateItem edits an item's label in a waiting room.
func (s *LadderService) UpdateItem(ctx context.Context, actor domain.Actor, itemID uuid.UUID, text string) (*domain.LadderItem, error) {
	it, room, err := s.ownedItem(ctx, actor, itemID)
	if err != nil {
		return nil, err
	}
	if room.Status != domain.RoomWaiting {
		return nil, domain.ErrRoomNotWaiting
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.Validationf("item text is required")
	}
	it.Text = text
	if err := s.store.UpdateItem(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

// DeleteItem removes an item; the rest shift to stay contiguous.
func (s *LadderService) DeleteItem(ctx context.Context, actor domain.Actor, itemID uuid.UUID) error {
	it, room, err := s.ownedItem(ctx, actor, itemID)
	if err != nil {
		return err
	}
	if room.Status != domain.RoomWaiting {
		return domain.ErrRoomNotWaiting
	}
	return s.store.DeleteItem(ctx, it.ID)
}

// Items lists a room's result labels by position.
func (s *LadderService) Items(ctx context.Context, roomID uuid.UUID) ([]*domain.LadderItem, error) {
	if _, err := s.store.RoomByID(ctx, roomID); err != nil {
		return nil, err
	}
	return s.store.Items(ctx, roomID)
}

// Select claims a starting column for a participant. Both "already
// selected" and "position taken" are enforced by unique constraints so
// concurrent claims cannot both win.
func (s *LadderService) Select(ctx context.Context, roomID, participantID uuid.UUID, start int) (*domain.Selection, error) {
	room, err := s.store.RoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status != domain.RoomInProgress {
		return nil, domain.ErrRoomNotInProgress
	}
	p, err := s.store.ParticipantByID(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if !p.Active || p.RoomID != room.ID {
		return nil, domain.ErrParticipantInactive
	}
	ladder, err := s.store.LadderByRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	if start < 0 || start >= ladder.Lines {
		return nil, domain.ErrInvalidPosition
	}
	sel := &domain.Selection{
		ID:            uuid.New(),
		RoomID:        room.ID,
		ParticipantID: participantID,
		Start:         start,
		CreatedAt:     s.now(),
	}
	if err := s.store.CreateSelection(ctx, sel); err != nil {
		return nil, err
	}
	return sel, nil
}

// Reveal resolves one participant's path and persists the result.
// Results are revealed individually; there is no reveal-all.
func (s *LadderService) Reveal(ctx context.Context, actor domain.Actor, roomID, participantID uuid.UUID) (*domain.Selection, error) {
	room, err := ownedRoom(ctx, s.store, actor, roomID)
	if err != nil {
		return nil, err
	}
	sel, err := s.store.SelectionByParticipant(ctx, room.ID, participantID)
	if err != nil {
		return nil, err
	}
	if sel.Revealed {
		return nil, domain.ErrAlreadyRevealed
	}
	ladder, err := s.store.LadderByRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	result := ResolveLadder(sel.Start, ladder.Rungs)
	if err := s.store.RevealSelection(ctx, sel.ID, result); err != nil {
		return nil, err
	}
	sel.Result = &result
	sel.Revealed = true
	return sel, nil
}

// State is the polled ladder snapshot: graph, items and selections.
func (s *LadderService) State(ctx context.Context, roomID uuid.UUID) (*domain.LadderState, error) {
	if _, err := s.store.RoomByID(ctx, roomID); err != nil {
		return nil, err
	}
	state := &domain.LadderState{}
	ladder, err := s.store.LadderByRoom(ctx, roomID)
	if err == nil {
		state.Ladder = ladder
	} else if err != domain.ErrLadderNotFound {
		return nil, err
	}
	items, err := s.store.Items(ctx, roomID)
	if err != nil {
		return nil, err
	}
	state.Items = make([]domain.LadderItem, 0, len(items))
	for _, it := range items {
		state.Items = append(state.Items, *it)
	}
	selections, err := s.store.Selections(ctx, roomID)
	if err != nil {
		return nil, err
	}
	state.Selections = make([]domain.Selection, 0, len(selections))
	for _, sel := range selections {
		state.Selections = append(state.Selections, *sel)
	}
	return state, nil
}

// StartGame implements GameEngine: requires two items and regenerates
// the graph, discarding any previous graph and selections.
func (s *LadderService) StartGame(ctx context.Context, room *domain.Room, _ StartOptions) error {
	count, err := s.store.ItemCount(ctx, room.ID)
	if err != nil {
		return err
	}
	if count < 2 {
		return domain.ErrNotEnoughItems
	}
	ladder := &domain.Ladder{
		ID:        uuid.New(),
		RoomID:    room.ID,
		Lines:     count,
		Rungs:     GenerateRungs(count, s.rnd),
		CreatedAt: s.now(),
	}
	return s.store.ReplaceLadder(ctx, ladder)
}

// AdvanceGame implements GameEngine; the ladder game has no rounds.
func (s *LadderService) AdvanceGame(context.Context, *domain.Room, AdvanceOptions) (bool, error) {
	return false, domain.Validationf("ladder games have nothing to advance")
}

// EndGame implements GameEngine.
func (s *LadderService) EndGame(context.Context, *domain.Room) error {
	return nil
}

func (s *LadderService) ownedItem(ctx context.Context, actor domain.Actor, itemID uuid.UUID) (*domain.LadderItem, *domain.Room, error) {
	it, err := s.store.ItemByID(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	room, err := ownedRoom(ctx, s.store, actor, it.RoomID)
	if err != nil {
		return nil, nil, err
	}
	return it, room, nil
}
