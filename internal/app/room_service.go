package app

import (
	"context"
	"crypto/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"metislap/internal/domain"
)

const (
	roomCodeLength    = 6
	roomCodeAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomCodeAttempts  = 5
	defaultCapacity   = 30
	minNicknameLength = 2
	maxNicknameLength = 20
)

// StartOptions carries engine-specific start input; DrawerID is required
// for drawing rooms only.
type StartOptions struct {
	DrawerID uuid.UUID
}

// AdvanceOptions carries engine-specific advance input; DrawerID is the
// instructor's pick for the next drawing round.
type AdvanceOptions struct {
	DrawerID uuid.UUID
}

// GameEngine is the per-game-type capability behind the shared room
// lifecycle. Implementations mutate the room's progress pointers; the
// room service persists the room afterwards.
type GameEngine interface {
	// StartGame validates the game's minimum content and performs
	// engine-specific initialization.
	StartGame(ctx context.Context, room *domain.Room, opts StartOptions) error
	// AdvanceGame moves to the next question/round. finished reports that
	// the game rolled past its last unit and must end instead.
	AdvanceGame(ctx context.Context, room *domain.Room, opts AdvanceOptions) (finished bool, err error)
	// EndGame clears engine progress state (open rounds, pointers).
	EndGame(ctx context.Context, room *domain.Room) error
}

// RoomService owns room lifecycle, the roster, and dispatch into the
// game engines.
type RoomService struct {
	store   Store
	engines map[domain.GameType]GameEngine
	log     zerolog.Logger
	now     func() time.Time
}

func NewRoomService(store Store, engines map[domain.GameType]GameEngine, log zerolog.Logger) *RoomService {
	return &RoomService{
		store:   store,
		engines: engines,
		log:     log.With().Str("component", "rooms").Logger(),
		now:     time.Now,
	}
}

// WithClock overrides the service clock; test use only.
func (s *RoomService) WithClock(now func() time.Time) *RoomService {
	s.now = now
	return s
}

// CreateRoom registers a new waiting room with a fresh unique code.
func (s *RoomService) CreateRoom(ctx context.Context, actor domain.Actor, name string, gameType domain.GameType, capacity int) (*domain.Room, error) {
	if !actor.Approved {
		return nil, domain.ErrNotApproved
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Validationf("room name is required")
	}
	if !gameType.Valid() {
		return nil, domain.Validationf("unknown game type %q", gameType)
	}
	if capacity <= 0 {
		capacity = defaultCapacity
	}

	now := s.now()
	room := &domain.Room{
		ID:           uuid.New(),
		InstructorID: actor.InstructorID,
		Name:         name,
		GameType:     gameType,
		Capacity:     capacity,
		Status:       domain.RoomWaiting,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Codes collide rarely; retry on the storage unique constraint.
	var err error
	for i := 0; i < roomCodeAttempts; i++ {
		room.Code = newRoomCode()
		err = s.store.CreateRoom(ctx, room)
		if err != domain.ErrRoomCodeTaken {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("room", room.Code).Str("type", string(gameType)).Msg("room created")
	return room, nil
}

// Rooms lists the instructor's rooms, optionally filtered by status.
func (s *RoomService) Rooms(ctx context.Context, actor domain.Actor, status *domain.RoomStatus) ([]*domain.Room, error) {
	return s.store.RoomsByInstructor(ctx, actor.InstructorID, status)
}

// Room returns one of the instructor's rooms.
func (s *RoomService) Room(ctx context.Context, actor domain.Actor, roomID uuid.UUID) (*domain.Room, error) {
	return s.ownedRoom(ctx, actor, roomID)
}

// RoomByCode resolves a join code (normalized to uppercase) for
// participants. Finished rooms are rejected unless includeFinished.
func (s *RoomService) RoomByCode(ctx context.Context, code string, includeFinished bool) (*domain.Room, error) {
	room, err := s.store.RoomByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if room.Status == domain.RoomFinished && !includeFinished {
		return nil, domain.ErrRoomFinished
	}
	return room, nil
}

// UpdateRoom renames a waiting-or-later room and/or adjusts capacity.
func (s *RoomService) UpdateRoom(ctx context.Context, actor domain.Actor, roomID uuid.UUID, name *string, capacity *int) (*domain.Room, error) {
	room, err := s.ownedRoom(ctx, actor, roomID)
	if err != nil {
		return nil, err
	}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, domain.Validationf("room name is required")
		}
		room.Name = trimmed
	}
	if capacity != nil {
		if *capacity <= 0 {
			return nil, domain.Validationf("capacity must be positive")
		}
		room.Capacity = *capacity
	}
	room.UpdatedAt = s.now()
	if err := s.store.UpdateRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// DeleteRoom removes a room; rejected while the game is in progress.
func (s *RoomService) DeleteRoom(ctx context.Context, actor domain.Actor, roomID uuid.UUID) error {
	room, err := s.ownedRoom(ctx, actor, roomID)
	if err != nil {
		return err
	}
	if room.Status == domain.RoomInProgress {
		return domain.ErrRoomInProgress
	}
	return s.store.DeleteRoom(ctx, room.ID)
}

// StartGame transitions waiting -> in_progress after the engine accepts.
func (s *RoomService) StartGame(ctx context.Context, actor domain.Actor, roomID uuid.UUID, opts StartOptions) (*domain.Room, error) {
	room, err := s.ownedRoom(ctx, actor, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status != domain.RoomWaiting {
		return nil, domain.ErrRoomNotWaiting
	}
	engine := s.engines[room.GameType]
	if err := engine.StartGame(ctx, room, opts); err != nil {
		return nil, err
	}
	now := s.now()
	room.Status = domain.RoomInProgress
	room.StartedAt = &now
	room.EndedAt = nil
	room.UpdatedAt = now
	if err := s.store.UpdateRoom(ctx, room); err != nil {
		return nil, err
	}
	s.log.Info().Str("room", room.Code).Msg("game started")
	return room, nil
}

// AdvanceGame moves the shared progress pointer forward; rolling past
// the last question/round ends the game instead.
func (s *RoomService) AdvanceGame(ctx context.Context, actor domain.Actor, roomID uuid.UUID, opts AdvanceOptions) (*domain.Room, error) {
	room, err := s.ownedRoom(ctx, actor, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status != domain.RoomInProgress {
		return nil, domain.ErrRoomNotInProgress
	}
	engine := s.engines[room.GameType]
	finished, err := engine.AdvanceGame(ctx, room, opts)
	if err != nil {
		return nil, err
	}
	if finished {
		return s.finish(ctx, room, engine)
	}
	room.UpdatedAt = s.now()
	if err := s.store.UpdateRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// EndGame force-finishes a non-waiting room. Scores are kept.
func (s *RoomService) EndGame(ctx context.Context, actor domain.Actor, roomID uuid.UUID) (*domain.Room, error) {
	room, err := s.ownedRoom(ctx, actor, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status == domain.RoomWaiting {
		return nil, domain.ErrRoomNotInProgress
	}
	return s.finish(ctx, room, s.engines[room.GameType])
}

func (s *RoomService) finish(ctx context.Context, room *domain.Room, engine GameEngine) (*domain.Room, error) {
	if err := engine.EndGame(ctx, room); err != nil {
		return nil, err
	}
	now := s.now()
	room.Status = domain.RoomFinished
	room.CurrentQuestion = nil
	room.CurrentRound = nil
	room.EndedAt = &now
	room.UpdatedAt = now
	if err := s.store.UpdateRoom(ctx, room); err != nil {
		return nil, err
	}
	s.log.Info().Str("room", room.Code).Msg("game ended")
	return room, nil
}

// ResetGame returns a room to waiting, clearing progress pointers and
// timestamps. Content and participant scores are kept.
func (s *RoomService) ResetGame(ctx context.Context, actor domain.Actor, roomID uuid.UUID) (*domain.Room, error) {
	room, err := s.ownedRoom(ctx, actor, roomID)
	if err != nil {
		return nil, err
	}
	room.Status = domain.RoomWaiting
	room.CurrentQuestion = nil
	room.CurrentRound = nil
	room.StartedAt = nil
	room.EndedAt = nil
	room.UpdatedAt = s.now()
	if err := s.store.UpdateRoom(ctx, room); err != nil {
		return nil, err
	}
	s.log.Info().Str("room", room.Code).Msg("game reset")
	return room, nil
}

// Join registers a participant by nickname, reactivating a matching
// inactive record instead of duplicating it.
func (s *RoomService) Join(ctx context.Context, code, nickname string) (*domain.Participant, *domain.Room, error) {
	nickname = strings.TrimSpace(nickname)
	if len([]rune(nickname)) < minNicknameLength || len([]rune(nickname)) > maxNicknameLength {
		return nil, nil, domain.Validationf("nickname must be %d-%d characters", minNicknameLength, maxNicknameLength)
	}
	room, err := s.RoomByCode(ctx, code, false)
	if err != nil {
		return nil, nil, err
	}

	count, err := s.store.ActiveParticipantCount(ctx, room.ID)
	if err != nil {
		return nil, nil, err
	}
	if count >= room.Capacity {
		return nil, nil, domain.ErrRoomFull
	}

	existing, err := s.store.ParticipantByNickname(ctx, room.ID, nickname)
	switch err {
	case nil:
		if existing.Active {
			return nil, nil, domain.ErrNicknameTaken
		}
		existing.Active = true
		existing.LeftAt = nil
		existing.JoinedAt = s.now()
		if err := s.store.UpdateParticipant(ctx, existing); err != nil {
			return nil, nil, err
		}
		return existing, room, nil
	case domain.ErrParticipantNotFound:
		// fall through to insert
	default:
		return nil, nil, err
	}

	p := &domain.Participant{
		ID:       uuid.New(),
		RoomID:   room.ID,
		Nickname: nickname,
		Active:   true,
		JoinedAt: s.now(),
	}
	// The (room, nickname) unique constraint closes the read-then-write
	// race against a concurrent join with the same nickname.
	if err := s.store.CreateParticipant(ctx, p); err != nil {
		return nil, nil, err
	}
	s.log.Info().Str("room", room.Code).Str("nickname", nickname).Msg("participant joined")
	return p, room, nil
}

// Leave marks a participant inactive, freeing the nickname.
func (s *RoomService) Leave(ctx context.Context, participantID uuid.UUID) error {
	p, err := s.store.ParticipantByID(ctx, participantID)
	if err != nil {
		return err
	}
	if !p.Active {
		return nil
	}
	now := s.now()
	p.Active = false
	p.LeftAt = &now
	return s.store.UpdateParticipant(ctx, p)
}

// Participants lists the room roster for its instructor.
func (s *RoomService) Participants(ctx context.Context, actor domain.Actor, roomID uuid.UUID, activeOnly bool) ([]*domain.Participant, error) {
	room, err := s.ownedRoom(ctx, actor, roomID)
	if err != nil {
		return nil, err
	}
	return s.store.Participants(ctx, room.ID, activeOnly)
}

// ActiveCount returns the live participant count for a room.
func (s *RoomService) ActiveCount(ctx context.Context, roomID uuid.UUID) (int, error) {
	return s.store.ActiveParticipantCount(ctx, roomID)
}

func (s *RoomService) ownedRoom(ctx context.Context, actor domain.Actor, roomID uuid.UUID) (*domain.Room, error) {
	return ownedRoom(ctx, s.store, actor, roomID)
}

func ownedRoom(ctx context.Context, store RoomStore, actor domain.Actor, roomID uuid.UUID) (*domain.Room, error) {
	room, err := store.RoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.InstructorID != actor.InstructorID {
		return nil, domain.ErrNotRoomOwner
	}
	return room, nil
}

func newRoomCode() string {
	buf := make([]byte, roomCodeLength)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	for i, b := range buf {
		buf[i] = roomCodeAlphabet[int(b)%len(roomCodeAlphabet)]
	}
	return string(buf)
}
