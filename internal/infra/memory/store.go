// Package memory is an in-process implementation of the app store,
// used by unit tests and no-database runs. It enforces the same
// uniqueness rules the postgres schema enforces with constraints.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"metislap/internal/domain"
)

type Store struct {
	mu sync.RWMutex

	rooms       map[uuid.UUID]*domain.Room
	roomsByCode map[string]uuid.UUID

	participants map[uuid.UUID]*domain.Participant

	questions map[uuid.UUID]*domain.Question
	answers   map[uuid.UUID]*domain.Answer
	answered  map[string]bool // questionID|participantID

	words   map[uuid.UUID]*domain.Word
	rounds  map[uuid.UUID]*domain.Round
	guesses map[uuid.UUID]*domain.Guess
	guessed map[string]bool // roundID|participantID, correct guesses only

	items      map[uuid.UUID]*domain.LadderItem
	ladders    map[uuid.UUID]*domain.Ladder // keyed by room
	selections map[uuid.UUID]*domain.Selection
	selected   map[string]bool // roomID|participantID
	claimed    map[string]bool // roomID|startPosition
}

func NewStore() *Store {
	return &Store{
		rooms:        make(map[uuid.UUID]*domain.Room),
		roomsByCode:  make(map[string]uuid.UUID),
		participants: make(map[uuid.UUID]*domain.Participant),
		questions:    make(map[uuid.UUID]*domain.Question),
		answers:      make(map[uuid.UUID]*domain.Answer),
		answered:     make(map[string]bool),
		words:        make(map[uuid.UUID]*domain.Word),
		rounds:       make(map[uuid.UUID]*domain.Round),
		guesses:      make(map[uuid.UUID]*domain.Guess),
		guessed:      make(map[string]bool),
		items:        make(map[uuid.UUID]*domain.LadderItem),
		ladders:      make(map[uuid.UUID]*domain.Ladder),
		selections:   make(map[uuid.UUID]*domain.Selection),
		selected:     make(map[string]bool),
		claimed:      make(map[string]bool),
	}
}

// --- rooms ---

func (s *Store) CreateRoom(_ context.Context, room *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.roomsByCode[room.Code]; taken {
		return domain.ErrRoomCodeTaken
	}
	cp := *room
	s.rooms[room.ID] = &cp
	s.roomsByCode[room.Code] = room.ID
	return nil
}

func (s *Store) RoomByID(_ context.Context, id uuid.UUID) (*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	cp := *room
	return &cp, nil
}

func (s *Store) RoomByCode(_ context.Context, code string) (*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.roomsByCode[code]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	cp := *s.rooms[id]
	return &cp, nil
}

func (s *Store) RoomsByInstructor(_ context.Context, instructorID string, status *domain.RoomStatus) ([]*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Room
	for _, room := range s.rooms {
		if room.InstructorID != instructorID {
			continue
		}
		if status != nil && room.Status != *status {
			continue
		}
		cp := *room
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateRoom(_ context.Context, room *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.ID]; !ok {
		return domain.ErrRoomNotFound
	}
	cp := *room
	s.rooms[room.ID] = &cp
	return nil
}

func (s *Store) DeleteRoom(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return domain.ErrRoomNotFound
	}
	delete(s.roomsByCode, room.Code)
	delete(s.rooms, id)
	for pid, p := range s.participants {
		if p.RoomID == id {
			delete(s.participants, pid)
		}
	}
	for qid, q := range s.questions {
		if q.RoomID == id {
			s.deleteQuestionLocked(qid)
		}
	}
	for wid, w := range s.words {
		if w.RoomID == id {
			delete(s.words, wid)
		}
	}
	s.resetRoundsLocked(id)
	for iid, it := range s.items {
		if it.RoomID == id {
			delete(s.items, iid)
		}
	}
	s.dropLadderLocked(id)
	return nil
}

// --- participants ---

func (s *Store) CreateParticipant(_ context.Context, p *domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.participants {
		if existing.RoomID == p.RoomID && existing.Nickname == p.Nickname {
			return domain.ErrNicknameTaken
		}
	}
	cp := *p
	s.participants[p.ID] = &cp
	return nil
}

func (s *Store) ParticipantByID(_ context.Context, id uuid.UUID) (*domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[id]
	if !ok {
		return nil, domain.ErrParticipantNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Store) ParticipantByNickname(_ context.Context, roomID uuid.UUID, nickname string) (*domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.participants {
		if p.RoomID == roomID && p.Nickname == nickname {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrParticipantNotFound
}

func (s *Store) UpdateParticipant(_ context.Context, p *domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.participants[p.ID]; !ok {
		return domain.ErrParticipantNotFound
	}
	cp := *p
	s.participants[p.ID] = &cp
	return nil
}

func (s *Store) AddScore(_ context.Context, id uuid.UUID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.participants[id]
	if !ok {
		return domain.ErrParticipantNotFound
	}
	p.Score += delta
	return nil
}

func (s *Store) Participants(_ context.Context, roomID uuid.UUID, activeOnly bool) ([]*domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Participant
	for _, p := range s.participants {
		if p.RoomID != roomID {
			continue
		}
		if activeOnly && !p.Active {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (s *Store) ActiveParticipantCount(_ context.Context, roomID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, p := range s.participants {
		if p.RoomID == roomID && p.Active {
			count++
		}
	}
	return count, nil
}

// --- quiz ---

func (s *Store) CreateQuestion(_ context.Context, q *domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *q
	s.questions[q.ID] = &cp
	return nil
}

func (s *Store) QuestionByID(_ context.Context, id uuid.UUID) (*domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, domain.ErrQuestionNotFound
	}
	cp := *q
	return &cp, nil
}

func (s *Store) Questions(_ context.Context, roomID uuid.UUID) ([]*domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.questionsLocked(roomID), nil
}

func (s *Store) questionsLocked(roomID uuid.UUID) []*domain.Question {
	var out []*domain.Question
	for _, q := range s.questions {
		if q.RoomID == roomID {
			cp := *q
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func (s *Store) QuestionByOrder(_ context.Context, roomID uuid.UUID, order int) (*domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, q := range s.questions {
		if q.RoomID == roomID && q.Order == order {
			cp := *q
			return &cp, nil
		}
	}
	return nil, domain.ErrQuestionNotFound
}

func (s *Store) QuestionCount(_ context.Context, roomID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, q := range s.questions {
		if q.RoomID == roomID {
			count++
		}
	}
	return count, nil
}

func (s *Store) UpdateQuestion(_ context.Context, q *domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[q.ID]; !ok {
		return domain.ErrQuestionNotFound
	}
	cp := *q
	s.questions[q.ID] = &cp
	return nil
}

func (s *Store) DeleteQuestion(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	roomID := q.RoomID
	s.deleteQuestionLocked(id)
	for i, rest := range s.questionsLocked(roomID) {
		s.questions[rest.ID].Order = i + 1
	}
	return nil
}

func (s *Store) deleteQuestionLocked(id uuid.UUID) {
	delete(s.questions, id)
	for aid, a := range s.answers {
		if a.QuestionID == id {
			delete(s.answers, aid)
			delete(s.answered, pairKey(a.QuestionID, a.ParticipantID))
		}
	}
}

func (s *Store) CreateAnswer(_ context.Context, a *domain.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey(a.QuestionID, a.ParticipantID)
	if s.answered[key] {
		return domain.ErrAlreadyAnswered
	}
	cp := *a
	s.answers[a.ID] = &cp
	s.answered[key] = true
	return nil
}

func (s *Store) AnswerCount(_ context.Context, roomID, participantID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.answerCountLocked(roomID, participantID), nil
}

func (s *Store) answerCountLocked(roomID, participantID uuid.UUID) int {
	count := 0
	for _, a := range s.answers {
		if a.ParticipantID != participantID {
			continue
		}
		if q, ok := s.questions[a.QuestionID]; ok && q.RoomID == roomID {
			count++
		}
	}
	return count
}

func (s *Store) AnswersByQuestion(_ context.Context, questionID uuid.UUID) ([]*domain.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Answer
	for _, a := range s.answers {
		if a.QuestionID == questionID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CompletedCount(_ context.Context, roomID uuid.UUID, total int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, p := range s.participants {
		if p.RoomID != roomID || !p.Active {
			continue
		}
		if s.answerCountLocked(roomID, p.ID) >= total {
			count++
		}
	}
	return count, nil
}

// --- drawing ---

func (s *Store) CreateWord(_ context.Context, w *domain.Word) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *w
	s.words[w.ID] = &cp
	return nil
}

func (s *Store) WordByID(_ context.Context, id uuid.UUID) (*domain.Word, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.words[id]
	if !ok {
		return nil, domain.ErrWordNotFound
	}
	cp := *w
	return &cp, nil
}

func (s *Store) Words(_ context.Context, roomID uuid.UUID) ([]*domain.Word, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wordsLocked(roomID), nil
}

func (s *Store) wordsLocked(roomID uuid.UUID) []*domain.Word {
	var out []*domain.Word
	for _, w := range s.words {
		if w.RoomID == roomID {
			cp := *w
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func (s *Store) WordByOrder(_ context.Context, roomID uuid.UUID, order int) (*domain.Word, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, w := range s.words {
		if w.RoomID == roomID && w.Order == order {
			cp := *w
			return &cp, nil
		}
	}
	return nil, domain.ErrWordNotFound
}

func (s *Store) WordCount(_ context.Context, roomID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, w := range s.words {
		if w.RoomID == roomID {
			count++
		}
	}
	return count, nil
}

func (s *Store) UpdateWord(_ context.Context, w *domain.Word) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.words[w.ID]; !ok {
		return domain.ErrWordNotFound
	}
	cp := *w
	s.words[w.ID] = &cp
	return nil
}

func (s *Store) DeleteWord(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.words[id]
	if !ok {
		return domain.ErrWordNotFound
	}
	roomID := w.RoomID
	delete(s.words, id)
	for i, rest := range s.wordsLocked(roomID) {
		s.words[rest.ID].Order = i + 1
	}
	return nil
}

func (s *Store) ResetRounds(_ context.Context, roomID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetRoundsLocked(roomID)
	return nil
}

func (s *Store) resetRoundsLocked(roomID uuid.UUID) {
	for rid, r := range s.rounds {
		if r.RoomID != roomID {
			continue
		}
		for gid, g := range s.guesses {
			if g.RoundID == rid {
				delete(s.guesses, gid)
				delete(s.guessed, pairKey(g.RoundID, g.ParticipantID))
			}
		}
		delete(s.rounds, rid)
	}
}

func (s *Store) CreateRound(_ context.Context, r *domain.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rounds {
		if existing.RoomID == r.RoomID && existing.Number == r.Number {
			return &domain.Error{Kind: domain.KindConflict, Message: "round already exists"}
		}
	}
	cp := *r
	s.rounds[r.ID] = &cp
	return nil
}

func (s *Store) RoundByID(_ context.Context, id uuid.UUID) (*domain.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rounds[id]
	if !ok {
		return nil, domain.ErrRoundNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *Store) RoundByNumber(_ context.Context, roomID uuid.UUID, number int) (*domain.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.rounds {
		if r.RoomID == roomID && r.Number == number {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrRoundNotFound
}

func (s *Store) FinishRound(_ context.Context, id uuid.UUID, endedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rounds[id]
	if !ok {
		return domain.ErrRoundNotFound
	}
	r.Status = domain.RoundFinished
	r.EndedAt = &endedAt
	return nil
}

func (s *Store) UpdateSnapshot(_ context.Context, id uuid.UUID, data string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rounds[id]
	if !ok {
		return domain.ErrRoundNotFound
	}
	r.Snapshot = data
	return nil
}

func (s *Store) CreateGuess(_ context.Context, g *domain.Guess) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey(g.RoundID, g.ParticipantID)
	if g.Correct && s.guessed[key] {
		return domain.ErrAlreadyGuessed
	}
	cp := *g
	s.guesses[g.ID] = &cp
	if g.Correct {
		s.guessed[key] = true
	}
	return nil
}

func (s *Store) HasCorrectGuess(_ context.Context, roundID, participantID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.guessed[pairKey(roundID, participantID)], nil
}

func (s *Store) CorrectGuessCount(_ context.Context, roundID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, g := range s.guesses {
		if g.RoundID == roundID && g.Correct {
			count++
		}
	}
	return count, nil
}

func (s *Store) Guesses(_ context.Context, roundID uuid.UUID) ([]*domain.Guess, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Guess
	for _, g := range s.guesses {
		if g.RoundID == roundID {
			cp := *g
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// --- ladder ---

func (s *Store) CreateItem(_ context.Context, it *domain.LadderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *it
	s.items[it.ID] = &cp
	return nil
}

func (s *Store) ItemByID(_ context.Context, id uuid.UUID) (*domain.LadderItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	cp := *it
	return &cp, nil
}

func (s *Store) Items(_ context.Context, roomID uuid.UUID) ([]*domain.LadderItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.itemsLocked(roomID), nil
}

func (s *Store) itemsLocked(roomID uuid.UUID) []*domain.LadderItem {
	var out []*domain.LadderItem
	for _, it := range s.items {
		if it.RoomID == roomID {
			cp := *it
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func (s *Store) ItemCount(_ context.Context, roomID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, it := range s.items {
		if it.RoomID == roomID {
			count++
		}
	}
	return count, nil
}

func (s *Store) UpdateItem(_ context.Context, it *domain.LadderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[it.ID]; !ok {
		return domain.ErrItemNotFound
	}
	cp := *it
	s.items[it.ID] = &cp
	return nil
}

func (s *Store) DeleteItem(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return domain.ErrItemNotFound
	}
	roomID := it.RoomID
	delete(s.items, id)
	for i, rest := range s.itemsLocked(roomID) {
		s.items[rest.ID].Position = i
	}
	return nil
}

func (s *Store) ReplaceLadder(_ context.Context, l *domain.Ladder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropLadderLocked(l.RoomID)
	cp := *l
	s.ladders[l.RoomID] = &cp
	return nil
}

func (s *Store) dropLadderLocked(roomID uuid.UUID) {
	delete(s.ladders, roomID)
	for sid, sel := range s.selections {
		if sel.RoomID == roomID {
			delete(s.selections, sid)
			delete(s.selected, pairKey(sel.RoomID, sel.ParticipantID))
			delete(s.claimed, posKey(sel.RoomID, sel.Start))
		}
	}
}

func (s *Store) LadderByRoom(_ context.Context, roomID uuid.UUID) (*domain.Ladder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.ladders[roomID]
	if !ok {
		return nil, domain.ErrLadderNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *Store) CreateSelection(_ context.Context, sel *domain.Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected[pairKey(sel.RoomID, sel.ParticipantID)] {
		return domain.ErrAlreadySelected
	}
	if s.claimed[posKey(sel.RoomID, sel.Start)] {
		return domain.ErrPositionTaken
	}
	cp := *sel
	s.selections[sel.ID] = &cp
	s.selected[pairKey(sel.RoomID, sel.ParticipantID)] = true
	s.claimed[posKey(sel.RoomID, sel.Start)] = true
	return nil
}

func (s *Store) SelectionByParticipant(_ context.Context, roomID, participantID uuid.UUID) (*domain.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sel := range s.selections {
		if sel.RoomID == roomID && sel.ParticipantID == participantID {
			cp := *sel
			return &cp, nil
		}
	}
	return nil, domain.ErrSelectionNotFound
}

func (s *Store) Selections(_ context.Context, roomID uuid.UUID) ([]*domain.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Selection
	for _, sel := range s.selections {
		if sel.RoomID == roomID {
			cp := *sel
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

func (s *Store) RevealSelection(_ context.Context, id uuid.UUID, result int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, ok := s.selections[id]
	if !ok {
		return domain.ErrSelectionNotFound
	}
	if sel.Revealed {
		return domain.ErrAlreadyRevealed
	}
	sel.Result = &result
	sel.Revealed = true
	return nil
}

func pairKey(a, b uuid.UUID) string {
	return a.String() + "|" + b.String()
}

func posKey(roomID uuid.UUID, pos int) string {
	return fmt.Sprintf("%s|%d", roomID, pos)
}
