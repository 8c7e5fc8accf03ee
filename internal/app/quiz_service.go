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
	defaultTimeLimit = 30
	defaultPoints    = 100
)

// QuestionInput is the instructor's payload for creating a question.
type QuestionInput struct {
	Text      string
	Type      domain.QuestionType
	Options   []string
	Answer    string
	TimeLimit int
	Points    int
}

// QuestionPatch carries partial updates; nil fields are left unchanged.
type QuestionPatch struct {
	Text      *string
	Options   []string
	Answer    *string
	TimeLimit *int
	Points    *int
}

// QuizService implements the quiz engine: question management, answer
// scoring, and the per-participant pacing model.
type QuizService struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time
}

func NewQuizService(store Store, log zerolog.Logger) *QuizService {
	return &QuizService{
		store: store,
		log:   log.With().Str("component", "quiz").Logger(),
		now:   time.Now,
	}
}

// WithClock overrides the service clock; test use only.
func (s *QuizService) WithClock(now func() time.Time) *QuizService {
	s.now = now
	return s
}

// AddQuestion appends a question with the next order index. Content can
// only change while the room is waiting.
func (s *QuizService) AddQuestion(ctx context.Context, actor domain.Actor, roomID uuid.UUID, in QuestionInput) (*domain.Question, error) {
	room, err := ownedRoom(ctx, s.store, actor, roomID)
	if err != nil {
		return nil, err
	}
	if room.GameType != domain.GameQuiz {
		return nil, domain.ErrWrongGameType
	}
	if room.Status != domain.RoomWaiting {
		return nil, domain.ErrRoomNotWaiting
	}
	q := &domain.Question{
		ID:        uuid.New(),
		RoomID:    room.ID,
		Text:      strings.TrimSpace(in.Text),
		Type:      in.Type,
		Options:   in.Options,
		Answer:    in.Answer,
		TimeLimit: in.TimeLimit,
		Points:    in.Points,
		CreatedAt: s.now(),
	}
	if err := normalizeQuestion(q); err != nil {
		return nil, err
	}

	count, err := s.store.QuestionCount(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	q.Order = count + 1
	if err := s.store.CreateQuestion(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// UpdateQuestion edits a waiting room's question in place.
func (s *QuizService) UpdateQuestion(ctx context.Context, actor domain.Actor, questionID uuid.UUID, patch QuestionPatch) (*domain.Question, error) {
	q, room, err := s.ownedQuestion(ctx, actor, questionID)
	if err != nil {
		return nil, err
	}
	if room.Status != domain.RoomWaiting {
		return nil, domain.ErrRoomNotWaiting
	}
	if patch.Text != nil {
		q.Text = strings.TrimSpace(*patch.Text)
	}
	if patch.Options != nil {
		q.Options = patch.Options
	}
	if patch.Answer != nil {
		q.Answer = *patch.Answer
	}
	if patch.TimeLimit != nil {
		q.TimeLimit = *patch.TimeLimit
	}
	if patch.Points != nil {
		q.Points = *patch.Points
	}
	if err := normalizeQuestion(q); err != nil {
		return nil, err
	}
	if err := s.store.UpdateQuestion(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// DeleteQuestion removes a question; remaining questions are renumbered
// to stay contiguous.
func (s *QuizService) DeleteQuestion(ctx context.Context, actor domain.Actor, questionID uuid.UUID) error {
	q, room, err := s.ownedQuestion(ctx, actor, questionID)
	if err != nil {
		return err
	}
	if room.Status != domain.RoomWaiting {
		return domain.ErrRoomNotWaiting
	}
	return s.store.DeleteQuestion(ctx, q.ID)
}

// Questions lists a room's questions in order.
func (s *QuizService) Questions(ctx context.Context, roomID uuid.UUID) ([]*domain.Question, error) {
	if _, err := s.store.RoomByID(ctx, roomID); err != nil {
		return nil, err
	}
	return s.store.Questions(ctx, roomID)
}

// SubmitAnswer scores and records a participant's single submission for
// a question. The (question, participant) unique constraint makes the
// duplicate guard race-safe; the correct answer is returned either way.
func (s *QuizService) SubmitAnswer(ctx context.Context, questionID, participantID uuid.UUID, selected string, elapsedMs *int) (*domain.AnswerResult, error) {
	q, err := s.store.QuestionByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	room, err := s.store.RoomByID(ctx, q.RoomID)
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

	correct := selected == q.Answer
	points := 0
	if correct {
		points = q.Points
	}
	a := &domain.Answer{
		ID:            uuid.New(),
		QuestionID:    q.ID,
		ParticipantID: p.ID,
		Selected:      selected,
		Correct:       correct,
		ElapsedMs:     elapsedMs,
		Points:        points,
		CreatedAt:     s.now(),
	}
	if err := s.store.CreateAnswer(ctx, a); err != nil {
		return nil, err
	}
	if points > 0 {
		if err := s.store.AddScore(ctx, p.ID, points); err != nil {
			return nil, err
		}
	}
	return &domain.AnswerResult{Correct: correct, Points: points, CorrectAnswer: q.Answer}, nil
}

// ParticipantProgress reports a participant's next unanswered question,
// counting their answered rows against the ordered question list.
func (s *QuizService) ParticipantProgress(ctx context.Context, participantID uuid.UUID) (*domain.Progress, error) {
	p, err := s.store.ParticipantByID(ctx, participantID)
	if err != nil {
		return nil, err
	}
	questions, err := s.store.Questions(ctx, p.RoomID)
	if err != nil {
		return nil, err
	}
	answered, err := s.store.AnswerCount(ctx, p.RoomID, p.ID)
	if err != nil {
		return nil, err
	}
	prog := &domain.Progress{Total: len(questions), Answered: answered}
	if answered >= len(questions) {
		prog.Completed = true
		return prog, nil
	}
	prog.Next = questions[answered]
	return prog, nil
}

// RoomProgress is the instructor's completion overview.
func (s *QuizService) RoomProgress(ctx context.Context, actor domain.Actor, roomID uuid.UUID) (*domain.RoomProgress, error) {
	room, err := ownedRoom(ctx, s.store, actor, roomID)
	if err != nil {
		return nil, err
	}
	total, err := s.store.QuestionCount(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	participants, err := s.store.ActiveParticipantCount(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	completed := 0
	if total > 0 {
		completed, err = s.store.CompletedCount(ctx, room.ID, total)
		if err != nil {
			return nil, err
		}
	}
	return &domain.RoomProgress{Participants: participants, Completed: completed}, nil
}

// AnswersReport returns the answers to one question with summary stats.
func (s *QuizService) AnswersReport(ctx context.Context, actor domain.Actor, questionID uuid.UUID) ([]*domain.Answer, *domain.AnswerStats, error) {
	q, _, err := s.ownedQuestion(ctx, actor, questionID)
	if err != nil {
		return nil, nil, err
	}
	answers, err := s.store.AnswersByQuestion(ctx, q.ID)
	if err != nil {
		return nil, nil, err
	}
	stats := &domain.AnswerStats{Total: len(answers)}
	timeSum, timed := 0, 0
	for _, a := range answers {
		if a.Correct {
			stats.Correct++
		}
		if a.ElapsedMs != nil {
			timeSum += *a.ElapsedMs
			timed++
		}
	}
	stats.Incorrect = stats.Total - stats.Correct
	if stats.Total > 0 {
		stats.Accuracy = (stats.Correct*100 + stats.Total/2) / stats.Total
	}
	if timed > 0 {
		stats.AverageTimeMs = timeSum / timed
	}
	return answers, stats, nil
}

// State is the polled quiz snapshot: room, question count, and the
// question at the instructor's shared pointer.
func (s *QuizService) State(ctx context.Context, roomID uuid.UUID) (*domain.QuizState, error) {
	room, err := s.store.RoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	total, err := s.store.QuestionCount(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	state := &domain.QuizState{Room: room, TotalQuestions: total}
	if room.Status == domain.RoomInProgress && room.CurrentQuestion != nil {
		q, err := s.store.QuestionByOrder(ctx, room.ID, *room.CurrentQuestion)
		if err == nil {
			state.Current = q
		} else if err != domain.ErrQuestionNotFound {
			return nil, err
		}
	}
	return state, nil
}

// StartGame implements GameEngine: requires at least one question and
// points the room at question 1.
func (s *QuizService) StartGame(ctx context.Context, room *domain.Room, _ StartOptions) error {
	count, err := s.store.QuestionCount(ctx, room.ID)
	if err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrNoQuestions
	}
	first := 1
	room.CurrentQuestion = &first
	return nil
}

// AdvanceGame implements GameEngine: moves the shared pointer to the
// next question, finishing after the last one.
func (s *QuizService) AdvanceGame(ctx context.Context, room *domain.Room, _ AdvanceOptions) (bool, error) {
	total, err := s.store.QuestionCount(ctx, room.ID)
	if err != nil {
		return false, err
	}
	next := 1
	if room.CurrentQuestion != nil {
		next = *room.CurrentQuestion + 1
	}
	if next > total {
		return true, nil
	}
	room.CurrentQuestion = &next
	return false, nil
}

// EndGame implements GameEngine.
func (s *QuizService) EndGame(_ context.Context, room *domain.Room) error {
	room.CurrentQuestion = nil
	return nil
}

func (s *QuizService) ownedQuestion(ctx context.Context, actor domain.Actor, questionID uuid.UUID) (*domain.Question, *domain.Room, error) {
	q, err := s.store.QuestionByID(ctx, questionID)
	if err != nil {
		return nil, nil, err
	}
	room, err := ownedRoom(ctx, s.store, actor, q.RoomID)
	if err != nil {
		return nil, nil, err
	}
	return q, room, nil
}

func normalizeQuestion(q *domain.Question) error {
	if q.Text == "" {
		return domain.Validationf("question text is required")
	}
	if q.Answer == "" {
		return domain.Validationf("a correct answer is required")
	}
	switch q.Type {
	case domain.QuestionMultipleChoice:
		if len(q.Options) < 2 {
			return domain.Validationf("multiple choice questions need at least two options")
		}
	case domain.QuestionTrueFalse:
		q.Options = append([]string(nil), domain.TrueFalseOptions...)
		if q.Answer != "O" && q.Answer != "X" {
			return domain.Validationf("true/false answers must be O or X")
		}
	default:
		return domain.Validationf("unknown question type %q", q.Type)
	}
	if q.TimeLimit <= 0 {
		q.TimeLimit = defaultTimeLimit
	}
	if q.Points <= 0 {
		q.Points = defaultPoints
	}
	return nil
}
