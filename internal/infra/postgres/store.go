// Package postgres is the production store. Writes and row mapping go
// through bun; the count and lookup queries on the polling hot path use
// a pgx pool directly. Duplicate-submission invariants live in the
// schema's unique constraints and surface as domain conflict errors.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"metislap/internal/domain"
)

type Store struct {
	db   *bun.DB
	pool *pgxpool.Pool
}

func NewStore(db *bun.DB, pool *pgxpool.Pool) *Store {
	return &Store{db: db, pool: pool}
}

// conflictByConstraint maps unique-constraint names to the sentinel the
// services compare against.
var conflictByConstraint = map[string]error{
	"game_rooms_room_code_key":              domain.ErrRoomCodeTaken,
	"game_participants_room_nickname_key":   domain.ErrNicknameTaken,
	"quiz_answers_question_participant_key": domain.ErrAlreadyAnswered,
	"drawing_guesses_one_correct_key":       domain.ErrAlreadyGuessed,
	"ladder_selections_participant_key":     domain.ErrAlreadySelected,
	"ladder_selections_position_key":        domain.ErrPositionTaken,
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
		if mapped, ok := conflictByConstraint[pgErr.Field('n')]; ok {
			return mapped
		}
	}
	return err
}

func notFound(err, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		return sentinel
	}
	return err
}

// --- rooms ---

func (s *Store) CreateRoom(ctx context.Context, room *domain.Room) error {
	_, err := s.db.NewInsert().Model(roomToRecord(room)).Exec(ctx)
	return translate(err)
}

func (s *Store) RoomByID(ctx context.Context, id uuid.UUID) (*domain.Room, error) {
	rec := new(roomRecord)
	if err := s.db.NewSelect().Model(rec).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, domain.ErrRoomNotFound)
	}
	return rec.toDomain(), nil
}

func (s *Store) RoomByCode(ctx context.Context, code string) (*domain.Room, error) {
	rec := new(roomRecord)
	if err := s.db.NewSelect().Model(rec).Where("room_code = ?", code).Scan(ctx); err != nil {
		return nil, notFound(err, domain.ErrRoomNotFound)
	}
	return rec.toDomain(), nil
}

func (s *Store) RoomsByInstructor(ctx context.Context, instructorID string, status *domain.RoomStatus) ([]*domain.Room, error) {
	var recs []roomRecord
	q := s.db.NewSelect().Model(&recs).
		Where("instructor_id = ?", instructorID).
		Order("created_at DESC")
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	rooms := make([]*domain.Room, 0, len(recs))
	for i := range recs {
		rooms = append(rooms, recs[i].toDomain())
	}
	return rooms, nil
}

func (s *Store) UpdateRoom(ctx context.Context, room *domain.Room) error {
	res, err := s.db.NewUpdate().Model(roomToRecord(room)).WherePK().Exec(ctx)
	if err != nil {
		return translate(err)
	}
	return requireRow(res, domain.ErrRoomNotFound)
}

func (s *Store) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.NewDelete().Model((*roomRecord)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	return requireRow(res, domain.ErrRoomNotFound)
}

// --- participants ---

func (s *Store) CreateParticipant(ctx context.Context, p *domain.Participant) error {
	_, err := s.db.NewInsert().Model(participantToRecord(p)).Exec(ctx)
	return translate(err)
}

func (s *Store) ParticipantByID(ctx context.Context, id uuid.UUID) (*domain.Participant, error) {
	rec := new(participantRecord)
	if err := s.db.NewSelect().Model(rec).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, domain.ErrParticipantNotFound)
	}
	return rec.toDomain(), nil
}

func (s *Store) ParticipantByNickname(ctx context.Context, roomID uuid.UUID, nickname string) (*domain.Participant, error) {
	rec := new(participantRecord)
	err := s.db.NewSelect().Model(rec).
		Where("room_id = ?", roomID).
		Where("nickname = ?", nickname).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, domain.ErrParticipantNotFound)
	}
	return rec.toDomain(), nil
}

func (s *Store) UpdateParticipant(ctx context.Context, p *domain.Participant) error {
	res, err := s.db.NewUpdate().Model(participantToRecord(p)).WherePK().Exec(ctx)
	if err != nil {
		return translate(err)
	}
	return requireRow(res, domain.ErrParticipantNotFound)
}

func (s *Store) AddScore(ctx context.Context, id uuid.UUID, delta int) error {
	res, err := s.db.NewUpdate().Model((*participantRecord)(nil)).
		Set("score = score + ?", delta).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireRow(res, domain.ErrParticipantNotFound)
}

func (s *Store) Participants(ctx context.Context, roomID uuid.UUID, activeOnly bool) ([]*domain.Participant, error) {
	var recs []participantRecord
	q := s.db.NewSelect().Model(&recs).
		Where("room_id = ?", roomID).
		Order("joined_at ASC")
	if activeOnly {
		q = q.Where("is_active")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]*domain.Participant, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toDomain())
	}
	return out, nil
}

func (s *Store) ActiveParticipantCount(ctx context.Context, roomID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM game_participants WHERE room_id = $1 AND is_active`,
		roomID).Scan(&count)
	return count, err
}

// --- quiz ---

func (s *Store) CreateQuestion(ctx context.Context, q *domain.Question) error {
	_, err := s.db.NewInsert().Model(questionToRecord(q)).Exec(ctx)
	return translate(err)
}

func (s *Store) QuestionByID(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	rec := new(questionRecord)
	if err := s.db.NewSelect().Model(rec).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, domain.ErrQuestionNotFound)
	}
	return rec.toDomain(), nil
}

func (s *Store) Questions(ctx context.Context, roomID uuid.UUID) ([]*domain.Question, error) {
	var recs []questionRecord
	err := s.db.NewSelect().Model(&recs).
		Where("room_id = ?", roomID).
		Order("order_num ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Question, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toDomain())
	}
	return out, nil
}

func (s *Store) QuestionByOrder(ctx context.Context, roomID uuid.UUID, order int) (*domain.Question, error) {
	rec := new(questionRecord)
	err := s.db.NewSelect().Model(rec).
		Where("room_id = ?", roomID).
		Where("order_num = ?", order).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, domain.ErrQuestionNotFound)
	}
	return rec.toDomain(), nil
}

func (s *Store) QuestionCount(ctx context.Context, roomID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quiz_questions WHERE room_id = $1`, roomID).Scan(&count)
	return count, err
}

func (s *Store) UpdateQuestion(ctx context.Context, q *domain.Question) error {
	res, err := s.db.NewUpdate().Model(questionToRecord(q)).WherePK().Exec(ctx)
	if err != nil {
		return translate(err)
	}
	return requireRow(res, domain.ErrQuestionNotFound)
}

func (s *Store) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		rec := new(questionRecord)
		if err := tx.NewSelect().Model(rec).Where("id = ?", id).Scan(ctx); err != nil {
			return notFound(err, domain.ErrQuestionNotFound)
		}
		if _, err := tx.NewDelete().Model(rec).WherePK().Exec(ctx); err != nil {
			return err
		}
		// Close the gap so order numbers stay contiguous.
		_, err := tx.NewUpdate().Model((*questionRecord)(nil)).
			Set("order_num = order_num - 1").
			Where("room_id = ?", rec.RoomID).
			Where("order_num > ?", rec.Order).
			Exec(ctx)
		return err
	})
}

func (s *Store) CreateAnswer(ctx context.Context, a *domain.Answer) error {
	_, err := s.db.NewInsert().Model(answerToRecord(a)).Exec(ctx)
	return translate(err)
}

func (s *Store) AnswerCount(ctx context.Context, roomID, participantID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*)
		   FROM quiz_answers a
		   JOIN quiz_questions q ON q.id = a.question_id
		  WHERE q.room_id = $1 AND a.participant_id = $2`,
		roomID, participantID).Scan(&count)
	return count, err
}

func (s *Store) AnswersByQuestion(ctx context.Context, questionID uuid.UUID) ([]*domain.Answer, error) {
	var recs []answerRecord
	err := s.db.NewSelect().Model(&recs).
		Where("question_id = ?", questionID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Answer, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toDomain())
	}
	return out, nil
}

func (s *Store) CompletedCount(ctx context.Context, roomID uuid.UUID, total int) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*)
		   FROM game_participants p
		  WHERE p.room_id = $1 AND p.is_active
		    AND (SELECT COUNT(*)
		           FROM quiz_answers a
		           JOIN quiz_questions q ON q.id = a.question_id
		          WHERE q.room_id = $1 AND a.participant_id = p.id) >= $2`,
		roomID, total).Scan(&count)
	return count, err
}

// --- drawing ---

func (s *Store) CreateWord(ctx context.Context, w *domain.Word) error {
	_, err := s.db.NewInsert().Model(wordToRecord(w)).Exec(ctx)
	return translate(err)
}

func (s *Store) WordByID(ctx context.Context, id uuid.UUID) (*domain.Word, error) {
	rec := new(wordRecord)
	if err := s.db.NewSelect().Model(rec).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, domain.ErrWordNotFound)
	}
	return rec.toDomain(), nil
}

func (s *Store) Words(ctx context.Context, roomID uuid.UUID) ([]*domain.Word, error) {
	var recs []wordRecord
	err := s.db.NewSelect().Model(&recs).
		Where("room_id = ?", roomID).
		Order("order_num ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Word, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toDomain())
	}
	return out, nil
}

func (s *Store) WordByOrder(ctx context.Context, roomID uuid.UUID, order int) (*domain.Word, error) {
	rec := new(wordRecord)
	err := s.db.NewSelect().Model(rec).
		Where("room_id = ?", roomID).
		Where("order_num = ?", order).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, domain.ErrWordNotFound)
	}
	return rec.toDomain(), nil
}

func (s *Store) WordCount(ctx context.Context, roomID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM drawing_words WHERE room_id = $1`, roomID).Scan(&count)
	return count, err
}

func (s *Store) UpdateWord(ctx context.Context, w *domain.Word) error {
	res, err := s.db.NewUpdate().Model(wordToRecord(w)).WherePK().Exec(ctx)
	if err != nil {
		return translate(err)
	}
	return requireRow(res, domain.ErrWordNotFound)
}

func (s *Store) DeleteWord(ctx context.Context, id uuid.UUID) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		rec := new(wordRecord)
		if err := tx.NewSelect().Model(rec).Where("id = ?", id).Scan(ctx); err != nil {
			return notFound(err, domain.ErrWordNotFound)
		}
		if _, err := tx.NewDelete().Model(rec).WherePK().Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewUpdate().Model((*wordRecord)(nil)).
			Set("order_num = order_num - 1").
			Where("room_id = ?", rec.RoomID).
			Where("order_num > ?", rec.Order).
			Exec(ctx)
		return err
	})
}

func (s *Store) ResetRounds(ctx context.Context, roomID uuid.UUID) error {
	// Guesses go with their rounds via ON DELETE CASCADE.
	_, err := s.db.NewDelete().Model((*roundRecord)(nil)).
		Where("room_id = ?", roomID).
		Exec(ctx)
	return err
}

func (s *Store) CreateRound(ctx context.Context, r *domain.Round) error {
	_, err := s.db.NewInsert().Model(roundToRecord(r)).Exec(ctx)
	return translate(err)
}

func (s *Store) RoundByID(ctx context.Context, id uuid.UUID) (*domain.Round, error) {
	rec := new(roundRecord)
	if err := s.db.NewSelect().Model(rec).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, domain.ErrRoundNotFound)
	}
	return rec.toDomain(), nil
}

func (s *Store) RoundByNumber(ctx context.Context, roomID uuid.UUID, number int) (*domain.Round, error) {
	rec := new(roundRecord)
	err := s.db.NewSelect().Model(rec).
		Where("room_id = ?", roomID).
		Where("round_num = ?", number).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, domain.ErrRoundNotFound)
	}
	return rec.toDomain(), nil
}

func (s *Store) FinishRound(ctx context.Context, id uuid.UUID, endedAt time.Time) error {
	res, err := s.db.NewUpdate().Model((*roundRecord)(nil)).
		Set("status = ?", domain.RoundFinished).
		Set("ended_at = ?", endedAt).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireRow(res, domain.ErrRoundNotFound)
}

func (s *Store) UpdateSnapshot(ctx context.Context, id uuid.UUID, data string) error {
	res, err := s.db.NewUpdate().Model((*roundRecord)(nil)).
		Set("snapshot = ?", data).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireRow(res, domain.ErrRoundNotFound)
}

func (s *Store) CreateGuess(ctx context.Context, g *domain.Guess) error {
	_, err := s.db.NewInsert().Model(guessToRecord(g)).Exec(ctx)
	return translate(err)
}

func (s *Store) HasCorrectGuess(ctx context.Context, roundID, participantID uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM drawing_guesses
		  WHERE round_id = $1 AND participant_id = $2 AND is_correct)`,
		roundID, participantID).Scan(&exists)
	return exists, err
}

func (s *Store) CorrectGuessCount(ctx context.Context, roundID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM drawing_guesses WHERE round_id = $1 AND is_correct`,
		roundID).Scan(&count)
	return count, err
}

func (s *Store) Guesses(ctx context.Context, roundID uuid.UUID) ([]*domain.Guess, error) {
	var recs []guessRecord
	err := s.db.NewSelect().Model(&recs).
		Where("round_id = ?", roundID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Guess, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toDomain())
	}
	return out, nil
}

// --- ladder ---

func (s *Store) CreateItem(ctx context.Context, it *domain.LadderItem) error {
	_, err := s.db.NewInsert().Model(ladderItemToRecord(it)).Exec(ctx)
	return translate(err)
}

func (s *Store) ItemByID(ctx context.Context, id uuid.UUID) (*domain.LadderItem, error) {
	rec := new(ladderItemRecord)
	if err := s.db.NewSelect().Model(rec).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, domain.ErrItemNotFound)
	}
	return rec.toDomain(), nil
}

func (s *Store) Items(ctx context.Context, roomID uuid.UUID) ([]*domain.LadderItem, error) {
	var recs []ladderItemRecord
	err := s.db.NewSelect().Model(&recs).
		Where("room_id = ?", roomID).
		Order("position ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.LadderItem, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toDomain())
	}
	return out, nil
}

func (s *Store) ItemCount(ctx context.Context, roomID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM ladder_items WHERE room_id = $1`, roomID).Scan(&count)
	return count, err
}

func (s *Store) UpdateItem(ctx context.Context, it *domain.LadderItem) error {
	res, err := s.db.NewUpdate().Model(ladderItemToRecord(it)).WherePK().Exec(ctx)
	if err != nil {
		return translate(err)
	}
	return requireRow(res, domain.ErrItemNotFound)
}

func (s *Store) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		rec := new(ladderItemRecord)
		if err := tx.NewSelect().Model(rec).Where("id = ?", id).Scan(ctx); err != nil {
			return notFound(err, domain.ErrItemNotFound)
		}
		if _, err := tx.NewDelete().Model(rec).WherePK().Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewUpdate().Model((*ladderItemRecord)(nil)).
			Set("position = position - 1").
			Where("room_id = ?", rec.RoomID).
			Where("position > ?", rec.Position).
			Exec(ctx)
		return err
	})
}

func (s *Store) ReplaceLadder(ctx context.Context, l *domain.Ladder) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*selectionRecord)(nil)).
			Where("room_id = ?", l.RoomID).
			Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*ladderRecord)(nil)).
			Where("room_id = ?", l.RoomID).
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(ladderToRecord(l)).Exec(ctx)
		return translate(err)
	})
}

func (s *Store) LadderByRoom(ctx context.Context, roomID uuid.UUID) (*domain.Ladder, error) {
	rec := new(ladderRecord)
	if err := s.db.NewSelect().Model(rec).Where("room_id = ?", roomID).Scan(ctx); err != nil {
		return nil, notFound(err, domain.ErrLadderNotFound)
	}
	return rec.toDomain(), nil
}

func (s *Store) CreateSelection(ctx context.Context, sel *domain.Selection) error {
	_, err := s.db.NewInsert().Model(selectionToRecord(sel)).Exec(ctx)
	return translate(err)
}

func (s *Store) SelectionByParticipant(ctx context.Context, roomID, participantID uuid.UUID) (*domain.Selection, error) {
	rec := new(selectionRecord)
	err := s.db.NewSelect().Model(rec).
		Where("room_id = ?", roomID).
		Where("participant_id = ?", participantID).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, domain.ErrSelectionNotFound)
	}
	return rec.toDomain(), nil
}

func (s *Store) Selections(ctx context.Context, roomID uuid.UUID) ([]*domain.Selection, error) {
	var recs []selectionRecord
	err := s.db.NewSelect().Model(&recs).
		Where("room_id = ?", roomID).
		Order("start_position ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Selection, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toDomain())
	}
	return out, nil
}

func (s *Store) RevealSelection(ctx context.Context, id uuid.UUID, result int) error {
	res, err := s.db.NewUpdate().Model((*selectionRecord)(nil)).
		Set("result_position = ?", result).
		Set("is_revealed = TRUE").
		Where("id = ?", id).
		Where("NOT is_revealed").
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Either the selection is gone or it was already revealed; the
		// service checks existence first, so report the reveal conflict.
		return domain.ErrAlreadyRevealed
	}
	return nil
}

func requireRow(res sql.Result, sentinel error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sentinel
	}
	return nil
}
