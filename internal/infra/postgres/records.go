package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"metislap/internal/domain"
)

type roomRecord struct {
	bun.BaseModel `bun:"table:game_rooms"`

	ID              uuid.UUID         `bun:"id,pk,type:uuid"`
	Code            string            `bun:"room_code"`
	InstructorID    string            `bun:"instructor_id"`
	Name            string            `bun:"room_name"`
	GameType        domain.GameType   `bun:"game_type"`
	Capacity        int               `bun:"max_participants"`
	Status          domain.RoomStatus `bun:"status"`
	CurrentQuestion *int              `bun:"current_question_index"`
	CurrentRound    *int              `bun:"current_round_index"`
	StartedAt       *time.Time        `bun:"started_at"`
	EndedAt         *time.Time        `bun:"ended_at"`
	CreatedAt       time.Time         `bun:"created_at"`
	UpdatedAt       time.Time         `bun:"updated_at"`
}

func roomToRecord(r *domain.Room) *roomRecord {
	return &roomRecord{
		ID:              r.ID,
		Code:            r.Code,
		InstructorID:    r.InstructorID,
		Name:            r.Name,
		GameType:        r.GameType,
		Capacity:        r.Capacity,
		Status:          r.Status,
		CurrentQuestion: r.CurrentQuestion,
		CurrentRound:    r.CurrentRound,
		StartedAt:       r.StartedAt,
		EndedAt:         r.EndedAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func (rec *roomRecord) toDomain() *domain.Room {
	return &domain.Room{
		ID:              rec.ID,
		Code:            rec.Code,
		InstructorID:    rec.InstructorID,
		Name:            rec.Name,
		GameType:        rec.GameType,
		Capacity:        rec.Capacity,
		Status:          rec.Status,
		CurrentQuestion: rec.CurrentQuestion,
		CurrentRound:    rec.CurrentRound,
		StartedAt:       rec.StartedAt,
		EndedAt:         rec.EndedAt,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}

type participantRecord struct {
	bun.BaseModel `bun:"table:game_participants"`

	ID       uuid.UUID  `bun:"id,pk,type:uuid"`
	RoomID   uuid.UUID  `bun:"room_id,type:uuid"`
	Nickname string     `bun:"nickname"`
	Score    int        `bun:"score"`
	Active   bool       `bun:"is_active"`
	JoinedAt time.Time  `bun:"joined_at"`
	LeftAt   *time.Time `bun:"left_at"`
}

func participantToRecord(p *domain.Participant) *participantRecord {
	return &participantRecord{
		ID:       p.ID,
		RoomID:   p.RoomID,
		Nickname: p.Nickname,
		Score:    p.Score,
		Active:   p.Active,
		JoinedAt: p.JoinedAt,
		LeftAt:   p.LeftAt,
	}
}

func (rec *participantRecord) toDomain() *domain.Participant {
	return &domain.Participant{
		ID:       rec.ID,
		RoomID:   rec.RoomID,
		Nickname: rec.Nickname,
		Score:    rec.Score,
		Active:   rec.Active,
		JoinedAt: rec.JoinedAt,
		LeftAt:   rec.LeftAt,
	}
}

type questionRecord struct {
	bun.BaseModel `bun:"table:quiz_questions"`

	ID        uuid.UUID           `bun:"id,pk,type:uuid"`
	RoomID    uuid.UUID           `bun:"room_id,type:uuid"`
	Text      string              `bun:"question_text"`
	Type      domain.QuestionType `bun:"question_type"`
	Options   []string            `bun:"options,type:jsonb"`
	Answer    string              `bun:"correct_answer"`
	TimeLimit int                 `bun:"time_limit"`
	Points    int                 `bun:"points"`
	Order     int                 `bun:"order_num"`
	CreatedAt time.Time           `bun:"created_at"`
}

func questionToRecord(q *domain.Question) *questionRecord {
	return &questionRecord{
		ID:        q.ID,
		RoomID:    q.RoomID,
		Text:      q.Text,
		Type:      q.Type,
		Options:   q.Options,
		Answer:    q.Answer,
		TimeLimit: q.TimeLimit,
		Points:    q.Points,
		Order:     q.Order,
		CreatedAt: q.CreatedAt,
	}
}

func (rec *questionRecord) toDomain() *domain.Question {
	return &domain.Question{
		ID:        rec.ID,
		RoomID:    rec.RoomID,
		Text:      rec.Text,
		Type:      rec.Type,
		Options:   rec.Options,
		Answer:    rec.Answer,
		TimeLimit: rec.TimeLimit,
		Points:    rec.Points,
		Order:     rec.Order,
		CreatedAt: rec.CreatedAt,
	}
}

type answerRecord struct {
	bun.BaseModel `bun:"table:quiz_answers"`

	ID            uuid.UUID `bun:"id,pk,type:uuid"`
	QuestionID    uuid.UUID `bun:"question_id,type:uuid"`
	ParticipantID uuid.UUID `bun:"participant_id,type:uuid"`
	Selected      string    `bun:"selected_answer"`
	Correct       bool      `bun:"is_correct"`
	ElapsedMs     *int      `bun:"answer_time_ms"`
	Points        int       `bun:"points_earned"`
	CreatedAt     time.Time `bun:"created_at"`
}

func answerToRecord(a *domain.Answer) *answerRecord {
	return &answerRecord{
		ID:            a.ID,
		QuestionID:    a.QuestionID,
		ParticipantID: a.ParticipantID,
		Selected:      a.Selected,
		Correct:       a.Correct,
		ElapsedMs:     a.ElapsedMs,
		Points:        a.Points,
		CreatedAt:     a.CreatedAt,
	}
}

func (rec *answerRecord) toDomain() *domain.Answer {
	return &domain.Answer{
		ID:            rec.ID,
		QuestionID:    rec.QuestionID,
		ParticipantID: rec.ParticipantID,
		Selected:      rec.Selected,
		Correct:       rec.Correct,
		ElapsedMs:     rec.ElapsedMs,
		Points:        rec.Points,
		CreatedAt:     rec.CreatedAt,
	}
}

type wordRecord struct {
	bun.BaseModel `bun:"table:drawing_words"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	RoomID    uuid.UUID `bun:"room_id,type:uuid"`
	Word      string    `bun:"word"`
	Hint      string    `bun:"hint"`
	Order     int       `bun:"order_num"`
	CreatedAt time.Time `bun:"created_at"`
}

func wordToRecord(w *domain.Word) *wordRecord {
	return &wordRecord{
		ID:        w.ID,
		RoomID:    w.RoomID,
		Word:      w.Word,
		Hint:      w.Hint,
		Order:     w.Order,
		CreatedAt: w.CreatedAt,
	}
}

func (rec *wordRecord) toDomain() *domain.Word {
	return &domain.Word{
		ID:        rec.ID,
		RoomID:    rec.RoomID,
		Word:      rec.Word,
		Hint:      rec.Hint,
		Order:     rec.Order,
		CreatedAt: rec.CreatedAt,
	}
}

type roundRecord struct {
	bun.BaseModel `bun:"table:drawing_rounds"`

	ID        uuid.UUID          `bun:"id,pk,type:uuid"`
	RoomID    uuid.UUID          `bun:"room_id,type:uuid"`
	WordID    uuid.UUID          `bun:"word_id,type:uuid"`
	DrawerID  uuid.UUID          `bun:"drawer_id,type:uuid"`
	Number    int                `bun:"round_num"`
	Status    domain.RoundStatus `bun:"status"`
	Snapshot  string             `bun:"snapshot"`
	StartedAt time.Time          `bun:"started_at"`
	EndedAt   *time.Time         `bun:"ended_at"`
}

func roundToRecord(r *domain.Round) *roundRecord {
	return &roundRecord{
		ID:        r.ID,
		RoomID:    r.RoomID,
		WordID:    r.WordID,
		DrawerID:  r.DrawerID,
		Number:    r.Number,
		Status:    r.Status,
		Snapshot:  r.Snapshot,
		StartedAt: r.StartedAt,
		EndedAt:   r.EndedAt,
	}
}

func (rec *roundRecord) toDomain() *domain.Round {
	return &domain.Round{
		ID:        rec.ID,
		RoomID:    rec.RoomID,
		WordID:    rec.WordID,
		DrawerID:  rec.DrawerID,
		Number:    rec.Number,
		Status:    rec.Status,
		Snapshot:  rec.Snapshot,
		StartedAt: rec.StartedAt,
		EndedAt:   rec.EndedAt,
	}
}

type guessRecord struct {
	bun.BaseModel `bun:"table:drawing_guesses"`

	ID            uuid.UUID `bun:"id,pk,type:uuid"`
	RoundID       uuid.UUID `bun:"round_id,type:uuid"`
	ParticipantID uuid.UUID `bun:"participant_id,type:uuid"`
	Text          string    `bun:"guess_text"`
	Correct       bool      `bun:"is_correct"`
	Points        int       `bun:"points_earned"`
	CreatedAt     time.Time `bun:"created_at"`
}

func guessToRecord(g *domain.Guess) *guessRecord {
	return &guessRecord{
		ID:            g.ID,
		RoundID:       g.RoundID,
		ParticipantID: g.ParticipantID,
		Text:          g.Text,
		Correct:       g.Correct,
		Points:        g.Points,
		CreatedAt:     g.CreatedAt,
	}
}

func (rec *guessRecord) toDomain() *domain.Guess {
	return &domain.Guess{
		ID:            rec.ID,
		RoundID:       rec.RoundID,
		ParticipantID: rec.ParticipantID,
		Text:          rec.Text,
		Correct:       rec.Correct,
		Points:        rec.Points,
		CreatedAt:     rec.CreatedAt,
	}
}

type ladderItemRecord struct {
	bun.BaseModel `bun:"table:ladder_items"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	RoomID    uuid.UUID `bun:"room_id,type:uuid"`
	Text      string    `bun:"item_text"`
	Position  int       `bun:"position"`
	CreatedAt time.Time `bun:"created_at"`
}

func ladderItemToRecord(it *domain.LadderItem) *ladderItemRecord {
	return &ladderItemRecord{
		ID:        it.ID,
		RoomID:    it.RoomID,
		Text:      it.Text,
		Position:  it.Position,
		CreatedAt: it.CreatedAt,
	}
}

func (rec *ladderItemRecord) toDomain() *domain.LadderItem {
	return &domain.LadderItem{
		ID:        rec.ID,
		RoomID:    rec.RoomID,
		Text:      rec.Text,
		Position:  rec.Position,
		CreatedAt: rec.CreatedAt,
	}
}

type ladderRecord struct {
	bun.BaseModel `bun:"table:ladder_data"`

	ID        uuid.UUID     `bun:"id,pk,type:uuid"`
	RoomID    uuid.UUID     `bun:"room_id,type:uuid"`
	Lines     int           `bun:"lines_count"`
	Rungs     []domain.Rung `bun:"horizontal_lines,type:jsonb"`
	CreatedAt time.Time     `bun:"created_at"`
}

func ladderToRecord(l *domain.Ladder) *ladderRecord {
	return &ladderRecord{
		ID:        l.ID,
		RoomID:    l.RoomID,
		Lines:     l.Lines,
		Rungs:     l.Rungs,
		CreatedAt: l.CreatedAt,
	}
}

func (rec *ladderRecord) toDomain() *domain.Ladder {
	return &domain.Ladder{
		ID:        rec.ID,
		RoomID:    rec.RoomID,
		Lines:     rec.Lines,
		Rungs:     rec.Rungs,
		CreatedAt: rec.CreatedAt,
	}
}

type selectionRecord struct {
	bun.BaseModel `bun:"table:ladder_selections"`

	ID            uuid.UUID `bun:"id,pk,type:uuid"`
	RoomID        uuid.UUID `bun:"room_id,type:uuid"`
	ParticipantID uuid.UUID `bun:"participant_id,type:uuid"`
	Start         int       `bun:"start_position"`
	Result        *int      `bun:"result_position"`
	Revealed      bool      `bun:"is_revealed"`
	CreatedAt     time.Time `bun:"created_at"`
}

func selectionToRecord(sel *domain.Selection) *selectionRecord {
	return &selectionRecord{
		ID:            sel.ID,
		RoomID:        sel.RoomID,
		ParticipantID: sel.ParticipantID,
		Start:         sel.Start,
		Result:        sel.Result,
		Revealed:      sel.Revealed,
		CreatedAt:     sel.CreatedAt,
	}
}

func (rec *selectionRecord) toDomain() *domain.Selection {
	return &domain.Selection{
		ID:            rec.ID,
		RoomID:        rec.RoomID,
		ParticipantID: rec.ParticipantID,
		Start:         rec.Start,
		Result:        rec.Result,
		Revealed:      rec.Revealed,
		CreatedAt:     rec.CreatedAt,
	}
}
