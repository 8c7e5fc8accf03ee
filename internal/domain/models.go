package domain

import (
	"time"

	"github.com/google/uuid"
)

// GameType selects which engine drives a room.
type GameType string

const (
	GameQuiz    GameType = "quiz"
	GameDrawing GameType = "drawing"
	GameLadder  GameType = "ladder"
)

// Valid reports whether t is one of the supported game types.
func (t GameType) Valid() bool {
	switch t {
	case GameQuiz, GameDrawing, GameLadder:
		return true
	}
	return false
}

// RoomStatus is the room lifecycle state. Transitions are monotonic
// (waiting -> in_progress -> finished) except an explicit reset back
// to waiting.
type RoomStatus string

const (
	RoomWaiting    RoomStatus = "waiting"
	RoomInProgress RoomStatus = "in_progress"
	RoomFinished   RoomStatus = "finished"
)

// QuestionType distinguishes multiple-choice from O/X questions.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
)

// TrueFalseOptions is the fixed option list for true_false questions.
var TrueFalseOptions = []string{"O", "X"}

// RoundStatus is the drawing-round state; at most one round per room
// may be in the drawing state.
type RoundStatus string

const (
	RoundDrawing  RoundStatus = "drawing"
	RoundFinished RoundStatus = "finished"
)

// Actor identifies an authenticated instructor.
type Actor struct {
	InstructorID string
	Approved     bool
}

// Room is one game instance, identified by a short join code and owned
// by an instructor.
type Room struct {
	ID           uuid.UUID  `json:"id"`
	Code         string     `json:"roomCode"`
	InstructorID string     `json:"-"`
	Name         string     `json:"roomName"`
	GameType     GameType   `json:"gameType"`
	Capacity     int        `json:"maxParticipants"`
	Status       RoomStatus `json:"status"`

	// CurrentQuestion and CurrentRound are the instructor-owned progress
	// pointers (1-based order numbers); nil outside an active game of the
	// matching type.
	CurrentQuestion *int `json:"currentQuestionIndex,omitempty"`
	CurrentRound    *int `json:"currentRoundIndex,omitempty"`

	StartedAt *time.Time `json:"startedAt,omitempty"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Participant is a nickname-identified actor within one room. The ID
// doubles as the capability token for all game actions.
type Participant struct {
	ID       uuid.UUID  `json:"id"`
	RoomID   uuid.UUID  `json:"roomId"`
	Nickname string     `json:"nickname"`
	Score    int        `json:"score"`
	Active   bool       `json:"isActive"`
	JoinedAt time.Time  `json:"joinedAt"`
	LeftAt   *time.Time `json:"leftAt,omitempty"`
}

// Question belongs to a quiz room; Order is 1-based and contiguous.
type Question struct {
	ID        uuid.UUID    `json:"id"`
	RoomID    uuid.UUID    `json:"roomId"`
	Text      string       `json:"questionText"`
	Type      QuestionType `json:"questionType"`
	Options   []string     `json:"options"`
	Answer    string       `json:"correctAnswer"`
	TimeLimit int          `json:"timeLimit"` // seconds, advisory only
	Points    int          `json:"points"`
	Order     int          `json:"orderNum"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Answer is the single submission a participant may make per question.
type Answer struct {
	ID            uuid.UUID `json:"id"`
	QuestionID    uuid.UUID `json:"questionId"`
	ParticipantID uuid.UUID `json:"participantId"`
	Selected      string    `json:"selectedAnswer"`
	Correct       bool      `json:"isCorrect"`
	ElapsedMs     *int      `json:"answerTimeMs,omitempty"`
	Points        int       `json:"pointsEarned"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Word is one drawing prompt; Order is 1-based and contiguous.
type Word struct {
	ID        uuid.UUID `json:"id"`
	RoomID    uuid.UUID `json:"roomId"`
	Word      string    `json:"word"`
	Hint      string    `json:"hint,omitempty"`
	Order     int       `json:"orderNum"`
	CreatedAt time.Time `json:"createdAt"`
}

// Round assigns one word and one drawer within a drawing game. Snapshot
// holds the latest full drawing blob; writes are last-wins.
type Round struct {
	ID        uuid.UUID   `json:"id"`
	RoomID    uuid.UUID   `json:"roomId"`
	WordID    uuid.UUID   `json:"wordId"`
	DrawerID  uuid.UUID   `json:"drawerId"`
	Number    int         `json:"roundNum"`
	Status    RoundStatus `json:"status"`
	Snapshot  string      `json:"-"`
	StartedAt time.Time   `json:"startedAt"`
	EndedAt   *time.Time  `json:"endedAt,omitempty"`
}

// Guess records one guess attempt in a drawing round.
type Guess struct {
	ID            uuid.UUID `json:"id"`
	RoundID       uuid.UUID `json:"roundId"`
	ParticipantID uuid.UUID `json:"participantId"`
	Text          string    `json:"guessText"`
	Correct       bool      `json:"isCorrect"`
	Points        int       `json:"pointsEarned"`
	CreatedAt     time.Time `json:"guessedAt"`
}

// LadderItem is one result label; Position is 0-based and contiguous.
type LadderItem struct {
	ID        uuid.UUID `json:"id"`
	RoomID    uuid.UUID `json:"roomId"`
	Text      string    `json:"itemText"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}

// Rung is one horizontal connector joining column Col to Col+1 at Row.
type Rung struct {
	Row int `json:"row"`
	Col int `json:"fromCol"`
}

// Ladder is the generated connector graph for one ladder game.
type Ladder struct {
	ID        uuid.UUID `json:"id"`
	RoomID    uuid.UUID `json:"roomId"`
	Lines     int       `json:"linesCount"`
	Rungs     []Rung    `json:"horizontalLines"`
	CreatedAt time.Time `json:"createdAt"`
}

// Selection is a participant's claimed starting column and, once
// revealed, the resolved result column.
type Selection struct {
	ID            uuid.UUID `json:"id"`
	RoomID        uuid.UUID `json:"roomId"`
	ParticipantID uuid.UUID `json:"participantId"`
	Start         int       `json:"startPosition"`
	Result        *int      `json:"resultPosition,omitempty"`
	Revealed      bool      `json:"isRevealed"`
	CreatedAt     time.Time `json:"selectedAt"`
}

// AnswerResult is the client feedback for a quiz submission. The correct
// answer is revealed regardless of correctness.
type AnswerResult struct {
	Correct       bool   `json:"isCorrect"`
	Points        int    `json:"pointsEarned"`
	CorrectAnswer string `json:"correctAnswer"`
}

// GuessResult is the client feedback for a drawing guess. Word carries
// the canonical word only when the guess was correct.
type GuessResult struct {
	Correct bool   `json:"isCorrect"`
	Points  int    `json:"pointsEarned"`
	Word    string `json:"correctAnswer,omitempty"`
}

// Progress is a participant's position within a quiz.
type Progress struct {
	Total     int       `json:"totalQuestions"`
	Answered  int       `json:"answeredQuestions"`
	Completed bool      `json:"completed"`
	Next      *Question `json:"nextQuestion,omitempty"`
}

// RoomProgress is the instructor's quiz completion view; display only,
// it never gates transitions.
type RoomProgress struct {
	Participants int `json:"totalParticipants"`
	Completed    int `json:"completedParticipants"`
}

// QuizState is the polled quiz snapshot.
type QuizState struct {
	Room           *Room     `json:"room"`
	TotalQuestions int       `json:"totalQuestions"`
	Current        *Question `json:"currentQuestion,omitempty"`
}

// DrawingState is the polled drawing snapshot.
type DrawingState struct {
	Room        *Room        `json:"room"`
	TotalRounds int          `json:"totalRounds"`
	Round       *Round       `json:"currentRound,omitempty"`
	Word        *Word        `json:"currentWord,omitempty"`
	Drawer      *Participant `json:"drawer,omitempty"`
}

// LadderState is the polled ladder snapshot.
type LadderState struct {
	Ladder     *Ladder      `json:"ladderData,omitempty"`
	Items      []LadderItem `json:"items"`
	Selections []Selection  `json:"selections"`
}

// AnswerStats aggregates the per-question answer report.
type AnswerStats struct {
	Total         int `json:"total"`
	Correct       int `json:"correct"`
	Incorrect     int `json:"incorrect"`
	Accuracy      int `json:"accuracy"` // percent, rounded
	AverageTimeMs int `json:"averageTimeMs"`
}
