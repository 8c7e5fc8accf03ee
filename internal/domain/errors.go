package domain

import "fmt"

// Kind classifies an error for the operation boundary; the HTTP layer
// maps kinds to status codes.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// Error is a structured operation failure: a kind plus a human-readable,
// actionable message. Rejected operations leave all prior state unchanged.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Validationf builds a one-off validation error.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from an error, or KindUnknown for errors that
// did not originate at an operation boundary.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindUnknown
}

func notFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }
func conflict(msg string) *Error     { return &Error{Kind: KindConflict, Message: msg} }
func forbidden(msg string) *Error    { return &Error{Kind: KindForbidden, Message: msg} }
func invalid(msg string) *Error      { return &Error{Kind: KindValidation, Message: msg} }
func unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }

var (
	ErrUnauthorized = unauthorized("authentication required")
	ErrNotApproved  = forbidden("only approved instructors may do this")
	ErrNotRoomOwner = forbidden("you do not own this room")

	ErrRoomNotFound        = notFound("room not found")
	ErrParticipantNotFound = notFound("participant not found")
	ErrQuestionNotFound    = notFound("question not found")
	ErrWordNotFound        = notFound("word not found")
	ErrRoundNotFound       = notFound("round not found")
	ErrItemNotFound        = notFound("ladder item not found")
	ErrLadderNotFound      = notFound("ladder has not been generated")
	ErrSelectionNotFound   = notFound("selection not found")

	ErrRoomCodeTaken = conflict("room code already in use")
	ErrNicknameTaken = conflict("nickname already in use")
	ErrRoomFull      = conflict("room is full")

	ErrRoomNotWaiting    = conflict("room must be waiting")
	ErrRoomNotInProgress = conflict("game is not in progress")
	ErrRoomFinished      = conflict("game has already finished")
	ErrRoomInProgress    = conflict("room cannot be deleted while the game is in progress")

	ErrNoQuestions    = invalid("at least one question is required to start")
	ErrNoWords        = invalid("at least one word is required to start")
	ErrNotEnoughItems = invalid("at least two ladder items are required to start")
	ErrDrawerRequired = invalid("a drawer must be chosen")
	ErrWrongGameType  = invalid("operation does not match the room's game type")

	ErrAlreadyAnswered     = conflict("already answered this question")
	ErrParticipantInactive = forbidden("participant is no longer active")

	ErrDrawerCannotGuess = conflict("the drawer cannot guess")
	ErrNotDrawer         = forbidden("only the drawer may submit drawings")
	ErrRoundNotActive    = conflict("round is not accepting submissions")
	ErrAlreadyGuessed    = conflict("already guessed correctly this round")

	ErrAlreadySelected = conflict("already selected a starting position")
	ErrPositionTaken   = conflict("position taken")
	ErrInvalidPosition = invalid("starting position is out of range")
	ErrAlreadyRevealed = conflict("result has already been revealed")
)
