package app

import (
	"context"
	"testing"

	"metislap/internal/domain"
)

func TestAddQuestionDefaultsAndOrder(t *testing.T) {
	e := newEnv()
	room := e.createRoom(t, domain.GameQuiz)

	q1 := e.addQuestion(t, room, "first", "a")
	q2 := e.addQuestion(t, room, "second", "b")

	if q1.Order != 1 || q2.Order != 2 {
		t.Fatalf("orders %d,%d, want 1,2", q1.Order, q2.Order)
	}
	if q1.TimeLimit != defaultTimeLimit || q1.Points != defaultPoints {
		t.Fatalf("defaults not applied: %+v", q1)
	}
}

func TestTrueFalseQuestionNormalization(t *testing.T) {
	e := newEnv()
	room := e.createRoom(t, domain.GameQuiz)

	q, err := e.quiz.AddQuestion(context.Background(), e.actor, room.ID, QuestionInput{
		Text:    "is the sky blue",
		Type:    domain.QuestionTrueFalse,
		Options: []string{"yes", "no", "maybe"},
		Answer:  "O",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(q.Options) != 2 || q.Options[0] != "O" || q.Options[1] != "X" {
		t.Fatalf("true/false options not forced to O/X: %v", q.Options)
	}

	_, err = e.quiz.AddQuestion(context.Background(), e.actor, room.ID, QuestionInput{
		Text:   "bad answer",
		Type:   domain.QuestionTrueFalse,
		Answer: "yes",
	})
	if domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddQuestionValidation(t *testing.T) {
	e := newEnv()
	room := e.createRoom(t, domain.GameQuiz)

	_, err := e.quiz.AddQuestion(context.Background(), e.actor, room.ID, QuestionInput{
		Text:    "too few options",
		Type:    domain.QuestionMultipleChoice,
		Options: []string{"only"},
		Answer:  "only",
	})
	if domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestQuestionContentLockedAfterStart(t *testing.T) {
	e := newEnv()
	room := e.createRoom(t, domain.GameQuiz)
	q := e.addQuestion(t, room, "q", "a")
	e.start(t, room, StartOptions{})

	if _, err := e.quiz.AddQuestion(context.Background(), e.actor, room.ID, QuestionInput{
		Text: "late", Type: domain.QuestionMultipleChoice, Options: []string{"a", "b"}, Answer: "a",
	}); err != domain.ErrRoomNotWaiting {
		t.Fatalf("expected ErrRoomNotWaiting on add, got %v", err)
	}
	text := "edited"
	if _, err := e.quiz.UpdateQuestion(context.Background(), e.actor, q.ID, QuestionPatch{Text: &text}); err != domain.ErrRoomNotWaiting {
		t.Fatalf("expected ErrRoomNotWaiting on update, got %v", err)
	}
	if err := e.quiz.DeleteQuestion(context.Background(), e.actor, q.ID); err != domain.ErrRoomNotWaiting {
		t.Fatalf("expected ErrRoomNotWaiting on delete, got %v", err)
	}
}

func TestDeleteQuestionRenumbers(t *testing.T) {
	e := newEnv()
	room := e.createRoom(t, domain.GameQuiz)
	e.addQuestion(t, room, "first", "a")
	q2 := e.addQuestion(t, room, "second", "b")
	e.addQuestion(t, room, "third", "c")

	if err := e.quiz.DeleteQuestion(context.Background(), e.actor, q2.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	questions, err := e.quiz.Questions(context.Background(), room.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	for i, q := range questions {
		if q.Order != i+1 {
			t.Fatalf("question %d has order %d", i, q.Order)
		}
	}
	if questions[1].Text != "third" {
		t.Fatalf("renumbering reordered content: %q", questions[1].Text)
	}
}

func TestSubmitAnswerScoring(t *testing.T) {
	e := newEnv()
	room := e.createRoom(t, domain.GameQuiz)
	q1 := e.addQuestion(t, room, "q1", "a")
	q2 := e.addQuestion(t, room, "q2", "b")
	p := e.join(t, room, "mina")
	e.start(t, room, StartOptions{})

	res, err := e.quiz.SubmitAnswer(context.Background(), q1.ID, p.ID, "a", nil)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !res.Correct || res.Points != 100 || res.CorrectAnswer != "a" {
		t.Fatalf("unexpected result: %+v", res)
	}

	// One submission per question.
	if _, err := e.quiz.SubmitAnswer(context.Background(), q1.ID, p.ID, "a", nil); err != domain.ErrAlreadyAnswered {
		t.Fatalf("expected ErrAlreadyAnswered, got %v", err)
	}

	// A wrong answer scores nothing but still reveals the correct one.
	res, err = e.quiz.SubmitAnswer(context.Background(), q2.ID, p.ID, "wrong", nil)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if res.Correct || res.Points != 0 || res.CorrectAnswer != "b" {
		t.Fatalf("unexpected result: %+v", res)
	}

	if got := e.participant(t, p.ID).Score; got != 100 {
		t.Fatalf("score = %d, want 100", got)
	}
}

func TestSubmitAnswerRequiresInProgress(t *testing.T) {
	e := newEnv()
	room := e.createRoom(t, domain.GameQuiz)
	q := e.addQuestion(t, room, "q", "a")
	p := e.join(t, room, "mina")

	if _, err := e.quiz.SubmitAnswer(context.Background(), q.ID, p.ID, "a", nil); err != domain.ErrRoomNotInProgress {
		t.Fatalf("expected ErrRoomNotInProgress, got %v", err)
	}
}

func TestSubmitAnswerRejectsInactive(t *testing.T) {
	e := newEnv()
	room := e.createRoom(t, domain.GameQuiz)
	q := e.addQuestion(t, room, "q", "a")
	p := e.join(t, room, "mina")
	e.start(t, room, StartOptions{})

	if err := e.rooms.Leave(context.Background(), p.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if _, err := e.quiz.SubmitAnswer(context.Background(), q.ID, p.ID, "a", nil); err != domain.ErrParticipantInactive {
		t.Fatalf("expected ErrParticipantInactive, got %v", err)
	}
}

func TestParticipantProgress(t *testing.T) {
	e := newEnv()
	room := e.createRoom(t, domain.GameQuiz)
	q1 := e.addQuestion(t, room, "q1", "a")
	q2 := e.addQuestion(t, room, "q2", "b")
	p := e.join(t, room, "mina")
	e.start(t, room, StartOptions{})

	prog, err := e.quiz.ParticipantProgress(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if prog.Answered != 0 || prog.Next == nil || prog.Next.ID != q1.ID {
		t.Fatalf("fresh progress wrong: %+v", prog)
	}

	if _, err := e.quiz.SubmitAnswer(context.Background(), q1.ID, p.ID, "a", nil); err != nil {
		t.Fatalf("answer: %v", err)
	}
	prog, _ = e.quiz.ParticipantProgress(context.Background(), p.ID)
	if prog.Answered != 1 || prog.Next == nil || prog.Next.ID != q2.ID {
		t.Fatalf("mid progress wrong: %+v", prog)
	}

	if _, err := e.quiz.SubmitAnswer(context.Background(), q2.ID, p.ID, "b", nil); err != nil {
		t.Fatalf("answer: %v", err)
	}
	prog, _ = e.quiz.ParticipantProgress(context.Background(), p.ID)
	if !prog.Completed || prog.Next != nil {
		t.Fatalf("final progress wrong: %+v", prog)
	}
}

func TestRoomProgressCountsCompleted(t *testing.T) {
	e := newEnv()
	room := e.createRoom(t, domain.GameQuiz)
	q := e.addQuestion(t, room, "q", "a")
	p1 := e.join(t, room, "mina")
	e.join(t, room, "june")
	e.start(t, room, StartOptions{})

	if _, err := e.quiz.SubmitAnswer(context.Background(), q.ID, p1.ID, "a", nil); err != nil {
		t.Fatalf("answer: %v", err)
	}
	prog, err := e.quiz.RoomProgress(context.Background(), e.actor, room.ID)
	if err != nil {
		t.Fatalf("room progress: %v", err)
	}
	if prog.Participants != 2 || prog.Completed != 1 {
		t.Fatalf("room progress %+v, want 2 participants / 1 completed", prog)
	}
}

func TestQuizAdvanceFinishesPastLastQuestion(t *testing.T) {
	e := newEnv()
	room := e.createRoom(t, domain.GameQuiz)
	e.addQuestion(t, room, "q1", "a")
	e.addQuestion(t, room, "q2", "b")
	started := e.start(t, room, StartOptions{})

	if started.CurrentQuestion == nil || *started.CurrentQuestion != 1 {
		t.Fatalf("start pointer %v, want 1", started.CurrentQuestion)
	}

	r, err := e.rooms.AdvanceGame(context.Background(), e.actor, room.ID, AdvanceOptions{})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if *r.CurrentQuestion != 2 || r.Status != domain.RoomInProgress {
		t.Fatalf("after advance: pointer %v status %q", r.CurrentQuestion, r.Status)
	}

	r, err = e.rooms.AdvanceGame(context.Background(), e.actor, room.ID, AdvanceOptions{})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if r.Status != domain.RoomFinished || r.CurrentQuestion != nil || r.EndedAt == nil {
		t.Fatalf("advance past last did not finish: %+v", r)
	}
}

func TestStartQuizRequiresQuestions(t *testing.T) {
	e := newEnv()
	room := e.createRoom(t, domain.GameQuiz)
	if _, err := e.rooms.StartGame(context.Background(), e.actor, room.ID, StartOptions{}); err != domain.ErrNoQuestions {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestAnswersReportStats(t *testing.T) {
	e := newEnv()
	room := e.createRoom(t, domain.GameQuiz)
	q := e.addQuestion(t, room, "q", "a")
	p1 := e.join(t, room, "mina")
	p2 := e.join(t, room, "june")
	p3 := e.join(t, room, "alex")
	e.start(t, room, StartOptions{})

	ms := 1500
	if _, err := e.quiz.SubmitAnswer(context.Background(), q.ID, p1.ID, "a", &ms); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if _, err := e.quiz.SubmitAnswer(context.Background(), q.ID, p2.ID, "wrong", nil); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if _, err := e.quiz.SubmitAnswer(context.Background(), q.ID, p3.ID, "a", nil); err != nil {
		t.Fatalf("answer: %v", err)
	}

	answers, stats, err := e.quiz.AnswersReport(context.Background(), e.actor, q.ID)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(answers) != 3 {
		t.Fatalf("expected 3 answers, got %d", len(answers))
	}
	if stats.Total != 3 || stats.Correct != 2 || stats.Incorrect != 1 {
		t.Fatalf("stats wrong: %+v", stats)
	}
	if stats.Accuracy != 67 {
		t.Fatalf("accuracy %d, want 67", stats.Accuracy)
	}
	if stats.AverageTimeMs != 1500 {
		t.Fatalf("average time %d, want 1500", stats.AverageTimeMs)
	}
}

func TestQuizStateFollowsPointer(t *testing.T) {
	e := newEnv()
	room := e.createRoom(t, domain.GameQuiz)
	e.addQuestion(t, room, "q1", "a")
	q2 := e.addQuestion(t, room, "q2", "b")
	e.start(t, room, StartOptions{})

	if _, err := e.rooms.AdvanceGame(context.Background(), e.actor, room.ID, AdvanceOptions{}); err != nil {
		t.Fatalf("advance: %v", err)
	}
	state, err := e.quiz.State(context.Background(), room.ID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.TotalQuestions != 2 || state.Current == nil || state.Current.ID != q2.ID {
		t.Fatalf("state wrong: %+v", state)
	}
}
