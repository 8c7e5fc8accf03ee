package app

import (
	"context"
	"fmt"
	"testing"

	"metislap/internal/domain"
)

func TestGuessRankScoring(t *testing.T) {
	e := newEnv()
	room := e.createRoom(t, domain.GameDrawing)
	e.addWord(t, room, "apple")

	drawer := e.join(t, room, "drawer")
	guessers := make([]*domain.Participant, 6)
	for i := range guessers {
		guessers[i] = e.join(t, room, fmt.Sprintf("guesser%d", i))
	}
	started := e.start(t, room, StartOptions{DrawerID: drawer.ID})

	round, err := e.store.RoundByNumber(context.Background(), started.ID, 1)
	if err != nil {
		t.Fatalf("round: %v", err)
	}

	want := []int{100, 80, 60, 40, 20, 20}
	for i, g := range guessers {
		res, err := e.drawing.SubmitGuess(context.Background(), round.ID, g.ID, "apple")
		if err != nil {
			t.Fatalf("guess %d: %v", i, err)
		}
		if !res.Correct || res.Points != want[i] {
			t.Fatalf("guesser %d got %+v, want %d points", i, res, want[i])
		}
		if res.Word != "apple" {
			t.Fatalf("correct guess should reveal the word, got %q", res.Word)
		}
	}

	// Drawer earns the bonus per correct guesser.
	if got := e.participant(t, drawer.ID).Score; got != 6*30 {
		t.Fatalf("drawer score %d, want %d", got, 6*30)
	}
}

func TestGuessNormalization(t *testing.T) {
	e := newEnv()
	room := e.createRoom(t, domain.GameDrawing)
	e.addWord(t, room, "red apple")
	drawer := e.join(t, room, "drawer")
	p := e.join(t, room, "mina")
	started := e.start(t, room, StartOptions{DrawerID: drawer.ID})

	round, err := e.store.RoundByNumber(context.Background(), started.ID, 1)
	if err != nil {
		t.Fatalf("round: %v", err)
	}
	res, err := e.drawing.SubmitGuess(context.Background(), round.ID, p.ID, "  Red APPLE ")
	if err != nil {
		t.Fatalf("guess: %v", err)
	}
	if !res.Correct {
		t.Fatal("case and whitespace differences should still match")
	}
}

func TestWrongGuessThenCorrect(t *testing.T) {
	e := newEnv()
	room := e.createRoom(t, domain.GameDrawing)
	e.addWord(t, room, "apple")
	drawer := e.join(t, room, "drawer")
	p := e.join(t, room, "mina")
	started := e.start(t, room, StartOptions{DrawerID: drawer.ID})

	round, err := e.store.RoundByNumber(context.Background(), started.ID, 1)
	if err != nil {
		t.Fatalf("round: %v", err)
	}

	res, err := e.drawing.SubmitGuess(context.Background(), round.ID, p.ID, "banana")
	if err != nil {
		t.Fatalf("wrong guess: %v", err)
	}
	if res.Correct || res.Points != 0 || res.Word != "" {
		t.Fatalf("wrong guess leaked info: %+v", res)
	}

	// Wrong guesses do not lock the participant out.
	if _, err := e.drawing.SubmitGuess(context.Background(), round.ID, p.ID, "apple"); err != nil {
		t.Fatalf("correct guess after wrong: %v", err)
	}
	// But a correct one does.
	if _, err := e.drawing.SubmitGuess(context.Background(), round.ID, p.ID, "apple"); err != domain.ErrAlreadyGuessed {
		t.Fatalf("expected ErrAlreadyGuessed, got %v", err)
	}

	guesses, correct, err := e.drawing.Guesses(context.Background(), round.ID)
	if err != nil {
		t.Fatalf("guesses: %v", err)
	}
	if len(guesses) != 2 || correct != 1 {
		t.Fatalf("feed wrong: %d guesses, %d correct", len(guesses), correct)
	}
}

func TestDrawerCannotGuess(t *testing.T) {
	e := newEnv()
	room := e.createRoom(t, domain.GameDrawing)
	e.addWord(t, room, "apple")
	drawer := e.join(t, room, "drawer")
	started := e.start(t, room, StartOptions{DrawerID: drawer.ID})

	round, err := e.store.RoundByNumber(context.Background(), started.ID, 1)
	if err != nil {
		t.Fatalf("round: %v", err)
	}
	if _, err := e.drawing.SubmitGuess(context.Background(), round.ID, drawer.ID, "apple"); err != domain.ErrDrawerCannotGuess {
		t.Fatalf("expected ErrDrawerCannotGuess, got %v", err)
	}
}

func TestSnapshotDrawerOnly(t *testing.T) {
	e := newEnv()
	room := e.createRoom(t, domain.GameDrawing)
	e.addWord(t, room, "apple")
	drawer := e.join(t, room, "drawer")
	p := e.join(t, room, "mina")
	started := e.start(t, room, StartOptions{DrawerID: drawer.ID})

	round, err := e.store.RoundByNumber(context.Background(), started.ID, 1)
	if err != nil {
		t.Fatalf("round: %v", err)
	}

	if err := e.drawing.SubmitSnapshot(context.Background(), round.ID, p.ID, "sneaky"); err != domain.ErrNotDrawer {
		t.Fatalf("expected ErrNotDrawer, got %v", err)
	}
	if err := e.drawing.SubmitSnapshot(context.Background(), round.ID, drawer.ID, "blob-1"); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	// Latest write wins.
	if err := e.drawing.SubmitSnapshot(context.Background(), round.ID, drawer.ID, "blob-2"); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	data, status, err := e.drawing.Snapshot(context.Background(), round.ID)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if data != "blob-2" || status != domain.RoundDrawing {
		t.Fatalf("snapshot %q status %q", data, status)
	}
}

func TestAdvanceRotatesDrawerAndFinishes(t *testing.T) {
	e := newEnv()
	room := e.createRoom(t, domain.GameDrawing)
	e.addWord(t, room, "apple")
	e.addWord(t, room, "house")
	d1 := e.join(t, room, "first")
	d2 := e.join(t, room, "second")
	e.start(t, room, StartOptions{DrawerID: d1.ID})

	r, err := e.rooms.AdvanceGame(context.Background(), e.actor, room.ID, AdvanceOptions{DrawerID: d2.ID})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if *r.CurrentRound != 2 {
		t.Fatalf("round pointer %v, want 2", r.CurrentRound)
	}

	first, err := e.store.RoundByNumber(context.Background(), room.ID, 1)
	if err != nil {
		t.Fatalf("round 1: %v", err)
	}
	if first.Status != domain.RoundFinished || first.EndedAt == nil {
		t.Fatalf("round 1 not closed: %+v", first)
	}
	second, err := e.store.RoundByNumber(context.Background(), room.ID, 2)
	if err != nil {
		t.Fatalf("round 2: %v", err)
	}
	if second.DrawerID != d2.ID {
		t.Fatal("drawer did not rotate")
	}

	r, err = e.rooms.AdvanceGame(context.Background(), e.actor, room.ID, AdvanceOptions{DrawerID: d1.ID})
	if err != nil {
		t.Fatalf("final advance: %v", err)
	}
	if r.Status != domain.RoomFinished || r.CurrentRound != nil {
		t.Fatalf("advance past last word did not finish: %+v", r)
	}
	second, _ = e.store.RoundByNumber(context.Background(), room.ID, 2)
	if second.Status != domain.RoundFinished {
		t.Fatal("finishing the game left the last round open")
	}
}

func TestStartDrawingRequirements(t *testing.T) {
	e := newEnv()
	room := e.createRoom(t, domain.GameDrawing)
	drawer := e.join(t, room, "drawer")

	if _, err := e.rooms.StartGame(context.Background(), e.actor, room.ID, StartOptions{DrawerID: drawer.ID}); err != domain.ErrNoWords {
		t.Fatalf("expected ErrNoWords, got %v", err)
	}
	e.addWord(t, room, "apple")
	if _, err := e.rooms.StartGame(context.Background(), e.actor, room.ID, StartOptions{}); err != domain.ErrDrawerRequired {
		t.Fatalf("expected ErrDrawerRequired, got %v", err)
	}
}

func TestDeleteWordRenumbers(t *testing.T) {
	e := newEnv()
	room := e.createRoom(t, domain.GameDrawing)
	e.addWord(t, room, "one")
	w2 := e.addWord(t, room, "two")
	e.addWord(t, room, "three")

	if err := e.drawing.DeleteWord(context.Background(), e.actor, w2.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	words, err := e.drawing.Words(context.Background(), room.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(words) != 2 || words[0].Order != 1 || words[1].Order != 2 || words[1].Word != "three" {
		t.Fatalf("renumbering wrong: %+v", words)
	}
}

func TestDrawingStateExposesRound(t *testing.T) {
	e := newEnv()
	room := e.createRoom(t, domain.GameDrawing)
	e.addWord(t, room, "apple")
	drawer := e.join(t, room, "drawer")
	e.start(t, room, StartOptions{DrawerID: drawer.ID})

	state, err := e.drawing.State(context.Background(), room.ID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Round == nil || state.Word == nil || state.Drawer == nil {
		t.Fatalf("state incomplete: %+v", state)
	}
	if state.Word.Word != "apple" || state.Drawer.ID != drawer.ID || state.TotalRounds != 1 {
		t.Fatalf("state wrong: word %q drawer %v", state.Word.Word, state.Drawer.ID)
	}
}
