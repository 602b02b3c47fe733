package engine

import (
	"testing"
	"time"
)

func newTestEngine(t *testing.T) *GameEngine {
	t.Helper()
	engine, err := NewEngine(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return engine
}

// walk moves along directions, letting each slide finish
func walk(t *testing.T, e *GameEngine, directions ...string) {
	t.Helper()
	for _, dir := range directions {
		if !e.Move(dir) {
			last := e.GetLastMove()
			t.Fatalf("Move %s from %v failed: %s", dir, last.FromPosition, last.Reason)
		}
		e.Settle()
	}
}

// collectActive walks to the active note and dismisses its popup
func collectActive(t *testing.T, e *GameEngine) {
	t.Helper()
	note, ok := e.ActiveNote()
	if !ok {
		t.Fatal("No active note")
	}
	walk(t, e, Route(e.GetPlayerPosition(), note.Pos())...)
	e.Advance(e.GetConfig().MessageDelay())
	if err := e.ClosePopup(); err != nil {
		t.Fatalf("Failed to close popup for note %d: %v", note.Index, err)
	}
}

func TestNewEngine(t *testing.T) {
	engine := newTestEngine(t)

	state := engine.GetState()
	if state.Player != (Position{}) {
		t.Errorf("Expected player at origin, got %v", state.Player)
	}
	if engine.IsPaused() || engine.IsCompleted() {
		t.Error("Expected fresh engine to be running")
	}
	if state.Seed == 0 {
		t.Error("Expected a random seed to be chosen")
	}
	note, ok := engine.ActiveNote()
	if !ok || note.Index != 0 {
		t.Fatalf("Expected note 0 to be active, got %+v %v", note, ok)
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := createTestConfig()
	config.Name = "" // Make config invalid

	if _, err := NewEngine(config); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestNewEngineWithSeed_Deterministic(t *testing.T) {
	a, err := NewEngineWithSeed(DefaultConfig(), 1234)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewEngineWithSeed(DefaultConfig(), 1234)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.GetState().Notes {
		if a.GetState().Notes[i].Pos() != b.GetState().Notes[i].Pos() {
			t.Fatalf("Note %d differs between engines with the same seed", i)
		}
	}
}

func TestEngine_BasicMovement(t *testing.T) {
	engine := newTestEngine(t)

	if !engine.Move(Right) {
		t.Fatal("Expected move right to succeed")
	}
	if engine.GetPlayerPosition() != (Position{X: 1, Y: 0}) {
		t.Errorf("Expected player at (1,0), got %v", engine.GetPlayerPosition())
	}

	events := engine.DrainEvents()
	if len(events) != 1 || events[0].Type != EventMove {
		t.Errorf("Expected a single move event, got %+v", events)
	}
	if len(engine.DrainEvents()) != 0 {
		t.Error("Expected events to be cleared after draining")
	}
}

func TestEngine_MoveRejectedDuringSlide(t *testing.T) {
	engine := newTestEngine(t)

	engine.Move(Down)
	if engine.Move(Down) {
		t.Fatal("Expected second move to be rejected while sliding")
	}
	last := engine.GetLastMove()
	if last.Success || last.Reason != ReasonSliding {
		t.Errorf("Expected sliding rejection in history, got %+v", last)
	}

	engine.Settle()
	if !engine.Move(Down) {
		t.Error("Expected move to be accepted after the slide finished")
	}
}

func TestEngine_InvalidDirection(t *testing.T) {
	engine := newTestEngine(t)

	if engine.Move("sideways") {
		t.Fatal("Expected invalid direction to fail")
	}
	last := engine.GetLastMove()
	if last == nil || last.Reason != ReasonInvalidDirection || last.Action != "sideways" {
		t.Errorf("Unexpected history entry %+v", last)
	}
	if engine.GetState().Animation.Sliding {
		t.Error("Invalid direction must not start a slide")
	}
}

func TestEngine_MoveBy(t *testing.T) {
	engine := newTestEngine(t)

	if !engine.MoveBy(0, 1) {
		t.Fatal("Expected MoveBy(0,1) to succeed")
	}
	if engine.GetLastMove().Action != "+0,+1" {
		t.Errorf("Unexpected action name %q", engine.GetLastMove().Action)
	}
	engine.Settle()
	if engine.MoveBy(-1, 0) {
		t.Error("Expected MoveBy off the grid to fail")
	}
}

func TestEngine_PossibleMoves(t *testing.T) {
	engine := newTestEngine(t)

	moves := engine.GetPossibleMoves()
	if len(moves) != 2 || moves[0] != Down || moves[1] != Right {
		t.Errorf("Expected [down right] from the corner, got %v", moves)
	}

	engine.Move(Right)
	if len(engine.GetPossibleMoves()) != 0 {
		t.Error("Expected no possible moves while sliding")
	}
	if engine.CanMove("nowhere") {
		t.Error("CanMove should reject unknown directions")
	}
}

func TestEngine_UpdateAdvancesOneStepPerFrame(t *testing.T) {
	engine := newTestEngine(t)
	engine.Move(Right)

	frames := 0
	for engine.GetState().Animation.Sliding {
		// dt does not influence the slide speed
		engine.Update(time.Second)
		frames++
		if frames > 100 {
			t.Fatal("Slide never finished")
		}
	}
	if frames != 8 {
		t.Errorf("Expected 64px at 8px/frame to take 8 frames, got %d", frames)
	}
	if engine.GetState().Frame != 8 {
		t.Errorf("Expected frame counter 8, got %d", engine.GetState().Frame)
	}
	if engine.Update(FrameTime) {
		t.Error("Idle update should report no change")
	}
}

func TestEngine_CollectFirstNote(t *testing.T) {
	engine := newTestEngine(t)

	walk(t, engine, Right, Right, Right, Down)
	if engine.IsPaused() {
		t.Fatal("Popup opened before reaching the note")
	}
	engine.DrainEvents()

	walk(t, engine, Down)
	state := engine.GetState()
	if state.Player != (Position{X: 3, Y: 2}) {
		t.Fatalf("Expected player at (3,2), got %v", state.Player)
	}
	if !state.Notes[0].Collected || state.NotesCollected != 1 {
		t.Errorf("Expected note 0 collected, got %+v (count %d)", state.Notes[0], state.NotesCollected)
	}
	if !state.Paused {
		t.Error("Expected game to pause while the popup is open")
	}
	if state.Popup.Phase != PopupPhotoFadeIn || state.Popup.NoteIndex != 0 {
		t.Errorf("Unexpected popup %+v", state.Popup)
	}
	if state.Popup.Image != "img1.jpg" {
		t.Errorf("Expected popup image img1.jpg, got %q", state.Popup.Image)
	}
	if state.Popup.Elapsed != 0 {
		t.Errorf("Popup timers must not run on the opening frame, elapsed %v", state.Popup.Elapsed)
	}

	events := engine.DrainEvents()
	found := false
	for _, ev := range events {
		if ev.Type == EventNoteCollected && ev.NoteIndex == 0 {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a note_collected event, got %+v", events)
	}

	// Moves are ignored while the popup is open
	if engine.Move(Down) {
		t.Error("Expected move to be rejected while paused")
	}
	if engine.GetLastMove().Reason != ReasonPaused {
		t.Errorf("Expected paused reason, got %q", engine.GetLastMove().Reason)
	}
}

func TestEngine_InactiveNoteNotCollected(t *testing.T) {
	engine := newTestEngine(t)

	// Note 1 sits at (4,2) but note 0 is still active
	walk(t, engine, Route(Position{}, Position{X: 4, Y: 2})...)
	state := engine.GetState()
	if state.Paused || state.Notes[1].Collected || state.NotesCollected != 0 {
		t.Errorf("Inactive note was collected: %+v", state.Notes[1])
	}
}

func TestEngine_ClosePopupAdvancesProgression(t *testing.T) {
	engine := newTestEngine(t)

	walk(t, engine, Right, Right, Right, Down, Down)
	if err := engine.ClosePopup(); err != ErrPopupNotDismissable {
		t.Errorf("Expected ErrPopupNotDismissable before the message shows, got %v", err)
	}

	engine.Advance(400 * time.Millisecond)
	if err := engine.ClosePopup(); err != nil {
		t.Fatalf("Failed to close popup: %v", err)
	}

	state := engine.GetState()
	if state.Paused || state.Popup.Visible() {
		t.Error("Expected popup hidden and game resumed")
	}
	if state.CurrentNote != 1 {
		t.Errorf("Expected note 1 active, got %d", state.CurrentNote)
	}
	if state.Message != "Find note 2 of 6" {
		t.Errorf("Unexpected message %q", state.Message)
	}

	// Standing on the collected note again does nothing
	walk(t, engine, Up, Down)
	if engine.IsPaused() {
		t.Error("Collected note reopened its popup")
	}

	// Second close is rejected
	if err := engine.ClosePopup(); err != ErrPopupNotDismissable {
		t.Errorf("Expected ErrPopupNotDismissable for hidden popup, got %v", err)
	}
}

func TestEngine_FullGame(t *testing.T) {
	engine := newTestEngine(t)

	for i := 0; i < 6; i++ {
		collectActive(t, engine)
	}

	state := engine.GetState()
	if !state.Completed {
		t.Fatal("Expected game to be completed")
	}
	if state.NotesCollected != 6 {
		t.Errorf("Expected 6 notes collected, got %d", state.NotesCollected)
	}
	if _, ok := engine.ActiveNote(); ok {
		t.Error("Expected no active note after completion")
	}
	if !state.Carousel.Visible || state.Carousel.Index != 0 || state.Carousel.Image != "img1.jpg" {
		t.Errorf("Unexpected carousel %+v", state.Carousel)
	}
	if state.Carousel.Text != createTestConfig().FinalMessage {
		t.Errorf("Unexpected carousel text %q", state.Carousel.Text)
	}
	if !state.Paused {
		t.Error("Expected carousel to pause the board")
	}
}

func TestEngine_Reset(t *testing.T) {
	engine := newTestEngine(t)

	walk(t, engine, Right, Right, Right, Down, Down)
	engine.Move(Up) // rejected while paused, still recorded
	totalBefore := engine.GetState().TotalMoves

	state := engine.Reset()
	if state.Player != (Position{}) || state.Paused || state.NotesCollected != 0 {
		t.Errorf("Reset did not restore the start: %+v", state)
	}
	if state.TotalMoves != totalBefore || len(state.MoveHistory) != totalBefore {
		t.Errorf("Expected cumulative history preserved (%d), got %d/%d",
			totalBefore, state.TotalMoves, len(state.MoveHistory))
	}
	if state.CurrentMovesCount != 0 || len(state.CurrentMoves) != 0 {
		t.Error("Expected current segment cleared")
	}
	if state.Notes[0].Pos() != (Position{X: 3, Y: 2}) {
		t.Errorf("Pinned notes moved on reset: %v", state.Notes[0].Pos())
	}

	events := engine.DrainEvents()
	if len(events) != 1 || events[0].Type != EventReset {
		t.Errorf("Expected a single reset event, got %+v", events)
	}
}

func TestEngine_SetState(t *testing.T) {
	engine := newTestEngine(t)

	if err := engine.SetState(nil); err == nil {
		t.Error("Expected error for nil state")
	}

	other := InitGameStateFromConfig(createTestConfig(), 5)
	other.Player = Position{X: 2, Y: 2}
	other.SnapAnimation()
	if err := engine.SetState(other); err != nil {
		t.Fatalf("Failed to set state: %v", err)
	}
	if engine.GetPlayerPosition() != (Position{X: 2, Y: 2}) {
		t.Errorf("Expected restored position, got %v", engine.GetPlayerPosition())
	}

	mismatched := InitGameStateFromConfig(createTestConfig(), 5)
	mismatched.GridSize = 10
	if err := engine.SetState(mismatched); err == nil {
		t.Error("Expected geometry mismatch error")
	}
}

func TestEngine_SetConfig(t *testing.T) {
	engine := newTestEngine(t)
	walk(t, engine, Right)

	config := createTestConfig()
	config.GridSize = 5
	config.NoteCount = 2
	config.Messages = config.Messages[:2]
	config.Images = config.Images[:2]
	config.NotePositions = []Position{{X: 1, Y: 1}, {X: 4, Y: 4}}

	if err := engine.SetConfig(config); err != nil {
		t.Fatalf("Failed to set config: %v", err)
	}
	state := engine.GetState()
	if state.GridSize != 5 || len(state.Notes) != 2 || state.Player != (Position{}) {
		t.Errorf("Unexpected state after SetConfig: %+v", state)
	}

	bad := createTestConfig()
	bad.SlideSpeed = 0
	if err := engine.SetConfig(bad); err == nil {
		t.Error("Expected invalid config to be rejected")
	}
}

func TestEngine_SnapshotIsIndependent(t *testing.T) {
	engine := newTestEngine(t)

	snap := engine.Snapshot()
	engine.Move(Right)
	engine.Settle()

	if snap.Player != (Position{}) || snap.Animation.Sliding {
		t.Errorf("Snapshot changed with the engine: %+v", snap.Player)
	}
}

func TestEngine_SettleIsNoOpWhenIdle(t *testing.T) {
	engine := newTestEngine(t)
	if engine.Settle() {
		t.Error("Settle without a slide should not change anything")
	}
	if engine.GetState().Frame != 0 {
		t.Errorf("Settle without a slide advanced frames: %d", engine.GetState().Frame)
	}
}
