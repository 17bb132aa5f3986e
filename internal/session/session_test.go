package session_test

import (
	"context"
	"errors"
	"testing"

	"todo/internal/coordinator"
	"todo/internal/session"
	"todo/internal/task"
	"todo/internal/testutil"
)

func loaded(t *testing.T, seed []task.Task) *testutil.Harness {
	t.Helper()
	h := testutil.NewHarness(t, nil, seed)
	if err := h.Session.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return h
}

func TestView_FirstPageAndLoadMore(t *testing.T) {
	h := loaded(t, testutil.Tasks(25))
	s := h.Session

	v := s.View()
	if len(v.Tasks) != 10 || !v.More() {
		t.Fatalf("expected 10 with more, got %d more=%v", len(v.Tasks), v.More())
	}
	s.LoadMore()
	s.LoadMore()
	v = s.View()
	if len(v.Tasks) != 25 || v.More() {
		t.Errorf("expected all 25 without more, got %d more=%v", len(v.Tasks), v.More())
	}
}

func TestSetFilter_KeepsPageSize(t *testing.T) {
	h := loaded(t, testutil.Tasks(30))
	s := h.Session
	s.LoadMore()

	s.SetFilter("TASK 2")
	v := s.View()
	// "Task 2" and "Task 20".."Task 29"
	if v.Matched != 11 || len(v.Tasks) != 11 || v.PageSize != 20 {
		t.Errorf("unexpected view matched=%d len=%d size=%d", v.Matched, len(v.Tasks), v.PageSize)
	}
	s.SetFilter("")
	if s.PageSize() != 20 {
		t.Errorf("page size reset to %d", s.PageSize())
	}
}

func TestCreate_GrowsPageWhenRoomRemained(t *testing.T) {
	h := loaded(t, testutil.Tasks(3))
	s := h.Session

	out := s.Create(context.Background(), "new")
	if out.Phase != coordinator.PhaseCommitted {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if s.PageSize() != 11 {
		t.Errorf("expected page size 11, got %d", s.PageSize())
	}
	if v := s.View(); v.Tasks[0].ID != "id-1" || len(v.Tasks) != 4 {
		t.Errorf("expected new task first, got %+v", v.Tasks)
	}
}

func TestCreate_FullPageDoesNotGrow(t *testing.T) {
	h := loaded(t, testutil.Tasks(12))
	s := h.Session

	s.Create(context.Background(), "new")
	if s.PageSize() != 10 {
		t.Errorf("expected page size 10, got %d", s.PageSize())
	}
	if v := s.View(); len(v.Tasks) != 10 || v.Tasks[0].Title != "new" {
		t.Errorf("unexpected view %+v", v.Tasks)
	}
}

func TestCreate_FailureDoesNotGrow(t *testing.T) {
	h := loaded(t, testutil.Tasks(1))
	h.Gateway.CreateErr = errors.New("down")

	h.Session.Create(context.Background(), "new")
	if h.Session.PageSize() != 10 {
		t.Errorf("expected page size 10, got %d", h.Session.PageSize())
	}
}

func TestEdit_SaveUpdatesAndLeavesEditMode(t *testing.T) {
	h := loaded(t, testutil.Tasks(2))
	s := h.Session
	ctx := context.Background()

	got, err := s.BeginEdit("2")
	if err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	if got.Title != "Task 2" || s.Editing() != "2" {
		t.Errorf("unexpected edit state %+v %q", got, s.Editing())
	}

	out := s.Save(ctx, "Renamed")
	if out.Kind != coordinator.KindUpdate || out.Phase != coordinator.PhaseCommitted {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if s.Editing() != "" {
		t.Error("expected edit mode to end")
	}
	if rec, _ := s.Task("2"); rec.Title != "Renamed" || rec.Description != "Renamed" {
		t.Errorf("unexpected record %+v", rec)
	}
	if s.Status().Message != "Todo updated successfully!" {
		t.Errorf("unexpected status %+v", s.Status())
	}
}

func TestEdit_FailedSaveStaysInEditMode(t *testing.T) {
	h := loaded(t, testutil.Tasks(1))
	h.Gateway.PatchErr = errors.New("down")
	s := h.Session

	if _, err := s.BeginEdit("1"); err != nil {
		t.Fatal(err)
	}
	s.Save(context.Background(), "x")
	if s.Editing() != "1" {
		t.Errorf("expected still editing, got %q", s.Editing())
	}
	if s.Status().Severity != coordinator.SeverityFailure {
		t.Errorf("expected failure status, got %+v", s.Status())
	}
}

func TestBeginEdit_Refusals(t *testing.T) {
	seed := testutil.Tasks(1)
	seed[0].Completed = true
	h := loaded(t, seed)

	if _, err := h.Session.BeginEdit("1"); !errors.Is(err, session.ErrCompletedNotEditable) {
		t.Errorf("expected ErrCompletedNotEditable, got %v", err)
	}
	if _, err := h.Session.BeginEdit("zzz"); !errors.Is(err, session.ErrNoSuchTask) {
		t.Errorf("expected ErrNoSuchTask, got %v", err)
	}
	if h.Session.Editing() != "" {
		t.Error("expected create mode")
	}
}

func TestSave_CreateModeCreates(t *testing.T) {
	h := loaded(t, testutil.Tasks(1))

	out := h.Session.Save(context.Background(), "new")
	if out.Kind != coordinator.KindCreate || !out.OK() {
		t.Fatalf("unexpected outcome %+v", out)
	}
}

func TestRemove_EndsEditOfRemovedTask(t *testing.T) {
	h := loaded(t, testutil.Tasks(2))
	s := h.Session

	if _, err := s.BeginEdit("1"); err != nil {
		t.Fatal(err)
	}
	s.Remove(context.Background(), "1")
	if s.Editing() != "" {
		t.Errorf("expected edit cleared, got %q", s.Editing())
	}
}

func TestReset_ReseedsOnNextLoad(t *testing.T) {
	gw := testutil.NewFakeGateway()
	gw.AddTask(1, "remote", false)
	h := testutil.NewHarness(t, gw, testutil.Tasks(3))
	s := h.Session
	ctx := context.Background()

	if err := s.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if len(s.Tasks()) != 3 {
		t.Fatalf("expected cached tasks, got %+v", s.Tasks())
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	if s.Loaded() {
		t.Error("expected unloaded after reset")
	}
	if err := s.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if tasks := s.Tasks(); len(tasks) != 1 || tasks[0].Title != "remote" {
		t.Errorf("expected reseed from gateway, got %+v", tasks)
	}
}

func TestLoad_ErrorSurfaces(t *testing.T) {
	gw := testutil.NewFakeGateway()
	gw.ListErr = errors.New("offline")
	h := testutil.NewHarness(t, gw, nil)

	err := h.Session.Load(context.Background())
	if err == nil || err.Error() == "" {
		t.Fatal("expected load error")
	}
	if h.Session.Loaded() {
		t.Error("expected not loaded")
	}
}
