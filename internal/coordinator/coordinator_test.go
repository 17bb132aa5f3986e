package coordinator_test

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"todo/internal/cache"
	"todo/internal/coordinator"
	"todo/internal/store"
	"todo/internal/task"
	"todo/internal/testutil"
)

var errBoom = errors.New("boom")

type fixture struct {
	gw          *testutil.FakeGateway
	store       *store.Store
	cache       *cache.Cache
	coord       *coordinator.Coordinator
	transitions []coordinator.Transition
	mu          sync.Mutex
}

func newFixture(t *testing.T, seed []task.Task, opts ...coordinator.Option) *fixture {
	t.Helper()
	f := &fixture{gw: testutil.NewFakeGateway()}
	f.cache = cache.New(cache.NewMemory())
	ctx := context.Background()
	if seed != nil {
		if err := f.cache.Write(ctx, seed); err != nil {
			t.Fatal(err)
		}
	}
	f.store = store.New(f.cache, f.gw, nil)
	if err := f.store.EnsureLoaded(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	n := 0
	base := []coordinator.Option{
		coordinator.WithIDGenerator(func() string {
			n++
			return "new-" + string(rune('0'+n))
		}),
		coordinator.WithObserver(func(tr coordinator.Transition) {
			f.mu.Lock()
			f.transitions = append(f.transitions, tr)
			f.mu.Unlock()
		}),
	}
	f.coord = coordinator.New(f.store, f.gw, append(base, opts...)...)
	return f
}

func (f *fixture) phases() []coordinator.Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []coordinator.Phase
	for _, tr := range f.transitions {
		out = append(out, tr.Phase)
	}
	return out
}

func (f *fixture) cached(t *testing.T) []task.Task {
	t.Helper()
	got, err := f.cache.Read(context.Background())
	if err != nil {
		t.Fatalf("read cache: %v", err)
	}
	return got
}

func seedOne(completed bool) []task.Task {
	return []task.Task{{ID: "1", Title: "Buy milk", Description: "Buy milk", DueLabel: task.UnknownDue, Completed: completed}}
}

func TestCreate_PrependsAfterGatewaySuccess(t *testing.T) {
	f := newFixture(t, seedOne(false))
	ctx := context.Background()

	out := f.coord.Create(ctx, "  Walk dog  ")
	if !out.OK() || out.Phase != coordinator.PhaseCommitted {
		t.Fatalf("expected committed, got %+v", out)
	}

	want := task.Task{ID: "new-1", Title: "Walk dog", Description: "Walk dog", DueLabel: task.TodayDue}
	tasks := f.store.Tasks()
	if len(tasks) != 2 || !reflect.DeepEqual(tasks[0], want) {
		t.Fatalf("expected %+v at head, got %+v", want, tasks)
	}
	if !reflect.DeepEqual(f.cached(t), tasks) {
		t.Error("cache does not match store")
	}
	if st := f.coord.Status(); st.Message != "Todo added successfully!" || st.Severity != coordinator.SeveritySuccess {
		t.Errorf("unexpected status %+v", st)
	}
	calls := f.gw.Calls()
	if len(calls) != 1 || calls[0].Op != "create" || calls[0].Title != "Walk dog" {
		t.Errorf("unexpected gateway calls %+v", calls)
	}
	if got := f.phases(); !reflect.DeepEqual(got, []coordinator.Phase{coordinator.PhasePending, coordinator.PhaseCommitted}) {
		t.Errorf("unexpected phases %v", got)
	}
}

func TestCreate_BlankTitleRejected(t *testing.T) {
	f := newFixture(t, seedOne(false))

	out := f.coord.Create(context.Background(), "   ")
	if out.Phase != coordinator.PhaseRejected || !coordinator.IsValidation(out.Err) {
		t.Fatalf("expected validation rejection, got %+v", out)
	}
	if f.gw.CallCount("create") != 0 {
		t.Error("gateway should not be called")
	}
	if f.store.Len() != 1 {
		t.Errorf("store changed: %+v", f.store.Tasks())
	}
	if st := f.coord.Status(); st.Message != "Task title cannot be empty." || st.Severity != coordinator.SeverityFailure {
		t.Errorf("unexpected status %+v", st)
	}
}

// linkingGateway records the pairings the coordinator hands to a Linker.
type linkingGateway struct {
	*testutil.FakeGateway
	linkErr error
	links   [][2]string
}

func (g *linkingGateway) Link(ctx context.Context, localID, remoteID string) error {
	g.links = append(g.links, [2]string{localID, remoteID})
	return g.linkErr
}

func newLinkingStore(t *testing.T) *store.Store {
	t.Helper()
	c := cache.New(cache.NewMemory())
	if err := c.Write(context.Background(), []task.Task{}); err != nil {
		t.Fatal(err)
	}
	st := store.New(c, testutil.NewFakeGateway(), nil)
	if err := st.EnsureLoaded(context.Background()); err != nil {
		t.Fatal(err)
	}
	return st
}

func TestCreate_LinksRemoteID(t *testing.T) {
	gw := &linkingGateway{FakeGateway: testutil.NewFakeGateway()}
	co := coordinator.New(newLinkingStore(t), gw, coordinator.WithIDGenerator(func() string { return "local-1" }))

	out := co.Create(context.Background(), "Walk dog")
	if out.Phase != coordinator.PhaseCommitted {
		t.Fatalf("expected committed, got %+v", out)
	}
	if want := [][2]string{{"local-1", "201"}}; !reflect.DeepEqual(gw.links, want) {
		t.Errorf("expected links %v, got %v", want, gw.links)
	}
}

func TestCreate_LinkFailureStillCommits(t *testing.T) {
	gw := &linkingGateway{FakeGateway: testutil.NewFakeGateway(), linkErr: errBoom}
	st := newLinkingStore(t)
	co := coordinator.New(st, gw, coordinator.WithIDGenerator(func() string { return "local-1" }))

	out := co.Create(context.Background(), "Walk dog")
	if !out.OK() || out.Phase != coordinator.PhaseCommitted {
		t.Fatalf("expected committed, got %+v", out)
	}
	if _, ok := st.Get("local-1"); !ok {
		t.Error("expected record in store")
	}
}

func TestCreate_FailedCreateIsNotLinked(t *testing.T) {
	gw := &linkingGateway{FakeGateway: testutil.NewFakeGateway()}
	gw.CreateErr = errBoom
	co := coordinator.New(newLinkingStore(t), gw)

	if out := co.Create(context.Background(), "Walk dog"); out.Phase != coordinator.PhaseFailed {
		t.Fatalf("expected failed, got %+v", out)
	}
	if len(gw.links) != 0 {
		t.Errorf("unexpected links %v", gw.links)
	}
}

func TestCreate_GatewayFailureLeavesStoreUntouched(t *testing.T) {
	f := newFixture(t, seedOne(false))
	f.gw.CreateErr = errBoom
	before := f.store.Tasks()

	out := f.coord.Create(context.Background(), "Walk dog")
	if out.Phase != coordinator.PhaseFailed || !errors.Is(out.Err, errBoom) {
		t.Fatalf("expected failed with boom, got %+v", out)
	}
	if got := f.phases(); !reflect.DeepEqual(got, []coordinator.Phase{coordinator.PhasePending, coordinator.PhaseFailed}) {
		t.Errorf("unexpected transitions %v", got)
	}
	if !reflect.DeepEqual(f.store.Tasks(), before) {
		t.Errorf("store changed: %+v", f.store.Tasks())
	}
	st := f.coord.Status()
	if st.Severity != coordinator.SeverityFailure || st.Message != "Failed to save todo: "+out.Err.Error() {
		t.Errorf("unexpected status %+v", st)
	}
	if f.coord.Saving() {
		t.Error("saving flag left set")
	}
}

func TestCreate_SecondSaveRejectedWhileInFlight(t *testing.T) {
	pending := make(chan struct{})
	var once sync.Once
	f := newFixture(t, seedOne(false), coordinator.WithObserver(func(tr coordinator.Transition) {
		if tr.Kind == coordinator.KindCreate && tr.Phase == coordinator.PhasePending {
			once.Do(func() { close(pending) })
		}
	}))
	f.gw.Block = make(chan struct{})
	ctx := context.Background()

	done := make(chan coordinator.Outcome)
	go func() { done <- f.coord.Create(ctx, "first") }()
	<-pending

	if !f.coord.Saving() {
		t.Error("expected saving flag during flight")
	}
	if out := f.coord.Create(ctx, "second"); !errors.Is(out.Err, coordinator.ErrSaveInFlight) {
		t.Errorf("expected ErrSaveInFlight, got %+v", out)
	}
	if out := f.coord.Update(ctx, "1", "renamed"); !errors.Is(out.Err, coordinator.ErrSaveInFlight) {
		t.Errorf("expected update rejected, got %+v", out)
	}

	close(f.gw.Block)
	if out := <-done; out.Phase != coordinator.PhaseCommitted {
		t.Fatalf("expected first create committed, got %+v", out)
	}
	if f.gw.CallCount("create") != 1 {
		t.Errorf("expected a single create call, got %d", f.gw.CallCount("create"))
	}
	if f.store.Len() != 2 {
		t.Errorf("expected 2 tasks, got %d", f.store.Len())
	}
}

func TestCreate_NotLoaded(t *testing.T) {
	gw := testutil.NewFakeGateway()
	st := store.New(cache.New(cache.NewMemory()), gw, nil)
	c := coordinator.New(st, gw)

	out := c.Create(context.Background(), "x")
	if !errors.Is(out.Err, store.ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %+v", out)
	}
	if gw.CallCount("create") != 0 {
		t.Error("gateway should not be called")
	}
}

func TestUpdate_RewritesTitleAndDescription(t *testing.T) {
	seed := []task.Task{{ID: "1", Title: "old", Description: "old", DueLabel: task.UnknownDue, Completed: false}}
	f := newFixture(t, seed)

	out := f.coord.Update(context.Background(), "1", " new ")
	if out.Phase != coordinator.PhaseCommitted {
		t.Fatalf("expected committed, got %+v", out)
	}
	got, _ := f.store.Get("1")
	want := task.Task{ID: "1", Title: "new", Description: "new", DueLabel: task.UnknownDue}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
	calls := f.gw.Calls()
	if len(calls) != 1 || calls[0].Fields.Title == nil || *calls[0].Fields.Title != "new" || calls[0].Fields.Completed != nil {
		t.Errorf("expected title-only patch, got %+v", calls)
	}
	if f.coord.Status().Message != "Todo updated successfully!" {
		t.Errorf("unexpected status %+v", f.coord.Status())
	}
}

func TestUpdate_GatewayFailureKeepsRecord(t *testing.T) {
	f := newFixture(t, seedOne(false))
	f.gw.PatchErr = errBoom

	out := f.coord.Update(context.Background(), "1", "new")
	if out.Phase != coordinator.PhaseFailed || !errors.Is(out.Err, errBoom) {
		t.Fatalf("expected failed, got %+v", out)
	}
	if got, _ := f.store.Get("1"); got.Title != "Buy milk" {
		t.Errorf("title changed to %q", got.Title)
	}
	if f.coord.Status().Severity != coordinator.SeverityFailure {
		t.Errorf("expected failure status, got %+v", f.coord.Status())
	}
}

func TestUpdate_UnknownID(t *testing.T) {
	f := newFixture(t, seedOne(false))

	out := f.coord.Update(context.Background(), "nope", "x")
	if out.Phase != coordinator.PhaseRejected || !errors.Is(out.Err, coordinator.ErrTaskNotFound) {
		t.Fatalf("expected not found rejection, got %+v", out)
	}
	if f.gw.CallCount("patch") != 0 {
		t.Error("gateway should not be called")
	}
}

func TestToggle_TwiceRestoresOriginal(t *testing.T) {
	f := newFixture(t, seedOne(false))
	ctx := context.Background()

	out := f.coord.Toggle(ctx, "1")
	if out.Phase != coordinator.PhaseCommitted || !out.Task.Completed {
		t.Fatalf("expected completed, got %+v", out)
	}
	if f.coord.Status().Message != "Task completed!" {
		t.Errorf("unexpected status %+v", f.coord.Status())
	}

	out = f.coord.Toggle(ctx, "1")
	if out.Phase != coordinator.PhaseCommitted || out.Task.Completed {
		t.Fatalf("expected incomplete, got %+v", out)
	}
	if f.coord.Status().Message != "Task marked as incomplete!" {
		t.Errorf("unexpected status %+v", f.coord.Status())
	}

	if !reflect.DeepEqual(f.store.Tasks(), seedOne(false)) {
		t.Errorf("expected original record, got %+v", f.store.Tasks())
	}
	calls := f.gw.Calls()
	if len(calls) != 2 || *calls[0].Fields.Completed != true || *calls[1].Fields.Completed != false {
		t.Errorf("unexpected patches %+v", calls)
	}
	if calls[0].Fields.Title != nil {
		t.Error("toggle should not send a title")
	}
}

func TestToggle_AppliedBeforeGatewayResponds(t *testing.T) {
	var seen []bool
	var f *fixture
	f = newFixture(t, seedOne(false), coordinator.WithObserver(func(tr coordinator.Transition) {
		if tr.Phase == coordinator.PhasePending {
			got, _ := f.store.Get(tr.ID)
			seen = append(seen, got.Completed)
			cached := f.cached(t)
			seen = append(seen, cached[0].Completed)
		}
	}))

	f.coord.Toggle(context.Background(), "1")
	if !reflect.DeepEqual(seen, []bool{true, true}) {
		t.Errorf("expected store and cache flipped while pending, got %v", seen)
	}
}

func TestToggle_RollsBackOnFailure(t *testing.T) {
	f := newFixture(t, seedOne(false))
	f.gw.PatchErr = errBoom

	out := f.coord.Toggle(context.Background(), "1")
	if out.Phase != coordinator.PhaseRolledBack || !errors.Is(out.Err, errBoom) {
		t.Fatalf("expected rolled back, got %+v", out)
	}
	if !reflect.DeepEqual(f.store.Tasks(), seedOne(false)) {
		t.Errorf("store not restored: %+v", f.store.Tasks())
	}
	if !reflect.DeepEqual(f.cached(t), seedOne(false)) {
		t.Errorf("cache not restored: %+v", f.cached(t))
	}
	st := f.coord.Status()
	if st.Severity != coordinator.SeverityFailure || st.Message != "Failed to update task status: "+out.Err.Error() {
		t.Errorf("unexpected status %+v", st)
	}
	if got := f.phases(); !reflect.DeepEqual(got, []coordinator.Phase{coordinator.PhasePending, coordinator.PhaseRolledBack}) {
		t.Errorf("unexpected phases %v", got)
	}
}

func TestToggle_PolicyWithoutRollback(t *testing.T) {
	f := newFixture(t, seedOne(false), coordinator.WithPolicy(coordinator.Policy{}))
	f.gw.PatchErr = errBoom

	out := f.coord.Toggle(context.Background(), "1")
	if out.Phase != coordinator.PhaseCommitted || out.Err == nil {
		t.Fatalf("expected committed with error, got %+v", out)
	}
	if got, _ := f.store.Get("1"); !got.Completed {
		t.Error("expected flip to stand")
	}
}

func TestRemove_FailureDoesNotRestore(t *testing.T) {
	f := newFixture(t, seedOne(false))
	f.gw.DeleteErr = errBoom

	out := f.coord.Remove(context.Background(), "1")
	if out.Phase != coordinator.PhaseCommitted || !errors.Is(out.Err, errBoom) {
		t.Fatalf("expected committed with error, got %+v", out)
	}
	if f.store.Len() != 0 {
		t.Errorf("expected empty store, got %+v", f.store.Tasks())
	}
	if got := f.cached(t); len(got) != 0 {
		t.Errorf("expected empty cache, got %+v", got)
	}
	st := f.coord.Status()
	if st.Severity != coordinator.SeverityFailure || st.Message != "Failed to delete todo: "+out.Err.Error() {
		t.Errorf("unexpected status %+v", st)
	}
}

func TestRemove_Success(t *testing.T) {
	seed := append(seedOne(false), task.Task{ID: "2", Title: "b", Description: "b", DueLabel: task.UnknownDue})
	f := newFixture(t, seed)

	out := f.coord.Remove(context.Background(), "1")
	if !out.OK() || out.Task.ID != "1" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if ids := taskIDs(f.store.Tasks()); !reflect.DeepEqual(ids, []string{"2"}) {
		t.Errorf("expected [2], got %v", ids)
	}
	if f.coord.Status().Message != "Todo deleted successfully!" {
		t.Errorf("unexpected status %+v", f.coord.Status())
	}
}

func TestRemove_PolicyRestoresPosition(t *testing.T) {
	seed := []task.Task{
		{ID: "a", Title: "a", Description: "a", DueLabel: task.UnknownDue},
		{ID: "b", Title: "b", Description: "b", DueLabel: task.UnknownDue},
		{ID: "c", Title: "c", Description: "c", DueLabel: task.UnknownDue},
	}
	f := newFixture(t, seed, coordinator.WithPolicy(coordinator.Policy{RollbackToggle: true, RollbackRemove: true}))
	f.gw.DeleteErr = errBoom

	out := f.coord.Remove(context.Background(), "b")
	if out.Phase != coordinator.PhaseRolledBack {
		t.Fatalf("expected rolled back, got %+v", out)
	}
	if !reflect.DeepEqual(f.store.Tasks(), seed) {
		t.Errorf("expected original order, got %+v", f.store.Tasks())
	}
	if !reflect.DeepEqual(f.cached(t), seed) {
		t.Errorf("cache not restored")
	}
}

func TestUnknownIDsRejected(t *testing.T) {
	f := newFixture(t, seedOne(false))
	ctx := context.Background()

	for _, out := range []coordinator.Outcome{f.coord.Toggle(ctx, "x"), f.coord.Remove(ctx, "x")} {
		if out.Phase != coordinator.PhaseRejected || !errors.Is(out.Err, coordinator.ErrTaskNotFound) {
			t.Errorf("expected rejection, got %+v", out)
		}
	}
	if len(f.gw.Calls()) != 0 {
		t.Errorf("gateway called: %+v", f.gw.Calls())
	}
}

func TestStatus_MostRecentWinsAndDismiss(t *testing.T) {
	f := newFixture(t, seedOne(false))
	ctx := context.Background()

	f.coord.Create(ctx, "")
	f.coord.Toggle(ctx, "1")
	if st := f.coord.Status(); st.Message != "Task completed!" {
		t.Errorf("expected latest status, got %+v", st)
	}
	f.coord.DismissStatus()
	if !f.coord.Status().IsZero() {
		t.Error("expected cleared status")
	}
}

func taskIDs(tasks []task.Task) []string {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}
