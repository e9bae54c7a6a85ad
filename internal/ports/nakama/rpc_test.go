package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"

	"hitstory/internal/catalog"
	"hitstory/internal/config"
	"hitstory/internal/domain"
	"hitstory/internal/ports"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// fakeNakama stores objects in memory. Only the storage calls are implemented;
// anything else panics through the nil embedded module.
type fakeNakama struct {
	runtime.NakamaModule
	objects  map[string]*runtime.StorageWrite
	failRead bool
}

func newFakeNakama() *fakeNakama {
	return &fakeNakama{objects: map[string]*runtime.StorageWrite{}}
}

func objectKey(collection, key, userID string) string {
	return collection + "/" + userID + "/" + key
}

func (f *fakeNakama) StorageRead(_ context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error) {
	if f.failRead {
		return nil, errors.New("db down")
	}
	var out []*api.StorageObject
	for _, r := range reads {
		if w, ok := f.objects[objectKey(r.Collection, r.Key, r.UserID)]; ok {
			out = append(out, &api.StorageObject{Collection: w.Collection, Key: w.Key, UserId: w.UserID, Value: w.Value})
		}
	}
	return out, nil
}

func (f *fakeNakama) StorageWrite(_ context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error) {
	acks := make([]*api.StorageObjectAck, 0, len(writes))
	for _, w := range writes {
		if !json.Valid([]byte(w.Value)) || !strings.HasPrefix(w.Value, "{") {
			return nil, errors.New("value must be a JSON object")
		}
		f.objects[objectKey(w.Collection, w.Key, w.UserID)] = w
		acks = append(acks, &api.StorageObjectAck{Collection: w.Collection, Key: w.Key, UserId: w.UserID})
	}
	return acks, nil
}

func (f *fakeNakama) StorageDelete(_ context.Context, deletes []*runtime.StorageDelete) error {
	for _, d := range deletes {
		delete(f.objects, objectKey(d.Collection, d.Key, d.UserID))
	}
	return nil
}

func userCtx(userID string) context.Context {
	return context.WithValue(context.Background(), runtime.RUNTIME_CTX_USER_ID, userID)
}

func newTestModule(t *testing.T, env config.Env) *Module {
	t.Helper()
	cat, err := catalog.New(rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("catalog.New() error: %v", err)
	}
	if env.SnapshotKey == "" {
		env.SnapshotKey = "hitstory_game_state"
	}
	m := NewModule(env, nil, cat)
	m.seed = func() int64 { return 7 }
	return m
}

type decoded struct {
	State    *domain.GameState `json:"state"`
	Rejected string            `json:"rejected"`
	Events   []struct {
		Kind string `json:"kind"`
	} `json:"events"`
}

func decode(t *testing.T, out string) decoded {
	t.Helper()
	var d decoded
	if err := json.Unmarshal([]byte(out), &d); err != nil {
		t.Fatalf("decode response %s: %v", out, err)
	}
	return d
}

func dispatch(t *testing.T, m *Module, ctx context.Context, nk *fakeNakama, payload string) decoded {
	t.Helper()
	out, err := m.RpcDispatch(ctx, noopLogger{}, nil, nk, payload)
	if err != nil {
		t.Fatalf("RpcDispatch(%s) error: %v", payload, err)
	}
	return decode(t, out)
}

func TestDispatchPersistsPerUser(t *testing.T) {
	m := newTestModule(t, config.Env{})
	nk := newFakeNakama()
	ana, ben := userCtx("ana"), userCtx("ben")

	d := dispatch(t, m, ana, nk, `{"type":"add_player","payload":{"name":"Ana"}}`)
	if len(d.State.Players) != 1 || len(d.Events) != 1 || d.Events[0].Kind != "player_added" {
		t.Fatalf("dispatch response = %+v", d)
	}

	out, err := m.RpcLoad(ana, noopLogger{}, nil, nk, "")
	if err != nil {
		t.Fatalf("RpcLoad() error: %v", err)
	}
	if got := decode(t, out); len(got.State.Players) != 1 || got.State.Players[0].Name != "Ana" {
		t.Fatalf("reloaded state = %+v", got.State)
	}
	out, _ = m.RpcLoad(ben, noopLogger{}, nil, nk, "")
	if got := decode(t, out); len(got.State.Players) != 0 {
		t.Fatalf("other user sees %d players", len(got.State.Players))
	}

	w := nk.objects[objectKey(StorageCollection, "hitstory_game_state", "ana")]
	if w == nil || w.PermissionWrite != runtime.STORAGE_PERMISSION_NO_WRITE {
		t.Fatalf("snapshot write = %+v", w)
	}
}

func TestDispatchReportsRejection(t *testing.T) {
	m := newTestModule(t, config.Env{})
	d := dispatch(t, m, userCtx("ana"), newFakeNakama(), `{"type":"next_turn"}`)
	if d.Rejected == "" || d.State.Phase != domain.PhaseSetup {
		t.Fatalf("response = %+v, want a rejection in SETUP", d)
	}
}

func TestDispatchErrors(t *testing.T) {
	m := newTestModule(t, config.Env{})
	nk := newFakeNakama()
	if _, err := m.RpcDispatch(context.Background(), noopLogger{}, nil, nk, `{"type":"next_turn"}`); err == nil {
		t.Fatalf("RpcDispatch() without a user should fail")
	}
	if _, err := m.RpcDispatch(userCtx("ana"), noopLogger{}, nil, nk, `{"type":"cheat"}`); err == nil {
		t.Fatalf("RpcDispatch() accepted an unknown action")
	}
	nk.failRead = true
	if _, err := m.RpcDispatch(userCtx("ana"), noopLogger{}, nil, nk, `{"type":"next_turn"}`); err == nil {
		t.Fatalf("RpcDispatch() ignored a storage failure")
	}
}

func TestStartGameDealsFromCatalog(t *testing.T) {
	m := newTestModule(t, config.Env{})
	nk := newFakeNakama()
	ctx := userCtx("ana")
	dispatch(t, m, ctx, nk, `{"type":"add_player","payload":{"name":"Ana"}}`)
	dispatch(t, m, ctx, nk, `{"type":"add_player","payload":{"name":"Ben"}}`)

	d := dispatch(t, m, ctx, nk, `{"type":"start_game","payload":{"playlistId":"decade-1970","targetScore":4}}`)
	if d.Rejected != "" {
		t.Fatalf("start rejected: %s", d.Rejected)
	}
	if d.State.Phase != domain.PhasePreTurn || d.State.Settings.SourceName != "The 1970s" {
		t.Fatalf("started state = %s / %q", d.State.Phase, d.State.Settings.SourceName)
	}
	for _, p := range d.State.Players {
		if len(p.Timeline) != 1 || p.Timeline[0].Year/10 != 197 {
			t.Fatalf("player %s timeline = %+v, want one 1970s card", p.Name, p.Timeline)
		}
	}

	out, err := m.RpcDrawCard(ctx, noopLogger{}, nil, nk, "")
	if err != nil {
		t.Fatalf("RpcDrawCard() error: %v", err)
	}
	drawn := decode(t, out)
	if drawn.State.Phase != domain.PhaseListening || drawn.State.CurrentCard == nil {
		t.Fatalf("draw response = %+v", drawn.State)
	}
	for _, p := range drawn.State.Players {
		if p.Timeline[0].ID == drawn.State.CurrentCard.ID {
			t.Fatalf("drew a card already in play")
		}
	}
	if _, err := m.RpcDrawCard(ctx, noopLogger{}, nil, nk, ""); err == nil {
		t.Fatalf("second draw while LISTENING should fail")
	}
}

func TestDrawCardUnknownSource(t *testing.T) {
	m := newTestModule(t, config.Env{})
	nk := newFakeNakama()
	ctx := userCtx("ana")
	dispatch(t, m, ctx, nk, `{"type":"add_player","payload":{"name":"Ana"}}`)
	dispatch(t, m, ctx, nk, `{"type":"start_game","payload":{}}`)

	_, err := m.RpcDrawCard(ctx, noopLogger{}, nil, nk, `{"sourceId":"spotify-playlist"}`)
	var rerr *runtime.Error
	if !errors.As(err, &rerr) || rerr.Code != codeNotFound {
		t.Fatalf("RpcDrawCard() error = %v, want not found", err)
	}
}

func TestNewGameAndStandings(t *testing.T) {
	m := newTestModule(t, config.Env{})
	nk := newFakeNakama()
	ctx := userCtx("ana")
	dispatch(t, m, ctx, nk, `{"type":"add_player","payload":{"name":"Ana"}}`)

	out, err := m.RpcStandings(ctx, noopLogger{}, nil, nk, "")
	if err != nil {
		t.Fatalf("RpcStandings() error: %v", err)
	}
	var doc struct {
		Phase     string `json:"phase"`
		WinnerID  string `json:"winnerId"`
		Standings []struct {
			Name  string  `json:"name"`
			Place float64 `json:"place"`
			Final bool    `json:"final"`
		} `json:"standings"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("standings %s: %v", out, err)
	}
	if doc.Phase != "SETUP" || len(doc.Standings) != 1 || doc.Standings[0].Name != "Ana" || doc.Standings[0].Place != 1 {
		t.Fatalf("standings = %+v", doc)
	}
	if !strings.Contains(out, `"winnerId"`) {
		t.Fatalf("standings omit empty winner: %s", out)
	}

	if _, err := m.RpcNewGame(ctx, noopLogger{}, nil, nk, ""); err != nil {
		t.Fatalf("RpcNewGame() error: %v", err)
	}
	if len(nk.objects) != 0 {
		t.Fatalf("storage still holds %d objects", len(nk.objects))
	}
}

func TestSnapshotAdapter(t *testing.T) {
	ctx := context.Background()
	nk := newFakeNakama()
	a := NewNakamaSnapshotAdapter(nk, "ana")
	if _, err := a.Get(ctx, "k"); !errors.Is(err, ports.ErrSnapshotNotFound) {
		t.Fatalf("Get() error = %v, want not found", err)
	}
	if err := a.Set(ctx, "k", []byte(`{"players":[]}`)); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	got, err := a.Get(ctx, "k")
	if err != nil || string(got) != `{"players":[]}` {
		t.Fatalf("Get() = %s, %v", got, err)
	}
	if err := a.Set(ctx, "k", []byte(`[1]`)); err == nil {
		t.Fatalf("Set() of a non-object should surface the storage error")
	}
	if err := a.Clear(ctx, "k"); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if _, err := NewNakamaSnapshotAdapter(nk, "ben").Get(ctx, "k"); !errors.Is(err, ports.ErrSnapshotNotFound) {
		t.Fatalf("adapter leaked across users")
	}
}
