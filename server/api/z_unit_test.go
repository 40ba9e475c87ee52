package api

import (
	"bytes"
	"encoding/json"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/zintix-labs/hongbao"
	"github.com/zintix-labs/hongbao/configs"
	"github.com/zintix-labs/hongbao/dto"
	"github.com/zintix-labs/hongbao/event"
	"github.com/zintix-labs/hongbao/game"
	"github.com/zintix-labs/hongbao/server/netsvr"
	"github.com/zintix-labs/hongbao/server/svrcfg"
	"github.com/zintix-labs/hongbao/spec"
)

type testServer struct {
	t   *testing.T
	svr *netsvr.ChiAdapter
	rt  *hongbao.Runtime
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	raw, err := fs.ReadFile(configs.FS, spec.DefaultConfigName)
	if err != nil {
		t.Fatalf("read embedded config: %v", err)
	}
	s := strings.Replace(string(raw), "shuffle_interval_ms: 100", "shuffle_interval_ms: 1", 1)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	hb, err := hongbao.New(hongbao.Configs(fstest.MapFS{"fast.yaml": {Data: []byte(s)}}),
		hongbao.WithSeed(11), hongbao.WithLogger(log))
	if err != nil {
		t.Fatalf("new hongbao: %v", err)
	}
	cfg := &svrcfg.SvrCfg{Log: log, Hongbao: hb, MaxTables: 4, SimMP: 2}
	if err := cfg.Vaild(); err != nil {
		t.Fatalf("invalid cfg: %v", err)
	}
	ts := &testServer{t: t, svr: netsvr.NewChiServer(":0"), rt: hb.BuildRuntime(cfg.MaxTables, time.Minute)}
	if err := RegisterRoutes(ts.svr, cfg, ts.rt); err != nil {
		t.Fatalf("register routes: %v", err)
	}
	t.Cleanup(ts.rt.Close)
	return ts
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	ts.t.Helper()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	w := httptest.NewRecorder()
	ts.svr.ServeHTTP(w, httptest.NewRequest(method, path, rd))
	return w
}

func (ts *testServer) state(w *httptest.ResponseRecorder, want int) dto.TableState {
	ts.t.Helper()
	if w.Code != want {
		ts.t.Fatalf("status = %d, want %d, body: %s", w.Code, want, w.Body.String())
	}
	var st dto.TableState
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		ts.t.Fatalf("decode state: %v", err)
	}
	return st
}

func TestTableAPIDiceRound(t *testing.T) {
	ts := newTestServer(t)

	st := ts.state(ts.do(http.MethodPost, "/v1/tables", `{"rules":"fast"}`), http.StatusCreated)
	id := st.ID
	base := "/v1/tables/" + id
	if st.Rules != "fast" || st.Table.Started {
		t.Fatalf("unexpected new table: %+v", st)
	}

	// 尚未進入遊戲，下注被狀態機拒絕
	if w := ts.do(http.MethodPost, base+"/start", ""); w.Code != http.StatusConflict {
		t.Fatalf("start in lobby: status %d", w.Code)
	}

	st = ts.state(ts.do(http.MethodPost, base+"/envelope", ""), http.StatusOK)
	grant := st.Table.Balance
	if grant < 100 || grant > 8888 {
		t.Fatalf("grant out of range: %d", grant)
	}
	ts.state(ts.do(http.MethodPost, base+"/enter", `{"game":"dice"}`), http.StatusOK)
	ts.state(ts.do(http.MethodPost, base+"/bet", `{"amount":10}`), http.StatusOK)
	ts.state(ts.do(http.MethodPost, base+"/category", `{"category":"low"}`), http.StatusOK)
	if w := ts.do(http.MethodPost, base+"/bet", `{"amount":999999}`); w.Code != http.StatusConflict {
		t.Fatalf("over-balance bet: status %d", w.Code)
	}
	ts.state(ts.do(http.MethodPost, base+"/start", ""), http.StatusOK)

	deadline := time.Now().Add(2 * time.Second)
	for {
		st = ts.state(ts.do(http.MethodGet, base, ""), http.StatusOK)
		if st.Table.Game != nil && st.Table.Game.Phase == game.Resolved {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("round not resolved: %+v", st.Table.Game)
		}
		time.Sleep(2 * time.Millisecond)
	}
	last := st.Table.Game.Last
	if last == nil || last.Bet != 10 || st.Table.Balance != grant+last.Delta {
		t.Fatalf("unexpected settlement: %+v balance=%d", last, st.Table.Balance)
	}

	w := ts.do(http.MethodGet, base+"/events", "")
	var evs dto.Events
	if err := json.Unmarshal(w.Body.Bytes(), &evs); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	resolved := 0
	for _, env := range evs.Events {
		e, err := dto.DecodeEvent(env)
		if err != nil {
			t.Fatalf("decode %s: %v", env.Type, err)
		}
		if rr, ok := e.(event.RoundResolved); ok {
			resolved++
			if rr.Delta != last.Delta || len(rr.Dice) != 3 {
				t.Fatalf("event mismatch: %+v vs %+v", rr, last)
			}
		}
	}
	if resolved != 1 {
		t.Fatalf("expected one round.resolved, got %d", resolved)
	}

	if w := ts.do(http.MethodDelete, base, ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", w.Code)
	}
	if w := ts.do(http.MethodGet, base, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("deleted table: status %d", w.Code)
	}
}

func TestTableAPIBadInput(t *testing.T) {
	ts := newTestServer(t)
	if w := ts.do(http.MethodPost, "/v1/tables", `{"rules":"nope"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown rules: status %d", w.Code)
	}
	if w := ts.do(http.MethodGet, "/v1/tables/not-a-uuid", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: status %d", w.Code)
	}
	st := ts.state(ts.do(http.MethodPost, "/v1/tables", ""), http.StatusCreated)
	if w := ts.do(http.MethodPost, "/v1/tables/"+st.ID+"/enter", `{"game":"slots"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown game: status %d", w.Code)
	}
	if w := ts.do(http.MethodPost, "/v1/tables/"+st.ID+"/answer", `{"text":"hi","x":1}`); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: status %d", w.Code)
	}
}

func TestRulesAndSimAPI(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/v1/rules", "")
	var list dto.RulesList
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil || list.Default != "fast" || len(list.Rules) != 1 {
		t.Fatalf("unexpected rules: %+v %v", list, err)
	}
	if w := ts.do(http.MethodGet, "/v1/rules/fast", ""); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"games"`) {
		t.Fatalf("rules by name: %d %s", w.Code, w.Body.String())
	}
	if w := ts.do(http.MethodGet, "/v1/rules/fast?format=yaml", ""); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "games:") {
		t.Fatalf("rules yaml: %d %s", w.Code, w.Body.String())
	}

	w = ts.do(http.MethodGet, "/v1/sim?category=low&bet=10&rounds=500&seed=3", "")
	if w.Code != http.StatusOK {
		t.Fatalf("sim: %d %s", w.Code, w.Body.String())
	}
	var res dto.SimResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode sim: %v", err)
	}
	if res.Seed != 3 || res.Stats == nil || res.Stats.Summary.Rounds != 500*2 {
		t.Fatalf("unexpected sim result: %+v", res)
	}

	w = ts.do(http.MethodGet, "/v1/sim?category=high&bet=10&rounds=100&seed=3&format=table", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("table sim: %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	if w := ts.do(http.MethodGet, "/v1/sim?category=low&bet=0&rounds=10", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad sim: status %d", w.Code)
	}
}

func TestIndexAndDevPanel(t *testing.T) {
	ts := newTestServer(t)
	if w := ts.do(http.MethodGet, "/", ""); w.Code != http.StatusFound {
		t.Fatalf("index: status %d", w.Code)
	}
	w := ts.do(http.MethodGet, "/dev", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "富貴險中求") {
		t.Fatalf("dev page: status %d", w.Code)
	}
	if w := ts.do(http.MethodGet, "/healthz", ""); w.Body.String() != "ok" {
		t.Fatalf("healthz: %q", w.Body.String())
	}
}
