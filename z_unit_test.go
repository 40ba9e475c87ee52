package hongbao

import (
	"context"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/zintix-labs/hongbao/configs"
	"github.com/zintix-labs/hongbao/event"
	"github.com/zintix-labs/hongbao/game"
	"github.com/zintix-labs/hongbao/nav"
	"github.com/zintix-labs/hongbao/payout"
	"github.com/zintix-labs/hongbao/spec"
)

// fastConfigs 把內嵌規則的動畫與破產倒數縮短，讓真實 loop 的測試跑得快。
func fastConfigs(t *testing.T) fs.FS {
	t.Helper()
	raw, err := fs.ReadFile(configs.FS, spec.DefaultConfigName)
	if err != nil {
		t.Fatalf("read embedded config: %v", err)
	}
	s := string(raw)
	s = strings.Replace(s, "shuffle_interval_ms: 100", "shuffle_interval_ms: 1", 1)
	s = strings.Replace(s, "grace_delay_ms: 1500", "grace_delay_ms: 20", 1)
	return fstest.MapFS{"fast.yaml": {Data: []byte(s)}}
}

func newFast(t *testing.T) *Hongbao {
	t.Helper()
	h, err := New(Configs(fastConfigs(t)), WithSeed(7))
	if err != nil {
		t.Fatalf("new hongbao: %v", err)
	}
	return h
}

func waitFor(t *testing.T, tb *Table, cond func(s nav.Snapshot) bool) nav.Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s, err := tb.Snapshot(context.Background())
		if err != nil {
			t.Fatalf("snapshot: %v", err)
		}
		if cond(s) {
			return s
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not reached in time")
	return nav.Snapshot{}
}

func TestNewDefaultRules(t *testing.T) {
	h, err := NewDefault(WithSeed(1))
	if err != nil {
		t.Fatalf("new default: %v", err)
	}
	if h.DefaultRules() != DefaultRules {
		t.Fatalf("default rules got %q", h.DefaultRules())
	}
	rules := h.Rules()
	if len(rules) != 2 || rules[0].Name != "hongbao" || rules[1].Name != "relative" {
		t.Fatalf("unexpected rules: %+v", rules)
	}
	set, err := h.Settings("relative")
	if err != nil || !set.Enabled(spec.KindRelative) {
		t.Fatalf("relative rules must enable the relative game: %v", err)
	}
	if _, err := h.Settings("nope"); err == nil {
		t.Fatalf("unknown rules must fail")
	}
}

func TestNewRejectsUnregisteredGame(t *testing.T) {
	reg := game.NewRegistry()
	if err := reg.Register(spec.KindDice, game.NewDice); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := NewDefault(WithRegistry(reg)); err == nil {
		t.Fatalf("auntie/dream enabled without builders must fail")
	}
}

func TestTableDicePlayThrough(t *testing.T) {
	h := newFast(t)
	tb, err := h.NewTable("")
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	defer tb.Close()
	ctx := context.Background()

	do := func(fn func(n *nav.Navigator) bool) bool {
		ok, err := tb.Do(ctx, fn)
		if err != nil {
			t.Fatalf("do: %v", err)
		}
		return ok
	}
	if !do(func(n *nav.Navigator) bool { return n.OpenEnvelope() }) {
		t.Fatalf("open envelope rejected")
	}
	if do(func(n *nav.Navigator) bool { return n.OpenEnvelope() }) {
		t.Fatalf("second envelope must be rejected")
	}
	if !do(func(n *nav.Navigator) bool { return n.Enter(spec.KindDice) }) {
		t.Fatalf("enter dice rejected")
	}
	s0, _ := tb.Snapshot(ctx)
	ok := do(func(n *nav.Navigator) bool {
		g := n.Session()
		return g.Draft(1) && g.Choose(payout.High) && g.PlaceBet()
	})
	if !ok {
		t.Fatalf("place bet rejected")
	}
	s := waitFor(t, tb, func(s nav.Snapshot) bool { return s.Game != nil && s.Game.Last != nil })
	last := s.Game.Last
	if last.Bet != 1 || s.Balance != s0.Balance+last.Delta {
		t.Fatalf("balance %d != %d + %d", s.Balance, s0.Balance, last.Delta)
	}

	var types []event.Type
	for _, e := range tb.Events() {
		types = append(types, e.Type)
	}
	joined := make([]string, len(types))
	for i, ty := range types {
		joined[i] = string(ty)
	}
	all := strings.Join(joined, ",")
	for _, want := range []event.Type{event.TypeEnvelopeOpened, event.TypeDiceShuffled, event.TypeRoundResolved, event.TypeBalanceChanged} {
		if !strings.Contains(all, string(want)) {
			t.Fatalf("missing event %s in %s", want, all)
		}
	}
	if strings.Index(all, string(event.TypeDiceShuffled)) > strings.Index(all, string(event.TypeRoundResolved)) {
		t.Fatalf("shuffle frames must come before the resolution: %s", all)
	}
	if len(tb.Events()) != 0 {
		t.Fatalf("events must be drained")
	}
}

func TestTableSameSeedSameEnvelope(t *testing.T) {
	h := newFast(t)
	ctx := context.Background()
	balance := func() int {
		tb, err := h.NewTableWithSeed("", 99)
		if err != nil {
			t.Fatalf("new table: %v", err)
		}
		defer tb.Close()
		if _, err := tb.Do(ctx, func(n *nav.Navigator) bool { return n.OpenEnvelope() }); err != nil {
			t.Fatalf("open: %v", err)
		}
		s, _ := tb.Snapshot(ctx)
		return s.Balance
	}
	if a, b := balance(), balance(); a != b {
		t.Fatalf("same seed must draw the same envelope: %d vs %d", a, b)
	}
}

func TestTableClosed(t *testing.T) {
	h := newFast(t)
	tb, err := h.NewTable("")
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	tb.Close()
	tb.Close()
	if !tb.Closed() || tb.ClosedReason() != "closed" {
		t.Fatalf("table should be closed")
	}
	if _, err := tb.Do(context.Background(), func(n *nav.Navigator) bool { return true }); err == nil {
		t.Fatalf("do on closed table must fail")
	}
}

func TestRuntimeLifecycle(t *testing.T) {
	h := newFast(t)
	rt := h.BuildRuntime(2, time.Hour)
	ctx := context.Background()

	id1, _, err := rt.Open(ctx, "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, _, err := rt.Open(ctx, ""); err != nil {
		t.Fatalf("open second: %v", err)
	}
	if _, _, err := rt.Open(ctx, ""); err == nil {
		t.Fatalf("third table must exceed the limit")
	}
	if _, err := rt.Get(id1); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := rt.Get("not-a-uuid"); err == nil {
		t.Fatalf("invalid id must fail")
	}
	if !rt.Remove(id1) || rt.Remove(id1) {
		t.Fatalf("remove should succeed exactly once")
	}
	if n := rt.Sweep(time.Now().Add(2 * time.Hour)); n != 1 || rt.Len() != 0 {
		t.Fatalf("sweep got %d, len %d", n, rt.Len())
	}
	rt.Close()
	if _, _, err := rt.Open(ctx, ""); err == nil {
		t.Fatalf("open after close must fail")
	}
}

func TestSimulatorDiceRTP(t *testing.T) {
	h, err := NewDefault(WithSeed(2025))
	if err != nil {
		t.Fatalf("new default: %v", err)
	}
	sim, err := h.NewSimulator("")
	if err != nil {
		t.Fatalf("new simulator: %v", err)
	}
	rep, _, err := sim.SimMP(Strategy{Category: payout.Low, Bet: 50}, 5000, 4, false)
	if err != nil {
		t.Fatalf("sim: %v", err)
	}
	if rep.Summary.Rounds != 20000 {
		t.Fatalf("rounds got %d", rep.Summary.Rounds)
	}
	// 小：105/216 機率拿回兩倍
	if rtp := rep.Summary.RTP; rtp < 0.9 || rtp > 1.05 {
		t.Fatalf("low RTP out of range: %.4f", rtp)
	}
	if rep.Summary.Triples == 0 {
		t.Fatalf("20000 rounds without a triple is implausible")
	}

	if _, _, err := sim.Sim(Strategy{Category: "middle", Bet: 50}, 10, false); err == nil {
		t.Fatalf("invalid category must fail")
	}
}

func TestSimulatorPlayers(t *testing.T) {
	h, err := NewDefault(WithSeed(3))
	if err != nil {
		t.Fatalf("new default: %v", err)
	}
	sim, err := h.NewSimulator("")
	if err != nil {
		t.Fatalf("new simulator: %v", err)
	}
	_, est, _, err := sim.SimPlayers(2, 40, Strategy{Category: payout.Triple, Bet: 500}, 50, false)
	if err != nil {
		t.Fatalf("sim players: %v", err)
	}
	ss := est.SessionStat
	total := ss.Bust.Hat + ss.Cashout.Hat + ss.Alive.Hat
	if total < 0.999 || total > 1.001 {
		t.Fatalf("session outcomes must partition players: %.3f", total)
	}
}

func TestSeedMakerDistinct(t *testing.T) {
	sm := newSeedMaker(42)
	seen := map[int64]struct{}{}
	for range 1000 {
		v := sm.next()
		if v < 0 {
			t.Fatalf("seed must be non-negative")
		}
		if _, dup := seen[v]; dup {
			t.Fatalf("duplicate seed %d", v)
		}
		seen[v] = struct{}{}
	}
}
