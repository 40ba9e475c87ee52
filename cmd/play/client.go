package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/zintix-labs/hongbao"
	"github.com/zintix-labs/hongbao/event"
	"github.com/zintix-labs/hongbao/game"
	"github.com/zintix-labs/hongbao/nav"
	"github.com/zintix-labs/hongbao/payout"
	"github.com/zintix-labs/hongbao/spec"
)

const (
	opTimeout = 5 * time.Second
	pollEvery = 120 * time.Millisecond
)

// action 選單上的一個選項；do 為 nil 代表離開。
type action struct {
	label string
	do    func(n *nav.Navigator) bool
}

type client struct {
	t      *hongbao.Table
	events chan event.Event
}

func newClient(t *hongbao.Table) *client {
	return &client{t: t, events: make(chan event.Event, 256)}
}

func (c *client) run(ctx context.Context) error {
	// handler 在 loop 上執行：滿了就丟，不可阻塞
	cancel := c.t.Subscribe(func(e event.Event) {
		select {
		case c.events <- e:
		default:
		}
	})
	defer cancel()

	pterm.DefaultHeader.WithFullWidth().Println("紅包 Hongbao")
	for {
		snap, err := c.wait(ctx)
		if err != nil {
			return err
		}
		c.flush(nil)
		c.render(snap)

		acts := actions(snap)
		labels := make([]string, len(acts))
		for i, a := range acts {
			labels[i] = a.label
		}
		choice, err := pterm.DefaultInteractiveSelect.WithOptions(labels).Show("動作")
		if err != nil {
			return err
		}
		var picked action
		for _, a := range acts {
			if a.label == choice {
				picked = a
			}
		}
		if picked.do == nil {
			return nil
		}
		fn, ok := prepare(picked, snap)
		if !ok {
			continue
		}
		if err := c.do(ctx, picked.label, fn); err != nil {
			return err
		}
	}
}

func (c *client) do(ctx context.Context, label string, fn func(n *nav.Navigator) bool) error {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	ok, err := c.t.Do(opCtx, fn)
	if err != nil {
		return err
	}
	if !ok {
		pterm.Warning.Printfln("%s：目前狀態不接受這個操作", label)
	}
	return nil
}

// wait 遇到搖骰、出題、等待 oracle 等過渡階段時轉圈等待，直到可以再操作。
func (c *client) wait(ctx context.Context) (nav.Snapshot, error) {
	snap, err := c.t.Snapshot(ctx)
	if err != nil || !busy(snap) {
		return snap, err
	}
	spin, _ := pterm.DefaultSpinner.Start(waitText(snap))
	defer func() {
		if spin != nil {
			_ = spin.Stop()
		}
	}()
	tick := time.NewTicker(pollEvery)
	defer tick.Stop()
	for busy(snap) {
		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-tick.C:
		}
		c.flush(spin)
		if snap, err = c.t.Snapshot(ctx); err != nil {
			return snap, err
		}
	}
	return snap, nil
}

func busy(s nav.Snapshot) bool {
	if s.Game == nil {
		return false
	}
	switch s.Game.Phase {
	case game.Rolling, game.Loading, game.AwaitingOracle:
		return true
	}
	return false
}

func waitText(s nav.Snapshot) string {
	switch s.Game.Phase {
	case game.Rolling:
		return "搖骰中..."
	case game.Loading:
		return "出題中..."
	}
	return "等待解讀..."
}

// flush 印出累積的事件；spin 不為 nil 時骰面動畫改寫在轉圈文字上。
func (c *client) flush(spin *pterm.SpinnerPrinter) {
	for {
		select {
		case e := <-c.events:
			printEvent(e, spin)
		default:
			return
		}
	}
}

func printEvent(e event.Event, spin *pterm.SpinnerPrinter) {
	switch v := e.(type) {
	case event.DiceShuffled:
		if spin != nil {
			spin.UpdateText(fmt.Sprintf("搖骰中... %v", v.Faces))
		}
	case event.EnvelopeOpened:
		pterm.Success.Printfln("紅包打開了：%d 元", v.Amount)
	case event.BalanceChanged:
		pterm.Info.Printfln("餘額 %d → %d", v.Old, v.New)
	case event.RoundResolved:
		printRound(v)
	case event.QuestionAsked:
		pterm.DefaultBox.WithTitle("題目").Println(v.Question)
	case event.GameOver:
		pterm.Error.Println("錢輸光了，遊戲結束")
	case event.SessionReset:
		pterm.Info.Println("重新開始")
	}
}

func printRound(r event.RoundResolved) {
	p := pterm.Warning
	if r.Win {
		p = pterm.Success
	}
	switch {
	case len(r.Dice) > 0:
		p.Printfln("骰面 %v 押 %s，輸贏 %+d", r.Dice, r.Category, r.Delta)
	case r.Title != "":
		p.Printfln("%s (%d 分)，輸贏 %+d", r.Title, r.Score, r.Delta)
		if r.Comment != "" {
			pterm.Println(r.Comment)
		}
	case r.Multiplier > 0:
		p.Printfln("倍率 %.2f，輸贏 %+d", r.Multiplier, r.Delta)
		if r.Explanation != "" {
			pterm.Println(r.Explanation)
		}
	default:
		p.Printfln("輸贏 %+d", r.Delta)
		if r.Comment != "" {
			pterm.Println(r.Comment)
		}
	}
	if r.CorrectAnswer != "" {
		pterm.Info.Printfln("正確答案：%s", r.CorrectAnswer)
	}
}

func (c *client) render(s nav.Snapshot) {
	rows := pterm.TableData{
		{"畫面", string(s.View)},
		{"餘額", strconv.Itoa(s.Balance)},
	}
	if s.GraceArmed {
		rows = append(rows, []string{"破產倒數", "進行中"})
	}
	if g := s.Game; g != nil {
		rows = append(rows,
			[]string{"遊戲", string(g.Kind)},
			[]string{"階段", string(g.Phase)},
			[]string{"下注", strconv.Itoa(g.Bet)},
		)
		if g.Category != "" {
			rows = append(rows, []string{"押", string(g.Category)})
		}
		if g.Faces != nil {
			rows = append(rows, []string{"骰面", fmt.Sprint(*g.Faces)})
		}
	}
	_ = pterm.DefaultTable.WithData(rows).Render()
	if g := s.Game; g != nil && g.Phase == game.Answering && g.Question != "" {
		pterm.DefaultBox.WithTitle("題目").Println(g.Question)
	}
}

// actions 依目前畫面與階段列出可用的操作。
func actions(s nav.Snapshot) []action {
	quit := action{label: "離開"}
	switch s.View {
	case nav.Uninitialized:
		return []action{{label: "開紅包", do: (*nav.Navigator).OpenEnvelope}, quit}
	case nav.GameOver:
		return []action{{label: "重新開始", do: (*nav.Navigator).Restart}, quit}
	case nav.Lobby:
		acts := make([]action, 0, len(s.Games)+2)
		for _, k := range s.Games {
			acts = append(acts, action{label: "進入 " + string(k), do: enter(k)})
		}
		return append(acts, action{label: "重新開始", do: (*nav.Navigator).Restart}, quit)
	}

	back := action{label: "回大廳", do: (*nav.Navigator).Back}
	g := s.Game
	if g == nil {
		return []action{back, quit}
	}
	bet := action{label: "改下注", do: noop}
	var acts []action
	switch g.Kind {
	case spec.KindDice:
		acts = []action{
			{label: "押大小", do: noop},
			bet,
			{label: "開搖", do: session(game.Session.PlaceBet)},
		}
	case spec.KindDream:
		if g.Phase == game.Betting {
			acts = []action{bet, {label: "說夢", do: noop}}
		}
	default:
		switch g.Phase {
		case game.Betting:
			acts = []action{bet, {label: "開始", do: session(game.Session.PlaceBet)}}
		case game.Answering:
			acts = []action{{label: "作答", do: noop}}
		}
	}
	if g.Phase == game.Resolved && g.Kind != spec.KindDice {
		acts = append(acts, action{label: "再玩一次", do: session(game.Session.PlayAgain)})
	}
	return append(acts, back, quit)
}

// prepare 需要輸入的操作在這裡讀取輸入並換成真正的操作；使用者取消時 ok 為 false。
func prepare(a action, s nav.Snapshot) (fn func(n *nav.Navigator) bool, ok bool) {
	switch a.label {
	case "改下注":
		in, err := pterm.DefaultInteractiveTextInput.WithDefaultValue(strconv.Itoa(s.Game.Bet)).Show("下注金額")
		if err != nil {
			return nil, false
		}
		amount, err := strconv.Atoi(strings.TrimSpace(in))
		if err != nil {
			pterm.Warning.Printfln("不是數字：%q", in)
			return nil, false
		}
		return session(func(ss game.Session) bool { return ss.Draft(amount) }), true
	case "押大小":
		opts := []string{string(payout.Low), string(payout.High), string(payout.Triple)}
		in, err := pterm.DefaultInteractiveSelect.WithOptions(opts).Show("押")
		if err != nil {
			return nil, false
		}
		cat, _ := payout.ParseCategory(in)
		return session(func(ss game.Session) bool { return ss.Choose(cat) }), true
	case "說夢", "作答":
		in, err := pterm.DefaultInteractiveTextInput.Show(a.label)
		if err != nil || strings.TrimSpace(in) == "" {
			return nil, false
		}
		return session(func(ss game.Session) bool { return ss.Submit(in) }), true
	}
	return a.do, true
}

func enter(k spec.Kind) func(n *nav.Navigator) bool {
	return func(n *nav.Navigator) bool { return n.Enter(k) }
}

func session(fn func(s game.Session) bool) func(n *nav.Navigator) bool {
	return func(n *nav.Navigator) bool {
		s := n.Session()
		return s != nil && fn(s)
	}
}

func noop(*nav.Navigator) bool { return false }
