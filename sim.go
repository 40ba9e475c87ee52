// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hongbao

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/hongbao/errs"
	"github.com/zintix-labs/hongbao/event"
	"github.com/zintix-labs/hongbao/game"
	"github.com/zintix-labs/hongbao/nav"
	"github.com/zintix-labs/hongbao/payout"
	"github.com/zintix-labs/hongbao/recorder"
	"github.com/zintix-labs/hongbao/sched"
	"github.com/zintix-labs/hongbao/spec"
	"github.com/zintix-labs/hongbao/stats"
)

const capPrepare int = 100

// Strategy 模擬玩家的固定打法：每局押同一個類別、同一個金額（餘額不足時 all-in）。
type Strategy struct {
	Category payout.Category
	Bet      int
}

func (st Strategy) valid() error {
	if _, ok := payout.ParseCategory(string(st.Category)); !ok {
		return errs.Warnf("invalid category: %q", st.Category)
	}
	if st.Bet < 1 {
		return errs.NewWarn("bet must >= 1")
	}
	return nil
}

// Simulator 以虛擬時鐘自動玩大量骰子局，走的是與真人完全相同的 Navigator 與派彩規則。
//
// 骰子是唯一不需要 oracle 的遊戲，因此只模擬骰子。
type Simulator struct {
	Rules     string
	hb        *Hongbao
	set       *spec.Settings
	initSeed  int64                     // 初始下的種子
	seedmaker *seedMaker                // 種子生成器
	pBuf      []*simPlayer              // 併發執行的虛擬玩家
	rBuf      []*recorder.RoundRecorder // 併發遊戲紀錄員
	sBuf      []*stats.StatReport       // 併發統計結果報表(僅Players需要)
}

func (h *Hongbao) NewSimulator(rules string) (*Simulator, error) {
	return h.NewSimulatorWithSeed(rules, h.seeds.next())
}

func (h *Hongbao) NewSimulatorWithSeed(rules string, seed int64) (*Simulator, error) {
	set, err := h.Settings(rules)
	if err != nil {
		return nil, err
	}
	if !set.Enabled(spec.KindDice) {
		return nil, errs.NewWarn("dice is not enabled in rules " + rules)
	}
	if rules == "" {
		rules = h.rules
	}
	return &Simulator{
		Rules:     rules,
		hb:        h,
		set:       set,
		initSeed:  seed,
		seedmaker: newSeedMaker(seed),
		pBuf:      make([]*simPlayer, 0, capPrepare),
		rBuf:      make([]*recorder.RoundRecorder, 0, capPrepare),
		sBuf:      make([]*stats.StatReport, 0, capPrepare),
	}, nil
}

// Sim 單線模擬器：一位玩家連續玩 rounds 局，輸光就重開紅包，回傳統計結果與用時。
func (s *Simulator) Sim(st Strategy, rounds int, showpb bool) (*stats.StatReport, time.Duration, error) {
	return s.SimMP(st, rounds, 1, showpb)
}

// SimMP 平行執行 mp 位玩家，總計 rounds*mp 局，合併統計結果後回傳統計結果與用時。
func (s *Simulator) SimMP(st Strategy, rounds int, mp int, showpb bool) (*stats.StatReport, time.Duration, error) {
	defer s.reset()
	if mp <= 0 {
		return nil, 0, errs.NewWarn("workers must > 0")
	}
	if rounds < 1 {
		return nil, 0, errs.NewWarn("round must > 0")
	}
	if err := st.valid(); err != nil {
		return nil, 0, err
	}
	if err := s.preparePlayers(mp); err != nil {
		return nil, 0, err
	}
	for len(s.rBuf) < mp {
		r, err := s.newRecorder(st)
		if err != nil {
			return nil, 0, err
		}
		s.rBuf = append(s.rBuf, r)
	}

	var failed atomic.Value
	wg := new(sync.WaitGroup)
	wg.Add(mp)
	bar := pb.StartNew(rounds * mp)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < mp; i++ {
		go func(p *simPlayer, r *recorder.RoundRecorder) {
			defer wg.Done()
			for range rounds {
				if p.nav.Balance() == 0 {
					if _, ok := p.enter(); !ok {
						failed.Store(errs.NewFatal("sim player can not enter dice"))
						return
					}
				}
				rd, ok := p.play(st)
				if !ok {
					failed.Store(errs.NewFatal("sim round rejected"))
					return
				}
				r.Record(rd)
				bar.Increment()
			}
		}(s.pBuf[i], s.rBuf[i])
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()
	if v := failed.Load(); v != nil {
		return nil, used, v.(error)
	}

	merged, err := recorder.MergeRoundRecorder(s.rBuf)
	if err != nil {
		return nil, 0, err
	}
	return merged.Done(), used, nil
}

// SimPlayers 模擬多位玩家各自拿一個紅包進場，玩到輸光、贏到三倍紅包或 rounds 用完為止，
// 並產出整體報表與玩家體驗評估。
func (s *Simulator) SimPlayers(mp int, players int, st Strategy, rounds int, showpb bool) (*stats.StatReport, *stats.EstimatorPlayers, time.Duration, error) {
	defer s.reset()
	if players < 1 || rounds < 1 || mp < 1 {
		return nil, nil, 0, errs.NewWarn("invalid param")
	}
	if err := st.valid(); err != nil {
		return nil, nil, 0, err
	}
	if err := s.preparePlayers(mp); err != nil {
		return nil, nil, 0, err
	}
	for len(s.rBuf) < players {
		r, err := s.newRecorder(st)
		if err != nil {
			return nil, nil, 0, err
		}
		s.rBuf = append(s.rBuf, r)
	}
	// 作一個2048大小的緩衝channel 使player依序處理
	jobs := make(chan *recorder.RoundRecorder, 2048)

	wg := new(sync.WaitGroup)
	wg.Add(mp)
	bar := pb.StartNew(players)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for w := 0; w < mp; w++ {
		go simSessions(wg, s.pBuf[w], jobs, st, rounds, bar)
	}
	for _, j := range s.rBuf {
		jobs <- j
	}
	close(jobs)
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	merged, err := recorder.MergeRoundRecorder(s.rBuf)
	if err != nil {
		return nil, nil, 0, err
	}
	st0 := merged.Done()

	s.sBuf = make([]*stats.StatReport, len(s.rBuf))
	for i, r := range s.rBuf {
		s.sBuf[i] = r.Done()
	}
	est := stats.EstimatorPlayerExp(s.sBuf)
	return st0, est, used, nil
}

func simSessions(wg *sync.WaitGroup, p *simPlayer, jobs chan *recorder.RoundRecorder, st Strategy, rounds int, bar *pb.ProgressBar) {
	defer wg.Done()
	for j := range jobs {
		bal, ok := p.enter()
		if ok {
			j.Track(bal)
			for range rounds {
				rd, ok := p.play(st)
				if !ok || j.RecordWithPlayer(rd) {
					break
				}
			}
		}
		bar.Increment()
	}
}

func (s *Simulator) preparePlayers(n int) error {
	for len(s.pBuf) < n {
		p, err := s.newPlayer()
		if err != nil {
			return err
		}
		if _, ok := p.enter(); !ok {
			return errs.NewFatal("sim player can not enter dice")
		}
		s.pBuf = append(s.pBuf, p)
	}
	return nil
}

func (s *Simulator) newRecorder(st Strategy) (*recorder.RoundRecorder, error) {
	return recorder.NewRoundRecorder(s.set.Name, spec.KindDice, string(st.Category), st.Bet)
}

func (s *Simulator) reset() {
	s.rBuf = s.rBuf[:0]
	s.sBuf = s.sBuf[:0]
}

// simPlayer 以虛擬時鐘驅動一個 Navigator。不可跨 goroutine 共用。
type simPlayer struct {
	clock *sched.Manual
	nav   *nav.Navigator
	step  time.Duration // 一局搖骰動畫的總長度
}

func (s *Simulator) newPlayer() (*simPlayer, error) {
	clock := sched.NewManual()
	n, err := s.hb.newNavigator(s.set, clock, event.NewBus(), s.seedmaker.next())
	if err != nil {
		return nil, err
	}
	ds := s.set.Dice
	return &simPlayer{
		clock: clock,
		nav:   n,
		step:  time.Duration(max(ds.ShuffleFrames, 1)) * ds.ShuffleInterval(),
	}, nil
}

// enter 重開一個紅包並進入骰子遊戲，回傳紅包金額。
func (p *simPlayer) enter() (int, bool) {
	if p.nav.View() == nav.InGame {
		p.nav.Back()
	}
	if v := p.nav.View(); v == nav.Lobby || v == nav.GameOver {
		p.nav.Restart()
	}
	if !p.nav.OpenEnvelope() || !p.nav.Enter(spec.KindDice) {
		return 0, false
	}
	return p.nav.Balance(), true
}

// play 依策略下注並讓時鐘走完整段動畫，回傳該局結算。
func (p *simPlayer) play(st Strategy) (*game.Round, bool) {
	g := p.nav.Session()
	if g == nil {
		return nil, false
	}
	g.Draft(min(st.Bet, p.nav.Balance()))
	if !g.Choose(st.Category) || !g.PlaceBet() {
		return nil, false
	}
	p.clock.Advance(p.step)
	last := g.View().Last
	return last, last != nil
}

const mask63 = uint64(1<<63) - 1

type seedMaker struct {
	state atomic.Uint64 // always in [0, 2^63)
}

func newSeedMaker(seed int64) *seedMaker {
	s := &seedMaker{}
	s.state.Store(uint64(seed) & mask63)
	return s
}

// state 走全週期（不重複），再用可逆 mix63 打散
//
// 注意：此方法可能在併發環境下被多 goroutines 同時呼叫（例如 SimMP / SimPlayers）。
// 因此 state 的推進必須是原子的：
//   - 使用 CAS（Compare-And-Swap）迴圈確保每次呼叫都會取得唯一的下一個 state。
//   - 回傳值使用推進後的 state 經 mix63 打散後的結果。
func (s *seedMaker) next() int64 {
	for {
		old := s.state.Load()                                            // always masked
		next := (old*6364136223846793005 + 1442695040888963407) & mask63 // full-period LCG mod 2^63
		if s.state.CompareAndSwap(old, next) {
			return int64(mix63(next)) // 一定非負
		}
	}
}

// mix63：只用「可逆」的 bit 操作 + 乘奇數（mod 2^63）
func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63 // 乘奇數 ⇒ mod 2^63 可逆
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}
