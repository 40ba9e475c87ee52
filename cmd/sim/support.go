package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"io/fs"
	"math"
	"math/big"
	"os"
	"strings"

	"github.com/zintix-labs/hongbao"
	"github.com/zintix-labs/hongbao/configs"
	"github.com/zintix-labs/hongbao/errs"
	"github.com/zintix-labs/hongbao/payout"
	"github.com/zintix-labs/hongbao/sdk/perf"
	"github.com/zintix-labs/hongbao/server/logger"
	"github.com/zintix-labs/hongbao/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	rules    string
	dir      string
	category payout.Category
	bet      int
	worker   int
	player   int
	rounds   int
	seed     int64
	format   string
	pprof    perf.Mode
}

type categoryFlag struct{ p *payout.Category }

func (f categoryFlag) String() string {
	if f.p == nil {
		return ""
	}
	return string(*f.p)
}

func (f categoryFlag) Set(s string) error {
	c, ok := payout.ParseCategory(strings.ToLower(s))
	if !ok {
		return fmt.Errorf("unknown category %q (low|high|triple)", s)
	}
	*f.p = c
	return nil
}

type pprofFlag struct{ p *perf.Mode }

func (f pprofFlag) String() string {
	if f.p == nil {
		return ""
	}
	return string(*f.p)
}

func (f pprofFlag) Set(s string) error {
	m, err := perf.ParseMode(s)
	if err != nil {
		return err
	}
	*f.p = m
	return nil
}

func bindVar() error {
	cfg.category = payout.Low
	// 綁定 Flag 到本地變數的指標 (&)
	flag.StringVar(&cfg.rules, "rules", "", "rules name (default: hongbao)")
	flag.StringVar(&cfg.dir, "config", "", "extra rules directory (*.yaml / *.json)")
	flag.Var(categoryFlag{&cfg.category}, "cat", "bet category: low|high|triple")
	flag.IntVar(&cfg.bet, "bet", 50, "bet per round")
	flag.IntVar(&cfg.worker, "worker", 1, "number of workers")
	flag.IntVar(&cfg.player, "player", 1, "number of players (>1: player experience mode)")
	flag.IntVar(&cfg.rounds, "rounds", 1000000, "rounds per worker / per player")
	flag.Int64Var(&cfg.seed, "seed", -1, "int64 seed for random number generator")
	flag.StringVar(&cfg.format, "o", "", "report format: ''(stdout) | table | json | yaml")
	flag.Var(pprofFlag{&cfg.pprof}, "p", "pprof: '', cpu, heap, allocs")

	flag.Parse()

	// given seed illeagel -> default seed
	if cfg.seed < 1 {
		seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			return err
		}
		cfg.seed = seed.Int64()
	}
	return cfg.valid()
}

// 這裡解析並分支要執行的模擬器
func executeSimulator() error {
	cfgs := []fs.FS{configs.FS}
	if cfg.dir != "" {
		cfgs = append(cfgs, os.DirFS(cfg.dir))
	}
	hb, err := hongbao.New(hongbao.Configs(cfgs...), hongbao.WithLogger(logger.NewDefaultLogger(logger.ModeSilence)))
	if err != nil {
		return err
	}
	s, err := hb.NewSimulatorWithSeed(cfg.rules, cfg.seed)
	if err != nil {
		return err
	}
	var render stats.Render
	if cfg.format != "" {
		if render, err = stats.NewRender(cfg.format); err != nil {
			return err
		}
	}
	st := hongbao.Strategy{Category: cfg.category, Bet: cfg.bet}

	// 至此確保可執行
	green := "\033[1;32m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)
	name := s.Rules
	showpb := render == nil

	if cfg.player == 1 { // 純骰子模擬
		p.Fprintf(os.Stderr, "%s[WORKERS:%d] [RULES:%s] [CAT:%s BET:%d] [ROUNDS:%d] [SEED:%d]%s\n",
			green, cfg.worker, name, cfg.category, cfg.bet, cfg.worker*cfg.rounds, cfg.seed, reset)
		rep, used, err := s.SimMP(st, cfg.rounds, cfg.worker, showpb)
		if err != nil {
			return err
		}
		if render != nil {
			return render.Write(os.Stdout, rep)
		}
		rep.StdOut(os.Stdout, used)
		return nil
	}

	// 模擬多玩家體驗
	p.Fprintf(os.Stderr, "%s[WORKERS:%d] [RULES:%s] [PLAYERS:%d CAT:%s BET:%d ROUNDS:%d] [SEED:%d]%s\n",
		green, cfg.worker, name, cfg.player, cfg.category, cfg.bet, cfg.rounds, cfg.seed, reset)
	rep, est, used, err := s.SimPlayers(cfg.worker, cfg.player, st, cfg.rounds, showpb)
	if err != nil {
		return err
	}
	if render != nil {
		if err := render.Write(os.Stdout, rep); err != nil {
			return err
		}
		return render.WriteEstimator(os.Stdout, est)
	}
	rep.StdOut(os.Stdout, used)
	est.Out(os.Stdout)
	return nil
}

func (cfg *config) valid() error {
	p := message.NewPrinter(language.English)

	// 工作協程檢查(併發數)
	if cfg.worker < 1 {
		return errs.NewWarn("value err : workers must > 0")
	}
	if cfg.bet < 1 {
		return errs.NewWarn("value err : bet must > 0")
	}

	// 玩家檢查
	if cfg.player < 1 {
		return errs.NewWarn("value err : player must > 0")
	}
	// 玩家數量太多 resize
	if cfg.player > 100000 {
		p.Fprintf(os.Stderr, "too much players: %d resized to 100k players\n", cfg.player)
		cfg.player = 100000
	}

	// 局數檢查
	if cfg.rounds < 1 {
		return errs.NewWarn("value err : rounds must > 0")
	}

	// 模擬玩家的時候，每個玩家最高不超過15000局
	// 一局骰子約 5 秒，15000 局已超過 20 小時，再多就是長期 RTP，直接跑純骰子模擬即可
	if cfg.player > 1 && cfg.rounds > 15000 {
		p.Fprintf(os.Stderr, "too much rounds for each players : %d resized to 15k rounds for each player\n", cfg.rounds)
		cfg.rounds = 15000
	}
	return nil
}
