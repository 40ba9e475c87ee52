package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/hongbao/spec"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// StatReport 模擬統計報告
type StatReport struct {
	Summary *SummaryReport `json:"Summary"`
	Mult    *MultReport    `json:"Mult"`
	Dist    *DistReport    `json:"Dist"`
	Player  *PlayerReport  `json:"Player,omitzero"`
	isDone  bool
}

type SummaryReport struct {
	Name        string    `json:"Name"`
	Kind        spec.Kind `json:"Kind"`
	Category    string    `json:"Category"`
	Bet         int       `json:"Bet"`
	TotalBet    int       `json:"TotalBet"`
	TotalReturn int       `json:"TotalReturn"` // 派彩總額（含本金）
	TotalDelta  int       `json:"TotalDelta"`  // 淨輸贏
	RTP         float64   `json:"RTP"`
	RtpCI       CI        `json:"RtpCI"`
	Std         float64   `json:"Std"`
	Cv          float64   `json:"Cv"`
	Wins        int       `json:"Wins"`
	HitRate     float64   `json:"HitRate"`
	Triples     int       `json:"Triples"` // 開出豹子的局數
	TripleRate  float64   `json:"TripleRate"`
	Rounds      int       `json:"Rounds"`
}

// MultReport 回收倍數統計
//
// 每局的回收倍數 = 派彩總額 / 該局下注。all-in 時下注會變小，所以不能只記總額。
type MultReport struct {
	ReturnMult      float64 `json:"ReturnMult"`
	ReturnMultSqSum float64 `json:"ReturnMultSqSum"` // 平方和
}

// DistReport 回收倍數區間落點統計
type DistReport struct {
	WinBucket     []string  `json:"WinBucket"`
	ReturnCollect []int     `json:"ReturnCollect"`
	ReturnDist    []float64 `json:"ReturnDist"`
}

// PlayerReport 玩家統計
//
// 只有 SimPlayers 會填
type PlayerReport struct {
	InitBalance int  `json:"InitBalance"`
	Balance     int  `json:"Balance"`
	MaxBalance  int  `json:"MaxBalance"`
	MinBalance  int  `json:"MinBalance"`
	Bust        bool `json:"Bust"`
	Cashout     bool `json:"Cashout"`
	Alive       bool `json:"Alive"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 把累積計數轉成最終統計結果，可重複呼叫。
func (s *StatReport) Done() {
	if s.isDone {
		return
	}
	s.Summary.RTP = s.Rtp()
	s.Summary.RtpCI = s.Ci()
	s.Summary.Std = s.Std()
	s.Summary.Cv = s.Cv()
	if s.Summary.Rounds > 0 {
		rf := float64(s.Summary.Rounds)
		s.Summary.HitRate = float64(s.Summary.Wins) / rf
		s.Summary.TripleRate = float64(s.Summary.Triples) / rf
		s.Dist.ReturnDist = make([]float64, len(s.Dist.ReturnCollect))
		for i, c := range s.Dist.ReturnCollect {
			s.Dist.ReturnDist[i] = float64(c) / rf
		}
	}
	if s.Player != nil {
		s.Player.Alive = !(s.Player.Bust || s.Player.Cashout)
	}
	s.isDone = true
}

// Rtp 回傳整體 RTP（派彩總額 / 總押注）
func (s *StatReport) Rtp() float64 {
	if s.Summary.Rounds == 0 || s.Summary.TotalBet == 0 {
		return 0
	}
	return float64(s.Summary.TotalReturn) / float64(s.Summary.TotalBet)
}

// Std 回傳單局回收倍數的樣本標準差
func (s *StatReport) Std() float64 {
	if s.Summary.Rounds < 2 {
		return 0
	}
	rounds := float64(s.Summary.Rounds)
	sum := s.Mult.ReturnMult
	variance := (s.Mult.ReturnMultSqSum - sum*sum/rounds) / (rounds - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// Cv 回傳變異係數
func (s *StatReport) Cv() float64 {
	rtp := s.Rtp()
	if rtp <= 0 {
		return 0
	}
	return s.Std() / rtp
}

// Ci 回傳(95% Rtp)信賴區間
func (s *StatReport) Ci() CI {
	rtp := s.Rtp()
	se := float64(0)
	if s.Summary.Rounds > 1 {
		se = s.Std() / math.Sqrt(float64(s.Summary.Rounds))
	}
	return CI{
		Lo: max(rtp-1.96*se, 0.0),
		Hi: rtp + 1.96*se,
	}
}

func (s *StatReport) WriteWith(w io.Writer, rep StatReportRender) error {
	s.Done()
	return rep.Write(w, s)
}

// StdOut 把用時與摘要表印到 w。
func (s *StatReport) StdOut(w io.Writer, ut time.Duration) {
	s.Done()
	fmt.Fprint(w, formatDuration(ut, s.Summary.Rounds))
	keys, msg := s.fmtBasic()
	fmt.Fprintln(w, fmtTable(s.Summary.Name, keys, msg))
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(d time.Duration, rounds int) string {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	rps := int(float64(rounds) / sec)
	if sec < 60.0 {
		return p.Sprintf("used: %.2f seconds\nrps : %d rounds/sec\n", sec, rps)
	}
	ss := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		return p.Sprintf("used: %dm %ds\nrps : %d rounds/sec\n", m, ss, rps)
	}
	return p.Sprintf("used: %dh:%dm:%ds\nrps : %d rounds/sec\n", h, m, ss, rps)
}

func (s *StatReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	sm := s.Summary
	basic := map[string]string{
		"Game":         p.Sprintf("%s", sm.Kind),
		"Category":     p.Sprintf("%s", sm.Category),
		"Bet":          p.Sprintf("%d", sm.Bet),
		"Total Rounds": p.Sprintf("%d", sm.Rounds),
		"Total RTP":    p.Sprintf("%.2f %%", 100.0*sm.RTP),
		"RTP 95% CI":   p.Sprintf("[%.2f%%,%.2f%%]", 100.0*sm.RtpCI.Lo, 100.0*sm.RtpCI.Hi),
		"Total Bet":    p.Sprintf("%d", sm.TotalBet),
		"Total Return": p.Sprintf("%d", sm.TotalReturn),
		"Hit Rate":     p.Sprintf("%.2f %%", 100.0*sm.HitRate),
		"Triples":      p.Sprintf("%d (%.3f %%)", sm.Triples, 100.0*sm.TripleRate),
		"STD":          p.Sprintf("%.3f", sm.Std),
		"CV":           p.Sprintf("%.3f", sm.Cv),
	}
	keys := []string{"Game", "Category", "Bet", "Total Rounds", "Total RTP", "RTP 95% CI", "Total Bet", "Total Return", "Hit Rate", "Triples", "STD", "CV"}
	return keys, basic
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)
	left := max((totalInner-titleW)/2, 0)
	right := totalInner - titleW - left

	var sb strings.Builder
	sb.WriteString(top)
	sb.WriteString(p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right)))
	sb.WriteString(divider)
	for _, k := range keys {
		sb.WriteString(p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k]))))
	}
	sb.WriteString(divider)
	return sb.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
