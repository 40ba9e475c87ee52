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

package spec

import (
	"fmt"
	"time"

	"github.com/zintix-labs/hongbao/errs"
)

// Settings 是整個牌局的規則設定，來源通常是內嵌的 configs/hongbao.yaml。
type Settings struct {
	Name         string          `yaml:"name"           json:"name"`
	Grant        GrantSetting    `yaml:"grant"          json:"grant"`
	GraceDelayMS int             `yaml:"grace_delay_ms" json:"grace_delay_ms"`
	Games        []Kind          `yaml:"games"          json:"games"`
	Auntie       AuntieSetting   `yaml:"auntie"         json:"auntie"`
	Dice         DiceSetting     `yaml:"dice"           json:"dice"`
	Dream        DreamSetting    `yaml:"dream"          json:"dream"`
	Relative     RelativeSetting `yaml:"relative"       json:"relative"`
	Oracle       OracleSetting   `yaml:"oracle"         json:"oracle"`
}

// GrantSetting 紅包金額的閉區間。
type GrantSetting struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

type AuntieSetting struct {
	DefaultBet int      `yaml:"default_bet" json:"default_bet"`
	Payout     int      `yaml:"payout"      json:"payout"`
	PassScore  int      `yaml:"pass_score"  json:"pass_score"`
	Questions  []string `yaml:"questions"   json:"questions"`
}

type DiceSetting struct {
	DefaultBet        int    `yaml:"default_bet"         json:"default_bet"`
	EvenPayout        int    `yaml:"even_payout"         json:"even_payout"`
	TriplePayout      int    `yaml:"triple_payout"       json:"triple_payout"`
	Low               [2]int `yaml:"low"                 json:"low"`
	High              [2]int `yaml:"high"                json:"high"`
	ShuffleFrames     int    `yaml:"shuffle_frames"      json:"shuffle_frames"`
	ShuffleIntervalMS int    `yaml:"shuffle_interval_ms" json:"shuffle_interval_ms"`
}

type DreamSetting struct {
	DefaultBet int     `yaml:"default_bet" json:"default_bet"`
	MultMin    float64 `yaml:"mult_min"    json:"mult_min"`
	MultMax    float64 `yaml:"mult_max"    json:"mult_max"`
}

type RelativeSetting struct {
	DefaultBet int `yaml:"default_bet" json:"default_bet"`
	Payout     int `yaml:"payout"      json:"payout"`
}

type OracleSetting struct {
	TimeoutMS int `yaml:"timeout_ms" json:"timeout_ms"`
}

func (s *Settings) GraceDelay() time.Duration {
	return time.Duration(s.GraceDelayMS) * time.Millisecond
}

func (d *DiceSetting) ShuffleInterval() time.Duration {
	return time.Duration(d.ShuffleIntervalMS) * time.Millisecond
}

func (o *OracleSetting) Timeout() time.Duration {
	return time.Duration(o.TimeoutMS) * time.Millisecond
}

// Enabled 回傳該種類是否在本局開放。
func (s *Settings) Enabled(k Kind) bool {
	for _, g := range s.Games {
		if g == k {
			return true
		}
	}
	return false
}

func (s *Settings) valid() error {
	if s.Grant.Min < 1 || s.Grant.Max < s.Grant.Min {
		return errs.Fatalf("invalid grant range: [%d,%d]", s.Grant.Min, s.Grant.Max)
	}
	if s.GraceDelayMS < 0 {
		return errs.NewFatal("grace_delay_ms must be >= 0")
	}
	if len(s.Games) == 0 {
		return errs.NewFatal("empty games")
	}
	seen := map[Kind]struct{}{}
	for _, g := range s.Games {
		if _, ok := ParseKind(string(g)); !ok {
			return errs.Fatalf("unknown game kind: %q", g)
		}
		if _, dup := seen[g]; dup {
			return errs.Fatalf("duplicate game kind: %q", g)
		}
		seen[g] = struct{}{}
	}

	bets := map[string]int{
		"auntie":   s.Auntie.DefaultBet,
		"dice":     s.Dice.DefaultBet,
		"dream":    s.Dream.DefaultBet,
		"relative": s.Relative.DefaultBet,
	}
	for name, b := range bets {
		if b < 1 {
			return errs.Fatalf("%s.default_bet must be >= 1", name)
		}
	}

	if s.Auntie.Payout < 1 {
		return errs.NewFatal("auntie.payout must be >= 1")
	}
	if s.Auntie.PassScore < 0 || s.Auntie.PassScore > 100 {
		return errs.NewFatal("auntie.pass_score must be within [0,100]")
	}
	if s.Enabled(KindAuntie) && len(s.Auntie.Questions) == 0 {
		return errs.NewFatal("auntie.questions required when auntie is enabled")
	}

	d := s.Dice
	if d.EvenPayout < 1 || d.TriplePayout < 1 {
		return errs.NewFatal("dice payouts must be >= 1")
	}
	if d.Low[0] < 3 || d.Low[1] < d.Low[0] || d.High[0] <= d.Low[1] || d.High[1] < d.High[0] || d.High[1] > 18 {
		return errs.NewFatal(fmt.Sprintf("invalid dice ranges: low=%v high=%v", d.Low, d.High))
	}
	if d.ShuffleFrames < 0 || d.ShuffleIntervalMS < 0 {
		return errs.NewFatal("dice shuffle settings must be >= 0")
	}

	if s.Dream.MultMin <= 1 || s.Dream.MultMax < s.Dream.MultMin {
		return errs.Fatalf("invalid dream multiplier range: [%v,%v]", s.Dream.MultMin, s.Dream.MultMax)
	}
	if s.Relative.Payout < 1 {
		return errs.NewFatal("relative.payout must be >= 1")
	}
	if s.Oracle.TimeoutMS < 1 {
		return errs.NewFatal("oracle.timeout_ms must be >= 1")
	}
	return nil
}
