package nav

import (
	"github.com/zintix-labs/hongbao/game"
	"github.com/zintix-labs/hongbao/spec"
)

// Snapshot 牌局的唯讀快照。
type Snapshot struct {
	View       View        `json:"view"`
	Kind       spec.Kind   `json:"kind,omitempty"`
	Balance    int         `json:"balance"`
	Started    bool        `json:"started"`
	GraceArmed bool        `json:"grace_armed"`
	Games      []spec.Kind `json:"games"`
	Game       *game.View  `json:"game,omitempty"`
}

func (n *Navigator) Snapshot() Snapshot {
	s := Snapshot{
		View:       n.view,
		Kind:       n.kind,
		Balance:    n.led.Balance(),
		Started:    n.led.Started(),
		GraceArmed: n.GraceArmed(),
		Games:      n.Games(),
	}
	if n.session != nil {
		v := n.session.View()
		s.Game = &v
	}
	return s
}
