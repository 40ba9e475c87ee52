package game

import (
	"fmt"
	"sort"

	"github.com/zintix-labs/hongbao/errs"
	"github.com/zintix-labs/hongbao/spec"
)

type Builder func(d Deps) Session

// Registry 依遊戲種類保存 Session 的建構函數。
type Registry struct {
	builders map[spec.Kind]Builder
}

func NewRegistry() *Registry {
	return &Registry{builders: make(map[spec.Kind]Builder, 8)}
}

// Default 內建四款遊戲。
func Default() *Registry {
	r := NewRegistry()
	_ = r.Register(spec.KindAuntie, NewAuntie)
	_ = r.Register(spec.KindDice, NewDice)
	_ = r.Register(spec.KindDream, NewDream)
	_ = r.Register(spec.KindRelative, NewRelative)
	return r
}

func (r *Registry) Register(k spec.Kind, b Builder) error {
	if b == nil {
		return errs.NewFatal("nil game builder")
	}
	if _, ok := r.builders[k]; ok {
		return errs.NewFatal(fmt.Sprintf("duplicate game builder: %s", k))
	}
	r.builders[k] = b
	return nil
}

func (r *Registry) Build(k spec.Kind, d Deps) (Session, error) {
	b, ok := r.builders[k]
	if !ok {
		return nil, errs.NewFatal(fmt.Sprintf("game is not exist: %s", k))
	}
	return b(d), nil
}

func (r *Registry) IsExist(k spec.Kind) bool {
	_, ok := r.builders[k]
	return ok
}

func (r *Registry) Kinds() []spec.Kind {
	ks := make([]spec.Kind, 0, len(r.builders))
	for k := range r.builders {
		ks = append(ks, k)
	}
	sort.Slice(ks, func(i, j int) bool { return ks[i] < ks[j] })
	return ks
}

// MergeRegistry 合併多個 Registry；重複的種類一律視為錯誤。
func MergeRegistry(regs ...*Registry) (*Registry, error) {
	out := NewRegistry()
	origin := make(map[spec.Kind]int, 8)
	for i, r := range regs {
		if r == nil {
			continue
		}
		for k, b := range r.builders {
			if _, ok := out.builders[k]; ok {
				return nil, errs.NewFatal(fmt.Sprintf("duplicate game kind %s (registry #%d and #%d)", k, origin[k], i))
			}
			out.builders[k] = b
			origin[k] = i
		}
	}
	return out, nil
}
