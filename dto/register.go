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

package dto

import (
	"encoding/json"
	"reflect"

	"github.com/zintix-labs/hongbao/errs"
	"github.com/zintix-labs/hongbao/event"
)

var eventDecoders = map[event.Type]func(json.RawMessage) (event.Event, error){}

func init() {
	RegisterEvent[event.BalanceChanged]()
	RegisterEvent[event.RoundResolved]()
	RegisterEvent[event.GameOver]()
	RegisterEvent[event.SessionReset]()
	RegisterEvent[event.EnvelopeOpened]()
	RegisterEvent[event.ViewChanged]()
	RegisterEvent[event.PhaseChanged]()
	RegisterEvent[event.DiceShuffled]()
	RegisterEvent[event.QuestionAsked]()
	RegisterEvent[event.Cue]()
}

// RegisterEvent 註冊事件的反序列化函數，事件種類取自 T 的 Type()。
// T 必須是 struct 值型別 (傳指標會panic)
func RegisterEvent[T event.Event]() {
	var zero T
	rt := reflect.TypeOf(zero)
	if rt == nil || rt.Kind() != reflect.Struct {
		panic("RegisterEvent 必須傳入 struct 值型別")
	}

	eventDecoders[zero.Type()] = func(raw json.RawMessage) (event.Event, error) {
		var v T
		if len(raw) == 0 {
			return v, nil
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, errs.WrapLevel(err, errs.Warn, "decode event "+string(zero.Type()))
		}
		return v, nil
	}
}

// DecodeEvent 把 Envelope 還原成具體事件 (例如 event.RoundResolved)。
func DecodeEvent(env event.Envelope) (event.Event, error) {
	fn, ok := eventDecoders[env.Type]
	if !ok {
		return nil, errs.Warnf("unknown event type: %q", env.Type)
	}
	return fn(env.Data)
}
