package event

import (
	"encoding/json"
	"sync"
)

// Envelope 是事件對外的序列化格式。
type Envelope struct {
	Seq  uint64          `json:"seq"`
	Type Type            `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Outbox 暫存事件給輪詢的客戶端（HTTP / 終端機）。
// 超過容量時丟掉最舊的事件，Dropped 記錄丟棄數量。
type Outbox struct {
	mu      sync.Mutex
	cap     int
	seq     uint64
	items   []Envelope
	dropped uint64
}

func NewOutbox(capacity int) *Outbox {
	if capacity < 1 {
		capacity = 256
	}
	return &Outbox{cap: capacity}
}

// Handle 可直接作為 Bus 的 Handler。
func (o *Outbox) Handle(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seq++
	if len(o.items) == o.cap {
		o.items = o.items[1:]
		o.dropped++
	}
	o.items = append(o.items, Envelope{Seq: o.seq, Type: e.Type(), Data: data})
}

// Drain 取出並清空目前所有事件。
func (o *Outbox) Drain() []Envelope {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.items
	o.items = nil
	return out
}

func (o *Outbox) Dropped() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dropped
}
