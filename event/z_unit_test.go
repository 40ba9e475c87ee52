package event

import (
	"encoding/json"
	"testing"
)

func TestBusOrderAndCancel(t *testing.T) {
	b := NewBus()
	var got []string
	c1 := b.Subscribe(func(e Event) { got = append(got, "a:"+string(e.Type())) })
	b.Subscribe(func(e Event) { got = append(got, "b:"+string(e.Type())) })
	b.Publish(SessionReset{})
	c1()
	c1()
	b.Publish(Cue{Name: CueWin})
	want := []string{"a:session.reset", "b:session.reset", "b:cue"}
	if len(got) != len(want) {
		t.Fatalf("want %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("want %v got %v", want, got)
		}
	}
}

func TestBusSubscribeDuringPublish(t *testing.T) {
	b := NewBus()
	n := 0
	b.Subscribe(func(e Event) {
		if e.Type() == TypeSessionReset {
			b.Subscribe(func(Event) { n++ })
		}
	})
	b.Publish(SessionReset{})
	b.Publish(GameOver{})
	if n != 1 {
		t.Fatalf("late subscriber should see exactly the next event, got %d", n)
	}
}

func TestOutboxDrainAndOverflow(t *testing.T) {
	o := NewOutbox(2)
	o.Handle(BalanceChanged{Old: 0, New: 100})
	o.Handle(EnvelopeOpened{Amount: 100})
	o.Handle(Cue{Name: CueFanfare})
	items := o.Drain()
	if len(items) != 2 || o.Dropped() != 1 {
		t.Fatalf("expected 2 items and 1 dropped, got %d / %d", len(items), o.Dropped())
	}
	if items[0].Seq != 2 || items[0].Type != TypeEnvelopeOpened {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	var c Cue
	if err := json.Unmarshal(items[1].Data, &c); err != nil || c.Name != CueFanfare {
		t.Fatalf("unexpected cue payload: %s (%v)", items[1].Data, err)
	}
	if len(o.Drain()) != 0 {
		t.Fatalf("drain must empty the outbox")
	}
}
