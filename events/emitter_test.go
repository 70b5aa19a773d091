package events

import "testing"

func TestEmitterDeliversToSubscribers(t *testing.T) {
	e := NewEmitter()
	var got []uint64
	e.Subscribe(EventTick, func(ev Event) { got = append(got, ev.EntryIndex) })
	e.Subscribe(EventTick, func(ev Event) { got = append(got, ev.EntryIndex+100) })

	e.Emit(Event{Type: EventTick, EntryIndex: 1})
	e.Emit(Event{Type: EventEntryCommitted, EntryIndex: 2}) // no subscriber

	if len(got) != 2 || got[0] != 1 || got[1] != 101 {
		t.Errorf("delivery mismatch: %v", got)
	}
}

func TestEmitterIsolatesPanickingHandler(t *testing.T) {
	e := NewEmitter()
	var delivered bool
	e.Subscribe(EventChainBroken, func(Event) { panic("bad handler") })
	e.Subscribe(EventChainBroken, func(Event) { delivered = true })

	e.Emit(Event{Type: EventChainBroken})
	if !delivered {
		t.Error("a panicking handler must not block later handlers")
	}
}
