package events

import "testing"

func TestSubscribeReceivesInOrder(t *testing.T) {
	b := New()
	var order []int

	b.Subscribe(func(Event) { order = append(order, 1) })
	b.Subscribe(func(Event) { order = append(order, 2) })
	b.Subscribe(func(Event) { order = append(order, 3) })

	b.Publish(Event{Name: ObjectCreatedPut, Bucket: "b", Key: "k"})

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("got delivery order %v", order)
	}
}

func TestCancelDetaches(t *testing.T) {
	b := New()
	var got []Event

	cancel := b.Subscribe(func(e Event) { got = append(got, e) })
	cancel()

	b.Publish(Event{Name: ObjectCreatedPut, Bucket: "b", Key: "k"})
	if len(got) != 0 {
		t.Fatalf("expected no delivery after cancel, got %v", got)
	}
}

func TestPanicInSubscriberDoesNotStopOthers(t *testing.T) {
	b := New()
	var secondCalled bool

	b.Subscribe(func(Event) { panic("boom") })
	b.Subscribe(func(Event) { secondCalled = true })

	b.Publish(Event{Name: ObjectRemovedDelete, Bucket: "b", Key: "k"})

	if !secondCalled {
		t.Fatalf("expected second subscriber to run despite first panicking")
	}
}

func TestSubscribeFiltered(t *testing.T) {
	b := New()
	var got []Event

	b.SubscribeFiltered(
		func(e Event) bool { return e.Name == ObjectCreatedPut },
		func(e Event) { got = append(got, e) },
	)

	b.Publish(Event{Name: ObjectRemovedDelete, Bucket: "b", Key: "k1"})
	b.Publish(Event{Name: ObjectCreatedPut, Bucket: "b", Key: "k2"})

	if len(got) != 1 || got[0].Key != "k2" {
		t.Fatalf("got %v", got)
	}
}

func TestCloseDetachesAll(t *testing.T) {
	b := New()
	var called bool
	b.Subscribe(func(Event) { called = true })
	b.Close()

	b.Publish(Event{Name: ObjectCreatedPut, Bucket: "b", Key: "k"})
	if called {
		t.Fatalf("expected no delivery after Close")
	}
}
