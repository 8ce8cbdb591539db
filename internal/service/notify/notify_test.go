package notify

import (
	"testing"
	"time"
)

func TestLocalNotifierFansOut(t *testing.T) {
	n := NewLocalNotifier()

	var got []RefreshEvent
	unsubscribe := n.Subscribe(func(ev RefreshEvent) {
		got = append(got, ev)
	})

	ev := RefreshEvent{WindowDays: 14, Places: 3, LoadedAt: time.Now()}
	n.NotifyRefresh(ev)

	if len(got) != 1 || got[0].WindowDays != 14 || got[0].Places != 3 {
		t.Fatalf("delivered = %+v; want the published event", got)
	}

	unsubscribe()
	n.NotifyRefresh(ev)
	if len(got) != 1 {
		t.Errorf("unsubscribed handler still received events")
	}
}

func TestLocalNotifierMultipleSubscribers(t *testing.T) {
	n := NewLocalNotifier()

	count := 0
	for i := 0; i < 3; i++ {
		n.Subscribe(func(RefreshEvent) { count++ })
	}
	n.NotifyRefresh(RefreshEvent{WindowDays: 7})

	if count != 3 {
		t.Errorf("deliveries = %d; want 3", count)
	}
}
