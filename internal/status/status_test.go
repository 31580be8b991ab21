package status

import (
	"sync"
	"testing"
)

func TestReport_UsesSinkWhenProvided(t *testing.T) {
	store := NewStore()
	prev := Default
	Default = store
	defer func() { Default = prev }()

	var got []Update
	Report(func(u Update) { got = append(got, u) }, "QUERYING model...", 10)

	if len(got) != 1 || got[0].Message != "QUERYING model..." || got[0].Percent != 10 {
		t.Fatalf("unexpected updates: %+v", got)
	}
	if store.Current().Message != "READY" {
		t.Errorf("default store should be untouched, got %q", store.Current().Message)
	}
}

func TestReport_FallsBackToDefault(t *testing.T) {
	store := NewStore()
	prev := Default
	Default = store
	defer func() { Default = prev }()

	Report(nil, "CONVENING THE TRIBUNAL...", -1)

	if got := store.Current().Message; got != "CONVENING THE TRIBUNAL..." {
		t.Errorf("expected fallback message, got %q", got)
	}
}

func TestStore_SubscribeAndCancel(t *testing.T) {
	store := NewStore()

	var mu sync.Mutex
	count := 0
	cancel := store.Subscribe(func(Update) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	store.Set(Update{Message: "a"})
	cancel()
	store.Set(Update{Message: "b"})

	if count != 1 {
		t.Errorf("expected 1 notification, got %d", count)
	}
	if store.Current().Message != "b" {
		t.Errorf("expected current message b, got %q", store.Current().Message)
	}
}
