package queue

import (
	"sync"
	"testing"
)

func TestQueue_New(t *testing.T) {
	q := New[int]()
	if q == nil {
		t.Fatal("expected non-nil queue")
	}
	if !q.Empty() {
		t.Error("expected empty queue")
	}
}

func TestQueue_PushDrainOrder(t *testing.T) {
	q := New[int]()
	q.Push(1, 2)
	q.Push(3)

	if q.Len() != 3 {
		t.Fatalf("expected length 3, got %d", q.Len())
	}

	got := q.Drain()
	want := []int{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %d, got %d", i, want[i], got[i])
		}
	}

	if !q.Empty() {
		t.Error("expected empty queue after drain")
	}
}

func TestQueue_DrainEmpty(t *testing.T) {
	q := New[string]()
	if got := q.Drain(); len(got) != 0 {
		t.Errorf("expected empty drain, got %v", got)
	}
}

func TestQueue_Clear(t *testing.T) {
	q := New[int]()
	q.Push(1, 2, 3)

	q.Clear()

	if !q.Empty() {
		t.Error("expected empty queue after clear")
	}
}

func TestQueue_Concurrent(t *testing.T) {
	q := New[int]()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			q.Push(id)
		}(i)
	}
	wg.Wait()

	if q.Len() != 100 {
		t.Errorf("expected 100 items, got %d", q.Len())
	}
}

func TestQueue_ConcurrentDrain(t *testing.T) {
	q := New[int]()
	for i := 0; i < 100; i++ {
		q.Push(i)
	}

	var wg sync.WaitGroup
	results := make(chan []int, 10)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- q.Drain()
		}()
	}
	wg.Wait()
	close(results)

	// Every item lands in exactly one drain.
	total := 0
	for r := range results {
		total += len(r)
	}
	if total != 100 {
		t.Errorf("expected total 100 items, got %d", total)
	}
}

func TestQueue_MapType(t *testing.T) {
	q := New[map[string]any]()
	q.Push(map[string]any{"geometry": map[string]any{"leverLength": 1.2}})

	batches := q.Drain()
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(batches))
	}
	if _, ok := batches[0]["geometry"]; !ok {
		t.Errorf("expected geometry key, got %v", batches[0])
	}
}
