package queue

import (
	"runtime"
	"sync"
	"testing"
)

func TestArrayQueuePopEmpty(t *testing.T) {
	q := New[uint64](4)

	_, ok := q.Pop()
	if ok {
		t.Fatalf("Pop() ok = true, want false")
	}
	if !q.IsEmpty() {
		t.Fatalf("IsEmpty() = false, want true")
	}
}

func TestArrayQueuePushFull(t *testing.T) {
	const capacity = 8
	q := New[int](capacity)

	for i := 0; i < capacity; i++ {
		if ok := q.Push(i); !ok {
			t.Fatalf("Push() ok = false at slot %d, want true", i)
		}
	}
	if ok := q.Push(capacity); ok {
		t.Fatalf("Push() ok = true when full, want false")
	}
	if !q.IsFull() {
		t.Fatalf("IsFull() = false, want true")
	}

	for i := 0; i < capacity; i++ {
		v, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop() ok = false at slot %d, want true", i)
		}
		if v != i {
			t.Fatalf("Pop() = %d, want %d", v, i)
		}
	}
}

func TestArrayQueueWrapsAround(t *testing.T) {
	q := New[int](3)

	for lap := 0; lap < 10; lap++ {
		for i := 0; i < 2; i++ {
			if !q.Push(lap*10 + i) {
				t.Fatalf("Push() failed on lap %d", lap)
			}
		}
		for i := 0; i < 2; i++ {
			v, ok := q.Pop()
			if !ok || v != lap*10+i {
				t.Fatalf("Pop() = %d, %v, want %d, true", v, ok, lap*10+i)
			}
		}
	}
	if got := q.Len(); got != 0 {
		t.Fatalf("Len() = %d, want 0", got)
	}
}

func TestNewRejectsNonPositiveCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("New(0) did not panic")
		}
	}()
	New[int](0)
}

func TestArrayQueueConcurrentProducers(t *testing.T) {
	oldProcs := runtime.GOMAXPROCS(1)
	defer runtime.GOMAXPROCS(oldProcs)

	const (
		producers = 4
		perProd   = 10_000
		total     = producers * perProd
	)

	q := New[uint32](8)

	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(producers)
	for producerID := 0; producerID < producers; producerID++ {
		go func(producerID int) {
			defer wg.Done()
			<-start
			for i := 0; i < perProd; i++ {
				id := uint32(producerID*perProd + i)
				for !q.Push(id) {
					runtime.Gosched()
				}
			}
		}(producerID)
	}
	close(start)

	seen := make([]bool, total)
	for i := 0; i < total; i++ {
		var (
			id uint32
			ok bool
		)
		for {
			if id, ok = q.Pop(); ok {
				break
			}
			runtime.Gosched()
		}
		if int(id) >= total {
			t.Fatalf("Pop() id = %d, want < %d", id, total)
		}
		if seen[id] {
			t.Fatalf("Pop() duplicate id %d", id)
		}
		seen[id] = true
	}

	wg.Wait()
}
