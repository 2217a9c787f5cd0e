package prioritylock

import (
	"sync"
	"testing"
	"time"
)

func TestReadersProceedTogether(t *testing.T) {
	mtx := New()
	mtx.HighPriorityReadLock()

	acquired := make(chan struct{})
	go func() {
		mtx.HighPriorityReadLock()
		close(acquired)
		mtx.HighPriorityReadUnlock()
	}()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatalf("second reader was blocked by the first one")
	}
	mtx.HighPriorityReadUnlock()
}

func TestWriterExcludesReaders(t *testing.T) {
	mtx := New()
	mtx.HighPriorityWriteLock()

	var mu sync.Mutex
	readerRan := false
	done := make(chan struct{})
	go func() {
		mtx.HighPriorityReadLock()
		mu.Lock()
		readerRan = true
		mu.Unlock()
		mtx.HighPriorityReadUnlock()
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	if readerRan {
		mu.Unlock()
		t.Fatalf("reader ran while the write lock was held")
	}
	mu.Unlock()

	mtx.HighPriorityWriteUnlock()
	<-done
}
