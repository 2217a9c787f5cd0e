package prioritylock

import (
	"sync"
)

// Mutex implements a lock with three priorities:
//   - High priority write lock - locks the mutex with the highest priority.
//     Block insertion takes it.
//   - High priority read lock - locks the mutex with lower priority than
//     the high priority write lock. Can be held concurrently with other
//     read locks. Queries take it.
//   - Low priority write lock - waits until no high priority holder or
//     waiter exists. Background passes take it.
type Mutex struct {
	dataMutex           sync.RWMutex
	lowPriorityMutex    sync.Mutex
	highPriorityWaiting sync.WaitGroup
}

// New returns a new priority lock
func New() *Mutex {
	lock := Mutex{
		highPriorityWaiting: sync.WaitGroup{},
	}
	return &lock
}

// LowPriorityWriteLock acquires a low-priority write lock.
func (mtx *Mutex) LowPriorityWriteLock() {
	mtx.lowPriorityMutex.Lock()
	mtx.highPriorityWaiting.Wait()
	mtx.dataMutex.Lock()
}

// LowPriorityWriteUnlock unlocks the low-priority write lock
func (mtx *Mutex) LowPriorityWriteUnlock() {
	mtx.dataMutex.Unlock()
	mtx.lowPriorityMutex.Unlock()
}

// HighPriorityWriteLock acquires a high-priority write lock.
func (mtx *Mutex) HighPriorityWriteLock() {
	mtx.highPriorityWaiting.Add(1)
	mtx.dataMutex.Lock()
}

// HighPriorityWriteUnlock unlocks the high-priority write lock
func (mtx *Mutex) HighPriorityWriteUnlock() {
	mtx.dataMutex.Unlock()
	mtx.highPriorityWaiting.Done()
}

// HighPriorityReadLock acquires a high-priority read lock.
func (mtx *Mutex) HighPriorityReadLock() {
	mtx.highPriorityWaiting.Add(1)
	mtx.dataMutex.RLock()
}

// HighPriorityReadUnlock unlocks the high-priority read lock
func (mtx *Mutex) HighPriorityReadUnlock() {
	mtx.highPriorityWaiting.Done()
	mtx.dataMutex.RUnlock()
}
