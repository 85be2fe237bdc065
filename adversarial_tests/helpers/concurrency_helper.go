package helpers

import (
	"fmt"
	"runtime"
	"sync"
	"time"
)

// GoroutineSnapshot captures the state of goroutines at a point in time
type GoroutineSnapshot struct {
	Count     int
	Timestamp time.Time
}

// TakeGoroutineSnapshot captures current goroutine count
func TakeGoroutineSnapshot() *GoroutineSnapshot {
	return &GoroutineSnapshot{
		Count:     runtime.NumGoroutine(),
		Timestamp: time.Now(),
	}
}

// WaitForGoroutineCleanup waits until the goroutine count is within tolerance
// of the snapshot, retrying with GC
func WaitForGoroutineCleanup(before *GoroutineSnapshot, maxWait time.Duration, tolerance int) error {
	deadline := time.Now().Add(maxWait)

	for time.Now().Before(deadline) {
		if runtime.NumGoroutine()-before.Count <= tolerance {
			return nil
		}
		runtime.GC()
		time.Sleep(50 * time.Millisecond)
	}

	final := runtime.NumGoroutine()
	return fmt.Errorf("goroutine leak detected: started with %d, ended with %d (tolerance %d)",
		before.Count, final, tolerance)
}

// DeadlockDetector fails an operation that does not finish in time
type DeadlockDetector struct {
	timeout time.Duration
}

// NewDeadlockDetector creates a new deadlock detector
func NewDeadlockDetector(timeout time.Duration) *DeadlockDetector {
	return &DeadlockDetector{timeout: timeout}
}

// Run executes fn and returns its error, or a timeout error if fn blocks
func (dd *DeadlockDetector) Run(fn func() error) error {
	errChan := make(chan error, 1)
	go func() {
		errChan <- fn()
	}()

	select {
	case err := <-errChan:
		return err
	case <-time.After(dd.timeout):
		return fmt.Errorf("operation timed out after %v (possible deadlock)", dd.timeout)
	}
}

// RunConcurrently starts workers goroutines that each call op iterations
// times and returns every error reported.
func RunConcurrently(workers, iterations int, op func(worker, iteration int) error) []error {
	var (
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
	)

	wg.Add(workers)
	for w := range workers {
		go func() {
			defer wg.Done()
			for i := range iterations {
				if err := op(w, i); err != nil {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	return errs
}

// ConcurrencyTracker records the peak number of overlapping calls
type ConcurrencyTracker struct {
	mu      sync.Mutex
	current int
	peak    int
}

// Enter marks the start of a call and returns the function that ends it.
func (ct *ConcurrencyTracker) Enter() func() {
	ct.mu.Lock()
	ct.current++
	if ct.current > ct.peak {
		ct.peak = ct.current
	}
	ct.mu.Unlock()

	return func() {
		ct.mu.Lock()
		ct.current--
		ct.mu.Unlock()
	}
}

// Peak returns the highest number of overlapping calls seen.
func (ct *ConcurrencyTracker) Peak() int {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return ct.peak
}
