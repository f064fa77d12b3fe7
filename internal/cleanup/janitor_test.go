package cleanup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func tempFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}

func TestJanitor_DeletesAfterDelay(t *testing.T) {
	path := tempFile(t)
	j := New(Options{Delay: time.Millisecond, MaxRetries: 5, Workers: 1})
	defer j.Stop(context.Background())

	j.Schedule(path)

	gone := waitFor(t, 2*time.Second, func() bool {
		_, err := os.Stat(path)
		return os.IsNotExist(err)
	})
	if !gone {
		t.Fatal("file still present after cleanup")
	}
}

func TestJanitor_RetriesLockedFile(t *testing.T) {
	path := tempFile(t)

	var calls int32
	j := New(Options{
		Delay:      time.Millisecond,
		MaxRetries: 5,
		Workers:    1,
		Remove: func(p string) error {
			// Locked for the first two attempts, then released.
			if atomic.AddInt32(&calls, 1) <= 2 {
				return errors.New("file in use by another process")
			}
			return os.Remove(p)
		},
	})
	defer j.Stop(context.Background())

	j.Schedule(path)

	gone := waitFor(t, 2*time.Second, func() bool {
		_, err := os.Stat(path)
		return os.IsNotExist(err)
	})
	if !gone {
		t.Fatal("file still present after retries")
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("remove called %d times, want 3", got)
	}
}

func TestJanitor_GivesUpAfterMaxRetries(t *testing.T) {
	path := tempFile(t)

	var calls int32
	j := New(Options{
		Delay:      time.Millisecond,
		MaxRetries: 5,
		Workers:    1,
		Remove: func(string) error {
			atomic.AddInt32(&calls, 1)
			return errors.New("permanently locked")
		},
	})

	j.Schedule(path)

	if !waitFor(t, 2*time.Second, func() bool { return atomic.LoadInt32(&calls) >= 5 }) {
		t.Fatalf("remove called %d times, want 5", atomic.LoadInt32(&calls))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := j.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	// Exactly MaxRetries attempts, then silence.
	if got := atomic.LoadInt32(&calls); got != 5 {
		t.Fatalf("remove called %d times, want 5", got)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file should survive a failed cleanup, stat error = %v", err)
	}
}

func TestJanitor_ScheduleDoesNotBlock(t *testing.T) {
	path := tempFile(t)
	j := New(Options{Delay: time.Second, MaxRetries: 5, Workers: 1})
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		j.Stop(ctx)
	}()

	done := make(chan struct{})
	go func() {
		j.Schedule(path)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Schedule blocked the caller")
	}

	// The delay has not elapsed yet, so the file must still exist.
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file deleted before the delay elapsed: %v", err)
	}
}

func TestJanitor_QueueOverflowStillCleans(t *testing.T) {
	j := New(Options{Delay: time.Millisecond, MaxRetries: 5, Workers: 1, QueueSize: 1})
	defer j.Stop(context.Background())

	paths := make([]string, 8)
	for i := range paths {
		paths[i] = tempFile(t)
		j.Schedule(paths[i])
	}

	gone := waitFor(t, 2*time.Second, func() bool {
		for _, p := range paths {
			if _, err := os.Stat(p); !os.IsNotExist(err) {
				return false
			}
		}
		return true
	})
	if !gone {
		t.Fatal("not all scheduled files were cleaned")
	}
}

func TestJanitor_StopAttemptsFinalDelete(t *testing.T) {
	path := tempFile(t)
	j := New(Options{Delay: time.Hour, MaxRetries: 5, Workers: 1})

	j.Schedule(path)
	// Give the worker a moment to pick up the job and enter its delay.
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := j.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("pending file not deleted on shutdown")
	}
}

func TestJanitor_MissingFileIsSuccess(t *testing.T) {
	var calls int32
	j := New(Options{
		Delay:      time.Millisecond,
		MaxRetries: 5,
		Workers:    1,
		Remove: func(p string) error {
			atomic.AddInt32(&calls, 1)
			return os.Remove(p)
		},
	})
	defer j.Stop(context.Background())

	j.Schedule(filepath.Join(t.TempDir(), "never-existed.mp4"))

	waitFor(t, time.Second, func() bool { return atomic.LoadInt32(&calls) >= 1 })
	time.Sleep(20 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("remove called %d times for a missing file, want 1", got)
	}
}
