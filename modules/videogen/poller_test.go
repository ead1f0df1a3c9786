package videogen

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPollerWaitsUntilDone(t *testing.T) {
	calls := 0
	poll := func(ctx context.Context) (bool, error) {
		calls++
		return calls >= 3, nil
	}

	p := &Poller{Interval: time.Millisecond}
	if err := p.Wait(context.Background(), poll); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("poll calls = %d, want 3 (must not return before done)", calls)
	}
}

func TestPollerStopsOnPollError(t *testing.T) {
	pollErr := errors.New("operation lookup failed")
	calls := 0
	poll := func(ctx context.Context) (bool, error) {
		calls++
		return false, pollErr
	}

	p := &Poller{Interval: time.Millisecond}
	err := p.Wait(context.Background(), poll)
	if !errors.Is(err, pollErr) {
		t.Fatalf("error = %v, want %v", err, pollErr)
	}
	if calls != 1 {
		t.Errorf("poll calls = %d, want 1 (no retries on error)", calls)
	}
}

func TestPollerMaxAttempts(t *testing.T) {
	calls := 0
	poll := func(ctx context.Context) (bool, error) {
		calls++
		return false, nil
	}

	p := &Poller{Interval: time.Millisecond, MaxAttempts: 4}
	err := p.Wait(context.Background(), poll)

	var maxErr *MaxAttemptsError
	if !errors.As(err, &maxErr) {
		t.Fatalf("error = %v, want *MaxAttemptsError", err)
	}
	if maxErr.Attempts != 4 {
		t.Errorf("reported attempts = %d, want 4", maxErr.Attempts)
	}
	if calls != 4 {
		t.Errorf("poll calls = %d, want 4", calls)
	}
}

func TestPollerUnboundedWhenMaxAttemptsZero(t *testing.T) {
	calls := 0
	poll := func(ctx context.Context) (bool, error) {
		calls++
		return calls >= 50, nil
	}

	p := &Poller{Interval: time.Microsecond, MaxAttempts: 0}
	if err := p.Wait(context.Background(), poll); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 50 {
		t.Errorf("poll calls = %d, want 50", calls)
	}
}

func TestPollerCancellation(t *testing.T) {
	cancelled := false
	calls := 0
	poll := func(ctx context.Context) (bool, error) {
		calls++
		// 두 번째 폴링 전에 취소 플래그가 설정됨
		cancelled = true
		return false, nil
	}

	p := &Poller{
		Interval:    time.Millisecond,
		IsCancelled: func() bool { return cancelled },
	}
	err := p.Wait(context.Background(), poll)
	if !errors.Is(err, ErrPollCancelled) {
		t.Fatalf("error = %v, want ErrPollCancelled", err)
	}
	if calls != 1 {
		t.Errorf("poll calls = %d, want 1 (must stop before next poll)", calls)
	}
}

func TestPollerCancelledBeforeFirstPoll(t *testing.T) {
	poll := func(ctx context.Context) (bool, error) {
		t.Fatal("poll must not be called when already cancelled")
		return false, nil
	}

	p := &Poller{
		Interval:    time.Millisecond,
		IsCancelled: func() bool { return true },
	}
	if err := p.Wait(context.Background(), poll); !errors.Is(err, ErrPollCancelled) {
		t.Fatalf("error = %v, want ErrPollCancelled", err)
	}
}

func TestPollerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	poll := func(ctx context.Context) (bool, error) {
		t.Fatal("poll must not run after context cancellation")
		return false, nil
	}

	p := &Poller{Interval: time.Hour}
	err := p.Wait(ctx, poll)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestPollerReportsAttempts(t *testing.T) {
	var attempts []int
	calls := 0
	poll := func(ctx context.Context) (bool, error) {
		calls++
		return calls >= 2, nil
	}

	p := &Poller{
		Interval:  time.Millisecond,
		OnAttempt: func(attempt int) { attempts = append(attempts, attempt) },
	}
	if err := p.Wait(context.Background(), poll); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("attempts = %v, want [1 2]", attempts)
	}
}

func TestWaitForOperationSkipsPollWhenAlreadyDone(t *testing.T) {
	calls := 0
	p := &Poller{Interval: time.Hour} // 폴링에 들어가면 테스트가 멈추도록
	err := waitForOperation(context.Background(), p, true, func(ctx context.Context) (bool, error) {
		calls++
		return true, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 0 {
		t.Errorf("poll calls = %d, want 0 when operation is already done", calls)
	}
}

func TestWaitForOperationPollsWhenNotDone(t *testing.T) {
	calls := 0
	p := &Poller{Interval: time.Millisecond}
	err := waitForOperation(context.Background(), p, false, func(ctx context.Context) (bool, error) {
		calls++
		return calls >= 2, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("poll calls = %d, want 2", calls)
	}
}
