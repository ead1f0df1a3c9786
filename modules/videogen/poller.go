package videogen

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

var (
	// ErrPollCancelled - 폴링 중 사용자 취소
	ErrPollCancelled = errors.New("polling cancelled")
)

// MaxAttemptsError - 최대 폴링 횟수 초과 (maxAttempts > 0일 때만 발생)
type MaxAttemptsError struct {
	Attempts int
}

func (e *MaxAttemptsError) Error() string {
	return fmt.Sprintf("operation did not complete within %d poll attempts", e.Attempts)
}

// PollFunc - operation 상태를 한 번 조회
// done=true면 종료, 에러는 즉시 중단 (재시도 없음)
type PollFunc func(ctx context.Context) (done bool, err error)

// Poller - 고정 간격 폴링 루프
// Interval마다 PollFunc를 호출하고, 취소 플래그와 컨텍스트를 협조적으로 확인함
type Poller struct {
	Interval    time.Duration
	MaxAttempts int // 0 = 무제한
	IsCancelled func() bool
	OnAttempt   func(attempt int)
}

// Wait - operation이 종료될 때까지 폴링
// 반환: nil(완료), ErrPollCancelled(취소), *MaxAttemptsError(횟수 초과),
// ctx.Err()(컨텍스트 취소), 또는 PollFunc의 에러
func (p *Poller) Wait(ctx context.Context, poll PollFunc) error {
	interval := p.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	timer := time.NewTimer(interval)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for attempt := 1; ; attempt++ {
		if p.MaxAttempts > 0 && attempt > p.MaxAttempts {
			return &MaxAttemptsError{Attempts: p.MaxAttempts}
		}

		// 각 대기 전에 취소 플래그 확인
		if p.IsCancelled != nil && p.IsCancelled() {
			return ErrPollCancelled
		}

		// 고정 간격 대기 (백오프/지터 없음)
		timer.Reset(interval)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		// 대기 후에도 취소 확인 (대기 중 취소된 경우)
		if p.IsCancelled != nil && p.IsCancelled() {
			return ErrPollCancelled
		}

		if p.OnAttempt != nil {
			p.OnAttempt(attempt)
		}

		done, err := poll(ctx)
		if err != nil {
			log.Printf("❌ Poll attempt %d failed: %v", attempt, err)
			return err
		}
		if done {
			log.Printf("✅ Operation completed after %d poll attempt(s)", attempt)
			return nil
		}
	}
}

// waitForOperation - 제출 응답이 이미 완료 상태면 폴링 없이 바로 반환
func waitForOperation(ctx context.Context, p *Poller, alreadyDone bool, poll PollFunc) error {
	if alreadyDone {
		log.Println("✅ Operation already complete at submission, skipping poll loop")
		return nil
	}
	return p.Wait(ctx, poll)
}
