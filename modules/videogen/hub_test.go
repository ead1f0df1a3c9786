package videogen

import (
	"sync"
	"testing"
)

func TestHubPublishReachesSubscriber(t *testing.T) {
	h := NewHub()
	sub := &subscriber{send: make(chan []byte, 16)}
	h.addSubscriber("job-1", sub)

	h.Publish(ProgressEvent{JobID: "job-1", Phase: "polling", Attempt: 2})

	select {
	case data := <-sub.send:
		if len(data) == 0 {
			t.Error("published event must not be empty")
		}
	default:
		t.Fatal("subscriber did not receive the published event")
	}
}

func TestHubPublishIgnoresOtherJobs(t *testing.T) {
	h := NewHub()
	sub := &subscriber{send: make(chan []byte, 16)}
	h.addSubscriber("job-1", sub)

	h.Publish(ProgressEvent{JobID: "job-2", Phase: "done"})

	select {
	case <-sub.send:
		t.Fatal("subscriber must not receive events for other jobs")
	default:
	}
}

func TestHubRemoveSubscriberIsIdempotent(t *testing.T) {
	h := NewHub()
	sub := &subscriber{send: make(chan []byte, 16)}
	h.addSubscriber("job-1", sub)

	h.removeSubscriber("job-1", sub)
	h.removeSubscriber("job-1", sub) // 두 번째 호출은 무시되어야 함

	h.Publish(ProgressEvent{JobID: "job-1", Phase: "done"})
}

func TestHubPublishDuringDisconnect(t *testing.T) {
	h := NewHub()
	const jobID = "job-race"

	done := make(chan struct{})
	var wg sync.WaitGroup

	// 연결 해제와 동시에 이벤트를 쏟아부어도 닫힌 채널에 쓰면 안 됨
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					h.Publish(ProgressEvent{JobID: jobID, Phase: "polling"})
				}
			}
		}()
	}

	for cycle := 0; cycle < 200; cycle++ {
		sub := &subscriber{send: make(chan []byte, 1)}
		h.addSubscriber(jobID, sub)
		h.removeSubscriber(jobID, sub)
	}

	close(done)
	wg.Wait()
}
