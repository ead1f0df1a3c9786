package videogen

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// 개발용 - 모든 origin 허용
		// 프로덕션에서는 특정 도메인만 허용하도록 수정
		return true
	},
}

// subscriber - 특정 job을 구독 중인 WebSocket 연결
type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub - job별 진행 상황 브로드캐스트
// send 채널의 close는 반드시 mutex 안에서 일어나고, Publish는 RLock을 잡은 채로
// 전송하므로 구독 해제와 경합해도 닫힌 채널에 쓰지 않음
type Hub struct {
	mutex       sync.RWMutex
	subscribers map[string]map[*subscriber]bool // jobID -> 연결들
}

// NewHub - Hub 생성
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[*subscriber]bool),
	}
}

// Publish - job 구독자 전원에게 이벤트 전송
func (h *Hub) Publish(event ProgressEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("❌ Failed to marshal progress event: %v", err)
		return
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for sub := range h.subscribers[event.JobID] {
		select {
		case sub.send <- data:
		default:
			// 느린 클라이언트는 건너뜀
		}
	}
}

// addSubscriber - 구독 등록, 현재 구독자 수 반환
func (h *Hub) addSubscriber(jobID string, sub *subscriber) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.subscribers[jobID] == nil {
		h.subscribers[jobID] = make(map[*subscriber]bool)
	}
	h.subscribers[jobID][sub] = true
	return len(h.subscribers[jobID])
}

// removeSubscriber - 구독 해제 + send 채널 close (mutex 안에서)
func (h *Hub) removeSubscriber(jobID string, sub *subscriber) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	subs := h.subscribers[jobID]
	if subs == nil || !subs[sub] {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.subscribers, jobID)
	}
	close(sub.send)
}

// HandleWS - GET /ws?jobId= WebSocket 업그레이드
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("jobId")
	if jobID == "" {
		http.Error(w, "jobId parameter is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ WebSocket upgrade failed: %v", err)
		return
	}

	sub := &subscriber{
		conn: conn,
		send: make(chan []byte, 16),
	}

	count := h.addSubscriber(jobID, sub)
	log.Printf("🔌 WebSocket subscribed to job %s (%d subscriber(s))", jobID, count)

	go sub.writeLoop()
	go h.readLoop(jobID, sub)
}

// writeLoop - send 채널의 메시지를 연결로 전송
func (s *subscriber) writeLoop() {
	defer s.conn.Close()
	for data := range s.send {
		if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// readLoop - 연결 종료 감지용 (클라이언트 메시지는 무시)
func (h *Hub) readLoop(jobID string, sub *subscriber) {
	defer func() {
		h.removeSubscriber(jobID, sub)
		log.Printf("🔌 WebSocket unsubscribed from job %s", jobID)
	}()

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}
