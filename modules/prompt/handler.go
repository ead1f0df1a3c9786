package prompt

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// Handler - 프롬프트 개선 API 핸들러
type Handler struct {
	service *Service
}

// EnhanceRequest - 개선 요청
type EnhanceRequest struct {
	Prompt string `json:"prompt"`
}

// EnhanceResponse - 개선 응답
type EnhanceResponse struct {
	Success  bool   `json:"success"`
	Enhanced string `json:"enhanced,omitempty"`
	Error    string `json:"error,omitempty"`
}

// NewHandler - Handler 생성
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/prompt/enhance", h.HandleEnhance).Methods("POST", "OPTIONS")
	log.Println("✅ Prompt routes registered: POST /api/prompt/enhance")
}

// HandleEnhance - POST /api/prompt/enhance
func (h *Handler) HandleEnhance(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req EnhanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(EnhanceResponse{Success: false, Error: "Invalid request body"})
		return
	}

	enhanced, err := h.service.Enhance(r.Context(), req.Prompt)
	if err != nil {
		log.Printf("❌ [Prompt] Enhancement failed: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(EnhanceResponse{Success: false, Error: err.Error()})
		return
	}

	json.NewEncoder(w).Encode(EnhanceResponse{Success: true, Enhanced: enhanced})
}
