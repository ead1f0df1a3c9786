package genai

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/genai"

	"veo-canvas-server/modules/common/config"
)

// NewClient - Veo API 클라이언트 생성
// VERTEX_PROJECT가 설정되어 있으면 Vertex AI 백엔드, 아니면 Gemini API 키 사용
func NewClient(ctx context.Context) (*genai.Client, error) {
	cfg := config.GetConfig()

	if cfg.VertexProject != "" {
		log.Printf("🔌 Creating Vertex AI client (project: %s, location: %s)", cfg.VertexProject, cfg.VertexLocation)
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			Project:  cfg.VertexProject,
			Location: cfg.VertexLocation,
			Backend:  genai.BackendVertexAI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
		}
		return client, nil
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("no API credentials configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini API client: %w", err)
	}
	return client, nil
}
