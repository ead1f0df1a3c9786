package prompt

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"veo-canvas-server/modules/common/config"
)

const enhanceInstruction = `You are a prompt engineer for a generative video model.
Rewrite the user's prompt into a single vivid, cinematic video description.
Keep the subject and intent, add concrete visual detail (camera, lighting, motion).
Return only the rewritten prompt, no explanations.`

// Service - 프롬프트 개선 서비스
type Service struct {
	client *genai.Client
	model  string
}

// NewService - Gemini 클라이언트로 서비스 초기화
func NewService(ctx context.Context) (*Service, error) {
	cfg := config.GetConfig()

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required for prompt enhancement")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	log.Printf("✅ [Prompt] Enhancer initialized (model: %s)", cfg.PromptModel)

	return &Service{
		client: client,
		model:  cfg.PromptModel,
	}, nil
}

// Enhance - 사용자 프롬프트를 비디오 생성에 적합하게 다듬기
func (s *Service) Enhance(ctx context.Context, userPrompt string) (string, error) {
	userPrompt = strings.TrimSpace(userPrompt)
	if userPrompt == "" {
		return "", fmt.Errorf("prompt is empty")
	}

	model := s.client.GenerativeModel(s.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(enhanceInstruction)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("failed to enhance prompt: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no enhancement candidates returned")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	enhanced := strings.TrimSpace(sb.String())
	if enhanced == "" {
		return "", fmt.Errorf("enhancement returned empty text")
	}

	log.Printf("✨ Prompt enhanced: %d chars → %d chars", len(userPrompt), len(enhanced))
	return enhanced, nil
}

// Close - 클라이언트 종료
func (s *Service) Close() {
	if s.client != nil {
		s.client.Close()
	}
}
