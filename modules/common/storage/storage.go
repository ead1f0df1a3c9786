package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"time"

	"veo-canvas-server/modules/common/config"
)

type Client struct {
	http *http.Client
}

// NewClient - Storage 클라이언트 생성
func NewClient() *Client {
	return &Client{
		http: &http.Client{Timeout: 5 * time.Minute},
	}
}

// DownloadFromStorage - Supabase Storage에서 파일 다운로드 (경로 기준)
func (c *Client) DownloadFromStorage(ctx context.Context, filePath string) ([]byte, error) {
	cfg := config.GetConfig()

	fullURL := cfg.SupabaseStorageBaseURL + filePath
	log.Printf("📥 Downloading from storage: %s", fullURL)

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		log.Printf("❌ HTTP GET failed: %v", err)
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(httpResp.Body)
		log.Printf("❌ Download failed - Status: %d, URL: %s", httpResp.StatusCode, fullURL)
		return nil, fmt.Errorf("failed to download file: status %d, body: %s", httpResp.StatusCode, string(body))
	}

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file data: %w", err)
	}

	log.Printf("✅ File downloaded: %d bytes", len(data))
	return data, nil
}

// UploadInputImage - 사용자가 올린 입력 이미지를 Storage에 업로드
// slot은 파일명 구분용 (start / end / ref-0 등)
func (c *Client) UploadInputImage(ctx context.Context, imageData []byte, contentType string, userID string, jobID string, slot string) (string, error) {
	ext := "png"
	switch contentType {
	case "image/jpeg":
		ext = "jpg"
	case "image/webp":
		ext = "webp"
	}

	filePath := fmt.Sprintf("video-inputs/user-%s/%s/%s.%s", userID, jobID, slot, ext)
	return c.upload(ctx, filePath, imageData, contentType)
}

// UploadVideo - 생성된 MP4를 Storage에 업로드
func (c *Client) UploadVideo(ctx context.Context, videoData []byte, userID string, jobID string) (string, error) {
	timestamp := time.Now().UnixNano() / int64(time.Millisecond)
	randomID := rand.Intn(999999)
	fileName := fmt.Sprintf("generated_%d_%d.mp4", timestamp, randomID)

	filePath := fmt.Sprintf("generated-videos/user-%s/%s/%s", userID, jobID, fileName)
	return c.upload(ctx, filePath, videoData, "video/mp4")
}

// UploadPreview - WebP 미리보기 썸네일 업로드
func (c *Client) UploadPreview(ctx context.Context, webpData []byte, userID string, jobID string) (string, error) {
	filePath := fmt.Sprintf("generated-videos/user-%s/%s/preview.webp", userID, jobID)
	return c.upload(ctx, filePath, webpData, "image/webp")
}

// upload - Supabase Storage API로 업로드 실행
func (c *Client) upload(ctx context.Context, filePath string, data []byte, contentType string) (string, error) {
	cfg := config.GetConfig()

	log.Printf("📤 Uploading to storage: %s (%d bytes, %s)", filePath, len(data), contentType)

	uploadURL := fmt.Sprintf("%s/storage/v1/object/attachments/%s", cfg.SupabaseURL, filePath)

	req, err := http.NewRequestWithContext(ctx, "POST", uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+cfg.SupabaseServiceKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	log.Printf("✅ Uploaded: %s", filePath)
	return filePath, nil
}
