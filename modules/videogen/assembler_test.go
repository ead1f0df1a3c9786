package videogen

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"veo-canvas-server/modules/common/model"
)

func pngInput(data string) *MediaInput {
	return &MediaInput{Data: []byte(data), MIMEType: "image/png"}
}

func TestAssembleRequestRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		req    *GenerationRequest
		inputs *MediaInputs
	}{
		{
			name: "text mode without prompt",
			req:  &GenerationRequest{UserID: "u1", Mode: model.ModeText},
		},
		{
			name: "image mode without source image",
			req:  &GenerationRequest{UserID: "u1", Mode: model.ModeImage, Prompt: "a cat"},
		},
		{
			name: "frames mode without start image",
			req:  &GenerationRequest{UserID: "u1", Mode: model.ModeFrames, Prompt: "a cat"},
			inputs: &MediaInputs{
				EndImage: pngInput("end"),
			},
		},
		{
			name: "references mode without reference images",
			req:  &GenerationRequest{UserID: "u1", Mode: model.ModeReferences, Prompt: "a cat"},
		},
		{
			name: "references mode without prompt",
			req:  &GenerationRequest{UserID: "u1", Mode: model.ModeReferences},
			inputs: &MediaInputs{
				References: []MediaInput{*pngInput("ref")},
			},
		},
		{
			name: "extend mode without source video",
			req:  &GenerationRequest{UserID: "u1", Mode: model.ModeExtend, Prompt: "keep going"},
		},
		{
			name: "extend mode without prompt",
			req:  &GenerationRequest{UserID: "u1", Mode: model.ModeExtend, SourceVideoURL: "https://example.com/v.mp4"},
		},
		{
			name: "unknown mode",
			req:  &GenerationRequest{UserID: "u1", Mode: "hologram", Prompt: "a cat"},
		},
		{
			name: "missing user id",
			req:  &GenerationRequest{Mode: model.ModeText, Prompt: "a cat"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AssembleRequest(tt.req, tt.inputs, false, nil)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected *ValidationError, got %T: %v", err, err)
			}
		})
	}
}

func TestAssembleRequestLoopReusesStartImage(t *testing.T) {
	start := pngInput("start-frame")

	assembled, err := AssembleRequest(
		&GenerationRequest{UserID: "u1", Mode: model.ModeFrames, Prompt: "loop it", DurationSeconds: 5},
		&MediaInputs{StartImage: start},
		true,
		nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if assembled.EndImage == nil {
		t.Fatal("expected end image to be set in loop mode")
	}
	if !bytes.Equal(assembled.EndImage.Data, start.Data) {
		t.Error("end image bytes must equal start image bytes")
	}
	if assembled.EndImage.MIMEType != start.MIMEType {
		t.Error("end image MIME type must equal start image MIME type")
	}
}

func TestAssembleRequestNoLoopKeepsEndImageEmpty(t *testing.T) {
	assembled, err := AssembleRequest(
		&GenerationRequest{UserID: "u1", Mode: model.ModeFrames, Prompt: "no loop"},
		&MediaInputs{StartImage: pngInput("start")},
		false,
		nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assembled.EndImage != nil {
		t.Error("end image must stay empty when loop is off")
	}
}

func TestAssembleRequestPromptContainsDuration(t *testing.T) {
	tests := []struct {
		name     string
		prompt   string
		duration int
		want     string
	}{
		{"normal prompt", "a cat surfing", 8, "A 8 second video of: a cat surfing"},
		{"empty prompt gets synthetic text", "", 5, "A 5 second video."},
		{"duration defaults when unset", "a dog", 0, "A 5 second video of: a dog"},
		{"long duration is carried through verbatim", "a bird", 15, "A 15 second video of: a bird"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &GenerationRequest{UserID: "u1", Mode: model.ModeImage, Prompt: tt.prompt, DurationSeconds: tt.duration}
			assembled, err := AssembleRequest(req, &MediaInputs{StartImage: pngInput("img")}, false, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if assembled.Prompt != tt.want {
				t.Errorf("prompt = %q, want %q", assembled.Prompt, tt.want)
			}
		})
	}
}

func TestAssembleRequestReferencesModePinsSettings(t *testing.T) {
	assembled, err := AssembleRequest(
		&GenerationRequest{
			UserID:      "u1",
			Mode:        model.ModeReferences,
			Prompt:      "same character walking",
			Model:       "veo-3.0-generate-preview",
			AspectRatio: "9:16",
			Resolution:  "1080p",
		},
		&MediaInputs{References: []MediaInput{*pngInput("ref-a"), *pngInput("ref-b")}},
		false,
		pngInput("style"),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if assembled.Model != ReferencesModel {
		t.Errorf("model = %q, want pinned %q", assembled.Model, ReferencesModel)
	}
	if assembled.AspectRatio != ReferencesAspectRatio {
		t.Errorf("aspect ratio = %q, want pinned %q", assembled.AspectRatio, ReferencesAspectRatio)
	}
	if assembled.Resolution != ReferencesResolution {
		t.Errorf("resolution = %q, want pinned %q", assembled.Resolution, ReferencesResolution)
	}
	if len(assembled.References) != 2 {
		t.Errorf("references = %d, want 2", len(assembled.References))
	}
	if assembled.StyleImage == nil {
		t.Error("style image must be carried through")
	}
}

func TestAssembleRequestReferencesCap(t *testing.T) {
	refs := []MediaInput{*pngInput("1"), *pngInput("2"), *pngInput("3"), *pngInput("4")}

	_, err := AssembleRequest(
		&GenerationRequest{UserID: "u1", Mode: model.ModeReferences, Prompt: "too many"},
		&MediaInputs{References: refs},
		false,
		nil,
	)
	if err == nil {
		t.Fatal("expected error for more than 3 reference images")
	}
}

func TestAssembleRequestExtendModePinsSettings(t *testing.T) {
	assembled, err := AssembleRequest(
		&GenerationRequest{
			UserID:          "u1",
			Mode:            model.ModeExtend,
			Prompt:          "the camera keeps panning",
			Model:           "veo-3.0-generate-preview",
			Resolution:      "1080p",
			DurationSeconds: 3,
			SourceVideoURL:  "https://example.com/prior.mp4",
		},
		nil,
		false,
		nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if assembled.Model != ExtendModel {
		t.Errorf("model = %q, want pinned %q", assembled.Model, ExtendModel)
	}
	if assembled.Resolution != ExtendResolution {
		t.Errorf("resolution = %q, want pinned %q", assembled.Resolution, ExtendResolution)
	}
	if assembled.DurationSeconds != ExtendDurationSeconds {
		t.Errorf("duration = %d, want pinned %d", assembled.DurationSeconds, ExtendDurationSeconds)
	}
	if !strings.Contains(assembled.Prompt, "7 second") {
		t.Errorf("prompt %q must embed the pinned duration", assembled.Prompt)
	}
}

func TestAssembleRequestTextModeRejectsMedia(t *testing.T) {
	_, err := AssembleRequest(
		&GenerationRequest{UserID: "u1", Mode: model.ModeText, Prompt: "no images please"},
		&MediaInputs{StartImage: pngInput("sneaky")},
		false,
		nil,
	)
	if err == nil {
		t.Fatal("expected error when text mode carries media")
	}
}

func TestAssembleRequestTextFallbackAfterMediaRemoved(t *testing.T) {
	// 미디어를 비우고 text 모드로 전환된 재시도 job은 프롬프트만으로 조립되어야 함
	assembled, err := AssembleRequest(
		&GenerationRequest{UserID: "u1", Mode: model.ModeText, Prompt: "a calm lake at dawn"},
		&MediaInputs{},
		false,
		nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assembled.StartImage != nil || assembled.EndImage != nil {
		t.Error("text fallback must carry no media")
	}
	if assembled.Prompt == "" {
		t.Error("prompt must survive the fallback")
	}
}
