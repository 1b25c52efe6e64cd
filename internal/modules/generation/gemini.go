package generation

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/readaloud/core/internal/modules/reading"
	genai "google.golang.org/genai"
)

// generateWithGemini issues one GenerateContent call. The submission's file
// bytes, when present, ride along as inline data so the model reads the
// document itself rather than a lossy text rendering of it.
func (s *Service) generateWithGemini(
	ctx context.Context,
	model, system, prompt string,
	input reading.Input,
	safety []*genai.SafetySetting,
) (string, error) {
	parts := []*genai.Part{{Text: prompt}}
	if len(input.FileContent) > 0 {
		mime := input.MIMEType
		if mime == "" {
			mime = "application/octet-stream"
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: mime, Data: input.FileContent},
		})
	}

	cfg := &genai.GenerateContentConfig{}
	if strings.TrimSpace(system) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if len(safety) > 0 {
		cfg.SafetySettings = safety
	}

	res, err := s.gemini.Models.GenerateContent(ctx, model, []*genai.Content{
		{Role: genai.RoleUser, Parts: parts},
	}, cfg)
	if err != nil {
		if looksLikeContentRejection(err.Error()) {
			return "", fmt.Errorf("%w: %v", reading.ErrContentRejected, err)
		}
		return "", err
	}

	if reason, rejected := blockedReason(res); rejected {
		return "", fmt.Errorf("%w: %s", reading.ErrContentRejected, reason)
	}

	text := res.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}

// blockedReason distinguishes a content-policy rejection from an ordinary
// failure: a blocked prompt, or a candidate cut off by a safety finish
// reason, is a rejection and triggers the transcription fallback.
func blockedReason(res *genai.GenerateContentResponse) (string, bool) {
	if res == nil {
		return "", false
	}
	if res.PromptFeedback != nil && res.PromptFeedback.BlockReason != "" {
		return "prompt blocked: " + string(res.PromptFeedback.BlockReason), true
	}
	for _, cand := range res.Candidates {
		switch cand.FinishReason {
		case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent, genai.FinishReasonBlocklist:
			return "candidate blocked: " + string(cand.FinishReason), true
		}
	}
	return "", false
}

func looksLikeContentRejection(msg string) bool {
	lowered := strings.ToLower(msg)
	return strings.Contains(lowered, "safety") ||
		strings.Contains(lowered, "blocked") ||
		strings.Contains(lowered, "prohibited")
}

// generateImage renders one illustration through the image model.
func (s *Service) generateImage(ctx context.Context, model, prompt string) (*reading.Illustration, error) {
	res, err := s.gemini.Models.GenerateImages(ctx, model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, err
	}
	if res == nil || len(res.GeneratedImages) == 0 || res.GeneratedImages[0].Image == nil {
		return nil, errors.New("image model returned no images")
	}

	img := res.GeneratedImages[0].Image
	if len(img.ImageBytes) == 0 {
		return nil, errors.New("image model returned empty image")
	}

	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return &reading.Illustration{MIMEType: mime, Data: img.ImageBytes}, nil
}

// generateSpeech synthesizes the reading script via the TTS model. Gemini
// returns raw PCM (audio/L16); it is wrapped into a WAV container so the
// stored audio plays anywhere without extra client logic.
func (s *Service) generateSpeech(ctx context.Context, model, script, voice string) (reading.Audio, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
	}
	if strings.TrimSpace(voice) != "" {
		cfg.SpeechConfig = &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		}
	}

	res, err := s.gemini.Models.GenerateContent(ctx, model, []*genai.Content{
		genai.NewContentFromText(script, genai.RoleUser),
	}, cfg)
	if err != nil {
		return reading.Audio{}, err
	}

	for _, cand := range res.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			return containAudio(part.InlineData.MIMEType, part.InlineData.Data), nil
		}
	}
	return reading.Audio{}, errors.New("speech model returned no audio")
}

// containAudio wraps raw L16 PCM into WAV; already-containerized audio is
// passed through unchanged.
func containAudio(mime string, data []byte) reading.Audio {
	if !strings.HasPrefix(strings.ToLower(mime), "audio/l16") {
		if mime == "" {
			mime = "application/octet-stream"
		}
		return reading.Audio{MIMEType: mime, Data: data}
	}
	return reading.Audio{
		MIMEType: "audio/wav",
		Data:     wavFromPCM(data, sampleRateFromMIME(mime)),
	}
}

// sampleRateFromMIME parses "audio/L16;rate=24000"-style parameters.
func sampleRateFromMIME(mime string) int {
	for _, param := range strings.Split(mime, ";") {
		param = strings.TrimSpace(param)
		if value, ok := strings.CutPrefix(param, "rate="); ok {
			if rate, err := strconv.Atoi(value); err == nil && rate > 0 {
				return rate
			}
		}
	}
	return 24000
}

// wavFromPCM prepends a canonical 44-byte WAV header (mono, 16-bit).
func wavFromPCM(pcm []byte, sampleRate int) []byte {
	const (
		channels      = 1
		bitsPerSample = 16
	)
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	out := make([]byte, 0, 44+len(pcm))
	out = append(out, []byte("RIFF")...)
	out = binary.LittleEndian.AppendUint32(out, uint32(36+len(pcm)))
	out = append(out, []byte("WAVE")...)
	out = append(out, []byte("fmt ")...)
	out = binary.LittleEndian.AppendUint32(out, 16)
	out = binary.LittleEndian.AppendUint16(out, 1) // PCM
	out = binary.LittleEndian.AppendUint16(out, channels)
	out = binary.LittleEndian.AppendUint32(out, uint32(sampleRate))
	out = binary.LittleEndian.AppendUint32(out, uint32(byteRate))
	out = binary.LittleEndian.AppendUint16(out, uint16(blockAlign))
	out = binary.LittleEndian.AppendUint16(out, bitsPerSample)
	out = append(out, []byte("data")...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(pcm)))
	out = append(out, pcm...)
	return out
}
