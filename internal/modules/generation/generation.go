package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	appcfg "github.com/readaloud/core/internal/config"
	"github.com/readaloud/core/internal/modules/reading"
	"go.uber.org/zap"
	genai "google.golang.org/genai"
)

const (
	defaultTranscribeModel = "gemini-2.5-flash"
	defaultSolveModel      = "gemini-2.5-flash"
	defaultSuggestModel    = "gemini-2.5-flash"
	defaultSpeechModel     = "gemini-2.5-flash-preview-tts"
	defaultImageModel      = "imagen-3.0-generate-002"
)

// Service implements reading.Gateway against the configured generation
// providers. Transcription, speech synthesis, and illustrations require a
// Gemini provider (multimodal input, TTS, and image generation); solving and
// topic suggestion can be assigned to any configured text provider.
type Service struct {
	ai     appcfg.AIConfig
	reader appcfg.ReaderConfig
	log    *zap.Logger

	gemini         *genai.Client
	geminiProvider *appcfg.AIProvider

	// generate is the Gemini text-generation call, held as a field so tests
	// can substitute it.
	generate func(ctx context.Context, model, system, prompt string, input reading.Input, safety []*genai.SafetySetting) (string, error)
}

func New(ctx context.Context, cfg *appcfg.AppConfig, log *zap.Logger) (*Service, error) {
	svc := &Service{
		ai:     cfg.AI,
		reader: cfg.Reader,
		log:    log,
	}

	for i := range cfg.AI.Providers {
		p := cfg.AI.Providers[i]
		if p.Enabled && isGeminiProvider(p) {
			selected := p
			svc.geminiProvider = &selected
			break
		}
	}

	if svc.geminiProvider == nil {
		return nil, errors.New("no enabled Gemini provider: transcription and speech synthesis require one")
	}
	if strings.TrimSpace(svc.geminiProvider.APIKey) == "" {
		return nil, errors.New("gemini provider api key is empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: svc.geminiProvider.APIKey})
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	svc.gemini = client
	svc.generate = svc.generateWithGemini

	return svc, nil
}

func isGeminiProvider(p appcfg.AIProvider) bool {
	t := strings.ToLower(strings.TrimSpace(p.Type))
	return t == "gemini" || t == "google"
}

// resolveModel picks the model for an operation: explicit assignment first,
// then the provider default, then the built-in default.
func (s *Service) resolveModel(assignment *appcfg.AIModelAssignment, fallback string) string {
	if assignment != nil && strings.TrimSpace(assignment.Model) != "" {
		return strings.TrimSpace(assignment.Model)
	}
	if s.geminiProvider != nil && strings.TrimSpace(s.geminiProvider.DefaultModel) != "" {
		return strings.TrimSpace(s.geminiProvider.DefaultModel)
	}
	return fallback
}

// textProviderFor returns the non-Gemini provider assigned to an operation,
// or nil when the operation should run on Gemini.
func (s *Service) textProviderFor(assignment *appcfg.AIModelAssignment) *appcfg.AIProvider {
	if assignment == nil {
		return nil
	}
	provider := s.ai.ProviderByID(assignment.ProviderID)
	if provider == nil || isGeminiProvider(*provider) {
		return nil
	}
	if strings.TrimSpace(assignment.Model) != "" {
		provider.DefaultModel = strings.TrimSpace(assignment.Model)
	}
	return provider
}

// Transcribe runs the ordered strategy list: a faithful primary prompt, and
// on a content-policy rejection exactly one conservative retry. An ordinary
// failure of any strategy is terminal; only rejections fall through.
func (s *Service) Transcribe(ctx context.Context, input reading.Input) (reading.Transcript, error) {
	model := s.resolveModel(s.ai.TranscribeModel, defaultTranscribeModel)

	for i, strategy := range transcribeStrategies {
		raw, err := s.generate(ctx, model, strategy.system, strategy.prompt(input), input, strategy.safety)
		if err != nil {
			if errors.Is(err, reading.ErrContentRejected) && i < len(transcribeStrategies)-1 {
				s.log.Warn("transcription strategy rejected, retrying with fallback",
					zap.String("strategy", strategy.name), zap.Error(err))
				continue
			}
			return reading.Transcript{}, fmt.Errorf("%w: strategy %s: %v", reading.ErrTranscriptionFailed, strategy.name, err)
		}

		transcript, err := parseTranscript(raw)
		if err != nil {
			return reading.Transcript{}, fmt.Errorf("%w: strategy %s: %v", reading.ErrTranscriptionFailed, strategy.name, err)
		}
		return transcript, nil
	}

	return reading.Transcript{}, reading.ErrTranscriptionFailed
}

// Solve generates solved sub-problems, attaching an illustration only to
// items the model marks as needing a visual aid.
func (s *Service) Solve(ctx context.Context, displayScript string, input reading.Input) ([]reading.SolutionItem, error) {
	system, prompt := buildSolvePrompt(displayScript)

	var raw string
	var err error
	if provider := s.textProviderFor(s.ai.SolveModel); provider != nil {
		raw, err = generateText(ctx, provider, system, prompt, 4096)
	} else {
		model := s.resolveModel(s.ai.SolveModel, defaultSolveModel)
		raw, err = s.generate(ctx, model, system, prompt, input, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}

	var parsed []solvedItem
	if err := unmarshalModelJSON(raw, &parsed); err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}

	items := make([]reading.SolutionItem, 0, len(parsed))
	for _, p := range parsed {
		if strings.TrimSpace(p.Question) == "" {
			continue
		}
		item := reading.SolutionItem{
			Question:        strings.TrimSpace(p.Question),
			QuestionReading: fallbackText(p.QuestionReading, p.Question),
			Solution:        strings.TrimSpace(p.Solution),
			SolutionReading: fallbackText(p.SolutionReading, p.Solution),
		}
		if s.reader.GenerateIllustrations && p.NeedsIllustration {
			if il := s.illustrate(ctx, p); il != nil {
				item.Illustration = il
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// illustrate materializes one item's visual aid: model-provided SVG markup
// wins, otherwise the image model renders the illustration prompt. Failures
// degrade to no illustration.
func (s *Service) illustrate(ctx context.Context, item solvedItem) *reading.Illustration {
	if svg := strings.TrimSpace(item.IllustrationSVG); svg != "" {
		return &reading.Illustration{SVG: svg}
	}

	prompt := strings.TrimSpace(item.IllustrationPrompt)
	if prompt == "" {
		return nil
	}

	model := s.resolveModel(s.ai.ImageModel, defaultImageModel)
	image, err := s.generateImage(ctx, model, prompt)
	if err != nil {
		s.log.Warn("illustration generation failed, continuing without", zap.Error(err))
		return nil
	}
	return image
}

// SuggestRelatedTopics proposes follow-up topics, bounded by configuration.
func (s *Service) SuggestRelatedTopics(ctx context.Context, displayScript string) ([]reading.RelatedTopic, error) {
	limit := s.reader.RelatedTopicLimit
	if limit <= 0 {
		limit = 3
	}
	system, prompt := buildSuggestPrompt(displayScript, limit)

	var raw string
	var err error
	if provider := s.textProviderFor(s.ai.SuggestModel); provider != nil {
		raw, err = generateText(ctx, provider, system, prompt, 512)
	} else {
		model := s.resolveModel(s.ai.SuggestModel, defaultSuggestModel)
		raw, err = s.generate(ctx, model, system, prompt, reading.Input{}, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("suggest related topics: %w", err)
	}

	var parsed []reading.RelatedTopic
	if err := unmarshalModelJSON(raw, &parsed); err != nil {
		return nil, fmt.Errorf("suggest related topics: %w", err)
	}

	topics := make([]reading.RelatedTopic, 0, limit)
	for _, t := range parsed {
		if strings.TrimSpace(t.Title) == "" {
			continue
		}
		if strings.TrimSpace(t.SearchQuery) == "" {
			t.SearchQuery = t.Title
		}
		topics = append(topics, t)
		if len(topics) == limit {
			break
		}
	}
	return topics, nil
}

// SynthesizeSpeech renders the reading-form script through the Gemini TTS
// model. Any failure wraps ErrSynthesisFailed; the pipeline treats it as
// fatal so a stored record always carries audio.
func (s *Service) SynthesizeSpeech(ctx context.Context, readingScript string) (reading.Audio, error) {
	if strings.TrimSpace(readingScript) == "" {
		return reading.Audio{}, fmt.Errorf("%w: reading script is empty", reading.ErrSynthesisFailed)
	}

	model := s.resolveModel(s.ai.SpeechModel, defaultSpeechModel)
	audio, err := s.generateSpeech(ctx, model, readingScript, s.reader.SpeechVoice)
	if err != nil {
		return reading.Audio{}, fmt.Errorf("%w: %v", reading.ErrSynthesisFailed, err)
	}
	return audio, nil
}

func fallbackText(primary, fallback string) string {
	if trimmed := strings.TrimSpace(primary); trimmed != "" {
		return trimmed
	}
	return strings.TrimSpace(fallback)
}
