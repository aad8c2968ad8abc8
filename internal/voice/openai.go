package voice

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const speechTimeout = 60 * time.Second

func newClient(apiKey, baseURL string, opts []option.RequestOption) openai.Client {
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	return openai.NewClient(append(reqOpts, opts...)...)
}

// OpenAITranscriber implements Transcriber with the audio transcriptions API.
type OpenAITranscriber struct {
	client openai.Client
	model  string
}

// NewOpenAITranscriber creates a transcriber for model, e.g. "whisper-1".
func NewOpenAITranscriber(apiKey, baseURL, model string, opts ...option.RequestOption) *OpenAITranscriber {
	return &OpenAITranscriber{client: newClient(apiKey, baseURL, opts), model: model}
}

// Transcribe uploads the audio file. Service failures wrap ErrUnavailable and
// an empty transcript is ErrUnintelligible.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("open audio: %w", err)
	}
	defer func() { _ = f.Close() }()

	resp, err := t.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  f,
		Model: openai.AudioModel(t.model),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrUnintelligible
	}
	return text, nil
}

// OpenAISpeaker synthesizes speech with the audio speech API and plays it with
// a command such as "aplay -q {file}".
type OpenAISpeaker struct {
	client openai.Client
	model  string
	voice  string
	player string
	runner CommandRunner
	log    *slog.Logger
}

// NewOpenAISpeaker creates a speaker. A nil runner uses ExecRunner.
func NewOpenAISpeaker(apiKey, baseURL, model, voice, player string, runner CommandRunner, log *slog.Logger, opts ...option.RequestOption) *OpenAISpeaker {
	if runner == nil {
		runner = ExecRunner{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &OpenAISpeaker{
		client: newClient(apiKey, baseURL, opts),
		model:  model,
		voice:  voice,
		player: player,
		runner: runner,
		log:    log,
	}
}

// Say starts playback in the background. Nothing is reported back; failures
// are logged.
func (s *OpenAISpeaker) Say(text string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), speechTimeout)
		defer cancel()
		if err := s.speak(ctx, text); err != nil {
			s.log.Warn("speech playback failed", "error", err)
		}
	}()
}

func (s *OpenAISpeaker) speak(ctx context.Context, text string) error {
	resp, err := s.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Input:          text,
		Model:          openai.SpeechModel(s.model),
		Voice:          openai.AudioSpeechNewParamsVoice(s.voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormat("wav"),
	})
	if err != nil {
		return fmt.Errorf("synthesize speech: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	f, err := os.CreateTemp("", "askdb-speech-*.wav")
	if err != nil {
		return fmt.Errorf("create audio file: %w", err)
	}
	path := f.Name()
	defer func() { _ = os.Remove(path) }()

	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		return fmt.Errorf("write audio: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write audio: %w", err)
	}

	return runTemplate(ctx, s.runner, s.player, path)
}
