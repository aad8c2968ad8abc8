package voice

import (
	"log/slog"

	"github.com/joacominatel/askdb/internal/config"
)

// FromConfig builds the listener and speaker for the voice settings. When
// voice is disabled or no OpenAI key is available the listener is nil and
// the speaker is a NopSpeaker.
func FromConfig(cfg config.Voice, apiKey string, log *slog.Logger) (*Listener, Speaker) {
	if !cfg.Enabled || apiKey == "" {
		return nil, NopSpeaker{}
	}

	tr := NewOpenAITranscriber(apiKey, cfg.BaseURL, cfg.TranscribeModel)
	listener := NewListener(NewRecorder(cfg.RecordCommand, nil), tr)

	var speaker Speaker = NopSpeaker{}
	if cfg.PlayerCommand != "" {
		speaker = NewOpenAISpeaker(apiKey, cfg.BaseURL, cfg.SpeechModel, cfg.SpeechVoice, cfg.PlayerCommand, nil, log)
	}
	return listener, speaker
}
