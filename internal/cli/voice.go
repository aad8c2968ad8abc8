package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joacominatel/askdb/internal/voice"
)

func newTranscribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe a recorded request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := fromContext(cmd.Context())

			key := rt.cfg.SpeechKey()
			if key == "" {
				return fmt.Errorf("%w: no OpenAI API key", voice.ErrDisabled)
			}
			tr := voice.NewOpenAITranscriber(key, rt.cfg.Voice.BaseURL, rt.cfg.Voice.TranscribeModel)
			text, err := tr.Transcribe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
}
