// Package voice captures spoken requests and reads results aloud. Audio
// capture and playback are delegated to external commands.
package voice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/mattn/go-shellwords"
)

var (
	// ErrUnintelligible means the audio produced no transcript.
	ErrUnintelligible = errors.New("sorry, I couldn't understand the audio")
	// ErrUnavailable means the speech service could not be reached.
	ErrUnavailable = errors.New("could not request results from the speech recognition service")
	// ErrDisabled means voice support is turned off.
	ErrDisabled = errors.New("voice input is disabled")
)

// Transcriber converts a recorded audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Speaker reads text aloud without blocking the caller.
type Speaker interface {
	Say(text string)
}

// Announcement is spoken after a successful execution.
func Announcement(rows int) string {
	return fmt.Sprintf("The query executed successfully and returned %d rows.", rows)
}

// CommandRunner abstracts command execution for testability.
type CommandRunner interface {
	Run(ctx context.Context, name string, args []string) (stderr string, err error)
}

// ExecRunner implements CommandRunner with exec.CommandContext.
type ExecRunner struct{}

// Run executes the command and returns its stderr.
func (ExecRunner) Run(ctx context.Context, name string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.Stdout = io.Discard
	err := cmd.Run()
	return stderr.String(), err
}

// expand splits a command template with shell quoting rules and substitutes
// {file} in each word.
func expand(template, file string) (string, []string, error) {
	fields, err := shellwords.Parse(template)
	if err != nil {
		return "", nil, fmt.Errorf("parse command %q: %w", template, err)
	}
	if len(fields) == 0 {
		return "", nil, errors.New("empty command")
	}
	for i, f := range fields {
		fields[i] = strings.ReplaceAll(f, "{file}", file)
	}
	return fields[0], fields[1:], nil
}

func runTemplate(ctx context.Context, r CommandRunner, template, file string) error {
	name, args, err := expand(template, file)
	if err != nil {
		return err
	}
	stderr, err := r.Run(ctx, name, args)
	if err != nil {
		if s := strings.TrimSpace(stderr); s != "" {
			return fmt.Errorf("%s: %w: %s", name, err, s)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Recorder captures audio by running a command such as
// "arecord -q -d 5 -f cd {file}".
type Recorder struct {
	command string
	runner  CommandRunner
}

// NewRecorder creates a recorder. A nil runner uses ExecRunner.
func NewRecorder(command string, runner CommandRunner) *Recorder {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Recorder{command: command, runner: runner}
}

// Record captures one utterance into a temp file and returns its path. The
// caller removes the file.
func (r *Recorder) Record(ctx context.Context) (string, error) {
	f, err := os.CreateTemp("", "askdb-*.wav")
	if err != nil {
		return "", fmt.Errorf("create audio file: %w", err)
	}
	path := f.Name()
	_ = f.Close()

	if err := runTemplate(ctx, r.runner, r.command, path); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("record: %w", err)
	}
	return path, nil
}

// Listener records an utterance and transcribes it.
type Listener struct {
	recorder    *Recorder
	transcriber Transcriber
}

// NewListener creates a listener.
func NewListener(r *Recorder, t Transcriber) *Listener {
	return &Listener{recorder: r, transcriber: t}
}

// Listen returns the transcript of one utterance.
func (l *Listener) Listen(ctx context.Context) (string, error) {
	if l == nil || l.recorder == nil {
		return "", ErrDisabled
	}
	path, err := l.recorder.Record(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = os.Remove(path) }()
	return l.transcriber.Transcribe(ctx, path)
}

// NopSpeaker discards everything.
type NopSpeaker struct{}

// Say does nothing.
func (NopSpeaker) Say(string) {}

// NopTranscriber always reports ErrDisabled.
type NopTranscriber struct{}

// Transcribe returns ErrDisabled.
func (NopTranscriber) Transcribe(context.Context, string) (string, error) {
	return "", ErrDisabled
}
