package ffmpeg

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFFmpegNotFound    = errors.New("ffmpeg binary not found")
	ErrFFprobeNotFound   = errors.New("ffprobe binary not found")
	ErrInvalidAudioFile  = errors.New("invalid or unsupported audio file")
	ErrProcessingTimeout = errors.New("audio processing timeout")
)

// maxStderrLines bounds how much tool output an error carries. ffmpeg
// prints its banner and stream info before the line that matters.
const maxStderrLines = 3

// ProcessingError is a failed ffmpeg or ffprobe run on one voice sample
type ProcessingError struct {
	Operation string
	File      string
	Err       error
	Stderr    string
}

func (e *ProcessingError) Error() string {
	msg := fmt.Sprintf("ffmpeg %s failed for %s: %v", e.Operation, e.File, e.Err)
	if e.Stderr == "" {
		return msg
	}
	return msg + " (stderr: " + e.Stderr + ")"
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// NewProcessingError keeps only the last lines of stderr
func NewProcessingError(operation, file string, err error, stderr string) *ProcessingError {
	return &ProcessingError{
		Operation: operation,
		File:      file,
		Err:       err,
		Stderr:    stderrTail(stderr),
	}
}

func stderrTail(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	if len(lines) > maxStderrLines {
		lines = lines[len(lines)-maxStderrLines:]
	}
	return strings.TrimSpace(strings.Join(lines, " | "))
}
