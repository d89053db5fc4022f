package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/mattn/go-shellwords"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/audio"
)

// ExecSynth runs an external command per call. The request is written to
// stdin as JSON and the command must print a WAV file on stdout.
type ExecSynth struct {
	cmd     []string
	timeout time.Duration
}

// NewExecSynth parses command with shell quoting rules
func NewExecSynth(command string, timeout time.Duration) (*ExecSynth, error) {
	parser := shellwords.NewParser()
	parser.ParseEnv = true
	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse tts command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("tts command is empty")
	}
	return &ExecSynth{cmd: args, timeout: timeout}, nil
}

// Synthesize runs the command for req
func (e *ExecSynth) Synthesize(ctx context.Context, req Request) (*Result, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode tts request: %w", err)
	}

	command := exec.CommandContext(ctx, e.cmd[0], e.cmd[1:]...)
	var stdout, stderr bytes.Buffer
	command.Stdin = bytes.NewReader(payload)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("tts command: %w", ctxErr)
		}
		return nil, fmt.Errorf("tts command failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	samples, rate, err := audio.DecodeWAV(bytes.NewReader(stdout.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("decode tts output: %w", err)
	}

	return &Result{Samples: samples, SampleRate: rate}, nil
}
