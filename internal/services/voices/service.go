package voices

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xiaotaozi1127/story-teller-backend/internal/models"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/audio"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/config"
	apperrors "github.com/xiaotaozi1127/story-teller-backend/pkg/errors"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/logger"
)

// referenceSampleRate is the rate transcoded voice samples are stored at
const referenceSampleRate = 24000

// RegisterRequest is an uploaded reference voice sample
type RegisterRequest struct {
	Name     string
	Language string
	Filename string
	Content  io.Reader
}

// Service validates and stores reference voices
type Service struct {
	repo     Repository
	prober   Prober
	tempDir  string
	voiceDir string
	cfg      config.VoicesConfig

	newID func() string
	now   func() time.Time
}

// NewService creates a voice service. prober may be nil, in which case only
// WAV samples are accepted.
func NewService(repo Repository, prober Prober, tempDir, voiceDir string, cfg config.VoicesConfig) (*Service, error) {
	for _, dir := range []string{tempDir, voiceDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create voice directory %s: %w", dir, err)
		}
	}
	return &Service{
		repo:     repo,
		prober:   prober,
		tempDir:  tempDir,
		voiceDir: voiceDir,
		cfg:      cfg,
		newID:    uuid.NewString,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Register checks the sample duration and stores it as a new voice
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.Voice, error) {
	if req.Content == nil {
		return nil, apperrors.InvalidInput("voice", "no audio uploaded")
	}

	ext := strings.ToLower(filepath.Ext(req.Filename))
	if ext == "" {
		ext = ".wav"
	}

	spooled, err := s.spool(req.Content, ext)
	if err != nil {
		return nil, err
	}
	defer os.Remove(spooled)

	duration, err := s.duration(ctx, spooled, ext)
	if err != nil {
		return nil, err
	}

	minDur, maxDur := s.cfg.MinDuration.Seconds(), s.cfg.MaxDuration.Seconds()
	if duration < minDur || (maxDur > 0 && duration > maxDur) {
		return nil, apperrors.InvalidInput("voice",
			fmt.Sprintf("sample is %.1fs, must be between %.0f and %.0f seconds", duration, minDur, maxDur)).
			WithDetail("duration_sec", duration)
	}

	source, ext, err := s.normalize(ctx, spooled, ext)
	if err != nil {
		return nil, err
	}
	if source != spooled {
		defer os.Remove(source)
	}

	id := s.newID()
	dest := filepath.Join(s.voiceDir, id+ext)
	if err := moveFile(source, dest); err != nil {
		return nil, apperrors.Internal("failed to store voice sample", err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(req.Filename), filepath.Ext(req.Filename))
	}
	if name == "" || name == "." {
		name = "voice-" + id[:8]
	}

	voice := &models.Voice{
		ID:          id,
		Name:        name,
		Language:    strings.TrimSpace(req.Language),
		AudioPath:   dest,
		DurationSec: duration,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, voice); err != nil {
		os.Remove(dest)
		return nil, err
	}

	logger.Infof(ctx, "Registered voice %s (%s, %.1fs)", voice.ID, voice.Name, voice.DurationSec)
	return voice, nil
}

// spool copies the upload into the temp directory
func (s *Service) spool(content io.Reader, ext string) (string, error) {
	f, err := os.CreateTemp(s.tempDir, "voice_*"+ext)
	if err != nil {
		return "", apperrors.Internal("failed to spool upload", err)
	}
	defer f.Close()

	reader := content
	if s.cfg.MaxUploadSize > 0 {
		reader = io.LimitReader(content, s.cfg.MaxUploadSize+1)
	}
	n, err := io.Copy(f, reader)
	if err != nil {
		os.Remove(f.Name())
		return "", apperrors.Internal("failed to spool upload", err)
	}
	if s.cfg.MaxUploadSize > 0 && n > s.cfg.MaxUploadSize {
		os.Remove(f.Name())
		return "", apperrors.InvalidInput("voice", fmt.Sprintf("file exceeds %d bytes", s.cfg.MaxUploadSize))
	}
	if n == 0 {
		os.Remove(f.Name())
		return "", apperrors.InvalidInput("voice", "file is empty")
	}
	return f.Name(), nil
}

// duration reads WAV headers directly and falls back to the prober for
// everything else
func (s *Service) duration(ctx context.Context, path, ext string) (float64, error) {
	if ext == ".wav" {
		f, err := os.Open(path)
		if err != nil {
			return 0, apperrors.Internal("failed to read upload", err)
		}
		seconds, wavErr := audio.WAVDuration(f)
		f.Close()
		if wavErr == nil {
			return seconds, nil
		}
		if s.prober == nil {
			return 0, apperrors.InvalidInput("voice", "unreadable WAV file").WithCause(wavErr)
		}
	}

	if s.prober == nil {
		return 0, apperrors.InvalidInput("voice", fmt.Sprintf("unsupported format %q, upload a WAV file", ext))
	}
	seconds, err := s.prober.Duration(ctx, path)
	if err != nil {
		return 0, apperrors.InvalidInput("voice", "unreadable audio file").WithCause(err)
	}
	return seconds, nil
}

// normalize transcodes non-WAV samples to WAV when the prober supports it
func (s *Service) normalize(ctx context.Context, path, ext string) (string, string, error) {
	if ext == ".wav" {
		return path, ext, nil
	}
	transcoder, ok := s.prober.(Transcoder)
	if !ok {
		return path, ext, nil
	}

	out := strings.TrimSuffix(path, ext) + ".wav"
	if err := transcoder.ConvertToWAV(ctx, path, out, referenceSampleRate); err != nil {
		os.Remove(out)
		return "", "", apperrors.InvalidInput("voice", "could not convert sample to WAV").WithCause(err)
	}
	return out, ".wav", nil
}

func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	// Rename fails across filesystems
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return errors.Join(err, os.Remove(dst))
	}
	return os.Remove(src)
}

// Get returns a registered voice
func (s *Service) Get(ctx context.Context, id string) (*models.Voice, error) {
	return s.repo.Get(ctx, id)
}

// List returns every registered voice, oldest first
func (s *Service) List(ctx context.Context) ([]models.Voice, error) {
	return s.repo.List(ctx)
}

// Delete unregisters a voice and removes its sample file
func (s *Service) Delete(ctx context.Context, id string) error {
	voice, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := os.Remove(voice.AudioPath); err != nil && !os.IsNotExist(err) {
		logger.Warnf(ctx, "Failed to remove voice sample %s: %v", voice.AudioPath, err)
	}
	return nil
}
