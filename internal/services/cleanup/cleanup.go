package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xiaotaozi1127/story-teller-backend/pkg/logger"
)

// Target names the leftover files of one directory. Only files whose name
// starts with Prefix are removed.
type Target struct {
	Dir    string
	Prefix string
}

// Service removes abandoned temporary files: spooled voice uploads and
// partial audio writes
type Service struct {
	targets         []Target
	maxAge          time.Duration
	cleanupInterval time.Duration
	cancel          context.CancelFunc
	done            chan struct{}
	now             func() time.Time
}

// NewService creates a new cleanup service
func NewService(maxAge, cleanupInterval time.Duration, targets ...Target) *Service {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Hour
	}
	return &Service{
		targets:         targets,
		maxAge:          maxAge,
		cleanupInterval: cleanupInterval,
		now:             time.Now,
	}
}

// Start runs one sweep and then sweeps periodically until Stop
func (s *Service) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	s.Sweep(ctx)

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Sweep(ctx)
			case <-ctx.Done():
				logger.StdLogger().Info("Cleanup service stopped")
				return
			}
		}
	}()

	logger.Infof(ctx, "Cleanup service started (interval: %v, max age: %v)", s.cleanupInterval, s.maxAge)
}

// Stop stops the cleanup service
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
}

// Sweep removes matching files older than maxAge and returns how many were
// removed
func (s *Service) Sweep(ctx context.Context) int {
	removed := 0
	for _, target := range s.targets {
		if _, err := os.Stat(target.Dir); os.IsNotExist(err) {
			continue
		}

		err := filepath.WalkDir(target.Dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil // Skip files with errors
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if d.IsDir() {
				if path != target.Dir {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasPrefix(d.Name(), target.Prefix) {
				return nil
			}

			info, err := d.Info()
			if err != nil || s.now().Sub(info.ModTime()) <= s.maxAge {
				return nil
			}

			logger.Debugf(ctx, "Removing old temp file: %s", path)
			if err := os.Remove(path); err != nil {
				logger.Warnf(ctx, "Failed to remove temp file %s: %v", path, err)
				return nil
			}
			removed++
			return nil
		})
		if err != nil && ctx.Err() == nil {
			logger.Errorf(ctx, "Cleanup walk error in %s: %v", target.Dir, err)
		}
	}
	return removed
}
