package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tejashwikalptaru/vizwave/internal/domain"
	"github.com/tejashwikalptaru/vizwave/internal/ports"
)

// SourceService plays one audio source at a time and feeds what it plays
// into the analyser the render loop reads from.
//
// Starting a source stops the previous one first. A session ends when its
// stream runs out, when it fails, or when Stop is called; in every case the
// stream is closed and a SourceClosedEvent is published exactly once.
//
// Thread-safety: all methods may be called from any goroutine.
type SourceService struct {
	// Dependencies (injected)
	logger     *slog.Logger
	opener     ports.SourceOpener
	output     ports.AudioOutput
	analyser   ports.Analyser
	repository ports.ConfigRepository
	bus        ports.EventBus

	// Serializes session switches. Event handlers run on the session
	// goroutine and must not call StartStream, Stop or Close.
	opMu sync.Mutex

	mu      sync.Mutex
	session *session
	closed  bool
}

// session is one playing stream.
type session struct {
	info   domain.SourceInfo
	cancel context.CancelFunc
	group  *errgroup.Group
	done   chan struct{}
}

func (s *session) ended() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// NewSourceService creates an idle source service.
func NewSourceService(
	logger *slog.Logger,
	opener ports.SourceOpener,
	output ports.AudioOutput,
	analyser ports.Analyser,
	repository ports.ConfigRepository,
	bus ports.EventBus,
) *SourceService {
	logger.Debug("source service initialized")
	return &SourceService{
		logger:     logger,
		opener:     opener,
		output:     output,
		analyser:   analyser,
		repository: repository,
		bus:        bus,
	}
}

// OpenFile decodes the file at path and starts playing it. The path is
// remembered for ResumeLast.
func (s *SourceService) OpenFile(path string) (domain.SourceInfo, error) {
	s.logger.Debug("opening file", slog.String("path", path))

	stream, info, err := s.opener.Open(path)
	if err != nil {
		s.logger.Warn("failed to open source", slog.String("path", path), slog.Any("error", err))
		s.bus.Publish(domain.NewSourceErrorEvent(path, err))
		return domain.SourceInfo{}, err
	}

	if err := s.StartStream(stream, info); err != nil {
		return domain.SourceInfo{}, err
	}

	if err := s.repository.SaveSourcePath(path); err != nil {
		s.logger.Warn("failed to remember source path", slog.Any("error", err))
	}
	return info, nil
}

// StartStream plays an already opened stream. The service takes ownership
// of the stream and closes it when the session ends.
func (s *SourceService) StartStream(stream ports.PCMStream, info domain.SourceInfo) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if s.isClosed() {
		_ = stream.Close()
		return domain.NewServiceError("SourceService", "StartStream", "service closed", domain.ErrNotInitialized)
	}
	s.stopSession()

	s.analyser.Reset()

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	sess := &session{
		info:   info,
		cancel: cancel,
		group:  g,
		done:   make(chan struct{}),
	}
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()

	s.logger.Info("source started",
		slog.String("kind", string(info.Kind)),
		slog.String("name", info.DisplayName()))
	s.bus.Publish(domain.NewSourceOpenedEvent(info))

	g.Go(func() error {
		return s.play(gctx, sess, stream)
	})
	return nil
}

// play runs on the session goroutine until the stream ends or is cancelled.
func (s *SourceService) play(ctx context.Context, sess *session, stream ports.PCMStream) error {
	defer close(sess.done)

	err := s.output.Play(ctx, stream, s.analyser)
	if cerr := stream.Close(); cerr != nil {
		s.logger.Debug("failed to close stream", slog.Any("error", cerr))
	}

	cancelled := errors.Is(err, context.Canceled)
	switch {
	case err == nil:
		s.logger.Info("source ended", slog.String("name", sess.info.DisplayName()))
	case cancelled:
		s.logger.Debug("source stopped", slog.String("name", sess.info.DisplayName()))
	default:
		s.logger.Error("playback failed", slog.String("name", sess.info.DisplayName()), slog.Any("error", err))
		s.bus.Publish(domain.NewSourceErrorEvent(sess.info.Path, err))
	}
	s.bus.Publish(domain.NewSourceClosedEvent(sess.info, err == nil))

	if cancelled {
		return nil
	}
	return err
}

// Stop ends the current session and waits for it to wind down. Stopping
// with nothing playing returns domain.ErrNotRunning.
func (s *SourceService) Stop() error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if !s.stopSession() {
		return domain.ErrNotRunning
	}
	return nil
}

// stopSession cancels the session and waits for it. It reports whether
// there was one. Must be called with s.opMu held.
func (s *SourceService) stopSession() bool {
	s.mu.Lock()
	sess := s.session
	s.session = nil
	s.mu.Unlock()

	if sess == nil {
		return false
	}
	sess.cancel()
	if err := sess.group.Wait(); err != nil {
		s.logger.Debug("session ended with error", slog.Any("error", err))
	}
	return true
}

func (s *SourceService) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Current returns the info of the playing source.
func (s *SourceService) Current() (domain.SourceInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil || s.session.ended() {
		return domain.SourceInfo{}, false
	}
	return s.session.info, true
}

// ActiveSource returns the analyser while a source is playing and nil
// otherwise, so the render loop skips frames when there is nothing to show.
func (s *SourceService) ActiveSource() ports.AnalysisSource {
	if _, ok := s.Current(); !ok {
		return nil
	}
	return s.analyser
}

// Done returns a channel closed when the current session ends, or nil when
// idle.
func (s *SourceService) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil
	}
	return s.session.done
}

// ResumeLast reopens the last file opened through OpenFile.
func (s *SourceService) ResumeLast() (domain.SourceInfo, error) {
	path, err := s.repository.LoadSourcePath()
	if err != nil {
		return domain.SourceInfo{}, fmt.Errorf("load last source: %w", err)
	}
	if path == "" {
		return domain.SourceInfo{}, domain.ErrSourceUnavailable
	}
	return s.OpenFile(path)
}

// Close stops playback and closes the output. Later starts fail.
func (s *SourceService) Close() error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.stopSession()

	s.logger.Debug("source service closed")
	return s.output.Close()
}
