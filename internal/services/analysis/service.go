package analysis

import (
	"context"
	"sync"
	"time"

	"hermes/internal/analysis"
	"hermes/internal/domain/session"
	"hermes/internal/metrics"
	"hermes/internal/report"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// runTimeout bounds one analysis run end to end
const runTimeout = 10 * time.Minute

// Notifier delivers messages to a chat
type Notifier interface {
	SendMessage(chatID int64, text string) error
}

// Service runs analyses on behalf of chats: one run per chat at a time,
// executed in the background, with the report delivered to the chat when the
// pipeline finishes.
type Service struct {
	pipeline *analysis.Pipeline
	reports  *report.Generator
	notifier Notifier
	sessions session.Repository

	mu      sync.Mutex
	running map[int64]context.CancelFunc

	log *logger.Logger
}

// NewService creates the analysis service
func NewService(pipeline *analysis.Pipeline, reports *report.Generator, notifier Notifier, sessions session.Repository) *Service {
	return &Service{
		pipeline: pipeline,
		reports:  reports,
		notifier: notifier,
		sessions: sessions,
		running:  make(map[int64]context.CancelFunc),
		log:      logger.Get().With("component", "analysis_service"),
	}
}

// Start launches an analysis run for a chat in the background. The passed
// context only covers the start itself; the run gets its own context so it
// survives the Telegram update that triggered it.
func (s *Service) Start(_ context.Context, chatID int64, currency string, days int) error {
	s.mu.Lock()
	if _, ok := s.running[chatID]; ok {
		s.mu.Unlock()
		return errors.Wrapf(errors.ErrAnalysisRunning, "chat_id=%d", chatID)
	}

	runCtx, cancel := context.WithTimeout(context.Background(), runTimeout)
	s.running[chatID] = cancel
	s.mu.Unlock()

	go s.run(runCtx, chatID, currency, days)
	return nil
}

// Running reports whether an analysis is in flight for the chat
func (s *Service) Running(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.running[chatID]
	return ok
}

// Cancel stops the chat's running analysis
func (s *Service) Cancel(chatID int64) bool {
	s.mu.Lock()
	cancel, ok := s.running[chatID]
	s.mu.Unlock()

	if ok {
		cancel()
	}
	return ok
}

func (s *Service) run(ctx context.Context, chatID int64, currency string, days int) {
	defer s.finish(chatID)

	ac := analysis.NewContext(currency, days)
	ac.Progress = func(message string) {
		if err := s.notifier.SendMessage(chatID, message); err != nil {
			s.log.Debugw("progress message dropped", "chat_id", chatID, "error", err)
		}
	}

	log := s.log.With("run_id", ac.RunID, "chat_id", chatID, "currency", currency, "days", days)
	log.Infow("starting analysis run")

	s.pipeline.Run(ctx, ac)
	metrics.RecordAnalysisRun(currency, len(ac.Failures) > 0)

	if err := ctx.Err(); err != nil {
		log.Warnw("analysis run aborted", "error", err)
		if err := s.notifier.SendMessage(chatID, "Analysis was canceled before it finished."); err != nil {
			log.Warnw("failed to notify about cancellation", "error", err)
		}
		return
	}

	if err := s.notifier.SendMessage(chatID, s.reports.Render(ac)); err != nil {
		log.Errorw("failed to deliver report", "error", err)
	}
	log.Infow("analysis run delivered", "failures", len(ac.Failures))
}

// finish releases the chat's running slot and resets its dialog session
func (s *Service) finish(chatID int64) {
	s.mu.Lock()
	if cancel, ok := s.running[chatID]; ok {
		cancel()
		delete(s.running, chatID)
	}
	s.mu.Unlock()

	// the run context may already be dead; session cleanup gets its own
	cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.sessions.Delete(cleanupCtx, chatID); err != nil && !errors.Is(err, errors.ErrNotFound) {
		s.log.Warnw("failed to reset session", "chat_id", chatID, "error", err)
	}
}
