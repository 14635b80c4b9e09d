package analysis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/internal/analysis"
	"hermes/internal/domain/session"
	"hermes/internal/report"
	"hermes/pkg/errors"
)

type mockNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (m *mockNotifier) SendMessage(chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, text)
	return nil
}

func (m *mockNotifier) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.messages))
	copy(out, m.messages)
	return out
}

type mockSessions struct {
	mu      sync.Mutex
	deleted []int64
}

func (m *mockSessions) Get(ctx context.Context, chatID int64) (*session.Session, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "chat_id=%d", chatID)
}

func (m *mockSessions) Save(ctx context.Context, s *session.Session) error { return nil }

func (m *mockSessions) Delete(ctx context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, chatID)
	return nil
}

func (m *mockSessions) Deleted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.deleted)
}

// blockingStage holds the pipeline until released
type blockingStage struct {
	release chan struct{}
}

func (s *blockingStage) Name() string { return "blocking" }
func (s *blockingStage) Run(ctx context.Context, ac *analysis.Context) error {
	select {
	case <-s.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func newService(stage analysis.Stage) (*Service, *mockNotifier, *mockSessions) {
	notifier := &mockNotifier{}
	sessions := &mockSessions{}
	svc := NewService(analysis.NewPipeline(stage), report.NewGenerator(), notifier, sessions)
	return svc, notifier, sessions
}

func TestService_SingleRunPerChat(t *testing.T) {
	stage := &blockingStage{release: make(chan struct{})}
	svc, _, _ := newService(stage)

	require.NoError(t, svc.Start(context.Background(), 1, "BTC", 30))
	assert.True(t, svc.Running(1))

	err := svc.Start(context.Background(), 1, "BTC", 30)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrAnalysisRunning))

	// a different chat is unaffected
	require.NoError(t, svc.Start(context.Background(), 2, "ETH", 30))

	close(stage.release)
	assert.Eventually(t, func() bool {
		return !svc.Running(1) && !svc.Running(2)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestService_DeliversReportAndResetsSession(t *testing.T) {
	stage := &blockingStage{release: make(chan struct{})}
	svc, notifier, sessions := newService(stage)

	require.NoError(t, svc.Start(context.Background(), 7, "BTC", 30))
	close(stage.release)

	assert.Eventually(t, func() bool { return !svc.Running(7) }, 2*time.Second, 10*time.Millisecond)

	messages := notifier.Messages()
	require.NotEmpty(t, messages)
	assert.Contains(t, messages[len(messages)-1], "BTC block trade analysis")

	assert.Eventually(t, func() bool { return sessions.Deleted() == 1 }, time.Second, 10*time.Millisecond)
}

func TestService_Cancel(t *testing.T) {
	stage := &blockingStage{release: make(chan struct{})}
	svc, notifier, _ := newService(stage)

	require.NoError(t, svc.Start(context.Background(), 3, "BTC", 30))
	assert.True(t, svc.Cancel(3))

	assert.Eventually(t, func() bool { return !svc.Running(3) }, 2*time.Second, 10*time.Millisecond)

	// a canceled run reports the cancellation, not a report
	assert.Eventually(t, func() bool {
		for _, m := range notifier.Messages() {
			if m == "Analysis was canceled before it finished." {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	assert.False(t, svc.Cancel(3), "nothing left to cancel")
}
