package expirer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type mockService struct {
	mu    sync.Mutex
	calls int
	ttls  []time.Duration
	err   error
}

func (m *mockService) ExpireStale(_ context.Context, ttl time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.ttls = append(m.ttls, ttl)
	return 1, m.err
}

func (m *mockService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockLogger struct {
	mu     sync.Mutex
	errors int
}

func (l *mockLogger) Info(string, ...interface{}) {}
func (l *mockLogger) Warn(string, ...interface{}) {}
func (l *mockLogger) Error(string, ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors++
}

func (l *mockLogger) Errors() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errors
}

func runFor(t *testing.T, w *Worker) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	time.Sleep(60 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestWorker_SweepsUntilCancelled(t *testing.T) {
	svc := &mockService{}
	w := NewWorker(svc, 10*time.Millisecond, 15*time.Minute, &mockLogger{})

	runFor(t, w)

	assert.GreaterOrEqual(t, svc.Calls(), 2)
	for _, ttl := range svc.ttls {
		assert.Equal(t, 15*time.Minute, ttl)
	}
}

func TestWorker_FirstSweepIsImmediate(t *testing.T) {
	svc := &mockService{}
	w := NewWorker(svc, time.Hour, time.Minute, &mockLogger{})

	runFor(t, w)

	assert.Equal(t, 1, svc.Calls())
}

func TestWorker_ErrorsDoNotStopTheLoop(t *testing.T) {
	svc := &mockService{err: errors.New("db down")}
	logger := &mockLogger{}
	w := NewWorker(svc, 10*time.Millisecond, time.Minute, logger)

	runFor(t, w)

	assert.GreaterOrEqual(t, svc.Calls(), 2)
	assert.GreaterOrEqual(t, logger.Errors(), 2)
}
