package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/illegalcall/codeshell/internal/config"
	"github.com/illegalcall/codeshell/internal/models"
	"github.com/illegalcall/codeshell/internal/store"
)

// MockConsumerGroup mocks sarama.ConsumerGroup
type MockConsumerGroup struct {
	mock.Mock
}

func (m *MockConsumerGroup) Consume(ctx context.Context, topics []string, handler sarama.ConsumerGroupHandler) error {
	args := m.Called(ctx, topics, handler)
	return args.Error(0)
}

func (m *MockConsumerGroup) Errors() <-chan error {
	args := m.Called()
	return args.Get(0).(chan error)
}

func (m *MockConsumerGroup) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockConsumerGroup) Pause(partitions map[string][]int32)  { m.Called(partitions) }
func (m *MockConsumerGroup) Resume(partitions map[string][]int32) { m.Called(partitions) }
func (m *MockConsumerGroup) PauseAll()                            { m.Called() }
func (m *MockConsumerGroup) ResumeAll()                           { m.Called() }

type fakeSession struct {
	ctx    context.Context
	mu     sync.Mutex
	marked []int64
}

func (s *fakeSession) Claims() map[string][]int32               { return nil }
func (s *fakeSession) MemberID() string                         { return "member-1" }
func (s *fakeSession) GenerationID() int32                      { return 1 }
func (s *fakeSession) MarkOffset(string, int32, int64, string)  {}
func (s *fakeSession) Commit()                                  {}
func (s *fakeSession) ResetOffset(string, int32, int64, string) {}
func (s *fakeSession) Context() context.Context                 { return s.ctx }
func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	msgs chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Topic() string                            { return "app-previews" }
func (c *fakeClaim) Partition() int32                         { return 0 }
func (c *fakeClaim) InitialOffset() int64                     { return 0 }
func (c *fakeClaim) HighWaterMarkOffset() int64               { return 0 }
func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.msgs }

// flakyCache fails the first n calls.
type flakyCache struct {
	failures    int
	invalidated []string
}

func (f *flakyCache) Invalidate(_ context.Context, name string) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("redis down")
	}
	f.invalidated = append(f.invalidated, name)
	return nil
}

func (f *flakyCache) RecordDeployment(context.Context, models.Deployment) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Kafka: config.KafkaConfig{
			Topic:        "app-previews",
			Group:        "preview-workers",
			RetryMax:     3,
			RetryBackoff: time.Millisecond,
		},
	}
}

func setupCachedStore(t *testing.T) (*store.CachedStore, *store.MemoryStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	mem := store.NewMemoryStore()
	return store.NewCachedStore(mem, rdb, time.Minute), mem, mr
}

func TestConsumeClaim_SavedAndDeployed(t *testing.T) {
	cached, mem, mr := setupCachedStore(t)
	ctx := context.Background()
	require.NoError(t, mem.SavePreview(ctx, &models.AppPreview{Name: "demo", HTMLContent: "<p>v1</p>"}))

	// Warm the cache, then change the row underneath it.
	_, err := cached.GetPreview(ctx, "demo")
	require.NoError(t, err)
	require.True(t, mr.Exists("preview:demo"))

	w := NewWorker(testConfig(), cached, nil)
	claim := &fakeClaim{msgs: make(chan *sarama.ConsumerMessage, 3)}
	claim.msgs <- &sarama.ConsumerMessage{Offset: 1, Value: []byte(`{"name":"demo","action":"saved","at":"2024-05-01T10:00:00Z"}`)}
	claim.msgs <- &sarama.ConsumerMessage{Offset: 2, Value: []byte(`garbage`)}
	claim.msgs <- &sarama.ConsumerMessage{Offset: 3, Value: []byte(`{"name":"demo","action":"deployed","url":"https://demo.vercel.app","snapshot":"snapshots/demo-1.json","at":"2024-05-01T10:05:00Z"}`)}
	close(claim.msgs)

	session := &fakeSession{ctx: ctx}
	require.NoError(t, w.ConsumeClaim(session, claim))

	assert.Equal(t, []int64{1, 2, 3}, session.marked, "every message is marked, including bad ones")
	assert.False(t, mr.Exists("preview:demo"))

	d, err := cached.LastDeployment(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, "https://demo.vercel.app", d.URL)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 5, 0, 0, time.UTC), d.DeployedAt.UTC())
	assert.Equal(t, "snapshots/demo-1.json", d.Snapshot)
}

func TestHandle_Retries(t *testing.T) {
	cache := &flakyCache{failures: 2}
	w := NewWorker(testConfig(), cache, nil)

	err := w.handle(context.Background(), &sarama.ConsumerMessage{Value: []byte(`{"name":"demo","action":"saved"}`)})
	assert.NoError(t, err)
	assert.Equal(t, []string{"demo"}, cache.invalidated)
}

func TestHandle_GivesUp(t *testing.T) {
	cache := &flakyCache{failures: 10}
	w := NewWorker(testConfig(), cache, nil)

	err := w.handle(context.Background(), &sarama.ConsumerMessage{Value: []byte(`{"name":"demo","action":"saved"}`)})
	assert.Error(t, err)
	assert.Equal(t, 7, cache.failures, "RetryMax attempts are made")
}

func TestConsumeClaim_StopsWithSession(t *testing.T) {
	w := NewWorker(testConfig(), &flakyCache{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.ConsumeClaim(&fakeSession{ctx: ctx}, &fakeClaim{msgs: make(chan *sarama.ConsumerMessage)})
	assert.NoError(t, err)
}

func TestWorkerStart(t *testing.T) {
	mockConsumerGroup := new(MockConsumerGroup)
	w := NewWorker(testConfig(), &flakyCache{}, mockConsumerGroup)

	errChan := make(chan error)
	defer close(errChan)
	mockConsumerGroup.On("Errors").Return(errChan)
	mockConsumerGroup.On("Consume", mock.Anything, []string{"app-previews"}, w).Return(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.NoError(t, w.Start(ctx))
	mockConsumerGroup.AssertExpectations(t)
}
