package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sage-labs/sage/internal/domain"
)

// MockJobProcessor is a mock implementation of JobProcessor
type MockJobProcessor struct {
	mock.Mock
	mu    sync.Mutex
	calls int
}

func (m *MockJobProcessor) ProcessJobs(ctx context.Context) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockJobProcessor) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockBackfillRepo is a mock implementation of ChunkBackfillRepository
type MockBackfillRepo struct {
	mock.Mock
}

func (m *MockBackfillRepo) ListUnembedded(ctx context.Context, limit int) ([]domain.KnowledgeChunk, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.KnowledgeChunk), args.Error(1)
}

func (m *MockBackfillRepo) UpdateEmbedding(ctx context.Context, chunkID string, embedding []float32) error {
	args := m.Called(ctx, chunkID, embedding)
	return args.Error(0)
}

// MockChunkEmbedder is a mock implementation of EmbeddingClient
type MockChunkEmbedder struct {
	mock.Mock
}

func (m *MockChunkEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func TestBackfillWorker_ProcessJobs_EmbedsPendingChunks(t *testing.T) {
	repo := new(MockBackfillRepo)
	embedder := new(MockChunkEmbedder)
	worker := NewBackfillWorker(repo, embedder)

	chunks := []domain.KnowledgeChunk{
		{ID: "c-1", Content: "first chunk"},
		{ID: "c-2", Content: "second chunk"},
	}
	embedding := []float32{0.1, 0.2}

	repo.On("ListUnembedded", mock.Anything, BatchSize).Return(chunks, nil)
	embedder.On("GenerateEmbedding", mock.Anything, "first chunk").Return(embedding, nil)
	embedder.On("GenerateEmbedding", mock.Anything, "second chunk").Return(embedding, nil)
	repo.On("UpdateEmbedding", mock.Anything, "c-1", embedding).Return(nil)
	repo.On("UpdateEmbedding", mock.Anything, "c-2", embedding).Return(nil)

	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	repo.AssertExpectations(t)
	embedder.AssertExpectations(t)
}

func TestBackfillWorker_ProcessJobs_NothingPending(t *testing.T) {
	repo := new(MockBackfillRepo)
	embedder := new(MockChunkEmbedder)
	worker := NewBackfillWorker(repo, embedder)

	repo.On("ListUnembedded", mock.Anything, BatchSize).Return([]domain.KnowledgeChunk{}, nil)

	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	embedder.AssertNotCalled(t, "GenerateEmbedding")
}

func TestBackfillWorker_ProcessJobs_EmbedFailureLeavesChunkPending(t *testing.T) {
	repo := new(MockBackfillRepo)
	embedder := new(MockChunkEmbedder)
	worker := NewBackfillWorker(repo, embedder)

	chunks := []domain.KnowledgeChunk{
		{ID: "c-1", Content: "fails"},
		{ID: "c-2", Content: "succeeds"},
	}

	repo.On("ListUnembedded", mock.Anything, BatchSize).Return(chunks, nil)
	embedder.On("GenerateEmbedding", mock.Anything, "fails").Return(nil, errors.New("model down"))
	embedder.On("GenerateEmbedding", mock.Anything, "succeeds").Return([]float32{0.3}, nil)
	repo.On("UpdateEmbedding", mock.Anything, "c-2", []float32{0.3}).Return(nil)

	err := worker.ProcessJobs(context.Background())

	// One chunk failing never fails the batch.
	assert.NoError(t, err)
	repo.AssertNotCalled(t, "UpdateEmbedding", mock.Anything, "c-1", mock.Anything)
}

func TestBackfillWorker_ProcessJobs_ListError(t *testing.T) {
	repo := new(MockBackfillRepo)
	worker := NewBackfillWorker(repo, new(MockChunkEmbedder))

	repo.On("ListUnembedded", mock.Anything, BatchSize).Return(nil, errors.New("db down"))

	err := worker.ProcessJobs(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list unembedded chunks")
}

func TestWorker_StartAndStop(t *testing.T) {
	processor := new(MockJobProcessor)
	processor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(processor, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Start(ctx)

	time.Sleep(50 * time.Millisecond)
	worker.Stop()

	assert.GreaterOrEqual(t, processor.callCount(), 1)
}

func TestWorker_ContextCancellation(t *testing.T) {
	processor := new(MockJobProcessor)
	processor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(processor, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}
