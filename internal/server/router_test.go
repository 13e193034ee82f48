package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sage-labs/sage/internal/api/handlers"
	"github.com/sage-labs/sage/internal/domain"
	"github.com/sage-labs/sage/internal/ingest"
)

type MockPipeline struct {
	mock.Mock
}

func (m *MockPipeline) Run(ctx context.Context, question string) (domain.PipelineState, error) {
	args := m.Called(ctx, question)
	return args.Get(0).(domain.PipelineState), args.Error(1)
}

type MockIngester struct {
	mock.Mock
}

func (m *MockIngester) Ingest(ctx context.Context, paths []string) (*ingest.Report, error) {
	args := m.Called(ctx, paths)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ingest.Report), args.Error(1)
}

type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockDocumentStore) List(ctx context.Context, limit int, cursor string) ([]*domain.Document, string, error) {
	args := m.Called(ctx, limit, cursor)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]*domain.Document), args.String(1), args.Error(2)
}

func (m *MockDocumentStore) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentStore) Delete(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

type MockChunkCounter struct {
	mock.Mock
}

func (m *MockChunkCounter) Counts(ctx context.Context) (int, int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Int(1), args.Error(2)
}

func newTestRouter(t *testing.T, apiKey string) (http.Handler, *MockPipeline) {
	t.Helper()

	mockPipeline := new(MockPipeline)
	mockIngester := new(MockIngester)
	mockDocs := new(MockDocumentStore)
	mockChunks := new(MockChunkCounter)

	return NewRouter(RouterConfig{
		APIKey:          apiKey,
		AskHandler:      handlers.NewAskHandler(mockPipeline),
		IngestHandler:   handlers.NewIngestHandler(mockIngester, t.TempDir()),
		StatusHandler:   handlers.NewStatusHandler(mockDocs, mockChunks, "llama3", "nomic-embed-text"),
		DocumentHandler: handlers.NewDocumentHandler(mockDocs, nil),
	}), mockPipeline
}

func TestRouter_Health(t *testing.T) {
	router, _ := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestRouter_AskRouted(t *testing.T) {
	router, mockPipeline := newTestRouter(t, "")
	mockPipeline.On("Run", mock.Anything, "hello").Return(domain.PipelineState{Answer: "hi"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question": "hello"}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hi")
	mockPipeline.AssertExpectations(t)
}

func TestRouter_AuthRequired(t *testing.T) {
	router, _ := newTestRouter(t, "secret")

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question": "hello"}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_HealthSkipsAuth(t *testing.T) {
	router, _ := newTestRouter(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_ServesUI(t *testing.T) {
	router, _ := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Sage")
}
