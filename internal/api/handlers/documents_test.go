package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sage-labs/sage/internal/api"
	"github.com/sage-labs/sage/internal/domain"
)

type MockArchiveStorage struct {
	mock.Mock
}

func (m *MockArchiveStorage) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockArchiveStorage) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func requestWithID(method, target, id string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

const testDocID = "8c2e44fd-3cf1-4c54-9aa9-6a6fbd1cf00f"

func TestDownloadDocument(t *testing.T) {
	doc := &domain.Document{ID: testDocID, Source: "/data/a.md", ArchiveKey: "abc123/a.md"}

	mockDocs := new(MockDocumentStore)
	mockDocs.On("GetByID", mock.Anything, testDocID).Return(doc, nil)

	mockArchive := new(MockArchiveStorage)
	mockArchive.On("GenerateDownloadURL", mock.Anything, "abc123/a.md").
		Return("https://archive.example/abc123/a.md?sig=x", nil)

	handler := NewDocumentHandler(mockDocs, mockArchive)

	w := httptest.NewRecorder()
	handler.Download(w, requestWithID(http.MethodGet, "/documents/"+testDocID+"/download", testDocID))

	assert.Equal(t, http.StatusOK, w.Code)
	var envelope api.SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var resp DownloadResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	assert.Equal(t, "https://archive.example/abc123/a.md?sig=x", resp.URL)
	mockArchive.AssertExpectations(t)
}

func TestDownloadDocument_NoArchive(t *testing.T) {
	doc := &domain.Document{ID: testDocID, Source: "/data/a.md"}

	mockDocs := new(MockDocumentStore)
	mockDocs.On("GetByID", mock.Anything, testDocID).Return(doc, nil)

	handler := NewDocumentHandler(mockDocs, new(MockArchiveStorage))

	w := httptest.NewRecorder()
	handler.Download(w, requestWithID(http.MethodGet, "/documents/"+testDocID+"/download", testDocID))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadDocument_InvalidID(t *testing.T) {
	mockDocs := new(MockDocumentStore)
	handler := NewDocumentHandler(mockDocs, nil)

	w := httptest.NewRecorder()
	handler.Download(w, requestWithID(http.MethodGet, "/documents/nope/download", "nope"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockDocs.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestDeleteDocument_RemovesArchivedObject(t *testing.T) {
	doc := &domain.Document{ID: testDocID, Source: "/data/a.md", ArchiveKey: "abc123/a.md"}

	mockDocs := new(MockDocumentStore)
	mockDocs.On("Delete", mock.Anything, testDocID).Return(doc, nil)

	mockArchive := new(MockArchiveStorage)
	mockArchive.On("DeleteObject", mock.Anything, "abc123/a.md").Return(nil)

	handler := NewDocumentHandler(mockDocs, mockArchive)

	w := httptest.NewRecorder()
	handler.Delete(w, requestWithID(http.MethodDelete, "/documents/"+testDocID, testDocID))

	assert.Equal(t, http.StatusOK, w.Code)
	mockDocs.AssertExpectations(t)
	mockArchive.AssertExpectations(t)
}

func TestDeleteDocument_NotFound(t *testing.T) {
	mockDocs := new(MockDocumentStore)
	mockDocs.On("Delete", mock.Anything, testDocID).Return(nil, domain.ErrDocumentNotFound)

	handler := NewDocumentHandler(mockDocs, nil)

	w := httptest.NewRecorder()
	handler.Delete(w, requestWithID(http.MethodDelete, "/documents/"+testDocID, testDocID))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
