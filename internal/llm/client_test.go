package llm

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockChatAPI struct {
	mock.Mock
}

func (m *MockChatAPI) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(openai.ChatCompletionResponse), args.Error(1)
}

type MockEmbeddingAPI struct {
	mock.Mock
}

func (m *MockEmbeddingAPI) CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(openai.EmbeddingResponse), args.Error(1)
}

func testConfig() Config {
	return Config{
		Model:               "llama3",
		EmbeddingModel:      "nomic-embed-text",
		EmbeddingDimensions: 4,
	}
}

func TestClient_Generate_Success(t *testing.T) {
	chat := new(MockChatAPI)
	client := NewClientWithAPIs(chat, nil, testConfig())

	resp := openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: "generated text"}},
		},
	}
	chat.On("CreateChatCompletion", mock.Anything, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
		return req.Model == "llama3" &&
			len(req.Messages) == 2 &&
			req.Messages[0].Role == openai.ChatMessageRoleSystem &&
			req.Messages[1].Content == "the prompt"
	})).Return(resp, nil)

	out, err := client.Generate(context.Background(), "you are a researcher", "the prompt")

	require.NoError(t, err)
	assert.Equal(t, "generated text", out)
	chat.AssertExpectations(t)
}

func TestClient_Generate_EmptyPrompt(t *testing.T) {
	chat := new(MockChatAPI)
	client := NewClientWithAPIs(chat, nil, testConfig())

	_, err := client.Generate(context.Background(), "instructions", "")

	assert.ErrorIs(t, err, ErrEmptyPrompt)
	chat.AssertNotCalled(t, "CreateChatCompletion")
}

func TestClient_Generate_APIError(t *testing.T) {
	chat := new(MockChatAPI)
	client := NewClientWithAPIs(chat, nil, testConfig())

	chat.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, errors.New("connection refused"))

	_, err := client.Generate(context.Background(), "", "prompt")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create chat completion")
}

func TestClient_Generate_NoChoices(t *testing.T) {
	chat := new(MockChatAPI)
	client := NewClientWithAPIs(chat, nil, testConfig())

	chat.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, nil)

	_, err := client.Generate(context.Background(), "", "prompt")

	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestClient_GenerateEmbedding_Success(t *testing.T) {
	embeddings := new(MockEmbeddingAPI)
	client := NewClientWithAPIs(nil, embeddings, testConfig())

	resp := openai.EmbeddingResponse{
		Data: []openai.Embedding{{Embedding: []float32{0.1, 0.2, 0.3, 0.4}}},
	}
	embeddings.On("CreateEmbeddings", mock.Anything, mock.Anything).Return(resp, nil)

	out, err := client.GenerateEmbedding(context.Background(), "some text")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3, 0.4}, out)
	embeddings.AssertExpectations(t)
}

func TestClient_GenerateEmbedding_WrongDimensions(t *testing.T) {
	embeddings := new(MockEmbeddingAPI)
	client := NewClientWithAPIs(nil, embeddings, testConfig())

	resp := openai.EmbeddingResponse{
		Data: []openai.Embedding{{Embedding: []float32{0.1, 0.2}}},
	}
	embeddings.On("CreateEmbeddings", mock.Anything, mock.Anything).Return(resp, nil)

	_, err := client.GenerateEmbedding(context.Background(), "some text")

	assert.ErrorIs(t, err, ErrWrongDimensions)
}

func TestClient_GenerateEmbedding_EmptyText(t *testing.T) {
	embeddings := new(MockEmbeddingAPI)
	client := NewClientWithAPIs(nil, embeddings, testConfig())

	_, err := client.GenerateEmbedding(context.Background(), "")

	assert.ErrorIs(t, err, ErrEmptyText)
	embeddings.AssertNotCalled(t, "CreateEmbeddings")
}
