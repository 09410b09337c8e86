package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dshills/docquery-mcp/pkg/types"
)

// OpenAI provider configuration.
const (
	ProviderOpenAI = "openai"

	DefaultOpenAIBaseURL    = "https://api.openai.com/v1"
	DefaultOpenAIEmbedModel = "text-embedding-3-small"
	DefaultOpenAIChatModel  = "gpt-4o-mini"

	OpenAIDimension = 1536

	// MaxBatchSize bounds a single embeddings request.
	MaxBatchSize = 100
)

// OpenAIProvider implements Provider using the OpenAI API over HTTP.
type OpenAIProvider struct {
	apiKey     string
	baseURL    string
	embedModel string
	chatModel  string
	httpClient *http.Client
	cache      *Cache
}

// NewOpenAIProvider creates a new OpenAI provider. The API key is
// required; its absence is a configuration error reported before any
// network call is attempted.
func NewOpenAIProvider(cfg Config, cache *Cache) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: set provider.api_key or OPENAI_API_KEY", types.ErrMissingAPIKey)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	embedModel := cfg.EmbedModel
	if embedModel == "" {
		embedModel = DefaultOpenAIEmbedModel
	}
	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = DefaultOpenAIChatModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIProvider{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		embedModel: embedModel,
		chatModel:  chatModel,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache: cache,
	}, nil
}

// EmbedQuery generates a single embedding.
func (o *OpenAIProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	if o.cache != nil {
		if vec, ok := o.cache.Get(ComputeHash(text)); ok {
			return vec, nil
		}
	}

	vectors, err := o.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", types.ErrProviderFailed)
	}
	return vectors[0], nil
}

// EmbedDocuments generates embeddings for a batch of texts.
func (o *OpenAIProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateTexts(texts); err != nil {
		return nil, err
	}
	if len(texts) > MaxBatchSize {
		return nil, fmt.Errorf("%w: max %d texts allowed", ErrBatchTooLarge, MaxBatchSize)
	}

	config := DefaultRetryConfig()
	vectors, err := retryWithBackoff(ctx, config, func() ([][]float32, error) {
		return o.callEmbeddings(ctx, texts)
	})
	if err != nil {
		return nil, fmt.Errorf("%w after %d attempts: %v", types.ErrProviderFailed, config.MaxRetries, err)
	}

	if o.cache != nil {
		for i, vec := range vectors {
			o.cache.Set(ComputeHash(texts[i]), vec)
		}
	}

	return vectors, nil
}

func (o *OpenAIProvider) callEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := map[string]interface{}{
		"input": texts,
		"model": o.embedModel,
	}

	var apiResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
	}

	if err := o.post(ctx, "/embeddings", reqBody, &apiResp); err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(apiResp.Data))
	for i, data := range apiResp.Data {
		vectors[i] = data.Embedding
	}
	return vectors, nil
}

// Complete sends one chat completion request built from the prompt.
func (o *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyText
	}

	reqBody := map[string]interface{}{
		"model": o.chatModel,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	config := DefaultRetryConfig()
	answer, err := retryWithBackoff(ctx, config, func() (string, error) {
		var apiResp struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
		}
		if err := o.post(ctx, "/chat/completions", reqBody, &apiResp); err != nil {
			return "", err
		}
		if len(apiResp.Choices) == 0 {
			return "", fmt.Errorf("no choices returned")
		}
		return apiResp.Choices[0].Message.Content, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w after %d attempts: %v", types.ErrProviderFailed, config.MaxRetries, err)
	}

	return answer, nil
}

// post issues one JSON POST and decodes the response into out.
func (o *OpenAIProvider) post(ctx context.Context, path string, reqBody interface{}, out interface{}) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Dimension returns the embedding dimension.
func (o *OpenAIProvider) Dimension() int {
	return OpenAIDimension
}

// Name returns the provider name.
func (o *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

// Close releases idle HTTP connections.
func (o *OpenAIProvider) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}
