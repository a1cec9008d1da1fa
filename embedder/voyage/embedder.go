package voyage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/w-h-a/rag/embedder"
)

// Voyage has no Go SDK, so this speaks the REST API directly.
const defaultLocation = "https://api.voyageai.com/v1"

type voyageEmbedder struct {
	options embedder.Options
	client  *http.Client
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

func (e *voyageEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, errors.New("no response from Voyage")
	}

	return vectors[0], nil
}

func (e *voyageEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	req := embeddingRequest{
		Input: texts,
		Model: e.options.Model,
	}

	var rsp embeddingResponse
	if err := e.do(ctx, "/embeddings", req, &rsp); err != nil {
		return nil, err
	}

	if len(rsp.Data) != len(texts) {
		return nil, errors.New("incomplete response from Voyage")
	}

	vectors := make([][]float32, 0, len(rsp.Data))
	for _, item := range rsp.Data {
		vectors = append(vectors, item.Embedding)
	}

	return vectors, nil
}

func (e *voyageEmbedder) do(ctx context.Context, path string, req any, rsp any) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, e.options.Location+path, bytes.NewReader(data))
	if err != nil {
		return err
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+e.options.ApiKey)

	response, err := e.client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("voyage http %d: %s", response.StatusCode, string(payload))
	}

	if rsp != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, rsp); err != nil {
			return err
		}
	}

	return nil
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	if len(options.ApiKey) == 0 {
		panic("missing api key for voyage embedder")
	}

	if len(options.Location) == 0 {
		options.Location = defaultLocation
	}

	client := &http.Client{
		Timeout:   30 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	return &voyageEmbedder{
		options: options,
		client:  client,
	}
}
