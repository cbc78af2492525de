package embedding

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/avast/retry-go/v4"
	gocache "github.com/patrickmn/go-cache"
)

// Remote is an OpenAI-compatible embeddings client. Identical inputs
// must yield identical vectors, so responses are cached by input text;
// the cache also spares repeated round-trips when the same chunk batch
// is rebuilt.
type Remote struct {
	baseURL   string
	apiKey    string
	model     string
	dimension int
	client    *http.Client
	cache     *gocache.Cache
	attempts  uint
}

// RemoteConfig configures the remote embeddings client.
type RemoteConfig struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewRemote creates a remote embeddings client from the configuration.
func NewRemote(cfg RemoteConfig) (*Remote, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &Remote{
		baseURL:  cfg.BaseURL,
		apiKey:   key,
		model:    cfg.Model,
		client:   &http.Client{Timeout: t},
		cache:    gocache.New(30*time.Minute, 10*time.Minute),
		attempts: 5,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Remote) Name() string { return "openai" }

// Prepare is a no-op; the remote model needs no corpus training. The
// dimension is taken from the first embedding returned.
func (c *Remote) Prepare(corpus []string) error { return nil }

// Dimension returns the dimensionality of produced vectors, 0 until the
// first successful Embed.
func (c *Remote) Dimension() int { return c.dimension }

// Embed returns the embedding vector for the text, retrying transient
// upstream failures with exponential backoff.
func (c *Remote) Embed(text string) ([]float64, error) {
	if cached, ok := c.cache.Get(text); ok {
		return cached.([]float64), nil
	}
	var vec []float64
	err := retry.Do(
		func() error {
			v, err := c.embedOnce(text)
			if err != nil {
				return err
			}
			vec = v
			return nil
		},
		retry.Attempts(c.attempts),
		retry.Delay(200*time.Millisecond),
		retry.MaxDelay(5*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var perm *permanentError
			return !errors.As(err, &perm)
		}),
	)
	if err != nil {
		return nil, err
	}
	if c.dimension == 0 {
		c.dimension = len(vec)
	}
	c.cache.SetDefault(text, vec)
	return vec, nil
}

// permanentError marks upstream responses not worth retrying.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func (c *Remote) embedOnce(text string) ([]float64, error) {
	body, _ := json.Marshal(map[string]string{
		"input": text,
		"model": c.model,
	})
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, fmt.Errorf("embeddings request failed: %s", resp.Status)
	}
	if resp.StatusCode >= 300 {
		return nil, &permanentError{fmt.Errorf("embeddings request failed: %s", resp.Status)}
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// OpenAI-compatible shape first, then Ollama-native.
	var openaiOut struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &openaiOut); err == nil && len(openaiOut.Data) > 0 && len(openaiOut.Data[0].Embedding) > 0 {
		return openaiOut.Data[0].Embedding, nil
	}
	var ollamaOut struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.Unmarshal(payload, &ollamaOut); err == nil && len(ollamaOut.Embedding) > 0 {
		return ollamaOut.Embedding, nil
	}
	return nil, errors.New("no embedding returned")
}
