package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI speech models.
const (
	ModelGPT4oMiniTTS = "gpt-4o-mini-tts"
	ModelTTS1         = "tts-1"
	ModelTTS1HD       = "tts-1-hd"
)

// MaxInputChars is the speech endpoint's input limit.
const MaxInputChars = 4096

// OpenAI implements [Provider] using the OpenAI audio speech endpoint.
//
// Any OpenAI-compatible server can be targeted with WithBaseURL.
type OpenAI struct {
	client *openai.Client
}

var _ Provider = (*OpenAI)(nil)

type openAIConfig struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
}

// OpenAIOption configures the OpenAI provider.
type OpenAIOption func(*openAIConfig)

// WithBaseURL points the client at an OpenAI-compatible API root.
func WithBaseURL(url string) OpenAIOption {
	return func(c *openAIConfig) { c.baseURL = url }
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) OpenAIOption {
	return func(c *openAIConfig) { c.httpClient = hc }
}

// WithMaxRetries sets how often the SDK retries transient failures.
func WithMaxRetries(n int) OpenAIOption {
	return func(c *openAIConfig) { c.maxRetries = n }
}

// NewOpenAI creates the provider. An empty apiKey is rejected.
func NewOpenAI(apiKey string, opts ...OpenAIOption) (*OpenAI, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openai api key is required (set OPENAI_API_KEY or tts.api_key)")
	}

	cfg := openAIConfig{
		httpClient: http.DefaultClient,
		maxRetries: 2,
	}
	for _, o := range opts {
		o(&cfg)
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(cfg.httpClient),
		option.WithMaxRetries(cfg.maxRetries),
	}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}
	client := openai.NewClient(clientOpts...)

	return &OpenAI{client: &client}, nil
}

// Synthesize requests speech for req.Text. Model rejections are wrapped
// with ErrModelUnavailable.
func (o *OpenAI) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	params := openai.AudioSpeechNewParams{
		Input: req.Text,
		Model: openai.SpeechModel(req.Model),
		Voice: openai.AudioSpeechNewParamsVoice(req.Voice),
	}
	if req.Format != "" {
		params.ResponseFormat = openai.AudioSpeechNewParamsResponseFormat(req.Format)
	}

	resp, err := o.client.Audio.Speech.New(ctx, params)
	if err != nil {
		return nil, classifyOpenAIError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read speech response: %w", err)
	}

	return data, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	// The API reports unknown or unsupported models with 404, the
	// model_not_found code, or a message naming the model.
	if apiErr.StatusCode == http.StatusNotFound ||
		apiErr.Code == "model_not_found" ||
		strings.Contains(strings.ToLower(apiErr.Error()), "model") {
		return fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}

	return err
}
