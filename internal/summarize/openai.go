package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/calendarai/calendarai/internal/metrics"
)

const (
	// DefaultBaseURL はOpenAI APIの既定のベースURL。
	DefaultBaseURL = "https://api.openai.com"
	// DefaultModel は要約に使う既定のモデル。
	DefaultModel = "gpt-3.5-turbo"

	systemPrompt = "You summarize text very concisely."
	userPrefix   = "Please summarize: "
)

// OpenAIConfig はOpenAIClientの設定。
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAIClient はChat Completions APIで要約を生成する。
type OpenAIClient struct {
	client   *resty.Client
	apiKey   string
	model    string
	recorder metrics.UpstreamRecorder
}

// NewOpenAIClient はOpenAIClientを生成する。
func NewOpenAIClient(config OpenAIConfig, recorder metrics.UpstreamRecorder) *OpenAIClient {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}

	c := resty.New().
		SetBaseURL(config.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(config.APIKey)
	if config.Timeout > 0 {
		c.SetTimeout(config.Timeout)
	}

	return &OpenAIClient{
		client:   c,
		apiKey:   config.APIKey,
		model:    config.Model,
		recorder: recorder,
	}
}

// chatRequest / chatResponse はChat Completions APIのJSON表現

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Configured はAPIキーが設定されているかを返す。
func (c *OpenAIClient) Configured() bool {
	return c.apiKey != ""
}

// Complete はテキストの要約を1回だけ要求し、最初の候補の本文を返す。
// 候補が無い場合は空文字列を返す。リトライはしない。
func (c *OpenAIClient) Complete(ctx context.Context, text string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrefix + text},
		},
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(&reqBody).
		Post("/v1/chat/completions")
	if err == nil && resp.StatusCode() != http.StatusOK {
		err = fmt.Errorf("openai status %d: %s", resp.StatusCode(), resp.String())
	}
	c.recorder.RecordUpstream(metrics.ProviderOpenAI, err, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}

	var cr chatResponse
	if err := json.Unmarshal(resp.Body(), &cr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", nil
	}
	return cr.Choices[0].Message.Content, nil
}

// compile-time interface check
var _ Completer = (*OpenAIClient)(nil)
