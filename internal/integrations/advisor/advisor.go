package advisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Dan9191/financial-time-machine/internal/config"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sirupsen/logrus"
)

const (
	temperature = 0.7
	maxTokens   = 500
)

// Client asks a chat-completion model for advice about a projection
type Client struct {
	client  openai.Client
	model   string
	enabled bool
	log     *logrus.Logger
}

// NewClient initializes a new advisor client. The request is never retried:
// the user re-triggers it instead.
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.OpenAIAPIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: cfg.OpenAITimeout}),
	}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}

	if cfg.OpenAIAPIKey == "" {
		log.Warn("OPENAI_API_KEY is not set, advice requests will fail")
	}

	return &Client{
		client:  openai.NewClient(opts...),
		model:   cfg.OpenAIModel,
		enabled: cfg.OpenAIAPIKey != "",
		log:     log,
	}
}

// Advise returns the model's advice text for in
func (c *Client) Advise(ctx context.Context, in Input) (string, error) {
	if !c.enabled {
		return "", fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrAuth)
	}

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(BuildPrompt(in)),
		},
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(maxTokens),
	})
	if err != nil {
		return "", c.classify(ctx, err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: no response from AI", ErrUpstream)
	}
	advice := strings.TrimSpace(completion.Choices[0].Message.Content)
	if advice == "" {
		return "", fmt.Errorf("%w: empty response from AI", ErrUpstream)
	}

	c.log.WithFields(logrus.Fields{
		"model":    c.model,
		"strategy": in.Strategy,
		"chars":    len(advice),
	}).Info("Generated financial advice")
	return advice, nil
}

// classify maps an SDK error onto one of the package failure classes
func (c *Client) classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		c.log.Errorf("AI service request failed: %v", err)
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	c.log.WithFields(logrus.Fields{
		"status": apiErr.StatusCode,
		"code":   apiErr.Code,
	}).Errorf("AI service returned an error: %s", apiErr.Message)

	switch {
	case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrAuth, apiErr.Message)
	case apiErr.StatusCode == http.StatusNotFound || apiErr.Code == "model_not_found":
		return fmt.Errorf("%w: %s", ErrModelUnavailable, apiErr.Message)
	default:
		msg := apiErr.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d", apiErr.StatusCode)
		}
		return fmt.Errorf("%w: %s", ErrUpstream, msg)
	}
}
