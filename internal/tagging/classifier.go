// Package tagging assigns controlled-vocabulary topic tags to problem
// records. An LLM classifier proposes tags; a parse-scan-heuristic
// cascade turns whatever it returned into vocabulary tags, so a
// malformed response degrades rather than fails.
package tagging

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const systemPrompt = "You are a math educator classifying contest problems for grades 7 and 8 by topic. Respond with strict JSON only."

// Response carries both the answer text and any model reasoning; the
// cascade scans both when the JSON payload is unusable.
type Response struct {
	Text      string
	Reasoning string
}

type Classifier interface {
	Classify(ctx context.Context, prompt string) (Response, error)
}

type transportClass int

const (
	transportTimeout transportClass = iota
	transportRateLimit
	transportServer
	transportClient
)

type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type AnthropicClassifier struct {
	messages AnthropicMessager
	timeout  time.Duration
}

type AnthropicClientCreator func(apiKey string) AnthropicMessager

func defaultAnthropicCreator(apiKey string) AnthropicMessager {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &c.Messages
}

var newAnthropicClient AnthropicClientCreator = defaultAnthropicCreator

func NewAnthropicClassifierFromEnv() (*AnthropicClassifier, error) {
	apiKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not configured")
	}
	return &AnthropicClassifier{
		messages: newAnthropicClient(apiKey),
		timeout:  60 * time.Second,
	}, nil
}

// Classify issues one classification request, retrying transient
// transport failures up to three attempts. Content problems are the
// cascade's job, not retried here.
func (a *AnthropicClassifier) Classify(ctx context.Context, prompt string) (Response, error) {
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		resp, err := a.call(ctx, prompt)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		class := classifyTransportError(err)
		if class == transportTimeout || class == transportRateLimit || class == transportServer {
			if attempt < 3 {
				time.Sleep(backoffDelay(attempt))
				continue
			}
		}
		break
	}
	return Response{}, fmt.Errorf("classify transport failure: %w", lastErr)
}

func (a *AnthropicClassifier) call(ctx context.Context, prompt string) (Response, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.ModelClaudeSonnet4_20250514,
		MaxTokens:   1024,
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return Response{}, err
	}
	var text, reasoning strings.Builder
	for _, b := range resp.Content {
		switch b.Type {
		case "text":
			text.WriteString(b.Text)
		case "thinking":
			reasoning.WriteString(b.Thinking)
		}
	}
	return Response{Text: text.String(), Reasoning: reasoning.String()}, nil
}

func classifyTransportError(err error) transportClass {
	msg := strings.ToLower(err.Error())
	if errors.Is(err, context.DeadlineExceeded) {
		return transportTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return transportTimeout
	}
	switch {
	case strings.Contains(msg, "429"):
		return transportRateLimit
	case strings.Contains(msg, " 5") || strings.Contains(msg, "status code: 5") || strings.Contains(msg, "server error"):
		return transportServer
	case strings.Contains(msg, " 4") || strings.Contains(msg, "status code: 4"):
		return transportClient
	default:
		return transportServer
	}
}

func backoffDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 1 * time.Second
	}
	return 2 * time.Second
}
