package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/rahul2317-NRK/chatbot9/internal/config"
	"github.com/rahul2317-NRK/chatbot9/internal/metrics"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Model wraps a langchaingo LLM for chat completion.
type Model struct {
	llm       llms.Model
	modelName string
	metrics   *metrics.Collector
	tokens    *TokenCounter
	logger    *slog.Logger
}

// New returns the Generator selected by cfg.LLMProvider.
func New(ctx context.Context, cfg config.Config, mc *metrics.Collector, logger *slog.Logger) (Generator, error) {
	if cfg.LLMProvider == config.ProviderMock {
		return NewMockClient(), nil
	}
	return NewModel(ctx, cfg, mc, logger)
}

// NewModel creates an LLM model based on configuration.
func NewModel(ctx context.Context, cfg config.Config, mc *metrics.Collector, logger *slog.Logger) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	case config.ProviderBedrock:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		model, err = bedrock.New(
			bedrock.WithClient(bedrockruntime.NewFromConfig(awsCfg)),
			bedrock.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create bedrock model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return newModel(model, cfg.LLMModel, mc, logger), nil
}

func newModel(model llms.Model, name string, mc *metrics.Collector, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	return &Model{
		llm:       model,
		modelName: name,
		metrics:   mc,
		tokens:    NewTokenCounter(),
		logger:    logger,
	}
}

// Model returns the LLM model name.
func (m *Model) Model() string {
	return m.modelName
}

// Complete sends the conversation to the backend and returns the first
// choice's text.
func (m *Model) Complete(ctx context.Context, msgs []Message, opts Options) (string, error) {
	content := make([]llms.MessageContent, 0, len(msgs))
	for _, msg := range msgs {
		content = append(content, llms.TextParts(chatType(msg.Role), msg.Content))
	}

	var callOpts []llms.CallOption
	if opts.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(opts.MaxTokens))
	}
	callOpts = append(callOpts, llms.WithTemperature(opts.Temperature))

	start := time.Now()
	response, err := m.llm.GenerateContent(ctx, content, callOpts...)
	if err != nil {
		return "", fmt.Errorf("generate: %w", wrapFatalError(err))
	}
	if len(response.Choices) == 0 {
		return "", errors.New("generate: no response choices")
	}

	choice := response.Choices[0]
	in, out := usage(choice.GenerationInfo)
	if in == 0 {
		in = int64(m.tokens.CountMessages(msgs))
	}
	if out == 0 {
		out = int64(m.tokens.Count(choice.Content))
	}
	m.metrics.RecordLLMUsage(time.Since(start), in, out)
	m.logger.Debug("generation complete", "model", m.modelName, "input_tokens", in, "output_tokens", out,
		"duration", time.Since(start))

	return choice.Content, nil
}

func chatType(r Role) llms.ChatMessageType {
	switch r {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

// usage reads provider-reported token counts. OpenAI and Anthropic use
// different keys.
func usage(info map[string]any) (in, out int64) {
	for _, k := range []string{"PromptTokens", "InputTokens"} {
		if v := toInt64(info[k]); v > 0 {
			in = v
			break
		}
	}
	for _, k := range []string{"CompletionTokens", "OutputTokens"} {
		if v := toInt64(info[k]); v > 0 {
			out = v
			break
		}
	}
	return in, out
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}
