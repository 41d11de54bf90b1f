package openai

import (
    "context"
    "fmt"
    "strings"

    openai "github.com/openai/openai-go/v2"
    "github.com/openai/openai-go/v2/option"
    "github.com/openai/openai-go/v2/shared"
    "github.com/rs/zerolog"
    "github.com/vmsaif/clickup-ai-analysis/internal/config"
    "github.com/vmsaif/clickup-ai-analysis/internal/domain"
)

// Client is the alternate report generator for teams without Gemini access.
type Client struct {
    key   string
    model string
    cli   openai.Client
    log   zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    model := cfg.OpenAIModel
    if strings.TrimSpace(model) == "" { model = "gpt-4.1-mini" }
    cli := openai.NewClient(option.WithAPIKey(cfg.OpenAIKey))
    return &Client{ key: cfg.OpenAIKey, model: model, cli: cli, log: log }
}

func (c *Client) Generate(ctx context.Context, system []string, prompt string) (string, error) {
    if strings.TrimSpace(c.key) == "" {
        return "", fmt.Errorf("%w: openai: missing key", domain.ErrGeneration)
    }
    c.log.Info().Str("model", c.model).Msg("openai generate call")
    params := openai.ChatCompletionNewParams{
        Model: shared.ChatModel(c.model),
        Messages: []openai.ChatCompletionMessageParamUnion{
            openai.SystemMessage(strings.Join(system, "\n")),
            openai.UserMessage(prompt),
        },
    }
    resp, err := c.cli.Chat.Completions.New(ctx, params)
    if err != nil { return "", fmt.Errorf("%w: %v", domain.ErrGeneration, err) }
    if len(resp.Choices) == 0 { return "", fmt.Errorf("%w: openai: no choices", domain.ErrGeneration) }
    text := resp.Choices[0].Message.Content
    if strings.TrimSpace(text) == "" { return "", fmt.Errorf("%w: openai: empty response", domain.ErrGeneration) }
    return text, nil
}
