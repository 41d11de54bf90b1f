package gemini

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "strings"

    "github.com/rs/zerolog"
    "github.com/vmsaif/clickup-ai-analysis/internal/config"
    "github.com/vmsaif/clickup-ai-analysis/internal/domain"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type Client struct {
    baseURL string
    key     string
    model   string
    http    *http.Client
    log     zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    model := strings.TrimPrefix(strings.TrimSpace(cfg.GeminiModel), "models/")
    if model == "" { model = "gemini-2.5-pro" }
    return &Client{
        baseURL: defaultBaseURL,
        key:     cfg.GeminiKey,
        model:   model,
        http:    &http.Client{ Timeout: cfg.LLMTimeout },
        log:     log,
    }
}

type part struct {
    Text string `json:"text"`
}

type content struct {
    Parts []part `json:"parts"`
    Role  string `json:"role,omitempty"`
}

type generationConfig struct {
    Temperature     float64 `json:"temperature,omitempty"`
    MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
    SystemInstruction *content          `json:"system_instruction,omitempty"`
    Contents          []content         `json:"contents"`
    GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
    Candidates []struct {
        Content content `json:"content"`
    } `json:"candidates"`
}

// Generate submits one prompt and returns the model's text. The call is
// synchronous and bounded by the configured client timeout; failures are not
// retried since generation cost makes silent retries undesirable.
func (c *Client) Generate(ctx context.Context, system []string, prompt string) (string, error) {
    if strings.TrimSpace(c.key) == "" {
        return "", fmt.Errorf("%w: gemini: missing key", domain.ErrGeneration)
    }
    greq := generateRequest{
        Contents:         []content{{Parts: []part{{Text: prompt}}, Role: "user"}},
        GenerationConfig: &generationConfig{Temperature: 0.7, MaxOutputTokens: 8192},
    }
    if len(system) > 0 {
        parts := make([]part, 0, len(system))
        for _, s := range system { parts = append(parts, part{Text: s}) }
        greq.SystemInstruction = &content{Parts: parts}
    }
    b, err := json.Marshal(greq)
    if err != nil { return "", err }
    u := fmt.Sprintf("%s/models/%s:generateContent?key=%s", strings.TrimRight(c.baseURL, "/"), url.PathEscape(c.model), url.QueryEscape(c.key))
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
    if err != nil { return "", err }
    req.Header.Set("Content-Type", "application/json")
    resp, err := c.http.Do(req)
    if err != nil { return "", fmt.Errorf("%w: %v", domain.ErrGeneration, err) }
    defer resp.Body.Close()
    if resp.StatusCode >= 300 {
        body, _ := io.ReadAll(resp.Body)
        return "", fmt.Errorf("%w: gemini status=%d body=%s", domain.ErrGeneration, resp.StatusCode, strings.TrimSpace(string(body)))
    }
    var out generateResponse
    if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
        return "", fmt.Errorf("%w: %v", domain.ErrGeneration, err)
    }
    if len(out.Candidates) == 0 {
        return "", fmt.Errorf("%w: gemini: no candidates", domain.ErrGeneration)
    }
    var sb strings.Builder
    for _, p := range out.Candidates[0].Content.Parts { sb.WriteString(p.Text) }
    text := sb.String()
    if strings.TrimSpace(text) == "" {
        return "", fmt.Errorf("%w: gemini: empty response", domain.ErrGeneration)
    }
    c.log.Info().Str("model", c.model).Int("chars", len(text)).Msg("gemini generate ok")
    return text, nil
}
