package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/GriffinCanCode/TestBench/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/TestBench/backend/internal/infrastructure/tracing"
	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// DefaultGeminiURL is the public Generative Language API
const DefaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta"

// ProviderError is a non-2xx answer from an upstream model API
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Retryable reports whether the upstream may succeed on a later attempt
func (e *ProviderError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Gemini calls the generateContent REST endpoint
type Gemini struct {
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	cfg     Config
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewGemini creates a Gemini provider
func NewGemini(cfg Config) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	defaults := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGeminiURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = defaults.RetryWait
	}

	// Pooled transport from the retryable client; retries happen in resty
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(30*cfg.RetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return r != nil && (r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500)
		}).
		SetHeader("User-Agent", "TestBench/1.0").
		SetHeader("x-goog-api-key", cfg.APIKey).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
	client.SetTransport(retryClient.HTTPClient.Transport)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(1, int(cfg.RateLimit)))
	}

	breaker := resilience.New("gemini", resilience.Settings{
		MaxRequests: 2,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: isSuccessful,
	})

	return &Gemini{resty: client, limiter: limiter, breaker: breaker, cfg: cfg}, nil
}

func (g *Gemini) Name() string {
	return ProviderGemini
}

// Breaker exposes the circuit breaker state for health reporting
func (g *Gemini) Breaker() *resilience.Breaker {
	return g.breaker
}

func (g *Gemini) Generate(ctx context.Context, source string) (string, error) {
	if err := validateInput(source, ""); err != nil {
		return "", err
	}
	return g.complete(ctx, SuiteInstruction, suitePrompt(source))
}

func (g *Gemini) GenerateWithInstruction(ctx context.Context, source, instruction string) (string, error) {
	if err := validateInput(source, instruction); err != nil {
		return "", err
	}
	return g.complete(ctx, CaseInstruction, casePrompt(source, instruction))
}

func (g *Gemini) complete(ctx context.Context, system, prompt string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit error: %w", err)
	}

	body := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: system}}},
		Contents:          []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	}
	body.GenerationConfig.Temperature = g.cfg.Temperature

	text, err := resilience.Do(g.breaker, func() (string, error) {
		return g.send(ctx, body)
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return "", fmt.Errorf("gemini unavailable: %w", err)
	}
	if err != nil {
		return "", err
	}
	return CleanOutput(text), nil
}

func (g *Gemini) send(ctx context.Context, body geminiRequest) (string, error) {
	header := http.Header{}
	tracing.InjectTraceContext(ctx, header)

	req := g.resty.R().SetContext(ctx).SetBody(body).SetPathParam("model", g.cfg.Model)
	for key := range header {
		req.SetHeader(key, header.Get(key))
	}

	var out geminiResponse
	resp, err := req.SetResult(&out).Post("/models/{model}:generateContent")
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	if resp.IsError() {
		return "", g.decodeError(resp)
	}

	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini blocked the prompt: %s", out.PromptFeedback.BlockReason)
	}
	if len(out.Candidates) == 0 {
		return "", ErrEmptyOutput
	}

	var sb strings.Builder
	for _, part := range out.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return "", ErrEmptyOutput
	}
	return sb.String(), nil
}

func (g *Gemini) decodeError(resp *resty.Response) error {
	perr := &ProviderError{Provider: ProviderGemini, StatusCode: resp.StatusCode(), Message: resp.Status()}

	var body geminiError
	if err := sonic.Unmarshal(resp.Body(), &body); err == nil && body.Error.Message != "" {
		perr.Message = body.Error.Message
	}
	return perr
}

// isSuccessful keeps client errors from tripping the breaker
func isSuccessful(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		return !perr.Retryable()
	}
	return false
}
