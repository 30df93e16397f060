package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GriffinCanCode/TestBench/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/TestBench/backend/internal/utils"
)

// Provider names
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

var (
	ErrMissingAPIKey = errors.New("generator API key is missing")
	ErrEmptyOutput   = errors.New("generator returned no text")
	ErrDisabled      = errors.New("test generation is not configured")
)

// Generator writes test code for a piece of source code
type Generator interface {
	// Generate writes a full test suite for source
	Generate(ctx context.Context, source string) (string, error)
	// GenerateWithInstruction writes a single test case following instruction
	GenerateWithInstruction(ctx context.Context, source, instruction string) (string, error)
	// Name identifies the provider
	Name() string
}

// Config configures a provider
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
	RetryWait   time.Duration
	RateLimit   float64 // Requests per second, 0 = unlimited
}

// DefaultConfig returns the Gemini defaults
func DefaultConfig() Config {
	return Config{
		Provider:    ProviderGemini,
		Model:       "gemini-2.0-flash",
		Temperature: 0.2,
		Timeout:     60 * time.Second,
		MaxRetries:  3,
		RetryWait:   time.Second,
	}
}

// New creates the configured provider. It returns (nil, nil) for ProviderNone.
func New(cfg Config) (Generator, error) {
	switch cfg.Provider {
	case ProviderNone, "":
		return nil, nil
	case ProviderGemini:
		return NewGemini(cfg)
	case ProviderOpenAI:
		return NewOpenAI(cfg)
	default:
		return nil, fmt.Errorf("unsupported generator provider %q", cfg.Provider)
	}
}

// Recorder receives one observation per generation call
type Recorder interface {
	RecordGeneration(provider string, err error, duration time.Duration)
}

type instrumented struct {
	Generator
	recorder Recorder
}

// Instrument reports every call of g to recorder
func Instrument(g Generator, recorder Recorder) Generator {
	if g == nil || recorder == nil {
		return g
	}
	return &instrumented{Generator: g, recorder: recorder}
}

func (i *instrumented) Generate(ctx context.Context, source string) (string, error) {
	start := time.Now()
	out, err := i.Generator.Generate(ctx, source)
	i.recorder.RecordGeneration(i.Name(), err, time.Since(start))
	return out, err
}

func (i *instrumented) GenerateWithInstruction(ctx context.Context, source, instruction string) (string, error) {
	start := time.Now()
	out, err := i.Generator.GenerateWithInstruction(ctx, source, instruction)
	i.recorder.RecordGeneration(i.Name(), err, time.Since(start))
	return out, err
}

// BreakerOf returns the circuit breaker guarding g, if it has one
func BreakerOf(g Generator) (*resilience.Breaker, bool) {
	if i, ok := g.(*instrumented); ok {
		g = i.Generator
	}
	if b, ok := g.(interface{ Breaker() *resilience.Breaker }); ok {
		return b.Breaker(), true
	}
	return nil, false
}

// validateInput checks request sizes before anything is sent upstream
func validateInput(source, instruction string) error {
	if err := utils.ValidateCode("code", source); err != nil {
		return err
	}
	return utils.ValidateInstruction(instruction)
}
