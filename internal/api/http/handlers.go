package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/GriffinCanCode/TestBench/backend/internal/domain/project"
	"github.com/GriffinCanCode/TestBench/backend/internal/generator"
	"github.com/GriffinCanCode/TestBench/backend/internal/sandbox"
	"github.com/GriffinCanCode/TestBench/backend/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Version is reported by the root endpoint
const Version = "1.0.0"

// Runner executes one source/test pair and always returns a report
type Runner interface {
	Run(ctx context.Context, req sandbox.Request) sandbox.Report
	Stats() map[string]interface{}
}

// Handlers contains all HTTP handlers
type Handlers struct {
	runner    Runner
	store     project.Store
	generator generator.Generator
	metrics   *HandlerMetrics
	logger    *zap.Logger
}

// NewHandlers creates a new handler set. store, gen and metrics may be nil.
func NewHandlers(
	runner Runner,
	store project.Store,
	gen generator.Generator,
	metrics *HandlerMetrics,
	logger *zap.Logger,
) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		runner:    runner,
		store:     store,
		generator: gen,
		metrics:   metrics,
		logger:    logger,
	}
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "TestBench",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	storeHealth := gin.H{"enabled": h.store != nil}
	if h.store != nil {
		count, err := h.store.Count(c.Request.Context())
		if err != nil {
			storeHealth["error"] = err.Error()
		} else {
			storeHealth["projects"] = count
		}
	}

	generatorHealth := gin.H{"enabled": h.generator != nil}
	if h.generator != nil {
		generatorHealth["provider"] = h.generator.Name()
		if b, ok := generator.BreakerOf(h.generator); ok {
			generatorHealth["breaker"] = b.Snapshot()
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"sandbox":   h.runner.Stats(),
		"store":     storeHealth,
		"generator": generatorHealth,
	})
}

// RunRequest is the body of POST /run
type RunRequest struct {
	Code     string `json:"code"`
	TestCode string `json:"testCode"`
}

// Run executes a source/test pair. Every run answers 200 with a report.
func (h *Handlers) Run(c *gin.Context) {
	var req RunRequest
	if err := bindJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validateRun(req.Code, req.TestCode); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report := h.runner.Run(c.Request.Context(), sandbox.Request{SourceCode: req.Code, TestCode: req.TestCode})
	c.JSON(http.StatusOK, report)
}

// GenerateRequest is the body of POST /generate
type GenerateRequest struct {
	Code        string `json:"code"`
	Instruction string `json:"instruction,omitempty"`
}

// Generate writes test code for the given source
func (h *Handlers) Generate(c *gin.Context) {
	if h.generator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": generator.ErrDisabled.Error()})
		return
	}

	var req GenerateRequest
	if err := bindJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		testCode string
		err      error
	)
	if req.Instruction != "" {
		testCode, err = h.generator.GenerateWithInstruction(c.Request.Context(), req.Code, req.Instruction)
	} else {
		testCode, err = h.generator.Generate(c.Request.Context(), req.Code)
	}

	switch {
	case errors.Is(err, utils.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		h.logger.Warn("Test generation failed", zap.String("provider", h.generator.Name()), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"testCode": testCode})
	}
}

// Stats returns run statistics
func (h *Handlers) Stats(c *gin.Context) {
	summary, ok := h.metrics.Stats()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "metrics are disabled"})
		return
	}

	response := gin.H{"runs": summary}
	if snap, ok := h.metrics.Snapshot(); ok {
		response["http"] = snap
	}
	c.JSON(http.StatusOK, response)
}

func validateRun(code, testCode string) error {
	if err := utils.ValidateCode("code", code); err != nil {
		return err
	}
	return utils.ValidateCode("testCode", testCode)
}
