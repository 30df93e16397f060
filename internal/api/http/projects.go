package http

import (
	"errors"
	"net/http"

	"github.com/GriffinCanCode/TestBench/backend/internal/domain/project"
	"github.com/GriffinCanCode/TestBench/backend/internal/sandbox"
	"github.com/GriffinCanCode/TestBench/backend/internal/shared/id"
	"github.com/GriffinCanCode/TestBench/backend/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListProjects lists stored projects, newest first
func (h *Handlers) ListProjects(c *gin.Context) {
	done := h.metrics.TrackStoreOperation("list")
	projects, err := h.store.List(c.Request.Context())
	done(err)
	if err != nil {
		h.storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
		"count":    len(projects),
	})
}

// CreateProject stores a new project
func (h *Handlers) CreateProject(c *gin.Context) {
	var in project.Input
	if err := bindJSON(c, &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	done := h.metrics.TrackStoreOperation("create")
	p, err := h.store.Create(c.Request.Context(), in)
	done(err)
	if err != nil {
		h.storeError(c, err)
		return
	}

	h.refreshCount(c)
	h.logger.Info("Project created", zap.String("id", p.ID), zap.String("name", p.Name))
	c.JSON(http.StatusCreated, p)
}

// GetProject returns one project
func (h *Handlers) GetProject(c *gin.Context) {
	projectID, ok := projectParam(c)
	if !ok {
		return
	}

	done := h.metrics.TrackStoreOperation("get")
	p, err := h.store.Get(c.Request.Context(), projectID)
	done(err)
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdateProject applies a partial update
func (h *Handlers) UpdateProject(c *gin.Context) {
	projectID, ok := projectParam(c)
	if !ok {
		return
	}

	var patch project.Patch
	if err := bindJSON(c, &patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	done := h.metrics.TrackStoreOperation("update")
	p, err := h.store.Update(c.Request.Context(), projectID, patch)
	done(err)
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeleteProject removes a project
func (h *Handlers) DeleteProject(c *gin.Context) {
	projectID, ok := projectParam(c)
	if !ok {
		return
	}

	done := h.metrics.TrackStoreOperation("delete")
	err := h.store.Delete(c.Request.Context(), projectID)
	done(err)
	if err != nil {
		h.storeError(c, err)
		return
	}

	h.refreshCount(c)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      projectID,
	})
}

// RunProject runs a stored project's code against its tests
func (h *Handlers) RunProject(c *gin.Context) {
	projectID, ok := projectParam(c)
	if !ok {
		return
	}

	done := h.metrics.TrackStoreOperation("get")
	p, err := h.store.Get(c.Request.Context(), projectID)
	done(err)
	if err != nil {
		h.storeError(c, err)
		return
	}

	report := h.runner.Run(c.Request.Context(), sandbox.Request{SourceCode: p.Code, TestCode: p.TestCode})
	c.JSON(http.StatusOK, report)
}

func projectParam(c *gin.Context) (string, bool) {
	projectID := c.Param("id")
	if !id.IsValidPrefixed(projectID, id.ProjectPrefix) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return "", false
	}
	return projectID, true
}

func (h *Handlers) storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, project.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, project.ErrClosed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Project store failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *Handlers) refreshCount(c *gin.Context) {
	if count, err := h.store.Count(c.Request.Context()); err == nil {
		h.metrics.SetProjects(count)
	}
}
