package http

import (
	"github.com/gin-gonic/gin"
)

// Register mounts every endpoint on router
func (h *Handlers) Register(router gin.IRouter) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/stats", h.Stats)

	router.POST("/run", h.Run)
	router.POST("/generate", h.Generate)

	if h.store == nil {
		return
	}
	projects := router.Group("/projects")
	{
		projects.GET("", h.ListProjects)
		projects.POST("", h.CreateProject)
		projects.GET("/:id", h.GetProject)
		projects.PUT("/:id", h.UpdateProject)
		projects.DELETE("/:id", h.DeleteProject)
		projects.POST("/:id/run", h.RunProject)
	}
}
