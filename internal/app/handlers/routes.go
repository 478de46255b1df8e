package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the todo routes on rg. The :id segment reaches the
// service as-is.
func RegisterRoutes(rg *gin.RouterGroup, h *TodoHandler) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}
