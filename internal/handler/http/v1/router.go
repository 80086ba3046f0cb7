package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	incidents := api.Group("/incidents")
	{
		incidents.GET("", h.listIncidents)
		// Статические пути регистрируются рядом с /:id, gin отдает им приоритет
		incidents.GET("/stream", h.streamIncidents)
		incidents.GET("/ws", h.streamWebSocket)
		incidents.GET("/grid/:region", h.findInGridRange)
		incidents.GET("/:id", h.getIncident)
		incidents.PATCH("/:id", h.updateIncident)
	}

	api.GET("/regions", h.listRegions)

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
