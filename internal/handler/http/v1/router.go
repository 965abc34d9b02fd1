package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Маршрут Health-check доступен без ключа
	api.GET("/system/health", h.healthCheck)

	secured := api.Group("")
	secured.Use(APIKeyAuthMiddleware(h.cfg, h.logger))

	// Маршруты работы с инцидентами
	incidents := secured.Group("/incidents")
	{
		incidents.POST("", h.reportIncident)
		incidents.GET("", h.listIncidents)
		incidents.GET("/:id", h.getIncident)
	}

	// Маршруты работы с ответственными
	responders := secured.Group("/responders")
	{
		responders.POST("", h.registerResponder)
		responders.GET("", h.listResponders)
		responders.GET("/:id", h.getResponder)
		responders.PATCH("/:id/approval", h.updateApproval)
		responders.PUT("/:id/location", h.updateLocation)
		responders.PUT("/:id/availability", h.changeAvailability)
	}
}
