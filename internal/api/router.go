package api

import (
	"net/http"

	"parking_tracker/internal/api/handler"
	"parking_tracker/internal/api/middleware"
	"parking_tracker/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

func SetupRouter(lotH *handler.ParkingLotHandler, slotH *handler.ParkingSlotHandler) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(metrics.Middleware())

	r.GET("/", handler.Liveness)
	r.GET("/metrics", metrics.Handler())

	apiRoutes := r.Group("/api")
	{
		apiRoutes.GET("/parking-lots", lotH.GetAllParkingLots)
		apiRoutes.GET("/parking-lots/:id/slots", slotH.GetSlotsByLotID)
		apiRoutes.POST("/nearby-parking-lots", lotH.GetNearbyParkingLots)
		apiRoutes.POST("/lot-details", lotH.GetLotDetails)
		apiRoutes.PUT("/update-parking-lot", lotH.UpsertParkingLot)
		apiRoutes.PUT("/update-slot-status", lotH.UpdateSlotStatus)
	}

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept", "Origin", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}).Handler(r)
}
