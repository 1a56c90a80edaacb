package handler

import (
	"net/http"

	"parking_tracker/internal/domain"
	"parking_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

type ParkingLotHandler struct {
	queryService  *service.LotQueryService
	upsertService *service.LotUpsertService
}

func NewParkingLotHandler(qs *service.LotQueryService, us *service.LotUpsertService) *ParkingLotHandler {
	return &ParkingLotHandler{queryService: qs, upsertService: us}
}

type UpsertResponse struct {
	Status     service.UpsertOutcome `json:"status"`
	ParkingLot *domain.ParkingLot    `json:"parkingLot"`
}

// GET /api/parking-lots
func (h *ParkingLotHandler) GetAllParkingLots(c *gin.Context) {
	lots, err := h.queryService.ListParkingLots(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lots)
}

// POST /api/nearby-parking-lots
func (h *ParkingLotHandler) GetNearbyParkingLots(c *gin.Context) {
	var req domain.NearbyLotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	lots, err := h.queryService.FindNearbyParkingLots(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lots)
}

// POST /api/lot-details
func (h *ParkingLotHandler) GetLotDetails(c *gin.Context) {
	var req domain.LotDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	detail, err := h.queryService.GetLotDetails(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// PUT /api/update-parking-lot
func (h *ParkingLotHandler) UpsertParkingLot(c *gin.Context) {
	var dto domain.UpsertParkingLotDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		respondBindError(c, err)
		return
	}
	lot, outcome, err := h.upsertService.UpsertParkingLot(c.Request.Context(), dto)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if outcome == service.OutcomeCreated {
		status = http.StatusCreated
	}
	c.JSON(status, UpsertResponse{Status: outcome, ParkingLot: lot})
}

// PUT /api/update-slot-status
func (h *ParkingLotHandler) UpdateSlotStatus(c *gin.Context) {
	var dto domain.UpdateSlotStatusDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		respondBindError(c, err)
		return
	}
	lot, err := h.upsertService.UpdateSlotStatus(c.Request.Context(), dto)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, UpsertResponse{Status: service.OutcomeUpdated, ParkingLot: lot})
}
