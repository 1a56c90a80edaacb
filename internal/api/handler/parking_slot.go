package handler

import (
	"net/http"
	"strconv"

	"parking_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

type ParkingSlotHandler struct {
	slotService *service.SlotQueryService
}

func NewParkingSlotHandler(ss *service.SlotQueryService) *ParkingSlotHandler {
	return &ParkingSlotHandler{slotService: ss}
}

// GET /api/parking-lots/:id/slots
func (h *ParkingSlotHandler) GetSlotsByLotID(c *gin.Context) {
	lotID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: ErrCodeValidation, Message: "invalid parking lot id"})
		return
	}

	slots, err := h.slotService.ListSlots(c.Request.Context(), lotID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}
