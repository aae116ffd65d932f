package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sakura-poker/reservation-app/events"
	"github.com/sakura-poker/reservation-app/services"
	"github.com/sakura-poker/reservation-app/utils"
)

type ReservationController struct {
	Reservations *services.ReservationService
	Tables       *services.TableService
}

func NewReservationController(reservations *services.ReservationService, tables *services.TableService) *ReservationController {
	return &ReservationController{Reservations: reservations, Tables: tables}
}

// ListReservations -> GET /admin/reservations?start&end&status&table_id
// The window filter is contained-within: both endpoints of a reservation must
// fall inside [start, end].
func (rc *ReservationController) ListReservations(c *gin.Context) {
	filter := services.ListFilter{
		Status:  c.Query("status"),
		TableID: c.Query("table_id"),
	}

	if raw := c.Query("start"); raw != "" {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		filter.Start = &start
	}
	if raw := c.Query("end"); raw != "" {
		end, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		filter.End = &end
	}

	reservations, err := rc.Reservations.ListReservations(filter)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", reservations)
}

// CreateReservation -> POST /admin/reservations
// When the admin omits the party size, the table's minimum is assumed.
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var req services.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.PartySize == 0 && req.TableID != "" {
		table, err := rc.Tables.GetTableByID(req.TableID)
		if err != nil {
			respondEngineError(c, err)
			return
		}
		req.PartySize = table.CapacityMin
	}

	reservation, err := rc.Reservations.CreateReservation(req)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	events.BroadcastReservation(events.EventReservationCreate, *reservation)
	utils.InfoLogger.Printf("Reservation %s created on table %s (%s - %s)",
		reservation.ID, reservation.Table.Name,
		reservation.StartTime.Format("2006-01-02 15:04"), reservation.EndTime.Format("15:04"))
	utils.RespondJSON(c, http.StatusCreated, "Reservation created", reservation)
}

// UpdateReservation -> PUT /admin/reservations/:id
func (rc *ReservationController) UpdateReservation(c *gin.Context) {
	id := c.Param("id")

	var req services.UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	reservation, err := rc.Reservations.UpdateReservation(id, req)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	if reservation.IsActive() {
		events.BroadcastReservation(events.EventReservationUpdate, *reservation)
	}
	utils.InfoLogger.Printf("Reservation %s updated (status=%s)", reservation.ID, reservation.Status)
	utils.RespondJSON(c, http.StatusOK, "Reservation updated", reservation)
}

// GetAvailability -> GET /admin/tables/:table_id/availability?start&end
// Busy intervals for the floor map and time-slot pickers; no write attempted.
func (rc *ReservationController) GetAvailability(c *gin.Context) {
	tableID := c.Param("table_id")

	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	busy, err := rc.Reservations.GetAvailability(tableID, start, end)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Busy intervals", busy)
}
