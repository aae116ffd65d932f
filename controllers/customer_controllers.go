package controllers

import (
	"errors"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sakura-poker/reservation-app/events"
	"github.com/sakura-poker/reservation-app/services"
	"github.com/sakura-poker/reservation-app/utils"
)

// Bookable slot grid: evening slots of two hours each.
var slotStartHours = []int{18, 19, 20, 21}

const slotDuration = 2 * time.Hour

var (
	domesticPhonePattern      = regexp.MustCompile(`^0\d{9,10}$`)
	internationalPhonePattern = regexp.MustCompile(`^\+?[0-9\-]{8,}$`)
)

type CustomerController struct {
	Reservations  *services.ReservationService
	Tables        *services.TableService
	Templates     *services.TemplateService
	Notifications *services.NotificationService
}

func NewCustomerController(reservations *services.ReservationService, tables *services.TableService, templates *services.TemplateService, notifications *services.NotificationService) *CustomerController {
	return &CustomerController{
		Reservations:  reservations,
		Tables:        tables,
		Templates:     templates,
		Notifications: notifications,
	}
}

type availabilitySlot struct {
	TableID      string    `json:"table_id"`
	TableName    string    `json:"table_name"`
	StartAt      time.Time `json:"start_at"`
	EndAt        time.Time `json:"end_at"`
	CapacityMin  int       `json:"capacity_min"`
	CapacityMax  int       `json:"capacity_max"`
	IsSmoking    bool      `json:"is_smoking"`
	DisplayOrder int       `json:"display_order"`
}

// GetAvailability -> GET /customer/availability?date=YYYY-MM-DD&party_size=N
// Builds the free-slot grid for the requested evening: every table that fits
// the party, every slot hour with no overlapping active reservation.
func (cc *CustomerController) GetAvailability(c *gin.Context) {
	date, err := time.ParseInLocation("2006-01-02", c.Query("date"), time.Local)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid parameters"))
		return
	}
	partySize := 2
	if raw := c.Query("party_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid parameters"))
			return
		}
		partySize = n
	}

	tables, err := cc.Tables.ListTables()
	if err != nil {
		respondEngineError(c, err)
		return
	}

	slots := make([]availabilitySlot, 0)
	for _, table := range tables {
		// Relaxed rule: only the maximum matters.
		if partySize > table.CapacityMax {
			continue
		}
		for _, hour := range slotStartHours {
			startTime := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, date.Location())
			endTime := startTime.Add(slotDuration)

			busy, err := cc.Reservations.GetAvailability(table.ID, startTime, endTime)
			if err != nil {
				respondEngineError(c, err)
				return
			}
			if len(busy) == 0 {
				slots = append(slots, availabilitySlot{
					TableID:      table.ID,
					TableName:    table.Name,
					StartAt:      startTime,
					EndAt:        endTime,
					CapacityMin:  table.CapacityMin,
					CapacityMax:  table.CapacityMax,
					IsSmoking:    table.IsSmoking,
					DisplayOrder: table.DisplayOrder,
				})
			}
		}
	}

	sort.Slice(slots, func(i, j int) bool {
		if slots[i].StartAt.Equal(slots[j].StartAt) {
			return slots[i].DisplayOrder < slots[j].DisplayOrder
		}
		return slots[i].StartAt.Before(slots[j].StartAt)
	})

	utils.RespondJSON(c, http.StatusOK, "Available slots", gin.H{
		"date":       date,
		"party_size": partySize,
		"slots":      slots,
	})
}

// Book -> POST /customer/book (LIFF authenticated)
func (cc *CustomerController) Book(c *gin.Context) {
	var req struct {
		TableID   string    `json:"table_id" binding:"required"`
		StartAt   time.Time `json:"start_at" binding:"required"`
		EndAt     time.Time `json:"end_at" binding:"required"`
		PartySize int       `json:"party_size" binding:"required"`
		Name      string    `json:"name" binding:"required"`
		Phone     string    `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid booking payload"))
		return
	}
	if !domesticPhonePattern.MatchString(req.Phone) && !internationalPhonePattern.MatchString(req.Phone) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid booking payload"))
		return
	}

	lineUserID := c.GetString("lineUserID")

	reservation, err := cc.Reservations.CreateReservation(services.CreateReservationRequest{
		TableID:       req.TableID,
		CustomerName:  req.Name,
		CustomerPhone: req.Phone,
		PartySize:     req.PartySize,
		StartTime:     req.StartAt,
		EndTime:       req.EndAt,
		Status:        "CONFIRMED",
		LineUserID:    &lineUserID,
	})
	if err != nil {
		respondEngineError(c, err)
		return
	}

	events.BroadcastReservation(events.EventReservationCreate, *reservation)
	go cc.notifyConfirmation(reservation.ID)

	utils.RespondJSON(c, http.StatusCreated, "Reservation created", reservation)
}

// GetMyReservations -> GET /customer/my/reservations (LIFF authenticated)
// History view: cancelled reservations are included.
func (cc *CustomerController) GetMyReservations(c *gin.Context) {
	lineUserID := c.GetString("lineUserID")
	if lineUserID == "" {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}

	reservations, err := cc.Reservations.ListUserReservations(lineUserID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "My reservations", reservations)
}

// notifyConfirmation runs after the booking committed; it must never undo or
// delay the reservation.
func (cc *CustomerController) notifyConfirmation(reservationID string) {
	reservation, err := cc.Reservations.GetReservation(reservationID)
	if err != nil {
		utils.ErrorLogger.Printf("Failed to load reservation %s for confirmation: %v", reservationID, err)
		return
	}
	message, err := cc.Templates.RenderConfirmation(reservation)
	if err != nil {
		utils.ErrorLogger.Printf("Failed to render confirmation for reservation %s: %v", reservationID, err)
		return
	}
	cc.Notifications.SendConfirmation(reservation, message)
}
