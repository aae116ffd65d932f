package services

import (
	"errors"
	"sync"
	"time"

	"github.com/sakura-poker/reservation-app/models"
	"gorm.io/gorm"
)

// ReservationService is the reservation engine. It is the single entry point
// for creating and mutating reservations, regardless of which surface (admin,
// customer, chat) originated the request.
type ReservationService struct {
	DB *gorm.DB

	// tableLocks serializes check-then-write per table. The availability
	// check and the subsequent insert/update must be atomic with respect
	// to other calls on the same table, and none of the supported drivers
	// offers a range exclusion constraint.
	tableLocks sync.Map
}

func NewReservationService(db *gorm.DB) *ReservationService {
	return &ReservationService{DB: db}
}

type CreateReservationRequest struct {
	TableID       string    `json:"table_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	PartySize     int       `json:"party_size"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
	LineUserID    *string   `json:"line_user_id"`
	Notes         *string   `json:"notes"`
}

// UpdateReservationRequest is a partial update: nil fields keep their current
// value.
type UpdateReservationRequest struct {
	TableID       *string    `json:"table_id"`
	CustomerName  *string    `json:"customer_name"`
	CustomerPhone *string    `json:"customer_phone"`
	PartySize     *int       `json:"party_size"`
	StartTime     *time.Time `json:"start_time"`
	EndTime       *time.Time `json:"end_time"`
	Status        *string    `json:"status"`
	LineUserID    *string    `json:"line_user_id"`
	Notes         *string    `json:"notes"`
}

type ListFilter struct {
	Start   *time.Time
	End     *time.Time
	Status  string
	TableID string
}

// TimeRange is one busy interval on a table.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func validStatus(status string) bool {
	switch status {
	case models.StatusConfirmed, models.StatusPending, models.StatusCancelled:
		return true
	}
	return false
}

func (s *ReservationService) lockTable(tableID string) func() {
	v, _ := s.tableLocks.LoadOrStore(tableID, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// CreateReservation validates the request, enforces the capacity ceiling and
// time-exclusivity per table, and persists the reservation. Status defaults
// to CONFIRMED.
func (s *ReservationService) CreateReservation(req CreateReservationRequest) (*models.Reservation, error) {
	var bad []string
	if req.TableID == "" {
		bad = append(bad, "table_id")
	}
	if req.CustomerName == "" {
		bad = append(bad, "customer_name")
	}
	if len(req.CustomerPhone) < 5 {
		bad = append(bad, "customer_phone")
	}
	if req.PartySize < 1 {
		bad = append(bad, "party_size")
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() || !req.StartTime.Before(req.EndTime) {
		bad = append(bad, "start_time", "end_time")
	}
	if req.Status == "" {
		req.Status = models.StatusConfirmed
	} else if !validStatus(req.Status) {
		bad = append(bad, "status")
	}
	if len(bad) > 0 {
		return nil, &ValidationError{Fields: bad}
	}

	unlock := s.lockTable(req.TableID)
	defer unlock()

	reservation := &models.Reservation{
		TableID:       req.TableID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		PartySize:     req.PartySize,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Status:        req.Status,
		LineUserID:    req.LineUserID,
		Notes:         req.Notes,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		table, err := s.loadTable(tx, req.TableID)
		if err != nil {
			return err
		}
		if err := checkCapacity(table, req.PartySize); err != nil {
			return err
		}
		if err := s.checkAvailability(tx, req.TableID, req.StartTime, req.EndTime, ""); err != nil {
			return err
		}
		return tx.Create(reservation).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.DB.Preload("Table").First(reservation, "id = ?", reservation.ID).Error; err != nil {
		return nil, err
	}
	return reservation, nil
}

// UpdateReservation merges the partial request into the stored reservation and
// re-validates capacity and availability against the effective values. Setting
// status to CANCELLED bypasses both checks: a cancelled reservation can never
// conflict.
func (s *ReservationService) UpdateReservation(id string, req UpdateReservationRequest) (*models.Reservation, error) {
	var bad []string
	if req.CustomerName != nil && *req.CustomerName == "" {
		bad = append(bad, "customer_name")
	}
	if req.CustomerPhone != nil && len(*req.CustomerPhone) < 5 {
		bad = append(bad, "customer_phone")
	}
	if req.PartySize != nil && *req.PartySize < 1 {
		bad = append(bad, "party_size")
	}
	if req.Status != nil && !validStatus(*req.Status) {
		bad = append(bad, "status")
	}
	if len(bad) > 0 {
		return nil, &ValidationError{Fields: bad}
	}

	var existing models.Reservation
	if err := s.DB.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "reservation", ID: id}
		}
		return nil, err
	}

	merged := existing
	if req.TableID != nil {
		merged.TableID = *req.TableID
	}
	if req.CustomerName != nil {
		merged.CustomerName = *req.CustomerName
	}
	if req.CustomerPhone != nil {
		merged.CustomerPhone = *req.CustomerPhone
	}
	if req.PartySize != nil {
		merged.PartySize = *req.PartySize
	}
	if req.StartTime != nil {
		merged.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		merged.EndTime = *req.EndTime
	}
	if req.Status != nil {
		merged.Status = *req.Status
	}
	if req.LineUserID != nil {
		merged.LineUserID = req.LineUserID
	}
	if req.Notes != nil {
		merged.Notes = req.Notes
	}

	if !merged.StartTime.Before(merged.EndTime) {
		return nil, &ValidationError{Fields: []string{"start_time", "end_time"}}
	}

	if merged.Status == models.StatusCancelled {
		if err := s.DB.Save(&merged).Error; err != nil {
			return nil, err
		}
		return s.reload(merged.ID)
	}

	unlock := s.lockTable(merged.TableID)
	defer unlock()

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		table, err := s.loadTable(tx, merged.TableID)
		if err != nil {
			return err
		}
		if err := checkCapacity(table, merged.PartySize); err != nil {
			return err
		}
		// A reservation may stay inside its own slot without self-conflicting.
		if err := s.checkAvailability(tx, merged.TableID, merged.StartTime, merged.EndTime, merged.ID); err != nil {
			return err
		}
		return tx.Save(&merged).Error
	})
	if err != nil {
		return nil, err
	}
	return s.reload(merged.ID)
}

// ListReservations returns reservations contained within the filter window,
// ascending by start time, with their table joined. The window is
// contained-within, not overlap: a reservation spanning a boundary is
// excluded even if it overlaps the window.
func (s *ReservationService) ListReservations(filter ListFilter) ([]models.Reservation, error) {
	if filter.Status != "" && !validStatus(filter.Status) {
		return nil, &ValidationError{Fields: []string{"status"}}
	}
	if filter.Start != nil && filter.End != nil && filter.End.Before(*filter.Start) {
		return nil, &ValidationError{Fields: []string{"start", "end"}}
	}

	query := s.DB.Preload("Table").Order("start_time ASC")
	if filter.Start != nil {
		query = query.Where("start_time >= ?", *filter.Start)
	}
	if filter.End != nil {
		query = query.Where("end_time <= ?", *filter.End)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.TableID != "" {
		query = query.Where("table_id = ?", filter.TableID)
	}

	var reservations []models.Reservation
	if err := query.Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// GetAvailability returns the busy intervals of active reservations on the
// table that overlap [start, end). Pure read.
func (s *ReservationService) GetAvailability(tableID string, start, end time.Time) ([]TimeRange, error) {
	var reservations []models.Reservation
	err := s.DB.
		Where("table_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			tableID, models.ActiveStatuses, end, start).
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}

	busy := make([]TimeRange, 0, len(reservations))
	for _, r := range reservations {
		busy = append(busy, TimeRange{Start: r.StartTime, End: r.EndTime})
	}
	return busy, nil
}

// ListUserReservations returns every reservation tied to the LINE user,
// cancelled ones included, so customers can see their history. An empty id
// yields an empty list rather than an error.
func (s *ReservationService) ListUserReservations(lineUserID string) ([]models.Reservation, error) {
	if lineUserID == "" {
		return []models.Reservation{}, nil
	}
	var reservations []models.Reservation
	err := s.DB.Preload("Table").
		Where("line_user_id = ?", lineUserID).
		Order("start_time ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

// GetReservation loads one reservation with its table.
func (s *ReservationService) GetReservation(id string) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := s.DB.Preload("Table").First(&reservation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "reservation", ID: id}
		}
		return nil, err
	}
	return &reservation, nil
}

func (s *ReservationService) loadTable(tx *gorm.DB, tableID string) (*models.PokerTable, error) {
	var table models.PokerTable
	if err := tx.First(&table, "id = ?", tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "table", ID: tableID}
		}
		return nil, err
	}
	return &table, nil
}

// Relaxed rule: only the maximum is enforced, there is no minimum party size.
func checkCapacity(table *models.PokerTable, partySize int) error {
	if partySize > table.CapacityMax {
		return &CapacityError{
			TableID:     table.ID,
			PartySize:   partySize,
			CapacityMax: table.CapacityMax,
		}
	}
	return nil
}

// checkAvailability applies the strict interval overlap rule:
// existing.start < new.end AND existing.end > new.start. Touching endpoints
// are not a conflict, so back-to-back bookings are allowed.
func (s *ReservationService) checkAvailability(tx *gorm.DB, tableID string, start, end time.Time, excludeID string) error {
	query := tx.Where("table_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
		tableID, models.ActiveStatuses, end, start)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var conflicts []models.Reservation
	if err := query.Find(&conflicts).Error; err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &ConflictError{
			TableID: tableID,
			Start:   conflicts[0].StartTime,
			End:     conflicts[0].EndTime,
		}
	}
	return nil
}

func (s *ReservationService) reload(id string) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := s.DB.Preload("Table").First(&reservation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}
