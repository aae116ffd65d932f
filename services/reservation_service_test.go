package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sakura-poker/reservation-app/models"
	"github.com/sakura-poker/reservation-app/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupReservationDB(t *testing.T) *gorm.DB {
	utils.InitLogger()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.PokerTable{},
		&models.Reservation{},
		&models.NotificationLog{},
	))
	return db
}

func seedTable(t *testing.T, db *gorm.DB, capacityMin, capacityMax int) models.PokerTable {
	table := models.PokerTable{
		ID:           uuid.NewString(),
		Name:         fmt.Sprintf("X%d", capacityMax),
		Category:     "test",
		CapacityMin:  capacityMin,
		CapacityMax:  capacityMax,
		DisplayOrder: 1,
	}
	require.NoError(t, db.Create(&table).Error)
	return table
}

func at(hour int) time.Time {
	return time.Date(2024, 5, 10, hour, 0, 0, 0, time.UTC)
}

func baseRequest(tableID string, startHour, endHour int) CreateReservationRequest {
	return CreateReservationRequest{
		TableID:       tableID,
		CustomerName:  "田中太郎",
		CustomerPhone: "08012345678",
		PartySize:     4,
		StartTime:     at(startHour),
		EndTime:       at(endHour),
	}
}

func TestCreateReservationDefaultsToConfirmed(t *testing.T) {
	db := setupReservationDB(t)
	table := seedTable(t, db, 4, 6)
	svc := NewReservationService(db)

	reservation, err := svc.CreateReservation(baseRequest(table.ID, 10, 12))
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, reservation.Status)
	assert.Equal(t, table.Name, reservation.Table.Name)
	assert.NotEmpty(t, reservation.ID)
}

func TestCreateReservationValidation(t *testing.T) {
	db := setupReservationDB(t)
	svc := NewReservationService(db)

	_, err := svc.CreateReservation(CreateReservationRequest{
		CustomerPhone: "123",
		StartTime:     at(12),
		EndTime:       at(10),
	})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "table_id")
	assert.Contains(t, validationErr.Fields, "customer_name")
	assert.Contains(t, validationErr.Fields, "customer_phone")
	assert.Contains(t, validationErr.Fields, "party_size")
	assert.Contains(t, validationErr.Fields, "start_time")

	var count int64
	db.Model(&models.Reservation{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateReservationTableNotFound(t *testing.T) {
	db := setupReservationDB(t)
	svc := NewReservationService(db)

	_, err := svc.CreateReservation(baseRequest(uuid.NewString(), 10, 12))
	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "table", notFoundErr.Resource)
}

// Scenario: capacityMax=6, party of 8 is rejected and nothing is written.
func TestCreateReservationCapacityCeiling(t *testing.T) {
	db := setupReservationDB(t)
	table := seedTable(t, db, 4, 6)
	svc := NewReservationService(db)

	req := baseRequest(table.ID, 10, 12)
	req.PartySize = 8
	_, err := svc.CreateReservation(req)

	var capacityErr *CapacityError
	require.ErrorAs(t, err, &capacityErr)
	assert.Equal(t, 8, capacityErr.PartySize)
	assert.Equal(t, 6, capacityErr.CapacityMax)

	var count int64
	db.Model(&models.Reservation{}).Count(&count)
	assert.Zero(t, count)
}

// No minimum is enforced: a party of 1 on a 4-6 table is fine.
func TestCreateReservationNoMinimumEnforced(t *testing.T) {
	db := setupReservationDB(t)
	table := seedTable(t, db, 4, 6)
	svc := NewReservationService(db)

	req := baseRequest(table.ID, 10, 12)
	req.PartySize = 1
	_, err := svc.CreateReservation(req)
	assert.NoError(t, err)
}

// Scenario: 10:00-12:00 booked, 11:00-13:00 conflicts, 12:00-14:00 touches
// the boundary and is allowed.
func TestCreateReservationOverlapAndTouchingBoundary(t *testing.T) {
	db := setupReservationDB(t)
	table := seedTable(t, db, 4, 6)
	svc := NewReservationService(db)

	_, err := svc.CreateReservation(baseRequest(table.ID, 10, 12))
	require.NoError(t, err)

	_, err = svc.CreateReservation(baseRequest(table.ID, 11, 13))
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, table.ID, conflictErr.TableID)
	assert.Equal(t, at(10), conflictErr.Start.UTC())

	_, err = svc.CreateReservation(baseRequest(table.ID, 12, 14))
	assert.NoError(t, err)

	var count int64
	db.Model(&models.Reservation{}).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestCreateReservationPendingBlocksSlot(t *testing.T) {
	db := setupReservationDB(t)
	table := seedTable(t, db, 4, 6)
	svc := NewReservationService(db)

	req := baseRequest(table.ID, 10, 12)
	req.Status = models.StatusPending
	_, err := svc.CreateReservation(req)
	require.NoError(t, err)

	_, err = svc.CreateReservation(baseRequest(table.ID, 11, 13))
	var conflictErr *ConflictError
	assert.ErrorAs(t, err, &conflictErr)
}

func TestCreateReservationDifferentTablesDoNotConflict(t *testing.T) {
	db := setupReservationDB(t)
	tableA := seedTable(t, db, 4, 6)
	tableB := models.PokerTable{ID: uuid.NewString(), Name: "Y", Category: "test", CapacityMin: 4, CapacityMax: 6}
	require.NoError(t, db.Create(&tableB).Error)
	svc := NewReservationService(db)

	_, err := svc.CreateReservation(baseRequest(tableA.ID, 10, 12))
	require.NoError(t, err)
	_, err = svc.CreateReservation(baseRequest(tableB.ID, 10, 12))
	assert.NoError(t, err)
}

// Cancelling skips capacity and availability checks entirely, and a cancelled
// reservation no longer blocks the slot.
func TestUpdateReservationCancelBypass(t *testing.T) {
	db := setupReservationDB(t)
	table := seedTable(t, db, 4, 6)
	svc := NewReservationService(db)

	reservation, err := svc.CreateReservation(baseRequest(table.ID, 18, 20))
	require.NoError(t, err)

	cancelled := models.StatusCancelled
	oversized := 99
	updated, err := svc.UpdateReservation(reservation.ID, UpdateReservationRequest{
		Status:    &cancelled,
		PartySize: &oversized,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, updated.Status)

	// The slot is free again.
	_, err = svc.CreateReservation(baseRequest(table.ID, 19, 21))
	assert.NoError(t, err)
}

// A reservation may be updated within its own slot without conflicting with
// itself.
func TestUpdateReservationSelfExclusion(t *testing.T) {
	db := setupReservationDB(t)
	table := seedTable(t, db, 4, 6)
	svc := NewReservationService(db)

	reservation, err := svc.CreateReservation(baseRequest(table.ID, 10, 12))
	require.NoError(t, err)

	phone := "09087654321"
	updated, err := svc.UpdateReservation(reservation.ID, UpdateReservationRequest{
		CustomerPhone: &phone,
	})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.CustomerPhone)
	assert.Equal(t, reservation.StartTime.UTC(), updated.StartTime.UTC())
}

func TestUpdateReservationConflictsWithOther(t *testing.T) {
	db := setupReservationDB(t)
	table := seedTable(t, db, 4, 6)
	svc := NewReservationService(db)

	_, err := svc.CreateReservation(baseRequest(table.ID, 10, 12))
	require.NoError(t, err)
	second, err := svc.CreateReservation(baseRequest(table.ID, 14, 16))
	require.NoError(t, err)

	newStart := at(11)
	newEnd := at(13)
	_, err = svc.UpdateReservation(second.ID, UpdateReservationRequest{
		StartTime: &newStart,
		EndTime:   &newEnd,
	})
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)

	// The store is unchanged.
	reloaded, err := svc.GetReservation(second.ID)
	require.NoError(t, err)
	assert.Equal(t, at(14), reloaded.StartTime.UTC())
}

func TestUpdateReservationNotFound(t *testing.T) {
	db := setupReservationDB(t)
	svc := NewReservationService(db)

	_, err := svc.UpdateReservation(uuid.NewString(), UpdateReservationRequest{})
	var notFoundErr *NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestUpdateReservationRevalidatesCapacity(t *testing.T) {
	db := setupReservationDB(t)
	table := seedTable(t, db, 4, 6)
	svc := NewReservationService(db)

	reservation, err := svc.CreateReservation(baseRequest(table.ID, 10, 12))
	require.NoError(t, err)

	oversized := 9
	_, err = svc.UpdateReservation(reservation.ID, UpdateReservationRequest{
		PartySize: &oversized,
	})
	var capacityErr *CapacityError
	assert.ErrorAs(t, err, &capacityErr)
}

// Scenario: the window filter is contained-within, not overlap. A reservation
// spanning past the window end is excluded even though it overlaps.
func TestListReservationsContainedWithinWindow(t *testing.T) {
	db := setupReservationDB(t)
	table := seedTable(t, db, 4, 6)
	svc := NewReservationService(db)

	_, err := svc.CreateReservation(baseRequest(table.ID, 10, 12))
	require.NoError(t, err)
	_, err = svc.CreateReservation(baseRequest(table.ID, 15, 17))
	require.NoError(t, err)

	windowStart := at(9)
	windowEnd := at(16)
	reservations, err := svc.ListReservations(ListFilter{Start: &windowStart, End: &windowEnd})
	require.NoError(t, err)
	require.Len(t, reservations, 1)
	assert.Equal(t, at(10), reservations[0].StartTime.UTC())
	assert.Equal(t, table.Name, reservations[0].Table.Name)
}

func TestListReservationsOrderAndStatusFilter(t *testing.T) {
	db := setupReservationDB(t)
	table := seedTable(t, db, 4, 6)
	svc := NewReservationService(db)

	later := baseRequest(table.ID, 14, 16)
	_, err := svc.CreateReservation(later)
	require.NoError(t, err)

	earlier := baseRequest(table.ID, 10, 12)
	earlier.Status = models.StatusPending
	_, err = svc.CreateReservation(earlier)
	require.NoError(t, err)

	all, err := svc.ListReservations(ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[0].StartTime.Before(all[1].StartTime))

	pending, err := svc.ListReservations(ListFilter{Status: models.StatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.StatusPending, pending[0].Status)
}

func TestListReservationsRejectsMalformedFilter(t *testing.T) {
	db := setupReservationDB(t)
	svc := NewReservationService(db)

	_, err := svc.ListReservations(ListFilter{Status: "BOGUS"})
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestGetAvailabilityIgnoresCancelled(t *testing.T) {
	db := setupReservationDB(t)
	table := seedTable(t, db, 4, 6)
	svc := NewReservationService(db)

	reservation, err := svc.CreateReservation(baseRequest(table.ID, 10, 12))
	require.NoError(t, err)

	busy, err := svc.GetAvailability(table.ID, at(9), at(13))
	require.NoError(t, err)
	require.Len(t, busy, 1)
	assert.Equal(t, at(10), busy[0].Start.UTC())
	assert.Equal(t, at(12), busy[0].End.UTC())

	cancelled := models.StatusCancelled
	_, err = svc.UpdateReservation(reservation.ID, UpdateReservationRequest{Status: &cancelled})
	require.NoError(t, err)

	busy, err = svc.GetAvailability(table.ID, at(9), at(13))
	require.NoError(t, err)
	assert.Empty(t, busy)
}

func TestGetAvailabilityStrictOverlap(t *testing.T) {
	db := setupReservationDB(t)
	table := seedTable(t, db, 4, 6)
	svc := NewReservationService(db)

	_, err := svc.CreateReservation(baseRequest(table.ID, 10, 12))
	require.NoError(t, err)

	// Touching windows are not overlap.
	busy, err := svc.GetAvailability(table.ID, at(12), at(14))
	require.NoError(t, err)
	assert.Empty(t, busy)

	busy, err = svc.GetAvailability(table.ID, at(8), at(10))
	require.NoError(t, err)
	assert.Empty(t, busy)
}

func TestListUserReservationsIncludesCancelled(t *testing.T) {
	db := setupReservationDB(t)
	table := seedTable(t, db, 4, 6)
	svc := NewReservationService(db)

	lineUser := "U1234567890"
	req := baseRequest(table.ID, 10, 12)
	req.LineUserID = &lineUser
	reservation, err := svc.CreateReservation(req)
	require.NoError(t, err)

	cancelled := models.StatusCancelled
	_, err = svc.UpdateReservation(reservation.ID, UpdateReservationRequest{Status: &cancelled})
	require.NoError(t, err)

	req2 := baseRequest(table.ID, 14, 16)
	req2.LineUserID = &lineUser
	_, err = svc.CreateReservation(req2)
	require.NoError(t, err)

	mine, err := svc.ListUserReservations(lineUser)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	other, err := svc.ListUserReservations("Uother")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestListUserReservationsEmptyID(t *testing.T) {
	db := setupReservationDB(t)
	svc := NewReservationService(db)

	mine, err := svc.ListUserReservations("")
	require.NoError(t, err)
	assert.Empty(t, mine)
}

// Two concurrent creates for the same overlapping slot: exactly one succeeds
// and exactly one gets a ConflictError, never two successes.
func TestConcurrentCreateOneWinner(t *testing.T) {
	db := setupReservationDB(t)
	table := seedTable(t, db, 4, 6)
	svc := NewReservationService(db)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateReservation(baseRequest(table.ID, 10, 12))
		}(i)
	}
	wg.Wait()

	successes := 0
	conflicts := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		var conflictErr *ConflictError
		if assert.ErrorAs(t, err, &conflictErr) {
			conflicts++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	var count int64
	db.Model(&models.Reservation{}).Count(&count)
	assert.EqualValues(t, 1, count)
}
