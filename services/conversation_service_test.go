package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/sakura-poker/reservation-app/models"
	"github.com/sakura-poker/reservation-app/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupConversationDB(t *testing.T) *gorm.DB {
	utils.InitLogger()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ConversationState{}))
	return db
}

func TestConversationContextRoundTrip(t *testing.T) {
	db := setupConversationDB(t)
	svc := NewConversationService(db)

	// Unknown users start with a clean context.
	context, err := svc.GetContext("Unew")
	require.NoError(t, err)
	assert.Equal(t, ContextNone, context.Type)

	requestedAt := time.Date(2024, 5, 10, 19, 0, 0, 0, time.UTC)
	require.NoError(t, svc.SetContext("Unew", &ConversationContext{
		Type:        ContextAwaitingTableSelection,
		RequestedAt: requestedAt,
		EndTime:     requestedAt.Add(2 * time.Hour),
		TableIDs:    []string{"a", "b"},
	}))

	context, err = svc.GetContext("Unew")
	require.NoError(t, err)
	assert.Equal(t, ContextAwaitingTableSelection, context.Type)
	assert.Equal(t, requestedAt, context.RequestedAt.UTC())
	assert.Equal(t, []string{"a", "b"}, context.TableIDs)

	require.NoError(t, svc.ClearContext("Unew"))
	context, err = svc.GetContext("Unew")
	require.NoError(t, err)
	assert.Equal(t, ContextNone, context.Type)
}

func TestConversationCorruptContextRestartsDialogue(t *testing.T) {
	db := setupConversationDB(t)
	svc := NewConversationService(db)

	state := models.ConversationState{LineUserID: "Ubroken", Context: "not json"}
	require.NoError(t, db.Create(&state).Error)

	context, err := svc.GetContext("Ubroken")
	require.NoError(t, err)
	assert.Equal(t, ContextNone, context.Type)
}

func TestClearContextMissingUserIsNoop(t *testing.T) {
	db := setupConversationDB(t)
	svc := NewConversationService(db)

	assert.NoError(t, svc.ClearContext("Unobody"))
}
