package Controllers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sakura-poker/reservation-app/controllers"
	"github.com/sakura-poker/reservation-app/models"
	"github.com/sakura-poker/reservation-app/services"
	"github.com/sakura-poker/reservation-app/utils"
)

func setupTestDBForTables(t *testing.T) *gorm.DB {
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

func setupTableRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	tableCtrl := controllers.NewTableController(services.NewTableService(db))
	router.GET("/tables", tableCtrl.GetAllTables)
	router.GET("/admin/tables/:table_id", tableCtrl.GetTableByID)
	router.PATCH("/admin/tables/:table_id", tableCtrl.UpdateTable)
	return router
}

func TestGetAllTablesSeedsFloorPlan(t *testing.T) {
	db := setupTestDBForTables(t)
	router := setupTableRouter(db)

	req, err := http.NewRequest("GET", "/tables", nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "List of tables", response["message"])

	data := response["data"].([]interface{})
	require.Len(t, data, 9)
	first := data[0].(map[string]interface{})
	assert.Equal(t, "T01", first["name"])
}

func TestGetTableByIDEndpoint(t *testing.T) {
	db := setupTestDBForTables(t)
	router := setupTableRouter(db)

	tableSvc := services.NewTableService(db)
	tables, err := tableSvc.ListTables()
	require.NoError(t, err)

	req, err := http.NewRequest("GET", "/admin/tables/"+tables[0].ID, nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req, err = http.NewRequest("GET", "/admin/tables/missing", nil)
	require.NoError(t, err)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateTableEndpoint(t *testing.T) {
	db := setupTestDBForTables(t)
	router := setupTableRouter(db)

	tableSvc := services.NewTableService(db)
	tables, err := tableSvc.ListTables()
	require.NoError(t, err)

	w := postJSON(t, router, "PATCH", "/admin/tables/"+tables[0].ID, map[string]any{
		"capacity_max": 10,
		"category":     "トーナメント卓",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Table updated", response["message"])
	data := response["data"].(map[string]interface{})
	assert.EqualValues(t, 10, data["capacity_max"])
	assert.Equal(t, "トーナメント卓", data["category"])
}

func TestUpdateTableEndpointRejectsBadCapacity(t *testing.T) {
	db := setupTestDBForTables(t)
	router := setupTableRouter(db)

	tableSvc := services.NewTableService(db)
	tables, err := tableSvc.ListTables()
	require.NoError(t, err)

	w := postJSON(t, router, "PATCH", "/admin/tables/"+tables[0].ID, map[string]any{
		"capacity_min": 12,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
