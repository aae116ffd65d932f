package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sakura-poker/reservation-app/events"
	"github.com/sakura-poker/reservation-app/services"
	"github.com/sakura-poker/reservation-app/utils"
)

type TableController struct {
	Tables *services.TableService
}

func NewTableController(tables *services.TableService) *TableController {
	return &TableController{Tables: tables}
}

// GetAllTables -> GET /tables
func (tc *TableController) GetAllTables(c *gin.Context) {
	tables, err := tc.Tables.ListTables()
	if err != nil {
		respondEngineError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetTableByID -> GET /admin/tables/:table_id
func (tc *TableController) GetTableByID(c *gin.Context) {
	table, err := tc.Tables.GetTableByID(c.Param("table_id"))
	if err != nil {
		respondEngineError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// UpdateTable -> PATCH /admin/tables/:table_id
// Operators may adjust the capacity bounds and category of a seeded table;
// identity and existing reservations are untouched.
func (tc *TableController) UpdateTable(c *gin.Context) {
	var req struct {
		CapacityMin *int    `json:"capacity_min"`
		CapacityMax *int    `json:"capacity_max"`
		Category    *string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Tables.UpdateTable(c.Param("table_id"), req.CapacityMin, req.CapacityMax, req.Category)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	events.BroadcastTableUpdate(*table)
	utils.InfoLogger.Printf("Table %s updated (capacity %d-%d)", table.Name, table.CapacityMin, table.CapacityMax)
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}
