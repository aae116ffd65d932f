package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/sakura-poker/reservation-app/models"
	"gorm.io/gorm"
)

// TableService is the table catalog. Tables are seeded once at bootstrap and
// never deleted while reservations reference them.
type TableService struct {
	DB *gorm.DB
}

func NewTableService(db *gorm.DB) *TableService {
	return &TableService{DB: db}
}

// EnsureSeedData installs the floor plan if it is not present yet. The VIP
// room marks the current plan; its absence means an empty or stale catalog.
func (s *TableService) EnsureSeedData() error {
	var vip models.PokerTable
	err := s.DB.First(&vip, "name = ?", "VIP").Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var count int64
	if err := s.DB.Model(&models.PokerTable{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		// Old floor plan without reservations attached yet: reset it.
		return s.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("1 = 1").Delete(&models.NotificationLog{}).Error; err != nil {
				return err
			}
			if err := tx.Where("1 = 1").Delete(&models.Reservation{}).Error; err != nil {
				return err
			}
			if err := tx.Where("1 = 1").Delete(&models.PokerTable{}).Error; err != nil {
				return err
			}
			return s.createFloorPlan(tx)
		})
	}

	return s.DB.Transaction(s.createFloorPlan)
}

func (s *TableService) createFloorPlan(tx *gorm.DB) error {
	tables := []models.PokerTable{
		{Name: "T01", Category: "9名卓", CapacityMin: 6, CapacityMax: 9, IsSmoking: false, DisplayOrder: 1},
		{Name: "T02", Category: "9名卓", CapacityMin: 6, CapacityMax: 9, IsSmoking: false, DisplayOrder: 2},
		{Name: "T03", Category: "6名卓", CapacityMin: 4, CapacityMax: 6, IsSmoking: false, DisplayOrder: 3},
		{Name: "T04", Category: "9名卓", CapacityMin: 6, CapacityMax: 9, IsSmoking: false, DisplayOrder: 4},
		{Name: "T05", Category: "6名卓", CapacityMin: 4, CapacityMax: 6, IsSmoking: false, DisplayOrder: 5},
		{Name: "T06", Category: "6名卓", CapacityMin: 4, CapacityMax: 6, IsSmoking: false, DisplayOrder: 6},
		{Name: "T07", Category: "喫煙6名卓", CapacityMin: 4, CapacityMax: 6, IsSmoking: true, DisplayOrder: 7},
		{Name: "T08", Category: "喫煙4-6名卓", CapacityMin: 4, CapacityMax: 6, IsSmoking: true, DisplayOrder: 8},
		{Name: "VIP", Category: "VIP Room", CapacityMin: 2, CapacityMax: 5, IsSmoking: false, DisplayOrder: 9},
	}
	for i := range tables {
		tables[i].ID = uuid.NewString()
		if err := tx.Create(&tables[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *TableService) ListTables() ([]models.PokerTable, error) {
	if err := s.EnsureSeedData(); err != nil {
		return nil, err
	}
	var tables []models.PokerTable
	if err := s.DB.Order("display_order ASC").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (s *TableService) GetTableByID(tableID string) (*models.PokerTable, error) {
	var table models.PokerTable
	if err := s.DB.First(&table, "id = ?", tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "table", ID: tableID}
		}
		return nil, err
	}
	return &table, nil
}

// UpdateTable edits the operator-adjustable fields. Capacity bounds must stay
// consistent; identity and reservations are untouched.
func (s *TableService) UpdateTable(tableID string, capacityMin, capacityMax *int, category *string) (*models.PokerTable, error) {
	table, err := s.GetTableByID(tableID)
	if err != nil {
		return nil, err
	}
	if capacityMin != nil {
		table.CapacityMin = *capacityMin
	}
	if capacityMax != nil {
		table.CapacityMax = *capacityMax
	}
	if category != nil {
		table.Category = *category
	}
	if table.CapacityMin < 1 || table.CapacityMin > table.CapacityMax {
		return nil, &ValidationError{Fields: []string{"capacity_min", "capacity_max"}}
	}
	if err := s.DB.Save(table).Error; err != nil {
		return nil, err
	}
	return table, nil
}
