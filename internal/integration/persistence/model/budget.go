package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

// BudgetModel represents the budgets table in the database.
type BudgetModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	Category          string          `gorm:"type:varchar(20);not null"`
	Amount            decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Period            string          `gorm:"type:varchar(10);not null;default:'monthly'"`
	StartDate         time.Time       `gorm:"type:date;not null"`
	EndDate           time.Time       `gorm:"type:date;not null"`
	WarningThreshold  int             `gorm:"not null;default:80"`
	CriticalThreshold int             `gorm:"not null;default:90"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for the BudgetModel.
func (BudgetModel) TableName() string {
	return "budgets"
}

// ToEntity converts a BudgetModel to a domain Budget entity.
func (m *BudgetModel) ToEntity() *entity.Budget {
	return &entity.Budget{
		ID:        m.ID,
		UserID:    m.UserID,
		Category:  entity.Category(m.Category),
		Amount:    m.Amount.Round(2),
		Period:    entity.BudgetPeriod(m.Period),
		StartDate: entity.CalendarDate(m.StartDate.UTC()),
		EndDate:   entity.CalendarDate(m.EndDate.UTC()),
		AlertThresholds: entity.AlertThresholds{
			Warning:  m.WarningThreshold,
			Critical: m.CriticalThreshold,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// BudgetFromEntity creates a BudgetModel from a domain Budget entity.
func BudgetFromEntity(b *entity.Budget) *BudgetModel {
	return &BudgetModel{
		ID:                b.ID,
		UserID:            b.UserID,
		Category:          string(b.Category),
		Amount:            b.Amount,
		Period:            string(b.Period),
		StartDate:         entity.CalendarDate(b.StartDate),
		EndDate:           entity.CalendarDate(b.EndDate),
		WarningThreshold:  b.AlertThresholds.Warning,
		CriticalThreshold: b.AlertThresholds.Critical,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}
