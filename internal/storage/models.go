package storage

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User is a chat user and the savings goal they set.
type User struct {
	gorm.Model
	UserID string          `gorm:"uniqueIndex"`
	Goal   decimal.Decimal `gorm:"type:text"`
}

// HasGoal reports whether the user asked to save anything.
func (u *User) HasGoal() bool {
	return u != nil && u.Goal.IsPositive()
}
