package storage

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrUserNotFound = errors.New("user not found")

type Database struct {
	db *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&User{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Database{db: db}, nil
}

func (d *Database) GetUser(userID string) (*User, error) {
	var user User
	err := d.db.Where("user_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// SaveGoal creates the user if needed and sets their goal.
func (d *Database) SaveGoal(userID string, goal decimal.Decimal) (*User, error) {
	var user User
	err := d.db.
		Where(User{UserID: userID}).
		Assign(map[string]any{"goal": goal}).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save goal: %w", err)
	}
	return &user, nil
}

func (d *Database) ClearGoal(userID string) error {
	if _, err := d.SaveGoal(userID, decimal.Zero); err != nil {
		return err
	}
	return nil
}

// UsersWithGoals lists every user with a positive savings goal.
func (d *Database) UsersWithGoals() ([]User, error) {
	var users []User
	if err := d.db.Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	withGoals := users[:0]
	for _, u := range users {
		if u.HasGoal() {
			withGoals = append(withGoals, u)
		}
	}
	return withGoals, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}
