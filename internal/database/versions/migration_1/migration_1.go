package migration_1

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	Id uint `gorm:"primaryKey"`
}

type Session struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId    uint      `gorm:"index;not null"`
	User      *User     `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"index;not null"`
	Metadata  datatypes.JSON
}

func Migration(db *gorm.DB) error {
	if err := db.Migrator().CreateTable(&Session{}); err != nil {
		return fmt.Errorf("error creating sessions table: %w", err)
	}
	return nil
}

func Rollback(db *gorm.DB) error {
	if err := db.Migrator().DropTable(&Session{}); err != nil {
		return fmt.Errorf("error dropping sessions table: %w", err)
	}
	return nil
}
