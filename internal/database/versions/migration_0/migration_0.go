package migration_0

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type User struct {
	Id           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:80;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:120;not null"`
	CreatedAt    time.Time

	Conversations []Conversation `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
}

type Conversation struct {
	Id        uint      `gorm:"primaryKey"`
	UserId    uint      `gorm:"index;not null"`
	Timestamp time.Time `gorm:"not null"`

	Messages []Message `gorm:"foreignKey:ConversationId;constraint:OnDelete:CASCADE"`
}

type Message struct {
	Id             uint      `gorm:"primaryKey"`
	ConversationId uint      `gorm:"index;not null"`
	Content        string    `gorm:"type:text;not null"`
	Role           string    `gorm:"size:10;not null"`
	Timestamp      time.Time `gorm:"not null"`
}

func Migration(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}, &Conversation{}, &Message{}); err != nil {
		return fmt.Errorf("initial migration failed: %w", err)
	}
	return nil
}
