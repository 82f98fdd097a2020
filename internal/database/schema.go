package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RoleUser      string = "user"
	RoleAssistant string = "assistant"
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
	Role           string    `gorm:"size:10;not null"` // 'user' or 'assistant'
	Timestamp      time.Time `gorm:"not null"`
}

type Session struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId    uint      `gorm:"index;not null"`
	User      *User     `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	ExpiresAt time.Time      `gorm:"index;not null"`
	Metadata  datatypes.JSON // {"user_agent": "...", "remote_addr": "..."}
}
