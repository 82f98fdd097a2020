package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Accessor queries return (nil, nil) when the requested row does not exist.

func GetUser(ctx context.Context, txn *gorm.DB, userId uint) (*User, error) {
	var user User
	if err := txn.WithContext(ctx).First(&user, "id = ?", userId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting user %d: %w", userId, err)
	}
	return &user, nil
}

func GetUserByUsername(ctx context.Context, txn *gorm.DB, username string) (*User, error) {
	var user User
	if err := txn.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting user %q: %w", username, err)
	}
	return &user, nil
}

func GetConversation(ctx context.Context, txn *gorm.DB, conversationId uint) (*Conversation, error) {
	var conversation Conversation
	if err := txn.WithContext(ctx).First(&conversation, "id = ?", conversationId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting conversation %d: %w", conversationId, err)
	}
	return &conversation, nil
}

// ListConversationsByUser returns the user's conversations, newest first.
func ListConversationsByUser(ctx context.Context, txn *gorm.DB, userId uint) ([]Conversation, error) {
	var conversations []Conversation
	if err := txn.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("timestamp DESC").
		Order("id DESC").
		Find(&conversations).Error; err != nil {
		return nil, fmt.Errorf("error listing conversations for user %d: %w", userId, err)
	}
	return conversations, nil
}

// ListMessages returns the messages of a conversation in insertion order.
func ListMessages(ctx context.Context, txn *gorm.DB, conversationId uint) ([]Message, error) {
	var messages []Message
	if err := txn.WithContext(ctx).
		Where("conversation_id = ?", conversationId).
		Order("id ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("error listing messages for conversation %d: %w", conversationId, err)
	}
	return messages, nil
}

// FirstMessages maps each of the given conversations to its earliest message.
// Conversations without messages are absent from the result.
func FirstMessages(ctx context.Context, txn *gorm.DB, conversationIds []uint) (map[uint]Message, error) {
	firsts := make(map[uint]Message, len(conversationIds))
	if len(conversationIds) == 0 {
		return firsts, nil
	}

	firstIds := txn.Model(&Message{}).
		Select("MIN(id)").
		Where("conversation_id IN ?", conversationIds).
		Group("conversation_id")

	var messages []Message
	if err := txn.WithContext(ctx).Where("id IN (?)", firstIds).Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("error getting first messages: %w", err)
	}

	for _, msg := range messages {
		firsts[msg.ConversationId] = msg
	}
	return firsts, nil
}

func CreateConversation(ctx context.Context, txn *gorm.DB, conversation *Conversation) error {
	if err := txn.WithContext(ctx).Create(conversation).Error; err != nil {
		return fmt.Errorf("error creating conversation for user %d: %w", conversation.UserId, err)
	}
	return nil
}

func AppendMessage(ctx context.Context, txn *gorm.DB, message *Message) error {
	if err := txn.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("error saving %s message to conversation %d: %w", message.Role, message.ConversationId, err)
	}
	return nil
}
