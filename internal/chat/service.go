package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"echochat/internal/database"

	"gorm.io/gorm"
)

var (
	ErrEmptyMessage = errors.New("message is required")
	ErrNotFound     = errors.New("conversation not found")
	ErrForbidden    = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
)

const (
	previewLength     = 50
	emptyConversation = "Empty conversation"
)

type Reply struct {
	Response       string
	ConversationId uint
}

type Summary struct {
	Id        uint
	Timestamp time.Time
	Preview   string
}

type Service struct {
	db        *gorm.DB
	responder Responder
	now       func() time.Time
}

func NewService(db *gorm.DB, responder Responder) *Service {
	return &Service{
		db:        db,
		responder: responder,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ownedConversation loads the conversation and checks that userId owns it.
func ownedConversation(ctx context.Context, txn *gorm.DB, userId, conversationId uint) (*database.Conversation, error) {
	conversation, err := database.GetConversation(ctx, txn, conversationId)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrNotFound
	}
	if conversation.UserId != userId {
		return nil, ErrForbidden
	}
	return conversation, nil
}

// PostMessage appends text and its reply to the conversation, creating a new
// conversation when conversationId is 0. Nothing is persisted unless both
// messages are written.
func (s *Service) PostMessage(ctx context.Context, userId, conversationId uint, text string) (Reply, error) {
	if text == "" {
		return Reply{}, ErrEmptyMessage
	}

	var reply Reply
	err := s.db.WithContext(ctx).Transaction(func(txn *gorm.DB) error {
		now := s.now()

		if conversationId == 0 {
			conversation := database.Conversation{UserId: userId, Timestamp: now}
			if err := database.CreateConversation(ctx, txn, &conversation); err != nil {
				return err
			}
			conversationId = conversation.Id
		} else if _, err := ownedConversation(ctx, txn, userId, conversationId); err != nil {
			return err
		}

		if err := database.AppendMessage(ctx, txn, &database.Message{
			ConversationId: conversationId,
			Content:        text,
			Role:           database.RoleUser,
			Timestamp:      now,
		}); err != nil {
			return err
		}

		response, err := s.responder.Reply(ctx, text)
		if err != nil {
			return fmt.Errorf("error generating reply: %w", err)
		}

		if err := database.AppendMessage(ctx, txn, &database.Message{
			ConversationId: conversationId,
			Content:        response,
			Role:           database.RoleAssistant,
			Timestamp:      s.now(),
		}); err != nil {
			return err
		}

		reply = Reply{Response: response, ConversationId: conversationId}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrForbidden) {
			slog.Error("error posting message", "user_id", userId, "conversation_id", conversationId, "error", err)
		}
		return Reply{}, err
	}

	return reply, nil
}

func preview(messages map[uint]database.Message, conversationId uint) string {
	first, ok := messages[conversationId]
	if !ok {
		return emptyConversation
	}
	runes := []rune(first.Content)
	if len(runes) > previewLength {
		runes = runes[:previewLength]
	}
	return string(runes) + "..."
}

// ListConversations returns the user's conversations, most recent first.
func (s *Service) ListConversations(ctx context.Context, userId uint) ([]Summary, error) {
	var summaries []Summary
	err := s.db.WithContext(ctx).Transaction(func(txn *gorm.DB) error {
		conversations, err := database.ListConversationsByUser(ctx, txn, userId)
		if err != nil {
			return err
		}

		ids := make([]uint, 0, len(conversations))
		for _, c := range conversations {
			ids = append(ids, c.Id)
		}

		firsts, err := database.FirstMessages(ctx, txn, ids)
		if err != nil {
			return err
		}

		summaries = make([]Summary, 0, len(conversations))
		for _, c := range conversations {
			summaries = append(summaries, Summary{Id: c.Id, Timestamp: c.Timestamp, Preview: preview(firsts, c.Id)})
		}
		return nil
	})
	if err != nil {
		slog.Error("error listing conversations", "user_id", userId, "error", err)
		return nil, err
	}
	return summaries, nil
}

// GetConversation returns the messages of a conversation owned by userId in
// the order they were posted.
func (s *Service) GetConversation(ctx context.Context, userId, conversationId uint) ([]database.Message, error) {
	var messages []database.Message
	err := s.db.WithContext(ctx).Transaction(func(txn *gorm.DB) error {
		if _, err := ownedConversation(ctx, txn, userId, conversationId); err != nil {
			return err
		}

		var err error
		messages, err = database.ListMessages(ctx, txn, conversationId)
		return err
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}
