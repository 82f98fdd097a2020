package api

import (
	"errors"
	"log/slog"
	"net/http"

	"echochat/internal/auth"
	"echochat/internal/chat"
	"echochat/pkg/api"

	"github.com/go-chi/chi/v5"
)

const chatFailureMessage = "an error occurred while processing the message"

type ChatService struct {
	chat        *chat.Service
	credentials *auth.Credentials
	sessions    *auth.SessionManager
}

func NewChatService(chat *chat.Service, credentials *auth.Credentials, sessions *auth.SessionManager) *ChatService {
	return &ChatService{chat: chat, credentials: credentials, sessions: sessions}
}

func (s *ChatService) AddRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(s.sessions.RequireUser)

		r.Post("/chat", RestHandler(s.PostMessage))
		r.Get("/conversations", RestHandler(s.ListConversations))
		r.Get("/conversation/{conversation_id:[0-9]+}", RestHandler(s.GetConversation))
		r.Post("/password", RestHandler(s.ChangePassword))
	})
}

func identity(r *http.Request) (auth.Identity, error) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		return auth.Identity{}, CodedError(http.StatusUnauthorized, auth.ErrUnauthenticated)
	}
	return id, nil
}

func chatError(err error) error {
	switch {
	case errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, chat.ErrInvalidInput):
		return CodedError(http.StatusBadRequest, err)
	case errors.Is(err, chat.ErrForbidden):
		return CodedError(http.StatusForbidden, err)
	case errors.Is(err, chat.ErrNotFound):
		return CodedError(http.StatusNotFound, err)
	default:
		slog.Error("chat request failed", "error", err)
		return CodedErrorf(http.StatusInternalServerError, chatFailureMessage)
	}
}

func (s *ChatService) PostMessage(r *http.Request) (any, error) {
	user, err := identity(r)
	if err != nil {
		return nil, err
	}

	req, err := ParseRequest[api.ChatRequest](r)
	if err != nil {
		return nil, chatError(chat.ErrInvalidInput)
	}

	var conversationId uint
	if req.ConversationId != nil {
		conversationId = *req.ConversationId
	}

	reply, err := s.chat.PostMessage(r.Context(), user.UserId, conversationId, req.Message)
	if err != nil {
		return nil, chatError(err)
	}

	return api.ChatResponse{Response: reply.Response, ConversationId: reply.ConversationId}, nil
}

func (s *ChatService) ListConversations(r *http.Request) (any, error) {
	user, err := identity(r)
	if err != nil {
		return nil, err
	}

	summaries, err := s.chat.ListConversations(r.Context(), user.UserId)
	if err != nil {
		return nil, chatError(err)
	}

	return convertSummaries(summaries), nil
}

func (s *ChatService) GetConversation(r *http.Request) (any, error) {
	user, err := identity(r)
	if err != nil {
		return nil, err
	}

	conversationId, err := URLParamUint(r, "conversation_id")
	if err != nil {
		return nil, err
	}

	messages, err := s.chat.GetConversation(r.Context(), user.UserId, conversationId)
	if err != nil {
		return nil, chatError(err)
	}

	return convertMessages(messages), nil
}

func (s *ChatService) ChangePassword(r *http.Request) (any, error) {
	user, err := identity(r)
	if err != nil {
		return nil, err
	}

	req, err := ParseRequest[api.ChangePasswordRequest](r)
	if err != nil {
		return nil, err
	}

	if err := s.credentials.ChangePassword(r.Context(), user.UserId, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, auth.ErrAuthFailure):
			return nil, CodedErrorf(http.StatusForbidden, "current password is incorrect")
		case errors.Is(err, auth.ErrMissingCredential):
			return nil, CodedErrorf(http.StatusBadRequest, "new password is required")
		case errors.Is(err, auth.ErrPasswordTooLong):
			return nil, CodedError(http.StatusBadRequest, err)
		default:
			return nil, CodedErrorf(http.StatusInternalServerError, "error changing password")
		}
	}

	if err := s.sessions.RevokeOtherSessions(r.Context(), user); err != nil {
		slog.Error("error revoking sessions after password change", "user_id", user.UserId, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "error revoking other sessions")
	}

	return nil, nil
}
