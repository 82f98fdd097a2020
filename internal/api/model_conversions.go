package api

import (
	"echochat/internal/chat"
	"echochat/internal/database"
	"echochat/pkg/api"
)

func convertSummary(s chat.Summary) api.ConversationSummary {
	return api.ConversationSummary{
		Id:        s.Id,
		Timestamp: s.Timestamp,
		Preview:   s.Preview,
	}
}

func convertSummaries(ss []chat.Summary) []api.ConversationSummary {
	summaries := make([]api.ConversationSummary, 0, len(ss))
	for _, s := range ss {
		summaries = append(summaries, convertSummary(s))
	}
	return summaries
}

func convertMessages(ms []database.Message) []api.Message {
	messages := make([]api.Message, 0, len(ms))
	for _, m := range ms {
		messages = append(messages, api.Message{
			Content:   m.Content,
			Role:      m.Role,
			Timestamp: m.Timestamp,
		})
	}
	return messages
}
