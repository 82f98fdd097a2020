package chat_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"echochat/internal/chat"
	"echochat/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createDB(t *testing.T) *gorm.DB {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, database.GetMigrator(db).Migrate())
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) uint {
	user := database.User{Username: username, PasswordHash: "x", CreatedAt: time.Now().UTC()}
	require.NoError(t, db.Create(&user).Error)
	return user.Id
}

func countRows(t *testing.T, db *gorm.DB) (int64, int64) {
	var conversations, messages int64
	require.NoError(t, db.Model(&database.Conversation{}).Count(&conversations).Error)
	require.NoError(t, db.Model(&database.Message{}).Count(&messages).Error)
	return conversations, messages
}

func TestEcho(t *testing.T) {
	for _, text := range []string{"hi", "", "  padded  ", "ünïcødé ✓", "line\nbreak"} {
		reply, err := chat.Echo{}.Reply(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, "You said: "+text, reply)
	}
}

func TestPostMessageNewConversation(t *testing.T) {
	db := createDB(t)
	svc := chat.NewService(db, chat.Echo{})
	ctx := context.Background()
	alice := createUser(t, db, "alice")

	reply, err := svc.PostMessage(ctx, alice, 0, "hi")
	require.NoError(t, err)
	assert.Equal(t, "You said: hi", reply.Response)
	assert.Equal(t, uint(1), reply.ConversationId)

	conversations, messages := countRows(t, db)
	assert.Equal(t, int64(1), conversations)
	assert.Equal(t, int64(2), messages)

	history, err := svc.GetConversation(ctx, alice, reply.ConversationId)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, database.RoleUser, history[0].Role)
	assert.Equal(t, "hi", history[0].Content)
	assert.Equal(t, database.RoleAssistant, history[1].Role)
	assert.Equal(t, "You said: hi", history[1].Content)

	reply, err = svc.PostMessage(ctx, alice, reply.ConversationId, "again")
	require.NoError(t, err)
	assert.Equal(t, uint(1), reply.ConversationId)

	history, err = svc.GetConversation(ctx, alice, reply.ConversationId)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "again", history[2].Content)
	assert.Equal(t, "You said: again", history[3].Content)
}

func TestPostMessageErrors(t *testing.T) {
	db := createDB(t)
	svc := chat.NewService(db, chat.Echo{})
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	_, err := svc.PostMessage(ctx, alice, 0, "")
	assert.ErrorIs(t, err, chat.ErrEmptyMessage)

	_, err = svc.PostMessage(ctx, alice, 99, "hi")
	assert.ErrorIs(t, err, chat.ErrNotFound)

	reply, err := svc.PostMessage(ctx, alice, 0, "secret")
	require.NoError(t, err)

	_, err = svc.PostMessage(ctx, bob, reply.ConversationId, "intrude")
	assert.ErrorIs(t, err, chat.ErrForbidden)

	_, err = svc.GetConversation(ctx, bob, reply.ConversationId)
	assert.ErrorIs(t, err, chat.ErrForbidden)

	_, err = svc.GetConversation(ctx, alice, 99)
	assert.ErrorIs(t, err, chat.ErrNotFound)

	conversations, messages := countRows(t, db)
	assert.Equal(t, int64(1), conversations)
	assert.Equal(t, int64(2), messages)
}

type failingResponder struct{}

func (failingResponder) Reply(context.Context, string) (string, error) {
	return "", errors.New("backend unavailable")
}

func TestPostMessageRollback(t *testing.T) {
	db := createDB(t)
	ctx := context.Background()
	alice := createUser(t, db, "alice")

	existing, err := chat.NewService(db, chat.Echo{}).PostMessage(ctx, alice, 0, "hi")
	require.NoError(t, err)

	svc := chat.NewService(db, failingResponder{})

	_, err = svc.PostMessage(ctx, alice, 0, "new conversation")
	assert.Error(t, err)

	_, err = svc.PostMessage(ctx, alice, existing.ConversationId, "existing conversation")
	assert.Error(t, err)

	conversations, messages := countRows(t, db)
	assert.Equal(t, int64(1), conversations)
	assert.Equal(t, int64(2), messages)
}

func TestListConversations(t *testing.T) {
	db := createDB(t)
	svc := chat.NewService(db, chat.Echo{})
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	long := strings.Repeat("é", 60)
	first, err := svc.PostMessage(ctx, alice, 0, long)
	require.NoError(t, err)
	second, err := svc.PostMessage(ctx, alice, 0, "short")
	require.NoError(t, err)
	_, err = svc.PostMessage(ctx, bob, 0, "not alice's")
	require.NoError(t, err)

	empty := database.Conversation{UserId: alice, Timestamp: time.Now().UTC().Add(time.Hour)}
	require.NoError(t, database.CreateConversation(ctx, db, &empty))

	summaries, err := svc.ListConversations(ctx, alice)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	assert.Equal(t, empty.Id, summaries[0].Id)
	assert.Equal(t, "Empty conversation", summaries[0].Preview)

	assert.Equal(t, second.ConversationId, summaries[1].Id)
	assert.Equal(t, "short...", summaries[1].Preview)

	assert.Equal(t, first.ConversationId, summaries[2].Id)
	assert.Equal(t, strings.Repeat("é", 50)+"...", summaries[2].Preview)

	for i := 1; i < len(summaries); i++ {
		assert.False(t, summaries[i].Timestamp.After(summaries[i-1].Timestamp))
	}

	none, err := svc.ListConversations(ctx, createUser(t, db, "carol"))
	require.NoError(t, err)
	assert.Empty(t, none)
}
