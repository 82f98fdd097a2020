package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"echochat/internal/database"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const SessionCookieName = "session"

var ErrUnauthenticated = errors.New("authentication required")

// Identity is the authenticated user resolved from a request's session cookie.
type Identity struct {
	UserId    uint
	SessionId uuid.UUID
}

type sessionMetadata struct {
	UserAgent  string `json:"user_agent,omitempty"`
	RemoteAddr string `json:"remote_addr,omitempty"`
}

// SessionManager issues server-side sessions. The cookie carries only the
// session id, signed with the configured secret key; the session itself
// lives in the sessions table so logout can revoke it.
type SessionManager struct {
	db     *gorm.DB
	codec  *securecookie.SecureCookie
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewSessionManager(db *gorm.DB, secretKey []byte, ttl time.Duration, secureCookies bool) *SessionManager {
	codec := securecookie.New(secretKey, nil)
	codec.MaxAge(int(ttl.Seconds()))

	return &SessionManager{
		db:     db,
		codec:  codec,
		ttl:    ttl,
		secure: secureCookies,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (m *SessionManager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *SessionManager) StartSession(w http.ResponseWriter, r *http.Request, userId uint) (uuid.UUID, error) {
	ctx := r.Context()

	meta, err := json.Marshal(sessionMetadata{UserAgent: r.UserAgent(), RemoteAddr: r.RemoteAddr})
	if err != nil {
		return uuid.Nil, fmt.Errorf("error encoding session metadata: %w", err)
	}

	now := m.now()
	session := database.Session{
		Id:        uuid.New(),
		UserId:    userId,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
		Metadata:  datatypes.JSON(meta),
	}

	if err := database.CreateSession(ctx, m.db, &session); err != nil {
		slog.Error("error starting session", "user_id", userId, "error", err)
		return uuid.Nil, err
	}

	encoded, err := m.codec.Encode(SessionCookieName, session.Id.String())
	if err != nil {
		return uuid.Nil, fmt.Errorf("error signing session cookie: %w", err)
	}

	http.SetCookie(w, m.cookie(encoded, int(m.ttl.Seconds())))
	slog.Info("session started", "user_id", userId, "session_id", session.Id)
	return session.Id, nil
}

func (m *SessionManager) sessionId(r *http.Request) (uuid.UUID, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return uuid.Nil, ErrUnauthenticated
	}

	var raw string
	if err := m.codec.Decode(SessionCookieName, cookie.Value, &raw); err != nil {
		slog.Debug("rejected session cookie", "error", err)
		return uuid.Nil, ErrUnauthenticated
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrUnauthenticated
	}
	return id, nil
}

// CurrentUser resolves the session cookie of r. Any missing, forged, revoked
// or expired session yields ErrUnauthenticated.
func (m *SessionManager) CurrentUser(r *http.Request) (Identity, error) {
	ctx := r.Context()

	id, err := m.sessionId(r)
	if err != nil {
		return Identity{}, err
	}

	session, err := database.GetSession(ctx, m.db, id)
	if err != nil {
		return Identity{}, err
	}
	if session == nil {
		return Identity{}, ErrUnauthenticated
	}

	if !m.now().Before(session.ExpiresAt) {
		if err := database.DeleteSession(ctx, m.db, id); err != nil {
			slog.Warn("error removing expired session", "session_id", id, "error", err)
		}
		return Identity{}, ErrUnauthenticated
	}

	return Identity{UserId: session.UserId, SessionId: session.Id}, nil
}

// EndSession revokes the session of r, if any, and clears the cookie.
func (m *SessionManager) EndSession(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, m.cookie("", -1))

	id, err := m.sessionId(r)
	if err != nil {
		return nil
	}

	if err := database.DeleteSession(r.Context(), m.db, id); err != nil {
		slog.Error("error ending session", "session_id", id, "error", err)
		return err
	}
	slog.Info("session ended", "session_id", id)
	return nil
}

func (m *SessionManager) RevokeOtherSessions(ctx context.Context, identity Identity) error {
	return database.DeleteUserSessions(ctx, m.db, identity.UserId, identity.SessionId)
}

func (m *SessionManager) PurgeExpired(ctx context.Context) (int64, error) {
	return database.DeleteExpiredSessions(ctx, m.db, m.now())
}
