package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/securecookie"
)

const flashCookieName = "flash"

// Flash carries a one-shot message across a redirect in a signed cookie.
type Flash struct {
	codec  *securecookie.SecureCookie
	secure bool
}

func NewFlash(secretKey []byte, secureCookies bool) *Flash {
	codec := securecookie.New(secretKey, nil)
	codec.MaxAge(300)
	return &Flash{codec: codec, secure: secureCookies}
}

func (f *Flash) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     flashCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   f.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (f *Flash) Set(w http.ResponseWriter, message string) {
	encoded, err := f.codec.Encode(flashCookieName, message)
	if err != nil {
		slog.Error("error encoding flash message", "error", err)
		return
	}
	http.SetCookie(w, f.cookie(encoded, 300))
}

// Pop returns the pending flash message, if any, and clears it.
func (f *Flash) Pop(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookieName)
	if err != nil {
		return ""
	}
	http.SetCookie(w, f.cookie("", -1))

	var message string
	if err := f.codec.Decode(flashCookieName, c.Value, &message); err != nil {
		slog.Debug("discarding invalid flash cookie", "error", err)
		return ""
	}
	return message
}
