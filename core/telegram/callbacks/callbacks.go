// Package callbacks decodes Telebot callback payloads into key/payload pairs.
package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Parse decodes Telebot's \f<unique>|<payload> callback encoding.
func Parse(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	raw := strings.TrimPrefix(cb.Data, "\\f")
	parts := strings.SplitN(raw, "|", 2)
	key := strings.TrimSpace(parts[0])
	payload := ""
	if len(parts) == 2 {
		payload = parts[1]
	}
	return key, payload
}

// Key returns the callback unique key for the current update.
func Key(c tele.Context) string {
	k, _ := Parse(c.Callback())
	return k
}
