package bot

import (
	"fmt"
	"strings"
	"time"

	"orderbot/core/logger"
	"orderbot/core/telegram/keyboard"
	"orderbot/core/telegram/middleware"
	"orderbot/order"
	"orderbot/order/dialog"
	"orderbot/storage"

	"log/slog"
	tele "gopkg.in/telebot.v4"
)

const (
	msgGreeting    = "👋 Привет! Присылай позиции заказа, по одной на строку: название и количество."
	msgLogEmpty    = "ℹ️ Журнал пуст."
	auditLogLimit  = 10
	auditEntryLine = "%s — %s: %s"
)

type handlers struct {
	dialog *dialog.Router
	audit  *storage.AuditRepo
}

func mainKeyboard() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{dialog.BtnShow},
		[]string{dialog.BtnEdit},
		[]string{dialog.BtnClear},
	)
}

func confirmClearKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineRow(
		keyboard.InlineBtn{Text: "✅ Да", Unique: cbClearYes},
		keyboard.InlineBtn{Text: "❌ Нет", Unique: cbClearNo},
	)
}

// actorFrom identifies the sender the way the audit trail stores actors:
// username when set, full name otherwise.
func actorFrom(c tele.Context) dialog.Actor {
	user := c.Sender()
	if user == nil {
		return dialog.Actor{}
	}
	name := user.Username
	if name == "" {
		name = strings.TrimSpace(user.FirstName + " " + user.LastName)
	}
	return dialog.Actor{ID: user.ID, Name: name}
}

func (h *handlers) start(c tele.Context) error {
	return c.Send(msgGreeting, mainKeyboard())
}

func (h *handlers) onText(c tele.Context) error {
	ctx := middleware.RequestContext(c)
	replies, err := h.dialog.HandleText(ctx, dialog.TextMessage{
		ChatID: c.Chat().ID,
		Actor:  actorFrom(c),
		Text:   c.Text(),
	})
	if err != nil {
		logger.Error(ctx, "tg", "handle.text_failed",
			slog.String("err", err.Error()),
		)
		return err
	}
	return h.deliver(c, replies)
}

func (h *handlers) confirmClear(c tele.Context) error {
	ctx := middleware.RequestContext(c)
	replies, err := h.dialog.HandleConfirmClear(ctx, dialog.ConfirmClear{
		ChatID: c.Chat().ID,
		Actor:  actorFrom(c),
	})
	if err != nil {
		logger.Error(ctx, "tg", "handle.clear_failed",
			slog.String("err", err.Error()),
		)
		return err
	}
	return h.deliver(c, replies)
}

func (h *handlers) cancelClear(c tele.Context) error {
	ctx := middleware.RequestContext(c)
	replies, err := h.dialog.HandleCancelClear(ctx, dialog.CancelClear{
		ChatID: c.Chat().ID,
		Actor:  actorFrom(c),
	})
	if err != nil {
		return err
	}
	return h.deliver(c, replies)
}

// deliver sends the router's replies in order, mapping keyboard hints to
// markup. An edit reply rewrites the message that carried the inline keyboard.
func (h *handlers) deliver(c tele.Context, replies []dialog.Reply) error {
	for _, reply := range replies {
		var err error
		switch {
		case reply.Edit:
			err = c.Edit(reply.Text)
		case reply.Keyboard == dialog.KeyboardMain:
			err = c.Send(reply.Text, mainKeyboard())
		case reply.Keyboard == dialog.KeyboardConfirmClear:
			err = c.Send(reply.Text, confirmClearKeyboard())
		default:
			err = c.Send(reply.Text)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// auditLog replies with the most recent audit entries, newest first.
func (h *handlers) auditLog(c tele.Context) error {
	ctx := middleware.RequestContext(c)
	entries, err := h.audit.Recent(ctx, auditLogLimit)
	if err != nil {
		logger.Error(ctx, "tg", "handle.log_failed",
			slog.String("err", err.Error()),
		)
		return err
	}
	if len(entries) == 0 {
		return c.Send(msgLogEmpty)
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, formatAuditEntry(e))
	}
	return c.Send("🗒 Последние действия:\n\n" + strings.Join(lines, "\n"))
}

func formatAuditEntry(e order.AuditEntry) string {
	who := e.ActorName
	if who == "" {
		who = fmt.Sprintf("id:%d", e.ActorID)
	}
	line := fmt.Sprintf(auditEntryLine, e.Time.Format(time.DateTime), who, e.Action)
	if e.Details != "" {
		line += " (" + e.Details + ")"
	}
	return line
}
