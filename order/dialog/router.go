package dialog

import (
	"context"
	"strings"
	"time"

	"orderbot/core/logger"
	"orderbot/order"

	"log/slog"
)

// Control button labels, matched literally against incoming message text.
const (
	BtnShow  = "📋 Показать общий заказ"
	BtnEdit  = "✏️ Редактировать заказ"
	BtnClear = "🗑 Очистить заказ"
)

// User-facing responses.
const (
	MsgEmpty          = "❌ Заказ пуст."
	MsgAlreadyEmpty   = "ℹ️ Заказ уже пуст."
	MsgAdded          = "✅ Добавлено в общий заказ."
	MsgReplaced       = "✅ Заказ полностью перезаписан."
	MsgParseFailed    = "⚠️ Не удалось распознать заказ."
	MsgEditPrompt     = "✏️ Ответь на это сообщение, скопируй и отредактируй заказ. Старый заказ будет полностью заменён."
	MsgClearPrompt    = "⚠️ Очистить весь заказ?"
	MsgCleared        = "🗑 Заказ очищен."
	MsgClearCancelled = "❌ Очистка отменена."
)

// Keyboard selects which keyboard, if any, accompanies a reply.
type Keyboard int

const (
	// KeyboardNone sends the reply without markup.
	KeyboardNone Keyboard = iota
	// KeyboardMain attaches the show/edit/clear reply keyboard.
	KeyboardMain
	// KeyboardConfirmClear attaches the inline yes/no confirmation.
	KeyboardConfirmClear
)

// Reply is one outbound message produced by the router.
type Reply struct {
	Text     string
	Keyboard Keyboard
	// Edit requests replacing the triggering message instead of sending a new one.
	Edit bool
}

// Actor identifies who triggered an event.
type Actor struct {
	ID   int64
	Name string
}

// TextMessage is an inbound free-text or button-press message.
type TextMessage struct {
	ChatID int64
	Actor  Actor
	Text   string
}

// ConfirmClear is the affirmative answer to the clear confirmation.
type ConfirmClear struct {
	ChatID int64
	Actor  Actor
}

// CancelClear is the negative answer to the clear confirmation.
type CancelClear struct {
	ChatID int64
	Actor  Actor
}

// Router dispatches conversation events to order store operations and records
// every mutating or viewing action in the audit trail.
type Router struct {
	store    *order.Store
	audit    order.AuditSink
	sessions *sessions
	now      func() time.Time
}

// NewRouter builds a router over the shared store and audit sink.
func NewRouter(store *order.Store, audit order.AuditSink) *Router {
	return &Router{
		store:    store,
		audit:    audit,
		sessions: newSessions(),
		now:      time.Now,
	}
}

// Mode exposes the conversation mode, mainly for diagnostics.
func (r *Router) Mode(chatID int64) Mode {
	return r.sessions.Get(chatID)
}

// HandleText routes an inbound text message. While a conversation awaits a
// replacement, every text message is consumed as replacement input, control
// labels included. Otherwise control labels dispatch to their handlers and
// anything else is treated as free-text order input.
func (r *Router) HandleText(ctx context.Context, msg TextMessage) ([]Reply, error) {
	if r.sessions.Get(msg.ChatID) == ModeAwaitingReplacement {
		return r.applyReplacement(ctx, msg)
	}

	switch msg.Text {
	case BtnShow:
		return r.showOrder(ctx, msg.Actor)
	case BtnEdit:
		return r.beginEdit(msg.ChatID)
	case BtnClear:
		return r.requestClear()
	}
	return r.addItems(ctx, msg)
}

// HandleConfirmClear empties the order after the user confirmed.
func (r *Router) HandleConfirmClear(ctx context.Context, ev ConfirmClear) ([]Reply, error) {
	if err := r.store.Clear(ctx); err != nil {
		return nil, err
	}
	r.appendAudit(ctx, ev.Actor, order.ActionClear, "")
	return []Reply{{Text: MsgCleared, Edit: true}}, nil
}

// HandleCancelClear acknowledges cancellation without touching the order.
func (r *Router) HandleCancelClear(_ context.Context, _ CancelClear) ([]Reply, error) {
	return []Reply{{Text: MsgClearCancelled, Edit: true}}, nil
}

func (r *Router) showOrder(ctx context.Context, actor Actor) ([]Reply, error) {
	text := r.store.FormatSummary()
	if text == "" {
		text = MsgEmpty
	}
	r.appendAudit(ctx, actor, order.ActionShow, "")
	return []Reply{{Text: text}}, nil
}

func (r *Router) beginEdit(chatID int64) ([]Reply, error) {
	if r.store.Empty() {
		return []Reply{{Text: MsgEmpty}}, nil
	}
	r.sessions.Set(chatID, ModeAwaitingReplacement)
	return []Reply{
		{Text: MsgEditPrompt},
		{Text: r.store.FormatRaw()},
	}, nil
}

func (r *Router) requestClear() ([]Reply, error) {
	if r.store.Empty() {
		return []Reply{{Text: MsgAlreadyEmpty}}, nil
	}
	return []Reply{{Text: MsgClearPrompt, Keyboard: KeyboardConfirmClear}}, nil
}

func (r *Router) addItems(ctx context.Context, msg TextMessage) ([]Reply, error) {
	parsed := order.ParseText(msg.Text)
	if len(parsed) == 0 {
		// Unrecognized idle chatter is ignored without a reply.
		return nil, nil
	}
	if err := r.store.MergeAdd(ctx, parsed); err != nil {
		return nil, err
	}
	r.appendAudit(ctx, msg.Actor, order.ActionAdd, strings.ReplaceAll(msg.Text, "\n", "; "))
	logger.Debug(ctx, "order", "order.add",
		slog.Int("items", len(parsed)),
	)
	// The confirmation carries the reply keyboard so it stays available to
	// everyone in the chat, not only to whoever ran /start.
	return []Reply{{Text: MsgAdded, Keyboard: KeyboardMain}}, nil
}

// applyReplacement consumes any text received while awaiting a replacement.
// The conversation returns to idle in every case; a failed parse requires
// re-entering edit mode rather than retrying in place.
func (r *Router) applyReplacement(ctx context.Context, msg TextMessage) ([]Reply, error) {
	r.sessions.Set(msg.ChatID, ModeIdle)

	parsed := order.ParseText(msg.Text)
	if len(parsed) == 0 {
		return []Reply{{Text: MsgParseFailed}}, nil
	}
	if err := r.store.Replace(ctx, parsed); err != nil {
		return nil, err
	}
	r.appendAudit(ctx, msg.Actor, order.ActionEdit, "Новый заказ: "+msg.Text)
	logger.Debug(ctx, "order", "order.replace",
		slog.Int("items", len(parsed)),
	)
	return []Reply{{Text: MsgReplaced}}, nil
}

// appendAudit records the action; audit failures are logged, not propagated,
// so a broken trail never undoes an already persisted order mutation.
func (r *Router) appendAudit(ctx context.Context, actor Actor, action order.Action, details string) {
	if r.audit == nil {
		return
	}
	err := r.audit.Append(ctx, order.AuditEntry{
		Time:      r.now(),
		ActorID:   actor.ID,
		ActorName: actor.Name,
		Action:    action,
		Details:   details,
	})
	if err != nil {
		logger.Warn(ctx, "audit", "audit.append_failed",
			slog.String("action", string(action)),
			slog.String("err", err.Error()),
		)
	}
}
