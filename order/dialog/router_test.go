package dialog

import (
	"context"
	"testing"

	"orderbot/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	saved map[string]float64
}

func (r *memRepo) LoadAll(context.Context) (map[string]float64, error) {
	return r.saved, nil
}

func (r *memRepo) SaveAll(_ context.Context, items map[string]float64) error {
	r.saved = items
	return nil
}

type memAudit struct {
	entries []order.AuditEntry
}

func (a *memAudit) Append(_ context.Context, e order.AuditEntry) error {
	a.entries = append(a.entries, e)
	return nil
}

func (a *memAudit) actions() []order.Action {
	out := make([]order.Action, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

func newTestRouter(t *testing.T) (*Router, *order.Store, *memAudit) {
	t.Helper()
	store := order.NewStore(&memRepo{})
	audit := &memAudit{}
	return NewRouter(store, audit), store, audit
}

func msg(text string) TextMessage {
	return TextMessage{ChatID: 1, Actor: Actor{ID: 7, Name: "alice"}, Text: text}
}

func TestRouterAddItems(t *testing.T) {
	r, store, audit := newTestRouter(t)
	ctx := context.Background()

	replies, err := r.HandleText(ctx, msg("Молоко 2\nСыр 0.3"))
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, MsgAdded, replies[0].Text)
	assert.Equal(t, KeyboardMain, replies[0].Keyboard,
		"the add confirmation re-attaches the reply keyboard")

	assert.Equal(t, map[string]float64{"молоко": 2, "сыр": 0.3}, store.Snapshot())
	require.Len(t, audit.entries, 1)
	assert.Equal(t, order.ActionAdd, audit.entries[0].Action)
	assert.Equal(t, "Молоко 2; Сыр 0.3", audit.entries[0].Details)
	assert.Equal(t, int64(7), audit.entries[0].ActorID)
}

func TestRouterIdleNoiseIsIgnored(t *testing.T) {
	r, store, audit := newTestRouter(t)

	replies, err := r.HandleText(context.Background(), msg("привет, как дела?"))
	require.NoError(t, err)
	assert.Empty(t, replies, "unparsable idle text gets no reply")
	assert.True(t, store.Empty())
	assert.Empty(t, audit.entries)
}

func TestRouterShowOrder(t *testing.T) {
	r, _, audit := newTestRouter(t)
	ctx := context.Background()

	replies, err := r.HandleText(ctx, msg(BtnShow))
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, MsgEmpty, replies[0].Text)

	_, err = r.HandleText(ctx, msg("Молоко 2"))
	require.NoError(t, err)

	replies, err = r.HandleText(ctx, msg(BtnShow))
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, "📦 Общий заказ:\n\n• Молоко 2", replies[0].Text)

	assert.Equal(t,
		[]order.Action{order.ActionShow, order.ActionAdd, order.ActionShow},
		audit.actions(), "viewing is audited even when the order is empty")
}

func TestRouterEditFlow(t *testing.T) {
	r, store, audit := newTestRouter(t)
	ctx := context.Background()

	_, err := r.HandleText(ctx, msg("Молоко 2"))
	require.NoError(t, err)

	replies, err := r.HandleText(ctx, msg(BtnEdit))
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, MsgEditPrompt, replies[0].Text)
	assert.Equal(t, "Молоко 2", replies[1].Text)
	assert.Equal(t, ModeAwaitingReplacement, r.Mode(1))

	replies, err = r.HandleText(ctx, msg("Хлеб 1\nСыр 0.5"))
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, MsgReplaced, replies[0].Text)
	assert.Equal(t, ModeIdle, r.Mode(1))

	assert.Equal(t, map[string]float64{"хлеб": 1, "сыр": 0.5}, store.Snapshot())
	assert.Equal(t, order.ActionEdit, audit.entries[len(audit.entries)-1].Action)
	assert.Equal(t, "Новый заказ: Хлеб 1\nСыр 0.5", audit.entries[len(audit.entries)-1].Details)
}

func TestRouterEditEmptyOrder(t *testing.T) {
	r, _, _ := newTestRouter(t)

	replies, err := r.HandleText(context.Background(), msg(BtnEdit))
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, MsgEmpty, replies[0].Text)
	assert.Equal(t, ModeIdle, r.Mode(1), "an empty order never enters edit mode")
}

func TestRouterEditConsumesControlLabels(t *testing.T) {
	r, store, _ := newTestRouter(t)
	ctx := context.Background()

	_, err := r.HandleText(ctx, msg("Молоко 2"))
	require.NoError(t, err)
	_, err = r.HandleText(ctx, msg(BtnEdit))
	require.NoError(t, err)

	// A button label arriving mid-edit is replacement input, not a command.
	replies, err := r.HandleText(ctx, msg(BtnShow))
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, MsgParseFailed, replies[0].Text)
	assert.Equal(t, ModeIdle, r.Mode(1))
	assert.Equal(t, map[string]float64{"молоко": 2}, store.Snapshot(),
		"a failed replacement leaves the order untouched")
}

func TestRouterEditUnparsableReturnsToIdle(t *testing.T) {
	r, store, _ := newTestRouter(t)
	ctx := context.Background()

	_, err := r.HandleText(ctx, msg("Молоко 2"))
	require.NoError(t, err)
	_, err = r.HandleText(ctx, msg(BtnEdit))
	require.NoError(t, err)

	replies, err := r.HandleText(ctx, msg("ничего похожего на заказ"))
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, MsgParseFailed, replies[0].Text)
	assert.Equal(t, ModeIdle, r.Mode(1))

	// The next message is ordinary input again.
	replies, err = r.HandleText(ctx, msg("Сыр 1"))
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, MsgAdded, replies[0].Text)
	assert.Equal(t, map[string]float64{"молоко": 2, "сыр": 1}, store.Snapshot())
}

func TestRouterClearConfirmFlow(t *testing.T) {
	r, store, audit := newTestRouter(t)
	ctx := context.Background()

	_, err := r.HandleText(ctx, msg("Молоко 2"))
	require.NoError(t, err)

	replies, err := r.HandleText(ctx, msg(BtnClear))
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, MsgClearPrompt, replies[0].Text)
	assert.Equal(t, KeyboardConfirmClear, replies[0].Keyboard)
	assert.False(t, store.Empty(), "nothing is cleared before confirmation")

	replies, err = r.HandleConfirmClear(ctx, ConfirmClear{ChatID: 1, Actor: Actor{ID: 7}})
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, MsgCleared, replies[0].Text)
	assert.True(t, replies[0].Edit)

	assert.True(t, store.Empty())
	assert.Equal(t, order.ActionClear, audit.entries[len(audit.entries)-1].Action)
}

func TestRouterClearCancelled(t *testing.T) {
	r, store, audit := newTestRouter(t)
	ctx := context.Background()

	_, err := r.HandleText(ctx, msg("Молоко 2"))
	require.NoError(t, err)
	_, err = r.HandleText(ctx, msg(BtnClear))
	require.NoError(t, err)

	replies, err := r.HandleCancelClear(ctx, CancelClear{ChatID: 1, Actor: Actor{ID: 7}})
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, MsgClearCancelled, replies[0].Text)
	assert.True(t, replies[0].Edit)

	assert.False(t, store.Empty())
	assert.Equal(t, []order.Action{order.ActionAdd}, audit.actions(),
		"a cancelled clear is not audited")
}

func TestRouterClearAlreadyEmpty(t *testing.T) {
	r, _, _ := newTestRouter(t)

	replies, err := r.HandleText(context.Background(), msg(BtnClear))
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, MsgAlreadyEmpty, replies[0].Text)
	assert.Equal(t, KeyboardNone, replies[0].Keyboard)
}

func TestRouterSessionsAreIndependentPerChat(t *testing.T) {
	r, _, _ := newTestRouter(t)
	ctx := context.Background()

	_, err := r.HandleText(ctx, msg("Молоко 2"))
	require.NoError(t, err)
	_, err = r.HandleText(ctx, msg(BtnEdit))
	require.NoError(t, err)

	other := TextMessage{ChatID: 2, Actor: Actor{ID: 8, Name: "bob"}, Text: "Сыр 1"}
	replies, err := r.HandleText(ctx, other)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, MsgAdded, replies[0].Text, "another chat stays in idle mode")
	assert.Equal(t, ModeAwaitingReplacement, r.Mode(1))
}
