// Package view keeps the chat transcript in step with the list.
//
// Every transport call here is best-effort: failures are logged and counted, never
// returned, and never undo the list change that triggered them. The list stays the
// source of truth and the next render of an item heals any drift.
package view

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"shoplist/internal/chat"
	"shoplist/internal/list"
	"shoplist/internal/metrics"
	"shoplist/internal/model"
	"shoplist/internal/render"
)

type Options struct {
	Formatter render.Formatter
	Pacer     Pacer
	Logger    zerolog.Logger
	// CallTimeout bounds each transport call; zero means no extra bound.
	CallTimeout time.Duration
}

// Synchronizer owns the item -> message mapping (through the list's render refs) and the
// footer marker. Not safe for concurrent use.
type Synchronizer struct {
	client  chat.Client
	list    *list.List
	fmt     render.Formatter
	pacer   Pacer
	log     zerolog.Logger
	timeout time.Duration

	footer model.MessageID
}

func New(client chat.Client, l *list.List, opts Options) *Synchronizer {
	pacer := opts.Pacer
	if pacer == nil {
		pacer = NoDelay
	}
	f := opts.Formatter
	if f.Location == nil {
		f = render.New(nil)
	}
	return &Synchronizer{
		client:  client,
		list:    l,
		fmt:     f,
		pacer:   pacer,
		log:     opts.Logger,
		timeout: opts.CallTimeout,
	}
}

// Footer returns the current footer message, or 0.
func (s *Synchronizer) Footer() model.MessageID { return s.footer }

// RenderItem edits the item's message in place, or sends a new one when it has none
// (or the old one is gone) and records the new reference.
func (s *Synchronizer) RenderItem(ctx context.Context, chatID model.ChatID, id model.ItemID) {
	defer observe("item", time.Now())
	it, ok := s.list.Get(id)
	if !ok {
		return
	}
	msg := s.fmt.Item(it)

	if it.RenderedMessageID != nil {
		err := s.edit(ctx, chatID, *it.RenderedMessageID, msg)
		switch {
		case err == nil, errors.Is(err, chat.ErrNotModified):
			return
		case errors.Is(err, chat.ErrMessageNotFound):
			// Gone from the chat; fall through and send a fresh one.
		default:
			return
		}
	}

	sent, ok := s.Send(ctx, chatID, msg)
	if !ok {
		return
	}
	s.setRendered(ctx, id, sent)
}

// RenderFullList sends every item as a new message, paced, then replaces the footer.
// An empty list gets a single notice and no footer.
func (s *Synchronizer) RenderFullList(ctx context.Context, chatID model.ChatID) {
	defer observe("full_list", time.Now())
	items := s.list.Items()
	if len(items) == 0 {
		s.DeleteFooter(ctx, chatID)
		s.Send(ctx, chatID, render.EmptyList())
		return
	}
	for _, it := range items {
		if err := s.pacer.Wait(ctx); err != nil {
			s.log.Warn().Err(err).Msg("full list render interrupted")
			return
		}
		sent, ok := s.Send(ctx, chatID, s.fmt.Item(it))
		if !ok {
			continue
		}
		s.setRendered(ctx, it.ID, sent)
	}
	if err := s.pacer.Wait(ctx); err != nil {
		return
	}
	s.RefreshFooter(ctx, chatID)
}

// CollapseToSummary removes every item message and the footer, then sends the whole
// list as one text block with the bulk actions.
func (s *Synchronizer) CollapseToSummary(ctx context.Context, chatID model.ChatID) {
	defer observe("summary", time.Now())
	items := s.list.Items()
	for _, it := range items {
		if it.RenderedMessageID != nil {
			s.Delete(ctx, chatID, *it.RenderedMessageID)
		}
	}
	if err := s.list.ClearRendered(ctx); err != nil {
		s.log.Error().Err(err).Msg("clear rendered refs")
	}
	s.DeleteFooter(ctx, chatID)
	s.Send(ctx, chatID, render.Summary(items))
}

// RefreshFooter deletes the current footer, if any, and sends a new one at the bottom.
func (s *Synchronizer) RefreshFooter(ctx context.Context, chatID model.ChatID) {
	s.DeleteFooter(ctx, chatID)
	if sent, ok := s.Send(ctx, chatID, render.Footer()); ok {
		s.footer = sent
	}
}

func (s *Synchronizer) DeleteFooter(ctx context.Context, chatID model.ChatID) {
	if s.footer == 0 {
		return
	}
	s.Delete(ctx, chatID, s.footer)
	s.footer = 0
}

// RemoveItemMessage deletes the message that was showing it.
func (s *Synchronizer) RemoveItemMessage(ctx context.Context, chatID model.ChatID, it model.Item) {
	if it.RenderedMessageID != nil {
		s.Delete(ctx, chatID, *it.RenderedMessageID)
	}
}

// Send posts msg and reports whether it went through.
func (s *Synchronizer) Send(ctx context.Context, chatID model.ChatID, msg chat.Message) (model.MessageID, bool) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()
	id, err := s.client.SendMessage(ctx, chatID, msg)
	if err != nil {
		s.failed("send", chatID, 0, err)
		return 0, false
	}
	return id, true
}

// Delete removes a message; a message that is already gone is not worth a warning.
func (s *Synchronizer) Delete(ctx context.Context, chatID model.ChatID, messageID model.MessageID) {
	if messageID == 0 {
		return
	}
	ctx, cancel := s.callCtx(ctx)
	defer cancel()
	if err := s.client.DeleteMessage(ctx, chatID, messageID); err != nil {
		s.failed("delete", chatID, messageID, err)
	}
}

// Answer acknowledges a button press. Alerts are shown as a modal notice.
func (s *Synchronizer) Answer(ctx context.Context, callbackID, text string, alert bool) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()
	if err := s.client.AnswerCallback(ctx, callbackID, text, alert); err != nil {
		s.failed("answer", 0, 0, err)
	}
}

func (s *Synchronizer) edit(ctx context.Context, chatID model.ChatID, messageID model.MessageID, msg chat.Message) error {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()
	err := s.client.EditMessage(ctx, chatID, messageID, msg)
	if err != nil && !errors.Is(err, chat.ErrNotModified) {
		s.failed("edit", chatID, messageID, err)
	}
	return err
}

func (s *Synchronizer) setRendered(ctx context.Context, id model.ItemID, msg model.MessageID) {
	if err := s.list.SetRendered(ctx, id, msg); err != nil {
		var nf list.NotFoundError
		if errors.As(err, &nf) {
			return
		}
		s.log.Error().Err(err).Str("item_id", string(id)).Msg("record rendered message")
	}
}

func (s *Synchronizer) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Synchronizer) failed(op string, chatID model.ChatID, messageID model.MessageID, err error) {
	class := chat.Class(err)
	metrics.TransportFailures.WithLabelValues(op, class).Inc()

	var ev *zerolog.Event
	switch class {
	case "not_found":
		ev = s.log.Debug()
	case "unexpected":
		ev = s.log.Error()
	default:
		ev = s.log.Warn()
	}
	ev.Err(err).
		Str("op", op).
		Str("class", class).
		Int64("chat_id", int64(chatID)).
		Int("message_id", int(messageID)).
		Msg("transport call failed")
}

func observe(op string, start time.Time) {
	metrics.RenderDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
