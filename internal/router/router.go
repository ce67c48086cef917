// Package router turns inbound chat events into list changes and view updates.
//
// Events are handled one at a time, in arrival order. Each event is isolated: a panic
// or error while handling one is logged and the next event is processed normally.
package router

import (
	"context"
	"errors"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"

	"shoplist/internal/action"
	"shoplist/internal/capture"
	"shoplist/internal/chat"
	"shoplist/internal/list"
	"shoplist/internal/metrics"
	"shoplist/internal/model"
	"shoplist/internal/view"
)

// Session is the state of one chat: the list, its on-screen view and the users'
// outstanding prompts.
type Session struct {
	List    *list.List
	View    *view.Synchronizer
	Capture *capture.Machine
}

type Options struct {
	// ChatID restricts the router to one chat. Zero binds to the first chat that writes.
	ChatID model.ChatID
	Logger zerolog.Logger
}

type Router struct {
	list    *list.List
	view    *view.Synchronizer
	capture *capture.Machine
	log     zerolog.Logger

	chatID model.ChatID
}

func New(s Session, opts Options) *Router {
	c := s.Capture
	if c == nil {
		c = capture.New()
	}
	return &Router{
		list:    s.List,
		view:    s.View,
		capture: c,
		log:     opts.Logger,
		chatID:  opts.ChatID,
	}
}

// ChatID returns the chat the router is serving, or 0 before the first event.
func (r *Router) ChatID() model.ChatID { return r.chatID }

// Serve dispatches events until the channel closes or ctx is done.
func (r *Router) Serve(ctx context.Context, events <-chan chat.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			r.Dispatch(ctx, ev)
		}
	}
}

// Dispatch handles one event. It never panics and never returns an error: outcomes are
// shown to the user, logged and counted.
func (r *Router) Dispatch(ctx context.Context, ev chat.Event) {
	kind := "unknown"
	defer func() {
		if p := recover(); p != nil {
			metrics.EventPanics.Inc()
			r.log.Error().
				Str("kind", kind).
				Interface("panic", p).
				Bytes("stack", debug.Stack()).
				Msg("event handler panicked")
		}
	}()

	if ev == nil || !r.accept(ev.EventChat()) {
		return
	}

	var err error
	switch e := ev.(type) {
	case *chat.TextEvent:
		kind = "text"
		err = r.HandleText(ctx, e)
	case *chat.CallbackEvent:
		kind = "callback"
		err = r.HandleCallback(ctx, e)
	default:
		r.log.Debug().Msgf("ignoring event %T", ev)
		return
	}
	metrics.EventsHandled.WithLabelValues(kind).Inc()
	r.report(kind, err)
}

func (r *Router) accept(chatID model.ChatID) bool {
	if r.chatID == 0 {
		r.chatID = chatID
		r.log.Info().Int64("chat_id", int64(chatID)).Msg("bound to chat")
		return true
	}
	if chatID != r.chatID {
		r.log.Debug().Int64("chat_id", int64(chatID)).Msg("ignoring event from another chat")
		return false
	}
	return true
}

func (r *Router) report(kind string, err error) {
	if err == nil {
		return
	}
	var (
		unauthorized UnauthorizedError
		dup          list.DuplicateNameError
		notFound     list.NotFoundError
		persist      list.PersistError
	)
	switch {
	case errors.As(err, &unauthorized):
		metrics.Rejections.WithLabelValues("unauthorized").Inc()
		r.log.Info().Err(err).Str("kind", kind).Msg("action rejected")
	case errors.As(err, &dup):
		metrics.Rejections.WithLabelValues("duplicate").Inc()
		r.log.Debug().Err(err).Str("kind", kind).Msg("duplicate name")
	case errors.As(err, &notFound):
		metrics.Rejections.WithLabelValues("not_found").Inc()
		r.log.Debug().Err(err).Str("kind", kind).Msg("item not found")
	case errors.Is(err, action.ErrMalformedPayload):
		metrics.Rejections.WithLabelValues("malformed").Inc()
		r.log.Warn().Err(err).Str("kind", kind).Msg("malformed button payload")
	case errors.As(err, &persist):
		metrics.PersistFailures.Inc()
		r.log.Error().Err(err).Str("kind", kind).Msg("change not saved")
	default:
		r.log.Error().Err(err).Str("kind", kind).Msg("event failed")
	}
}

// command returns the bot command in text ("/start@my_bot" -> "start").
func command(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	name := strings.Fields(text)[0][1:]
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name), name != ""
}
