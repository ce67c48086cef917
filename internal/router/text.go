package router

import (
	"context"
	"errors"
	"strings"

	"shoplist/internal/capture"
	"shoplist/internal/chat"
	"shoplist/internal/list"
	"shoplist/internal/metrics"
	"shoplist/internal/model"
	"shoplist/internal/render"
)

// HandleText handles a free-text message. A user with an outstanding prompt is always
// answering it; otherwise the text is a new item name.
func (r *Router) HandleText(ctx context.Context, ev *chat.TextEvent) error {
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return nil
	}

	if cmd, ok := command(text); ok {
		switch cmd {
		case "start":
			r.view.Send(ctx, ev.ChatID, render.Greeting())
			r.view.RenderFullList(ctx, ev.ChatID)
			return nil
		case "list":
			r.view.RenderFullList(ctx, ev.ChatID)
			return nil
		}
	}

	if p, prompt, ok := r.capture.Take(ev.UserID); ok {
		return r.answerPending(ctx, ev, p, prompt, text)
	}
	return r.create(ctx, ev, text)
}

func (r *Router) create(ctx context.Context, ev *chat.TextEvent, name string) error {
	it, err := r.list.Create(ctx, name, model.Author{ID: ev.UserID, Name: ev.UserName})
	if err != nil {
		var dup list.DuplicateNameError
		switch {
		case errors.As(err, &dup):
			r.replyDuplicate(ctx, ev.ChatID, dup.ExistingID)
		case isPersist(err):
			r.view.Send(ctx, ev.ChatID, render.Notice(render.NoticeSaveFailed))
		}
		return err
	}
	metrics.ItemsCreated.Inc()

	r.view.Delete(ctx, ev.ChatID, ev.MessageID)
	r.view.RenderItem(ctx, ev.ChatID, it.ID)
	r.view.RefreshFooter(ctx, ev.ChatID)
	return nil
}

// answerPending applies text as the comment or new name the user was asked for. The
// entry is consumed whatever the outcome, and both the user's reply and the prompt are
// removed from the chat.
func (r *Router) answerPending(ctx context.Context, ev *chat.TextEvent, p capture.Pending, prompt model.MessageID, text string) error {
	defer func() {
		r.view.Delete(ctx, ev.ChatID, ev.MessageID)
		r.view.Delete(ctx, ev.ChatID, prompt)
	}()

	_, err := r.list.Mutate(ctx, p.ItemID, func(it *model.Item) error {
		switch p.Mode {
		case capture.ModeComment:
			it.Comment = text
		case capture.ModeRename:
			it.Name = text
		}
		return nil
	})
	if err != nil {
		var (
			dup      list.DuplicateNameError
			notFound list.NotFoundError
		)
		switch {
		case errors.As(err, &dup):
			r.replyDuplicate(ctx, ev.ChatID, dup.ExistingID)
		case errors.As(err, &notFound):
			r.view.Send(ctx, ev.ChatID, render.Notice(render.NoticeNotFound))
		case isPersist(err):
			r.view.Send(ctx, ev.ChatID, render.Notice(render.NoticeSaveFailed))
		}
		return err
	}

	r.view.RenderItem(ctx, ev.ChatID, p.ItemID)
	return nil
}

func (r *Router) replyDuplicate(ctx context.Context, chatID model.ChatID, existing model.ItemID) {
	it, ok := r.list.Get(existing)
	if !ok {
		return
	}
	r.view.Send(ctx, chatID, render.Duplicate(it))
}

func isPersist(err error) bool {
	var pe list.PersistError
	return errors.As(err, &pe)
}
