package router

import (
	"context"

	"shoplist/internal/action"
	"shoplist/internal/capture"
	"shoplist/internal/chat"
	"shoplist/internal/list"
	"shoplist/internal/model"
	"shoplist/internal/render"
)

// HandleCallback handles a button press. Every press is answered, with an alert when
// the action was refused.
func (r *Router) HandleCallback(ctx context.Context, ev *chat.CallbackEvent) error {
	a, err := action.Parse(ev.Payload)
	if err != nil {
		r.view.Answer(ctx, ev.CallbackID, render.NoticeUnknownAction, false)
		return err
	}

	switch a.Kind {
	case action.KindSummary:
		r.view.Answer(ctx, ev.CallbackID, "", false)
		r.view.CollapseToSummary(ctx, ev.ChatID)
		return nil
	case action.KindPreserve:
		return r.carryForward(ctx, ev)
	case action.KindClearAll:
		return r.clearAll(ctx, ev)
	}

	it, ok := r.list.Get(a.ItemID)
	if !ok {
		r.view.Answer(ctx, ev.CallbackID, render.NoticeNotFound, false)
		return list.NotFoundError{ID: a.ItemID}
	}

	switch a.Kind {
	case action.KindBuy:
		return r.toggleBought(ctx, ev, it)
	case action.KindComment:
		return r.prompt(ctx, ev, it, capture.ModeComment)
	case action.KindEdit:
		return r.prompt(ctx, ev, it, capture.ModeRename)
	case action.KindDeleteComment:
		return r.deleteComment(ctx, ev, it)
	case action.KindDelete:
		return r.deleteItem(ctx, ev, it)
	}
	r.view.Answer(ctx, ev.CallbackID, render.NoticeUnknownAction, false)
	return action.ErrMalformedPayload
}

func (r *Router) carryForward(ctx context.Context, ev *chat.CallbackEvent) error {
	removed, err := r.list.RetainUnbought(ctx)
	if err != nil {
		return r.saveFailed(ctx, ev, err)
	}
	r.log.Info().Int("removed", removed).Int("kept", r.list.Len()).Msg("carried unbought items forward")
	r.view.Answer(ctx, ev.CallbackID, "", false)
	r.view.Send(ctx, ev.ChatID, render.Carried())
	r.view.RenderFullList(ctx, ev.ChatID)
	return nil
}

func (r *Router) clearAll(ctx context.Context, ev *chat.CallbackEvent) error {
	if err := r.list.ClearAll(ctx); err != nil {
		return r.saveFailed(ctx, ev, err)
	}
	r.log.Info().Msg("list cleared")
	r.view.Answer(ctx, ev.CallbackID, "", false)
	r.view.DeleteFooter(ctx, ev.ChatID)
	r.view.Send(ctx, ev.ChatID, render.Cleared())
	return nil
}

// toggleBought lets anyone claim an unbought item, but only the claimant release it.
func (r *Router) toggleBought(ctx context.Context, ev *chat.CallbackEvent, it model.Item) error {
	if it.Bought && (it.MarkedBy == nil || *it.MarkedBy != ev.UserID) {
		var claimant model.UserID
		if it.MarkedBy != nil {
			claimant = *it.MarkedBy
		}
		r.view.Answer(ctx, ev.CallbackID, render.DenyRelease, true)
		return UnauthorizedError{ActorID: ev.UserID, RequiredID: claimant, ItemID: it.ID, Action: "release"}
	}

	next, err := r.list.Mutate(ctx, it.ID, func(x *model.Item) error {
		x.Bought = !x.Bought
		if x.Bought {
			x.MarkedBy = model.UserPtr(ev.UserID)
		}
		return nil
	})
	if err != nil {
		return r.saveFailed(ctx, ev, err)
	}
	r.view.RenderItem(ctx, ev.ChatID, it.ID)
	if next.Bought {
		r.view.Answer(ctx, ev.CallbackID, render.NoticeMarked, false)
	} else {
		r.view.Answer(ctx, ev.CallbackID, render.NoticeUnmarked, false)
	}
	return nil
}

// prompt asks the author for a comment or a new name. A prompt the user had not
// answered yet is replaced, and its message removed.
func (r *Router) prompt(ctx context.Context, ev *chat.CallbackEvent, it model.Item, mode capture.Mode) error {
	act, deny, msg := action.KindComment, render.DenyComment, render.CommentPrompt(it)
	if mode == capture.ModeRename {
		act, deny, msg = action.KindEdit, render.DenyEdit, render.RenamePrompt(it)
	}
	if err := authorOnly(ev.UserID, it, act); err != nil {
		r.view.Answer(ctx, ev.CallbackID, deny, true)
		return err
	}

	sent, _ := r.view.Send(ctx, ev.ChatID, msg)
	if stale := r.capture.Set(ev.UserID, capture.Pending{Mode: mode, ItemID: it.ID}, sent); stale != 0 {
		r.view.Delete(ctx, ev.ChatID, stale)
	}
	r.view.Answer(ctx, ev.CallbackID, "", false)
	return nil
}

func (r *Router) deleteComment(ctx context.Context, ev *chat.CallbackEvent, it model.Item) error {
	if err := authorOnly(ev.UserID, it, action.KindDeleteComment); err != nil {
		r.view.Answer(ctx, ev.CallbackID, render.DenyDeleteComment, true)
		return err
	}
	if _, err := r.list.Mutate(ctx, it.ID, func(x *model.Item) error {
		x.Comment = ""
		return nil
	}); err != nil {
		return r.saveFailed(ctx, ev, err)
	}
	r.view.RenderItem(ctx, ev.ChatID, it.ID)
	r.view.Answer(ctx, ev.CallbackID, render.NoticeCommentRemoved, false)
	return nil
}

func (r *Router) deleteItem(ctx context.Context, ev *chat.CallbackEvent, it model.Item) error {
	if err := authorOnly(ev.UserID, it, action.KindDelete); err != nil {
		r.view.Answer(ctx, ev.CallbackID, render.DenyDelete, true)
		return err
	}
	gone, err := r.list.Delete(ctx, it.ID)
	if err != nil {
		return r.saveFailed(ctx, ev, err)
	}
	r.view.RemoveItemMessage(ctx, ev.ChatID, gone)
	r.view.Answer(ctx, ev.CallbackID, render.NoticeDeleted, false)
	return nil
}

// saveFailed answers the press with a failure alert and passes err on for reporting.
func (r *Router) saveFailed(ctx context.Context, ev *chat.CallbackEvent, err error) error {
	if isPersist(err) {
		r.view.Answer(ctx, ev.CallbackID, render.NoticeSaveFailed, true)
	} else {
		r.view.Answer(ctx, ev.CallbackID, render.NoticeNotFound, false)
	}
	return err
}

func authorOnly(actor model.UserID, it model.Item, act action.Kind) error {
	if actor == it.AuthorID {
		return nil
	}
	return UnauthorizedError{ActorID: actor, RequiredID: it.AuthorID, ItemID: it.ID, Action: act.String()}
}
