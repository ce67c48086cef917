package router

import (
	"fmt"

	"shoplist/internal/model"
)

// UnauthorizedError means the actor isn't the user the action is reserved for: the
// item's author for comment/edit/delete, or the claimant for releasing a purchase mark.
type UnauthorizedError struct {
	ActorID    model.UserID
	RequiredID model.UserID
	ItemID     model.ItemID
	Action     string
}

func (e UnauthorizedError) Error() string {
	return fmt.Sprintf("%s on %s: user %s is not %s", e.Action, e.ItemID, e.ActorID, e.RequiredID)
}
