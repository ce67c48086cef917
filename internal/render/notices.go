package render

import "shoplist/internal/chat"

// Short notices shown as callback answers.
const (
	NoticeMarked         = "Marked as bought"
	NoticeUnmarked       = "Mark removed"
	NoticeCommentRemoved = "Comment removed"
	NoticeDeleted        = "Item deleted"
	NoticeNotFound       = "Item not found"
	NoticeUnknownAction  = "Unknown action"
	NoticeSaveFailed     = "⚠️ Could not save the change, please try again."

	DenyRelease       = "🔒 Only the person who marked it can remove the mark"
	DenyComment       = "🔒 Only the author can add a comment"
	DenyDeleteComment = "🔒 Only the author can remove the comment"
	DenyEdit          = "🔒 Only the author can edit"
	DenyDelete        = "🔒 Only the author can delete the item"
)

func Greeting() chat.Message {
	return chat.Message{Text: "👋 Hi! Send me a product name and I'll add it to the list."}
}

func Carried() chat.Message {
	return chat.Message{Text: "🔄 Unbought items carried forward to a new list:"}
}

func Cleared() chat.Message {
	return chat.Message{Text: "🗑 The list was cleared."}
}

// Notice wraps a short plain-text reply.
func Notice(text string) chat.Message {
	return chat.Message{Text: text}
}
