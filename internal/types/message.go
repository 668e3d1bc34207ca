package types

// Message is immutable once created. ID is a per-conversation sequence
// number and Timestamp is server-assigned nanoseconds since the epoch, both
// monotonic in server order; clients must not reorder.
type Message struct {
	ID        uint64 `json:"id"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// Conversation is a projection over the message set for one peer; it is
// derived by the backend and never persisted on its own.
type Conversation struct {
	OtherUser   ChatUser `json:"other_user"`
	LastMessage *Message `json:"last_message,omitempty"`
	UnreadCount int      `json:"unread_count"`
}
