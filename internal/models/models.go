package models

// DialogState is the conversation state machine cursor for a lead.
type DialogState string

const (
	StateGreeting DialogState = "greeting"
	StateQualify  DialogState = "qualify"
	StateContact  DialogState = "contact"
	StateHandover DialogState = "handover"
	StateActive   DialogState = "active"
)

// Direction marks whether a message came from the lead or went out to them.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// Sender is the profile snapshot attached to a message.
type Sender struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName,omitempty"`
	Username  string `json:"username,omitempty"`
}

// Message is one immutable entry in a chat's append-only log.
// DialogState records the state the conversation was in when the message
// was stored; it is an audit field, the state machine never reads it.
type Message struct {
	ID          string      `json:"id"`
	ChatID      int64       `json:"chatId"`
	MessageID   int         `json:"messageId"`
	From        Sender      `json:"from"`
	Text        string      `json:"text,omitempty"`
	PhotoURL    string      `json:"photoUrl,omitempty"`
	DocumentURL string      `json:"documentUrl,omitempty"`
	Timestamp   int64       `json:"timestamp"`
	Direction   Direction   `json:"direction"`
	DialogState DialogState `json:"aiState,omitempty"`
}

// Conversation is the per-lead record, keyed by the Telegram chat ID.
// Timestamps are epoch milliseconds.
type Conversation struct {
	ChatID          int64             `json:"chatId"`
	UserID          int64             `json:"userId"`
	FirstName       string            `json:"firstName"`
	LastName        string            `json:"lastName,omitempty"`
	Username        string            `json:"username,omitempty"`
	Phone           string            `json:"phone,omitempty"`
	Name            string            `json:"name,omitempty"`
	State           DialogState       `json:"aiState"`
	CurrentQuestion int               `json:"currentQuestion"`
	Answers         map[string]string `json:"answers"`
	LastMessageAt   int64             `json:"lastMessageAt"`
	CreatedAt       int64             `json:"createdAt"`
	UnreadCount     int               `json:"unreadCount"`
}

// NewConversation creates a fresh record in the greeting state.
func NewConversation(chatID int64, from Sender, at int64) *Conversation {
	return &Conversation{
		ChatID:        chatID,
		UserID:        from.ID,
		FirstName:     from.FirstName,
		LastName:      from.LastName,
		Username:      from.Username,
		State:         StateGreeting,
		Answers:       make(map[string]string),
		LastMessageAt: at,
		CreatedAt:     at,
	}
}
