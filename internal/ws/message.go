package ws

// Message is the envelope pushed to connected shells. Type is one of the
// MsgType constants; Data carries the type-specific payload.
type Message struct {
	Type    string      `json:"type"`
	Channel string      `json:"channel,omitempty"`
	Data    interface{} `json:"data"`
}

const (
	MsgTypeAuthState = "auth_state"
	MsgTypeRoute     = "route"
	MsgTypeContent   = "content"
)
