package remote

import "github.com/brensch/snekpad/game"

// Client to server message types.
const (
	MsgDrag   = "drag"
	MsgEnd    = "end"
	MsgButton = "button"
	MsgKey    = "key"
	MsgReset  = "reset"
)

// MsgState carries a snapshot from server to client after every change.
const MsgState = "state"

// ClientMessage is one input event from the pad page. Only the fields that
// belong to T are set.
type ClientMessage struct {
	T   string  `json:"t"`
	DX  float64 `json:"dx,omitempty"`
	DY  float64 `json:"dy,omitempty"`
	Dir string  `json:"dir,omitempty"`
	Key string  `json:"key,omitempty"`
}

type ServerMessage struct {
	T     string         `json:"t"`
	State *game.Snapshot `json:"state,omitempty"`
}
