package websocket

import "encoding/json"

// Event names as the browser client emits and subscribes to them.
const (
	eventJoinRoom   = "joinRoom"
	eventMakeMove   = "makeMove"
	eventResetGame  = "resetGame"
	eventPlayerRole = "playerRole"
	eventRoomData   = "roomData"
	eventGameStart  = "gameStart"
	eventRoomFull   = "roomFull"
	eventPlayerLeft = "playerLeft"
	eventGameOver   = "gameOver"
	eventGameReset  = "gameReset"
)

// Message is the wire envelope in both directions: an event name and an
// event-specific payload.
type Message struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type MakeMovePayload struct {
	Room  string `json:"room"`
	Index int    `json:"index"`
}

type RoomDataPayload struct {
	Board   []string `json:"board"`
	XIsNext bool     `json:"xIsNext"`
}

type GameOverPayload struct {
	Winner         string `json:"winner"`
	WinningIndexes []int  `json:"winningIndexes"`
}

type GameResetPayload struct {
	Board []string `json:"board"`
}
