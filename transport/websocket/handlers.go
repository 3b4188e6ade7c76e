package websocket

import (
	"encoding/json"
	"errors"

	"github.com/ancarodev/ancaro-server/internal/apperror"
	"github.com/ancarodev/ancaro-server/internal/entity"
)

func (that *Server) handleJoinRoom(cl *client, payload json.RawMessage) {
	log := that.logger.With("method", "handleJoinRoom", "connID", cl.id)

	var roomID string
	if err := json.Unmarshal(payload, &roomID); err != nil || roomID == "" {
		log.Error("invalid joinRoom payload", "error", err)
		return
	}

	if bind, ok := that.bindingOf(cl); ok {
		log.Info("connection already bound, ignoring join", "roomID", bind.roomID)
		return
	}

	that.addMember(roomID, cl)

	result, err := that.rooms.JoinRoom(roomID, cl.id)
	if errors.Is(err, apperror.ErrRoomFull) {
		// only the requester hears about it; the room is untouched
		that.removeMember(roomID, cl)
		that.sendEvent(cl, eventRoomFull, nil)
		log.Info("join rejected, room full", "roomID", roomID)
		return
	}

	if err != nil {
		that.removeMember(roomID, cl)
		log.Error("failed to join room", "roomID", roomID, "error", err)
		return
	}

	that.setBinding(cl, roomID, result.Slot)

	that.sendEvent(cl, eventPlayerRole, result.Slot)
	that.broadcast(roomID, eventRoomData, roomData(result.State))

	if result.Started {
		that.broadcast(roomID, eventGameStart, nil)
	}

	log.Info("player joined room", "roomID", roomID, "slot", result.Slot)
}

func (that *Server) handleMakeMove(cl *client, payload json.RawMessage) {
	log := that.logger.With("method", "handleMakeMove", "connID", cl.id)

	var req MakeMovePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		log.Error("invalid makeMove payload", "error", err)
		return
	}

	bind, ok := that.bindingOf(cl)
	if !ok {
		log.Info("move from unbound connection, ignoring")
		return
	}

	// the binding is authoritative; a stale room id in the payload is
	// dropped rather than trusted
	if req.Room != "" && req.Room != bind.roomID {
		log.Info("move for a different room, ignoring", "payloadRoom", req.Room, "boundRoom", bind.roomID)
		return
	}

	state, err := that.rooms.MakeMove(bind.roomID, cl.id, req.Index)
	if err != nil {
		// rejected moves fail closed: no state change, no broadcast
		log.Info("move rejected", "roomID", bind.roomID, "cell", req.Index, "error", err)
		return
	}

	that.broadcast(bind.roomID, eventRoomData, roomData(state))

	if state.Status == entity.StatusFinished {
		that.broadcast(bind.roomID, eventGameOver, gameOver(state))
	}
}

func (that *Server) handleResetGame(cl *client, payload json.RawMessage) {
	log := that.logger.With("method", "handleResetGame", "connID", cl.id)

	var roomID string
	if err := json.Unmarshal(payload, &roomID); err != nil {
		log.Error("invalid resetGame payload", "error", err)
		return
	}

	bind, ok := that.bindingOf(cl)
	if !ok {
		log.Info("reset from unbound connection, ignoring")
		return
	}

	if roomID != "" && roomID != bind.roomID {
		log.Info("reset for a different room, ignoring", "payloadRoom", roomID, "boundRoom", bind.roomID)
		return
	}

	state, err := that.rooms.ResetGame(bind.roomID, cl.id)
	if err != nil {
		log.Error("failed to reset game", "roomID", bind.roomID, "error", err)
		return
	}

	that.broadcast(bind.roomID, eventGameReset, GameResetPayload{Board: state.Board})

	log.Info("game reset", "roomID", bind.roomID)
}

func roomData(state entity.RoomState) RoomDataPayload {
	return RoomDataPayload{
		Board:   state.Board,
		XIsNext: state.XIsNext(),
	}
}

func gameOver(state entity.RoomState) GameOverPayload {
	indexes := state.WinningLine
	if indexes == nil {
		indexes = []int{}
	}

	return GameOverPayload{
		Winner:         state.Winner,
		WinningIndexes: indexes,
	}
}
