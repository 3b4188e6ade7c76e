package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ancarodev/ancaro-server/internal/entity"
	"github.com/ancarodev/ancaro-server/internal/usecase"
)

type roomManager interface {
	JoinRoom(roomID, connID string) (*usecase.JoinResult, error)
	MakeMove(roomID, connID string, cell int) (entity.RoomState, error)
	ResetGame(roomID, connID string) (entity.RoomState, error)
	LeaveRoom(roomID, connID string) usecase.LeaveResult
}

// binding ties a connection to its room and slot. A connection holds at
// most one binding at a time; it is removed on disconnect.
type binding struct {
	roomID string
	slot   string
}

// Server is the connection gateway: it upgrades sockets, demultiplexes
// inbound events to the room authority and fans the resulting state out
// to every connection bound to the affected room.
type Server struct {
	logger   *slog.Logger
	rooms    roomManager
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	bindings map[*client]binding
	members  map[string]map[*client]struct{}

	handlers map[string]func(cl *client, payload json.RawMessage)
}

func New(logger *slog.Logger, rooms roomManager) *Server {
	server := &Server{
		logger: logger,
		rooms:  rooms,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		bindings: make(map[*client]binding),
		members:  make(map[string]map[*client]struct{}),
		handlers: make(map[string]func(*client, json.RawMessage)),
	}

	server.handlers[eventJoinRoom] = server.handleJoinRoom
	server.handlers[eventMakeMove] = server.handleMakeMove
	server.handlers[eventResetGame] = server.handleResetGame

	return server
}

// Handler - the HTTP handler serving the /ws endpoint.
func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWS)

	return mux
}

// Start - starts the WebSocket server and shuts it down when the context
// is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveWS - upgrades the connection, assigns it an identity and reads
// events until it goes away.
func (that *Server) serveWS(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	cl := newClient(uuid.NewString(), conn)
	log.Info("WebSocket connection established", "connID", cl.id)

	go cl.writePump(that.logger)

	that.readLoop(cl)
	that.disconnect(cl)
}

// readLoop - processes messages from the client until the socket closes.
func (that *Server) readLoop(cl *client) {
	log := that.logger.With("method", "readLoop", "connID", cl.id)

	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			log.Info("connection closed", "error", err)
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Event]
		if !ok {
			log.Error("unknown event", "event", message.Event)
			continue
		}

		handler(cl, message.Payload)
	}
}

// disconnect - drops the binding, releases the slot and tells the
// remaining player. The room state was already updated when this sends.
func (that *Server) disconnect(cl *client) {
	log := that.logger.With("method", "disconnect", "connID", cl.id)

	that.mu.Lock()
	bind, bound := that.bindings[cl]
	delete(that.bindings, cl)
	if bound {
		that.removeMemberLocked(bind.roomID, cl)
	}
	that.mu.Unlock()

	cl.stop()

	if !bound {
		return
	}

	result := that.rooms.LeaveRoom(bind.roomID, cl.id)
	if result.Left && !result.Empty {
		that.broadcast(bind.roomID, eventPlayerLeft, nil)
	}

	log.Info("player left room", "roomID", bind.roomID, "slot", bind.slot)
}

// addMember - registers the connection for room fan-out. This happens
// before the join transition so a broadcast triggered by the opponent
// can never slip past a player whose join already succeeded.
func (that *Server) addMember(roomID string, cl *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	clients, ok := that.members[roomID]
	if !ok {
		clients = make(map[*client]struct{}, 2)
		that.members[roomID] = clients
	}
	clients[cl] = struct{}{}
}

func (that *Server) removeMember(roomID string, cl *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.removeMemberLocked(roomID, cl)
}

// setBinding - records the connection's room/slot pair.
func (that *Server) setBinding(cl *client, roomID, slot string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.bindings[cl] = binding{roomID: roomID, slot: slot}
}

func (that *Server) bindingOf(cl *client) (binding, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	bind, ok := that.bindings[cl]
	return bind, ok
}

func (that *Server) removeMemberLocked(roomID string, cl *client) {
	clients, ok := that.members[roomID]
	if !ok {
		return
	}

	delete(clients, cl)
	if len(clients) == 0 {
		delete(that.members, roomID)
	}
}

// sendEvent - queues one event for a single connection. A full send
// buffer drops the message; the next snapshot broadcast reconciles the
// client.
func (that *Server) sendEvent(cl *client, event string, payload any) {
	log := that.logger.With("method", "sendEvent", "connID", cl.id)

	data, err := marshalEvent(event, payload)
	if err != nil {
		log.Error("failed to marshal event", "event", event, "error", err)
		return
	}

	select {
	case cl.send <- data:
	default:
		log.Error("send buffer full, dropping event", "event", event)
	}
}

// broadcast - fans one event out to every connection bound to the room.
// The payload is marshaled once; no room lock is held here.
func (that *Server) broadcast(roomID, event string, payload any) {
	log := that.logger.With("method", "broadcast", "roomID", roomID)

	data, err := marshalEvent(event, payload)
	if err != nil {
		log.Error("failed to marshal event", "event", event, "error", err)
		return
	}

	that.mu.RLock()
	clients := make([]*client, 0, len(that.members[roomID]))
	for cl := range that.members[roomID] {
		clients = append(clients, cl)
	}
	that.mu.RUnlock()

	for _, cl := range clients {
		select {
		case cl.send <- data:
		default:
			log.Error("send buffer full, dropping event", "event", event, "connID", cl.id)
		}
	}
}

func marshalEvent(event string, payload any) ([]byte, error) {
	message := Message{Event: event}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		message.Payload = raw
	}

	data, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}
