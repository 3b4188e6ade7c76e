package registry

import (
	"sync"

	"github.com/ancarodev/ancaro-server/internal/apperror"
	"github.com/ancarodev/ancaro-server/internal/entity"
)

// RoomRegistry owns the set of live rooms. Entries are created lazily on
// first join and evicted once a room has no players left. The registry
// lock only guards the map; room state has its own lock.
type RoomRegistry struct {
	mu    sync.Mutex
	cells int
	rooms map[string]*entity.Room
}

func New(cells int) *RoomRegistry {
	return &RoomRegistry{
		cells: cells,
		rooms: make(map[string]*entity.Room),
	}
}

// GetOrCreate - returns the room for an identifier, creating it in the
// waiting state on first access. Two simultaneous first-joins observe the
// same instance: the map is only touched under the registry lock.
func (that *RoomRegistry) GetOrCreate(id string) *entity.Room {
	that.mu.Lock()
	defer that.mu.Unlock()

	if room, ok := that.rooms[id]; ok {
		return room
	}

	room := entity.NewRoom(id, that.cells)
	that.rooms[id] = room

	return room
}

func (that *RoomRegistry) Get(id string) (*entity.Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[id]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	return room, nil
}

// Remove - evicts a room once it has no players left. A join that raced
// the eviction keeps the room alive, so a fresh player never ends up in a
// room the registry no longer knows about. Unknown identifiers are a
// no-op.
func (that *RoomRegistry) Remove(id string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[id]
	if !ok {
		return
	}

	room.Lock()
	defer room.Unlock()

	if room.PlayerCount() == 0 {
		delete(that.rooms, id)
	}
}

func (that *RoomRegistry) Count() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.rooms)
}
