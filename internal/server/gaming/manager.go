package gaming

import (
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/six78/gamelobby/pkg/plugin"
	"github.com/six78/gamelobby/pkg/protocol"
	"github.com/six78/gamelobby/pkg/storage"
)

// Manager indexes live rooms and outstanding reservations.
// Room methods are never called while the manager mutex is held.
type Manager struct {
	registry *plugin.Registry

	rooms        map[protocol.RoomID]*Room
	order        []protocol.RoomID
	reservations map[protocol.ReservationCode]*Room
	mutex        sync.RWMutex

	// creation serializes room creation and ad-hoc joins.
	// Unlike mutex it may be held while calling into a room.
	creation sync.Mutex

	clock       clockwork.Clock
	logger      *zap.Logger
	storage     storage.Service
	saveReplays bool
	pauseOnJoin bool
	loadFile    string
	loadTurn    int
	metrics     *Metrics
}

type Option func(*Manager)

func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

func WithClock(clock clockwork.Clock) Option {
	return func(m *Manager) {
		m.clock = clock
	}
}

func WithStorage(s storage.Service) Option {
	return func(m *Manager) {
		m.storage = s
	}
}

func WithSaveReplays(save bool) Option {
	return func(m *Manager) {
		m.saveReplays = save
	}
}

// WithPauseOnJoin starts every new room paused.
func WithPauseOnJoin(paused bool) Option {
	return func(m *Manager) {
		m.pauseOnJoin = paused
	}
}

// WithLoadFile seeds new rooms with a state from a replay file.
// Turn 0 picks the first state of the matching game type.
func WithLoadFile(path string, turn int) Option {
	return func(m *Manager) {
		m.loadFile = path
		m.loadTurn = turn
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

func NewManager(registry *plugin.Registry, opts ...Option) *Manager {
	m := &Manager{
		registry:     registry,
		rooms:        make(map[protocol.RoomID]*Room),
		reservations: make(map[protocol.ReservationCode]*Room),
		clock:        clockwork.NewRealClock(),
		logger:       zap.NewNop(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *Manager) Registry() *plugin.Registry {
	return m.registry
}

// CreateGame creates and indexes an empty room.
// Unknown game types leave no trace.
func (m *Manager) CreateGame(gameType string, prepared bool) (*Room, error) {
	m.creation.Lock()
	defer m.creation.Unlock()

	room, err := m.create(gameType, prepared)
	if err != nil {
		return nil, err
	}
	m.add(room)
	return room, nil
}

// create builds a configured room that is not indexed yet.
// The caller holds m.creation.
func (m *Manager) create(gameType string, prepared bool) (*Room, error) {
	p, err := m.registry.Get(gameType)
	if err != nil {
		return nil, err
	}

	m.mutex.RLock()
	id := protocol.NewRoomID()
	for m.rooms[id] != nil {
		id = protocol.NewRoomID()
	}
	m.mutex.RUnlock()

	room := newRoom(id, p, prepared, m)

	if m.pauseOnJoin && !prepared {
		room.setPaused(true)
	}

	if m.loadFile != "" && m.storage != nil {
		state, err := m.storage.LoadState(m.loadFile, gameType, m.loadTurn)
		if err == nil {
			err = room.LoadState(*state)
		}
		if err != nil {
			m.logger.Warn("failed to seed room from file",
				zap.String("file", m.loadFile),
				zap.Error(err))
		}
	}

	return room, nil
}

func (m *Manager) add(room *Room) {
	m.mutex.Lock()
	m.rooms[room.ID()] = room
	m.order = append(m.order, room.ID())
	m.mutex.Unlock()

	m.logger.Info("room created",
		zap.String("roomID", room.ID().String()),
		zap.String("gameType", room.GameType()),
		zap.Bool("prepared", room.Prepared()))
	m.updateMetrics(func(metrics *Metrics) {
		metrics.RoomsCreated.Inc()
	})
}

func (m *Manager) CreateAndJoinGame(client Client, gameType string) (*Room, error) {
	m.creation.Lock()
	defer m.creation.Unlock()
	return m.createAndJoin(client, gameType)
}

func (m *Manager) createAndJoin(client Client, gameType string) (*Room, error) {
	room, err := m.create(gameType, false)
	if err != nil {
		return nil, err
	}
	m.add(room)

	err = room.Join(client)
	if err != nil {
		m.Remove(room)
		return nil, errors.Wrap(err, "failed to join created room")
	}
	return room, nil
}

// JoinOrCreateGame places the client into the oldest open ad-hoc room
// of the type, or a fresh one. existing reports which happened.
func (m *Manager) JoinOrCreateGame(client Client, gameType string) (*Room, bool, error) {
	if _, err := m.registry.Get(gameType); err != nil {
		return nil, false, err
	}

	m.creation.Lock()
	defer m.creation.Unlock()

	for _, room := range m.Rooms() {
		if room.GameType() != gameType || room.Prepared() {
			continue
		}
		err := room.Join(client)
		if err == nil {
			return room, true, nil
		}
		if !errors.Is(err, ErrTooManyPlayers) {
			return nil, false, err
		}
	}

	room, err := m.createAndJoin(client, gameType)
	if err != nil {
		return nil, false, err
	}
	return room, false, nil
}

func (m *Manager) PrepareGame(request *protocol.PrepareGameRequest) (*Room, []protocol.ReservationCode, error) {
	return m.PrepareGameWithState(request.GameType, request.Pause, request.Slots, nil)
}

// PrepareGameWithState creates a prepared room with one reserved slot per
// descriptor. An empty descriptor list means the default two slots.
// The room is indexed only once its reservations exist.
func (m *Manager) PrepareGameWithState(gameType string, paused bool, descriptors []protocol.SlotDescriptor, state *protocol.State) (*Room, []protocol.ReservationCode, error) {
	if len(descriptors) == 0 {
		descriptors = protocol.DefaultSlots()
	}

	m.creation.Lock()
	defer m.creation.Unlock()

	room, err := m.create(gameType, true)
	if err != nil {
		return nil, nil, err
	}

	codes, err := m.prepare(room, paused, descriptors, state)
	if err != nil {
		return nil, nil, err
	}

	m.add(room)
	m.mutex.Lock()
	for _, code := range codes {
		m.reservations[code] = room
	}
	m.mutex.Unlock()
	m.updateMetrics(func(metrics *Metrics) {
		metrics.ReservationsPending.Add(float64(len(codes)))
	})

	return room, codes, nil
}

// prepare applies the requested pause first, a slot that should be
// paused still pauses the room.
func (m *Manager) prepare(room *Room, paused bool, descriptors []protocol.SlotDescriptor, state *protocol.State) ([]protocol.ReservationCode, error) {
	room.setPaused(paused)
	err := room.OpenSlots(descriptors)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open slots")
	}
	if state != nil {
		err = room.LoadState(*state)
		if err != nil {
			return nil, err
		}
	}
	return room.ReserveAllSlots()
}

// JoinPreparedGame redeems a reservation code. A code works once.
func (m *Manager) JoinPreparedGame(client Client, code protocol.ReservationCode) (*Room, error) {
	m.mutex.Lock()
	room, ok := m.reservations[code]
	delete(m.reservations, code)
	m.mutex.Unlock()
	if !ok {
		return nil, ErrReservationNotFound
	}

	err := room.ClaimSlot(code, client)
	if err != nil {
		if !errors.Is(err, ErrReservationNotFound) {
			m.restoreReservation(room, code)
		}
		return nil, err
	}

	m.updateMetrics(func(metrics *Metrics) {
		metrics.ReservationsPending.Dec()
	})
	return room, nil
}

// restoreReservation reindexes a code whose holder left before the game started.
func (m *Manager) restoreReservation(room *Room, code protocol.ReservationCode) {
	m.mutex.Lock()
	if m.rooms[room.ID()] != room {
		m.mutex.Unlock()
		return
	}
	_, present := m.reservations[code]
	m.reservations[code] = room
	m.mutex.Unlock()

	if !present {
		m.updateMetrics(func(metrics *Metrics) {
			metrics.ReservationsPending.Inc()
		})
	}
}

// FreeReservation makes a code unusable.
func (m *Manager) FreeReservation(code protocol.ReservationCode) error {
	m.mutex.Lock()
	room, ok := m.reservations[code]
	delete(m.reservations, code)
	m.mutex.Unlock()

	if !ok || !room.ReleaseReservation(code) {
		return ErrReservationNotFound
	}

	m.updateMetrics(func(metrics *Metrics) {
		metrics.ReservationsPending.Dec()
	})
	m.logger.Info("reservation freed", zap.String("roomID", room.ID().String()))
	return nil
}

func (m *Manager) FindRoom(id protocol.RoomID) (*Room, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	room, ok := m.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// Remove drops the room and its reservations from the index.
func (m *Manager) Remove(room *Room) {
	m.mutex.Lock()
	if m.rooms[room.ID()] != room {
		m.mutex.Unlock()
		return
	}
	delete(m.rooms, room.ID())
	for i, id := range m.order {
		if id == room.ID() {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	pending := 0
	for code, r := range m.reservations {
		if r == room {
			delete(m.reservations, code)
			pending++
		}
	}
	m.mutex.Unlock()

	m.updateMetrics(func(metrics *Metrics) {
		metrics.ReservationsPending.Sub(float64(pending))
	})
	m.logger.Info("room removed", zap.String("roomID", room.ID().String()))
}

// Rooms returns the live rooms in creation order.
func (m *Manager) Rooms() []*Room {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	rooms := make([]*Room, 0, len(m.order))
	for _, id := range m.order {
		rooms = append(rooms, m.rooms[id])
	}
	return rooms
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// RemoveClient detaches a disconnected client from every room.
func (m *Manager) RemoveClient(client Client) {
	for _, room := range m.Rooms() {
		if room.RemoveClient(client) {
			m.logger.Debug("client removed from room",
				zap.String("clientID", client.ID()),
				zap.String("roomID", room.ID().String()))
		}
	}
}

func (m *Manager) updateMetrics(f func(metrics *Metrics)) {
	if m.metrics == nil {
		return
	}
	f(m.metrics)
	m.mutex.RLock()
	m.metrics.RoomsActive.Set(float64(len(m.rooms)))
	m.mutex.RUnlock()
}
