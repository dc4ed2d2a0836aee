package network

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/six78/gamelobby/internal/transport"
)

// Server accepts TCP connections and hands them to the lobby.
type Server struct {
	lobby    *Lobby
	listener *transport.Listener
	logger   *zap.Logger

	connections sync.WaitGroup
	stopOnce    sync.Once
	stopped     chan struct{}
}

func Listen(address string, lobby *Lobby, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	listener, err := transport.Listen(address)
	if err != nil {
		return nil, err
	}

	return &Server{
		lobby:    lobby,
		listener: listener,
		logger:   logger.Named("server"),
		stopped:  make(chan struct{}),
	}, nil
}

func (s *Server) Address() string {
	return s.listener.Address()
}

func (s *Server) Lobby() *Lobby {
	return s.lobby
}

// Run accepts connections until Stop is called.
func (s *Server) Run() error {
	s.logger.Info("listening", zap.String("address", s.Address()))
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stopped:
				return nil
			default:
			}
			return errors.Wrap(err, "failed to accept connection")
		}
		s.Handle(conn)
	}
}

// Handle serves a connection accepted elsewhere, like a WebSocket.
func (s *Server) Handle(conn transport.Connection) {
	s.connections.Add(1)
	go func() {
		defer s.connections.Done()
		s.lobby.Serve(conn)
	}()
}

// HandleBlocking serves a connection on the calling goroutine.
func (s *Server) HandleBlocking(conn transport.Connection) {
	s.connections.Add(1)
	defer s.connections.Done()
	s.lobby.Serve(conn)
}

func (s *Server) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.stopped)
		err = s.listener.Close()
		s.lobby.Close()
		s.connections.Wait()
		s.logger.Info("stopped")
	})
	return err
}
