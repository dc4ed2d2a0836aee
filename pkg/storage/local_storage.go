package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/shibukawa/configdir"
	"go.uber.org/zap"

	"github.com/six78/gamelobby/internal/config"
	"github.com/six78/gamelobby/pkg/protocol"
)

const (
	replaysDirectory = "replays"
)

var ErrStateNotFound = errors.New("state not found")

type LocalStorage struct {
	path   string
	folder *configdir.Config
	logger *zap.Logger
	mutex  *sync.RWMutex
}

// NewLocalStorage keeps files in path, or in the user config folder when path is empty.
func NewLocalStorage(path string) *LocalStorage {
	return &LocalStorage{
		path:   path,
		logger: config.Logger.Named("storage"),
		mutex:  &sync.RWMutex{},
	}
}

func (s *LocalStorage) Initialize() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.path != "" {
		s.folder = &configdir.Config{
			Path: s.path,
			Type: configdir.Local,
		}
	} else {
		configDirs := configdir.New(config.VendorName, config.ApplicationName)
		folders := configDirs.QueryFolders(configdir.Global)
		if len(folders) == 0 {
			return errors.New("no config folder available")
		}
		s.folder = folders[0]
	}

	err := os.MkdirAll(filepath.Join(s.folder.Path, replaysDirectory), 0770)
	if err != nil {
		return errors.Wrap(err, "failed to create replays folder")
	}

	s.logger.Info("storage initialized", zap.String("path", s.folder.Path))
	return nil
}

func (s *LocalStorage) SaveReplay(replay *Replay) (string, error) {
	if replay == nil || replay.RoomID.Empty() {
		return "", errors.New("replay has no room id")
	}

	replayJson, err := json.Marshal(replay)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal replay")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.folder == nil {
		return "", errors.New("storage not initialized")
	}

	fileName := replayFileName(replay.RoomID)
	err = s.folder.WriteFile(fileName, replayJson)
	if err != nil {
		return "", errors.Wrap(err, "failed to write replay")
	}

	return filepath.Join(s.folder.Path, fileName), nil
}

// LoadReplay reads a replay from any path, relative paths are looked up in the storage folder first.
func (s *LocalStorage) LoadReplay(path string) (*Replay, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var data []byte
	var err error
	if s.folder != nil && !filepath.IsAbs(path) && s.folder.Exists(path) {
		data, err = s.folder.ReadFile(path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read replay file")
	}

	var replay Replay
	err = json.Unmarshal(data, &replay)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal replay file")
	}

	return &replay, nil
}

// LoadState returns the state at the given turn, or the first state of
// the game type when turn is 0.
func (s *LocalStorage) LoadState(path string, gameType string, turn int) (*protocol.State, error) {
	replay, err := s.LoadReplay(path)
	if err != nil {
		return nil, err
	}

	for _, state := range replay.States() {
		if state.GameType != gameType {
			continue
		}
		if turn > 0 && state.Turn != turn {
			continue
		}
		return &state, nil
	}

	return nil, errors.Wrapf(ErrStateNotFound, "no %s state at turn %d", gameType, turn)
}

func replayFileName(roomID protocol.RoomID) string {
	return filepath.Join(replaysDirectory, roomID.String()+".json")
}
