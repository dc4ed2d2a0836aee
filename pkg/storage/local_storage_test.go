package storage

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shibukawa/configdir"
	"github.com/stretchr/testify/suite"

	"github.com/six78/gamelobby/internal/config"
	"github.com/six78/gamelobby/internal/testcommon"
	"github.com/six78/gamelobby/pkg/protocol"
)

func TestLocalStorage(t *testing.T) {
	suite.Run(t, &Suite{})
}

type Suite struct {
	testcommon.Suite
	storage  *LocalStorage
	tempPath string
}

func (s *Suite) SetupTest() {
	s.tempPath = s.T().TempDir()
	s.storage = NewLocalStorage(s.tempPath)
	s.Require().NotNil(s.storage)
	err := s.storage.Initialize()
	s.Require().NoError(err)
}

func (s *Suite) TestLocalPath() {
	localPath := s.T().TempDir()

	storage := NewLocalStorage(localPath)
	s.Require().NotNil(storage)

	err := storage.Initialize()
	s.Require().NoError(err)
	s.Require().NotNil(storage.folder)
	s.Require().Equal(localPath, storage.folder.Path)
	s.Require().DirExists(filepath.Join(localPath, replaysDirectory))
}

func (s *Suite) TestGlobalPath() {
	configDirs := configdir.New(config.VendorName, config.ApplicationName)
	folders := configDirs.QueryFolders(configdir.Global)
	s.Require().NotEmpty(folders)

	storage := NewLocalStorage("")
	err := storage.Initialize()
	s.Require().NoError(err)
	s.Require().NotNil(storage.folder)
	s.Require().Equal(folders[0].Path, storage.folder.Path)
}

func (s *Suite) fakeReplay() *Replay {
	replay := NewReplay(protocol.NewRoomID(), "minimal")
	for turn := 0; turn < 5; turn++ {
		state := s.FakeState(turn)
		state.GameType = "minimal"
		replay.AddState(state)
		if turn == 2 {
			replay.AddError(protocol.NewErrorMessage(protocol.ErrorCodeRuleViolation, gofakeit.Sentence(4)))
		}
	}
	replay.Result = &protocol.GameResult{
		Scores:  []protocol.PlayerScore{{Team: protocol.TeamOne, DisplayName: gofakeit.Username(), Values: []int{2, 9}}},
		Winners: []protocol.Team{protocol.TeamOne},
	}
	return replay
}

func (s *Suite) TestReplayRoundTrip() {
	replay := s.fakeReplay()

	path, err := s.storage.SaveReplay(replay)
	s.Require().NoError(err)
	s.Require().Equal(filepath.Join(s.tempPath, replaysDirectory, replay.RoomID.String()+".json"), path)

	loaded, err := s.storage.LoadReplay(path)
	s.Require().NoError(err)
	s.Require().Equal(replay, loaded)
	s.Require().Len(loaded.States(), 5)

	// relative to the storage folder
	loaded, err = s.storage.LoadReplay(replayFileName(replay.RoomID))
	s.Require().NoError(err)
	s.Require().Equal(replay.RoomID, loaded.RoomID)
}

func (s *Suite) TestSaveInvalidReplay() {
	_, err := s.storage.SaveReplay(nil)
	s.Require().Error(err)

	_, err = s.storage.SaveReplay(&Replay{})
	s.Require().Error(err)
}

func (s *Suite) TestLoadState() {
	replay := s.fakeReplay()
	path, err := s.storage.SaveReplay(replay)
	s.Require().NoError(err)

	state, err := s.storage.LoadState(path, "minimal", 0)
	s.Require().NoError(err)
	s.Require().Equal(0, state.Turn)

	state, err = s.storage.LoadState(path, "minimal", 3)
	s.Require().NoError(err)
	s.Require().Equal(replay.States()[3], *state)

	_, err = s.storage.LoadState(path, "minimal", 42)
	s.Require().ErrorIs(err, ErrStateNotFound)

	_, err = s.storage.LoadState(path, "chess", 0)
	s.Require().ErrorIs(err, ErrStateNotFound)
}

func (s *Suite) TestLoadMissingOrBroken() {
	_, err := s.storage.LoadReplay(filepath.Join(s.tempPath, "missing.json"))
	s.Require().Error(err)

	err = s.storage.folder.WriteFile("broken.json", []byte("{invalid json"))
	s.Require().NoError(err)
	_, err = s.storage.LoadReplay("broken.json")
	s.Require().Error(err)
}

func (s *Suite) TestReplayJSON() {
	replay := s.fakeReplay()
	payload, err := json.Marshal(replay)
	s.Require().NoError(err)

	var raw map[string]json.RawMessage
	s.Require().NoError(json.Unmarshal(payload, &raw))
	s.Require().Contains(raw, "frames")

	var frames []map[string]json.RawMessage
	s.Require().NoError(json.Unmarshal(raw["frames"], &frames))
	s.Require().Len(frames, 6)
	s.Require().JSONEq(`"memento"`, string(frames[0]["type"]))
	s.Require().JSONEq(`"error"`, string(frames[3]["type"]))
}
