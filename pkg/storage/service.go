package storage

import (
	"github.com/six78/gamelobby/pkg/protocol"
)

//go:generate mockgen -source=service.go -destination=mock/service.go

type Service interface {
	Initialize() error
	SaveReplay(replay *Replay) (string, error)
	LoadReplay(path string) (*Replay, error)
	LoadState(path string, gameType string, turn int) (*protocol.State, error)
}
