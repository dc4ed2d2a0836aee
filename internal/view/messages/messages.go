package messages

import (
	"github.com/six78/gamelobby/pkg/observer"
)

type FatalErrorMessage struct {
	Err error
}

// UpdateMessage carries an observer snapshot into the bubbletea loop.
type UpdateMessage struct {
	Tag    observer.EventTag
	Update observer.Update
}
