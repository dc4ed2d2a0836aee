package demo

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/six78/gamelobby/internal/config"
	"github.com/six78/gamelobby/internal/view/components/shortcutsview"
	"github.com/six78/gamelobby/pkg/client"
	"github.com/six78/gamelobby/pkg/observer"
	"github.com/six78/gamelobby/pkg/plugin/minimal"
	"github.com/six78/gamelobby/pkg/protocol"
)

// Demo plays a minimal game between two bots and drives the viewer
// with scripted key presses.
type Demo struct {
	ctx     context.Context
	address string
	roomID  protocol.RoomID
	codes   []protocol.ReservationCode
	state   *observer.Subscription
	program *tea.Program
	keys    shortcutsview.KeyMap
	logger  *zap.Logger

	bots []*bot
}

func New(ctx context.Context, address string, response *protocol.GamePreparedResponse, game observer.Game, program *tea.Program) *Demo {
	return &Demo{
		ctx:     ctx,
		address: address,
		roomID:  response.RoomID,
		codes:   response.Reservations,
		state:   game.Subscribe(),
		program: program,
		keys:    shortcutsview.DefaultKeyMap(),
		logger:  config.Logger.Named("demo"),
	}
}

func (d *Demo) Stop() {
	d.logger.Info("stopping")

	for _, b := range d.bots {
		_ = b.lobby.Stop()
	}
}

func (d *Demo) Routine() {
	defer d.Stop()

	d.logger.Info("started")

	// TODO: wait for the program to start
	time.Sleep(2 * time.Second)

	names := []string{"Alice", "Bob"}
	for i, name := range names {
		b, err := d.createBot(name, d.codes[i])
		if err != nil {
			d.logger.Error("failed to create bot", zap.Error(err))
			return
		}
		d.bots = append(d.bots, b)
	}

	err := d.waitForCondition(func(update observer.Update) bool {
		return update.Len > 0
	})
	if err != nil {
		d.logger.Error("failed to wait for the game to start", zap.Error(err))
		return
	}
	d.logger.Info("game started")
	time.Sleep(time.Second)

	// Step through the first moves while paused
	for i := 0; i < 3; i++ {
		d.sendShortcut(d.keys.Next)
		err = d.waitForCondition(func(update observer.Update) bool {
			return update.Len > i+1 && update.Position == update.Len-1
		})
		if err != nil {
			d.logger.Error("failed to wait for step", zap.Error(err))
			return
		}
		time.Sleep(700 * time.Millisecond)
	}

	// Let the bots finish the game
	d.sendShortcut(d.keys.Pause)
	d.logger.Info("game resumed")

	err = d.waitForCondition(func(update observer.Update) bool {
		return update.GameOver
	})
	if err != nil {
		d.logger.Error("failed to wait for game over", zap.Error(err))
		return
	}
	d.logger.Info("game over")
	time.Sleep(2 * time.Second)

	// Look back at the game
	d.sendShortcut(d.keys.First)
	time.Sleep(time.Second)
	for i := 0; i < 4; i++ {
		d.sendShortcut(d.keys.Next)
		time.Sleep(300 * time.Millisecond)
	}
	d.sendShortcut(d.keys.Last)
	time.Sleep(3 * time.Second)

	d.logger.Info("finished")
}

func (d *Demo) sendShortcut(binding key.Binding) {
	k := binding.Keys()[0]
	switch k {
	case "left":
		d.program.Send(tea.KeyMsg{Type: tea.KeyLeft})
	case "right":
		d.program.Send(tea.KeyMsg{Type: tea.KeyRight})
	case "home":
		d.program.Send(tea.KeyMsg{Type: tea.KeyHome})
	case "end":
		d.program.Send(tea.KeyMsg{Type: tea.KeyEnd})
	case " ":
		d.program.Send(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	default:
		d.program.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	}
}

func (d *Demo) createBot(name string, code protocol.ReservationCode) (*bot, error) {
	logger := config.Logger.Named(strings.ToLower(name))

	lobby, err := client.Dial(d.ctx, d.address, client.WithLogger(logger))
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect bot")
	}

	b := &bot{
		lobby:  lobby,
		logger: logger,
	}
	lobby.AddLobbyListener(b)
	lobby.Start()

	ctx, cancel := context.WithTimeout(d.ctx, 10*time.Second)
	defer cancel()

	response, err := lobby.JoinPreparedGameAndWait(ctx, code)
	if err != nil {
		_ = lobby.Stop()
		return nil, errors.Wrap(err, "failed to join room")
	}
	b.roomID = response.RoomID

	logger.Info("joined", zap.String("roomID", b.roomID.String()))
	return b, nil
}

func (d *Demo) waitForCondition(condition func(update observer.Update) bool) error {
	timeout := time.After(30 * time.Second)
	for {
		select {
		case event, ok := <-d.state.Events:
			if !ok {
				return errors.New("observer closed")
			}
			if condition(event.Update) {
				return nil
			}
		case <-timeout:
			return errors.New("timeout waiting for condition")
		case <-d.ctx.Done():
			return d.ctx.Err()
		}
	}
}

// bot answers every move request with a random pick.
type bot struct {
	client.NopLobbyListener
	lobby  *client.LobbyClient
	roomID protocol.RoomID
	logger *zap.Logger
}

func (b *bot) OnRoomMessage(roomID protocol.RoomID, message protocol.Message) {
	if _, ok := message.(*protocol.MoveRequest); !ok {
		return
	}

	go func() {
		// Random delay to look like someone is thinking
		time.Sleep(time.Duration(300+rand.Intn(700)) * time.Millisecond)

		pick := minimal.MinPick + rand.Intn(minimal.MaxPick-minimal.MinPick+1)
		err := b.lobby.SendMessageToRoom(roomID, &protocol.Move{Data: minimal.NewMove(pick)})
		if err != nil {
			b.logger.Error("failed to send move", zap.Error(err))
		}
	}()
}
