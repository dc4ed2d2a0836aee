package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/six78/gamelobby/internal/config"
	"github.com/six78/gamelobby/internal/view"
	"github.com/six78/gamelobby/pkg/client"
	"github.com/six78/gamelobby/pkg/observer"
	"github.com/six78/gamelobby/pkg/protocol"
)

var observeControl bool
var observePaused bool

var observeCmd = &cobra.Command{
	Use:   "observe <room id>",
	Short: "Watch a running game, needs --password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config.SetupFileLogger()

		roomID, err := protocol.ParseRoomID(args[0])
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()

		lobby, err := connect(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = lobby.Stop() }()

		game, err := createGame(ctx, lobby, roomID)
		if err != nil {
			return errors.Wrap(err, "failed to observe room")
		}

		if view.Run(game) != 0 {
			return errors.New("viewer failed")
		}
		return nil
	},
}

func createGame(ctx context.Context, lobby *client.LobbyClient, roomID protocol.RoomID) (observer.Game, error) {
	opts := []observer.Option{observer.WithLogger(config.Logger)}
	if observeControl {
		return observer.NewController(ctx, lobby, roomID, observePaused, opts...)
	}
	return observer.Attach(ctx, lobby, roomID, observePaused, opts...)
}

func init() {
	rootCmd.AddCommand(observeCmd)
	observeCmd.Flags().BoolVar(&observeControl, "control", false, "Pause and step the game on the server")
	observeCmd.Flags().BoolVar(&observePaused, "paused", false, "Don't follow new states")
}
