package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/six78/gamelobby/cmd/lobbyctl/demo"
	"github.com/six78/gamelobby/internal/config"
	"github.com/six78/gamelobby/internal/server/gaming"
	"github.com/six78/gamelobby/internal/server/network"
	"github.com/six78/gamelobby/internal/view"
	"github.com/six78/gamelobby/pkg/client"
	"github.com/six78/gamelobby/pkg/observer"
	"github.com/six78/gamelobby/pkg/plugin"
	"github.com/six78/gamelobby/pkg/plugin/minimal"
	"github.com/six78/gamelobby/pkg/protocol"
)

const demoAddress = "/ip4/127.0.0.1/tcp/0"

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a local server and watch two bots play",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config.SetupFileLogger()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		adminPassword := uuid.NewString()
		manager := gaming.NewManager(plugin.NewRegistry(minimal.New()), gaming.WithLogger(config.Logger))
		lobby := network.NewLobby(manager,
			network.WithLogger(config.Logger),
			network.WithPassword(adminPassword))

		server, err := network.Listen(demoAddress, lobby, config.Logger)
		if err != nil {
			return err
		}
		go func() { _ = server.Run() }()
		defer func() { _ = server.Stop() }()

		admin, err := client.Dial(ctx, server.Address(), client.WithLogger(config.Logger))
		if err != nil {
			return err
		}
		defer func() { _ = admin.Stop() }()
		admin.Start()

		err = admin.Authenticate(adminPassword)
		if err != nil {
			return err
		}

		prepared, err := admin.PrepareGameAndWait(ctx, &protocol.PrepareGameRequest{
			GameType: minimal.GameType,
			Slots:    protocol.DefaultSlots(),
			Pause:    true,
		})
		if err != nil {
			return err
		}

		game, err := observer.NewController(ctx, admin, prepared.RoomID, true, observer.WithLogger(config.Logger))
		if err != nil {
			return err
		}
		defer game.Detach()

		program := view.NewProgram(game)
		go demo.New(ctx, server.Address(), prepared, game, program).Routine()

		if view.RunProgram(program) != 0 {
			return errors.New("viewer failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
