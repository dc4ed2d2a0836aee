package main

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/six78/gamelobby/internal/config"
	"github.com/six78/gamelobby/internal/version"
	"github.com/six78/gamelobby/pkg/client"
)

const requestTimeout = 10 * time.Second

var address string
var password string
var debug bool

var rootCmd = &cobra.Command{
	Use:     "lobbyctl",
	Short:   "Administer and watch games on a lobby server",
	Version: version.Version(),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.SetDebug(debug)
	},
	SilenceUsage: true,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&address, "address", config.DefaultAddress, "Lobby server multiaddress")
	rootCmd.PersistentFlags().StringVar(&password, "password", os.Getenv("LOBBY_PASSWORD"), "Administrator password")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Show debug info")
}

// connect dials the lobby and authenticates when a password is given.
// Authentication has no response, the server handles frames in order.
func connect(ctx context.Context) (*client.LobbyClient, error) {
	lobby, err := client.Dial(ctx, address, client.WithLogger(config.Logger))
	if err != nil {
		return nil, err
	}
	lobby.Start()

	if password == "" {
		return lobby, nil
	}

	err = lobby.Authenticate(password)
	if err != nil {
		_ = lobby.Stop()
		return nil, errors.Wrap(err, "failed to authenticate")
	}
	return lobby, nil
}
