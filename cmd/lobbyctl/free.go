package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/six78/gamelobby/internal/config"
	"github.com/six78/gamelobby/pkg/protocol"
)

var freeCmd = &cobra.Command{
	Use:   "free <reservation code>",
	Short: "Release an unused reservation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config.SetupLogger()

		code, err := protocol.ParseReservationCode(args[0])
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

		err = lobby.FreeReservation(code)
		if err != nil {
			return err
		}
		config.Logger.Info("reservation freed", zap.String("code", code.String()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(freeCmd)
}
