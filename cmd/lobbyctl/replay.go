package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/six78/gamelobby/internal/config"
	"github.com/six78/gamelobby/internal/view"
	"github.com/six78/gamelobby/pkg/observer"
	"github.com/six78/gamelobby/pkg/storage"
)

var replayDir string

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Step through a saved game",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config.SetupFileLogger()

		replays := storage.NewLocalStorage(replayDir)
		err := replays.Initialize()
		if err != nil {
			return err
		}

		replay, err := replays.LoadReplay(args[0])
		if err != nil {
			return err
		}

		if view.Run(observer.NewReplay(replay, observer.WithLogger(config.Logger))) != 0 {
			return errors.New("viewer failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().StringVar(&replayDir, "replayDir", "", "Replay folder, user config folder when empty")
}
