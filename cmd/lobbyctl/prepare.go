package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/six78/gamelobby/internal/config"
	"github.com/six78/gamelobby/pkg/protocol"
)

var preparePaused bool
var prepareSlots []string

var prepareCmd = &cobra.Command{
	Use:   "prepare <game type>",
	Short: "Prepare a room and print a reservation code for every slot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config.SetupLogger()

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()

		lobby, err := connect(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = lobby.Stop() }()

		response, err := lobby.PrepareGameAndWait(ctx, &protocol.PrepareGameRequest{
			GameType: args[0],
			Slots:    slotDescriptors(prepareSlots),
			Pause:    preparePaused,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "room: %s\n", response.RoomID)
		for i, code := range response.Reservations {
			fmt.Fprintf(out, "slot %d: %s\n", i+1, code)
		}
		return nil
	},
}

func slotDescriptors(names []string) []protocol.SlotDescriptor {
	if len(names) == 0 {
		return protocol.DefaultSlots()
	}
	slots := make([]protocol.SlotDescriptor, 0, len(names))
	for _, name := range names {
		slots = append(slots, protocol.SlotDescriptor{
			DisplayName: name,
			CanTimeout:  true,
		})
	}
	return slots
}

func init() {
	rootCmd.AddCommand(prepareCmd)
	prepareCmd.Flags().BoolVar(&preparePaused, "paused", false, "Start the game paused")
	prepareCmd.Flags().StringArrayVar(&prepareSlots, "slot", nil, "Slot display name, repeat for every slot")
}
