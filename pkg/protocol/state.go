package protocol

import "encoding/json"

// State is a game snapshot as produced by a plugin.
// Data is opaque to the lobby; only the plugin and the renderers understand it.
type State struct {
	GameType    string          `json:"gameType"`
	Turn        int             `json:"turn"`
	CurrentTeam Team            `json:"currentTeam"`
	Data        json.RawMessage `json:"data"`
}

type SlotDescriptor struct {
	DisplayName    string `json:"displayName"`
	CanTimeout     bool   `json:"canTimeout"`
	ShouldBePaused bool   `json:"shouldBePaused"`
}

func DefaultSlots() []SlotDescriptor {
	return []SlotDescriptor{
		{DisplayName: "player1", CanTimeout: true},
		{DisplayName: "player2", CanTimeout: true},
	}
}
