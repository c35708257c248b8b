package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"pkt.systems/prettyx"

	"pkt.systems/vgabios"
)

type modeSummary struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Depth   int    `json:"depth,omitempty"`
	Columns int    `json:"columns"`
	Rows    int    `json:"rows"`
	VBE     bool   `json:"vbe"`
	Name    string `json:"name"`
}

// NewModesCommand builds the modes command.
func NewModesCommand() *cobra.Command {
	var vbeOnly bool
	cmd := &cobra.Command{
		Use:   "modes",
		Short: "List supported video modes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			modes := vgabios.Modes()
			resp := make([]modeSummary, 0, len(modes))
			for _, m := range modes {
				if vbeOnly && !m.ID.VBE() {
					continue
				}
				summary := modeSummary{
					ID:      m.ID.String(),
					Kind:    m.Kind.String(),
					Columns: m.Columns(),
					Rows:    m.Rows(),
					VBE:     m.ID.VBE(),
					Name:    m.Name,
				}
				if !m.Text() {
					summary.Width, summary.Height, summary.Depth = m.Width, m.Height, m.Depth
				}
				resp = append(resp, summary)
			}
			data, err := json.Marshal(resp)
			if err != nil {
				return err
			}
			return prettyx.PrettyTo(cmd.OutOrStdout(), data, prettyx.DefaultOptions)
		},
	}
	cmd.Flags().BoolVar(&vbeOnly, "vbe", false, "list only VBE modes")
	return cmd
}
