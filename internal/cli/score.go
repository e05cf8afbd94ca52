package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) scoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score",
		Short: "Print the saved score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lib, kv, err := a.openLibrary(cmd.Context())
			if err != nil {
				return err
			}
			defer kv.Close()

			fmt.Fprintln(cmd.OutOrStdout(), lib.Score())
			return nil
		},
	}
}
