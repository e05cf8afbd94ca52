package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/robalobadob/medicle/internal/library"
)

const msgInvalidAdd = "Please enter both illness name and symptoms."

func (a *app) libraryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "library",
		Aliases: []string{"lib"},
		Short:   "Manage the illness library",
	}
	cmd.AddCommand(a.libraryListCmd(), a.libraryAddCmd(), a.libraryRmCmd(), a.libraryClearCmd())
	return cmd
}

func (a *app) libraryListCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List illnesses with their positions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lib, kv, err := a.openLibrary(cmd.Context())
			if err != nil {
				return err
			}
			defer kv.Close()

			out := cmd.OutOrStdout()
			entries := lib.Entries()
			if asJSON {
				b, _ := json.MarshalIndent(entries, "", "  ")
				fmt.Fprintln(out, string(b))
				return nil
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "The library is empty.")
				return nil
			}
			for i, e := range entries {
				fmt.Fprintf(out, "%d. %s: %s\n", i, e.Name, e.Symptoms)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the library as JSON")
	return cmd
}

func (a *app) libraryAddCmd() *cobra.Command {
	var name, symptoms string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an illness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lib, kv, err := a.openLibrary(cmd.Context())
			if err != nil {
				return err
			}
			defer kv.Close()

			rec, err := lib.Add(cmd.Context(), name, symptoms)
			if errors.Is(err, library.ErrMissingName) || errors.Is(err, library.ErrMissingSymptoms) {
				fmt.Fprintln(cmd.ErrOrStderr(), msgInvalidAdd)
				return err
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%d symptoms)\n", rec.Name, len(rec.Symptoms))
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Illness name")
	cmd.Flags().StringVarP(&symptoms, "symptoms", "s", "", "Comma-separated symptoms, in reveal order")
	return cmd
}

func (a *app) libraryRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm INDEX",
		Short: "Remove the illness at a position (see list)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[0])
			}

			lib, kv, err := a.openLibrary(cmd.Context())
			if err != nil {
				return err
			}
			defer kv.Close()

			name := ""
			if recs := lib.Records(); index >= 0 && index < len(recs) {
				name = recs[index].Name
			}
			if err := lib.Remove(cmd.Context(), index); err != nil {
				if errors.Is(err, library.ErrNoSuchRecord) {
					return fmt.Errorf("no illness at position %d", index)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", name)
			return nil
		},
	}
}

func (a *app) libraryClearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every illness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if !yes {
				fmt.Fprint(out, "Are you sure you want to clear the entire library? [y/N] ")
				var answer string
				_, _ = fmt.Fscanln(cmd.InOrStdin(), &answer)
				if !isYes(answer) {
					fmt.Fprintln(out, "Cancelled.")
					return nil
				}
			}

			lib, kv, err := a.openLibrary(cmd.Context())
			if err != nil {
				return err
			}
			defer kv.Close()

			if err := lib.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(out, "Library cleared.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
