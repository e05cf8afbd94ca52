package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robalobadob/medicle/internal/game"
)

const quitCommand = ":q"

func (a *app) playCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play rounds in the terminal",
		Long:  "Play rounds in the terminal. Type a diagnosis and press enter; type " + quitCommand + " to quit.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lib, kv, err := a.openLibrary(cmd.Context())
			if err != nil {
				return err
			}
			defer kv.Close()
			return play(cmd, game.NewSession(lib))
		},
	}
}

// play runs rounds until the player quits, declines another round, or
// input ends.
func play(cmd *cobra.Command, session *game.Session) error {
	ctx := cmd.Context()
	in := bufio.NewScanner(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	for {
		v, err := session.Start(ctx)
		if errors.Is(err, game.ErrEmptyLibrary) {
			fmt.Fprintln(out, v.Message)
			return nil
		}
		if err != nil {
			return err
		}
		printSymptoms(out, v)

		for v.CanGuess() {
			fmt.Fprint(out, "Your diagnosis: ")
			if !in.Scan() {
				fmt.Fprintln(out)
				return in.Err()
			}
			text := in.Text()
			if strings.TrimSpace(text) == quitCommand {
				return nil
			}
			if v, err = session.Guess(ctx, v.RoundID, text); err != nil {
				return err
			}
			fmt.Fprintln(out, v.Message)
			if v.CanGuess() {
				printSymptoms(out, v)
			}
		}

		fmt.Fprintf(out, "Score: %d\n", v.Score)
		fmt.Fprint(out, "Play again? [y/N] ")
		if !in.Scan() || !isYes(in.Text()) {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Final score: %d\n", v.Score)
			return in.Err()
		}
	}
}

func printSymptoms(out io.Writer, v game.View) {
	fmt.Fprintln(out, "Symptoms:")
	for i, s := range v.Symptoms {
		fmt.Fprintf(out, "  %d. %s\n", i+1, s)
	}
}

func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true
	}
	return false
}
