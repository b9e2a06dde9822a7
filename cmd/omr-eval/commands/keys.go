package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// keys <answer_key>: list the named sets of a key file.
func keysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys <answer_key>",
		Short: "List the answer sets in a key file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadKeys(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			sets := doc.Sets()
			if len(sets) == 0 {
				fmt.Fprintln(out, "no named sets; the key applies to every sheet")
				return nil
			}
			for _, s := range sets {
				fmt.Fprintln(out, s)
			}
			return nil
		},
	}
}
