package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/italypaleale/faultkit/severity"
)

// NewDecodeCommand returns the command that prints the flags and log level of error codes.
func NewDecodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <code>...",
		Short: "Print the flags and the log level of error codes",
		Long: `Print the flags and the log level of error codes.

Codes can be flag names (E_WARNING), decimal numbers (2), or hex numbers (0x200).`,
		Args: cobra.MinimumNArgs(1),
		RunE: runDecode,
	}
}

func runDecode(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "CODE\tFLAGS\tLEVEL")

	for _, arg := range args {
		code, err := severity.ParseCode(arg)
		if err != nil {
			return fmt.Errorf("invalid code %q: %w", arg, err)
		}

		flags := strings.Join(severity.Describe(code), "|")
		if flags == "" {
			flags = "-"
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", code, flags, severity.Classify(code))
	}

	return w.Flush()
}
