package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/dougsko/rigd/pkg/client"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive session with the daemon",
	Args:  cobra.NoArgs,
	RunE:  runWithClient(shell),
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

// shellLine turns what the user typed into a protocol line. Words are
// joined with colons so "mode usb 2400" becomes "MODE:usb:2400"; input
// already in protocol form is sent unchanged.
func shellLine(input string) string {
	input = strings.TrimSpace(input)
	if input == "" || strings.Contains(input, ":") {
		return input
	}
	fields := strings.Fields(input)
	fields[0] = strings.ToUpper(fields[0])
	return strings.Join(fields, ":")
}

func printShellHelp(w io.Writer) {
	fmt.Fprintln(w, "Commands are sent to rigd; words may be separated by spaces or colons.")
	fmt.Fprintln(w, "  status | ping | info")
	fmt.Fprintln(w, "  freq [hz]            mode [mode [width]]     vfo [vfo]")
	fmt.Fprintln(w, "  ptt [0|1]            level <name> [value]    func <name> [0|1]")
	fmt.Fprintln(w, "  split [0|1 [txvfo]]  splitfreq [hz]          ts [hz]   rit [hz]")
	fmt.Fprintln(w, "  power [on|off]       conf <token> [value]    events [limit]")
	fmt.Fprintln(w, "  models [family]")
	fmt.Fprintln(w, "  help                 exit")
}

func shell(c *client.SocketClient, _ *cobra.Command, _ []string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "rig> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	out := rl.Stdout()
	if !c.IsConnected() {
		fmt.Fprintf(out, "warning: rigd is not answering on %s\n", rootFlags.socket)
	}
	printShellHelp(out)

	for {
		input, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			return nil
		}

		switch strings.ToLower(strings.TrimSpace(input)) {
		case "":
			continue
		case "help", "?":
			printShellHelp(out)
			continue
		case "exit", "quit", "q":
			return nil
		}

		resp, err := c.SendCommand(shellLine(input))
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if !resp.Success {
			fmt.Fprintf(out, "error (%s): %s\n", resp.Kind, resp.Error)
			continue
		}
		fmt.Fprintln(out, resp.String())
	}
}
