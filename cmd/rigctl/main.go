// Command rigctl drives a running rigd over its control socket and
// offers a few local tools that work without the daemon.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dougsko/rigd/pkg/client"
	"github.com/dougsko/rigd/pkg/verbose"
)

var rootFlags = struct {
	socket  string
	timeout time.Duration
	verbose bool
}{}

var rootCmd = &cobra.Command{
	Use:           "rigctl",
	Short:         "Control a radio through the rigd daemon.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		verbose.SetEnabled(rootFlags.verbose)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootFlags.socket, "socket", "s", "/tmp/rigd.sock", "rigd control socket")
	rootCmd.PersistentFlags().DurationVar(&rootFlags.timeout, "timeout", 5*time.Second, "time to wait for a reply")
	rootCmd.PersistentFlags().BoolVarP(&rootFlags.verbose, "verbose", "v", false, "dump CI-V frames exchanged by local commands")
}

func newClient() *client.SocketClient {
	c := client.NewSocketClient(rootFlags.socket)
	c.SetTimeout(rootFlags.timeout)
	return c
}

// runWithClient hands f a client for the daemon socket
func runWithClient(f func(*client.SocketClient, *cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return f(newClient(), cmd, args)
	}
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "1", "true", "yes":
		return true, nil
	case "off", "0", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
