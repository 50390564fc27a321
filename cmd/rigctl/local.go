package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dougsko/rigd/pkg/civ"
	_ "github.com/dougsko/rigd/pkg/dummy"
	"github.com/dougsko/rigd/pkg/rig"
	"github.com/dougsko/rigd/pkg/trace"
)

var modelsFlags = struct {
	family string
}{}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the radio models this build supports",
	Args:  cobra.NoArgs,
	RunE:  listModels,
}

var probeCmd = &cobra.Command{
	Use:   "probe <device>",
	Short: "Scan a CI-V bus for radios",
	Args:  cobra.ExactArgs(1),
	RunE:  probe,
}

var traceFlags = struct {
	session string
	dir     string
	since   time.Duration
	hex     bool
}{}

var traceCmd = &cobra.Command{
	Use:   "trace <file>",
	Short: "Print a frame trace written by rigd",
	Args:  cobra.ExactArgs(1),
	RunE:  showTrace,
}

func init() {
	modelsCmd.Flags().StringVar(&modelsFlags.family, "family", "", "only list models of this backend family")
	traceCmd.Flags().StringVar(&traceFlags.session, "session", "", "only frames of this session")
	traceCmd.Flags().StringVar(&traceFlags.dir, "dir", "", "only frames in this direction (tx, echo, rx, event)")
	traceCmd.Flags().DurationVar(&traceFlags.since, "since", 0, "only frames newer than this")
	traceCmd.Flags().BoolVar(&traceFlags.hex, "hex", false, "print bare hex frames")
	rootCmd.AddCommand(modelsCmd, probeCmd, traceCmd)
}

func listModels(cmd *cobra.Command, _ []string) error {
	reg := rig.NewRegistry()
	if err := reg.LoadAll(); err != nil {
		return err
	}

	if modelsFlags.family != "" {
		var names []string
		known := false
		for _, f := range reg.Families() {
			name := reg.FamilyName(f)
			names = append(names, name)
			known = known || strings.EqualFold(name, modelsFlags.family)
		}
		if !known {
			return fmt.Errorf("unknown family %q (known: %s)", modelsFlags.family, strings.Join(names, ", "))
		}
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tMFG\tNAME\tVERSION\tSTATUS")
	reg.ForEach(func(caps *rig.Caps) bool {
		fam := reg.FamilyName(caps.Model.Family())
		if modelsFlags.family != "" && !strings.EqualFold(fam, modelsFlags.family) {
			return true
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", caps.Model, caps.MfgName, caps.ModelName, caps.Version, caps.Status)
		return true
	})
	return w.Flush()
}

func probe(cmd *cobra.Command, args []string) error {
	results, err := civ.ProbeSerial(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintf(out, "no CI-V radios found on %s\n", args[0])
		return nil
	}
	for _, r := range results {
		name := r.Name
		if name == "" {
			name = "unknown"
		}
		if r.Model != rig.ModelNone {
			fmt.Fprintf(out, "0x%02x  %s (model %d) at %d baud\n", r.Addr, name, r.Model, r.Rate)
		} else {
			fmt.Fprintf(out, "0x%02x  %s (id 0x%02x) at %d baud\n", r.Addr, name, r.ID, r.Rate)
		}
	}
	return nil
}

func parseDirection(s string) (rig.Direction, error) {
	if s == "" {
		return 0, nil
	}
	for _, d := range []rig.Direction{rig.DirTx, rig.DirEcho, rig.DirRx, rig.DirEvent} {
		if strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

func showTrace(cmd *cobra.Command, args []string) error {
	dir, err := parseDirection(traceFlags.dir)
	if err != nil {
		return err
	}
	filter := trace.Filter{Session: traceFlags.session, Direction: dir}
	if traceFlags.since > 0 {
		filter.Since = time.Now().Add(-traceFlags.since)
	}

	records, err := trace.ReadFile(args[0], filter)
	out := cmd.OutOrStdout()
	for _, r := range records {
		if traceFlags.hex {
			fmt.Fprintln(out, r.Hex())
		} else {
			fmt.Fprintln(out, r.String())
		}
	}
	// a truncated tail still prints what could be read
	return err
}
