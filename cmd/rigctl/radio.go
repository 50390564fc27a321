package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dougsko/rigd/pkg/client"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon and radio status",
	Args:  cobra.NoArgs,
	RunE:  runWithClient(status),
}

var freqCmd = &cobra.Command{
	Use:   "freq [hz]",
	Short: "Get or set the frequency",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWithClient(freq),
}

var modeCmd = &cobra.Command{
	Use:   "mode [mode [width]]",
	Short: "Get or set the mode and passband",
	Args:  cobra.MaximumNArgs(2),
	RunE:  runWithClient(mode),
}

var vfoCmd = &cobra.Command{
	Use:   "vfo [vfo]",
	Short: "Get or select the VFO",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWithClient(vfo),
}

var pttCmd = &cobra.Command{
	Use:   "ptt [on|off]",
	Short: "Get or key the transmitter",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWithClient(ptt),
}

var levelCmd = &cobra.Command{
	Use:   "level <name> [value]",
	Short: "Get or set a level such as AF, RFPOWER or AGC",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runWithClient(level),
}

var funcCmd = &cobra.Command{
	Use:   "func <name> [on|off]",
	Short: "Get or switch a function such as NB or VOX",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runWithClient(function),
}

var splitCmd = &cobra.Command{
	Use:   "split [on|off [txvfo]]",
	Short: "Get or set split operation",
	Args:  cobra.MaximumNArgs(2),
	RunE:  runWithClient(split),
}

var splitFreqCmd = &cobra.Command{
	Use:   "splitfreq <hz>",
	Short: "Set the transmit frequency used in split",
	Args:  cobra.ExactArgs(1),
	RunE:  runWithClient(splitFreq),
}

var powerCmd = &cobra.Command{
	Use:   "power [on|off|standby]",
	Short: "Get or set the power state",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWithClient(power),
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the radio's identification string",
	Args:  cobra.NoArgs,
	RunE:  runWithClient(info),
}

var sendCmd = &cobra.Command{
	Use:   "send <command>",
	Short: "Send a raw protocol line, e.g. 'LEVEL:AF:0.5'",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWithClient(send),
}

func init() {
	rootCmd.AddCommand(statusCmd, freqCmd, modeCmd, vfoCmd, pttCmd, levelCmd,
		funcCmd, splitCmd, splitFreqCmd, powerCmd, infoCmd, sendCmd)
}

func status(c *client.SocketClient, cmd *cobra.Command, _ []string) error {
	s, err := c.GetStatus()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Model:     %d (%s)\n", s.Model, s.ModelName)
	fmt.Fprintf(out, "Device:    %s\n", s.Device)
	fmt.Fprintf(out, "Connected: %t\n", s.Connected)
	fmt.Fprintf(out, "Frequency: %d Hz\n", s.Frequency)
	fmt.Fprintf(out, "Mode:      %s %d Hz\n", s.Mode, s.Width)
	if s.VFO != "" {
		fmt.Fprintf(out, "VFO:       %s\n", s.VFO)
	}
	fmt.Fprintf(out, "PTT:       %s\n", onOff(s.PTT))
	fmt.Fprintf(out, "Session:   %s\n", s.Session)
	fmt.Fprintf(out, "Uptime:    %s (rigd %s)\n", s.Uptime, s.Version)
	return nil
}

func freq(c *client.SocketClient, cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		hz, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid frequency %q", args[0])
		}
		if err := c.SetFrequency(hz); err != nil {
			return err
		}
	}
	hz, err := c.GetFrequency()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hz)
	return nil
}

func mode(c *client.SocketClient, cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		width := 0
		if len(args) == 2 {
			w, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid width %q", args[1])
			}
			width = w
		}
		if err := c.SetMode(args[0], width); err != nil {
			return err
		}
	}
	m, width, err := c.GetMode()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", m, width)
	return nil
}

func vfo(c *client.SocketClient, cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		if err := c.SetVFO(args[0]); err != nil {
			return err
		}
	}
	v, err := c.GetVFO()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), v)
	return nil
}

func ptt(c *client.SocketClient, cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		on, err := parseOnOff(args[0])
		if err != nil {
			return err
		}
		if err := c.SetPTT(on); err != nil {
			return err
		}
	}
	on, err := c.GetPTT()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), onOff(on))
	return nil
}

func level(c *client.SocketClient, cmd *cobra.Command, args []string) error {
	name := strings.ToUpper(args[0])
	if len(args) == 2 {
		if err := c.SetLevel(name, args[1]); err != nil {
			return err
		}
	}
	v, err := c.GetLevel(name)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", name, strconv.FormatFloat(v, 'f', -1, 64))
	return nil
}

func function(c *client.SocketClient, cmd *cobra.Command, args []string) error {
	name := strings.ToUpper(args[0])
	if len(args) == 2 {
		on, err := parseOnOff(args[1])
		if err != nil {
			return err
		}
		if err := c.SetFunc(name, on); err != nil {
			return err
		}
	}
	on, err := c.GetFunc(name)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", name, onOff(on))
	return nil
}

func split(c *client.SocketClient, cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		on, err := parseOnOff(args[0])
		if err != nil {
			return err
		}
		txVFO := ""
		if len(args) == 2 {
			txVFO = args[1]
		}
		if err := c.SetSplit(on, txVFO); err != nil {
			return err
		}
	}
	on, txVFO, err := c.GetSplit()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", onOff(on), txVFO)
	return nil
}

func splitFreq(c *client.SocketClient, cmd *cobra.Command, args []string) error {
	hz, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid frequency %q", args[0])
	}
	if err := c.SetSplitFrequency(hz); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hz)
	return nil
}

func power(c *client.SocketClient, cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		if err := c.SetPower(args[0]); err != nil {
			return err
		}
	}
	state, err := c.GetPower()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), state)
	return nil
}

func info(c *client.SocketClient, cmd *cobra.Command, _ []string) error {
	s, err := c.GetInfo()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), s)
	return nil
}

func send(c *client.SocketClient, cmd *cobra.Command, args []string) error {
	resp, err := c.SendCommand(strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp.String())
	return resp.Err()
}
