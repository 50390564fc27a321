package civ

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dougsko/rigd/pkg/rig"
)

// Configuration tokens understood by SetConf and GetConf.
const (
	ConfCIVAddr = "civaddr"
	ConfMode731 = "mode731"
	ConfNoXchg  = "no_xchg"
)

// ConfTokens lists the tokens in display order.
var ConfTokens = []string{ConfCIVAddr, ConfMode731, ConfNoXchg}

func parseAddr(val string) (byte, error) {
	s := strings.TrimSpace(val)
	var (
		v   uint64
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = strconv.ParseUint(s[2:], 16, 8)
	} else {
		v, err = strconv.ParseUint(s, 10, 8)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: CI-V address %q", rig.ErrInvalidArgument, val)
	}
	return byte(v), nil
}

func (b *Backend) SetConf(token, val string) error {
	switch token {
	case ConfCIVAddr:
		addr, err := parseAddr(val)
		if err != nil {
			return err
		}
		b.addr = addr
	case ConfMode731:
		on, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", rig.ErrInvalidArgument, token, val)
		}
		b.legacy = on
	case ConfNoXchg:
		on, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", rig.ErrInvalidArgument, token, val)
		}
		b.noXchg = on
	default:
		return fmt.Errorf("%w: unknown token %q", rig.ErrInvalidArgument, token)
	}
	return nil
}

func (b *Backend) GetConf(token string) (string, error) {
	switch token {
	case ConfCIVAddr:
		return fmt.Sprintf("0x%02x", b.addr), nil
	case ConfMode731:
		return strconv.FormatBool(b.legacy), nil
	case ConfNoXchg:
		return strconv.FormatBool(b.noXchg), nil
	}
	return "", fmt.Errorf("%w: unknown token %q", rig.ErrInvalidArgument, token)
}
