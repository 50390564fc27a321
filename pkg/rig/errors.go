package rig

import (
	"errors"

	"github.com/dougsko/rigd/pkg/transport"
)

// Error taxonomy shared by every backend. Callers match with errors.Is.
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnsupported        = errors.New("not supported")
	ErrTimeout            = transport.ErrTimeout
	ErrMalformed          = errors.New("malformed reply")
	ErrRejected           = errors.New("command rejected by radio")
	ErrIO                 = transport.ErrIO
	ErrDuplicateModel     = errors.New("duplicate model")
	ErrBackendUnavailable = errors.New("backend unavailable")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrInvalidArgument, "invalid_argument"},
	{ErrUnsupported, "unsupported"},
	{ErrTimeout, "timeout"},
	{ErrMalformed, "malformed"},
	{ErrRejected, "rejected"},
	{ErrIO, "io_error"},
	{ErrDuplicateModel, "duplicate_model"},
	{ErrBackendUnavailable, "backend_unavailable"},
}

// Kind returns the stable taxonomy name of err: "ok" for nil and
// "unknown" for errors outside the taxonomy.
func Kind(err error) string {
	if err == nil {
		return "ok"
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "unknown"
}

// ErrorOfKind returns the sentinel named by a Kind result, or nil.
func ErrorOfKind(name string) error {
	for _, k := range kinds {
		if k.name == name {
			return k.err
		}
	}
	return nil
}
