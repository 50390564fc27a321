// Package trace records every CAT frame a handle exchanges as a stream of
// CBOR records.
//
// Each record carries the session id of the recorder that wrote it, so
// several daemon runs may append to one file and still be told apart.
package trace

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/dougsko/rigd/pkg/rig"
)

// Record is one traced frame. Integer keys keep files small.
type Record struct {
	Session   string        `cbor:"1,keyasint"`
	Seq       uint64        `cbor:"2,keyasint"`
	Timestamp time.Time     `cbor:"3,keyasint"`
	Direction rig.Direction `cbor:"4,keyasint"`
	Frame     []byte        `cbor:"5,keyasint"`
	Err       string        `cbor:"6,keyasint,omitempty"`
}

func (r Record) String() string {
	s := fmt.Sprintf("%s #%d %-5s % x", r.Timestamp.Format("15:04:05.000"), r.Seq, r.Direction, r.Frame)
	if r.Err != "" {
		s += " (" + r.Err + ")"
	}
	return s
}

// Hex returns the frame as a contiguous hex string.
func (r Record) Hex() string {
	return hex.EncodeToString(r.Frame)
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
		Time:        cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create trace CBOR encoder mode: %v", err))
	}
	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyQuiet,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create trace CBOR decoder mode: %v", err))
	}
}

// Recorder implements rig.FrameTracer. It is safe for concurrent use.
type Recorder struct {
	session string
	enc     *cbor.Encoder
	closer  io.Closer
	now     func() time.Time

	mu     sync.Mutex
	seq    uint64
	closed bool
	err    error
}

// NewRecorder writes records to w under a fresh session id.
func NewRecorder(w io.Writer) *Recorder {
	rec := &Recorder{
		session: uuid.NewString(),
		enc:     encMode.NewEncoder(w),
		now:     time.Now,
	}
	if c, ok := w.(io.Closer); ok {
		rec.closer = c
	}
	return rec
}

// OpenFile appends records to path, creating it if needed.
func OpenFile(path string) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	return NewRecorder(f), nil
}

// Session returns the id stamped on every record this recorder writes.
func (r *Recorder) Session() string {
	return r.session
}

// TraceFrame appends one record. Write failures are kept for Err and
// never reach the caller's transaction.
func (r *Recorder) TraceFrame(dir rig.Direction, frame []byte, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	r.seq++
	rec := Record{
		Session:   r.session,
		Seq:       r.seq,
		Timestamp: r.now(),
		Direction: dir,
		Frame:     append([]byte(nil), frame...),
	}
	if err != nil {
		rec.Err = err.Error()
	}
	if werr := r.enc.Encode(rec); werr != nil && r.err == nil {
		r.err = werr
	}
}

// Err returns the first write error, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Close stops recording and closes the underlying writer when it is a
// Closer. Calling Close twice is harmless.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// Filter selects records. Zero fields match everything.
type Filter struct {
	Session   string
	Direction rig.Direction
	Since     time.Time
}

func (f Filter) matches(rec Record) bool {
	if f.Session != "" && rec.Session != f.Session {
		return false
	}
	if f.Direction != 0 && rec.Direction != f.Direction {
		return false
	}
	if !f.Since.IsZero() && rec.Timestamp.Before(f.Since) {
		return false
	}
	return true
}

// ReadAll decodes every record in r that matches f.
func ReadAll(r io.Reader, f Filter) ([]Record, error) {
	dec := decMode.NewDecoder(r)
	var out []Record
	for {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			if err == io.EOF {
				return out, nil
			}
			return out, fmt.Errorf("%w: trace record %d: %v", rig.ErrMalformed, len(out)+1, err)
		}
		if f.matches(rec) {
			out = append(out, rec)
		}
	}
}

// ReadFile is ReadAll over a trace file.
func ReadFile(path string, f Filter) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer file.Close()
	return ReadAll(file, f)
}

var _ rig.FrameTracer = (*Recorder)(nil)

type tee []rig.FrameTracer

func (t tee) TraceFrame(dir rig.Direction, frame []byte, err error) {
	for _, tr := range t {
		tr.TraceFrame(dir, frame, err)
	}
}

// Tee returns a tracer that hands every frame to each non-nil tracer in turn.
func Tee(tracers ...rig.FrameTracer) rig.FrameTracer {
	var out tee
	for _, tr := range tracers {
		if tr != nil {
			out = append(out, tr)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return out
}
