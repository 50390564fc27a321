// Package engine runs one radio session for the daemon: it owns the rig
// handle, serves the control socket and journals what the radio does.
package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	_ "github.com/dougsko/rigd/pkg/civ"
	"github.com/dougsko/rigd/pkg/config"
	_ "github.com/dougsko/rigd/pkg/dummy"
	"github.com/dougsko/rigd/pkg/logging"
	"github.com/dougsko/rigd/pkg/protocol"
	"github.com/dougsko/rigd/pkg/ptt"
	"github.com/dougsko/rigd/pkg/rig"
	"github.com/dougsko/rigd/pkg/storage"
	"github.com/dougsko/rigd/pkg/trace"
	"github.com/dougsko/rigd/pkg/transport"
	"github.com/dougsko/rigd/pkg/verbose"
)

// Version is reported by STATUS.
var Version = "0.3.0"

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry uses reg instead of a fresh registry.
func WithRegistry(reg *rig.Registry) Option {
	return func(e *Engine) { e.registry = reg }
}

// WithTransport uses t as the CAT port instead of opening radio.device.
func WithTransport(t transport.Transport) Option {
	return func(e *Engine) { e.port = t }
}

// WithLogger sets the engine and session logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine is the daemon core
type Engine struct {
	config     *config.Config
	socketPath string
	listener   net.Listener
	running    bool
	mutex      sync.RWMutex
	startTime  time.Time

	registry *rig.Registry
	handle   *rig.Handle
	port     transport.Transport
	store    *storage.EventStore
	recorder *trace.Recorder
	logger   *logging.Logger
	radioLog *logging.FieldLogger

	cancel context.CancelFunc
	wg     sync.WaitGroup

	// last known radio state
	frequency int64
	mode      string
	width     int
	pttOn     bool
	connected bool

	subMutex    sync.Mutex
	subscribers map[int]chan storage.RigEvent
	nextSub     int
}

// New creates an engine for cfg serving socketPath
func New(cfg *config.Config, socketPath string, opts ...Option) *Engine {
	e := &Engine{
		config:      cfg,
		socketPath:  socketPath,
		startTime:   time.Now(),
		subscribers: make(map[int]chan storage.RigEvent),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = rig.NewRegistry()
	}
	if e.logger == nil {
		e.logger = logging.GetGlobalLogger()
	}
	e.radioLog = e.logger.WithFields(nil)
	return e
}

// Start opens the radio, the journal and the control socket
func (e *Engine) Start() error {
	e.mutex.Lock()
	if e.running {
		e.mutex.Unlock()
		return fmt.Errorf("engine already running")
	}
	e.running = true
	e.mutex.Unlock()

	if err := e.start(); err != nil {
		e.Stop()
		return err
	}
	return nil
}

func (e *Engine) start() error {
	if e.config.Trace.File != "" {
		rec, err := trace.OpenFile(e.config.Trace.File)
		if err != nil {
			return err
		}
		e.recorder = rec
	}

	if err := e.openRadio(); err != nil {
		return fmt.Errorf("failed to open radio: %w", err)
	}

	if e.config.Storage.DatabasePath != "" {
		store, err := storage.NewEventStore(e.config.Storage.DatabasePath, e.config.Storage.MaxEvents)
		if err != nil {
			return err
		}
		e.store = store
		if err := store.OpenSession(e.handle.ID(), e.config.Radio.Model, e.config.Radio.Device); err != nil {
			return err
		}
	}

	os.Remove(e.socketPath)
	listener, err := net.Listen("unix", e.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create Unix socket: %w", err)
	}
	e.listener = listener

	if err := os.Chmod(e.socketPath, 0660); err != nil {
		e.logger.Warn("engine", "failed to set socket permissions", map[string]interface{}{"error": err.Error()})
	}
	e.logger.Info("engine", "listening", map[string]interface{}{"socket": e.socketPath})

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	e.wg.Add(2)
	go e.acceptConnections()
	go e.monitor(ctx)
	return nil
}

func serialConfig(cfg *config.Config, caps *rig.Caps) transport.SerialConfig {
	r := cfg.Radio
	sc := transport.SerialConfig{
		Device:   r.Device,
		BaudRate: r.BaudRate,
		DataBits: r.DataBits,
		StopBits: r.StopBits,
		Parity:   r.Parity,
		DTR:      lineState(r.DTR),
		RTS:      lineState(r.RTS),
	}
	if sc.BaudRate == 0 {
		sc.BaudRate = caps.SerialRateMax
	}
	return sc
}

func lineState(s string) *bool {
	var on bool
	switch strings.ToLower(s) {
	case "on", "high", "1":
		on = true
	case "off", "low", "0":
		on = false
	default:
		return nil
	}
	return &on
}

func (e *Engine) openRadio() error {
	model := rig.Model(e.config.Radio.Model)
	if err := e.registry.EnsureLoaded(model); err != nil {
		return err
	}
	caps, _ := e.registry.Lookup(model)

	if e.port == nil && caps.PortType != rig.PortNone && e.config.Radio.Device != "none" {
		timeout := caps.Timeout
		if e.config.Radio.TimeoutMs > 0 {
			timeout = time.Duration(e.config.Radio.TimeoutMs) * time.Millisecond
		}
		port, err := transport.Open(e.config.Radio.Device, serialConfig(e.config, caps), timeout)
		if err != nil {
			return err
		}
		e.port = port
	}

	opts := []rig.Option{
		rig.WithLogger(e.logger),
		rig.WithCallbacks(rig.Callbacks{Event: e.onRigEvent}),
	}
	r := e.config.Radio
	if r.TimeoutMs > 0 {
		opts = append(opts, rig.WithTimeout(time.Duration(r.TimeoutMs)*time.Millisecond))
	}
	if r.Retry > 0 {
		opts = append(opts, rig.WithRetry(r.Retry))
	}
	if r.WriteDelayMs > 0 {
		opts = append(opts, rig.WithWriteDelay(time.Duration(r.WriteDelayMs)*time.Millisecond))
	}
	if r.PostWriteDelayMs > 0 {
		opts = append(opts, rig.WithPostWriteDelay(time.Duration(r.PostWriteDelayMs)*time.Millisecond))
	}
	var tracers []rig.FrameTracer
	if e.recorder != nil {
		tracers = append(tracers, e.recorder)
	}
	if verbose.IsEnabled() {
		tracers = append(tracers, verbose.FrameTracer{})
	}
	if tr := trace.Tee(tracers...); tr != nil {
		opts = append(opts, rig.WithTracer(tr))
	}

	line, err := ptt.FromConfig(e.config, e.port)
	if err != nil {
		return err
	}
	if line != nil {
		opts = append(opts, rig.WithPTTLine(line))
	}

	h, err := rig.New(e.registry, model, opts...)
	if err != nil {
		if line != nil {
			line.Close()
		}
		return err
	}
	e.handle = h
	e.radioLog = e.logger.WithFields(map[string]interface{}{
		"session": h.ID(),
		"model":   h.Caps().ModelName,
	})

	// conf tokens such as civaddr must be in place before the first frame
	for token, val := range r.Conf {
		if err := h.SetConf(token, val); err != nil {
			return fmt.Errorf("conf %s: %w", token, err)
		}
	}

	if err := h.Open(e.port); err != nil {
		return err
	}

	e.mutex.Lock()
	e.connected = true
	snap := h.Cached()
	e.frequency = int64(snap.Freq)
	e.mode = modeName(snap.Mode)
	e.width = snap.Width
	e.mutex.Unlock()
	return nil
}

// Stop stops the engine and releases the radio
func (e *Engine) Stop() error {
	e.mutex.Lock()
	if !e.running {
		e.mutex.Unlock()
		return nil
	}
	e.running = false
	e.connected = false
	e.mutex.Unlock()

	if e.cancel != nil {
		e.cancel()
	}
	if e.listener != nil {
		e.listener.Close()
	}

	var errs []error
	if e.handle != nil {
		// closing the handle unblocks a listener waiting on the port
		if err := e.handle.Close(); err != nil {
			errs = append(errs, err)
		}
	} else if e.port != nil {
		e.port.Close()
	}
	e.wg.Wait()

	if e.store != nil {
		if e.handle != nil {
			if err := e.store.CloseSession(e.handle.ID()); err != nil {
				e.logger.Warn("engine", "failed to close session", map[string]interface{}{"error": err.Error()})
			}
		}
		if err := e.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if e.recorder != nil {
		if err := e.recorder.Err(); err != nil {
			e.logger.Warn("engine", "frame trace incomplete", map[string]interface{}{"error": err.Error()})
		}
		e.recorder.Close()
	}

	e.subMutex.Lock()
	for id, ch := range e.subscribers {
		close(ch)
		delete(e.subscribers, id)
	}
	e.subMutex.Unlock()

	os.Remove(e.socketPath)
	return errors.Join(errs...)
}

func (e *Engine) isRunning() bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	return e.running
}

// Handle returns the open radio handle
func (e *Engine) Handle() *rig.Handle {
	return e.handle
}

// Registry returns the engine's model registry
func (e *Engine) Registry() *rig.Registry {
	return e.registry
}

// Store returns the event journal, or nil when storage is disabled
func (e *Engine) Store() *storage.EventStore {
	return e.store
}

func (e *Engine) acceptConnections() {
	defer e.wg.Done()
	for e.isRunning() {
		conn, err := e.listener.Accept()
		if err != nil {
			if e.isRunning() {
				e.logger.Error("engine", "socket accept error", map[string]interface{}{"error": err.Error()})
				continue
			}
			return
		}

		go e.handleConnection(conn)
	}
}

func (e *Engine) handleConnection(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		cmd, err := protocol.ParseCommand(line)
		if err != nil {
			response := protocol.NewErrorResponse(fmt.Sprintf("parse error: %v", err))
			conn.Write([]byte(response.String() + "\n"))
			continue
		}

		response := e.Execute(cmd)
		conn.Write([]byte(response.String() + "\n"))

		if cmd.Type == protocol.CmdQuit {
			break
		}
	}
}
