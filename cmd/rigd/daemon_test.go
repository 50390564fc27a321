package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dougsko/rigd/pkg/config"
	"github.com/dougsko/rigd/pkg/engine"
	"github.com/dougsko/rigd/pkg/logging"
	"github.com/dougsko/rigd/pkg/rig"
	"github.com/dougsko/rigd/pkg/storage"
)

func newTestDaemon(t *testing.T) *RigDaemon {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "rigd_daemon_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	cfg := config.Default()
	cfg.Radio.PollInterval = 50
	cfg.Storage.DatabasePath = filepath.Join(tempDir, "rigd.db")
	cfg.API.UnixSocket = filepath.Join(tempDir, "rigd.sock")
	cfg.Web.Enabled = false

	d, err := NewRigDaemon(cfg, engine.WithLogger(logging.New(io.Discard, logging.LevelError, false)))
	if err != nil {
		t.Fatalf("Failed to create daemon: %v", err)
	}
	if err := d.Start(); err != nil {
		t.Fatalf("Failed to start daemon: %v", err)
	}
	t.Cleanup(func() { d.Stop() })
	return d
}

func request(t *testing.T, d *RigDaemon, method, path, body string) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	d.router.ServeHTTP(w, req)

	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode %s %s response %q: %v", method, path, w.Body.String(), err)
	}
	return w.Code, out
}

func TestRESTAPI(t *testing.T) {
	d := newTestDaemon(t)

	t.Run("status", func(t *testing.T) {
		code, body := request(t, d, "GET", "/api/v1/status", "")
		if code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %v", code, body)
		}
		if body["model_name"] != "Dummy" {
			t.Errorf("Expected model_name Dummy, got %v", body["model_name"])
		}
		if body["connected"] != true {
			t.Errorf("Expected connected, got %v", body["connected"])
		}
		if body["version"] != engine.Version {
			t.Errorf("Expected version %s, got %v", engine.Version, body["version"])
		}
	})

	t.Run("set frequency", func(t *testing.T) {
		code, body := request(t, d, "PUT", "/api/v1/radio/frequency", `{"frequency": 7074000}`)
		if code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %v", code, body)
		}

		code, body = request(t, d, "GET", "/api/v1/radio", "")
		if code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %v", code, body)
		}
		if body["frequency"] != float64(7074000) {
			t.Errorf("Expected frequency 7074000, got %v", body["frequency"])
		}
	})

	t.Run("frequency missing", func(t *testing.T) {
		code, _ := request(t, d, "PUT", "/api/v1/radio/frequency", `{}`)
		if code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", code)
		}
	})

	t.Run("set mode", func(t *testing.T) {
		code, body := request(t, d, "PUT", "/api/v1/radio/mode", `{"mode": "CW", "width": 500}`)
		if code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %v", code, body)
		}
		if body["mode"] != "CW" {
			t.Errorf("Expected mode CW, got %v", body["mode"])
		}
		if body["width"] != float64(500) {
			t.Errorf("Expected width 500, got %v", body["width"])
		}
	})

	t.Run("unknown mode", func(t *testing.T) {
		code, body := request(t, d, "PUT", "/api/v1/radio/mode", `{"mode": "BOGUS"}`)
		if code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", code)
		}
		if body["kind"] != "invalid_argument" {
			t.Errorf("Expected kind invalid_argument, got %v", body["kind"])
		}
	})

	t.Run("ptt", func(t *testing.T) {
		code, body := request(t, d, "PUT", "/api/v1/radio/ptt", `{"ptt": true}`)
		if code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %v", code, body)
		}
		_, body = request(t, d, "GET", "/api/v1/radio", "")
		if body["ptt"] != true {
			t.Errorf("Expected ptt on, got %v", body["ptt"])
		}

		code, _ = request(t, d, "PUT", "/api/v1/radio/ptt", `{"ptt": false}`)
		if code != http.StatusOK {
			t.Errorf("Expected 200 releasing PTT, got %d", code)
		}
	})

	t.Run("level", func(t *testing.T) {
		code, body := request(t, d, "PUT", "/api/v1/radio/level/af", `{"value": 0.25}`)
		if code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %v", code, body)
		}
		code, body = request(t, d, "GET", "/api/v1/radio/level/AF", "")
		if code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %v", code, body)
		}
		if body["value"] != 0.25 {
			t.Errorf("Expected AF 0.25, got %v", body["value"])
		}

		code, _ = request(t, d, "GET", "/api/v1/radio/level/NOPE", "")
		if code != http.StatusBadRequest {
			t.Errorf("Expected 400 for unknown level, got %d", code)
		}
	})

	t.Run("events", func(t *testing.T) {
		code, body := request(t, d, "GET", "/api/v1/events?limit=10", "")
		if code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %v", code, body)
		}
		if body["count"].(float64) < 1 {
			t.Errorf("Expected journalled events, got %v", body["count"])
		}

		code, _ = request(t, d, "GET", "/api/v1/events?since=abc", "")
		if code != http.StatusBadRequest {
			t.Errorf("Expected 400 for bad since, got %d", code)
		}

		code, body = request(t, d, "GET", "/api/v1/events?since=0", "")
		if code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %v", code, body)
		}
		events := body["events"].([]interface{})
		first := events[0].(map[string]interface{})
		if first["id"] != float64(1) {
			t.Errorf("Expected oldest event first, got id %v", first["id"])
		}
	})

	t.Run("models", func(t *testing.T) {
		code, body := request(t, d, "GET", "/api/v1/models?family=dummy", "")
		if code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %v", code, body)
		}
		if body["count"] != float64(1) {
			t.Errorf("Expected one dummy model, got %v", body["count"])
		}

		_, body = request(t, d, "GET", "/api/v1/models?family=nosuch", "")
		if body["count"] != float64(0) {
			t.Errorf("Expected no models, got %v", body["count"])
		}
	})
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("wrapped: %w", rig.ErrInvalidArgument), http.StatusBadRequest},
		{rig.ErrUnsupported, http.StatusNotImplemented},
		{rig.ErrTimeout, http.StatusGatewayTimeout},
		{rig.ErrRejected, http.StatusConflict},
		{rig.ErrIO, http.StatusBadGateway},
		{rig.ErrMalformed, http.StatusBadGateway},
		{errors.New("something else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := httpStatus(tt.err); got != tt.code {
			t.Errorf("httpStatus(%v): expected %d, got %d", tt.err, tt.code, got)
		}
	}
}

func TestSetLevelRejectsNonNumber(t *testing.T) {
	d := newTestDaemon(t)

	code, _ := request(t, d, "PUT", "/api/v1/radio/level/af", `{"value": "loud"}`)
	if code != http.StatusBadRequest {
		t.Errorf("Expected 400 for non-numeric level, got %d", code)
	}
}

func TestEventsWebSocket(t *testing.T) {
	d := newTestDaemon(t)

	srv := httptest.NewServer(d.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	defer conn.Close()

	code, _ := request(t, d, "PUT", "/api/v1/radio/frequency", `{"frequency": 3573000}`)
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var ev storage.RigEvent
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("Failed to read event: %v", err)
		}
		// a poll may see the new frequency first; the command event follows
		if ev.Kind == "freq" && ev.Frequency == 3573000 && ev.Source == storage.SourceCommand {
			if ev.ID == 0 {
				t.Error("Expected a journalled event id")
			}
			return
		}
	}
}

func TestEventsWebSocketClosedOnStop(t *testing.T) {
	d := newTestDaemon(t)

	srv := httptest.NewServer(d.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	defer conn.Close()

	d.Stop()

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				t.Errorf("Expected going-away close, got %v", err)
			}
			return
		}
	}
}
