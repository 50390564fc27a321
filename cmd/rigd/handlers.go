package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/dougsko/rigd/pkg/engine"
	"github.com/dougsko/rigd/pkg/logging"
	"github.com/dougsko/rigd/pkg/rig"
	"github.com/dougsko/rigd/pkg/storage"
)

// httpStatus maps a radio error to the status code the API reports it with
func httpStatus(err error) int {
	switch {
	case errors.Is(err, rig.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, rig.ErrUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, rig.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, rig.ErrRejected):
		return http.StatusConflict
	case errors.Is(err, rig.ErrIO), errors.Is(err, rig.ErrMalformed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(httpStatus(err), gin.H{
		"error": err.Error(),
		"kind":  rig.Kind(err),
	})
}

// handleGetStatus returns daemon status via socket
func (d *RigDaemon) handleGetStatus(c *gin.Context) {
	status, err := d.socketClient.GetStatus()
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "running",
		"version":    engine.Version,
		"model":      status.Model,
		"model_name": status.ModelName,
		"device":     status.Device,
		"session":    status.Session,
		"uptime":     status.Uptime,
		"frequency":  status.Frequency,
		"mode":       status.Mode,
		"width":      status.Width,
		"vfo":        status.VFO,
		"ptt":        status.PTT,
		"connected":  status.Connected,
	})
}

// handleGetRadio reads the live radio state via socket
func (d *RigDaemon) handleGetRadio(c *gin.Context) {
	freq, err := d.socketClient.GetFrequency()
	if err != nil {
		abortWithError(c, err)
		return
	}
	mode, width, err := d.socketClient.GetMode()
	if err != nil {
		abortWithError(c, err)
		return
	}
	ptt, err := d.socketClient.GetPTT()
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := gin.H{
		"frequency": freq,
		"mode":      mode,
		"width":     width,
		"ptt":       ptt,
	}
	// not every backend can report its VFO
	if vfo, err := d.socketClient.GetVFO(); err == nil {
		resp["vfo"] = vfo
	}

	c.JSON(http.StatusOK, resp)
}

// handleSetFrequency sets the radio frequency via socket
func (d *RigDaemon) handleSetFrequency(c *gin.Context) {
	var req struct {
		Frequency int64 `json:"frequency" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := d.socketClient.SetFrequency(req.Frequency); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"frequency": req.Frequency,
	})
}

func (d *RigDaemon) handleSetMode(c *gin.Context) {
	var req struct {
		Mode  string `json:"mode" binding:"required"`
		Width int    `json:"width"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := d.socketClient.SetMode(req.Mode, req.Width); err != nil {
		abortWithError(c, err)
		return
	}

	mode, width, err := d.socketClient.GetMode()
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"mode":   mode,
		"width":  width,
	})
}

func (d *RigDaemon) handleSetPTT(c *gin.Context) {
	var req struct {
		PTT *bool `json:"ptt" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := d.socketClient.SetPTT(*req.PTT); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"ptt":    *req.PTT,
	})
}

func (d *RigDaemon) handleGetLevel(c *gin.Context) {
	name := c.Param("name")
	value, err := d.socketClient.GetLevel(name)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"level": name,
		"value": value,
	})
}

func (d *RigDaemon) handleSetLevel(c *gin.Context) {
	var req struct {
		Value *float64 `json:"value" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := c.Param("name")
	if err := d.socketClient.SetLevel(name, strconv.FormatFloat(*req.Value, 'f', -1, 64)); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"level":  name,
		"value":  *req.Value,
	})
}

// handleGetEvents returns journalled radio events, newest first, or
// oldest first after a given event id when since is set
func (d *RigDaemon) handleGetEvents(c *gin.Context) {
	var (
		events []storage.RigEvent
		err    error
	)

	if since := c.Query("since"); since != "" {
		id, perr := strconv.ParseInt(since, 10, 64)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since parameter"})
			return
		}
		events, err = d.socketClient.EventsSince(id)
	} else {
		limit, perr := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if perr != nil {
			limit = 50
		}
		events, err = d.socketClient.GetEvents(limit)
	}
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"count":  len(events),
	})
}

func (d *RigDaemon) handleGetModels(c *gin.Context) {
	models, err := d.engine.Models(c.Query("family"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if models == nil {
		models = []engine.ModelInfo{}
	}

	c.JSON(http.StatusOK, gin.H{
		"models": models,
		"count":  len(models),
	})
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const wsWriteTimeout = 5 * time.Second

// handleEventsWebSocket streams radio events to the client as JSON
// objects until either side goes away
func (d *RigDaemon) handleEventsWebSocket(c *gin.Context) {
	// subscribed before the handshake completes so nothing sent after it is missed
	events, unsubscribe := d.engine.Subscribe()
	defer unsubscribe()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Warn("websocket", "upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer conn.Close()

	logging.Debugf("websocket", "event client connected from %s", c.Request.RemoteAddr)

	// the read side only watches for the client closing
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "daemon stopping"),
					time.Now().Add(wsWriteTimeout))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				logging.Debug("websocket", "write failed", map[string]interface{}{"error": err.Error()})
				return
			}

		case <-gone:
			logging.Debug("websocket", "event client disconnected")
			return

		case <-d.ctx.Done():
			return
		}
	}
}
