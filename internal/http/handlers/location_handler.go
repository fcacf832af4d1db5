// README: Location handlers: ingest samples, serve latest/history, stream live.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"roam/internal/modules/location"
	"roam/internal/types"
	"roam/internal/ws"
)

type LocationHandler struct {
	svc *location.Service
	hub *ws.Hub
}

func NewLocationHandler(svc *location.Service, hub *ws.Hub) *LocationHandler {
	return &LocationHandler{svc: svc, hub: hub}
}

type recordSampleReq struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	RecordedAt time.Time `json:"recorded_at"`
}

func (h *LocationHandler) Record(c *gin.Context) {
	var req recordSampleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.svc.Record(c.Request.Context(), location.Sample{
		VehicleID:  types.ID(c.Param("id")),
		Position:   types.Point{Lat: req.Lat, Lng: req.Lng},
		RecordedAt: req.RecordedAt,
	})
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "recorded"})
}

func (h *LocationHandler) Latest(c *gin.Context) {
	id := types.ID(c.Param("id"))
	sm, err := h.svc.Latest(c.Request.Context(), id)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	body := gin.H{
		"vehicle_id":  sm.VehicleID,
		"lat":         sm.Position.Lat,
		"lng":         sm.Position.Lng,
		"recorded_at": sm.RecordedAt,
	}
	if c.Query("address") == "true" {
		if addr, err := h.svc.Address(c.Request.Context(), sm.Position); err == nil && addr != "" {
			body["address"] = addr
		}
	}
	c.JSON(http.StatusOK, body)
}

func (h *LocationHandler) History(c *gin.Context) {
	id := types.ID(c.Param("id"))
	samples, err := h.svc.History(c.Request.Context(), id)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	out := make([]gin.H, 0, len(samples))
	for _, sm := range samples {
		out = append(out, gin.H{
			"lat":         sm.Position.Lat,
			"lng":         sm.Position.Lng,
			"recorded_at": sm.RecordedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"vehicle_id": id, "samples": out})
}

// Stream upgrades to WebSocket and subscribes the caller to a vehicle's
// live sample feed.
func (h *LocationHandler) Stream(c *gin.Context) {
	if h.hub == nil {
		writeError(c, http.StatusServiceUnavailable, "streaming not enabled")
		return
	}
	h.hub.Serve(c.Writer, c.Request, types.ID(c.Param("id")))
}
