// README: Vehicle registry handlers plus the availability view.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"roam/internal/modules/ledger"
	"roam/internal/modules/vehicle"
	"roam/internal/types"
)

type VehicleHandler struct {
	svc    *vehicle.Service
	ledger *ledger.Ledger
}

func NewVehicleHandler(svc *vehicle.Service, ldg *ledger.Ledger) *VehicleHandler {
	return &VehicleHandler{svc: svc, ledger: ldg}
}

type registerVehicleReq struct {
	Plate       string `json:"plate"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	Year        int    `json:"year"`
	PricePerDay int64  `json:"price_per_day"`
	Currency    string `json:"currency"`
}

func (h *VehicleHandler) Register(c *gin.Context) {
	var req registerVehicleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	v, err := h.svc.Register(c.Request.Context(), vehicle.RegisterCommand{
		OwnerID:     types.ID(c.GetString("userId")),
		Plate:       req.Plate,
		Make:        req.Make,
		Model:       req.Model,
		Year:        req.Year,
		PricePerDay: types.Money{Amount: req.PricePerDay, Currency: req.Currency},
	})
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vehicleView(v))
}

type updateVehicleReq struct {
	PricePerDay *int64 `json:"price_per_day"`
	Currency    string `json:"currency"`
	Active      *bool  `json:"active"`
}

func (h *VehicleHandler) Update(c *gin.Context) {
	var req updateVehicleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cmd := vehicle.UpdateCommand{
		VehicleID: types.ID(c.Param("id")),
		OwnerID:   types.ID(c.GetString("userId")),
		Active:    req.Active,
	}
	if req.PricePerDay != nil {
		cmd.PricePerDay = &types.Money{Amount: *req.PricePerDay, Currency: req.Currency}
	}
	v, err := h.svc.Update(c.Request.Context(), cmd)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicleView(v))
}

func (h *VehicleHandler) Get(c *gin.Context) {
	v, err := h.svc.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicleView(v))
}

func (h *VehicleHandler) ListMine(c *gin.Context) {
	vs, err := h.svc.ListByOwner(c.Request.Context(), types.ID(c.GetString("userId")))
	if err != nil {
		writeEngineError(c, err)
		return
	}
	out := make([]gin.H, 0, len(vs))
	for _, v := range vs {
		out = append(out, vehicleView(v))
	}
	c.JSON(http.StatusOK, gin.H{"vehicles": out})
}

// Availability lists the upcoming blocked intervals for a vehicle, newest
// holds merged in as of the moment of the call.
func (h *VehicleHandler) Availability(c *gin.Context) {
	id := types.ID(c.Param("id"))
	if _, err := h.svc.Get(c.Request.Context(), id); err != nil {
		writeEngineError(c, err)
		return
	}
	from := time.Now()
	if q := c.Query("from"); q != "" {
		if t := parseDay(q); !t.IsZero() {
			from = t
		}
	}
	blocked := make([]gin.H, 0)
	for span := range h.ledger.Upcoming(id, from) {
		blocked = append(blocked, gin.H{
			"start": span.Start().Format(time.DateOnly),
			"end":   span.End().Format(time.DateOnly),
		})
	}
	c.JSON(http.StatusOK, gin.H{"vehicle_id": id, "blocked": blocked})
}

func vehicleView(v *vehicle.Vehicle) gin.H {
	return gin.H{
		"vehicle_id":    v.ID,
		"owner_id":      v.OwnerID,
		"plate":         v.Plate,
		"make":          v.Make,
		"model":         v.Model,
		"year":          v.Year,
		"price_per_day": v.PricePerDay.Amount,
		"currency":      v.PricePerDay.Currency,
		"active":        v.Active,
	}
}
