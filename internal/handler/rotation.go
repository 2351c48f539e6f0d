package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/rotation-advisor-service/internal/service"
	"github.com/maxviazov/rotation-advisor-service/pkg/response"
)

type RotationHandler struct {
	svc service.RotationService
}

func NewRotationHandler(svc service.RotationService) *RotationHandler {
	return &RotationHandler{svc: svc}
}

func (h *RotationHandler) Register(r *gin.RouterGroup) {
	g := r.Group(gamePath)
	{
		g.GET("/rotations", h.analyze)
		g.GET("/rotations/latest", h.latest)
		g.POST("/rotations/execute", h.execute)
		g.GET("/history", h.history)
	}
}

// executeRequest takes a suggestion as returned by /rotations; fields not needed to
// carry it out are ignored.
type executeRequest struct {
	Type      string `json:"type"`
	PlayerIn  string `json:"player_in"`
	PlayerOut string `json:"player_out"`
	Position  string `json:"position"`
}

func (h *RotationHandler) analyze(c *gin.Context) {
	a, err := h.svc.Analyze(c.Request.Context(), c.Param("game_id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, a)
}

func (h *RotationHandler) latest(c *gin.Context) {
	a, err := h.svc.Latest(c.Request.Context(), c.Param("game_id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, a)
}

func (h *RotationHandler) execute(c *gin.Context) {
	var req executeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	game, err := h.svc.Execute(c.Request.Context(), c.Param("game_id"), service.Suggestion{
		Type:      req.Type,
		PlayerIn:  req.PlayerIn,
		PlayerOut: req.PlayerOut,
		Position:  req.Position,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, game)
}

func (h *RotationHandler) history(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	window, _ := strconv.Atoi(c.Query("window"))
	recs, err := h.svc.History(c.Request.Context(), c.Param("game_id"), limit, window)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"items": recs})
}
