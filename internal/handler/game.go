package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/rotation-advisor-service/internal/repository"
	"github.com/maxviazov/rotation-advisor-service/internal/service"
	"github.com/maxviazov/rotation-advisor-service/pkg/response"
)

type GameHandler struct {
	svc service.GameService
}

func NewGameHandler(svc service.GameService) *GameHandler { return &GameHandler{svc: svc} }

func (h *GameHandler) Register(r *gin.RouterGroup) {
	r.POST("/games", h.create)
	r.GET("/games", h.list)
	g := r.Group(gamePath)
	{
		g.GET("", h.getByID)
		g.POST("/players", h.addPlayer)
		g.POST("/players/:player_id/toggle", h.toggle)
		g.POST("/players/:player_id/move", h.move)
		g.POST("/swap", h.swap)
		g.POST("/clock", h.clock)
		g.POST("/tick", h.tick)
	}
}

type playerRequest struct {
	Name           string `json:"name"`
	GuernseyNumber int    `json:"guernsey_number"`
	Position       string `json:"position"`
}

func (p playerRequest) toService() service.NewPlayer {
	return service.NewPlayer{Name: p.Name, GuernseyNumber: p.GuernseyNumber, Position: p.Position}
}

type createGameRequest struct {
	Name    string          `json:"name"`
	Players []playerRequest `json:"players"`
}

type positionRequest struct {
	Position string `json:"position"`
}

type swapRequest struct {
	PlayerIn  string `json:"player_in"`
	PlayerOut string `json:"player_out"`
}

type clockRequest struct {
	Action string `json:"action"`
}

type tickRequest struct {
	Seconds int `json:"seconds"`
}

func (h *GameHandler) create(c *gin.Context) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	roster := make([]service.NewPlayer, 0, len(req.Players))
	for _, p := range req.Players {
		roster = append(roster, p.toService())
	}
	game, err := h.svc.CreateGame(c.Request.Context(), req.Name, roster)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, game)
}

func (h *GameHandler) getByID(c *gin.Context) {
	game, err := h.svc.GetGame(c.Request.Context(), c.Param("game_id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, game)
}

func (h *GameHandler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	page := repository.Page{Limit: limit, Offset: offset}
	res, err := h.svc.ListGames(c.Request.Context(), page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *GameHandler) addPlayer(c *gin.Context) {
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	game, err := h.svc.AddPlayer(c.Request.Context(), c.Param("game_id"), req.toService())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, game)
}

// toggle accepts an empty body when taking a player off.
func (h *GameHandler) toggle(c *gin.Context) {
	var req positionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.WriteError(c, service.ErrInvalidInput)
			return
		}
	}
	game, err := h.svc.TogglePlayer(c.Request.Context(), c.Param("game_id"), c.Param("player_id"), req.Position)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, game)
}

func (h *GameHandler) move(c *gin.Context) {
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	game, err := h.svc.MovePlayer(c.Request.Context(), c.Param("game_id"), c.Param("player_id"), req.Position)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, game)
}

func (h *GameHandler) swap(c *gin.Context) {
	var req swapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	game, err := h.svc.Swap(c.Request.Context(), c.Param("game_id"), req.PlayerIn, req.PlayerOut)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, game)
}

func (h *GameHandler) clock(c *gin.Context) {
	var req clockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	game, err := h.svc.Clock(c.Request.Context(), c.Param("game_id"), req.Action)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, game)
}

func (h *GameHandler) tick(c *gin.Context) {
	var req tickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	game, err := h.svc.Tick(c.Request.Context(), c.Param("game_id"), req.Seconds)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, game)
}
