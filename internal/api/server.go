// Package api serves the battle engine and the player's collection over HTTP
// and a websocket event stream.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/samdwyer/cardclash/internal/battle"
	"github.com/samdwyer/cardclash/internal/gamedata"
	"github.com/samdwyer/cardclash/internal/report"
	"github.com/samdwyer/cardclash/internal/schedule"
	"github.com/samdwyer/cardclash/internal/store"
)

// Routes.
const (
	RouteAPIPrefix     = "/api"
	RouteBattle        = "/battle"
	RouteBattleStart   = "/battle/start"
	RouteBattlePlay    = "/battle/play"
	RouteBattleEndTurn = "/battle/end-turn"
	RouteBattleNew     = "/battle/new"
	RouteProgress      = "/progress"
	RouteCollection    = "/collection"
	RouteDeck          = "/collection/deck"
	RoutePacksOpen     = "/packs/open"
	RouteBattles       = "/game/battles"
	RouteBattleReport  = "/game/battles/:id/report.pdf"
	RouteWebsocket     = "/ws"

	JSONKeyError    = "error"
	ContentTypePDF  = "application/pdf"
	defaultHistory  = 20
	maxHistoryLimit = 200
)

// Engine is the part of battle.Engine the server drives.
type Engine interface {
	Snapshot() battle.State
	StartBattle(ctx context.Context, level int) error
	PlayCard(ctx context.Context, index int) error
	EndTurn(ctx context.Context) error
	StartNewBattle()
}

// Server holds the HTTP handlers. Every engine call runs on loop.
type Server struct {
	loop   *schedule.Loop
	engine Engine
	player *store.Player
	hub    *Hub
	logger *zap.Logger
}

// NewServer wires the handlers and registers the websocket command handler
// and the per-task state broadcast on loop.
func NewServer(loop *schedule.Loop, engine Engine, player *store.Player, hub *Hub, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{loop: loop, engine: engine, player: player, hub: hub, logger: logger}
	hub.OnCommand(s.handleCommand)
	loop.AfterEach(func() {
		if hub.Clients() > 0 {
			hub.PublishState(engine.Snapshot())
		}
	})
	return s
}

// Router builds the gin engine.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	api := r.Group(RouteAPIPrefix)
	{
		api.GET(RouteBattle, s.getBattle)
		api.POST(RouteBattleStart, s.startBattle)
		api.POST(RouteBattlePlay, s.playCard)
		api.POST(RouteBattleEndTurn, s.endTurn)
		api.POST(RouteBattleNew, s.newBattle)

		api.GET(RouteProgress, s.getProgress)
		api.GET(RouteCollection, s.getCollection)
		api.PUT(RouteDeck, s.putDeck)
		api.POST(RoutePacksOpen, s.openPack)

		api.POST(RouteBattles, s.createBattleRecord)
		api.GET(RouteBattles, s.listBattles)
		api.GET(RouteBattleReport, s.battleReport)
	}
	r.GET(RouteWebsocket, func(c *gin.Context) {
		s.hub.ServeWS(c.Writer, c.Request)
	})
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
		)
	}
}

// onLoop runs fn on the engine goroutine and returns the state it leaves.
func (s *Server) onLoop(ctx context.Context, fn func() error) (battle.State, error) {
	var (
		state  battle.State
		runErr error
	)
	if err := s.loop.Do(ctx, func() {
		runErr = fn()
		state = s.engine.Snapshot()
	}); err != nil {
		return battle.State{}, err
	}
	return state, runErr
}

func (s *Server) respondState(c *gin.Context, state battle.State, err error) {
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// fail maps an error to a status code and the {"error": ...} body.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, battle.ErrNoHand),
		errors.Is(err, store.ErrNoPacks),
		errors.Is(err, store.ErrUnknownCard):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, schedule.ErrStopped):
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{JSONKeyError: err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{JSONKeyError: msg})
}

func (s *Server) getBattle(c *gin.Context) {
	state, err := s.onLoop(c.Request.Context(), func() error { return nil })
	s.respondState(c, state, err)
}

type startRequest struct {
	Level int `json:"level"`
}

func (s *Server) startBattle(c *gin.Context) {
	var req startRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request")
			return
		}
	}
	ctx := c.Request.Context()
	if req.Level <= 0 {
		level, err := s.player.Level(ctx)
		if err != nil {
			s.fail(c, err)
			return
		}
		req.Level = level
	}
	state, err := s.onLoop(ctx, func() error { return s.engine.StartBattle(ctx, req.Level) })
	s.respondState(c, state, err)
}

type playRequest struct {
	Index *int `json:"index"`
}

func (s *Server) playCard(c *gin.Context) {
	var req playRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Index == nil {
		badRequest(c, "index is required")
		return
	}
	ctx := c.Request.Context()
	state, err := s.onLoop(ctx, func() error { return s.engine.PlayCard(ctx, *req.Index) })
	s.respondState(c, state, err)
}

func (s *Server) endTurn(c *gin.Context) {
	ctx := c.Request.Context()
	state, err := s.onLoop(ctx, func() error { return s.engine.EndTurn(ctx) })
	s.respondState(c, state, err)
}

func (s *Server) newBattle(c *gin.Context) {
	state, err := s.onLoop(c.Request.Context(), func() error {
		s.engine.StartNewBattle()
		return nil
	})
	s.respondState(c, state, err)
}

type progressResponse struct {
	Level         int `json:"level"`
	Experience    int `json:"experience"`
	NextLevelAt   int `json:"nextLevelAt"`
	Health        int `json:"health"`
	MaxHealth     int `json:"maxHealth"`
	UnopenedPacks int `json:"unopenedPacks"`
	CardCount     int `json:"cardCount"`
}

func (s *Server) getProgress(c *gin.Context) {
	prof, err := s.player.Profile(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, progressResponse{
		Level:         prof.Level,
		Experience:    prof.Experience,
		NextLevelAt:   prof.NextLevelAt(),
		Health:        prof.Health,
		MaxHealth:     prof.MaxHealth,
		UnopenedPacks: prof.UnopenedPacks,
		CardCount:     len(prof.Cards),
	})
}

type collectionResponse struct {
	Cards []gamedata.Card `json:"cards"`
	Deck  []string        `json:"deck"`
}

func (s *Server) getCollection(c *gin.Context) {
	prof, err := s.player.Profile(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	deck := prof.Deck
	if deck == nil {
		deck = []string{}
	}
	c.JSON(http.StatusOK, collectionResponse{Cards: prof.Cards, Deck: deck})
}

type deckRequest struct {
	CardIDs []string `json:"cardIds"`
}

func (s *Server) putDeck(c *gin.Context) {
	var req deckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	if err := s.player.SetDeck(c.Request.Context(), req.CardIDs); err != nil {
		s.fail(c, err)
		return
	}
	s.getCollection(c)
}

func (s *Server) openPack(c *gin.Context) {
	cards, err := s.player.OpenPack(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.hub.SetView(battle.ViewPackOpening)
	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

type battleRecordRequest struct {
	Level            int    `json:"level"`
	Outcome          string `json:"outcome"`
	Turns            int    `json:"turns"`
	EnemyName        string `json:"enemyName"`
	PlayerHealth     int    `json:"playerHealth"`
	EnemyHealth      int    `json:"enemyHealth"`
	ExperienceGained int    `json:"experienceGained"`
	RewardCard       string `json:"rewardCard"`
}

func (s *Server) createBattleRecord(c *gin.Context) {
	var req battleRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	outcome := battle.ParseOutcome(req.Outcome)
	if outcome == battle.OutcomeNone {
		badRequest(c, fmt.Sprintf("outcome must be win or lose, got %q", req.Outcome))
		return
	}
	if req.Level < 1 {
		badRequest(c, "level must be at least 1")
		return
	}
	summary := battle.Summary{
		Level:            req.Level,
		Outcome:          outcome,
		Turns:            req.Turns,
		EnemyName:        req.EnemyName,
		PlayerHealth:     req.PlayerHealth,
		EnemyHealth:      req.EnemyHealth,
		ExperienceGained: req.ExperienceGained,
	}
	if req.RewardCard != "" {
		summary.Reward = &gamedata.Card{Name: req.RewardCard}
	}
	rec, err := s.player.Record(c.Request.Context(), summary)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) listBattles(c *gin.Context) {
	limit := defaultHistory
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}
	recs, err := s.player.Battles(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	if recs == nil {
		recs = []store.BattleRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"battles": recs})
}

func (s *Server) battleReport(c *gin.Context) {
	rec, err := s.player.Battle(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	data, err := report.Bytes(rec)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=battle-%s.pdf", rec.ID))
	c.Data(http.StatusOK, ContentTypePDF, data)
}

// handleCommand runs a websocket command on the loop. The resulting state
// reaches clients through the AfterEach broadcast.
func (s *Server) handleCommand(cmd Command) error {
	ctx := context.Background()
	var run func() error
	switch cmd.Type {
	case CommandPlayCard:
		run = func() error { return s.engine.PlayCard(ctx, cmd.Index) }
	case CommandEndTurn:
		run = func() error { return s.engine.EndTurn(ctx) }
	case CommandNewBattle:
		run = func() error { s.engine.StartNewBattle(); return nil }
	case CommandStartBattle:
		level := cmd.Level
		if level <= 0 {
			l, err := s.player.Level(ctx)
			if err != nil {
				return err
			}
			level = l
		}
		run = func() error { return s.engine.StartBattle(ctx, level) }
	default:
		return fmt.Errorf("unknown command %q", cmd.Type)
	}
	_, err := s.onLoop(ctx, run)
	return err
}
