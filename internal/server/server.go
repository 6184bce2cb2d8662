package server

import (
	"context"
	"encoding/json"
	rand "math/rand/v2"
	"net"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lox/holdem-server/internal/randutil"
)

// Server is the HTTP lobby plus the WebSocket endpoint connections land
// on. Tables declared in config are created and started up front; more
// can be created through the lobby at runtime.
type Server struct {
	config    *Config
	registry  *Registry
	logger    zerolog.Logger
	engineLog *log.Logger
	clock     quartz.Clock
	seed      int64
	tableSeq  atomic.Int64

	upgrader   websocket.Upgrader
	mux        *http.ServeMux
	httpServer *http.Server
	routesOnce sync.Once
}

// NewServer builds a Server and its configured tables. seed drives every
// table's deck shuffling and bot think delays; pass a fixed value for a
// reproducible run.
func NewServer(cfg *Config, logger zerolog.Logger, engineLog *log.Logger, seed int64) *Server {
	s := &Server{
		config:    cfg,
		registry:  NewRegistry(),
		logger:    logger,
		engineLog: engineLog,
		clock:     quartz.NewReal(),
		seed:      seed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		mux: http.NewServeMux(),
	}

	for _, tc := range cfg.Tables {
		t := NewTable(tc, cfg.BotsForTable(tc.Name), s.nextRNG(), s.clock, logger, engineLog)
		s.registry.Add(t)
	}

	return s
}

// nextRNG derives a fresh, independently-seeded RNG for one table.
func (s *Server) nextRNG() *rand.Rand {
	return randutil.New(s.seed + s.tableSeq.Add(1))
}

// Start listens on addr and serves until the listener fails or Shutdown
// is called.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(listener)
}

// Serve runs the server on an existing listener, starting every
// registered table.
func (s *Server) Serve(listener net.Listener) error {
	for _, t := range s.registry.List() {
		t.Run()
	}

	s.ensureRoutes()
	s.httpServer = &http.Server{Handler: s.mux}

	s.logger.Info().Str("addr", listener.Addr().String()).Msg("server starting")
	return s.httpServer.Serve(listener)
}

func (s *Server) ensureRoutes() {
	s.routesOnce.Do(func() {
		s.mux.HandleFunc("/ws", s.handleWebSocket)
		s.mux.HandleFunc("/health", s.handleHealth)
		s.mux.HandleFunc("/tables", s.handleTables)
	})
}

// Shutdown stops every table and the HTTP server. There is no durable
// state to flush; in-flight hands simply end.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("server shutting down")
	s.registry.CloseAll()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("http shutdown error")
			return err
		}
	}
	s.logger.Info().Msg("server shutdown complete")
	return nil
}

// handleWebSocket joins a client to a table:
//
//	GET /ws?table=main&player=alice&name=Alice&buy_in=1000
//
// player is the stable player identifier (a reconnect with the same id
// reclaims the seat); name defaults to it. A missing player id gets a
// generated one.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	tableID := r.URL.Query().Get("table")
	table := s.registry.Get(tableID)
	if table == nil {
		http.Error(w, ErrUnknownTable.Error(), http.StatusNotFound)
		return
	}

	playerID := r.URL.Query().Get("player")
	if playerID == "" {
		playerID = uuid.NewString()[:8]
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = playerID
	}
	buyIn, _ := strconv.Atoi(r.URL.Query().Get("buy_in"))

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	conn := NewConnection(ws, playerID, name, table, s.logger)
	conn.Start()

	if err := table.Connect(conn, buyIn); err != nil {
		s.logger.Warn().Err(err).Str("player_id", playerID).Str("table_id", tableID).Msg("join rejected")
		conn.sendError(err.Error())
		_ = conn.Close()
		return
	}

	s.logger.Info().Str("player_id", playerID).Str("table_id", tableID).Msg("player connected")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

// handleTables lists tables on GET and creates one on POST.
func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.serveTableList(w)
	case http.MethodPost:
		s.serveTableCreate(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) serveTableList(w http.ResponseWriter) {
	tables := s.registry.List()
	infos := make([]TableInfo, 0, len(tables))
	for _, t := range tables {
		infos = append(infos, t.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(infos); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode table list")
		w.WriteHeader(http.StatusInternalServerError)
	}
}

type createTableRequest struct {
	Name       string `json:"name"`
	Variant    string `json:"variant"`
	SmallBlind int    `json:"small_blind"`
	BigBlind   int    `json:"big_blind"`
	MaxPlayers int    `json:"max_players"`
	BuyIn      int    `json:"buy_in"`
}

func (s *Server) serveTableCreate(w http.ResponseWriter, r *http.Request) {
	var req createTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	cfg := TableConfig{
		Name:       req.Name,
		Variant:    req.Variant,
		SmallBlind: req.SmallBlind,
		BigBlind:   req.BigBlind,
		MaxPlayers: req.MaxPlayers,
		BuyIn:      req.BuyIn,
	}
	if cfg.Variant == "" {
		cfg.Variant = "no_limit"
	}
	if cfg.MaxPlayers == 0 {
		cfg.MaxPlayers = 6
	}
	if cfg.BuyIn == 0 {
		cfg.BuyIn = cfg.BigBlind * 100
	}
	if err := validateTableConfig(cfg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	t := NewTable(cfg, nil, s.nextRNG(), s.clock, s.logger, s.engineLog)
	if !s.registry.Add(t) {
		http.Error(w, "table already exists", http.StatusConflict)
		return
	}
	t.Run()
	s.logger.Info().Str("table_id", t.ID).Msg("table created")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(t.Info())
}
