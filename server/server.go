package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server 把会话、房间与信令中转组合在一起，对外提供 HTTP 路由
type Server struct {
	sessions *SessionManager
	room     *Room
	relay    *Relay
	metrics  *RoomMetrics
}

func NewServer(cfg RoomConfig) *Server {
	sessions := NewSessionManager()
	metrics := &RoomMetrics{}
	return &Server{
		sessions: sessions,
		room:     NewRoom(cfg, sessions, metrics),
		relay:    NewRelay(sessions, metrics),
		metrics:  metrics,
	}
}

// Start 启动房间的 Tick 循环
func (s *Server) Start(ctx context.Context) { s.room.StartTicker(ctx) }

// dispatch 信令绕过模拟直接转发，其余消息交给房间协程
func (s *Server) dispatch(sid SessionID, msg Inbound) {
	switch m := msg.(type) {
	case SetName:
		s.room.SetName(sid, m.Name)
	case InputMessage:
		s.room.Input(sid, m.Dir)
	case Retry:
		s.room.Retry(sid)
	case Signal:
		s.relay.Forward(sid, m)
	}
}

// Routes WebSocket 接入与监控接口；静态资源不在此服务
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxAge:         300,
	}))

	r.Get("/ws", s.HandleWS)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/metrics", s.HandleMetrics)
	r.Get("/admin/state", s.HandleAdminState)
	return r
}
