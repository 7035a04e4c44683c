package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/internal/auth"
	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/internal/config"
	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/internal/http/handlers"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Server struct {
	DB     *pgxpool.Pool
	Logger *zap.Logger
	Config config.Config

	kitchenRealtime *kitchenRealtime
}

func New(db *pgxpool.Pool, logger *zap.Logger, cfg config.Config) *Server {
	return &Server{
		DB:              db,
		Logger:          logger,
		Config:          cfg,
		kitchenRealtime: newKitchenRealtime(db, logger, cfg.WSKitchenPollInterval),
	}
}

type wsRealtimeClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsRealtimeClient) writeJSON(value any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(value)
}

// kitchenRealtime pushes the undelivered-items snapshot to every connected
// kitchen display. A statement trigger on order_items fires pg_notify on
// 'kitchen_updates'; the payload carries nothing, the snapshot is refetched.
type kitchenRealtime struct {
	db     *pgxpool.Pool
	logger *zap.Logger
	poll   time.Duration

	started sync.Once
	mu      sync.RWMutex
	subs    map[*wsRealtimeClient]struct{}
}

func newKitchenRealtime(db *pgxpool.Pool, logger *zap.Logger, poll time.Duration) *kitchenRealtime {
	return &kitchenRealtime{
		db:     db,
		logger: logger,
		poll:   poll,
		subs:   make(map[*wsRealtimeClient]struct{}),
	}
}

func (kr *kitchenRealtime) hasSubscribers() bool {
	kr.mu.RLock()
	defer kr.mu.RUnlock()
	return len(kr.subs) > 0
}

func (kr *kitchenRealtime) ensureStarted() {
	kr.started.Do(func() {
		go kr.listenLoop(context.Background())
	})
}

func (kr *kitchenRealtime) subscribe(client *wsRealtimeClient) (unsubscribe func()) {
	kr.mu.Lock()
	kr.subs[client] = struct{}{}
	kr.mu.Unlock()

	return func() {
		kr.mu.Lock()
		delete(kr.subs, client)
		kr.mu.Unlock()
	}
}

func (kr *kitchenRealtime) broadcast(message any) {
	kr.mu.RLock()
	clients := make([]*wsRealtimeClient, 0, len(kr.subs))
	for c := range kr.subs {
		clients = append(clients, c)
	}
	kr.mu.RUnlock()

	for _, c := range clients {
		if err := c.writeJSON(message); err != nil {
			_ = c.conn.Close()
			kr.mu.Lock()
			delete(kr.subs, c)
			kr.mu.Unlock()
		}
	}
}

func (kr *kitchenRealtime) pushSnapshot(ctx context.Context) {
	items, err := handlers.PendingKitchenItems(ctx, kr.db)
	if err != nil {
		if kr.logger != nil {
			kr.logger.Warn("kitchen snapshot fetch failed", zap.Error(err))
		}
		kr.broadcast(map[string]any{"type": "kitchen.refresh", "updatedAt": time.Now()})
		return
	}
	kr.broadcast(map[string]any{"type": "kitchen.state", "data": items})
}

func (kr *kitchenRealtime) listenLoop(ctx context.Context) {
	backoff := time.Second
	for {
		conn, err := kr.db.Acquire(ctx)
		if err != nil {
			if kr.logger != nil {
				kr.logger.Warn("kitchen LISTEN acquire failed", zap.Error(err))
			}
			time.Sleep(backoff)
			backoff = minDuration(backoff*2, 30*time.Second)
			continue
		}

		_, err = conn.Exec(ctx, `listen kitchen_updates`)
		if err != nil {
			conn.Release()
			if kr.logger != nil {
				kr.logger.Warn("kitchen LISTEN failed", zap.Error(err))
			}
			time.Sleep(backoff)
			backoff = minDuration(backoff*2, 30*time.Second)
			continue
		}

		backoff = time.Second
		listening := true
		for listening {
			// Timed wait doubles as a poll so a dropped notification
			// only delays the display by one interval.
			waitCtx, cancel := context.WithTimeout(ctx, kr.poll)
			_, err := conn.Conn().WaitForNotification(waitCtx)
			cancel()
			switch {
			case err == nil:
				kr.pushSnapshot(ctx)
			case errors.Is(err, context.DeadlineExceeded):
				if kr.hasSubscribers() {
					kr.pushSnapshot(ctx)
				}
			default:
				listening = false
			}
		}

		conn.Release()
		time.Sleep(backoff)
		backoff = minDuration(backoff*2, 30*time.Second)
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

// HandleKitchen upgrades a staff connection to the live kitchen feed. The
// token rides a query parameter because browsers cannot set headers on
// websocket handshakes.
func (s *Server) HandleKitchen(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	token := r.URL.Query().Get("token")
	if bearer := auth.ParseBearerToken(token); bearer != "" {
		token = bearer
	}
	claims, err := auth.VerifyAccessToken(token, s.Config.JWTSecret)
	if err != nil || (claims.Role != auth.RoleAdmin && claims.Role != auth.RoleEmployee) {
		_ = conn.WriteJSON(map[string]any{"type": "error", "message": "unauthorized"})
		return
	}

	s.kitchenRealtime.ensureStarted()
	ctx := r.Context()
	client := &wsRealtimeClient{conn: conn}
	unsubscribe := s.kitchenRealtime.subscribe(client)
	defer unsubscribe()

	// Send initial snapshot immediately
	if items, fetchErr := handlers.PendingKitchenItems(ctx, s.DB); fetchErr == nil {
		_ = client.writeJSON(map[string]any{"type": "kitchen.state", "data": items})
	}

	heartbeat := time.NewTicker(s.Config.WSHeartbeatInterval)
	defer heartbeat.Stop()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-clientClosed:
			return
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			if err := client.writeJSON(map[string]any{"type": "ping", "at": time.Now()}); err != nil {
				return
			}
		}
	}
}
