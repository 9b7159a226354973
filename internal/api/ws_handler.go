package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"atsResume/internal/errcode"
	"atsResume/internal/notify"
	"atsResume/internal/store"
)

type pubsubSubscriber interface {
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// WsHandler 将 Redis 通知频道转发到 WebSocket 客户端。
type WsHandler struct {
	redisClient    pubsubSubscriber
	store          *store.Store
	storeKey       string
	logger         *slog.Logger
	upgrader       websocket.Upgrader
	allowedOrigins []string
}

// NewWsHandler 构造 WebSocket 处理器。
func NewWsHandler(redisClient pubsubSubscriber, st *store.Store, storeKey string, logger *slog.Logger, allowedOrigins []string) *WsHandler {
	h := &WsHandler{
		redisClient:    redisClient,
		store:          st,
		storeKey:       storeKey,
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

// 未配置白名单时只允许同源。
func (h *WsHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(h.allowedOrigins) == 0 {
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
	for _, allowed := range h.allowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// HandleConnection 升级连接，先推送当前分数，再转发频道消息直到任一方断开。
func (h *WsHandler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("upgrade websocket failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	channel := notify.Channel(h.storeKey)
	log := h.logger.With(
		slog.String("client_ip", c.ClientIP()),
		slog.String("channel", channel),
	)

	pubsub := h.redisClient.Subscribe(ctx, channel)
	defer pubsub.Close()

	if err := h.sendCurrentScore(conn); err != nil {
		log.Warn("write initial score failed", slog.Any("error", err))
		return
	}

	errCh := make(chan error, 2)
	go readLoop(conn, errCh)
	go forwardLoop(ctx, conn, pubsub.Channel(), errCh)

	log.Info("websocket subscribed")
	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Info("websocket connection closed", slog.Any("error", err))
	}
}

func (h *WsHandler) sendCurrentScore(conn *websocket.Conn) error {
	state := h.store.State()
	score := state.Score
	data, err := json.Marshal(notify.Message{
		Kind:      notify.KindScore,
		Status:    notify.StatusCompleted,
		ResumeID:  state.Resume.ID,
		ErrorCode: errcode.OK,
		Score:     &score,
	})
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// readLoop 丢弃客户端消息，只用于感知断开。
func readLoop(conn *websocket.Conn, errCh chan<- error) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			errCh <- fmt.Errorf("read message: %w", err)
			return
		}
	}
}

func forwardLoop(ctx context.Context, conn *websocket.Conn, ch <-chan *redis.Message, errCh chan<- error) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				errCh <- fmt.Errorf("pubsub channel closed")
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				errCh <- fmt.Errorf("write message: %w", err)
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(5 * time.Second)
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), deadline); err != nil {
				errCh <- fmt.Errorf("write ping: %w", err)
				return
			}
		}
	}
}
