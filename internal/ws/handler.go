package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/blockroyale-backend/internal/hub"
	"github.com/DoyleJ11/blockroyale-backend/internal/types"
)

const readLimit = 64 << 10

type Options struct {
	AllowedOrigins []string
	WriteTimeout   time.Duration
	PingInterval   time.Duration
	PongTimeout    time.Duration
	OutboxSize     int
}

func (o Options) withDefaults() Options {
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 3 * time.Second
	}
	if o.PingInterval <= 0 {
		o.PingInterval = 25 * time.Second
	}
	if o.PongTimeout <= 0 {
		o.PongTimeout = 10 * time.Second
	}
	if o.OutboxSize <= 0 {
		o.OutboxSize = 32
	}
	return o
}

func Handler(h *hub.Hub, gw *Gateway, log *zap.Logger, opts Options) http.HandlerFunc {
	opts = opts.withDefaults()
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.AllowedOrigins,
		})
		if err != nil {
			log.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")
		conn.SetReadLimit(readLimit)

		connID := uuid.NewString()
		clog := log.With(zap.String("conn", connID))
		out, kicked := gw.Register(connID, opts.OutboxSize)
		defer gw.Unregister(connID)

		sess := &session{id: connID, hub: h, gw: gw, log: clog}
		defer sess.disconnect()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine
		go func() {
			defer cancel()
			for {
				select {
				case payload, ok := <-out:
					if !ok {
						return
					}
					wctx, wcancel := context.WithTimeout(ctx, opts.WriteTimeout)
					err := conn.Write(wctx, websocket.MessageText, payload)
					wcancel()
					if err != nil {
						return
					}
				case <-kicked:
					_ = conn.Close(websocket.StatusPolicyViolation, "too slow")
					return
				case <-ctx.Done():
					return
				}
			}
		}()

		// Keepalive: a missed pong tears the connection down, which ends the reader loop.
		go func() {
			ticker := time.NewTicker(opts.PingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					pctx, pcancel := context.WithTimeout(ctx, opts.PongTimeout)
					err := conn.Ping(pctx)
					pcancel()
					if err != nil {
						cancel()
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}()

		clog.Info("client connected")
		defer clog.Info("client disconnected")

		// Reader loop
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					if !errors.Is(err, context.Canceled) {
						clog.Debug("read failed", zap.Error(err))
					}
				}
				return
			}

			in, err := types.Decode(data)
			if err != nil {
				clog.Debug("frame ignored", zap.Error(err))
				continue
			}
			sess.handle(ctx, in)
		}
	}
}
