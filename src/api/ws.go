package api

import (
	"strings"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/chatify/backend/src/hub"
	"github.com/chatify/backend/src/types"
)

const wsCloseWriteWait = 5 * time.Second

var upgrader = websocket.FastHTTPUpgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(ctx *fasthttp.RequestCtx) bool { return true },
}

// WebSocketHandler returns a raw fasthttp handler serving
// /ws/chats/{chat_id}?token=... upgrades. It runs at the fasthttp
// level, outside the fiber app, because fiber v3 does not expose the
// *fasthttp.RequestCtx that FastHTTPUpgrader needs.
//
// The credential is resolved before the handshake. A rejected attempt
// still completes the upgrade, but the only thing the client ever
// observes is a policy-violation close frame; the registry is never
// touched.
func (a *API) WebSocketHandler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		upgrade := string(ctx.Request.Header.Peek("Upgrade"))
		if !strings.EqualFold(upgrade, "websocket") {
			ctx.SetStatusCode(fasthttp.StatusUpgradeRequired)
			ctx.SetBodyString(`{"error":"upgrade_required"}`)
			return
		}

		chatID, ok := parseChatPath(string(ctx.Path()))
		if !ok {
			ctx.SetStatusCode(fasthttp.StatusNotFound)
			return
		}

		token := string(ctx.QueryArgs().Peek("token"))
		user, authErr := a.verifier.Resolve(ctx, token)

		err := upgrader.Upgrade(ctx, func(conn *websocket.Conn) {
			if authErr != nil {
				a.logger.Warn().
					Err(authErr).
					Str("chat_id", chatID.String()).
					Msg("websocket admission rejected")
				rejectConn(conn, authErr.Error())
				return
			}

			client := hub.NewClient(user.ID, chatID, &wsConn{conn})
			a.registry.Admit(chatID, client)
			client.ReadPump(a.registry)
		})
		if err != nil {
			a.logger.Error().Err(err).Msg("websocket upgrade failed")
		}
	}
}

// parseChatPath extracts the chat id from /ws/chats/{chat_id}.
func parseChatPath(path string) (uuid.UUID, bool) {
	const prefix = "/ws/chats/"
	if !strings.HasPrefix(path, prefix) {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimPrefix(path, prefix))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// rejectConn completes a refused admission: the handshake already
// happened, so the policy-violation close frame is the entire
// conversation.
func rejectConn(conn *websocket.Conn, reason string) {
	deadline := time.Now().Add(wsCloseWriteWait)
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
	_ = conn.Close()
}

// wsConn adapts fasthttp/websocket.Conn to types.Conn.
type wsConn struct {
	conn *websocket.Conn
}

func (w *wsConn) WriteJSON(v any) error { return w.conn.WriteJSON(v) }
func (w *wsConn) ReadJSON(v any) error  { return w.conn.ReadJSON(v) }
func (w *wsConn) Close() error          { return w.conn.Close() }

var _ types.Conn = (*wsConn)(nil)
