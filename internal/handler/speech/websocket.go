package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/femoon/tts-azure-web/backend/internal/model/speech"
	speechsvc "github.com/femoon/tts-azure-web/backend/internal/service/speech"
	"github.com/femoon/tts-azure-web/backend/pkg/utils"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second

	messageTypeAudio = "audio"
	messageTypeError = "error"
)

type outgoingMessage struct {
	Type      string      `json:"type"`
	RequestID string      `json:"requestId"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

// handleAudioWebSocket 在一条连接上顺序处理多次合成：
// 每个文本帧是一个 SynthesisRequest，每次回复一个 audio 或 error 帧。
func (h *Handler) handleAudioWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("component", "speech-ws").Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadLimit(maxRequestBytes)
	extendRead := func() error {
		return conn.SetReadDeadline(time.Now().Add(h.pongWait))
	}
	_ = extendRead()
	conn.SetPongHandler(func(string) error { return extendRead() })

	// 写操作统一走 writes，ping 与回复不会并发写同一连接
	writes := make(chan outgoingMessage)
	done := make(chan struct{})
	go h.writeLoop(conn, writes, done)
	defer func() {
		close(writes)
		<-done
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("component", "speech-ws").Msg("websocket closed unexpectedly")
			}
			return
		}
		// 合成期间不读连接，对端的 pong 无法及时处理，读到消息后与回复后都要续期
		_ = extendRead()
		if messageType != websocket.TextMessage {
			continue
		}

		select {
		case writes <- h.synthesizeFrame(ctx, data):
		case <-done:
			return
		}
		_ = extendRead()
	}
}

func (h *Handler) writeLoop(conn *websocket.Conn, writes <-chan outgoingMessage, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(h.pongWait * 9 / 10)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-writes:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(msg); err != nil {
				log.Warn().Err(err).Str("component", "speech-ws").Msg("failed to write websocket message")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// synthesizeFrame 处理单个请求帧；失败时与 HTTP 端点一样只返回通用错误
func (h *Handler) synthesizeFrame(ctx context.Context, data []byte) outgoingMessage {
	id := uuid.NewString()
	ctx = speechsvc.WithRequestID(ctx, id)

	if !h.allowFrame() {
		log.Warn().Str("component", "speech-ws").Str("request_id", id).Msg("synthesis frame rate limited")
		return errorMessage(id)
	}

	var req speech.SynthesisRequest
	if err := json.Unmarshal(data, &req); err != nil {
		logFailure(ctx, "audio-ws", speechsvc.NewInvalidArgument("DecodeRequest", "malformed synthesis request", err))
		return errorMessage(id)
	}

	resp, err := h.speechSvc.Synthesize(ctx, &req)
	if err != nil {
		logFailure(ctx, "audio-ws", err)
		return errorMessage(id)
	}

	return outgoingMessage{
		Type:      messageTypeAudio,
		RequestID: id,
		Data:      resp,
		Timestamp: time.Now().UnixMilli(),
	}
}

func errorMessage(id string) outgoingMessage {
	return outgoingMessage{
		Type:      messageTypeError,
		RequestID: id,
		Data:      speech.ErrorResponse{Error: utils.GenericErrorMessage},
		Timestamp: time.Now().UnixMilli(),
	}
}
