package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Events 通过 SSE 把变更推送流转发给客户端。
// 订阅 feed:* 下的所有频道，事件名为频道去掉前缀后的集合名
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.errorResponse(w, r, "当前连接不支持事件推送")
		return
	}

	// 服务器全局的 WriteTimeout 会切断长连接，这里单独取消写超时
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	sub := h.redisClient.PSubscribe(r.Context(), "feed:*")
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	// 定期发送心跳，避免中间代理断开空闲连接
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	messages := sub.Channel()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg, isOpen := <-messages:
			if !isOpen {
				return
			}
			collection := strings.TrimPrefix(msg.Channel, "feed:")
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", collection, msg.Payload)
			flusher.Flush()
		}
	}
}
