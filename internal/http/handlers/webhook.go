package handlers

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"timeguesser/internal/logger"

	"github.com/gin-gonic/gin"
)

// webhookEnvelope is the signed mini app event: payload is base64url JSON.
type webhookEnvelope struct {
	Event   string `json:"event"`
	Header  string `json:"header"`
	Payload string `json:"payload"`
}

// Webhook acknowledges mini app lifecycle events (frame_added,
// notifications_enabled, ...). Malformed bodies are acknowledged too.
func (h *Handler) Webhook(c *gin.Context) {
	body, _ := io.ReadAll(io.LimitReader(c.Request.Body, 64<<10))

	var env webhookEnvelope
	_ = json.Unmarshal(body, &env)

	logger.WithContext(c.Request.Context()).Info("mini app webhook event",
		"event", webhookEventName(env), "bytes", len(body))

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// WebhookHealth answers GET probes on the webhook URL.
func (h *Handler) WebhookHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func webhookEventName(env webhookEnvelope) string {
	if env.Event != "" {
		return env.Event
	}
	if env.Payload == "" {
		return "unknown"
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(env.Payload, "="))
	if err != nil {
		return "unknown"
	}
	var payload struct {
		Event string `json:"event"`
	}
	if json.Unmarshal(raw, &payload) != nil || payload.Event == "" {
		return "unknown"
	}
	return payload.Event
}
