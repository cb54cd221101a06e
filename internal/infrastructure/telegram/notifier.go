// Package telegram implementa el destino de notificaciones: mensajes salientes
// del barrido diario (conciliaciones y alertas de vencimiento) vía Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain"
	"github.com/MiltonKlun/Pombot-PG-Original/pkg/logger"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier envía mensajes a un chat fijo.
type Notifier struct {
	apiBase    string
	botToken   string
	chatID     string
	httpClient *http.Client
	log        *logger.Logger
}

// NewNotifier construye el notificador para el chat configurado.
func NewNotifier(botToken, chatID string, log *logger.Logger) *Notifier {
	return &Notifier{
		apiBase:    defaultAPIBase,
		botToken:   botToken,
		chatID:     chatID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// WithAPIBase apunta el notificador a otra URL base. Para tests.
func (n *Notifier) WithAPIBase(base string) *Notifier {
	n.apiBase = base
	return n
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send envía un mensaje en Markdown al chat configurado.
func (n *Notifier) Send(text string) error {
	if text == "" {
		return nil
	}
	payload, err := json.Marshal(sendMessageRequest{
		ChatID:    n.chatID,
		Text:      text,
		ParseMode: "Markdown",
	})
	if err != nil {
		return fmt.Errorf("serializando mensaje: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("armando request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: %v: %w", err, domain.ErrNotConnected)
	}
	defer resp.Body.Close()

	var result sendMessageResponse
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &result); err != nil || !result.OK {
		return fmt.Errorf("telegram devolvió %d: %s", resp.StatusCode, string(raw))
	}
	n.log.Info().Int("caracteres", len(text)).Msg("notificación enviada")
	return nil
}
