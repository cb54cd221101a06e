// Package events implementa el registro de idempotencia: un log append-only
// de IDs de eventos externos (mensajes de chat, webhooks) que garantiza
// efectos como-máximo-una-vez frente a reintentos y entregas duplicadas.
package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/ledger"
	"github.com/MiltonKlun/Pombot-PG-Original/pkg/logger"
)

const timestampLayout = "2006-01-02 15:04:05"

// Gate consulta y registra IDs de eventos procesados.
type Gate struct {
	store ledger.Store
	log   *logger.Logger
	now   func() time.Time
}

// NewGate construye el gate sobre el libro contable.
func NewGate(store ledger.Store, log *logger.Logger) *Gate {
	return &Gate{store: store, log: log, now: time.Now}
}

// ChatEventID arma el ID de un evento originado en el chat.
func ChatEventID(userID int64, messageID int) string {
	return fmt.Sprintf("%d-%d", userID, messageID)
}

// WebhookEventID arma el ID de un evento entrante de la tienda.
func WebhookEventID(storeID int64, eventType string, entityID int64) string {
	return fmt.Sprintf("%d-%s-%d", storeID, eventType, entityID)
}

// IsNewAndRecord devuelve true y registra el ID si el evento no fue visto;
// false si ya existe (duplicado, el llamador debe omitir el efecto). El error
// solo se devuelve cuando el backend impide decidir.
func (g *Gate) IsNewAndRecord(eventID string) (bool, error) {
	if eventID == "" {
		return false, fmt.Errorf("event id vacío: %w", domain.ErrValidation)
	}
	table, err := ledger.EnsureTable(g.store, ledger.ProcessedEventsTable, ledger.ProcessedEventsHeaders)
	if err != nil {
		return false, err
	}
	_, err = table.Find(eventID, 1)
	if err == nil {
		g.log.Warn().Str("event_id", eventID).Msg("evento duplicado detectado y omitido")
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}
	if err := table.AppendRow([]any{eventID, g.now().Format(timestampLayout)}); err != nil {
		return false, err
	}
	g.log.Info().Str("event_id", eventID).Msg("evento nuevo registrado como procesado")
	return true, nil
}

// AllowChat es la variante fail-open para acciones del chat: si el registro
// está inaccesible deja pasar la operación (se acepta el riesgo de duplicado
// antes que bloquear al usuario).
func (g *Gate) AllowChat(eventID string) bool {
	isNew, err := g.IsNewAndRecord(eventID)
	if err != nil {
		g.log.Error().Err(err).Str("event_id", eventID).
			Msg("registro de idempotencia inaccesible; se permite la acción de chat")
		return true
	}
	return isNew
}

// AllowWebhook es la variante fail-closed para webhooks: sin registro no hay
// procesamiento, porque un webhook sin log podría duplicar un asiento.
func (g *Gate) AllowWebhook(eventID string) (bool, error) {
	return g.IsNewAndRecord(eventID)
}

// LogWebhook asienta el evento en la tabla de auditoría Webhook_Logs.
// La tabla no se auto-crea: su ausencia es un problema de configuración.
func (g *Gate) LogWebhook(eventID, eventType string, orderID int64) error {
	table, err := g.store.Table(ledger.WebhookLogsTable)
	if err != nil {
		return fmt.Errorf("tabla %s: %w", ledger.WebhookLogsTable, err)
	}
	return table.AppendRow([]any{eventID, eventType, orderID, g.now().Format(timestampLayout)})
}

// WithClock fija el reloj del gate. Para tests.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}
