package dto

// WebhookEvent cuerpo del webhook de TiendaNube.
type WebhookEvent struct {
	StoreID   int64  `json:"store_id"`
	EventType string `json:"event"`
	EntityID  int64  `json:"id"`
}

// WebhookResponse resultado del procesamiento del webhook.
type WebhookResponse struct {
	Status  string `json:"status"`
	EventID string `json:"event_id,omitempty"`
}
