// Package dto define los cuerpos de request/response de la capa HTTP.
package dto

// ErrorResponse error uniforme de la API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SyncResponse resultado de la sincronización de catálogo.
type SyncResponse struct {
	Synced int `json:"synced"`
}
