package model

import (
	"encoding/json"
	"time"
)

// Sync action types recorded on cart mutations.
const (
	TipoCarritoActualizado = "carrito_actualizado"
	TipoCarritoVaciado     = "carrito_vaciado"
)

// Cart mutation verbs carried in ActionData.
const (
	AccionAgregar  = "agregar"
	AccionEliminar = "eliminar"
)

// SyncAction is one entry of the append-only pending-action log. Entries are
// never deleted; replay flips Sincronizado to true and stamps
// FechaSincronizacion.
type SyncAction struct {
	ID                  int64           `json:"id"`
	Tipo                string          `json:"tipo"`
	Datos               json.RawMessage `json:"datos"`
	Timestamp           time.Time       `json:"timestamp"`
	Sincronizado        bool            `json:"sincronizado"`
	FechaSincronizacion *time.Time      `json:"fechaSincronizacion,omitempty"`
}

// ActionData is the payload recorded for carrito_actualizado actions.
type ActionData struct {
	ProductoID string `json:"productoId"`
	Accion     string `json:"accion"`
}
