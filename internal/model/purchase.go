package model

import "time"

// EstadoEnviadoWhatsApp marks a purchase that was handed off to WhatsApp.
const EstadoEnviadoWhatsApp = "enviado_whatsapp"

// Purchase is an immutable purchase-history record written once at checkout
// hand-off. Productos is a snapshot copy of the cart at that moment.
type Purchase struct {
	ID        string     `json:"id"`
	Fecha     time.Time  `json:"fecha"`
	Productos []CartItem `json:"productos"`
	Total     int64      `json:"total"`
	Cantidad  int64      `json:"cantidad"`
	Estado    string     `json:"estado"`
}
