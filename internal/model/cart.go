package model

import "time"

// CartItem is one cart line. ID equals the product ID, so the cart holds at
// most one row per product. Cantidad never falls below 1 while the row exists;
// a decrement that would reach 0 deletes the row instead.
type CartItem struct {
	ID                 string    `json:"id"`
	Titulo             string    `json:"titulo"`
	Precio             int64     `json:"precio"`
	Imagen             string    `json:"imagen"`
	Cantidad           int64     `json:"cantidad"`
	FechaAgregado      time.Time `json:"fechaAgregado"`
	FechaActualizacion time.Time `json:"fechaActualizacion"`
}

// Subtotal returns precio * cantidad in minor units.
func (i CartItem) Subtotal() int64 {
	return i.Precio * i.Cantidad
}

// CartSummary is the aggregate view returned to the UI adapter.
type CartSummary struct {
	Items    []CartItem `json:"items"`
	Total    int64      `json:"total"`
	Cantidad int64      `json:"cantidad"`
}
