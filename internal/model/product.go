package model

import "time"

// Category identifies a product category.
type Category struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}

// Product is immutable reference data loaded in bulk from the catalog file.
// Precio is in minor currency units (whole Colombian pesos).
type Product struct {
	ID                 string    `json:"id"`
	Titulo             string    `json:"titulo"`
	Precio             int64     `json:"precio"`
	Imagen             string    `json:"imagen"`
	Categoria          Category  `json:"categoria"`
	FechaActualizacion time.Time `json:"fechaActualizacion,omitempty"`
}
