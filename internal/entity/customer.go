package entity

import (
	"errors"
	"strings"
	"time"
)

// Status del cliente dentro del embudo de ventas.
// El archivo viejo guardaba strings libres; acá el conjunto es cerrado.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSold      Status = "sold"
	StatusActivated Status = "activated"
)

// ParseStatus normaliza strings libres (incluidos los valores legados en
// español del archivo original) al conjunto cerrado.
func ParseStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending", "pendiente":
		return StatusPending, nil
	case "sold", "vendido":
		return StatusSold, nil
	case "activated", "activado":
		return StatusActivated, nil
	}
	return "", errors.New("unknown status: " + raw)
}

// Entidad: Customer
// Un registro por número de teléfono; el número es la clave primaria.
type Customer struct {
	PhoneNumber string    `json:"phoneNumber"`
	Email       string    `json:"email"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Factory: el primer contacto siempre nace pendiente.
func NewCustomer(phoneNumber, email string, now time.Time) (*Customer, error) {
	customer := &Customer{
		PhoneNumber: phoneNumber,
		Email:       email,
		Status:      StatusPending,
		CreatedAt:   now,
	}

	if err := customer.Validate(); err != nil {
		return nil, err
	}

	return customer, nil
}

func (c *Customer) Validate() error {
	if c.PhoneNumber == "" {
		return errors.New("phoneNumber is required")
	}
	if c.Email == "" {
		return errors.New("email is required")
	}
	return nil
}
