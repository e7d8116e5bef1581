package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const OrderStatusPending = "pending"

type ShippingAddress struct {
	Name       string `json:"name" validate:"required,min=2"`
	Address    string `json:"address" validate:"required,min=5"`
	City       string `json:"city" validate:"required,min=2"`
	PostalCode string `json:"postalCode" validate:"required,min=4"`
	Country    string `json:"country" validate:"required,min=2"`
}

type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Items           []CartItem      `json:"items"`
	Total           decimal.Decimal `json:"total"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
}
