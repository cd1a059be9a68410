package request

import "github.com/shopspring/decimal"

type CreateBookingRequest struct {
	ClientName  string          `json:"client_name" validate:"required,min=2,max=150"`
	ClientEmail string          `json:"client_email" validate:"required,email"`
	ClientPhone string          `json:"client_phone" validate:"required,min=7,max=20"`
	EventDate   string          `json:"event_date" validate:"required,datetime=2006-01-02"`
	Venue       string          `json:"venue" validate:"max=200"`
	PackageName string          `json:"package_name" validate:"max=150"`
	TotalAmount decimal.Decimal `json:"total_amount" validate:"required"`
}

type UpdateBookingRequest struct {
	ClientName  string          `json:"client_name" validate:"required,min=2,max=150"`
	ClientEmail string          `json:"client_email" validate:"required,email"`
	ClientPhone string          `json:"client_phone" validate:"required,min=7,max=20"`
	EventDate   string          `json:"event_date" validate:"required,datetime=2006-01-02"`
	Venue       string          `json:"venue" validate:"max=200"`
	PackageName string          `json:"package_name" validate:"max=150"`
	TotalAmount decimal.Decimal `json:"total_amount" validate:"required"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed completed cancelled"`
}
