package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/google/uuid"
)

// FulfillmentStatus — итог попытки передать заказ поставщику.
type FulfillmentStatus string

const (
	FulfillmentStatusSent   FulfillmentStatus = "sent"
	FulfillmentStatusFailed FulfillmentStatus = "failed"
)

// Customer — снимок покупателя на момент попытки.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// ShippingAddress — снимок адреса доставки на момент попытки.
type ShippingAddress struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"` // ISO 3166-1 alpha-2
}

// SupplierOrder — внутренний заказ, который адаптер кодирует в формат поставщика.
type SupplierOrder struct {
	OrderID           string
	ProductExternalID string
	Customer          Customer
	ShippingAddress   ShippingAddress
	Quantity          int
}

// OrderResult — нормализованный ответ поставщика на создание заказа.
type OrderResult struct {
	ExternalOrderID string
	TrackingNumber  *string
	// Rejected — поставщик ответил 2xx, но отказал в заказе в теле ответа.
	Rejected bool
	Message  string
}

// FulfillmentRecord — одна попытка передачи заказа; пишется и при успехе, и при ошибке.
type FulfillmentRecord struct {
	ID                uuid.UUID
	OrderID           string
	ExternalOrderID   string
	Provider          Provider
	ProductExternalID string
	Customer          Customer
	ShippingAddress   ShippingAddress
	Quantity          int
	Status            FulfillmentStatus
	TrackingNumber    *string
	ErrorMessage      string
	RawResponse       json.RawMessage
	CreatedAt         time.Time
}

// FulfillmentError — поставщик не принял заказ: ответ не 2xx, транспортная ошибка
// или отказ в теле 2xx-ответа. Status = 0, если ответа не было.
type FulfillmentError struct {
	Provider Provider
	Status   int
	Body     []byte
	Message  string
}

func (f *FulfillmentError) Error() string {
	if f.Status == 0 {
		return fmt.Sprintf("%s: %s order rejected: %s", e.ErrTransportFailure, f.Provider, f.Message)
	}
	return fmt.Sprintf("%s: %s order rejected with status %d: %s", e.ErrTransportFailure, f.Provider, f.Status, f.Message)
}

func (f *FulfillmentError) Unwrap() error {
	return e.ErrTransportFailure
}
