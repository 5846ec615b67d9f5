package converter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogConverter_Decimals(t *testing.T) {
	weight := decimal.RequireFromString("0.250")
	entry := domain.NewCatalogEntry(domain.SupplierProduct{
		Provider:   domain.ProviderCJDropshipping,
		ExternalID: "CJ-1",
		Title:      "Lamp",
		Price:      decimal.RequireFromString("19.99"),
		Weight:     &weight,
		Dimensions: &domain.Dimensions{
			Length: decimal.NewFromInt(10),
			Width:  decimal.NewFromInt(5),
			Height: decimal.RequireFromString("2.5"),
		},
		Variants: json.RawMessage(`[{"vid":"v1"}]`),
	})
	entry.CreatedAt = time.Now().UTC()

	var conv CatalogConverter
	model, err := conv.ToModel(entry)
	require.NoError(t, err)
	assert.Equal(t, "19.99", model.Price)
	require.NotNil(t, model.Weight)
	assert.Equal(t, "0.25", *model.Weight)
	assert.NotNil(t, model.Tags)
	assert.NotNil(t, model.Images)

	got, err := conv.ToEntity(model)
	require.NoError(t, err)
	assert.True(t, got.Product.Price.Equal(entry.Product.Price))
	assert.True(t, got.Product.Weight.Equal(weight))
	assert.True(t, got.Product.Dimensions.Height.Equal(decimal.RequireFromString("2.5")))
	assert.JSONEq(t, `[{"vid":"v1"}]`, string(got.Product.Variants))
	assert.Equal(t, entry.StorefrontProductID, got.StorefrontProductID)
}

func TestCatalogConverter_DropsInvalidVariants(t *testing.T) {
	entry := domain.NewCatalogEntry(domain.SupplierProduct{
		Provider:   domain.ProviderMock,
		ExternalID: "MOCK-0001",
		Variants:   json.RawMessage(`{broken`),
	})

	model, err := CatalogConverter{}.ToModel(entry)
	require.NoError(t, err)
	assert.Nil(t, model.Variants)
	assert.Nil(t, model.Weight)
	assert.Nil(t, model.Dimensions)
}

func TestFulfillmentConverter_OptionalColumns(t *testing.T) {
	record := &domain.FulfillmentRecord{
		ID:                uuid.New(),
		OrderID:           "order-1",
		Provider:          domain.ProviderMock,
		ProductExternalID: "MOCK-0001",
		Customer:          domain.Customer{Name: "Ada Lovelace"},
		ShippingAddress:   domain.ShippingAddress{Country: "GB"},
		Quantity:          1,
		Status:            domain.FulfillmentStatusFailed,
		ErrorMessage:      "supplier said no",
		RawResponse:       json.RawMessage(`not json`),
		CreatedAt:         time.Now().UTC(),
	}

	var conv FulfillmentConverter
	model, err := conv.ToModel(record)
	require.NoError(t, err)
	assert.Nil(t, model.ExternalOrderID)
	assert.Nil(t, model.RawResponse)
	require.NotNil(t, model.ErrorMessage)

	got, err := conv.ToEntity(model)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.Customer.Name)
	assert.Equal(t, "GB", got.ShippingAddress.Country)
	assert.Equal(t, "supplier said no", got.ErrorMessage)
	assert.Empty(t, got.ExternalOrderID)
}

func TestSyncLogConverter_EmptyErrorsStoredAsArray(t *testing.T) {
	entry := &domain.SyncLogEntry{
		ID:        uuid.New(),
		Operation: domain.SyncOperationSync,
		Provider:  domain.ProviderMock,
		Outcome:   domain.SyncOutcomeSuccess,
	}

	model, err := SyncLogConverter{}.ToModel(entry)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(model.Errors))
	assert.Nil(t, model.SnapshotKey)
}
