package provider

import (
	"testing"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()

	assert.Equal(t, []domain.Provider{
		domain.ProviderCJDropshipping,
		domain.ProviderMock,
		domain.ProviderPrintful,
		domain.ProviderPrintify,
	}, reg.Providers())

	for _, p := range reg.Providers() {
		a, err := reg.Get(p)
		require.NoError(t, err)
		assert.Equal(t, p, a.Provider())
		assert.NotEmpty(t, a.DefaultBaseURL())
	}

	_, err := reg.Get("shopify")
	assert.ErrorIs(t, err, e.ErrUnknownProvider)
	assert.False(t, reg.Has("shopify"))
}

func TestAdapters_UnknownCategoryFallsBackToGeneral(t *testing.T) {
	for _, p := range DefaultRegistry().Providers() {
		a, err := DefaultRegistry().Get(p)
		require.NoError(t, err)
		assert.Equal(t, domain.CategoryGeneral, a.MapExternalToCategory(""), p)
		assert.Equal(t, domain.CategoryGeneral, a.MapExternalToCategory("Definitely Not A Category"), p)
	}
}

func TestAdapters_GarbledPayloadsDegrade(t *testing.T) {
	payloads := [][]byte{
		nil,
		[]byte(`not json`),
		[]byte(`[]`),
		[]byte(`{"result": "nope", "data": 5, "items": {"x": 1}}`),
		[]byte(`{"result": [{"id": null}], "data": {"list": [{"pid": ""}]}, "items": [{}]}`),
	}

	for _, p := range DefaultRegistry().Providers() {
		a, err := DefaultRegistry().Get(p)
		require.NoError(t, err)
		for _, raw := range payloads {
			assert.NotPanics(t, func() {
				assert.Empty(t, a.ParseProductList(raw))
				assert.GreaterOrEqual(t, a.ParseStockResponse(raw), 0)
				res := a.ParseOrderResult(raw)
				assert.Empty(t, res.ExternalOrderID)
			}, p)
		}
	}
}
