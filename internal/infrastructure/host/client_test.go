package host

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warawul/backend/internal/domain/catalog"
	"github.com/warawul/backend/internal/domain/notification"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(NewConfig(server.URL, "host-token"))
	require.NoError(t, err)
	return client
}

func TestConfigRequiresBaseURL(t *testing.T) {
	_, err := NewClient(&Config{})
	assert.ErrorIs(t, err, ErrConfigMissingBaseURL)
}

func TestRetrieveProduct(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/admin/products/prod_01", r.URL.Path)
		assert.Equal(t, "Bearer host-token", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`{"product": {
			"id": "prod_01",
			"title": "Espresso Blend",
			"handle": "espresso-blend",
			"type": {"value": "coffee"},
			"tax_rates": [7],
			"variants": [{
				"id": "variant_01",
				"product_id": "prod_01",
				"sku": "ESP-250",
				"title": "250g",
				"prices": [{"amount": 1250, "currency_code": "eur"}],
				"metadata": {"lexoffice_uuid": "art-1"}
			}]
		}}`))
	})

	product, err := client.RetrieveProduct(context.Background(), "prod_01")
	require.NoError(t, err)

	assert.Equal(t, "Espresso Blend", product.Title)
	assert.Equal(t, "coffee", product.Type)
	require.Len(t, product.Variants, 1)

	variant := product.Variants[0]
	assert.Equal(t, int64(1250), variant.PriceCents)
	assert.True(t, variant.Price().Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, "art-1", variant.Metadata[catalog.MetadataKeyArticleID])
}

func TestRetrieveProductNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.RetrieveProduct(context.Background(), "prod_99")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestRetrieveOrderConvertsAmounts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/orders/order_01", r.URL.Path)
		_, _ = w.Write([]byte(`{"order": {
			"id": "order_01",
			"display_id": 1042,
			"email": "kunde@example.com",
			"currency_code": "eur",
			"items": [{
				"id": "item_01",
				"title": "Espresso Blend",
				"product_type": "coffee",
				"quantity": 2,
				"unit_price": 1800,
				"tax_lines": [{"rate": 19}],
				"variant": {"id": "variant_01", "sku": "ESP-250"}
			}],
			"shipping_methods": [{"name": "DHL Paket", "price": 200, "tax_lines": [{"rate": 19}]}],
			"subtotal": 3193,
			"total": 3800
		}}`))
	})

	order, err := client.RetrieveOrder(context.Background(), "order_01")
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	item := order.Items[0]
	assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("18.00")))
	assert.True(t, item.Quantity.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, "variant_01", item.VariantID)

	require.Len(t, order.ShippingMethods, 1)
	assert.True(t, order.ShippingMethods[0].Amount.Equal(decimal.RequireFromString("2.00")))
	assert.True(t, order.Total.Equal(decimal.RequireFromString("38.00")))
}

func TestRetrieveOrderUsesNestedProductType(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"order": {
			"id": "order_02",
			"display_id": 1043,
			"items": [{
				"id": "item_01",
				"quantity": 1,
				"unit_price": 1250,
				"product": {"title": "Espresso Blend", "type": {"value": "coffee"}}
			}]
		}}`))
	})

	order, err := client.RetrieveOrder(context.Background(), "order_02")
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	item := order.Items[0]
	assert.Equal(t, "coffee", item.ProductType)
	assert.Equal(t, "Espresso Blend", item.ProductTitle)
	assert.True(t, catalog.IsCoffeeItem(item))
}

func TestUpdateVariantMetadata(t *testing.T) {
	var received metadataUpdateBody
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/variants/variant_01/metadata", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	})

	err := client.UpdateVariantMetadata(context.Background(), "variant_01",
		map[string]string{catalog.MetadataKeyArticleID: "art-1"})
	require.NoError(t, err)
	assert.Equal(t, "art-1", received.Metadata[catalog.MetadataKeyArticleID])
}

func TestNotifierSend(t *testing.T) {
	var received notificationBody
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/notifications", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
	})

	notifier := NewNotifier(client)
	err := notifier.Send(context.Background(), notification.Message{
		To:       "kunde@example.com",
		Channel:  notification.ChannelEmail,
		Template: "order-placed",
		Data:     map[string]any{"order_id": "order_01"},
	})
	require.NoError(t, err)
	assert.Equal(t, "kunde@example.com", received.To)
	assert.Equal(t, "order-placed", received.Template)
}
