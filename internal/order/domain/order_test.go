package domain

import (
	"testing"
	"time"

	"github.com/dmehra2102/marketplace-orders/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOrder() Order {
	return Order{
		BuyerID:    "buyer-1",
		SellerID:   "seller-1",
		Products:   []OrderProduct{{ProductID: "p1", Name: "Lamp", Price: 19.99, Quantity: 2}},
		TotalPrice: 39.98,
		Status:     StatusCreated,
	}
}

func fields(t *testing.T, err error) []string {
	t.Helper()
	v, ok := apperr.AsValidation(err)
	require.True(t, ok, "expected validation error, got %v", err)
	out := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		out = append(out, f.Field)
	}
	return out
}

func TestOrderValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *Order)
		want   []string
	}{
		{"valid", func(*Order) {}, nil},
		{"missing parties", func(o *Order) { o.BuyerID, o.SellerID = "", "" }, []string{"buyerId", "sellerId"}},
		{"no products", func(o *Order) { o.Products = nil }, []string{"products"}},
		{"zero quantity", func(o *Order) { o.Products[0].Quantity = 0 }, []string{"products[0].quantity"}},
		{"three decimals", func(o *Order) { o.Products[0].Price = 1.005 }, []string{"products[0].price"}},
		{"negative total", func(o *Order) { o.TotalPrice = -1 }, []string{"totalPrice"}},
		{"unknown status", func(o *Order) { o.Status = "SHIPPED" }, []string{"status"}},
		{"inquiry with two lines", func(o *Order) {
			o.Status = StatusInquiry
			o.Products = append(o.Products, OrderProduct{ProductID: "p2", Price: 1, Quantity: 1})
		}, []string{"products"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOrder()
			o.Products = append([]OrderProduct(nil), o.Products...)
			tt.mutate(&o)
			err := o.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ElementsMatch(t, tt.want, fields(t, err))
		})
	}
}

func TestValidPrice(t *testing.T) {
	assert.True(t, ValidPrice(0))
	assert.True(t, ValidPrice(10))
	assert.True(t, ValidPrice(10.5))
	assert.True(t, ValidPrice(10.55))
	assert.False(t, ValidPrice(10.555))
	assert.False(t, ValidPrice(-0.01))
}

func TestNewInquiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := Product{ID: "p1", OwnerID: "seller-1", Name: "Lamp", Description: "Desk lamp", Price: 25.5}

	o := NewInquiry(p, "buyer-1", 1, now)

	assert.Equal(t, StatusInquiry, o.Status)
	assert.Equal(t, "seller-1", o.SellerID)
	assert.Equal(t, "buyer-1", o.BuyerID)
	assert.Equal(t, 25.5, o.TotalPrice)
	assert.Equal(t, []OrderProduct{{ProductID: "p1", Name: "Lamp", Description: "Desk lamp", Price: 25.5, Quantity: 1}}, o.Products)
	assert.NotNil(t, o.ChatHistory)
	assert.Empty(t, o.ChatHistory)
	assert.Equal(t, now, o.CreatedAt)
	assert.NoError(t, o.Validate())
}

func TestOrderPatch(t *testing.T) {
	status := StatusConfirmed
	total := 12.5
	patch := OrderPatch{Status: &status, TotalPrice: &total}
	require.NoError(t, patch.Validate())
	assert.False(t, patch.Empty())

	o := validOrder()
	got := patch.Apply(o)
	assert.Equal(t, StatusConfirmed, got.Status)
	assert.Equal(t, 12.5, got.TotalPrice)
	assert.Equal(t, o.BuyerID, got.BuyerID)
	assert.Equal(t, o.Products, got.Products)

	bad := OrderStatus("SHIPPED")
	assert.Equal(t, []string{"status"}, fields(t, OrderPatch{Status: &bad}.Validate()))
	assert.True(t, OrderPatch{}.Empty())
}

func TestChatMessageValidate(t *testing.T) {
	ok := ChatMessage{Text: "is it still available?", SenderID: "buyer-1", Role: RoleBuyer}
	assert.NoError(t, ok.Validate())

	err := ChatMessage{Text: "  ", Role: "admin"}.Validate()
	assert.ElementsMatch(t, []string{"text", "senderId", "role"}, fields(t, err))
}
