package repository

import (
	"testing"

	"renovation/internal/app/ds"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderLifecycle(t *testing.T) {
	r := newTestRepository(t)
	f := seed(t, r)

	chair := f.specItem(t, r, "Dining chair", 6, "120", nil)
	table := f.specItem(t, r, "Dining table", 1, "900", nil)

	order, err := r.CreateOrder(OrderInput{
		ProjectID:  f.project.ID,
		SupplierID: f.supplier.ID,
		Items: []OrderItemInput{
			{SpecItemID: &chair.ID, UnitPrice: dec("120")},
			{SpecItemID: &table.ID, UnitPrice: dec("900")},
		},
		ShippingCost: dec("80"),
		CreatedByID:  f.user.ID,
	})
	require.NoError(t, err)
	assert.Contains(t, order.Number, "PO-")
	require.Len(t, order.Items, 2)
	assert.Equal(t, 6, order.Items[0].Quantity)
	assert.Equal(t, "720.00", order.Items[0].TotalPrice.StringFixed(2))
	assert.Equal(t, "1700.00", order.Subtotal.StringFixed(2))
	assert.Equal(t, "1954.58", order.Total.StringFixed(2))

	assert.ErrorIs(t, r.ConfirmOrder(order.ID), ErrInvalidStatus)
	require.NoError(t, r.SendOrder(order.ID))

	item, err := r.GetSpecItem(chair.ID)
	require.NoError(t, err)
	assert.Equal(t, ds.SpecItemOrdered, item.Status)

	_, err = r.AddOrderItem(order.ID, OrderItemInput{Description: "Cushions", Quantity: 2, UnitPrice: dec("10")})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	require.NoError(t, r.ConfirmOrder(order.ID))

	chairLine, tableLine := order.Items[0].ID, order.Items[1].ID
	_, err = r.ReceiveOrderItems(order.ID, map[uint]int{chairLine: 7})
	assert.ErrorIs(t, err, ErrValidation)

	order, err = r.ReceiveOrderItems(order.ID, map[uint]int{chairLine: 6})
	require.NoError(t, err)
	assert.Equal(t, ds.OrderPartiallyReceived, order.Status)
	item, err = r.GetSpecItem(chair.ID)
	require.NoError(t, err)
	assert.Equal(t, ds.SpecItemDelivered, item.Status)

	order, err = r.ReceiveOrderItems(order.ID, map[uint]int{tableLine: 1})
	require.NoError(t, err)
	assert.Equal(t, ds.OrderReceived, order.Status)
	assert.NotNil(t, order.ReceivedAt)

	assert.ErrorIs(t, r.CancelOrder(order.ID), ErrInvalidStatus)
}

func TestDraftOrderEditing(t *testing.T) {
	r := newTestRepository(t)
	f := seed(t, r)

	order, err := r.CreateOrder(OrderInput{
		ProjectID:  f.project.ID,
		SupplierID: f.supplier.ID,
		Items:      []OrderItemInput{{Description: "Paint", Quantity: 4, UnitPrice: dec("45.50")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "182.00", order.Subtotal.StringFixed(2))

	order, err = r.AddOrderItem(order.ID, OrderItemInput{Description: "Brushes", Quantity: 3, UnitPrice: dec("6")})
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "200.00", order.Subtotal.StringFixed(2))

	order, err = r.RemoveOrderItem(order.ID, order.Items[0].ID)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "18.00", order.Subtotal.StringFixed(2))

	_, err = r.RemoveOrderItem(order.ID, order.Items[0].ID)
	assert.ErrorIs(t, err, ErrValidation)

	shipping := dec("12")
	order, err = r.UpdateOrder(order.ID, OrderUpdate{ShippingCost: &shipping})
	require.NoError(t, err)
	assert.Equal(t, "30.00", order.Subtotal.StringFixed(2))

	require.NoError(t, r.DeleteOrder(order.ID))
	_, err = r.GetOrder(order.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, r.DeleteOrder(order.ID), ErrNotFound)
}

func TestCreateOrder_Validation(t *testing.T) {
	r := newTestRepository(t)
	f := seed(t, r)

	_, err := r.CreateOrder(OrderInput{ProjectID: f.project.ID, SupplierID: f.supplier.ID})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = r.CreateOrder(OrderInput{
		ProjectID:  f.project.ID,
		SupplierID: 42,
		Items:      []OrderItemInput{{Description: "x", Quantity: 1, UnitPrice: decimal.Zero}},
	})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, r.DeleteSupplier(f.supplier.ID))
	_, err = r.CreateOrder(OrderInput{
		ProjectID:  f.project.ID,
		SupplierID: f.supplier.ID,
		Items:      []OrderItemInput{{Description: "x", Quantity: 1, UnitPrice: decimal.Zero}},
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOrders_Filters(t *testing.T) {
	r := newTestRepository(t)
	f := seed(t, r)

	other := &ds.Supplier{Name: "Lumière Inc"}
	require.NoError(t, r.CreateSupplier(other))

	for _, sid := range []uint{f.supplier.ID, other.ID, other.ID} {
		_, err := r.CreateOrder(OrderInput{
			ProjectID:  f.project.ID,
			SupplierID: sid,
			Items:      []OrderItemInput{{Description: "Item", Quantity: 1, UnitPrice: dec("1")}},
		})
		require.NoError(t, err)
	}

	orders, err := r.ListOrders(OrderFilter{SupplierID: &other.ID})
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	orders, err = r.ListOrders(OrderFilter{Status: ds.OrderSent})
	require.NoError(t, err)
	assert.Empty(t, orders)
}
