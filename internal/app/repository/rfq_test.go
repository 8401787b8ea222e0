package repository

import (
	"errors"
	"testing"
	"time"

	"renovation/internal/app/ds"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRFQFlow(t *testing.T) {
	r := newTestRepository(t)
	f := seed(t, r)

	second := &ds.Supplier{Name: "Meubles Nord"}
	require.NoError(t, r.CreateSupplier(second))

	lamp := f.specItem(t, r, "Floor lamp", 2, "0", nil)
	rug := f.specItem(t, r, "Wool rug", 1, "0", nil)

	rfq, err := r.CreateRFQ(RFQInput{
		ProjectID:   f.project.ID,
		Title:       "Living room lighting",
		SupplierIDs: []uint{f.supplier.ID, second.ID, second.ID},
		Items: []RFQItemInput{
			{SpecItemID: &lamp.ID},
			{SpecItemID: &rug.ID, Quantity: 1},
		},
		CreatedByID: f.user.ID,
	})
	require.NoError(t, err)
	assert.Contains(t, rfq.Number, "RFQ-")
	require.Len(t, rfq.Items, 2)
	require.Len(t, rfq.Suppliers, 2)
	assert.Equal(t, "Floor lamp", rfq.Items[0].Description)
	assert.Equal(t, 2, rfq.Items[0].Quantity)

	_, err = r.RecordSupplierQuote(SupplierQuoteInput{
		RFQID: rfq.ID, SupplierID: f.supplier.ID,
		Items: []SupplierQuoteItemInput{{RFQItemID: rfq.Items[0].ID, UnitPrice: dec("100")}},
	})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	now := time.Now()
	require.NoError(t, r.SetRFQDelivery(rfq.ID, f.supplier.ID, nil, now))
	require.NoError(t, r.SetRFQDelivery(rfq.ID, second.ID, errors.New("mailbox full"), now))
	require.NoError(t, r.MarkRFQSent(rfq.ID, now))

	rfq, err = r.GetRFQ(rfq.ID)
	require.NoError(t, err)
	assert.Equal(t, ds.RFQSent, rfq.Status)
	statuses := map[uint]string{}
	for _, s := range rfq.Suppliers {
		statuses[s.SupplierID] = s.DeliveryStatus
	}
	assert.Equal(t, ds.DeliverySent, statuses[f.supplier.ID])
	assert.Equal(t, ds.DeliveryFailed, statuses[second.ID])

	q1, err := r.RecordSupplierQuote(SupplierQuoteInput{
		RFQID: rfq.ID, SupplierID: f.supplier.ID,
		Items: []SupplierQuoteItemInput{
			{RFQItemID: rfq.Items[0].ID, UnitPrice: dec("150")},
			{RFQItemID: rfq.Items[1].ID, UnitPrice: dec("600")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "900.00", q1.Total.StringFixed(2))

	q2, err := r.RecordSupplierQuote(SupplierQuoteInput{
		RFQID: rfq.ID, SupplierID: second.ID,
		Items: []SupplierQuoteItemInput{
			{RFQItemID: rfq.Items[0].ID, UnitPrice: dec("140")},
			{RFQItemID: rfq.Items[1].ID, UnitPrice: dec("650")},
		},
	})
	require.NoError(t, err)

	item, err := r.GetSpecItem(lamp.ID)
	require.NoError(t, err)
	assert.Equal(t, ds.SpecItemQuoted, item.Status)

	rows, err := r.CompareQuotes(rfq.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, second.ID, rows[0].BestSupplierID)
	assert.Equal(t, f.supplier.ID, rows[1].BestSupplierID)
	assert.Len(t, rows[0].Offers, 2)

	_, err = r.RecordSupplierQuote(SupplierQuoteInput{
		RFQID: rfq.ID, SupplierID: 999,
		Items: []SupplierQuoteItemInput{{RFQItemID: rfq.Items[0].ID, UnitPrice: dec("1")}},
	})
	assert.ErrorIs(t, err, ErrValidation)

	order, err := r.AcceptSupplierQuote(q1.ID, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, ds.OrderDraft, order.Status)
	assert.Equal(t, f.supplier.ID, order.SupplierID)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "900.00", order.Subtotal.StringFixed(2))

	item, err = r.GetSpecItem(lamp.ID)
	require.NoError(t, err)
	assert.Equal(t, "150.00", item.CostPrice.StringFixed(2))
	require.NotNil(t, item.SupplierID)
	assert.Equal(t, f.supplier.ID, *item.SupplierID)

	_, err = r.AcceptSupplierQuote(q1.ID, f.user.ID)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	require.NoError(t, r.RejectSupplierQuote(q2.ID))
	assert.ErrorIs(t, r.RejectSupplierQuote(q2.ID), ErrInvalidStatus)

	require.NoError(t, r.CloseRFQ(rfq.ID))
	assert.ErrorIs(t, r.CancelRFQ(rfq.ID), ErrInvalidStatus)
}

func TestCreateRFQ_Validation(t *testing.T) {
	r := newTestRepository(t)
	f := seed(t, r)

	_, err := r.CreateRFQ(RFQInput{ProjectID: f.project.ID, Title: "x", SupplierIDs: []uint{f.supplier.ID}})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = r.CreateRFQ(RFQInput{
		ProjectID: f.project.ID, Title: "x",
		Items: []RFQItemInput{{Description: "Tiles", Quantity: 40}},
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = r.CreateRFQ(RFQInput{
		ProjectID: f.project.ID, Title: "x", SupplierIDs: []uint{77},
		Items: []RFQItemInput{{Description: "Tiles", Quantity: 40}},
	})
	assert.ErrorIs(t, err, ErrNotFound)

	rfqs, err := r.ListRFQs(&f.project.ID, "")
	require.NoError(t, err)
	assert.Empty(t, rfqs)
}
