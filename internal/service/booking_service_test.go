package service_test

import (
	"context"
	"errors"
	"testing"

	"bouw-backoffice/internal/model"
	"bouw-backoffice/internal/service"
	"bouw-backoffice/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type bookingFixture struct {
	store     *store
	tx        *fakeTx
	publisher *recordingPublisher
	svc       service.BookingService
	actor     service.Actor
}

func newBookingFixture() *bookingFixture {
	s := newStore()
	f := &bookingFixture{
		store:     s,
		tx:        &fakeTx{},
		publisher: &recordingPublisher{},
		actor:     service.Actor{ID: uuid.New(), Name: "Jan", Email: "jan@example.com"},
	}
	f.svc = service.NewBookingService(
		f.tx,
		fakeProductRepo{s},
		fakeLocationRepo{s},
		fakeStockRepo{s},
		fakeTransactionRepo{s},
		f.publisher,
		nil,
		zap.NewNop(),
	)
	return f
}

func qty(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestBookOut_OverbookingGoesNegativeWithWarning(t *testing.T) {
	f := newBookingFixture()
	x := f.store.addProduct("Kabel 3x2.5", "KAB-325", "")
	l := f.store.addLocation("Magazijn")
	f.store.setStock(x.ID, l.ID, "5")

	res, err := f.svc.BookOut(context.Background(), service.BookOutRequest{
		Lines: []model.BookingLine{{ProductID: x.ID, LocationID: l.ID, Quantity: qty("8")}},
		Actor: f.actor,
	})
	require.NoError(t, err)

	got, _ := f.store.quantity(x.ID, l.ID)
	assert.True(t, got.Equal(qty("-3")), "stock = %s", got)

	require.Len(t, res.Warnings, 1)
	w := res.Warnings[0]
	assert.Equal(t, "Kabel 3x2.5", w.ProductName)
	assert.Equal(t, "Magazijn", w.LocationName)
	assert.True(t, w.Available.Equal(qty("5")))
	assert.True(t, w.Requested.Equal(qty("8")))

	require.Len(t, f.store.transactions, 1)
	assert.True(t, f.store.transactions[0].Quantity.Equal(qty("-8")))
	assert.Equal(t, model.TxOut, f.store.transactions[0].Type)
	assert.Nil(t, f.store.transactions[0].ProjectID)

	events := f.publisher.published()
	require.Len(t, events, 1)
	assert.Equal(t, f.actor.ID, events[0].ActorID)
	assert.Len(t, events[0].Warnings, 1)
}

func TestBookOut_StockArithmeticAndTransactionCount(t *testing.T) {
	f := newBookingFixture()
	a := f.store.addProduct("Buis 16mm", "BUI-16", "")
	b := f.store.addProduct("Lasdoos", "LAS-01", "")
	l1 := f.store.addLocation("Magazijn")
	l2 := f.store.addLocation("Bus 12")
	f.store.setStock(a.ID, l1.ID, "10")
	f.store.setStock(b.ID, l2.ID, "2.5")
	projectID := uuid.New()

	lines := []model.BookingLine{
		{ProductID: a.ID, LocationID: l1.ID, Quantity: qty("4")},
		{ProductID: b.ID, LocationID: l2.ID, Quantity: qty("1.5")},
		{ProductID: a.ID, LocationID: l2.ID, Quantity: qty("1")},
	}
	res, err := f.svc.BookOut(context.Background(), service.BookOutRequest{
		Lines: lines, Actor: f.actor, ProjectID: &projectID, Note: "werkbon 17",
	})
	require.NoError(t, err)

	q, _ := f.store.quantity(a.ID, l1.ID)
	assert.True(t, q.Equal(qty("6")))
	q, _ = f.store.quantity(b.ID, l2.ID)
	assert.True(t, q.Equal(qty("1")))
	q, _ = f.store.quantity(a.ID, l2.ID)
	assert.True(t, q.Equal(qty("-1")), "missing entry counts as zero")

	require.Len(t, res.TransactionIDs, 3)
	require.Len(t, f.store.transactions, 3)
	for i, tx := range f.store.transactions {
		assert.True(t, tx.Quantity.Equal(lines[i].Quantity.Neg()))
		assert.Equal(t, model.TxOut, tx.Type)
		assert.Equal(t, projectID, *tx.ProjectID)
		assert.Equal(t, "werkbon 17", tx.Note)
		assert.Equal(t, f.actor.ID, tx.UserID)
	}

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, a.ID, res.Warnings[0].ProductID)
	assert.Equal(t, l2.ID, res.Warnings[0].LocationID)
	assert.True(t, res.Warnings[0].Available.IsZero())
}

func TestBookOut_NoWarningWhenStockSuffices(t *testing.T) {
	f := newBookingFixture()
	p := f.store.addProduct("Schroef", "SCH-4", "")
	l := f.store.addLocation("Magazijn")
	f.store.setStock(p.ID, l.ID, "8")

	res, err := f.svc.BookOut(context.Background(), service.BookOutRequest{
		Lines: []model.BookingLine{{ProductID: p.ID, LocationID: l.ID, Quantity: qty("8")}},
		Actor: f.actor,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Empty(t, f.publisher.published())
}

func TestBookOut_SameProductLocationSeesSequentialAvailability(t *testing.T) {
	f := newBookingFixture()
	p := f.store.addProduct("Kabel", "KAB", "")
	l := f.store.addLocation("Magazijn")
	f.store.setStock(p.ID, l.ID, "5")

	res, err := f.svc.BookOut(context.Background(), service.BookOutRequest{
		Lines: []model.BookingLine{
			{ProductID: p.ID, LocationID: l.ID, Quantity: qty("3")},
			{ProductID: p.ID, LocationID: l.ID, Quantity: qty("3")},
		},
		Actor: f.actor,
	})
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.True(t, res.Warnings[0].Available.Equal(qty("2")))
	q, _ := f.store.quantity(p.ID, l.ID)
	assert.True(t, q.Equal(qty("-1")))
}

func TestBookOut_InvalidLinesAreDropped(t *testing.T) {
	f := newBookingFixture()
	p := f.store.addProduct("Kabel", "KAB", "")
	l := f.store.addLocation("Magazijn")

	res, err := f.svc.BookOut(context.Background(), service.BookOutRequest{
		Lines: []model.BookingLine{
			{ProductID: p.ID, LocationID: l.ID, Quantity: qty("0")},
			{ProductID: uuid.Nil, LocationID: l.ID, Quantity: qty("1")},
			{ProductID: p.ID, LocationID: l.ID, Quantity: qty("2")},
		},
		Actor: f.actor,
	})
	require.NoError(t, err)
	assert.Len(t, res.TransactionIDs, 1)
}

func TestBookOut_ValidationFailsWithoutWrites(t *testing.T) {
	f := newBookingFixture()
	p := f.store.addProduct("Kabel", "KAB", "")
	l := f.store.addLocation("Magazijn")

	tests := []struct {
		name  string
		lines []model.BookingLine
	}{
		{"no lines", nil},
		{"zero quantity", []model.BookingLine{{ProductID: p.ID, LocationID: l.ID, Quantity: qty("0")}}},
		{"negative quantity", []model.BookingLine{{ProductID: p.ID, LocationID: l.ID, Quantity: qty("-2")}}},
		{"missing location", []model.BookingLine{{ProductID: p.ID, Quantity: qty("1")}}},
		{"unknown product", []model.BookingLine{{ProductID: uuid.New(), LocationID: l.ID, Quantity: qty("1")}}},
		{"unknown location", []model.BookingLine{{ProductID: p.ID, LocationID: uuid.New(), Quantity: qty("1")}}},
		{"below storage precision", []model.BookingLine{{ProductID: p.ID, LocationID: l.ID, Quantity: qty("0.0001")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.BookOut(context.Background(), service.BookOutRequest{Lines: tt.lines, Actor: f.actor})
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}

	assert.Empty(t, f.store.transactions)
	assert.Zero(t, f.store.stockWrites)
	assert.Empty(t, f.publisher.published())
}

func TestBookOut_StoreFailureSkipsNotification(t *testing.T) {
	f := newBookingFixture()
	p := f.store.addProduct("Kabel", "KAB", "")
	l := f.store.addLocation("Magazijn")
	f.store.failTxCreate = errors.New("connection reset")

	_, err := f.svc.BookOut(context.Background(), service.BookOutRequest{
		Lines: []model.BookingLine{{ProductID: p.ID, LocationID: l.ID, Quantity: qty("1")}},
		Actor: f.actor,
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindStore, apperror.KindOf(err))
	assert.Empty(t, f.publisher.published())
}

func TestBookIn_IncreasesStock(t *testing.T) {
	f := newBookingFixture()
	p := f.store.addProduct("Kabel", "KAB", "")
	l := f.store.addLocation("Magazijn")
	f.store.setStock(p.ID, l.ID, "-3")

	res, err := f.svc.BookIn(context.Background(), service.BookInRequest{
		Lines: []model.BookingLine{{ProductID: p.ID, LocationID: l.ID, Quantity: qty("10")}},
		Actor: f.actor,
	})
	require.NoError(t, err)
	assert.Len(t, res.TransactionIDs, 1)

	q, _ := f.store.quantity(p.ID, l.ID)
	assert.True(t, q.Equal(qty("7")))
	assert.Equal(t, model.TxIn, f.store.transactions[0].Type)
	assert.True(t, f.store.transactions[0].Quantity.Equal(qty("10")))
}

func TestMoveStock_ConservesTotal(t *testing.T) {
	f := newBookingFixture()
	p := f.store.addProduct("Buis", "BUI", "")
	a := f.store.addLocation("Magazijn")
	b := f.store.addLocation("Bus 12")
	f.store.setStock(p.ID, a.ID, "12")
	f.store.setStock(p.ID, b.ID, "3")

	err := f.svc.MoveStock(context.Background(), service.MoveStockRequest{
		ProductID: p.ID, FromLocationID: a.ID, ToLocationID: b.ID, Quantity: qty("4.5"), Actor: f.actor,
	})
	require.NoError(t, err)

	qa, _ := f.store.quantity(p.ID, a.ID)
	qb, _ := f.store.quantity(p.ID, b.ID)
	assert.True(t, qa.Equal(qty("7.5")))
	assert.True(t, qb.Equal(qty("7.5")))
	assert.True(t, qa.Add(qb).Equal(qty("15")))
	assert.Empty(t, f.store.transactions, "moves do not write ledger rows")
}

func TestMoveStock_FullQuantityRemovesSource(t *testing.T) {
	f := newBookingFixture()
	y := f.store.addProduct("Product Y", "Y", "")
	l1 := f.store.addLocation("L1")
	l2 := f.store.addLocation("L2")
	f.store.setStock(y.ID, l1.ID, "10")

	err := f.svc.MoveStock(context.Background(), service.MoveStockRequest{
		ProductID: y.ID, FromLocationID: l1.ID, ToLocationID: l2.ID, Quantity: qty("10"), Actor: f.actor,
	})
	require.NoError(t, err)

	_, exists := f.store.quantity(y.ID, l1.ID)
	assert.False(t, exists)
	q, _ := f.store.quantity(y.ID, l2.ID)
	assert.True(t, q.Equal(qty("10")))
}

func TestMoveStock_Validation(t *testing.T) {
	f := newBookingFixture()
	p := f.store.addProduct("Buis", "BUI", "")
	a := f.store.addLocation("Magazijn")
	b := f.store.addLocation("Bus 12")
	empty := f.store.addLocation("Bus 14")
	f.store.setStock(p.ID, a.ID, "5")

	tests := []struct {
		name string
		req  service.MoveStockRequest
	}{
		{"same location", service.MoveStockRequest{ProductID: p.ID, FromLocationID: a.ID, ToLocationID: a.ID, Quantity: qty("1")}},
		{"zero quantity", service.MoveStockRequest{ProductID: p.ID, FromLocationID: a.ID, ToLocationID: b.ID, Quantity: qty("0")}},
		{"four decimals", service.MoveStockRequest{ProductID: p.ID, FromLocationID: a.ID, ToLocationID: b.ID, Quantity: qty("1.0005")}},
		{"more than source", service.MoveStockRequest{ProductID: p.ID, FromLocationID: a.ID, ToLocationID: b.ID, Quantity: qty("6")}},
		{"no source entry", service.MoveStockRequest{ProductID: p.ID, FromLocationID: empty.ID, ToLocationID: b.ID, Quantity: qty("1")}},
		{"unknown product", service.MoveStockRequest{ProductID: uuid.New(), FromLocationID: a.ID, ToLocationID: b.ID, Quantity: qty("1")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.MoveStock(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}

	assert.Zero(t, f.store.stockWrites)
	q, _ := f.store.quantity(p.ID, a.ID)
	assert.True(t, q.Equal(qty("5")))
}

func TestEditTransaction_KeepsSignAndLeavesStock(t *testing.T) {
	f := newBookingFixture()
	p := f.store.addProduct("Kabel", "KAB", "")
	l := f.store.addLocation("Magazijn")
	f.store.setStock(p.ID, l.ID, "10")

	res, err := f.svc.BookOut(context.Background(), service.BookOutRequest{
		Lines: []model.BookingLine{{ProductID: p.ID, LocationID: l.ID, Quantity: qty("4")}},
		Actor: f.actor,
	})
	require.NoError(t, err)
	id := res.TransactionIDs[0]

	newQty := qty("6")
	note := "gecorrigeerd"
	updated, err := f.svc.EditTransaction(context.Background(), id, model.TransactionUpdate{Quantity: &newQty, Note: &note}, f.actor)
	require.NoError(t, err)
	assert.True(t, updated.Quantity.Equal(qty("-6")))
	assert.Equal(t, "gecorrigeerd", updated.Note)

	q, _ := f.store.quantity(p.ID, l.ID)
	assert.True(t, q.Equal(qty("6")), "stock is not reconciled on edit")

	noProject := uuid.Nil
	updated, err = f.svc.EditTransaction(context.Background(), id, model.TransactionUpdate{ProjectID: &noProject}, f.actor)
	require.NoError(t, err)
	assert.Nil(t, updated.ProjectID)
}

func TestEditTransaction_RejectsZeroQuantityAndUnknownRefs(t *testing.T) {
	f := newBookingFixture()
	p := f.store.addProduct("Kabel", "KAB", "")
	l := f.store.addLocation("Magazijn")
	res, err := f.svc.BookOut(context.Background(), service.BookOutRequest{
		Lines: []model.BookingLine{{ProductID: p.ID, LocationID: l.ID, Quantity: qty("1")}},
		Actor: f.actor,
	})
	require.NoError(t, err)
	id := res.TransactionIDs[0]

	zero := decimal.Zero
	_, err = f.svc.EditTransaction(context.Background(), id, model.TransactionUpdate{Quantity: &zero}, f.actor)
	assert.True(t, apperror.IsValidation(err))

	unknown := uuid.New()
	_, err = f.svc.EditTransaction(context.Background(), id, model.TransactionUpdate{LocationID: &unknown}, f.actor)
	assert.True(t, apperror.IsValidation(err))

	_, err = f.svc.EditTransaction(context.Background(), uuid.New(), model.TransactionUpdate{}, f.actor)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeleteTransaction(t *testing.T) {
	f := newBookingFixture()
	p := f.store.addProduct("Kabel", "KAB", "")
	l := f.store.addLocation("Magazijn")
	f.store.setStock(p.ID, l.ID, "10")
	res, err := f.svc.BookOut(context.Background(), service.BookOutRequest{
		Lines: []model.BookingLine{{ProductID: p.ID, LocationID: l.ID, Quantity: qty("4")}},
		Actor: f.actor,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteTransaction(context.Background(), res.TransactionIDs[0], f.actor))
	assert.Empty(t, f.store.transactions)
	q, _ := f.store.quantity(p.ID, l.ID)
	assert.True(t, q.Equal(qty("6")), "stock is not reconciled on delete")

	err = f.svc.DeleteTransaction(context.Background(), res.TransactionIDs[0], f.actor)
	assert.True(t, apperror.IsNotFound(err))
}

func TestBookOut_TrailingZerosFitStoragePrecision(t *testing.T) {
	f := newBookingFixture()
	p := f.store.addProduct("Kabel", "KAB", "")
	l := f.store.addLocation("Magazijn")
	f.store.setStock(p.ID, l.ID, "3")

	_, err := f.svc.BookOut(context.Background(), service.BookOutRequest{
		Lines: []model.BookingLine{{ProductID: p.ID, LocationID: l.ID, Quantity: qty("1.2500")}},
		Actor: f.actor,
	})
	require.NoError(t, err)
	q, _ := f.store.quantity(p.ID, l.ID)
	assert.True(t, q.Equal(qty("1.75")))
}
