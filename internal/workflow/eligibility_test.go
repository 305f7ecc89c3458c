package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"farmlyf_back_end/internal/models"
)

func sampleOrder() (models.Order, ItemKey, ItemKey) {
	a := ItemKey{primitive.NewObjectID(), primitive.NewObjectID()}
	b := ItemKey{primitive.NewObjectID(), primitive.NewObjectID()}
	return models.Order{
		Number: "FL-TEST",
		Items: []models.OrderItem{
			{ProductRef: a.ProductRef, VariantRef: a.VariantRef, Name: "Almonds", VariantLabel: "500g", Qty: 2, Price: 450},
			{ProductRef: b.ProductRef, VariantRef: b.VariantRef, Name: "Cashews", VariantLabel: "250g", Qty: 1, Price: 320},
		},
	}, a, b
}

func TestReturnedItemSetIgnoresRejected(t *testing.T) {
	order, a, b := sampleOrder()
	existing := []models.ReturnRequest{
		{Status: models.ReturnRejected, Items: []models.ReturnItem{{ProductRef: a.ProductRef, VariantRef: a.VariantRef}}},
		{Status: models.ReturnApproved, Items: []models.ReturnItem{{ProductRef: b.ProductRef, VariantRef: b.VariantRef}}},
	}
	covered := ReturnedItemSet(existing)
	assert.NotContains(t, covered, a)
	assert.Equal(t, models.ReturnApproved, covered[b])

	lines := ReturnableLines(order, covered)
	require.Len(t, lines, 2)
	assert.True(t, lines[0].Returnable)
	assert.False(t, lines[1].Returnable)
	assert.Equal(t, models.ReturnApproved, lines[1].ReturnStatus)
}

func TestValidateReturnItems(t *testing.T) {
	order, a, b := sampleOrder()

	items, err := ValidateReturnItems(order, []RequestedItem{{a.ProductRef, a.VariantRef, 1}, {b.ProductRef, b.VariantRef, 0}}, nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].Qty)
	assert.Equal(t, 450.0, items[0].Price)
	assert.Equal(t, 1, items[1].Qty, "zero quantity means the full line")
	assert.Equal(t, "Cashews", items[1].Name)
}

func TestValidateReturnItemsRejects(t *testing.T) {
	order, a, b := sampleOrder()
	covered := map[ItemKey]models.ReturnStatus{b: models.ReturnPending}

	_, err := ValidateReturnItems(order, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidItems)

	_, err = ValidateReturnItems(order, []RequestedItem{{a.ProductRef, a.VariantRef, 1}, {a.ProductRef, a.VariantRef, 1}}, nil)
	assert.ErrorIs(t, err, ErrInvalidItems)

	_, err = ValidateReturnItems(order, []RequestedItem{{a.ProductRef, a.VariantRef, 3}}, nil)
	assert.ErrorIs(t, err, ErrInvalidItems)

	_, err = ValidateReturnItems(order, []RequestedItem{{primitive.NewObjectID(), a.VariantRef, 1}}, nil)
	assert.ErrorIs(t, err, ErrInvalidItems)

	_, err = ValidateReturnItems(order, []RequestedItem{{b.ProductRef, b.VariantRef, 1}}, covered)
	assert.ErrorIs(t, err, ErrNotReturnable)
}
