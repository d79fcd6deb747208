package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type line struct {
	ProductID uuid.UUID       `validate:"uuid_required"`
	Quantity  decimal.Decimal `validate:"decimal_gt0"`
	MinStock  decimal.Decimal `validate:"decimal_gte0"`
}

func TestValidateStruct_OK(t *testing.T) {
	errs := ValidateStruct(line{ProductID: uuid.New(), Quantity: decimal.NewFromFloat(0.5)})
	assert.Empty(t, errs)
	assert.Equal(t, "", FirstError(errs))
}

func TestValidateStruct_NilUUID(t *testing.T) {
	errs := ValidateStruct(line{Quantity: decimal.NewFromInt(1)})
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "line.ProductID", errs[0].FailedField)
		assert.Equal(t, "uuid_required", errs[0].Tag)
	}
}

func TestValidateStruct_DecimalBounds(t *testing.T) {
	errs := ValidateStruct(line{ProductID: uuid.New(), Quantity: decimal.Zero, MinStock: decimal.NewFromInt(-1)})
	if assert.Len(t, errs, 2) {
		assert.Equal(t, "decimal_gt0", errs[0].Tag)
		assert.Equal(t, "decimal_gte0", errs[1].Tag)
	}
	assert.Equal(t, "Validation failed: Field 'line.Quantity' failed on tag 'decimal_gt0'", FirstError(errs))
}

type stocked struct {
	MinStock decimal.Decimal `validate:"decimal_gte0,decimal_scale=3"`
}

func TestValidateStruct_DecimalScale(t *testing.T) {
	assert.Empty(t, ValidateStruct(stocked{MinStock: decimal.RequireFromString("2.500")}))
	assert.Empty(t, ValidateStruct(stocked{MinStock: decimal.RequireFromString("2.5000")}))

	errs := ValidateStruct(stocked{MinStock: decimal.RequireFromString("0.0001")})
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "decimal_scale", errs[0].Tag)
		assert.Equal(t, "3", errs[0].Value)
	}
}
