package validation

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type priceRequest struct {
	Title string          `binding:"required,notblank"`
	Price decimal.Decimal `binding:"gte=0"`
	Qty   int             `binding:"gte=1"`
}

func TestRegister(t *testing.T) {
	Register()
	Register()

	ok := priceRequest{Title: "Sofa", Price: decimal.RequireFromString("10.50"), Qty: 1}
	assert.NoError(t, binding.Validator.ValidateStruct(&ok))

	negative := ok
	negative.Price = decimal.RequireFromString("-0.01")
	assert.Error(t, binding.Validator.ValidateStruct(&negative))

	blank := ok
	blank.Title = "   "
	assert.Error(t, binding.Validator.ValidateStruct(&blank))
}
