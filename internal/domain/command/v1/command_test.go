package commandv1

import (
	"testing"

	assetv1 "github.com/exchangelabs/trading-core/internal/domain/asset/v1"
	pkgerrors "github.com/exchangelabs/trading-core/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func place(price, quantity string) *SequencedCommand {
	return &SequencedCommand{
		SequenceID: 1,
		Type:       TypePlaceOrder,
		PlaceOrder: &PlaceOrderPayload{
			OrderID:   1,
			UserID:    1,
			Direction: "BUY",
			OrderType: "limit",
			Price:     decimal.RequireFromString(price),
			Quantity:  decimal.RequireFromString(quantity),
		},
	}
}

func TestValidate_PlaceOrder(t *testing.T) {
	assert.NoError(t, place("50", "1").Validate(8))
	assert.NoError(t, place("0.00000001", "0.00000001").Validate(8))
}

func TestValidate_RejectsNonPositive(t *testing.T) {
	assert.Error(t, place("0", "1").Validate(8))
	assert.Error(t, place("-1", "1").Validate(8))
	assert.Error(t, place("50", "0").Validate(8))
	assert.Error(t, place("50", "-0.5").Validate(8))
}

func TestValidate_RejectsExcessScale(t *testing.T) {
	err := place("50", "0.000000001").Validate(8)
	require.Error(t, err)
	assert.True(t, pkgerrors.ErrorCodeEquals(err, pkgerrors.ErrInvalidCommand))

	assert.Error(t, place("0.000000001", "1").Validate(8))
}

func TestValidate_MarketOrderPriceRules(t *testing.T) {
	// a market sell reserves base quantity and needs no price
	sell := place("0", "1")
	sell.PlaceOrder.OrderType = "market"
	sell.PlaceOrder.Direction = "SELL"
	assert.NoError(t, sell.Validate(8))

	sell.PlaceOrder.Price = decimal.RequireFromString("-1")
	assert.Error(t, sell.Validate(8))

	// a market buy reserves quote at its cap price, so the cap is mandatory
	buy := place("0", "1")
	buy.PlaceOrder.OrderType = "market"
	require.Error(t, buy.Validate(8))

	buy.PlaceOrder.Price = decimal.RequireFromString("100")
	assert.NoError(t, buy.Validate(8))
}

func TestValidate_CancelOrder(t *testing.T) {
	cmd := &SequencedCommand{
		SequenceID: 1,
		Type:       TypeCancelOrder,
		Cancel:     &CancelOrderPayload{OrderID: 5, UserID: 1},
	}
	assert.NoError(t, cmd.Validate(8))

	cmd.Cancel.OrderID = 0
	assert.Error(t, cmd.Validate(8))

	cmd.Cancel = nil
	assert.Error(t, cmd.Validate(8))
}

func TestValidate_Transfer(t *testing.T) {
	transfer := func() *SequencedCommand {
		return &SequencedCommand{
			SequenceID: 1,
			Type:       TypeTransfer,
			Transfer: &TransferPayload{
				FromUserID: assetv1.SystemUserID,
				ToUserID:   7,
				Asset:      "USD",
				Amount:     decimal.RequireFromString("100"),
			},
		}
	}

	assert.NoError(t, transfer().Validate(8))

	cmd := transfer()
	cmd.Transfer.FromUserID = 2
	assert.Error(t, cmd.Validate(8))

	cmd = transfer()
	cmd.Transfer.ToUserID = assetv1.SystemUserID
	assert.Error(t, cmd.Validate(8))

	cmd = transfer()
	cmd.Transfer.Asset = ""
	assert.Error(t, cmd.Validate(8))

	cmd = transfer()
	cmd.Transfer.Amount = decimal.Zero
	assert.Error(t, cmd.Validate(8))

	cmd = transfer()
	cmd.Transfer.Amount = decimal.RequireFromString("0.000000001")
	assert.Error(t, cmd.Validate(8))

	cmd = transfer()
	cmd.Transfer = nil
	assert.Error(t, cmd.Validate(8))
}

func TestValidate_UnknownType(t *testing.T) {
	cmd := &SequencedCommand{SequenceID: 1, Type: "deposit"}
	err := cmd.Validate(8)
	require.Error(t, err)
	assert.True(t, pkgerrors.ErrorCodeEquals(err, pkgerrors.ErrInvalidCommand))
}
