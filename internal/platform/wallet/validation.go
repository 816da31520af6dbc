package wallet

import (
	"github.com/shopspring/decimal"

	"github.com/kislikjeka/coinwallet/internal/platform/asset"
	apperrors "github.com/kislikjeka/coinwallet/internal/shared/errors"
)

// normalize upper-cases the symbol and checks bounds on the add payload.
func (in *AddAssetInput) normalize() error {
	in.Symbol = asset.NormalizeSymbol(in.Symbol)
	return validateFields(in.Symbol, in.Price, in.Quantity)
}

func (in *UpdateAssetInput) normalize() error {
	in.Symbol = asset.NormalizeSymbol(in.Symbol)
	return validateFields(in.Symbol, in.Price, in.Amount)
}

func validateFields(symbol string, price, quantity decimal.Decimal) error {
	if err := asset.ValidateSymbol(symbol); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	}
	if price.IsNegative() {
		return apperrors.Wrap(ErrNegativePrice, apperrors.ErrCodeValidation, ErrNegativePrice.Error())
	}
	if quantity.IsNegative() {
		return apperrors.Wrap(ErrNegativeQuantity, apperrors.ErrCodeValidation, ErrNegativeQuantity.Error())
	}
	return nil
}
