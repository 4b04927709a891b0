package checkout

import "errors"

var (
	ErrEmptyCart           = errors.New("cart is empty, nothing to checkout")
	ErrConfirmRequired     = errors.New("clearing a non-empty cart requires confirmation")
	ErrProductNotFound     = errors.New("product not found in catalog")
	ErrVariantNotFound     = errors.New("variant not found on product")
	ErrPaymentDisabled     = errors.New("payment method is not enabled")
	ErrNoCompletedSale     = errors.New("no completed sale in this session")
	IllegalTransitionError = errors.New("illegal transition of checkout state")
)

// FallbackSubmitMessage is shown when the backend rejects an order without a
// usable message.
const FallbackSubmitMessage = "Order failed"
