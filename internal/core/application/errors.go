package application

import "errors"

var (
	// ErrCatalogUnavailable is surfaced when the network list for the
	// selected currency cannot be fetched. It is recovered locally, the
	// caller may retry by selecting the currency again.
	ErrCatalogUnavailable = errors.New("currency catalog is unavailable")
	// ErrEstimateUnavailable is surfaced when a conversion estimate cannot
	// be fetched. The previously valid estimate stays visible.
	ErrEstimateUnavailable = errors.New("conversion estimate is unavailable")
	// ErrAmountOutOfRange is thrown when the amount does not lie within the
	// [MinAmount, MaxAmount] interval of the chosen currency.
	ErrAmountOutOfRange = errors.New("amount is out of the range allowed for the currency")
	// ErrIntentCreationFailed is thrown when the gateway rejects the
	// creation of a payment intent. No payment is constructed in that case.
	ErrIntentCreationFailed = errors.New("payment intent creation failed")
	// ErrCurrencyNotFound ...
	ErrCurrencyNotFound = errors.New("currency not found in catalog")
	// ErrNetworkNotFound is thrown when selecting a network that is not
	// valid for the currently selected currency.
	ErrNetworkNotFound = errors.New("network is not valid for the selected currency")
	// ErrNonPositiveAmount ...
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
	// ErrPaymentAlreadyTracked is thrown when starting a second lifecycle
	// controller for the same payment.
	ErrPaymentAlreadyTracked = errors.New("payment is already being tracked")
	// ErrNullPayment ...
	ErrNullPayment = errors.New("payment must not be null")
	// ErrNullGateway ...
	ErrNullGateway = errors.New("gateway service must not be null")
)
