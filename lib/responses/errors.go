package responses

import (
	"errors"
	"fmt"
	"strings"

	"github.com/getAlby/tapwallet/common"
)

// BackendError carries the backend supplied detail message of a non-2xx
// response. The message is what gets surfaced to the user, verbatim.
type BackendError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"detail"`
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend request failed with status %d", e.StatusCode)
}

// PaymentFailedError wraps a pay response whose status came back failed.
type PaymentFailedError struct {
	Message string
}

func (e *PaymentFailedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "payment failed"
}

// Validation failures caught before any network call is issued.
var (
	ErrNoWallet              = errors.New("no wallet available")
	ErrEmptyPaymentRequest   = errors.New("payment request is empty")
	ErrNoMatchingAsset       = errors.New("no asset with sufficient balance for this payment")
	ErrAmountExceedsCeiling  = errors.New("amount exceeds the receivable limit for this asset")
	ErrLnurlAssetsNotAllowed = errors.New("this LNURL does not accept asset payments")
	ErrAmountOutOfBounds     = errors.New("amount is outside the sendable range of this LNURL")
)

// IsInternalPayment reports whether an error is the backend telling us the
// destination lives on the same host. Such a failure is not terminal: the
// caller retries through the internal payment path.
func IsInternalPayment(err error) bool {
	if err == nil {
		return false
	}
	detail := strings.ToLower(err.Error())
	for _, marker := range common.InternalPaymentMarkers {
		if strings.Contains(detail, marker) {
			return true
		}
	}
	return false
}
