package responses

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBackendErrorUsesDetailMessage(t *testing.T) {
	err := &BackendError{StatusCode: 400, Message: "Invoice amount exceeds receivable capacity"}
	assert.Equal(t, "Invoice amount exceeds receivable capacity", err.Error())
}

func TestBackendErrorFallsBackToStatus(t *testing.T) {
	err := &BackendError{StatusCode: 502}
	assert.Equal(t, "backend request failed with status 502", err.Error())
}

func TestInternalPaymentDetection(t *testing.T) {
	assert.True(t, IsInternalPayment(&PaymentFailedError{Message: "This invoice belongs to a user on this node"}))
	assert.True(t, IsInternalPayment(errors.New("use the internal payment endpoint")))
	assert.False(t, IsInternalPayment(errors.New("no route found")))
	assert.False(t, IsInternalPayment(nil))
}
