package solana

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckTransactionStatusInvalidSignature(t *testing.T) {
	_, err := CheckTransactionStatus(context.Background(), nil, "not base58!!")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid signature format")
}
