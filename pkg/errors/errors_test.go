package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{name: "invalid input", err: InvalidInput(ErrCodeInvalidAmount, "bad"), expected: KindInvalidInput},
		{name: "configuration", err: ConfigurationError(ErrCodeNoServiceBracket, "gap"), expected: KindConfiguration},
		{name: "consistency", err: ConsistencyError("totals differ"), expected: KindConsistency},
		{name: "terminal", err: WrapTerminalLoan("PT-1", "REDEEMED"), expected: KindTerminalLoan},
		{name: "wrapped with fmt", err: fmt.Errorf("quote: %w", WrapLoanNotFound("PT-1")), expected: KindNotFound},
		{name: "plain error", err: errors.New("boom"), expected: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.err))
		})
	}
}

func TestBusinessErrorUnwrapsSentinel(t *testing.T) {
	err := fmt.Errorf("redeem: %w", WrapTerminalLoan("PT-9", "AUCTIONED"))

	assert.True(t, errors.Is(err, ErrTerminalLoan))
	assert.True(t, IsKind(err, KindTerminalLoan))
	assert.False(t, IsKind(nil, KindTerminalLoan))
	assert.Contains(t, err.Error(), "PT-9 is AUCTIONED")
}
