package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_KindsAndMessages(t *testing.T) {
	err := fmt.Errorf("add transaction: %w", Validationf("Amount must be a valid number."))

	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "Amount must be a valid number.", Message(err, "fallback"))
	assert.True(t, IsExpected(err))
}

func TestMessage_Fallback(t *testing.T) {
	err := errors.New("connection reset")

	assert.Equal(t, "Something went wrong.", Message(err, "Something went wrong."))
	assert.False(t, IsExpected(err))
}

func TestTransaction_IsIncome(t *testing.T) {
	spend := Transaction{Amount: mustDecimal(t, "4.50")}
	income := Transaction{Amount: mustDecimal(t, "-20")}

	assert.False(t, spend.IsIncome())
	assert.True(t, income.IsIncome())
}
