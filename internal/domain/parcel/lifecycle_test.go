package parcel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parceldesk/internal/core/apperror"
)

func TestValidateTransition(t *testing.T) {
	legal := []struct{ from, to Status }{
		{StatusProcessing, StatusInTransit},
		{StatusProcessing, StatusCancelled},
		{StatusInTransit, StatusDelivered},
		{StatusInTransit, StatusCancelled},
		{StatusDelivered, StatusPickedUp},
	}
	for _, e := range legal {
		assert.NoError(t, ValidateTransition(e.from, e.to),
			"%s -> %s must be legal", e.from, e.to)
	}

	illegal := []struct{ from, to Status }{
		{StatusProcessing, StatusDelivered},
		{StatusProcessing, StatusPickedUp},
		{StatusInTransit, StatusProcessing},
		{StatusInTransit, StatusPickedUp},
		{StatusDelivered, StatusProcessing},
		{StatusDelivered, StatusInTransit},
		{StatusDelivered, StatusCancelled},
		{StatusPickedUp, StatusProcessing},
		{StatusPickedUp, StatusCancelled},
		{StatusCancelled, StatusProcessing},
		{StatusCancelled, StatusInTransit},
	}
	for _, e := range illegal {
		err := ValidateTransition(e.from, e.to)
		require.Error(t, err, "%s -> %s must be rejected", e.from, e.to)
		assert.True(t, apperror.IsCode(err, apperror.CodeIllegalTransition))

		// The error names both states.
		appErr, _ := apperror.AsAppError(err)
		assert.Equal(t, string(e.from), appErr.Details["from"])
		assert.Equal(t, string(e.to), appErr.Details["to"])
	}
}

func TestValidateTransition_SameStatusIsConflict(t *testing.T) {
	err := ValidateTransition(StatusDelivered, StatusDelivered)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeConflict),
		"repeated request must read as idempotent retry, not illegal edge")
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(StatusPickedUp))
	assert.True(t, IsTerminal(StatusCancelled))
	assert.False(t, IsTerminal(StatusProcessing))
	assert.False(t, IsTerminal(StatusInTransit))
	assert.False(t, IsTerminal(StatusDelivered))
}
