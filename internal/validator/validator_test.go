package validator

import (
	"errors"
	"testing"

	"github.com/openpsa-mef/loader/internal/merr"
	"github.com/stretchr/testify/assert"
)

func TestCycleError_WrapsSentinel(t *testing.T) {
	err := &CycleError{Kind: "gate", Cycle: []string{"g1", "g2", "g1"}}
	assert.ErrorContains(t, err, "gate")
	assert.True(t, errors.Is(err, merr.ErrCycle))
}
