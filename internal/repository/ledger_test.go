package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnLetterCoversSupportedRange(t *testing.T) {
	assert.Equal(t, "A", columnLetter(colID))
	assert.Equal(t, "E", columnLetter(colStatus))
	assert.Equal(t, "H", columnLetter(ledgerWidth))
	assert.Equal(t, "D", columnLetter(rosterWidth))
	assert.Equal(t, "Z", columnLetter(26))
}

func TestColumnLetterClampsOutOfRange(t *testing.T) {
	assert.Equal(t, "A", columnLetter(0))
	assert.Equal(t, "A", columnLetter(27))
}
