// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package errs

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestCodedError(t *testing.T) {
	err := New(InsufficientFunds, "balance %d below requested %d", 5, 10)
	assert.EqualError(t, err, "balance 5 below requested 10")

	code, ok := CodeOf(err)
	assert.True(t, ok)
	assert.Equal(t, InsufficientFunds, code)

	assert.True(t, HasCode(err, InsufficientFunds))
	assert.False(t, HasCode(err, Unauthorized))
}

func TestCodeOfWrappedError(t *testing.T) {
	err := errors.WithMessage(New(NotFound, "missing"), "lookup failed")

	code, ok := CodeOf(err)
	assert.True(t, ok)
	assert.Equal(t, NotFound, code)
	assert.True(t, HasCode(err, NotFound))
}

func TestCodeOfPlainError(t *testing.T) {
	_, ok := CodeOf(errors.New("plain"))
	assert.False(t, ok)
	assert.False(t, HasCode(nil, NotFound))
}
