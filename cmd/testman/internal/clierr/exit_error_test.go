// SPDX-License-Identifier: AGPL-3.0-or-later

package clierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bartekus/testman/internal/harnesserr"
)

func TestExitCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, Success},
		{"silent failure", Silent(TestFailure), TestFailure},
		{"wrapped exit error", fmt.Errorf("outer: %w", New(RuntimeErr, "boom")), RuntimeErr},
		{"infrastructure", harnesserr.Network("GET", nil), RuntimeErr},
		{"plain", errors.New("plain"), 1},
		{"zero code normalized", New(0, "odd"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeOf(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	cause := harnesserr.Archive("open zip", errors.New("not a valid zip file"))

	assert.Equal(t, "", Silent(TestFailure).Error())
	assert.Equal(t, "extract: archive error: open zip: not a valid zip file", Fatal("extract", cause).Error())
	assert.Equal(t, cause.Error(), Wrap(RuntimeErr, "", cause).Error())
	assert.ErrorIs(t, Fatal("extract", cause), harnesserr.ErrArchive)
}
