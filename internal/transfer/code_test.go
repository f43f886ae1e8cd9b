package transfer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohits-web03/codedrop/internal/transfer"
)

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := transfer.GenerateCode()
		assert.Len(t, code, transfer.CodeLength)
		assert.Regexp(t, `^[0-9A-F]{6}$`, code)
	}
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		err   string
	}{
		{name: "exact", input: "AB12CD", want: "AB12CD"},
		{name: "lowercase and padded", input: "  ab12cd\n", want: "AB12CD"},
		{name: "empty", input: "", err: "please enter an access code"},
		{name: "blank", input: "   ", err: "please enter an access code"},
		{name: "too short", input: "AB12", err: "access code must be 6 letters or digits"},
		{name: "too long", input: "AB12CDE", err: "access code must be 6 letters or digits"},
		{name: "path", input: "AB/2CD", err: "access code must be 6 letters or digits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := transfer.NormalizeCode(tt.input)
			if tt.err != "" {
				require.ErrorIs(t, err, transfer.ErrValidation)
				assert.EqualError(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
