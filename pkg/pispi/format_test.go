package pispi

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0 XOF"},
		{"999", "999 XOF"},
		{"1000", "1 000 XOF"},
		{"10000", "10 000 XOF"},
		{"1234567", "1 234 567 XOF"},
		{"1500.6", "1 501 XOF"},
		{"-25000", "-25 000 XOF"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "10 000 XOF", want: "10000"},
		{in: "10000", want: "10000"},
		{in: "1 250 FCFA", want: "1250"},
		{in: "12.5", want: "12.5"},
		{in: "", wantErr: true},
		{in: "XOF", wantErr: true},
		{in: "dix mille", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	d := decimal.NewFromInt(7654321)
	got, err := ParseAmount(FormatAmount(d))
	require.NoError(t, err)
	assert.True(t, d.Equal(got))
}

func TestValidateTxID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"TX-2024-0001", false},
		{"a", false},
		{strings.Repeat("A", 35), false},
		{"", true},
		{strings.Repeat("A", 36), true},
		{"TX_0001", true},
		{"TX 0001", true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			err := ValidateTxID(tt.id)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
