package command

import (
	"strconv"
	"takabot/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandom_Respond(t *testing.T) {
	tests := []struct {
		name    string
		args    []domain.Arg
		wantMin int64
		wantMax int64
		wantErr string
	}{
		{
			name:    "defaults",
			wantMin: 0,
			wantMax: 1<<63 - 1,
		},
		{
			name:    "bounded",
			args:    []domain.Arg{intArg("min", 5), intArg("max", 7)},
			wantMin: 5,
			wantMax: 7,
		},
		{
			name:    "single value range",
			args:    []domain.Arg{intArg("min", 3), intArg("max", 4)},
			wantMin: 3,
			wantMax: 4,
		},
		{
			name:    "empty range",
			args:    []domain.Arg{intArg("min", 7), intArg("max", 7)},
			wantErr: emptyRangeMessage,
		},
		{
			name:    "inverted range",
			args:    []domain.Arg{intArg("min", 10), intArg("max", 1)},
			wantErr: emptyRangeMessage,
		},
		{
			name:    "negative",
			args:    []domain.Arg{intArg("min", -1)},
			wantErr: negativeRangeMessage,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mr := newDeliveringResponder()

			outcome := NewRandom(mr).Respond(t.Context(), newRequest("1", tc.args...))

			if tc.wantErr != "" {
				assert.Equal(t, domain.Fail(tc.wantErr), outcome)
				assert.Empty(t, mr.delivered())
				return
			}

			require.Equal(t, domain.Ok(), outcome)
			delivered := mr.delivered()
			require.Len(t, delivered, 1)

			n, err := strconv.ParseInt(delivered[0].Text, 10, 64)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, n, tc.wantMin)
			assert.Less(t, n, tc.wantMax)
		})
	}
}
