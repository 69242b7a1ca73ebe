package stage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapKeepsKind(t *testing.T) {
	err := Wrap(Load, fmt.Errorf("row 3: %w", ErrInput))

	require.ErrorIs(t, err, ErrInput)
	require.NotErrorIs(t, err, ErrConfig)
	require.Equal(t, Load, Of(err))
	require.Equal(t, "load: row 3: input error", err.Error())
}

func TestWrapFirstStageWins(t *testing.T) {
	err := Wrap(Optimize, Wrap(Validate, ErrConfig))

	require.Equal(t, Validate, Of(err))
	require.ErrorIs(t, err, ErrConfig)
}

func TestWrapNil(t *testing.T) {
	require.NoError(t, Wrap(Report, nil))
	require.Equal(t, Name(""), Of(errors.New("plain")))
}
