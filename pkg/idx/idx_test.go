package idx_test

import (
	"testing"
	"time"

	"github.com/oxleyhq/apigate/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	a := idx.New()
	b := idx.New()

	require.Len(t, a.String(), 26)
	require.False(t, a.IsZero())
	require.NotEqual(t, a, b)

	// Monotonic entropy keeps same-millisecond IDs ordered.
	require.Less(t, a.String(), b.String())
}

func TestNewAt(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	id := idx.NewAt(at)
	require.Equal(t, at, id.Time())

	// The extracted timestamp is UTC regardless of the process zone.
	require.Equal(t, time.UTC, id.Time().Location())
}

func TestParse(t *testing.T) {
	id := idx.New()

	parsed, err := idx.Parse("  " + id.String() + " ")
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	for _, bad := range []string{"", "not-a-ulid", "0000000000000000000000000!"} {
		_, err := idx.Parse(bad)
		require.ErrorIs(t, err, idx.ErrInvalid, "input %q", bad)
	}
}
