package timeid

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewDecomposesTimestamp(t *testing.T) {
	ts := time.Date(2025, 3, 7, 9, 4, 59, 42*int(time.Millisecond), time.UTC)
	require.Equal(t, "2025-03-07-09-04-59-042", New(ts))
}

func TestLexicalOrderEqualsChronologicalOrder(t *testing.T) {
	base := time.Date(2025, 11, 30, 23, 59, 59, 998*int(time.Millisecond), time.UTC)
	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, New(base.Add(time.Duration(i)*time.Millisecond)))
	}
	require.True(t, sort.StringsAreSorted(ids), "ids not lexically sorted: %v", ids)
	// Crossing the year boundary must keep ordering.
	require.Less(t, ids[0], New(base.Add(time.Hour)))
}

func TestValid(t *testing.T) {
	require.True(t, Valid("2025-03-07-09-04-59-042"))
	require.False(t, Valid("conv-2025-03-07-09-04-59-042"))
	require.False(t, Valid("2025-3-7-9-4-59-42"))
	require.False(t, Valid(""))
}

func TestCleanStripsLegacyPrefixes(t *testing.T) {
	require.Equal(t, "2025-03-07-09-04-59-042", Clean("conv-2025-03-07-09-04-59-042"))
	require.Equal(t, "2025-03-07-09-04-59-042", Clean("rec-2025-03-07-09-04-59-042"))
	require.Equal(t, "2025-03-07-09-04-59-042", Clean("2025-03-07-09-04-59-042"))
}

func TestHasLegacyPrefix(t *testing.T) {
	require.True(t, HasLegacyPrefix("conv-x"))
	require.True(t, HasLegacyPrefix("rec-x"))
	require.False(t, HasLegacyPrefix("2025-03-07-09-04-59-042"))
}
