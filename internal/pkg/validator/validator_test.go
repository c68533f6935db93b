package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValidDate(t *testing.T) {
	require.True(t, IsValidDate("2025-01-10"))
	require.True(t, IsValidDate("2024-02-29"))
	require.False(t, IsValidDate("2025-02-29"))
	require.False(t, IsValidDate("2025-1-10"))
	require.False(t, IsValidDate("10/01/2025"))
	require.False(t, IsValidDate(""))
}

func TestStringHelpers(t *testing.T) {
	require.True(t, IsBlank("  \t"))
	require.False(t, IsBlank(" x "))
	require.True(t, MaxRunes("牛乳を買う", 5))
	require.False(t, MaxRunes("牛乳を買う", 4))
	require.True(t, IsValidUUID("3F2504E0-4F89-41D3-9A0C-0305E82C3301"))
	require.False(t, IsValidUUID("not-a-uuid"))
}
