package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringList_ValueScanRoundTrip(t *testing.T) {
	in := StringList{"ops@example.com", "dev@example.com"}

	v, err := in.Value()
	require.NoError(t, err)

	var out StringList
	require.NoError(t, out.Scan(v))
	assert.Equal(t, in, out)
}

func TestStringList_ScanEmpty(t *testing.T) {
	var out StringList
	require.NoError(t, out.Scan(nil))
	assert.Empty(t, out)

	require.NoError(t, out.Scan("[]"))
	assert.Empty(t, out)
}
