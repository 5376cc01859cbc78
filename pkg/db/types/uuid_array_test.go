package dbtypes

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestUUIDArrayValueAndScan(t *testing.T) {
	first, second := uuid.New(), uuid.New()
	arr := UUIDArray{first, second}

	value, err := arr.Value()
	require.NoError(t, err)

	var scanned UUIDArray
	require.NoError(t, scanned.Scan(value))
	require.Equal(t, arr, scanned)
}

func TestUUIDArrayScanPostgresLiteral(t *testing.T) {
	id := uuid.New()
	var scanned UUIDArray
	require.NoError(t, scanned.Scan([]byte("{"+id.String()+"}")))
	require.Equal(t, UUIDArray{id}, scanned)

	require.NoError(t, scanned.Scan(nil))
	require.Empty(t, scanned)
}

func TestUUIDArrayWithSkipsDuplicates(t *testing.T) {
	id := uuid.New()
	base := UUIDArray{id}

	same := base.With(id)
	require.Len(t, same, 1)

	other := uuid.New()
	grown := base.With(other)
	require.Len(t, grown, 2)
	require.Len(t, base, 1)
	require.True(t, grown.Contains(other))
}
