package test

import (
	"testing"

	"github.com/chettriyuvraj/storage-heap/common"
	"github.com/stretchr/testify/require"
)

/* NOTE: This will potentially modify the iterator by calling Next() */
func IteratorTestNext(t *testing.T, iterator common.Iterator, existsWant bool, errWant bool) {
	t.Helper()
	exists, err := iterator.Next(), iterator.Error()
	require.Equal(t, existsWant, exists)
	if errWant {
		require.Error(t, err)
	} else {
		require.NoError(t, err)
	}
}

func IteratorTestKey(t *testing.T, iterator common.Iterator, keyWant []byte, errWant bool) {
	t.Helper()
	keyGot, err := iterator.Key(), iterator.Error()
	require.Equal(t, keyWant, keyGot)
	if errWant {
		require.Error(t, err)
	} else {
		require.NoError(t, err)
	}
}

func IteratorTestVal(t *testing.T, iterator common.Iterator, valWant []byte, errWant bool) {
	t.Helper()
	valGot, err := iterator.Value(), iterator.Error()
	require.Equal(t, valWant, valGot)
	if errWant {
		require.Error(t, err)
	} else {
		require.NoError(t, err)
	}
}
