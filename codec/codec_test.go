package codec

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type priority int16

type score float32

type label string

/* Element with its own binary form */
type job struct {
	Priority uint32
	Name     string
}

func (j *job) MarshalBinary() ([]byte, error) {
	return append(binary.BigEndian.AppendUint32(nil, j.Priority), j.Name...), nil
}

func (j *job) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return errors.New("short job")
	}
	j.Priority = binary.BigEndian.Uint32(data)
	j.Name = string(data[4:])
	return nil
}

func roundTrip[T any](t *testing.T, c Codec[T], v T) {
	t.Helper()
	data, err := c.Encode(v)
	require.NoError(t, err)
	got, err := c.Decode(data)
	require.NoError(t, err)
	require.Equal(t, v, got)
}

func TestOrdered(t *testing.T) {
	roundTrip(t, Ordered[int](), math.MinInt)
	roundTrip(t, Ordered[int64](), int64(-42))
	roundTrip(t, Ordered[uint8](), uint8(255))
	roundTrip(t, Ordered[uint64](), uint64(math.MaxUint64))
	roundTrip(t, Ordered[float64](), -1.5)
	roundTrip(t, Ordered[float32](), float32(3.25))
	roundTrip(t, Ordered[string](), "")
	roundTrip(t, Ordered[string](), "hello")

	/* Named types keep their type through the round trip */
	roundTrip(t, Ordered[priority](), priority(-7))
	roundTrip(t, Ordered[score](), score(0.5))
	roundTrip(t, Ordered[label](), label("urgent"))

	data, err := Ordered[int32]().Encode(1)
	require.NoError(t, err)
	require.Len(t, data, 8)
}

func TestOrderedShortCell(t *testing.T) {
	_, err := Ordered[int]().Decode([]byte{0x01, 0x02})
	require.ErrorIs(t, err, ErrShortCell)
	require.Equal(t, ErrShortCell, pkgerrors.Cause(err))
}

func TestBinary(t *testing.T) {
	c := Binary[job]()
	roundTrip(t, c, job{Priority: 9, Name: "reindex"})

	_, err := c.Decode([]byte{0x01})
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode codec.job")
}

func TestJSON(t *testing.T) {
	type event struct {
		At   int64
		Tags []string
	}
	c := JSON[event]()
	roundTrip(t, c, event{At: 10, Tags: []string{"a", "b"}})

	_, err := c.Decode([]byte("{"))
	require.Error(t, err)
}
