package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFloat32CSV(t *testing.T) {
	c := require.New(t)

	values, err := ParseFloat32CSV("0.1,2, 3.5")
	c.NoError(err)
	c.Equal([]float32{0.1, 2, 3.5}, values)

	values, err = ParseFloat32CSV("")
	c.NoError(err)
	c.Empty(values)

	values, err = ParseFloat32CSV("1,ajua,3")
	c.EqualError(err, `error parsing entry 1 of "1,ajua,3": strconv.ParseFloat: parsing "ajua": invalid syntax`)
	c.Empty(values)
}

func TestHashHex(t *testing.T) {
	c := require.New(t)

	hash := HashHex([]byte(`{"inputs_input":[1,2]}`))
	c.Len(hash, 64)
	c.Equal(hash, HashHex([]byte(`{"inputs_input":[1,2]}`)))
	c.NotEqual(hash, HashHex([]byte(`{"inputs_input":[2,1]}`)))
}

func TestAvgOfSlice(t *testing.T) {
	c := require.New(t)

	c.Equal(float64(2), AvgOfSlice([]float32{1, 2, 3}))
	c.Equal(float64(0), AvgOfSlice([]float32{}))
	c.Equal(2.5, AvgOfSlice([]int64{2, 3}))
}
