package grpcjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(Name)
	require.NotNil(t, c)

	type ballot struct {
		First  uint64 `json:"first"`
		Second uint64 `json:"second"`
	}

	data, err := c.Marshal(&ballot{First: 1, Second: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"first":1,"second":2}`, string(data))

	var out ballot
	require.NoError(t, c.Unmarshal(data, &out))
	assert.Equal(t, ballot{First: 1, Second: 2}, out)
}
