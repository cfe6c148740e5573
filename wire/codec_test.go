package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	assert.Equal(t, CodecName, c.Name())
}

func TestCodecOptionalFields(t *testing.T) {
	start := int32(-3)
	data, err := Codec{}.Marshal(&ListFetchRequest{ListName: []byte("l"), StartIndex: &start})
	require.NoError(t, err)

	var got ListFetchRequest
	require.NoError(t, Codec{}.Unmarshal(data, &got))
	require.NotNil(t, got.StartIndex)
	assert.Equal(t, int32(-3), *got.StartIndex)
	assert.Nil(t, got.EndIndex)
}

func TestCodecUnknownFieldsIgnored(t *testing.T) {
	data, err := Codec{}.Marshal(&SetRequest{Key: []byte("k"), Value: []byte("v"), TTLMillis: 1000})
	require.NoError(t, err)

	var got GetRequest
	require.NoError(t, Codec{}.Unmarshal(data, &got))
	assert.Equal(t, []byte("k"), got.Key)
}

func TestCodecSubscriptionItem(t *testing.T) {
	in := SubscriptionItem{
		Kind:          KindDiscontinuity,
		Discontinuity: &Discontinuity{LastSequence: 4, NewSequence: 9},
	}
	data, err := Codec{}.Marshal(&in)
	require.NoError(t, err)

	var out SubscriptionItem
	require.NoError(t, Codec{}.Unmarshal(data, &out))
	assert.Equal(t, in, out)
	assert.Nil(t, out.Item)
}
