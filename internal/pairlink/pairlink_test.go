package pairlink_test

import (
	"testing"

	"github.com/morpav/zceq-solver/internal/pairlink"
	"github.com/morpav/zceq-solver/internal/params"
	"github.com/stretchr/testify/require"
)

func TestEncodeTranslateRoundTrip(t *testing.T) {
	cases := []struct {
		larger, smaller uint32
		bucketLowBits   uint32
		partition       uint32
	}{
		{larger: 1, smaller: 0, bucketLowBits: 0, partition: 0},
		{larger: 500, smaller: 7, bucketLowBits: 3, partition: 1},
		{larger: params.ItemsPerBucket - 1, smaller: params.ItemsPerBucket - 2, bucketLowBits: 0x3F, partition: 3},
		{larger: 42, smaller: 41, bucketLowBits: 0x15, partition: 2},
	}

	for _, c := range cases {
		l := pairlink.Encode(c.larger, c.smaller, c.bucketLowBits)

		bucket := c.partition<<(params.BucketBits-params.PartBits) | c.bucketLowBits
		linkPos := uint64(bucket)*params.ItemsPerBucket + uint64(c.partition)*params.ItemsPerOutPartition

		tr := pairlink.Translate(l, linkPos)
		require.Equal(t, uint32(bucket)*params.ItemsPerBucket+c.smaller, tr.Smaller)
		require.Equal(t, uint32(bucket)*params.ItemsPerBucket+c.larger, tr.Larger)
		require.True(t, pairlink.Validate(l, linkPos))
	}
}

func TestSetSingleIndex(t *testing.T) {
	l := pairlink.SetSingleIndex(12345)
	require.Equal(t, pairlink.L(12345), l)
}
