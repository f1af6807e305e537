/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestU128_BitwiseOps(t *testing.T) {
	a := U128FromUint64(0b1010)
	b := U128FromUint64(0b0110)

	assert.Equal(t, U128FromUint64(0b0010), a.And(b))
	assert.Equal(t, U128FromUint64(0b1110), a.Or(b))
	assert.Equal(t, U128FromUint64(0b1100), a.Xor(b))
	assert.Equal(t, U128FromUint64(0b1000), a.AndNot(b))
}

func TestU128_Shl(t *testing.T) {
	cases := []struct {
		name string
		in   U128
		n    uint
		want U128
	}{
		{"zero shift", U128FromUint64(1), 0, U128FromUint64(1)},
		{"within low word", U128FromUint64(1), 5, U128FromUint64(32)},
		{"crosses into high word", U128FromUint64(1), 64, U128{Lo: 0, Hi: 1}},
		{"straddles the boundary", U128FromUint64(1), 63, U128{Lo: 1 << 63, Hi: 0}},
		{"shift by 128 saturates to zero", U128FromUint64(1), 128, ZeroU128},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.in.Shl(tc.n))
		})
	}
}

func TestU128_TestBit(t *testing.T) {
	v := U128{Lo: 1 << 3, Hi: 1 << 2}
	assert.True(t, v.TestBit(3))
	assert.False(t, v.TestBit(4))
	assert.True(t, v.TestBit(66))
	assert.False(t, v.TestBit(67))
	assert.False(t, v.TestBit(200))
}

func TestU128_HasAllHasAny(t *testing.T) {
	v := U128FromUint64(0x2A)
	assert.True(t, v.HasAll(MaskAndJoin))
	assert.True(t, v.HasAny(MaskAndJoin))
	assert.False(t, U128FromUint64(0x08).HasAll(MaskAndJoin))
	assert.True(t, U128FromUint64(0x08).HasAny(MaskAndJoin))
	assert.False(t, ZeroU128.HasAny(MaskAndJoin))
}

func TestU128_DecrementLo(t *testing.T) {
	assert.Equal(t, U128FromUint64(2), U128FromUint64(3).DecrementLo())
	assert.Equal(t, ZeroU128, ZeroU128.DecrementLo())
}

// Round-trip: marshalling then unmarshalling any U128 yields an equal value
// (spec.md §8 "Round-trips").
func TestU128_JSONRoundTrip(t *testing.T) {
	values := []U128{
		ZeroU128,
		U128FromUint64(1),
		U128FromUint64(0xFFFFFFFF),
		{Lo: 0xDEADBEEFCAFEBABE, Hi: 0x1},
		{Lo: 0xFFFFFFFFFFFFFFFF, Hi: 0xFFFFFFFFFFFFFFFF},
	}
	for _, v := range values {
		data, err := v.MarshalJSON()
		require.NoError(t, err)

		var out U128
		require.NoError(t, out.UnmarshalJSON(data))
		assert.True(t, v.Equal(out), "round trip mismatch for %s", v.String())
	}
}
