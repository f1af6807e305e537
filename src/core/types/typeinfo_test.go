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
)

func TestDecodeKind(t *testing.T) {
	cases := []struct {
		name string
		info U128
		want ElementKind
	}{
		{"and join", U128FromUint64(0x2A), KindAndJoin},
		{"sequential MI guard wins over generic activity", U128FromUint64(0x81), KindSequentialMultiInstanceOrSubProcess},
		{"parallel MI guard wins over generic activity", U128FromUint64(0x41), KindParallelMultiInstance},
		{"script task", U128FromUint64(0x1009), KindScriptTaskOrSplitGateway},
		{"throw event", U128FromUint64(0x0C), KindThrowEvent},
		{"generic gateway", U128FromUint64(0x02), KindGenericGateway},
		{"generic activity", U128FromUint64(0x01), KindGenericActivity},
		{"generic event", U128FromUint64(0x04), KindGenericEvent},
		{"unknown", ZeroU128, KindUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DecodeKind(tc.info))
		})
	}
}

func TestElementKind_String(t *testing.T) {
	assert.Equal(t, "and_join", KindAndJoin.String())
	assert.Equal(t, "throw_event", KindThrowEvent.String())
	assert.Equal(t, "unknown", ElementKind(999).String())
}

func TestIsEventStartAndIsSubProcessActivity(t *testing.T) {
	assert.True(t, IsEventStart(U128FromUint64(0x24)))
	assert.False(t, IsEventStart(U128FromUint64(0x20)))

	assert.True(t, IsSubProcessActivity(U128FromUint64(0x21)))
	assert.False(t, IsSubProcessActivity(U128FromUint64(0x20)))
}
