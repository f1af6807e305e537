/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlowDefinition_FactoryBinding(t *testing.T) {
	f := NewFlowDefinition("flow-1")
	assert.False(t, f.IsFactoryBound())

	f.SetFactoryInstance("hash-1", "instantiate", "execute_script")
	assert.True(t, f.IsFactoryBound())
	assert.Equal(t, "hash-1", f.Factory.DataHash)
	assert.Empty(t, f.Factory.InstanceAddress)

	f.BindInstanceAddress("0xabc123")
	assert.Equal(t, "0xabc123", f.Factory.InstanceAddress)
}
