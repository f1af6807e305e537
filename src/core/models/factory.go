/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package models

// InstanceHandle is what the host returns from materialising a data
// contract for a flow — either a fresh root case or a sub-process child
// (spec §4.4's new_instance).
type InstanceHandle struct {
	ContractID string `json:"contract_id"`
}

// SetFactoryInstance implements spec §6.2 command 3: records the host's
// factory handle for a flow so create_root_instance/create_instance know
// how to materialise its data contract later.
func (f *FlowDefinition) SetFactoryInstance(dataHash, instantiateSelector, executeScriptSelector string) {
	f.Factory = Factory{
		DataHash:              dataHash,
		InstantiateSelector:   instantiateSelector,
		ExecuteScriptSelector: executeScriptSelector,
	}
}

// BindInstanceAddress records the concrete on-host address once the
// factory's data contract has actually been deployed/materialised for this
// flow. Left empty until then.
func (f *FlowDefinition) BindInstanceAddress(address string) {
	f.Factory.InstanceAddress = address
}

// IsFactoryBound reports whether set_factory_instance has been called for
// this flow yet. create_root_instance/create_instance require this before
// they can materialise a data contract.
func (f *FlowDefinition) IsFactoryBound() bool {
	return f.Factory.DataHash != ""
}
