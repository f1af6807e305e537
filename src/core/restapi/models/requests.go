/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package models

// PaginationParams represents pagination parameters
type PaginationParams struct {
	Page  int `json:"page" form:"page" binding:"min=1"`
	Limit int `json:"limit" form:"limit" binding:"min=1,max=1000"`
}

// GetDefaultPagination returns default pagination params
func GetDefaultPagination() PaginationParams {
	return PaginationParams{
		Page:  1,
		Limit: 20,
	}
}

// NextElemEntry is a single (element_index, next_elem) pair in a
// SetElementRequest, since next_elem is keyed per-element rather than
// expressible as a flat map in JSON.
type NextElemEntry struct {
	ElementIndex uint64   `json:"element_index"`
	NextElem     []uint64 `json:"next_elem"`
}

// SetElementRequest implements spec §6.2 command 1: set_element.
type SetElementRequest struct {
	FlowID       string          `json:"flow_id" binding:"required"`
	ElementIndex uint64          `json:"element_index"`
	Pre          string          `json:"pre_condition" binding:"required"`
	Post         string          `json:"post_condition" binding:"required"`
	TypeInfo     string          `json:"type_info" binding:"required"`
	EventCode    string          `json:"event_code,omitempty"`
	NextElem     []NextElemEntry `json:"next_elem,omitempty"`
}

// LinkSubProcessRequest implements spec §6.2 command 2: link_sub_process.
type LinkSubProcessRequest struct {
	FlowID         string   `json:"flow_id" binding:"required"`
	ParentIndex    uint64   `json:"parent_index"`
	ChildFlowID    string   `json:"child_flow_id" binding:"required"`
	AttachedEvents []uint64 `json:"attached_events,omitempty"`
	CountInstances string   `json:"count_instances,omitempty"`
}

// SetFactoryInstanceRequest implements spec §6.2 command 3:
// set_factory_instance.
type SetFactoryInstanceRequest struct {
	FlowID                string `json:"flow_id" binding:"required"`
	DataHash              string `json:"data_hash" binding:"required"`
	InstantiateSelector   string `json:"instantiate_selector" binding:"required"`
	ExecuteScriptSelector string `json:"execute_script_selector,omitempty"`
}

// CreateRootInstanceRequest implements spec §6.2 command 4:
// create_root_instance.
type CreateRootInstanceRequest struct {
	FlowID string `json:"flow_id" binding:"required"`
}

// ContinueExecutionRequest implements spec §6.2 command 5:
// continue_execution.
type ContinueExecutionRequest struct {
	InstanceID   string `json:"instance_id" binding:"required"`
	ElementIndex uint64 `json:"element_index"`
}

// Validate checks the request carries a non-empty flow id and non-empty
// bitmask fields. Masks themselves are parsed by the handler, which knows
// the error code to surface on a malformed hex string.
func (r *SetElementRequest) Validate() error {
	if r.FlowID == "" {
		return BadRequestError("flow_id is required")
	}
	if r.Pre == "" || r.Post == "" || r.TypeInfo == "" {
		return BadRequestError("pre_condition, post_condition and type_info are required")
	}
	return nil
}

func (r *LinkSubProcessRequest) Validate() error {
	if r.FlowID == "" {
		return BadRequestError("flow_id is required")
	}
	if r.ChildFlowID == "" {
		return BadRequestError("child_flow_id is required")
	}
	return nil
}

func (r *SetFactoryInstanceRequest) Validate() error {
	if r.FlowID == "" {
		return BadRequestError("flow_id is required")
	}
	if r.DataHash == "" {
		return BadRequestError("data_hash is required")
	}
	if r.InstantiateSelector == "" {
		return BadRequestError("instantiate_selector is required")
	}
	return nil
}

func (r *CreateRootInstanceRequest) Validate() error {
	if r.FlowID == "" {
		return BadRequestError("flow_id is required")
	}
	return nil
}

func (r *ContinueExecutionRequest) Validate() error {
	if r.InstanceID == "" {
		return BadRequestError("instance_id is required")
	}
	return nil
}
