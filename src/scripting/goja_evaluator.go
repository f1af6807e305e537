/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

// Package scripting provides a host.ScriptEvaluator backed by goja, a pure
// Go JavaScript runtime, standing in for the "data & scripts" contract's
// instantiate_selector / execute_script_selector callbacks.
package scripting

import (
	"fmt"
	"time"

	"bpmn-token-engine/src/core/models"
	"bpmn-token-engine/src/core/types"

	"github.com/dop251/goja"
)

// GojaEvaluator evaluates a flow's entry-point JavaScript function to
// materialise instances and to resolve script-task/split-gateway results.
// Each call runs in a fresh VM, matching the "one evaluation, no shared
// state" contract a script task or gateway condition needs.
type GojaEvaluator struct {
	timeout    time.Duration
	entryPoint string
}

// NewGojaEvaluator creates an evaluator with the given per-call timeout and
// the JS function name every selector body must export (src/core/config
// ScriptingConfig.EntryPoint, default "evaluate").
func NewGojaEvaluator(timeoutMs int64, entryPoint string) *GojaEvaluator {
	if timeoutMs <= 0 {
		timeoutMs = 500
	}
	if entryPoint == "" {
		entryPoint = "evaluate"
	}
	return &GojaEvaluator{
		timeout:    time.Duration(timeoutMs) * time.Millisecond,
		entryPoint: entryPoint,
	}
}

// NewInstance runs the factory's instantiate_selector as a JS function and
// expects it to return a contract id string.
func (g *GojaEvaluator) NewInstance(flowID models.FlowID, factory models.Factory) (models.InstanceHandle, error) {
	vm := goja.New()
	if err := g.loadSelector(vm, factory.InstantiateSelector); err != nil {
		return models.InstanceHandle{}, err
	}

	fn, ok := goja.AssertFunction(vm.Get(g.entryPoint))
	if !ok {
		return models.InstanceHandle{}, fmt.Errorf("scripting: instantiate_selector does not export %q", g.entryPoint)
	}

	result, err := g.call(vm, fn, vm.ToValue(flowID), vm.ToValue(factory.DataHash))
	if err != nil {
		return models.InstanceHandle{}, err
	}

	return models.InstanceHandle{ContractID: result.String()}, nil
}

// ExecuteScript runs the factory's execute_script_selector against an
// element and decodes the returned JS number as a u128 low word (script
// conditions in this domain only ever need values that fit a uint64).
func (g *GojaEvaluator) ExecuteScript(flowID models.FlowID, elementIndex models.ElementIndex, selector string) (types.U128, error) {
	vm := goja.New()
	if err := g.loadSelector(vm, selector); err != nil {
		return types.ZeroU128, err
	}

	fn, ok := goja.AssertFunction(vm.Get(g.entryPoint))
	if !ok {
		return types.ZeroU128, fmt.Errorf("scripting: execute_script_selector does not export %q", g.entryPoint)
	}

	result, err := g.call(vm, fn, vm.ToValue(flowID), vm.ToValue(elementIndex))
	if err != nil {
		return types.ZeroU128, err
	}

	return types.U128FromUint64(uint64(result.ToInteger())), nil
}

func (g *GojaEvaluator) loadSelector(vm *goja.Runtime, selector string) error {
	if selector == "" {
		return fmt.Errorf("scripting: empty selector")
	}
	if _, err := vm.RunString(selector); err != nil {
		return types.NewScriptDecodingErrorError(0, err.Error())
	}
	return nil
}

func (g *GojaEvaluator) call(vm *goja.Runtime, fn goja.Callable, args ...goja.Value) (goja.Value, error) {
	vm.SetMaxCallStackSize(256)

	timer := time.AfterFunc(g.timeout, func() {
		vm.Interrupt(fmt.Sprintf("scripting: exceeded %s timeout", g.timeout))
	})
	defer timer.Stop()

	result, err := fn(goja.Undefined(), args...)
	if err != nil {
		return nil, types.NewScriptDecodingErrorError(0, err.Error())
	}
	return result, nil
}

