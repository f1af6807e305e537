/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package host

import (
	"encoding/hex"

	"bpmn-token-engine/src/core/logger"
	"bpmn-token-engine/src/core/models"
)

// LoggingEventSink is the reference EventSink: it publishes every event as
// a structured log line instead of to a message broker. Sufficient for
// single-node deployments and for tests; swap in a channel-backed sink for
// multi-node fan-out.
type LoggingEventSink struct{}

// NewLoggingEventSink creates the reference EventSink.
func NewLoggingEventSink() *LoggingEventSink {
	return &LoggingEventSink{}
}

// FactorySet implements EventSink.
func (s *LoggingEventSink) FactorySet(flowID models.FlowID, dataHash string) {
	logger.Info("FactorySet", logger.String("flow_id", flowID), logger.String("data_hash", dataHash))
}

// NewCaseCreated implements EventSink.
func (s *LoggingEventSink) NewCaseCreated(contractID string) {
	logger.Info("NewCaseCreated", logger.String("contract_id", contractID))
}

// MessageSent implements EventSink.
func (s *LoggingEventSink) MessageSent(eventCode models.EventCode) {
	logger.Info("MessageSent", logger.String("event_code", hex.EncodeToString(eventCode[:])))
}
