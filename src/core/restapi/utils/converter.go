/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package utils

import (
	"fmt"
	"strings"

	"bpmn-token-engine/src/core/types"
)

// Converter provides conversion utilities between wire and core formats.
type Converter struct{}

// NewConverter creates new converter instance
func NewConverter() *Converter {
	return &Converter{}
}

// HexToU128 parses a 0x-prefixed hex string into a U128 bitmask.
func (c *Converter) HexToU128(value string) (types.U128, error) {
	s := strings.TrimPrefix(strings.TrimSpace(value), "0x")
	if s == "" {
		return types.ZeroU128, nil
	}
	if len(s) > 32 {
		return types.ZeroU128, fmt.Errorf("hex value %q exceeds 128 bits", value)
	}

	if len(s) <= 16 {
		var lo uint64
		if _, err := fmt.Sscanf(s, "%x", &lo); err != nil {
			return types.ZeroU128, fmt.Errorf("invalid hex value %q: %w", value, err)
		}
		return types.U128FromUint64(lo), nil
	}

	hiLen := len(s) - 16
	var hi, lo uint64
	if _, err := fmt.Sscanf(s[:hiLen], "%x", &hi); err != nil {
		return types.ZeroU128, fmt.Errorf("invalid hex value %q: %w", value, err)
	}
	if _, err := fmt.Sscanf(s[hiLen:], "%x", &lo); err != nil {
		return types.ZeroU128, fmt.Errorf("invalid hex value %q: %w", value, err)
	}
	return types.U128{Lo: lo, Hi: hi}, nil
}

// U128ToHex renders a U128 as a 0x-prefixed hex string, trimmed of leading
// zero words.
func (c *Converter) U128ToHex(v types.U128) string {
	if v.Hi == 0 {
		return fmt.Sprintf("0x%x", v.Lo)
	}
	return fmt.Sprintf("0x%x%016x", v.Hi, v.Lo)
}

// ParseEventCode packs a string into the fixed-width EventCode array used as
// the message/signal/error correlation key.
func (c *Converter) ParseEventCode(value string) (code [32]byte) {
	copy(code[:], value)
	return code
}

// FormatEventCode renders an EventCode back to its trimmed string form.
func (c *Converter) FormatEventCode(code [32]byte) string {
	return strings.TrimRight(string(code[:]), "\x00")
}
