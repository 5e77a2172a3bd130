package domain

import (
	"fmt"
	"strings"
)

type SnapshotFormat string

const (
	SnapshotFormatJSON  SnapshotFormat = "json"
	SnapshotFormatProto SnapshotFormat = "proto"
)

const DefaultSnapshotFormat = SnapshotFormatJSON

func (format SnapshotFormat) IsValid() bool {
	return format == SnapshotFormatJSON || format == SnapshotFormatProto
}

func ParseSnapshotFormat(value string) (SnapshotFormat, error) {
	parsed := SnapshotFormat(strings.TrimSpace(value))
	if parsed == "" {
		return "", fmt.Errorf("snapshot format is required")
	}
	if !parsed.IsValid() {
		return "", fmt.Errorf("invalid snapshot format: %s", value)
	}
	return parsed, nil
}

func NormalizeSnapshotFormat(format SnapshotFormat) SnapshotFormat {
	if format.IsValid() {
		return format
	}
	return DefaultSnapshotFormat
}

type SaveMode string

const (
	SaveModeImmediate SaveMode = "immediate"
	SaveModeThrottled SaveMode = "throttled"
)

const DefaultSaveMode = SaveModeThrottled

func (mode SaveMode) IsValid() bool {
	return mode == SaveModeImmediate || mode == SaveModeThrottled
}

func ParseSaveMode(value string) (SaveMode, error) {
	parsed := SaveMode(strings.TrimSpace(value))
	if parsed == "" {
		return "", fmt.Errorf("save mode is required")
	}
	if !parsed.IsValid() {
		return "", fmt.Errorf("invalid save mode: %s", value)
	}
	return parsed, nil
}

func NormalizeSaveMode(mode SaveMode) SaveMode {
	if mode.IsValid() {
		return mode
	}
	return DefaultSaveMode
}
