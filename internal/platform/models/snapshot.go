package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SnapshotProtocol is the only snapshot generation we emit. Protocol 0
// is the historical unwrapped form, accepted read-only.
const SnapshotProtocol = 1

type Snapshot struct {
	Protocol int             `json:"protocol"`
	Routes   []SnapshotRoute `json:"routes"`
}

type SnapshotRoute struct {
	RepoName  string   `json:"repo_name"`
	ChannelID string   `json:"channel_id"`
	Events    []string `json:"events"`
}

// ParseSnapshot decodes a snapshot file. A bare JSON array is treated as
// the legacy protocol-0 form; anything else must carry the versioned
// envelope with a known protocol number.
func ParseSnapshot(raw []byte) (*Snapshot, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var routes []SnapshotRoute
		if err := json.Unmarshal(raw, &routes); err != nil {
			return nil, fmt.Errorf("invalid legacy snapshot: %w", err)
		}
		return &Snapshot{Protocol: 0, Routes: routes}, nil
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}
	if snap.Protocol != SnapshotProtocol {
		return nil, fmt.Errorf("unsupported snapshot protocol %d", snap.Protocol)
	}
	return &snap, nil
}
