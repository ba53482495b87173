package pipeline

import (
	"bytes"
	"encoding/gob"
	"errors"

	"github.com/klauspost/compress/s2"
)

// Snapshot is a plain-data summary of a Result suitable for gob encoding: it
// intentionally does not carry the IR graph itself (ir.Statement/ir.Expression are
// closed interfaces over dozens of concrete types, and gob-registering every one
// just to support an optional debug dump is not worth the maintenance burden) —
// it carries the shape an offline diff across two runs actually needs: what ran,
// what changed, and what was warned about.
type Snapshot struct {
	BlockCount           int
	TotalChanges         int
	TotalExecutionTimeMs int64
	PassResults          []SnapshotPassResult
	Diagnostics          []string
}

// SnapshotPassResult is the gob-friendly projection of a PassResult (error values
// do not round-trip through gob without registration, so they are flattened to
// their message string).
type SnapshotPassResult struct {
	Pass       string
	Changed    bool
	DurationNs int64
	TimedOut   bool
	Err        string
}

// NewSnapshot projects r into its gob-encodable summary.
func NewSnapshot(r *Result) Snapshot {
	snap := Snapshot{
		BlockCount:           len(r.Graph.Blocks),
		TotalChanges:         r.TotalChanges,
		TotalExecutionTimeMs: r.TotalExecutionTimeMs,
	}
	for _, pr := range r.PassResults {
		spr := SnapshotPassResult{Pass: pr.Pass, Changed: pr.Changed, DurationNs: pr.Duration.Nanoseconds(), TimedOut: pr.TimedOut}
		if pr.Err != nil {
			spr.Err = pr.Err.Error()
		}
		snap.PassResults = append(snap.PassResults, spr)
	}
	if r.Diagnostics != nil {
		for _, e := range r.Diagnostics.Entries() {
			snap.Diagnostics = append(snap.Diagnostics, e.String())
		}
	}
	return snap
}

// Encode gob-encodes the snapshot through an s2 writer, the same
// gob-then-s2 layering the teacher uses to shrink cross-package fact payloads
// (inference/inferred_map.go's GobEncode).
func Encode(snap Snapshot) (b []byte, err error) {
	var buf bytes.Buffer
	writer := s2.NewWriter(&buf)
	defer func() {
		if cerr := writer.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	if err := gob.NewEncoder(writer).Encode(snap); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reverses Encode.
func Decode(input []byte) (Snapshot, error) {
	var snap Snapshot
	buf := bytes.NewBuffer(input)
	err := gob.NewDecoder(s2.NewReader(buf)).Decode(&snap)
	return snap, err
}
