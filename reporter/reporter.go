// Package reporter implements the append-only logs of §4.8: in-memory
// during a run, flushed to the fixed-schema CSV files of §6 at shutdown.
// A Set is owned by exactly one simulation run (one goroutine), so — like
// the rest of the core — it needs no internal locking (§5).
package reporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"
)

// BlockRow is one row of the BlockLog (§6).
type BlockRow struct {
	SimID        int
	SimTime      float64
	SysTime      time.Time
	NodeID       int64
	BlockID      int64
	ParentID     int64
	Height       int64
	BlockContent string
	EventType    string
	Difficulty   float64
	Cycles       float64
}

func (r BlockRow) record() []string {
	return []string{
		itoa(r.SimID), ftoa(r.SimTime), r.SysTime.Format(time.RFC3339Nano),
		i64toa(r.NodeID), i64toa(r.BlockID), i64toa(r.ParentID), i64toa(r.Height),
		r.BlockContent, r.EventType, ftoa(r.Difficulty), ftoa(r.Cycles),
	}
}

// StructureRow is one row of the StructureLog (§6).
type StructureRow struct {
	SimID         int
	SimTime       float64
	SysTime       time.Time
	NodeID        int64
	BlockID       int64
	ParentBlockID int64
	Height        int64
	Content       string
	Place         string // "attached" | "orphan" | "hidden"
}

func (r StructureRow) record() []string {
	return []string{
		itoa(r.SimID), ftoa(r.SimTime), r.SysTime.Format(time.RFC3339Nano),
		i64toa(r.NodeID), i64toa(r.BlockID), i64toa(r.ParentBlockID), i64toa(r.Height),
		r.Content, r.Place,
	}
}

// AttackRow is one row of the AttackLog (§6).
type AttackRow struct {
	SimID             int
	SimTime           float64
	SysTime           time.Time
	NodeID            int64
	EventType         string
	TxID              int64
	BlockID           int64
	BlockHeight       int64
	HiddenChainLength int
	PublicChainLength int64
	Description       string
}

func (r AttackRow) record() []string {
	return []string{
		itoa(r.SimID), ftoa(r.SimTime), r.SysTime.Format(time.RFC3339Nano),
		i64toa(r.NodeID), r.EventType, i64toa(r.TxID), i64toa(r.BlockID),
		i64toa(r.BlockHeight), itoa(r.HiddenChainLength), i64toa(r.PublicChainLength),
		r.Description,
	}
}

// EventRow is a free-form narration row for the EventLog.
type EventRow struct {
	SimID       int
	SimTime     float64
	SysTime     time.Time
	Description string
}

func (r EventRow) record() []string {
	return []string{itoa(r.SimID), ftoa(r.SimTime), r.SysTime.Format(time.RFC3339Nano), r.Description}
}

// ErrorRow is one row of the ErrorLog: every non-fatal simerr occurrence.
type ErrorRow struct {
	SimID       int
	SimTime     float64
	SysTime     time.Time
	Kind        string
	Description string
}

func (r ErrorRow) record() []string {
	return []string{itoa(r.SimID), ftoa(r.SimTime), r.SysTime.Format(time.RFC3339Nano), r.Kind, r.Description}
}

// Enabled toggles which logs accumulate rows, mirroring the
// reporter.report{Events,BlockEvents,StructureEvents,AttackEvents} config
// flags of §6. Errors is set from reporter.reportErrorEvents but toggles
// nothing: AppendError records every row regardless.
type Enabled struct {
	Events     bool
	Blocks     bool
	Structures bool
	Attacks    bool
	Errors     bool
}

// DefaultEnabled turns every log on.
func DefaultEnabled() Enabled {
	return Enabled{Events: true, Blocks: true, Structures: true, Attacks: true, Errors: true}
}

// Set is one simulation run's collection of append-only logs.
type Set struct {
	SimID   int
	Enabled Enabled
	Now     func() float64 // simulated-time source, wired to the run's scheduler

	Blocks     []BlockRow
	Structures []StructureRow
	Attacks    []AttackRow
	Events     []EventRow
	Errors     []ErrorRow
}

// NewSet returns an empty log Set for simulation run simID.
func NewSet(simID int, enabled Enabled, now func() float64) *Set {
	return &Set{SimID: simID, Enabled: enabled, Now: now}
}

func (s *Set) simTime() float64 {
	if s.Now == nil {
		return 0
	}
	return s.Now()
}

// AppendBlock records a BlockLog row.
func (s *Set) AppendBlock(nodeID, blockID, parentID, height int64, content, eventType string, difficulty, cycles float64) {
	if !s.Enabled.Blocks {
		return
	}
	s.Blocks = append(s.Blocks, BlockRow{
		SimID: s.SimID, SimTime: s.simTime(), SysTime: time.Now(),
		NodeID: nodeID, BlockID: blockID, ParentID: parentID, Height: height,
		BlockContent: content, EventType: eventType, Difficulty: difficulty, Cycles: cycles,
	})
}

// AppendStructure records a StructureLog row.
func (s *Set) AppendStructure(nodeID, blockID, parentID, height int64, content, place string) {
	if !s.Enabled.Structures {
		return
	}
	s.Structures = append(s.Structures, StructureRow{
		SimID: s.SimID, SimTime: s.simTime(), SysTime: time.Now(),
		NodeID: nodeID, BlockID: blockID, ParentBlockID: parentID, Height: height,
		Content: content, Place: place,
	})
}

// AppendAttack records an AttackLog row.
func (s *Set) AppendAttack(nodeID int64, eventType string, txID, blockID, blockHeight int64, hiddenLen int, publicLen int64, description string) {
	if !s.Enabled.Attacks {
		return
	}
	s.Attacks = append(s.Attacks, AttackRow{
		SimID: s.SimID, SimTime: s.simTime(), SysTime: time.Now(),
		NodeID: nodeID, EventType: eventType, TxID: txID, BlockID: blockID,
		BlockHeight: blockHeight, HiddenChainLength: hiddenLen, PublicChainLength: publicLen,
		Description: description,
	})
}

// AppendEvent records an EventLog row.
func (s *Set) AppendEvent(description string) {
	if !s.Enabled.Events {
		return
	}
	s.Events = append(s.Events, EventRow{SimID: s.SimID, SimTime: s.simTime(), SysTime: time.Now(), Description: description})
}

// AppendError records an ErrorLog row. Always recorded regardless of
// Enabled flags — errors are diagnostics, not optional telemetry.
func (s *Set) AppendError(kind, description string) {
	s.Errors = append(s.Errors, ErrorRow{SimID: s.SimID, SimTime: s.simTime(), SysTime: time.Now(), Kind: kind, Description: description})
}

// Writers bundles the five open CSV writers a driver run flushes into.
type Writers struct {
	Blocks     *csv.Writer
	Structures *csv.Writer
	Attacks    *csv.Writer
	Events     *csv.Writer
	Errors     *csv.Writer
}

var headers = map[string][]string{
	"blocks":     {"SimID", "SimTime", "SysTime", "NodeID", "BlockID", "ParentID", "Height", "BlockContent", "EventType", "Difficulty", "Cycles"},
	"structures": {"SimID", "SimTime", "SysTime", "NodeID", "BlockID", "ParentBlockID", "Height", "Content", "Place"},
	"attacks":    {"SimID", "SimTime", "SysTime", "NodeID", "EventType", "TxID", "BlockID", "BlockHeight", "HiddenChainLength", "PublicChainLength", "Description"},
	"events":     {"SimID", "SimTime", "SysTime", "Description"},
	"errors":     {"SimID", "SimTime", "SysTime", "Kind", "Description"},
}

// OpenWriters creates (or truncates) the five CSV files under dir and
// writes each one's header row.
func OpenWriters(dir string) (*Writers, []*os.File, error) {
	open := func(name string) (*csv.Writer, *os.File, error) {
		f, err := os.Create(dir + "/" + name + ".csv")
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", name, err)
		}
		w := csv.NewWriter(f)
		if err := w.Write(headers[name]); err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("write header %s: %w", name, err)
		}
		return w, f, nil
	}

	names := []string{"blocks", "structures", "attacks", "events", "errors"}
	writers := make(map[string]*csv.Writer, len(names))
	var files []*os.File
	for _, n := range names {
		w, f, err := open(n)
		if err != nil {
			for _, opened := range files {
				opened.Close()
			}
			return nil, nil, err
		}
		writers[n] = w
		files = append(files, f)
	}
	return &Writers{
		Blocks:     writers["blocks"],
		Structures: writers["structures"],
		Attacks:    writers["attacks"],
		Events:     writers["events"],
		Errors:     writers["errors"],
	}, files, nil
}

// Flush appends every row in s to w and flushes each writer. Flush is
// called once per completed run, sequentially, from the driver's main
// goroutine — see SPEC_FULL.md's concurrency note on why Set itself needs
// no locking even when runs execute in parallel.
func (s *Set) Flush(w *Writers) error {
	for _, r := range s.Blocks {
		if err := w.Blocks.Write(r.record()); err != nil {
			return err
		}
	}
	for _, r := range s.Structures {
		if err := w.Structures.Write(r.record()); err != nil {
			return err
		}
	}
	for _, r := range s.Attacks {
		if err := w.Attacks.Write(r.record()); err != nil {
			return err
		}
	}
	for _, r := range s.Events {
		if err := w.Events.Write(r.record()); err != nil {
			return err
		}
	}
	for _, r := range s.Errors {
		if err := w.Errors.Write(r.record()); err != nil {
			return err
		}
	}
	w.Blocks.Flush()
	w.Structures.Flush()
	w.Attacks.Flush()
	w.Events.Flush()
	w.Errors.Flush()
	return nil
}

func itoa(i int) string     { return fmt.Sprintf("%d", i) }
func i64toa(i int64) string { return fmt.Sprintf("%d", i) }
func ftoa(f float64) string { return fmt.Sprintf("%.6f", f) }
