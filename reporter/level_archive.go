package reporter

import (
	"encoding/json"
	"fmt"

	"github.com/tolelom/dsimnet/storage"
)

// LevelArchive is the optional durable archive named in §6's
// reporter.archivePath config key. Where the CSV logs are the
// human-readable run output, the archive is a full JSON-encoded replay
// log keyed by simulation id and row sequence, meant for later
// programmatic re-analysis across many runs without re-parsing CSV.
type LevelArchive struct {
	db   storage.DB
	seqs map[string]int64
}

// OpenLevelArchive opens (or creates) a LevelDB-backed archive at path.
func OpenLevelArchive(path string) (*LevelArchive, error) {
	db, err := storage.NewLevelDB(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return NewLevelArchive(db), nil
}

// NewLevelArchive wraps an arbitrary storage.DB (LevelDB in production,
// testutil.MemDB in tests) as an archive.
func NewLevelArchive(db storage.DB) *LevelArchive {
	return &LevelArchive{db: db, seqs: make(map[string]int64)}
}

func (a *LevelArchive) nextKey(table string, simID int) []byte {
	k := fmt.Sprintf("%s:%d", table, simID)
	seq := a.seqs[k]
	a.seqs[k] = seq + 1
	return []byte(fmt.Sprintf("%s:%012d", k, seq))
}

func (a *LevelArchive) put(table string, simID int, row any) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("marshal %s row: %w", table, err)
	}
	return a.db.Set(a.nextKey(table, simID), data)
}

// Archive persists every row currently buffered in s. It is additive: a
// Set can be archived more than once as a run progresses, since each
// call only appends — rows written in earlier calls are not replayed.
func (a *LevelArchive) Archive(s *Set) error {
	for _, r := range s.Blocks {
		if err := a.put("blocks", s.SimID, r); err != nil {
			return err
		}
	}
	s.Blocks = nil
	for _, r := range s.Structures {
		if err := a.put("structures", s.SimID, r); err != nil {
			return err
		}
	}
	s.Structures = nil
	for _, r := range s.Attacks {
		if err := a.put("attacks", s.SimID, r); err != nil {
			return err
		}
	}
	s.Attacks = nil
	for _, r := range s.Events {
		if err := a.put("events", s.SimID, r); err != nil {
			return err
		}
	}
	s.Events = nil
	for _, r := range s.Errors {
		if err := a.put("errors", s.SimID, r); err != nil {
			return err
		}
	}
	s.Errors = nil
	return nil
}

// ReadBlocks replays every archived BlockRow for simID, in append order.
func (a *LevelArchive) ReadBlocks(simID int) ([]BlockRow, error) {
	prefix := []byte(fmt.Sprintf("blocks:%d:", simID))
	it := a.db.NewIterator(prefix)
	defer it.Release()

	var rows []BlockRow
	for it.Next() {
		var r BlockRow
		if err := json.Unmarshal(it.Value(), &r); err != nil {
			return nil, fmt.Errorf("unmarshal archived block row: %w", err)
		}
		rows = append(rows, r)
	}
	return rows, it.Error()
}

// Close releases the underlying store.
func (a *LevelArchive) Close() error {
	return a.db.Close()
}
