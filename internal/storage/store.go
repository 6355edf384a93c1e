package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/iterlab/internal/dynamo"
)

const (
	MetadataFile = "metadata.json"
	TraceFile    = "trace.csv"
	ConfigFile   = "config.yaml"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) BaseDir() string { return s.baseDir }

func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Fn        string    `json:"fn"`
	Input     string    `json:"input"`
	Mode      string    `json:"mode"`
	IterNum   *int      `json:"iter_num,omitempty"`
	StopDiff  *float64  `json:"stop_diff,omitempty"`
	Steps     int       `json:"steps"`
	Exhausted bool      `json:"exhausted"`
	Columns   []string  `json:"columns"`
	Final     []Value   `json:"final"`
	Error     string    `json:"error,omitempty"`
}

// NewRunID returns "<type>_<8 hex chars>".
func NewRunID(typ string) string {
	return fmt.Sprintf("%s_%s", typ, uuid.NewString()[:8])
}

// Create allocates the run directory and returns its path.
func (s *Store) Create(runID string) (string, error) {
	dir := s.RunDir(runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// SaveConfig stores the exact text of the run file next to the results.
func (s *Store) SaveConfig(runID string, raw []byte) error {
	return os.WriteFile(filepath.Join(s.RunDir(runID), ConfigFile), raw, 0644)
}

func (s *Store) Save(meta RunMetadata, trace *dynamo.Trace) error {
	runDir := s.RunDir(meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return err
	}

	metaFile, err := os.Create(filepath.Join(runDir, MetadataFile))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}

	if trace == nil {
		return nil
	}

	csvFile, err := os.Create(filepath.Join(runDir, TraceFile))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	return WriteTraceCSV(csvFile, trace)
}

// formatValue writes the shortest text that parses back to exactly v.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteTraceCSV writes one row per step with a "step" column followed by
// the trace columns.
func WriteTraceCSV(out io.Writer, trace *dynamo.Trace) error {
	w := csv.NewWriter(out)

	header := append([]string{"step"}, trace.Columns...)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, p := range trace.Points {
		row := make([]string, 0, len(p.Value)+1)
		row = append(row, strconv.Itoa(p.Step))
		for _, v := range p.Value {
			row = append(row, formatValue(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func ReadTraceCSV(in io.Reader) (*dynamo.Trace, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("storage: empty trace file")
	}

	header := records[0]
	if len(header) == 0 || header[0] != "step" {
		return nil, fmt.Errorf("storage: trace header must start with step, got %v", header)
	}

	trace := dynamo.NewTrace(header[1:]...)
	for i, record := range records[1:] {
		step, err := strconv.Atoi(record[0])
		if err != nil || step != i {
			return nil, fmt.Errorf("storage: row %d has step %q", i+1, record[0])
		}

		state := make(dynamo.State, 0, len(record)-1)
		for _, field := range record[1:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: row %d: %w", i+1, err)
			}
			state = append(state, val)
		}
		trace.Append(step, state)
	}
	return trace, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.RunDir(runID), MetadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadTrace(runID string) (*dynamo.Trace, error) {
	file, err := os.Open(filepath.Join(s.RunDir(runID), TraceFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	return ReadTraceCSV(file)
}

func (s *Store) LoadConfig(runID string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.RunDir(runID), ConfigFile))
}
