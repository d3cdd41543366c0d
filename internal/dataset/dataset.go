// Package dataset reads an audit dataset directory: the lesson log, the
// weather reports, the student roster, the minimums table, and the sunrise
// and sunset calendar.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/couchcryptid/takeoff-audit/internal/domain"
	"github.com/couchcryptid/takeoff-audit/internal/pilots"
)

// ManifestFile is the optional per-dataset override of file names.
const ManifestFile = "dataset.toml"

// Manifest names the files of a dataset, relative to its directory.
type Manifest struct {
	Daycycle string `toml:"daycycle"`
	Weather  string `toml:"weather"`
	Minimums string `toml:"minimums"`
	Students string `toml:"students"`
	Lessons  string `toml:"lessons"`
}

// DefaultManifest returns the standard file names.
func DefaultManifest() Manifest {
	return Manifest{
		Daycycle: "daycycle.json",
		Weather:  "weather.json",
		Minimums: "minimums.csv",
		Students: "students.csv",
		Lessons:  "lessons.csv",
	}
}

type manifestFile struct {
	Files Manifest `toml:"files"`
}

// ReadManifest returns the manifest for dir. Names missing from
// dataset.toml, or the whole file when absent, fall back to the defaults.
func ReadManifest(dir string) (Manifest, error) {
	m := DefaultManifest()
	path := filepath.Join(dir, ManifestFile)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return m, nil
	}

	doc := manifestFile{Files: m}
	md, err := toml.DecodeFile(path, &doc)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", ManifestFile, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Manifest{}, fmt.Errorf("%s: unknown keys %s", ManifestFile, strings.Join(keys, ", "))
	}
	return doc.Files, nil
}

// ReadCSV returns every row of a CSV file, header included.
func ReadCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

// ReadJSON decodes a JSON file into v.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Dataset is a fully parsed dataset directory.
type Dataset struct {
	Dir          string
	Manifest     Manifest
	Lessons      []domain.TakeoffRecord
	Observations *domain.ObservationLog
	Students     pilots.Students
	Minimums     *pilots.MinimumsTable
	Daycycle     pilots.Daycycle
}

// Resolver returns the minimums resolver over the dataset's roster, table,
// and calendar.
func (d *Dataset) Resolver() *pilots.Resolver {
	return pilots.NewResolver(d.Students, d.Minimums, d.Daycycle)
}

// Load reads and parses every file of the dataset in dir. Naive timestamps
// in the weather keys and the roster are interpreted in loc.
func Load(dir string, loc *time.Location) (*Dataset, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dataset %s: not a directory", dir)
	}

	m, err := ReadManifest(dir)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", dir, err)
	}
	ds := &Dataset{Dir: dir, Manifest: m}
	path := func(name string) string { return filepath.Join(dir, name) }

	if err := ReadJSON(path(m.Daycycle), &ds.Daycycle); err != nil {
		return nil, fmt.Errorf("dataset %s: %w", m.Daycycle, err)
	}

	var reports map[string]domain.Observation
	if err := ReadJSON(path(m.Weather), &reports); err != nil {
		return nil, fmt.Errorf("dataset %s: %w", m.Weather, err)
	}
	if ds.Observations, err = domain.NewObservationLog(reports, loc); err != nil {
		return nil, fmt.Errorf("dataset %s: %w", m.Weather, err)
	}

	rows, err := ReadCSV(path(m.Minimums))
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", m.Minimums, err)
	}
	if ds.Minimums, err = pilots.ParseMinimums(rows); err != nil {
		return nil, fmt.Errorf("dataset %s: %w", m.Minimums, err)
	}

	if rows, err = ReadCSV(path(m.Students)); err != nil {
		return nil, fmt.Errorf("dataset %s: %w", m.Students, err)
	}
	if ds.Students, err = pilots.ParseStudents(rows, loc); err != nil {
		return nil, fmt.Errorf("dataset %s: %w", m.Students, err)
	}

	if rows, err = ReadCSV(path(m.Lessons)); err != nil {
		return nil, fmt.Errorf("dataset %s: %w", m.Lessons, err)
	}
	if ds.Lessons, err = parseLessons(rows); err != nil {
		return nil, fmt.Errorf("dataset %s: %w", m.Lessons, err)
	}
	return ds, nil
}

// parseLessons skips the header row.
func parseLessons(rows [][]string) ([]domain.TakeoffRecord, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	out := make([]domain.TakeoffRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := domain.TakeoffRecordFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
