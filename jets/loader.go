package jets

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// cacheVersion is incremented when the on-disk cache format changes.
const cacheVersion = 1

// tensorCache is the gob payload persisted for the raw [N, 30, 4] tensor.
type tensorCache struct {
	Version   int
	Jets      int
	Particles int
	Features  int
	Data      []float32
}

func cachePath(dataDir, jetType string) string {
	return filepath.Join(dataDir, jetType+"_jets.gob")
}

func csvPath(dataDir, jetType string) string {
	return filepath.Join(dataDir, jetType+"_jets.csv")
}

// loadRaw produces the raw [N, 30, 4] tensor for the configured jet type.
// The gob cache is preferred; otherwise the csv is parsed (fetching it first
// via cfg.Fetcher when absent) and the cache is written for future loads.
func loadRaw(cfg *Config) (*Tensor3, error) {
	gobFile := cachePath(cfg.DataDir, cfg.JetType)
	csvFile := csvPath(cfg.DataDir, cfg.JetType)

	if !cfg.Download {
		if t, err := readCache(gobFile); err == nil {
			cfg.Logger.Info("loaded dataset from cache",
				zap.String("path", gobFile), zap.Stringer("shape", t))
			return t, nil
		}
	}

	if _, err := os.Stat(csvFile); err != nil {
		if cfg.Fetcher == nil {
			return nil, fmt.Errorf("%w: no cache at %s and no csv at %s", ErrMissingData, gobFile, csvFile)
		}
		cfg.Logger.Info("downloading jet csv", zap.String("jetType", cfg.JetType))
		if err := cfg.Fetcher.Fetch(cfg.JetType, csvFile); err != nil {
			return nil, fmt.Errorf("%w: fetch failed: %v", ErrMissingData, err)
		}
		if _, err := os.Stat(csvFile); err != nil {
			return nil, fmt.Errorf("%w: fetcher reported success but %s is missing", ErrMissingData, csvFile)
		}
	}

	cfg.Logger.Info("converting jet csv", zap.String("path", csvFile))
	t, err := parseCSV(csvFile)
	if err != nil {
		return nil, err
	}

	if err := writeCache(gobFile, t); err != nil {
		return nil, fmt.Errorf("writing cache %s: %w", gobFile, err)
	}
	return t, nil
}

// parseCSV reads a whitespace or comma delimited file of flat 4-column rows
// and reshapes it row-major into [N, 30, 4]. Blank lines and '#' comment
// lines are skipped.
func parseCSV(path string) (*Tensor3, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening csv: %v", ErrMissingData, err)
	}
	defer file.Close()

	var data []float32
	rows := 0

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})
		if len(fields) != RawFeatures {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShape, rows, len(fields), RawFeatures)
		}
		for _, f := range fields {
			v, err := parseFloat32(f)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: %v", ErrMissingData, rows, err)
			}
			data = append(data, v)
		}
		rows++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading csv: %v", ErrMissingData, err)
	}

	if rows == 0 {
		return nil, fmt.Errorf("%w: csv %s has no data rows", ErrMissingData, path)
	}
	if rows%RawParticles != 0 {
		return nil, fmt.Errorf("%w: %d rows is not a multiple of %d particles", ErrShape, rows, RawParticles)
	}

	return &Tensor3{
		Data:      data,
		Jets:      rows / RawParticles,
		Particles: RawParticles,
		Features:  RawFeatures,
	}, nil
}

// readCache loads a tensor previously written by writeCache. Any decode
// failure or version mismatch is reported so the caller falls back to the
// csv path.
func readCache(path string) (*Tensor3, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var c tensorCache
	if err := gob.NewDecoder(file).Decode(&c); err != nil {
		return nil, fmt.Errorf("decoding cache: %w", err)
	}
	if c.Version != cacheVersion {
		return nil, fmt.Errorf("cache version %d, want %d", c.Version, cacheVersion)
	}
	if len(c.Data) != c.Jets*c.Particles*c.Features {
		return nil, fmt.Errorf("%w: cache buffer has %d values for shape [%d %d %d]",
			ErrShape, len(c.Data), c.Jets, c.Particles, c.Features)
	}
	return &Tensor3{
		Data:      c.Data,
		Jets:      c.Jets,
		Particles: c.Particles,
		Features:  c.Features,
	}, nil
}

// writeCache persists the raw tensor as gob, going through a temp file so a
// crash mid-write never leaves a truncated cache behind.
func writeCache(path string, t *Tensor3) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	c := tensorCache{
		Version:   cacheVersion,
		Jets:      t.Jets,
		Particles: t.Particles,
		Features:  t.Features,
		Data:      t.Data,
	}
	if err := gob.NewEncoder(tmp).Encode(&c); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
