package jets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// writeRawCSV writes a raw jet csv with `jets` jets of deterministic values.
// Rows alternate comma and whitespace delimiters to exercise both forms.
func writeRawCSV(t *testing.T, path string, jets int) {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("# eta phi pt mask\n")
	for j := 0; j < jets; j++ {
		for p := 0; p < RawParticles; p++ {
			eta := float32(j) * 0.1
			phi := float32(p) * 0.01
			pt := float32(j*RawParticles + p)
			mask := float32(0)
			if p < 20 {
				mask = 1
			}
			if p%2 == 0 {
				fmt.Fprintf(&sb, "%v,%v,%v,%v\n", eta, phi, pt, mask)
			} else {
				fmt.Fprintf(&sb, "%v %v %v %v\n", eta, phi, pt, mask)
			}
		}
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("writing csv: %v", err)
	}
}

func testConfig(dir string) *Config {
	return &Config{
		JetType: "g",
		DataDir: dir,
		Logger:  zap.NewNop(),
	}
}

func TestParseCSV(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "g_jets.csv")
	writeRawCSV(t, path, 2)

	tensor, err := parseCSV(path)
	if err != nil {
		t.Fatalf("parseCSV failed: %v", err)
	}
	if tensor.Jets != 2 || tensor.Particles != RawParticles || tensor.Features != RawFeatures {
		t.Fatalf("unexpected shape %v", tensor)
	}
	if got := tensor.At(1, 3, FeatPt); got != float32(RawParticles+3) {
		t.Fatalf("unexpected pt at [1 3]: got %v", got)
	}
	if got := tensor.At(0, 25, FeatMask); got != 0 {
		t.Fatalf("expected padding mask 0, got %v", got)
	}
}

func TestParseCSVBadShapes(t *testing.T) {
	tmp := t.TempDir()

	// row count not a multiple of 30
	short := filepath.Join(tmp, "short.csv")
	if err := os.WriteFile(short, []byte("1 2 3 4\n5 6 7 8\n"), 0o644); err != nil {
		t.Fatalf("writing csv: %v", err)
	}
	if _, err := parseCSV(short); !errors.Is(err, ErrShape) {
		t.Fatalf("expected ErrShape for short file, got %v", err)
	}

	// wrong column count
	wide := filepath.Join(tmp, "wide.csv")
	if err := os.WriteFile(wide, []byte("1 2 3 4 5\n"), 0o644); err != nil {
		t.Fatalf("writing csv: %v", err)
	}
	if _, err := parseCSV(wide); !errors.Is(err, ErrShape) {
		t.Fatalf("expected ErrShape for 5-column row, got %v", err)
	}
}

func TestCacheRoundTrip(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "g_jets.gob")

	want := NewTensor3(3, RawParticles, RawFeatures)
	fillTensor(want)

	if err := writeCache(path, want); err != nil {
		t.Fatalf("writeCache failed: %v", err)
	}
	got, err := readCache(path)
	if err != nil {
		t.Fatalf("readCache failed: %v", err)
	}
	if got.Jets != want.Jets || got.Particles != want.Particles || got.Features != want.Features {
		t.Fatalf("shape mismatch: got %v want %v", got, want)
	}
	// bit-for-bit round trip
	for i := range want.Data {
		if got.Data[i] != want.Data[i] {
			t.Fatalf("cache round trip mismatch at %d: got %v want %v", i, got.Data[i], want.Data[i])
		}
	}
}

func TestReadCacheGarbage(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "g_jets.gob")
	if err := os.WriteFile(path, []byte("not a gob"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	if _, err := readCache(path); err == nil {
		t.Fatalf("expected error for garbage cache")
	}
}

func TestLoadRawMissingData(t *testing.T) {
	cfg := testConfig(t.TempDir())
	if _, err := loadRaw(cfg); !errors.Is(err, ErrMissingData) {
		t.Fatalf("expected ErrMissingData, got %v", err)
	}
}

// stubFetcher writes a deterministic csv at dest and counts invocations.
type stubFetcher struct {
	t     *testing.T
	jets  int
	calls int
}

func (s *stubFetcher) Fetch(jetType, dest string) error {
	s.calls++
	writeRawCSV(s.t, dest, s.jets)
	return nil
}

func TestLoadRawFetchesAndCaches(t *testing.T) {
	tmp := t.TempDir()
	cfg := testConfig(tmp)
	fetcher := &stubFetcher{t: t, jets: 2}
	cfg.Fetcher = fetcher

	first, err := loadRaw(cfg)
	if err != nil {
		t.Fatalf("loadRaw failed: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected 1 fetch, got %d", fetcher.calls)
	}
	if _, err := os.Stat(cachePath(tmp, "g")); err != nil {
		t.Fatalf("cache file not written: %v", err)
	}

	// second load must come from the cache: no fetcher needed, identical data
	cfg2 := testConfig(tmp)
	second, err := loadRaw(cfg2)
	if err != nil {
		t.Fatalf("loadRaw from cache failed: %v", err)
	}
	for i := range first.Data {
		if first.Data[i] != second.Data[i] {
			t.Fatalf("cache reload mismatch at %d", i)
		}
	}
}

func TestLoadRawDownloadRebuilds(t *testing.T) {
	tmp := t.TempDir()
	cfg := testConfig(tmp)
	cfg.Fetcher = &stubFetcher{t: t, jets: 2}

	if _, err := loadRaw(cfg); err != nil {
		t.Fatalf("initial loadRaw failed: %v", err)
	}

	// grow the csv; without Download the stale cache wins
	writeRawCSV(t, csvPath(tmp, "g"), 3)
	cfg2 := testConfig(tmp)
	stale, err := loadRaw(cfg2)
	if err != nil {
		t.Fatalf("loadRaw failed: %v", err)
	}
	if stale.Jets != 2 {
		t.Fatalf("expected stale cache with 2 jets, got %d", stale.Jets)
	}

	cfg3 := testConfig(tmp)
	cfg3.Download = true
	fresh, err := loadRaw(cfg3)
	if err != nil {
		t.Fatalf("loadRaw with Download failed: %v", err)
	}
	if fresh.Jets != 3 {
		t.Fatalf("expected rebuild with 3 jets, got %d", fresh.Jets)
	}
}
