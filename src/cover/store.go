package cover

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/thought-machine/testpackage/src/core"
)

const (
	probesFileName   = "probes"
	costsFileName    = "costs"
	failuresFileName = "failures"
)

// ErrIntegrity is the base error for a corrupt or inconsistent store.
// Integrity errors are fatal; we'd rather stop than optimise over bad data.
var ErrIntegrity = errors.New("coverage store integrity error")

// Load reads the repository persisted under the given directory.
// Missing files (or a missing directory) yield an empty repository; that's
// the normal state before the first run. Malformed contents are an error.
func Load(dir string) (*Repository, error) {
	repo := NewRepository(0)
	if err := loadProbes(repo, filepath.Join(dir, probesFileName)); err != nil {
		return nil, err
	}
	if err := loadKeyValues(filepath.Join(dir, costsFileName), func(id string, value int64) {
		repo.Costs[id] = time.Duration(value) * time.Millisecond
		if t, present := repo.Tests[id]; present {
			t.Cost = repo.Costs[id]
		}
	}); err != nil {
		return nil, err
	}
	if err := loadKeyValues(filepath.Join(dir, failuresFileName), func(id string, value int64) {
		repo.Failures[id] = int(value)
	}); err != nil {
		return nil, err
	}
	log.Debug("Loaded coverage store from %s: %d probes, %d tests, %d failure entries",
		dir, repo.Probes, len(repo.Tests), len(repo.Failures))
	return repo, nil
}

// Save persists the repository under the given directory, creating it if needed.
func (r *Repository) Save(dir string) error {
	if err := os.MkdirAll(dir, os.ModeDir|0775); err != nil {
		return fmt.Errorf("Error creating coverage store directory: %s", err)
	}
	var errs *multierror.Error
	errs = multierror.Append(errs, r.saveProbes(filepath.Join(dir, probesFileName)))
	errs = multierror.Append(errs, saveKeyValues(filepath.Join(dir, costsFileName), costLines(r.Costs)))
	errs = multierror.Append(errs, saveKeyValues(filepath.Join(dir, failuresFileName), failureLines(r.Failures)))
	return errs.ErrorOrNil()
}

func loadProbes(repo *Repository, filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	r := bufio.NewReader(f)
	var probes uint32
	if err := binary.Read(r, binary.BigEndian, &probes); err != nil {
		return fmt.Errorf("%w: truncated probes file %s", ErrIntegrity, filename)
	}
	repo.Probes = int(probes)
	expected := (repo.Probes + 7) / 8
	for {
		var idLen uint16
		if err := binary.Read(r, binary.BigEndian, &idLen); err == io.EOF {
			return nil // clean end of file
		} else if err != nil {
			return fmt.Errorf("%w: truncated record in %s", ErrIntegrity, filename)
		}
		id := make([]byte, idLen)
		if _, err := io.ReadFull(r, id); err != nil {
			return fmt.Errorf("%w: truncated test id in %s", ErrIntegrity, filename)
		}
		var bitmapLen uint32
		if err := binary.Read(r, binary.BigEndian, &bitmapLen); err != nil {
			return fmt.Errorf("%w: truncated record for %s in %s", ErrIntegrity, id, filename)
		}
		if int(bitmapLen) != expected {
			return fmt.Errorf("%w: bitmap for %s is %d bytes, expected %d for %d probes",
				ErrIntegrity, id, bitmapLen, expected, repo.Probes)
		}
		data := make([]byte, bitmapLen)
		if _, err := io.ReadFull(r, data); err != nil {
			return fmt.Errorf("%w: truncated bitmap for %s in %s", ErrIntegrity, id, filename)
		}
		bitset, err := core.BitsetFromBytes(repo.Probes, data)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrIntegrity, err)
		}
		testID := string(id)
		if _, present := repo.Tests[testID]; present {
			return fmt.Errorf("%w: duplicate test id %s in %s", ErrIntegrity, testID, filename)
		}
		repo.Tests[testID] = &TestWithCoverage{ID: testID, Coverage: bitset}
	}
}

func (r *Repository) saveProbes(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.BigEndian, uint32(r.Probes)); err != nil {
		return err
	}
	ids := make([]string, 0, len(r.Tests))
	for id := range r.Tests {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		data := r.Tests[id].Coverage.Bytes()
		if err := binary.Write(w, binary.BigEndian, uint16(len(id))); err != nil {
			return err
		} else if _, err := w.WriteString(id); err != nil {
			return err
		} else if err := binary.Write(w, binary.BigEndian, uint32(len(data))); err != nil {
			return err
		} else if _, err := w.Write(data); err != nil {
			return err
		}
	}
	return w.Flush()
}

func loadKeyValues(filename string, record func(id string, value int64)) error {
	f, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, value, found := strings.Cut(line, "=")
		if !found {
			return fmt.Errorf("%w: malformed line %q in %s", ErrIntegrity, line, filename)
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: malformed value %q in %s", ErrIntegrity, line, filename)
		}
		record(id, n)
	}
	return scanner.Err()
}

func saveKeyValues(filename string, lines []string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return w.Flush()
}

func costLines(costs map[string]time.Duration) []string {
	lines := make([]string, 0, len(costs))
	for id, cost := range costs {
		lines = append(lines, fmt.Sprintf("%s=%d", id, cost.Milliseconds()))
	}
	sort.Strings(lines)
	return lines
}

func failureLines(failures map[string]int) []string {
	lines := make([]string, 0, len(failures))
	for id, runs := range failures {
		lines = append(lines, fmt.Sprintf("%s=%d", id, runs))
	}
	sort.Strings(lines)
	return lines
}
