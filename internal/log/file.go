package log

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"
)

const (
	dayLayout  = "2006-01-02"
	latestLink = "latest"
)

// DailyFile is an io.Writer appending to DIR/YYYY-MM-DD.jsonl, switching
// files when the date changes. DIR/latest links to the current file.
type DailyFile struct {
	dir string
	now func() time.Time

	mu   sync.Mutex
	file *os.File
	day  string
}

// OpenDailyFile creates dir if needed and opens today's file.
func OpenDailyFile(dir string) (*DailyFile, error) {
	return openDailyFile(dir, time.Now)
}

func openDailyFile(dir string, now func() time.Time) (*DailyFile, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating debug log dir: %w", err)
	}
	d := &DailyFile{dir: dir, now: now}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.switchTo(now().Format(dayLayout)); err != nil {
		return nil, err
	}
	return d, nil
}

// Path returns the file currently written to.
func (d *DailyFile) Path() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return filepath.Join(d.dir, d.day+".jsonl")
}

func (d *DailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if day := d.now().Format(dayLayout); day != d.day {
		if err := d.switchTo(day); err != nil {
			return 0, err
		}
	}
	return d.file.Write(p)
}

// Close closes the current file.
func (d *DailyFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// switchTo must be called with mu held.
func (d *DailyFile) switchTo(day string) error {
	name := day + ".jsonl"
	f, err := os.OpenFile(filepath.Join(d.dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	if d.file != nil {
		d.file.Close()
	}
	d.file = f
	d.day = day
	d.link(name)
	return nil
}

// link repoints DIR/latest at name. Failures are ignored.
func (d *DailyFile) link(name string) {
	dst := filepath.Join(d.dir, latestLink)
	tmp := dst + ".tmp"
	os.Remove(tmp)
	if err := os.Symlink(name, tmp); err != nil {
		return
	}
	_ = os.Rename(tmp, dst)
}

var dailyName = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\.jsonl$`)

// Prune deletes daily files in dir older than retentionDays and returns how
// many were removed. Other files are left alone.
func Prune(dir string, retentionDays int) int {
	return prune(dir, retentionDays, time.Now())
}

func prune(dir string, retentionDays int, now time.Time) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	cutoff := now.AddDate(0, 0, -retentionDays)
	removed := 0
	for _, e := range entries {
		m := dailyName.FindStringSubmatch(e.Name())
		if e.IsDir() || m == nil {
			continue
		}
		day, err := time.ParseInLocation(dayLayout, m[1], now.Location())
		if err != nil || !day.Before(cutoff) {
			continue
		}
		if os.Remove(filepath.Join(dir, e.Name())) == nil {
			removed++
		}
	}
	return removed
}
