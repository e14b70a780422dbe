package trajectory

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/banshee-data/spin.report/internal/fsutil"
	"github.com/banshee-data/spin.report/internal/monitoring"
)

// ParseLog reads "frame,x,y" records. Blank lines and lines that do not hold
// exactly three numeric fields are skipped, however long they are. Only read
// errors are returned.
func ParseLog(r io.Reader) (*Log, error) {
	var samples []Sample
	reader := bufio.NewReader(r)
	lineNo := 0
	for {
		raw, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, fmt.Errorf("read coordinate log: %w", readErr)
		}
		if raw != "" {
			lineNo++
			if line := strings.TrimSpace(raw); line != "" {
				s, err := parseRecord(line)
				if err != nil {
					monitoring.Debugf("skipping line %d (%d bytes): %v", lineNo, len(line), err)
				} else {
					samples = append(samples, s)
				}
			}
		}
		if readErr != nil {
			break
		}
	}
	return NewLog(samples), nil
}

func parseRecord(line string) (Sample, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return Sample{}, fmt.Errorf("expected 3 fields, got %d", len(parts))
	}
	frame, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Sample{}, fmt.Errorf("parse frame: %w", err)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Sample{}, fmt.Errorf("parse x: %w", err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return Sample{}, fmt.Errorf("parse y: %w", err)
	}
	return Sample{Frame: frame, Point: Point{X: x, Y: y}}, nil
}

// WriteLog writes one "frame,x,y" line per sample in frame order with x and y
// rounded to integers (ties to even).
func WriteLog(w io.Writer, l *Log) error {
	bw := bufio.NewWriter(w)
	for _, s := range l.Samples() {
		if _, err := fmt.Fprintf(bw, "%d,%d,%d\n", s.Frame, roundPixel(s.X), roundPixel(s.Y)); err != nil {
			return fmt.Errorf("write frame %d: %w", s.Frame, err)
		}
	}
	return bw.Flush()
}

// FormatLog returns the serialized form of l.
func FormatLog(l *Log) string {
	var sb strings.Builder
	_ = WriteLog(&sb, l)
	return sb.String()
}

func roundPixel(v float64) int64 {
	return int64(math.RoundToEven(v))
}

// ReadLogFile opens and parses the coordinate log at path.
func ReadLogFile(fsys fsutil.FileSystem, path string) (*Log, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open coordinate log: %w", err)
	}
	defer f.Close()
	return ParseLog(f)
}

// WriteLogFile serializes l to path, replacing any existing file. Missing
// parent directories are created.
func WriteLogFile(fsys fsutil.FileSystem, path string, l *Log) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create coordinate log: %w", err)
	}
	if err := WriteLog(f, l); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close coordinate log: %w", err)
	}
	return nil
}
