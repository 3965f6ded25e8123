package inflation

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/newthinker/bondcalc/internal/core"
	"github.com/newthinker/bondcalc/internal/storage/archive"
	"golang.org/x/sync/errgroup"
)

// ParseIndexCSV parses "date,value" rows. A leading header row is skipped.
func ParseIndexCSV(data []byte) (*IndexSeries, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = 2
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, core.WrapError(core.ErrInvalidInput, fmt.Errorf("parse index csv: %w", err))
	}

	readings := make([]Reading, 0, len(rows))
	for i, row := range rows {
		date, err := time.Parse(dateLayout, strings.TrimSpace(row[0]))
		if err != nil {
			if i == 0 {
				continue
			}
			return nil, core.Errorf(core.ErrInvalidInput, "index csv line %d: bad date %q", i+1, row[0])
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, core.Errorf(core.ErrInvalidInput, "index csv line %d: bad value %q", i+1, row[1])
		}
		readings = append(readings, Reading{Date: date, Value: value})
	}
	return NewIndexSeries(readings), nil
}

// LoadIndexCSV reads an index table from archive storage.
func LoadIndexCSV(ctx context.Context, storage archive.Storage, path string) (*IndexSeries, error) {
	data, err := storage.Read(ctx, path)
	if err != nil {
		return nil, core.WrapError(core.ErrMissingInflationData, fmt.Errorf("read %s: %w", path, err))
	}
	return ParseIndexCSV(data)
}

// LoadIndexes reads every index id -> path table concurrently.
func LoadIndexes(ctx context.Context, storage archive.Storage, paths map[string]string) (map[string]*IndexSeries, error) {
	var (
		mu  sync.Mutex
		out = make(map[string]*IndexSeries, len(paths))
	)
	g, ctx := errgroup.WithContext(ctx)
	for id, path := range paths {
		g.Go(func() error {
			series, err := LoadIndexCSV(ctx, storage, path)
			if err != nil {
				return fmt.Errorf("index %s: %w", id, err)
			}
			mu.Lock()
			out[id] = series
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
