package ephemeris

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/signalsfoundry/proximity-explorer/model"
)

// Landsat-style ephemeris exports carry two lines of file metadata
// before the column header.
const csvPreambleLines = 2

// ephemerisTimeLayout matches the "Time (UTCJ4)" column format.
const ephemerisTimeLayout = "2006-01-02T15:04:05"

// CSVOptions tunes ephemeris CSV loading.
type CSVOptions struct {
	// MaxRows caps the number of data rows read; 0 means no cap.
	// The desktop tool historically capped table display at 100.
	MaxRows int
}

// LoadCSV reads an ephemeris CSV (two preamble lines, then a header
// with "Time (UTCJ4)", "x (km)", "y (km)", "z (km)" columns, velocity
// columns ignored) and returns ECEF satellite records. Rows are
// numbered from 1 for IDs, matching the tool's LOCAL_n convention.
func LoadCSV(r io.Reader, opts CSVOptions) ([]model.SatelliteRecord, error) {
	br := bufio.NewReader(r)
	for i := 0; i < csvPreambleLines; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			return nil, fmt.Errorf("ephemeris csv: short preamble: %w", err)
		}
	}

	cr := csv.NewReader(br)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("ephemeris csv: read header: %w", err)
	}

	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"Time (UTCJ4)", "x (km)", "y (km)", "z (km)"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("ephemeris csv: missing column %q", required)
		}
	}

	var records []model.SatelliteRecord
	for row := 1; ; row++ {
		if opts.MaxRows > 0 && len(records) >= opts.MaxRows {
			break
		}

		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ephemeris csv: row %d: %w", row, err)
		}

		ts, err := time.Parse(ephemerisTimeLayout, fields[col["Time (UTCJ4)"]])
		if err != nil {
			return nil, fmt.Errorf("ephemeris csv: row %d: bad timestamp: %w", row, err)
		}

		var xyz [3]float64
		for i, name := range []string{"x (km)", "y (km)", "z (km)"} {
			v, err := strconv.ParseFloat(fields[col[name]], 64)
			if err != nil {
				return nil, fmt.Errorf("ephemeris csv: row %d: bad %s: %w", row, name, err)
			}
			xyz[i] = v
		}

		records = append(records, model.SatelliteRecord{
			ID:   fmt.Sprintf("LOCAL_%d", row),
			Name: fmt.Sprintf("Satellite_%d", row),
			Position: model.CartesianPosition(model.CartesianPoint{
				X: xyz[0], Y: xyz[1], Z: xyz[2],
			}),
			Timestamp: ts.UTC(),
		})
	}
	return records, nil
}
