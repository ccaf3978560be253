package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/nao1215/iprecon/internal/model"
)

const (
	// DefaultResultsDir is the directory for timestamped result files.
	DefaultResultsDir = "ip_geolocation_results"

	// CustomOutputFile is the fixed file name used when the default
	// output is not requested.
	CustomOutputFile = "custom_output.csv"

	// outputTimeLayout formats the timestamp in default file names.
	outputTimeLayout = "20060102_150405"
)

// CSVHeader is the header row of every result file.
var CSVHeader = []string{"IP", "Location", "Active", "Open Ports", "Cloud Provider"}

// CSV errors.
var (
	// ErrInvalidHeader is returned by ReadCSV when the header row does not match.
	ErrInvalidHeader = errors.New("invalid CSV header")

	// ErrInvalidRow is returned by ReadCSV for a row that cannot be parsed.
	ErrInvalidRow = errors.New("invalid CSV row")
)

// DefaultOutputPath returns dir/ip_info_YYYYMMDD_HHMMSS.csv for now.
func DefaultOutputPath(dir string, now time.Time) string {
	if dir == "" {
		dir = DefaultResultsDir
	}
	return filepath.Join(dir, "ip_info_"+now.Format(outputTimeLayout)+".csv")
}

// WriteCSV writes the header and one row per record, in order.
func WriteCSV(w io.Writer, records []model.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(csvRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes records to path, creating parent directories.
func WriteCSVFile(path string, records []model.Record) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path) //nolint:gosec // Output path is chosen by the caller
	if err != nil {
		return err
	}

	if err := WriteCSV(f, records); err != nil {
		_ = f.Close() //nolint:errcheck // write error takes precedence
		return err
	}
	return f.Close()
}

// csvRow renders one record with the placeholder values.
func csvRow(r model.Record) []string {
	return []string{
		r.IP,
		r.LocationOrUnknown(),
		strconv.FormatBool(r.Active),
		r.JoinPorts(),
		r.CloudProviderOrNone(),
	}
}

// ReadCSV parses a result file written by WriteCSV.
// Placeholder values are mapped back to empty fields.
func ReadCSV(r io.Reader) ([]model.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(CSVHeader)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrInvalidHeader
		}
		return nil, err
	}
	if !slices.Equal(header, CSVHeader) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHeader, header)
	}

	var records []model.Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidRow, line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadCSVFile parses the result file at path.
func ReadCSVFile(path string) ([]model.Record, error) {
	f, err := os.Open(path) //nolint:gosec // Path is chosen by the caller
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// parseRow converts one CSV row into a Record.
func parseRow(row []string) (model.Record, error) {
	active, err := strconv.ParseBool(row[2])
	if err != nil {
		return model.Record{}, err
	}
	ports, err := model.ParsePorts(row[3])
	if err != nil {
		return model.Record{}, err
	}

	rec := model.Record{
		IP:            row[0],
		Location:      row[1],
		Active:        active,
		OpenPorts:     ports,
		CloudProvider: row[4],
	}
	if rec.Location == model.UnknownLocation {
		rec.Location = ""
	}
	if rec.CloudProvider == model.NotOnCloud {
		rec.CloudProvider = ""
	}
	return rec, nil
}
