package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// CSVBackend is a PerfAnalyzerBackend that writes data entries to a CSV
// file.
type CSVBackend struct {
	closer    io.Closer
	csvWriter *csv.Writer
}

// NewCSVBackend creates path.csv and writes the header into it.
func NewCSVBackend(path string) (*CSVBackend, error) {
	f, err := os.Create(path + ".csv")
	if err != nil {
		return nil, err
	}

	b := NewCSVBackendWithWriter(f)
	b.closer = f

	return b, nil
}

// NewCSVBackendWithWriter creates a backend that writes into w.
func NewCSVBackendWithWriter(w io.Writer) *CSVBackend {
	b := &CSVBackend{csvWriter: csv.NewWriter(w)}

	header := []string{
		"Start", "End", "Where", "What", "EntryType", "Value", "Unit",
	}

	err := b.csvWriter.Write(header)
	if err != nil {
		panic(err)
	}

	return b
}

// AddDataEntry adds a data entry to the CSV file.
func (b *CSVBackend) AddDataEntry(entry PerfAnalyzerEntry) {
	err := b.csvWriter.Write([]string{
		fmt.Sprintf("%d", entry.Start),
		fmt.Sprintf("%d", entry.End),
		entry.Where,
		entry.What,
		entry.EntryType,
		fmt.Sprintf("%g", entry.Value),
		entry.Unit,
	})
	if err != nil {
		panic(err)
	}
}

// Flush flushes the CSV writer.
func (b *CSVBackend) Flush() {
	b.csvWriter.Flush()
}

// Close flushes the writer and closes the file, if any.
func (b *CSVBackend) Close() error {
	b.Flush()

	if err := b.csvWriter.Error(); err != nil {
		return err
	}

	if b.closer == nil {
		return nil
	}

	return b.closer.Close()
}
