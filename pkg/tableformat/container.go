package tableformat

import (
	stderrors "errors"
	"os"

	"github.com/ajitpratap0/tablestore/pkg/errors"
)

// Format represents the columnar container a table file is written in
type Format string

const (
	// ORC is Apache ORC format
	ORC Format = "orc"
	// Parquet is Apache Parquet format
	Parquet Format = "parquet"
)

// Container tuning. These are fixed for every table file.
const (
	defaultStripeSize     = 64 * 1024 * 1024 // ORC stripe target, 64MB
	defaultRowGroupLength = 64 * 1024        // Parquet rows per row group
	defaultDataPageSize   = 1024 * 1024      // Parquet data page, 1MB
)

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case ORC:
		return ORC, nil
	case Parquet:
		return Parquet, nil
	default:
		return "", errors.Newf(errors.ErrorTypeValidation, "unsupported table format: %s", s)
	}
}

// FormatInfo provides information about a container format
type FormatInfo struct {
	Format        Format
	Name          string
	Description   string
	FileExtension string
	MIMEType      string
	Compression   string
}

// GetFormatInfo returns information about a container format
func GetFormatInfo(format Format) *FormatInfo {
	switch format {
	case ORC:
		return &FormatInfo{
			Format:        ORC,
			Name:          "Apache ORC",
			Description:   "Optimized Row Columnar format",
			FileExtension: ".orc",
			MIMEType:      "application/x-orc",
			Compression:   "zlib",
		}
	case Parquet:
		return &FormatInfo{
			Format:        Parquet,
			Name:          "Apache Parquet",
			Description:   "Columnar storage format optimized for analytics",
			FileExtension: ".parquet",
			MIMEType:      "application/x-parquet",
			Compression:   "snappy",
		}
	default:
		return nil
	}
}

// batchSink receives filled batches and owns the open table file.
type batchSink interface {
	WriteBatch(b *Batch) error
	Close() error
}

// pullStatus is the outcome of one batch pull. End of data is a status,
// never an error.
type pullStatus int

const (
	pullMore pullStatus = iota
	pullEnd
	pullFailed
)

// batchSource fills batches from an open table file.
type batchSource interface {
	// Pull refills b. It reports pullMore with b.Size > 0, pullEnd with an
	// empty b once the data is exhausted, or pullFailed with an error.
	Pull(b *Batch) (pullStatus, error)
	Close() error
}

func openSink(format Format, path string, cols []physicalColumn) (batchSink, error) {
	switch format {
	case ORC:
		return newORCSink(path, cols)
	case Parquet:
		return newParquetSink(path, cols)
	default:
		return nil, errors.Newf(errors.ErrorTypeValidation, "unsupported table format: %s", format)
	}
}

func openSource(format Format, path string, cols []physicalColumn, capacity int) (batchSource, error) {
	switch format {
	case ORC:
		return newORCSource(path, cols)
	case Parquet:
		return newParquetSource(path, cols, capacity)
	default:
		return nil, errors.Newf(errors.ErrorTypeValidation, "unsupported table format: %s", format)
	}
}

// closeFile closes f, tolerating a container library that already closed it.
func closeFile(f *os.File) error {
	if err := f.Close(); err != nil && !stderrors.Is(err, os.ErrClosed) {
		return err
	}
	return nil
}
