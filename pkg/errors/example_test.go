// Package errors provides examples of structured error handling in the table store.
package errors_test

import (
	"fmt"
	"io"

	"github.com/ajitpratap0/tablestore/pkg/errors"
)

// Example demonstrates basic error creation.
func Example() {
	err := errors.New(errors.ErrorTypeUnsupportedType, "column has no physical mapping").
		WithDetail("column", "picture").
		WithDetail("cell_type", "blob")

	fmt.Println(err.Error())

	// Output:
	// unsupported_type: column has no physical mapping
}

// ExampleWrap shows how to wrap an underlying I/O failure.
func ExampleWrap() {
	originalErr := io.ErrUnexpectedEOF

	err := errors.Wrap(originalErr, errors.ErrorTypeIO, "failed to pull batch").
		WithDetail("path", "table.orc")

	if errors.IsType(err, errors.ErrorTypeIO) {
		fmt.Println("This is an I/O error")
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		fmt.Println("Cause is preserved")
	}

	// Output:
	// This is an I/O error
	// Cause is preserved
}

// ExampleNewf demonstrates formatted messages.
func ExampleNewf() {
	err := errors.Newf(errors.ErrorTypeNumericOverflow, "value %d does not fit in 32 bits", int64(1)<<40)
	fmt.Println(err)

	// Output:
	// numeric_overflow: value 1099511627776 does not fit in 32 bits
}
