/*
Copyright © 2021 the OceanSlice authors.
This file is part of OceanSlice.

OceanSlice is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

OceanSlice is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with OceanSlice.  If not, see <http://www.gnu.org/licenses/>.
*/

package oceanslice

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionNotFound is returned when a selection or lookup names a
	// dimension that the dataset does not have.
	ErrDimensionNotFound = errors.New("dimension not found")

	// ErrValueOutOfRange is returned when a nearest match is farther from
	// the query than the allowed tolerance, or when an exact match is missing.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrNotFound is returned by an exact lookup with no matching coordinate.
	// It wraps ErrValueOutOfRange.
	ErrNotFound = fmt.Errorf("%w: no exact match", ErrValueOutOfRange)

	// ErrEmptyResult is returned when a range predicate selects no indices.
	ErrEmptyResult = errors.New("empty result")

	// ErrEmptyPrimaryData is returned when a figure is requested for a subset
	// that holds no data.
	ErrEmptyPrimaryData = errors.New("empty primary data")

	// ErrWriteFailure wraps any failure to write an exported file.
	ErrWriteFailure = errors.New("write failure")
)

// SelectionError reports the dimension whose predicate could not be
// resolved.
type SelectionError struct {
	Dim string
	Err error
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("oceanslice: selecting along dimension %q: %v", e.Dim, e.Err)
}

// Unwrap returns the underlying error.
func (e *SelectionError) Unwrap() error { return e.Err }
