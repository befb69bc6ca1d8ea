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
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/GaryBoone/GoStats/stats"
	"gonum.org/v1/gonum/floats"
)

// VariableSummary holds descriptive statistics of the valid values of a
// variable.
type VariableSummary struct {
	Name    string
	Dims    []string
	Shape   []int
	Valid   int
	Missing int

	// Min, Max, Mean and StdDev are NaN when there are no valid values.
	Min, Max, Mean, StdDev float64
}

// Summarize computes statistics for every variable of ds.
func Summarize(ds Dataset) []VariableSummary {
	vars := ds.Variables()
	o := make([]VariableSummary, len(vars))
	for i, v := range vars {
		valid := v.Valid()
		s := VariableSummary{
			Name:    v.Name,
			Dims:    append([]string(nil), v.Dims...),
			Shape:   append([]int(nil), v.Data.Shape...),
			Valid:   len(valid),
			Missing: v.Len() - len(valid),
			Min:     math.NaN(),
			Max:     math.NaN(),
			Mean:    math.NaN(),
			StdDev:  math.NaN(),
		}
		if len(valid) > 0 {
			s.Min = floats.Min(valid)
			s.Max = floats.Max(valid)
			s.Mean = stats.StatsMean(valid)
			s.StdDev = 0
		}
		if len(valid) > 1 {
			s.StdDev = stats.StatsSampleStandardDeviation(valid)
		}
		o[i] = s
	}
	return o
}

// Describe writes a human-readable description of ds to w.
func Describe(w io.Writer, ds Dataset) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "Dimensions:")
	for _, dim := range ds.Dims() {
		c, err := ds.Coordinate(dim)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "  %s\t%d\t%s\n", dim, len(c.Values), describeCoordinate(c))
	}
	if sc := ds.Scalars(); len(sc) > 0 {
		fmt.Fprintln(tw, "Scalar coordinates:")
		for _, s := range sc {
			fmt.Fprintf(tw, "  %s\t%s\n", s.Name, formatCoordinateValue(s.Value, s.Attrs))
		}
	}
	fmt.Fprintln(tw, "Variables:")
	for _, s := range Summarize(ds) {
		fmt.Fprintf(tw, "  %s(%s)\tvalid=%d\tmissing=%d\tmin=%.4g\tmax=%.4g\tmean=%.4g\tstd=%.4g\n",
			s.Name, strings.Join(s.Dims, ","), s.Valid, s.Missing, s.Min, s.Max, s.Mean, s.StdDev)
	}
	return tw.Flush()
}

func describeCoordinate(c *Coordinate) string {
	if c.Synthetic {
		return "(no coordinate)"
	}
	if len(c.Values) == 0 {
		return "(empty)"
	}
	first := formatCoordinateValue(c.Values[0], c.Attrs)
	last := formatCoordinateValue(c.Values[len(c.Values)-1], c.Attrs)
	if u, ok := c.Attrs.Get("units").(string); ok && AxisOf(c) != TAxis {
		return fmt.Sprintf("%s to %s %s", first, last, u)
	}
	return fmt.Sprintf("%s to %s", first, last)
}

// formatCoordinateValue formats v as a time if attrs hold time units.
func formatCoordinateValue(v float64, attrs Attributes) string {
	if u, ok := attrs.Get("units").(string); ok {
		if ta, err := ParseTimeAxis(u); err == nil {
			return ta.Time(v).Format("2006-01-02T15:04:05Z")
		}
	}
	return fmt.Sprintf("%g", v)
}
