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
	"io/ioutil"
	"os"
	"strings"
	"time"

	"github.com/ctessum/cdf"
	"github.com/sirupsen/logrus"
)

// Exporter writes datasets to classic NetCDF files that Open can read back.
type Exporter struct {
	// Log receives progress messages. If nil, nothing is logged.
	Log logrus.FieldLogger
}

// Export writes ds to path with a default Exporter.
func Export(ds Dataset, path string) error {
	return new(Exporter).Export(ds, path)
}

// discardLogger returns l, or a logger that writes nowhere if l is nil.
func discardLogger(l logrus.FieldLogger) logrus.FieldLogger {
	if l != nil {
		return l
	}
	lg := logrus.New()
	lg.Out = ioutil.Discard
	return lg
}

// Export writes every dimension, coordinate, variable and squeezed scalar
// of ds to a new file at path. Failures to create or write the file wrap
// ErrWriteFailure and are not retried.
func (e *Exporter) Export(ds Dataset, path string) error {
	log := discardLogger(e.Log)
	if ds.Empty() {
		return fmt.Errorf("oceanslice: exporting to %s: %w: the dataset has a zero-length dimension", path, ErrEmptyResult)
	}
	h, scalars, err := newHeader(ds, log)
	if err != nil {
		return fmt.Errorf("oceanslice: exporting to %s: %w: %v", path, ErrWriteFailure, err)
	}

	name := os.ExpandEnv(path)
	w, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("oceanslice: exporting: %w: %v", ErrWriteFailure, err)
	}
	err = writeNetCDF(w, h, ds, scalars)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// Remove the partial file.
		os.Remove(name)
		return fmt.Errorf("oceanslice: exporting to %s: %w: %v", path, ErrWriteFailure, err)
	}
	log.WithFields(logrus.Fields{
		"path":      path,
		"dims":      ds.Dims(),
		"variables": len(ds.Variables()),
		"scalars":   len(ds.Scalars()),
	}).Info("oceanslice exported dataset")
	return nil
}

// newHeader builds the file header for ds and returns the scalars it holds.
// The NetCDF encoder panics on invalid definitions; those panics are
// returned as errors.
func newHeader(ds Dataset, log logrus.FieldLogger) (h *cdf.Header, scalars []Scalar, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("defining file: %v", r)
		}
	}()
	dims := ds.Dims()
	lengths := make([]int, len(dims))
	for i, dim := range dims {
		if lengths[i], err = ds.Len(dim); err != nil {
			return nil, nil, err
		}
	}
	h = cdf.NewHeader(dims, lengths)

	names := make(map[string]bool)
	for _, dim := range dims {
		c, err := ds.Coordinate(dim)
		if err != nil {
			return nil, nil, err
		}
		if c.Synthetic {
			continue
		}
		h.AddVariable(dim, []string{dim}, zeroOf(c.Kind))
		addAttributes(h, dim, c.Attrs, log)
		names[dim] = true
	}

	vars := ds.Variables()
	for _, v := range vars {
		if names[v.Name] {
			return nil, nil, fmt.Errorf("variable %s has the same name as a coordinate", v.Name)
		}
		names[v.Name] = true
	}
	var scalarNames []string
	for _, s := range ds.Scalars() {
		if names[s.Name] {
			log.WithField("scalar", s.Name).Warn("oceanslice: skipping scalar coordinate with the same name as a variable")
			continue
		}
		names[s.Name] = true
		scalarNames = append(scalarNames, s.Name)
		scalars = append(scalars, s)
	}

	for _, v := range vars {
		h.AddVariable(v.Name, v.Dims, zeroOf(v.Kind))
		attrs := v.Attrs
		if len(scalarNames) > 0 {
			attrs = attrs.Set("coordinates", mergeCoordinates(attrs.Get("coordinates"), scalarNames))
		}
		addAttributes(h, v.Name, attrs, log)
	}
	for _, s := range scalars {
		h.AddVariable(s.Name, []string{}, zeroOf(s.Kind))
		addAttributes(h, s.Name, s.Attrs, log)
	}

	addAttributes(h, "", ds.Attributes().Set("history",
		historyLine(ds.Attributes().Get("history"))), log)
	h.Define()
	if errs := h.Check(); len(errs) > 0 {
		return nil, nil, errs[0]
	}
	return h, scalars, nil
}

func writeNetCDF(w *os.File, h *cdf.Header, ds Dataset, scalars []Scalar) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("writing file: %v", r)
		}
	}()
	f, err := cdf.Create(w, h)
	if err != nil {
		return err
	}
	for _, dim := range ds.Dims() {
		c, err := ds.Coordinate(dim)
		if err != nil {
			return err
		}
		if c.Synthetic {
			continue
		}
		if err := writeValues(f, dim, []int{len(c.Values)}, c.Values, c.Kind); err != nil {
			return err
		}
	}
	for _, s := range scalars {
		if err := writeValues(f, s.Name, []int{}, []float64{s.Value}, s.Kind); err != nil {
			return err
		}
	}
	for _, v := range ds.Variables() {
		if err := writeValues(f, v.Name, v.Data.Shape, v.Data.Elements, v.Kind); err != nil {
			return err
		}
	}
	return cdf.UpdateNumRecs(w)
}

// writeValues writes all of the values of a variable in its storage type.
func writeValues(f *cdf.File, name string, shape []int, values []float64, kind DataKind) error {
	wr := f.Writer(name, make([]int, len(shape)), shape)
	if wr == nil {
		return fmt.Errorf("no variable %s in file header", name)
	}
	var data interface{}
	switch kind {
	case Float32:
		d := make([]float32, len(values))
		for i, v := range values {
			d[i] = float32(v)
		}
		data = d
	case Int32:
		d := make([]int32, len(values))
		for i, v := range values {
			d[i] = int32(v)
		}
		data = d
	case Int16:
		d := make([]int16, len(values))
		for i, v := range values {
			d[i] = int16(v)
		}
		data = d
	case Byte:
		d := make([]uint8, len(values))
		for i, v := range values {
			d[i] = uint8(v)
		}
		data = d
	default:
		data = values
	}
	n, err := wr.Write(data)
	// The writer reports io.EOF when it reaches the end of a fixed-size
	// variable.
	if err != nil && !(err == io.EOF && n == len(values)) {
		return fmt.Errorf("writing variable %s: %v", name, err)
	}
	return nil
}

func zeroOf(k DataKind) interface{} {
	switch k {
	case Float32:
		return []float32{0}
	case Int32:
		return []int32{0}
	case Int16:
		return []int16{0}
	case Byte:
		return []uint8{0}
	default:
		return []float64{0}
	}
}

func addAttributes(h *cdf.Header, v string, attrs Attributes, log logrus.FieldLogger) {
	for _, a := range attrs {
		switch a.Value.(type) {
		case string, []uint8, []int16, []int32, []float32, []float64:
			h.AddAttribute(v, a.Name, a.Value)
		default:
			log.WithFields(logrus.Fields{
				"variable":  v,
				"attribute": a.Name,
				"type":      fmt.Sprintf("%T", a.Value),
			}).Warn("oceanslice: skipping attribute of unsupported type")
		}
	}
}

func mergeCoordinates(existing interface{}, names []string) string {
	s, _ := existing.(string)
	have := make(map[string]bool)
	for _, n := range strings.Fields(s) {
		have[n] = true
	}
	out := strings.Fields(s)
	for _, n := range names {
		if !have[n] {
			out = append(out, n)
		}
	}
	return strings.Join(out, " ")
}

func historyLine(existing interface{}) string {
	line := time.Now().UTC().Format(time.RFC3339) + ": subset written by oceanslice v" + Version
	if s, ok := existing.(string); ok && s != "" {
		return s + "\n" + line
	}
	return line
}
