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
	"math"
	"strconv"
	"strings"
	"time"
)

type valueKind int

const (
	numberValue valueKind = iota
	instantValue
	durationValue
)

// Value is a query value: a plain number, an instant or a duration.
// Instants and durations are converted to coordinate units using the
// coordinate's time axis.
type Value struct {
	kind valueKind
	num  float64
	t    time.Time
	d    time.Duration
}

// Float returns a numeric value.
func Float(v float64) Value { return Value{kind: numberValue, num: v} }

// Time returns an instant value.
func Time(t time.Time) Value { return Value{kind: instantValue, t: t} }

// Duration returns a duration value, used for tolerances on time axes.
func Duration(d time.Duration) Value { return Value{kind: durationValue, d: d} }

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
}

// ParseTime parses a date or date-time such as "2022-01-01" or
// "2021-11-05T00". Times without a zone are UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("oceanslice: invalid time %q", s)
}

// ParseValue interprets s as a number, a time or a duration, in that
// order.
func ParseValue(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f), nil
	}
	if t, err := ParseTime(s); err == nil {
		return Time(t), nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return Duration(d), nil
	}
	return Value{}, fmt.Errorf("oceanslice: %q is not a number, time or duration", s)
}

// String returns the value in the form accepted by ParseValue.
func (v Value) String() string {
	switch v.kind {
	case instantValue:
		return v.t.UTC().Format(time.RFC3339)
	case durationValue:
		return v.d.String()
	default:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	}
}

// resolve returns the value in the units of coordinate c.
func (v Value) resolve(c *Coordinate) (float64, error) {
	switch v.kind {
	case numberValue:
		return v.num, nil
	case instantValue:
		a, ok := c.TimeAxis()
		if !ok {
			return math.NaN(), fmt.Errorf("oceanslice: time %s given for coordinate %s, which has no time units", v, c.Name)
		}
		return a.Value(v.t), nil
	default:
		return math.NaN(), fmt.Errorf("oceanslice: duration %s is not a coordinate value", v)
	}
}

// resolveSpan returns the value as a distance in the units of coordinate c.
func (v Value) resolveSpan(c *Coordinate) (float64, error) {
	switch v.kind {
	case numberValue:
		return v.num, nil
	case durationValue:
		a, ok := c.TimeAxis()
		if !ok {
			return math.NaN(), fmt.Errorf("oceanslice: duration %s given for coordinate %s, which has no time units", v, c.Name)
		}
		return a.Span(v.d), nil
	default:
		return math.NaN(), fmt.Errorf("oceanslice: time %s is not a tolerance", v)
	}
}

// PredicateKind enumerates the ways a dimension can be selected.
type PredicateKind int

// Predicate kinds.
const (
	ExactMatch PredicateKind = iota
	NearestMatch
	RangeMatch
)

func (k PredicateKind) String() string {
	switch k {
	case ExactMatch:
		return "exact"
	case NearestMatch:
		return "nearest"
	case RangeMatch:
		return "range"
	}
	return fmt.Sprintf("PredicateKind(%d)", int(k))
}

// Predicate selects positions along one dimension.
type Predicate struct {
	Kind PredicateKind

	// Value is the query value for exact and nearest matches.
	Value Value

	// Tolerance bounds the distance of a nearest match. Nil means
	// unbounded.
	Tolerance *Value

	// Low and High are the inclusive bounds of a range match.
	Low, High Value
}

// Exact selects the position whose coordinate equals v.
func Exact(v Value) Predicate { return Predicate{Kind: ExactMatch, Value: v} }

// Nearest selects the position whose coordinate is closest to v.
func Nearest(v Value) Predicate { return Predicate{Kind: NearestMatch, Value: v} }

// NearestWithin selects the position whose coordinate is closest to v,
// failing if it is farther than tolerance.
func NearestWithin(v, tolerance Value) Predicate {
	return Predicate{Kind: NearestMatch, Value: v, Tolerance: &tolerance}
}

// Between selects every position whose coordinate lies in [lo, hi].
func Between(lo, hi Value) Predicate { return Predicate{Kind: RangeMatch, Low: lo, High: hi} }

func (p Predicate) String() string {
	switch p.Kind {
	case RangeMatch:
		return fmt.Sprintf("range(%s, %s)", p.Low, p.High)
	case NearestMatch:
		if p.Tolerance != nil {
			return fmt.Sprintf("nearest(%s, %s)", p.Value, *p.Tolerance)
		}
		return fmt.Sprintf("nearest(%s)", p.Value)
	default:
		return fmt.Sprintf("exact(%s)", p.Value)
	}
}

// indices resolves the predicate against coordinate c.
func (p Predicate) indices(c *Coordinate) ([]int, error) {
	ci := c.Index()
	switch p.Kind {
	case ExactMatch:
		v, err := p.Value.resolve(c)
		if err != nil {
			return nil, err
		}
		i, err := ci.Exact(v)
		if err != nil {
			return nil, err
		}
		return []int{i}, nil
	case NearestMatch:
		v, err := p.Value.resolve(c)
		if err != nil {
			return nil, err
		}
		tol := math.Inf(1)
		if p.Tolerance != nil {
			if tol, err = p.Tolerance.resolveSpan(c); err != nil {
				return nil, err
			}
		}
		i, _, err := ci.Nearest(v, tol)
		if err != nil {
			return nil, err
		}
		return []int{i}, nil
	case RangeMatch:
		lo, err := p.Low.resolve(c)
		if err != nil {
			return nil, err
		}
		hi, err := p.High.resolve(c)
		if err != nil {
			return nil, err
		}
		return ci.Range(lo, hi), nil
	}
	return nil, fmt.Errorf("oceanslice: invalid predicate kind %v", p.Kind)
}

// Selection maps dimension names to predicates.
type Selection map[string]Predicate
