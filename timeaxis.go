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
	"strings"
	"time"
)

// TimeAxis converts between instants and the numeric values of a CF time
// coordinate ("<unit> since <epoch>").
type TimeAxis struct {
	Unit  time.Duration
	Epoch time.Time
}

var timeUnits = map[string]time.Duration{
	"second": time.Second, "seconds": time.Second, "sec": time.Second, "secs": time.Second, "s": time.Second,
	"minute": time.Minute, "minutes": time.Minute, "min": time.Minute, "mins": time.Minute,
	"hour": time.Hour, "hours": time.Hour, "hr": time.Hour, "hrs": time.Hour, "h": time.Hour,
	"day": 24 * time.Hour, "days": 24 * time.Hour, "d": 24 * time.Hour,
}

// ParseTimeAxis parses a CF units string such as
// "days since 1950-01-01 00:00:00".
func ParseTimeAxis(units string) (TimeAxis, error) {
	parts := strings.SplitN(strings.TrimSpace(units), " since ", 2)
	if len(parts) != 2 {
		return TimeAxis{}, fmt.Errorf("oceanslice: %q is not a time unit", units)
	}
	unit, ok := timeUnits[strings.ToLower(strings.TrimSpace(parts[0]))]
	if !ok {
		return TimeAxis{}, fmt.Errorf("oceanslice: unsupported time unit %q", parts[0])
	}
	epoch, err := parseEpoch(strings.TrimSpace(parts[1]))
	if err != nil {
		return TimeAxis{}, err
	}
	return TimeAxis{Unit: unit, Epoch: epoch}, nil
}

func parseEpoch(s string) (time.Time, error) {
	s = strings.TrimSuffix(strings.TrimSuffix(s, " UTC"), " utc")
	for _, layout := range []string{
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04:05.0",
		"2006-01-02 15:04",
		"2006-1-2 15:4:5",
		"2006-1-2",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if t, err := ParseTime(s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("oceanslice: invalid time epoch %q", s)
}

// Value returns the coordinate value of t. The epoch may be centuries
// before t, beyond the range of a time.Duration.
func (a TimeAxis) Value(t time.Time) float64 {
	s := float64(t.Unix()-a.Epoch.Unix()) + float64(t.Nanosecond()-a.Epoch.Nanosecond())/1e9
	return s / a.Unit.Seconds()
}

// Span returns d in axis units.
func (a TimeAxis) Span(d time.Duration) float64 {
	return float64(d) / float64(a.Unit)
}

// Time returns the instant of coordinate value v, rounded to the
// nearest millisecond.
func (a TimeAxis) Time(v float64) time.Time {
	s := v * a.Unit.Seconds()
	whole := math.Floor(s)
	ms := int64(math.Round((s - whole) * 1000))
	return time.Unix(a.Epoch.Unix()+int64(whole), int64(a.Epoch.Nanosecond())+ms*int64(time.Millisecond)).UTC()
}

// String returns the axis in CF units form.
func (a TimeAxis) String() string {
	var u string
	switch a.Unit {
	case time.Second:
		u = "seconds"
	case time.Minute:
		u = "minutes"
	case time.Hour:
		u = "hours"
	default:
		u = "days"
	}
	return u + " since " + a.Epoch.UTC().Format("2006-01-02 15:04:05")
}

// TimeAxis returns the time axis described by the coordinate's units
// attribute.
func (c *Coordinate) TimeAxis() (TimeAxis, bool) {
	u, ok := c.Attrs.Get("units").(string)
	if !ok {
		return TimeAxis{}, false
	}
	a, err := ParseTimeAxis(u)
	if err != nil {
		return TimeAxis{}, false
	}
	return a, true
}
