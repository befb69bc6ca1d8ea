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

package oceanutil

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
)

// Plan is a batch of jobs read from a TOML file:
//
//	Land = "land.shp"
//
//	[[Job]]
//	Kind = "profile"
//	Input = "med.nc"
//	Variables = ["thetao"]
//	Dates = ["2021-11-01", "2021-11-08"]
//	[Job.Nearest]
//	latitude = "41.9"
//	longitude = "5.1"
type Plan struct {
	// Land is the default land file for figure jobs.
	Land string

	// DPI is the default resolution of figure jobs.
	DPI int

	Job []Request
}

// ReadPlan reads a batch plan from path.
func ReadPlan(path string) (*Plan, error) {
	var p Plan
	if _, err := toml.DecodeFile(os.ExpandEnv(path), &p); err != nil {
		return nil, fmt.Errorf("oceanslice: reading batch plan: %v", err)
	}
	for i := range p.Job {
		j := &p.Job[i]
		j.Input = os.ExpandEnv(j.Input)
		j.Output = os.ExpandEnv(j.Output)
		j.Export = os.ExpandEnv(j.Export)
		j.Locations = os.ExpandEnv(j.Locations)
		if j.Land == "" {
			j.Land = p.Land
		}
		j.Land = os.ExpandEnv(j.Land)
		if j.DPI == 0 {
			j.DPI = p.DPI
		}
	}
	return &p, nil
}

// Batch runs every job of p in order. A failed job is logged and does not
// stop later jobs. The paths written are returned along with an error
// naming the first failure.
func Batch(p *Plan, log logrus.FieldLogger) ([]string, error) {
	var written []string
	var first error
	failed := 0
	for i := range p.Job {
		j := &p.Job[i]
		out, err := Run(j, log)
		if err != nil {
			failed++
			log.WithFields(logrus.Fields{"job": i, "kind": j.Kind, "input": j.Input}).
				WithError(err).Error("oceanslice: batch job failed")
			if first == nil {
				first = fmt.Errorf("job %d (%s %s): %w", i, j.Kind, j.Input, err)
			}
			continue
		}
		written = append(written, out)
	}
	if first != nil {
		return written, fmt.Errorf("oceanslice: %d of %d batch jobs failed; first: %w", failed, len(p.Job), first)
	}
	return written, nil
}
