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

// Package oceanutil is the command-line interface to oceanslice.
package oceanutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/oceanslice"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information and the commands that use it.
type Cfg struct {
	*viper.Viper

	Root *cobra.Command

	versionCmd, infoCmd, selectCmd, mapCmd, timeseriesCmd, profileCmd, batchCmd *cobra.Command

	log *logrus.Logger
}

type option struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

// InitializeConfig creates the commands and the configuration they read.
// Options can be set with command-line flags, with environment variables
// named OCEANSLICE_<option>, or in the file given by --config.
func InitializeConfig() *Cfg {
	cfg := &Cfg{
		Viper: viper.New(),
		log:   logrus.New(),
	}
	cfg.log.Out = os.Stderr

	cfg.Root = &cobra.Command{
		Use:   "oceanslice",
		Short: "Subset and plot gridded ocean model output.",
		Long: `oceanslice selects subsets of ocean model and in-situ NetCDF datasets
by coordinate value, plots them as maps, time series and vertical profiles
with a locator inset, and exports the subsets to NetCDF.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'OCEANSLICE_var' where 'var' is the
name of the variable to be set. Map-valued options are given on the command line
as JSON, for example --nearest='{"time": "2021-11-04", "latitude": "42"}'.`,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			if err := cfg.setConfig(); err != nil {
				return err
			}
			return cfg.setLogLevel()
		},
	}

	cfg.versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  "version prints the version number of this version of oceanslice.",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("oceanslice v%s\n", oceanslice.Version)
		},
		DisableAutoGenTag: true,
	}

	cfg.infoCmd = &cobra.Command{
		Use:   "info <file>",
		Short: "Describe a dataset",
		Long: `info lists the dimensions, coordinate ranges, scalar coordinates and
variables of a NetCDF dataset, with summary statistics of the valid values
of each variable.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Info(cmd.OutOrStdout(), os.ExpandEnv(args[0]))
		},
		DisableAutoGenTag: true,
	}

	cfg.selectCmd = &cobra.Command{
		Use:   "select",
		Short: "Select a subset and save it",
		Long: `select selects a subset of the input dataset by coordinate value and
writes it to a new NetCDF file.`,
		RunE:              cfg.runKind("select"),
		DisableAutoGenTag: true,
	}

	cfg.mapCmd = &cobra.Command{
		Use:   "map",
		Short: "Plot a map",
		Long: `map selects a 2-D (latitude, longitude) slice of the input dataset and
plots it as a colored map with a colorbar and a locator inset.`,
		RunE:              cfg.runKind("map"),
		DisableAutoGenTag: true,
	}

	cfg.timeseriesCmd = &cobra.Command{
		Use:   "timeseries",
		Short: "Plot a station time series",
		Long: `timeseries reads a mooring or buoy dataset, reduces it to the record of
its station, and plots the selected time range.`,
		RunE:              cfg.runKind("timeseries"),
		DisableAutoGenTag: true,
	}

	cfg.profileCmd = &cobra.Command{
		Use:   "profile",
		Short: "Plot vertical profiles",
		Long: `profile plots the vertical profile nearest the selected location on each
of the given dates, with depth increasing downwards.`,
		RunE:              cfg.runKind("profile"),
		DisableAutoGenTag: true,
	}

	cfg.batchCmd = &cobra.Command{
		Use:   "batch <plan.toml>",
		Short: "Run a batch of jobs",
		Long: `batch runs the select, map, timeseries and profile jobs listed in a TOML
plan file. A failed job does not stop the jobs after it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ReadPlan(args[0])
			if err != nil {
				return err
			}
			written, err := Batch(p, cfg.log)
			for _, w := range written {
				cmd.Println(w)
			}
			return err
		},
		DisableAutoGenTag: true,
	}

	cfg.Root.AddCommand(cfg.versionCmd, cfg.infoCmd, cfg.selectCmd, cfg.mapCmd,
		cfg.timeseriesCmd, cfg.profileCmd, cfg.batchCmd)

	selecting := []*pflag.FlagSet{cfg.selectCmd.Flags(), cfg.mapCmd.Flags(),
		cfg.timeseriesCmd.Flags(), cfg.profileCmd.Flags()}
	plotting := []*pflag.FlagSet{cfg.mapCmd.Flags(), cfg.timeseriesCmd.Flags(), cfg.profileCmd.Flags()}

	options := []option{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "loglevel",
			usage: `
              loglevel sets the level of log messages written to standard
              error: debug, info, warning or error.`,
			defaultVal: "warning",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "input",
			usage: `
              input specifies the NetCDF dataset to read.`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   selecting,
		},
		{
			name: "var",
			usage: `
              var specifies the variables to keep. Figures plot exactly one
              variable; it may be omitted if the dataset holds only one.`,
			defaultVal: []string{},
			flagsets:   selecting,
		},
		{
			name: "exact",
			usage: `
              exact maps dimension names to values that must be matched
              exactly, as JSON.`,
			defaultVal: map[string]string{},
			flagsets:   selecting,
		},
		{
			name: "nearest",
			usage: `
              nearest maps dimension names to values whose nearest
              coordinate is selected, as JSON. Times are given as
              2006-01-02T15:04:05 or any shorter prefix.`,
			defaultVal: map[string]string{},
			flagsets:   selecting,
		},
		{
			name: "tolerance",
			usage: `
              tolerance maps dimension names to the largest allowed distance
              for nearest queries, as JSON. Times take durations such as 36h.
              Nearest queries without a tolerance are unbounded.`,
			defaultVal: map[string]string{},
			flagsets:   selecting,
		},
		{
			name: "range",
			usage: `
              range maps dimension names to inclusive low/high ranges, as JSON,
              for example {"longitude": "13/17"}.`,
			defaultVal: map[string]string{},
			flagsets:   selecting,
		},
		{
			name: "isel",
			usage: `
              isel maps dimension names to lists of positions to select before
              any value query, as JSON, for example {"time": [0]}.`,
			defaultVal: map[string][]int{},
			flagsets:   selecting,
		},
		{
			name: "squeeze",
			usage: `
              squeeze removes every dimension of length 1 from the subset.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{cfg.selectCmd.Flags()},
		},
		{
			name: "output",
			usage: `
              output specifies the file to write. Figures may be .png, .jpg,
              .tif, .svg, .pdf or .eps. If empty, a name is derived from the
              input file and a hash of the request.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   selecting,
		},
		{
			name: "title",
			usage: `
              title is the title of the main plot.`,
			defaultVal: "",
			flagsets:   plotting,
		},
		{
			name: "suptitle",
			usage: `
              suptitle is the figure header. Lines are separated by \n. Time
              series and profiles default to the station location.`,
			defaultVal: "",
			flagsets:   plotting,
		},
		{
			name: "xlabel",
			usage: `
              xlabel labels the horizontal axis.`,
			defaultVal: "",
			flagsets:   plotting,
		},
		{
			name: "ylabel",
			usage: `
              ylabel labels the vertical axis.`,
			defaultVal: "",
			flagsets:   plotting,
		},
		{
			name: "cbarlabel",
			usage: `
              cbarlabel labels the colorbar of a map. It defaults to the
              variable's long name and units.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.mapCmd.Flags()},
		},
		{
			name: "vmin",
			usage: `
              vmin is the value at the low end of the map color scale.`,
			defaultVal: 0.,
			flagsets:   []*pflag.FlagSet{cfg.mapCmd.Flags()},
		},
		{
			name: "vmax",
			usage: `
              vmax is the value at the high end of the map color scale. If
              vmax is not greater than vmin the range of the data is used.`,
			defaultVal: 0.,
			flagsets:   []*pflag.FlagSet{cfg.mapCmd.Flags()},
		},
		{
			name: "cmap",
			usage: `
              cmap names the map colormap: viridis, blackbody, bluered or
              kindlmann, with a _r suffix to reverse it.`,
			defaultVal: "viridis",
			flagsets:   []*pflag.FlagSet{cfg.mapCmd.Flags()},
		},
		{
			name: "extent",
			usage: `
              extent fixes the map area as "lon min, lon max, lat min, lat max".`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.mapCmd.Flags()},
		},
		{
			name: "land",
			usage: `
              land specifies a shapefile or GeoJSON file of land polygons to
              draw on maps and locator insets.`,
			defaultVal: "",
			flagsets:   plotting,
		},
		{
			name: "points",
			usage: `
              points lists [longitude, latitude] pairs to mark on the locator
              inset, as JSON. Time series and profiles default to their
              station location.`,
			defaultVal: "",
			flagsets:   plotting,
		},
		{
			name: "locations",
			usage: `
              locations specifies a .shp file to save the points marked on
              the locator inset to.`,
			defaultVal: "",
			flagsets:   plotting,
		},
		{
			name: "dates",
			usage: `
              dates lists the times of the profiles to plot; each selects the
              nearest model time.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{cfg.profileCmd.Flags()},
		},
		{
			name: "export",
			usage: `
              export specifies a NetCDF file to save the first profile to.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.profileCmd.Flags()},
		},
		{
			name: "dpi",
			usage: `
              dpi is the resolution of raster figures.`,
			defaultVal: 96,
			flagsets:   plotting,
		},
	}

	cfg.SetEnvPrefix("OCEANSLICE")
	cfg.AutomaticEnv()

	for _, option := range options {
		for _, set := range option.flagsets {
			addFlag(set, option)
		}
	}
	return cfg
}

// addFlag adds option to set.
func addFlag(set *pflag.FlagSet, option option) {
	switch option.defaultVal.(type) {
	case string:
		set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
	case []string:
		set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
	case bool:
		set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
	case int:
		set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
	case float64:
		set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
	case map[string]string, map[string][]int:
		b := bytes.NewBuffer(nil)
		json.NewEncoder(b).Encode(option.defaultVal)
		set.StringP(option.name, option.shorthand, strings.TrimSpace(b.String()), option.usage)
	default:
		panic(fmt.Sprintf("invalid type %T for option %s", option.defaultVal, option.name))
	}
}

// setConfig finds and reads in the configuration file, if there is one.
func (cfg *Cfg) setConfig() error {
	if cfgpath := cfg.GetString("config"); cfgpath != "" {
		cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("oceanslice: problem reading configuration file: %v", err)
		}
	}
	return nil
}

func (cfg *Cfg) setLogLevel() error {
	lvl, err := logrus.ParseLevel(cfg.GetString("loglevel"))
	if err != nil {
		return fmt.Errorf("oceanslice: %v", err)
	}
	cfg.log.Level = lvl
	return nil
}

// runKind returns a command function that runs a job of the given kind
// from the current configuration.
func (cfg *Cfg) runKind(kind string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		r, err := requestFromConfig(kind, cfg.Viper)
		if err != nil {
			return err
		}
		out, err := Run(r, cfg.log)
		if err != nil {
			return err
		}
		cmd.Println(out)
		return nil
	}
}
