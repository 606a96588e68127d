// Package scenarios defines the GestAgent smoke suites on top of the
// smoketest runner: capability servers ("mcp"), the real document workflow
// ("real-data") and the document verification probe ("verify").
package scenarios

import (
	"fmt"
	"sort"

	"gestctl/internal/smoketest"
)

// Options carries the settings of every suite
type Options struct {
	MCP      MCPOptions
	RealData RealDataOptions
	Verify   VerifyOptions
}

// Info describes a suite for listings
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	DefaultURL  string `json:"default_url"`
	Scenarios   int    `json:"scenarios"`
}

type definition struct {
	description string
	defaultURL  string
	build       func(Options) smoketest.Suite
}

var suites = map[string]definition{
	"mcp": {
		description: "Capability server actions, performance and error handling",
		defaultURL:  MCPBaseURL,
		build:       func(o Options) smoketest.Suite { return MCPSuite(o.MCP) },
	},
	"real-data": {
		description: "Invoice upload, listing, AI extraction and SAGE export",
		defaultURL:  DocumentsBaseURL,
		build:       func(o Options) smoketest.Suite { return RealDataSuite(o.RealData) },
	},
	"verify": {
		description: "Dashboard, list and direct access checks for one document",
		defaultURL:  DocumentsBaseURL,
		build:       func(o Options) smoketest.Suite { return VerifySuite(o.Verify) },
	},
}

// Names returns the suite names in sorted order
func Names() []string {
	names := make([]string, 0, len(suites))
	for name := range suites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List describes every suite
func List() []Info {
	infos := make([]Info, 0, len(suites))
	for _, name := range Names() {
		def := suites[name]
		infos = append(infos, Info{
			Name:        name,
			Description: def.description,
			DefaultURL:  def.defaultURL,
			Scenarios:   len(def.build(Options{}).Scenarios),
		})
	}
	return infos
}

// Build returns the named suite
func Build(name string, opts Options) (smoketest.Suite, error) {
	def, ok := suites[name]
	if !ok {
		return smoketest.Suite{}, fmt.Errorf("unknown suite %q (available: %v)", name, Names())
	}
	return def.build(opts), nil
}

// DefaultURL returns the base URL a suite targets when none is configured
func DefaultURL(name string) string {
	return suites[name].defaultURL
}
