package main

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/hauke96/sigolo/v2"

	"geographer/connector"
)

const VERSION = "v0.1.0"

var cli struct {
	Logging string      `help:"Logging verbosity." enum:"info,debug,trace" short:"l" default:"info"`
	Version VersionFlag `help:"Print version information and quit" name:"version" short:"v"`
	Init    struct {
		DataDir string `help:"Data directory to create an empty connector in." placeholder:"<data-dir>" arg:"" type:"path"`
	} `cmd:"" help:"Creates an empty connector in the given data directory."`
	Check struct {
		DataDir string `help:"Data directory holding a connector." placeholder:"<data-dir>" arg:"" type:"existingdir"`
	} `cmd:"" help:"Loads a connector and reports whether its invariants hold."`
}

type VersionFlag string

func (v VersionFlag) Decode(ctx *kong.DecodeContext) error { return nil }
func (v VersionFlag) IsBool() bool                         { return true }
func (v VersionFlag) BeforeApply(app *kong.Kong, vars kong.Vars) error {
	fmt.Println(vars["version"])
	app.Exit(0)
	return nil
}

func main() {
	ctx := kong.Parse(
		&cli,
		kong.Name("connectorctl"),
		kong.Description("Developer harness for the vector/raster containment connector."),
		kong.Vars{
			"version": VERSION,
		},
	)

	switch strings.ToLower(cli.Logging) {
	case "debug":
		sigolo.SetDefaultLogLevel(sigolo.LOG_DEBUG)
	case "trace":
		sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)
	case "info":
		sigolo.SetDefaultLogLevel(sigolo.LOG_INFO)
		sigolo.SetDefaultFormatFunctionAll(sigolo.LogPlain)
	default:
		sigolo.SetDefaultFormatFunctionAll(sigolo.LogPlain)
		sigolo.Fatalf("Unknown logging level '%s'", cli.Logging)
	}

	switch ctx.Command() {
	case "init <data-dir>":
		c, err := connector.FromScratch(connector.Options{DataDir: cli.Init.DataDir})
		sigolo.FatalCheck(err)
		err = c.Save()
		sigolo.FatalCheck(err)
		sigolo.Infof("Created empty connector in %s", cli.Init.DataDir)
	case "check <data-dir>":
		c, err := connector.FromDataDir(cli.Check.DataDir)
		sigolo.FatalCheck(err)
		err = c.CheckInvariants()
		sigolo.FatalCheck(err)
		sigolo.Infof("%s: %d vectors, %d rasters, invariants hold", cli.Check.DataDir, c.Vectors().Len(), c.Rasters().Len())
	default:
		sigolo.Errorf("Unknown command '%s'", ctx.Command())
	}
}
