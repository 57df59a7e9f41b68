// Package main is ldtool, a command-line tool for inspecting LDraw models
// and geometry snapshots.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
)

var CLI struct {
	Debug      bool   `help:"Enable debug logging."`
	ConfigFile string `name:"config-file" help:"Config file (.yaml or .toml)." type:"path"`
	LDraw      string `name:"ldraw" help:"LDraw library folder." type:"path"`

	Stats struct {
		Model   string `arg:"" help:"Model file." type:"existingfile"`
		Flatten bool   `help:"Flatten the whole tree before counting."`
	} `cmd:"" help:"Print shape counts and bounds of a model."`

	Snapshot struct {
		Model  string `arg:"" help:"Model file." type:"existingfile"`
		Output string `short:"o" help:"Output file, standard output if empty." type:"path"`
	} `cmd:"" help:"Write the built geometry of a model as a CBOR snapshot."`

	Verify struct {
		Snapshot string `arg:"" help:"Snapshot file." type:"existingfile"`
	} `cmd:"" help:"Check the digest of a snapshot."`

	Diff struct {
		A string `arg:"" help:"First snapshot." type:"existingfile"`
		B string `arg:"" help:"Second snapshot." type:"existingfile"`
	} `cmd:"" help:"List the shape groups that differ between two snapshots."`

	Digest struct {
		Model string `arg:"" help:"Model file." type:"existingfile"`
	} `cmd:"" help:"Print the geometry digest of a model."`

	DefaultConfig struct {
		TOML bool `name:"toml" help:"Write TOML instead of YAML."`
	} `cmd:"" name:"config" help:"Write the default configuration to standard output."`

	Palette struct {
	} `cmd:"" help:"List the colours of the configured palette."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("ldtool"),
		kong.Description("inspect LDraw models and geometry snapshots"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	if err := run(ctx.Command(), os.Stdout); err != nil {
		writeError(err)
	}
}

func run(command string, out io.Writer) error {
	switch command {
	case "config":
		return configCommand(out, CLI.DefaultConfig.TOML)
	}

	env, err := newEnv(CLI.ConfigFile, CLI.LDraw, CLI.Debug)
	if err != nil {
		return err
	}
	defer env.close()

	switch command {
	case "stats <model>":
		return env.statsCommand(out, CLI.Stats.Model, CLI.Stats.Flatten)
	case "snapshot <model>":
		return env.snapshotCommand(out, CLI.Snapshot.Model, CLI.Snapshot.Output)
	case "verify <snapshot>":
		return verifyCommand(out, CLI.Verify.Snapshot)
	case "diff <a> <b>":
		return diffCommand(out, CLI.Diff.A, CLI.Diff.B)
	case "digest <model>":
		return env.digestCommand(out, CLI.Digest.Model)
	case "palette":
		return env.paletteCommand(out)
	}
	return fmt.Errorf("unknown command %q", command)
}
