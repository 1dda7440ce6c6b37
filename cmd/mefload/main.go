// Command mefload loads one or more Open-PSA MEF XML documents and
// reports whether the resulting model validated successfully. It is a
// thin flag-parsing shell around the loader package; per spec §1 the
// CLI itself is an external-collaborator non-goal, so no business
// logic lives here. Grounded on the teacher's cmd/cli/main.go's thin
// main() → run(outW, args) shape.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	mefload "github.com/openpsa-mef/loader"
	"github.com/openpsa-mef/loader/internal/ctxlog"
)

func main() {
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(out io.Writer, args []string) error {
	fs := flag.NewFlagSet("mefload", flag.ContinueOnError)
	missionTime := fs.Float64("mission-time", 0, "initial mission time")
	probabilityAnalysis := fs.Bool("probability-analysis", false, "require every basic event to have an expression")
	settingsPath := fs.String("settings", "", "optional HCL settings file; overrides the flags above when given")
	verbose := fs.Bool("verbose", false, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}
	paths := fs.Args()
	if len(paths) == 0 {
		return fmt.Errorf("mefload: at least one input file is required")
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	opts := mefload.Options{Settings: mefload.Settings{
		MissionTime:         *missionTime,
		ProbabilityAnalysis: *probabilityAnalysis,
	}}
	if *settingsPath != "" {
		s, err := mefload.LoadSettingsHCL(*settingsPath)
		if err != nil {
			return err
		}
		opts.Settings = s
	}

	m, err := mefload.Load(ctx, paths, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "loaded %d gates, %d basic events, %d house events, %d parameters, %d fault trees, %d event trees\n",
		len(m.Gates()), len(m.BasicEvents()), len(m.HouseEvents()), len(m.Parameters()), len(m.FaultTrees()), len(m.EventTrees()))
	return nil
}
