package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/delaneyj/depwatch/observer"
	"github.com/delaneyj/depwatch/report"
	"github.com/delaneyj/depwatch/scenario"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

var version = "dev"

const (
	scriptKey     = "script"
	formatKey     = "format"
	outKey        = "out"
	syncKey       = "sync"
	maxUpdatesKey = "max-updates"
	verboseKey    = "verbose"
)

func main() {
	cmd := &cli.Command{
		Name:  "depwatch",
		Usage: "Run reactive state scenarios and report what every watcher saw",
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Run a YAML scenario",
				ArgsUsage: "[script]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    scriptKey,
						Aliases: []string{"s"},
						Usage:   "Scenario file",
					},
					&cli.StringFlag{
						Name:    formatKey,
						Aliases: []string{"f"},
						Usage:   "Output format: table, text or html",
						Value:   "table",
					},
					&cli.StringFlag{
						Name:    outKey,
						Aliases: []string{"o"},
						Usage:   "Write the report to this file instead of stdout",
					},
					&cli.BoolFlag{
						Name:  syncKey,
						Usage: "Flush watchers synchronously on every change",
					},
					&cli.IntFlag{
						Name:  maxUpdatesKey,
						Usage: "Runs of one watcher allowed per flush",
						Value: observer.DefaultMaxUpdateCount,
					},
					&cli.BoolFlag{
						Name:    verboseKey,
						Aliases: []string{"v"},
						Usage:   "Log diagnostics at debug level",
					},
				},
				Action: run,
			},
			{
				Name:  "version",
				Usage: "Print the version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Println(version)
					return nil
				},
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	filename := cmd.String(scriptKey)
	if filename == "" {
		filename = cmd.Args().First()
	}
	if filename == "" {
		return fmt.Errorf("no scenario given, pass --%s or a file argument", scriptKey)
	}

	format := strings.ToLower(cmd.String(formatKey))
	switch format {
	case "table", "text", "html":
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	level := slog.LevelWarn
	if cmd.Bool(verboseKey) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	start := time.Now()
	log.Printf("Running scenario %s", filename)
	defer func() {
		log.Printf("Scenario %s finished in %v", filename, time.Since(start))
	}()

	script, err := scenario.LoadFile(filename)
	if err != nil {
		return err
	}

	opts := []observer.Option{
		observer.WithLogger(logger),
		observer.WithMaxUpdateCount(int(cmd.Int(maxUpdatesKey))),
	}
	if cmd.Bool(syncKey) {
		opts = append(opts, observer.WithSync())
	}
	res, err := scenario.NewRunner(opts...).Run(ctx, script)
	if err != nil {
		return err
	}
	log.Printf("%s steps, %s events", humanize.Comma(int64(res.Steps)), humanize.Comma(int64(len(res.Events))))

	var w io.Writer = os.Stdout
	if out := cmd.String(outKey); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	switch format {
	case "text":
		report.WriteText(w, name, res)
	case "html":
		report.WriteHTML(w, name, res)
	default:
		renderTable(w, res)
	}
	return nil
}

func renderTable(w io.Writer, res *scenario.Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"step", "watch", "old", "value"})
	for _, ev := range res.Events {
		table.Append([]string{
			fmt.Sprint(ev.Step),
			ev.Watch,
			report.FormatValue(ev.Old),
			report.FormatValue(ev.Value),
		})
	}
	table.SetFooter([]string{"", "", "digest", fmt.Sprintf("%016x", res.Digest)})
	table.Render()
}
