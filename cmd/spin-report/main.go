// Command spin-report detects the bounce in a coordinate log, predicts the
// spin-free path after it and measures how far the real ball deviated.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/spin.report/internal/fsutil"
	"github.com/banshee-data/spin.report/internal/timeutil"
	"github.com/banshee-data/spin.report/internal/version"
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	a := &app{fs: fsutil.OSFileSystem{}, out: os.Stdout, clock: timeutil.RealClock{}}

	var err error
	switch command {
	case "ingest":
		err = a.runIngest(args)
	case "predict":
		err = a.runPredict(args)
	case "angle":
		err = a.runAngle(args)
	case "render":
		err = a.runRender(args)
	case "runs":
		err = a.runRuns(args)
	case "migrate":
		err = a.runMigrate(args)
	case "version":
		fmt.Println(version.String())
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("%s: %v", command, err)
	}
}

func printUsage() {
	fmt.Println(`spin-report - bounce trajectory and spin deviation analysis

Usage: spin-report <command> [options]

Commands:
  ingest     Build a coordinate log from detector output (JSON Lines)
  predict    Detect the bounce and write the spin-free counterfactual log
  angle      Measure the deviation between an actual and a predicted log
  render     Draw both trails, the bounce and the deviation to PNG/HTML
  runs       List, show (and export) or delete recorded analysis runs
  migrate    Manage the run database schema (up, down, status, to, force)
  version    Show spin-report version
  help       Show this help message

Examples:
  spin-report ingest -detections detections.jsonl -out coords.txt
  spin-report predict -in coords.txt -out coords_no_spin.txt -db spin_report.db
  spin-report angle -actual coords.txt -predicted coords_no_spin.txt
  spin-report render -actual coords.txt -predicted coords_no_spin.txt -png bounce.png -html bounce.html
  spin-report runs show -db spin_report.db -export run1 <run-id>

Run 'spin-report <command> -h' for the flags of a command.`)
}
