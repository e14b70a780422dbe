package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/spin.report/internal/config"
	"github.com/banshee-data/spin.report/internal/db"
	"github.com/banshee-data/spin.report/internal/detection"
	"github.com/banshee-data/spin.report/internal/fsutil"
	"github.com/banshee-data/spin.report/internal/monitoring"
	"github.com/banshee-data/spin.report/internal/render"
	"github.com/banshee-data/spin.report/internal/timeutil"
	"github.com/banshee-data/spin.report/internal/trajectory"
	"github.com/banshee-data/spin.report/internal/units"
)

var errMissingFlag = errors.New("missing required flag")

// app carries the collaborators every subcommand needs.
type app struct {
	fs    fsutil.FileSystem
	out   io.Writer
	clock timeutil.Clock
}

func requireFlags(fs *flag.FlagSet, values map[string]string) error {
	for name, v := range values {
		if v == "" {
			fs.Usage()
			return fmt.Errorf("%w: -%s", errMissingFlag, name)
		}
	}
	return nil
}

func (a *app) loadConfig(path string) (*config.AnalysisConfig, error) {
	if path == "" {
		return config.DefaultAnalysisConfig(), nil
	}
	return config.LoadAnalysisConfig(a.fs, path)
}

func (a *app) noBounce(l *trajectory.Log) {
	fmt.Fprintf(a.out, "No bounce detected in %d samples.\n", l.Len())
}

func (a *app) runIngest(args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	detections := fs.String("detections", "", "Detector output, one JSON frame per line (required)")
	out := fs.String("out", "coords.txt", "Coordinate log to write")
	class := fs.Int("class", -1, "Detector class to keep (default: target_class from config)")
	configPath := fs.String("config", "", "Analysis config JSON file")
	verbose := fs.Bool("v", false, "Log every frame")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireFlags(fs, map[string]string{"detections": *detections}); err != nil {
		return err
	}
	monitoring.SetVerbose(*verbose)

	cfg, err := a.loadConfig(*configPath)
	if err != nil {
		return err
	}
	classID := cfg.GetTargetClass()
	if *class >= 0 {
		classID = *class
	}

	f, err := a.fs.Open(*detections)
	if err != nil {
		return fmt.Errorf("open detections: %w", err)
	}
	defer f.Close()

	frames, err := detection.ReadFrames(f)
	if err != nil {
		return err
	}
	l := detection.BuildLog(frames, classID)
	if err := trajectory.WriteLogFile(a.fs, *out, l); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Wrote %d of %d frames to %s\n", l.Len(), len(frames), *out)
	return nil
}

func (a *app) runPredict(args []string) error {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	in := fs.String("in", "coords.txt", "Observed coordinate log")
	out := fs.String("out", "coords_no_spin.txt", "Counterfactual coordinate log to write")
	configPath := fs.String("config", "", "Analysis config JSON file")
	dbPath := fs.String("db", "", "Record the run in this SQLite database")
	unitsFlag := fs.String("units", units.PxPerSecond, "Velocity units: "+units.GetValidUnitsString())
	verbose := fs.Bool("v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !units.IsValid(*unitsFlag) {
		return fmt.Errorf("invalid units %q, expected one of: %s", *unitsFlag, units.GetValidUnitsString())
	}
	monitoring.SetVerbose(*verbose)

	cfg, err := a.loadConfig(*configPath)
	if err != nil {
		return err
	}
	opts := cfg.Options()

	actual, err := trajectory.ReadLogFile(a.fs, *in)
	if err != nil {
		return err
	}
	if actual.IsEmpty() {
		return fmt.Errorf("%s: %w", *in, trajectory.ErrEmptyLog)
	}

	res, err := trajectory.Analyze(actual, opts)
	if err != nil {
		return err
	}
	if !res.Found {
		a.noBounce(actual)
		a.maybeRecordRun(*dbPath, *in, cfg, res, actual)
		return nil
	}

	suffix := units.Suffix(*unitsFlag)
	fmt.Fprintf(a.out, "Bounce detected at frame %d\n", res.Bounce.Frame)
	fmt.Fprintf(a.out, "Estimated pre-bounce velocity: vx=%.2f %s, vy=%.2f %s\n",
		units.ConvertVelocity(res.Velocity.VX, opts.FPS, *unitsFlag), suffix,
		units.ConvertVelocity(res.Velocity.VY, opts.FPS, *unitsFlag), suffix)

	if err := trajectory.WriteLogFile(a.fs, *out, res.Counterfactual); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Spin angle deviation: %.2f°\n", res.DeviationDeg)
	fmt.Fprintf(a.out, "Wrote counterfactual trajectory to %s\n", *out)
	a.maybeRecordRun(*dbPath, *in, cfg, res, actual)
	return nil
}

// maybeRecordRun stores the run when a database path was given. It runs
// only after the outputs are written; a failure is logged, not returned.
func (a *app) maybeRecordRun(dbPath, source string, cfg *config.AnalysisConfig, res *trajectory.Result, actual *trajectory.Log) {
	if dbPath == "" {
		return
	}
	if err := a.recordRun(dbPath, source, cfg, res, actual); err != nil {
		monitoring.Logf("failed to record run: %v", err)
	}
}

func (a *app) recordRun(path, source string, cfg *config.AnalysisConfig, res *trajectory.Result, actual *trajectory.Log) error {
	database, store, err := a.openRunStore(path)
	if err != nil {
		return err
	}
	defer database.Close()

	run := db.NewRun(filepath.Base(source), cfg.GetFPS(), cfg.JSON(), res)
	if err := store.Record(run, actual, res.Counterfactual); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Recorded run %s\n", run.RunID)
	return nil
}

// compareFiles loads both logs and runs the deviation analysis. A nil
// comparison with a nil error means no bounce was found.
func (a *app) compareFiles(actualPath, predictedPath string) (*trajectory.Log, *trajectory.Log, *trajectory.Comparison, error) {
	actual, err := trajectory.ReadLogFile(a.fs, actualPath)
	if err != nil {
		return nil, nil, nil, err
	}
	predicted, err := trajectory.ReadLogFile(a.fs, predictedPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if actual.IsEmpty() {
		return nil, nil, nil, fmt.Errorf("%s: %w", actualPath, trajectory.ErrEmptyLog)
	}

	cmp, err := trajectory.Compare(actual, predicted)
	if err != nil {
		return nil, nil, nil, err
	}
	if !cmp.Found {
		a.noBounce(actual)
		return actual, predicted, nil, nil
	}
	return actual, predicted, cmp, nil
}

func (a *app) runAngle(args []string) error {
	fs := flag.NewFlagSet("angle", flag.ContinueOnError)
	actualPath := fs.String("actual", "coords.txt", "Observed coordinate log")
	predictedPath := fs.String("predicted", "coords_no_spin.txt", "Counterfactual coordinate log")
	if err := fs.Parse(args); err != nil {
		return err
	}

	_, _, cmp, err := a.compareFiles(*actualPath, *predictedPath)
	if err != nil || cmp == nil {
		return err
	}
	fmt.Fprintf(a.out, "Bounce detected at frame %d\n", cmp.Bounce.Frame)
	fmt.Fprintf(a.out, "Spin angle deviation: %.2f°\n", cmp.DeviationDeg)
	return nil
}

func (a *app) runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	actualPath := fs.String("actual", "coords.txt", "Observed coordinate log")
	predictedPath := fs.String("predicted", "coords_no_spin.txt", "Counterfactual coordinate log")
	pngPath := fs.String("png", "", "Write a static chart here (format from extension)")
	htmlPath := fs.String("html", "", "Write an interactive HTML chart here")
	width := fs.Float64("width", float64(render.DefaultWidth/vg.Inch), "Static chart width in inches")
	height := fs.Float64("height", float64(render.DefaultHeight/vg.Inch), "Static chart height in inches")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *pngPath == "" && *htmlPath == "" {
		fs.Usage()
		return fmt.Errorf("%w: -png or -html", errMissingFlag)
	}

	actual, predicted, cmp, err := a.compareFiles(*actualPath, *predictedPath)
	if err != nil {
		return err
	}
	in := render.Input{Actual: actual, Counterfactual: predicted}
	if cmp != nil {
		in.Bounce = cmp.Bounce
		in.DeviationDeg = cmp.DeviationDeg
	}

	if *pngPath != "" {
		if err := a.writeRendered(*pngPath, func(w io.Writer) error {
			format := filepath.Ext(*pngPath)
			if format == "" {
				format = ".png"
			}
			return render.WriteSnapshot(in, w, format[1:], vg.Length(*width)*vg.Inch, vg.Length(*height)*vg.Inch)
		}); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Wrote %s\n", *pngPath)
	}
	if *htmlPath != "" {
		if err := a.writeRendered(*htmlPath, func(w io.Writer) error {
			return render.HTMLReport(in, w)
		}); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Wrote %s\n", *htmlPath)
	}
	return nil
}

func (a *app) writeRendered(path string, draw func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := a.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := a.fs.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := draw(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// runRuns dispatches "runs [list|show|delete]". A leading flag means list.
func (a *app) runRuns(args []string) error {
	action := "list"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		action, args = args[0], args[1:]
	}

	switch action {
	case "list":
		return a.listRuns(args)
	case "show":
		return a.showRun(args)
	case "delete":
		return a.deleteRun(args)
	default:
		return fmt.Errorf("unknown runs action %q, expected list, show or delete", action)
	}
}

func (a *app) openRunStore(path string) (*db.DB, *db.RunStore, error) {
	database, err := db.NewDB(path)
	if err != nil {
		return nil, nil, err
	}
	return database, db.NewRunStore(database, a.clock), nil
}

func runIDArg(fs *flag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		fs.Usage()
		return "", fmt.Errorf("%w: run id", errMissingFlag)
	}
	return fs.Arg(0), nil
}

func (a *app) listRuns(args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	dbPath := fs.String("db", db.DefaultPath, "SQLite database path")
	limit := fs.Int("limit", 20, "Maximum number of runs to list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	database, store, err := a.openRunStore(*dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := store.List(*limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(a.out, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		if !r.Found {
			fmt.Fprintf(a.out, "%s  %-24s  no bounce\n", r.RunID, r.Source)
			continue
		}
		fmt.Fprintf(a.out, "%s  %-24s  bounce=%d  vx=%.2f  vy=%.2f  deviation=%.2f°\n",
			r.RunID, r.Source, r.BounceFrame, r.VX, r.VY, r.DeviationDeg)
	}
	return nil
}

// showRun prints one run and optionally exports its stored trajectories as
// coordinate logs that predict, angle and render accept.
func (a *app) showRun(args []string) error {
	fs := flag.NewFlagSet("runs show", flag.ContinueOnError)
	dbPath := fs.String("db", db.DefaultPath, "SQLite database path")
	exportDir := fs.String("export", "", "Write coords.txt and coords_no_spin.txt for the run into this directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	runID, err := runIDArg(fs)
	if err != nil {
		return err
	}

	database, store, err := a.openRunStore(*dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	run, err := store.Get(runID)
	if err != nil {
		return err
	}
	actual, err := store.Samples(runID, db.SampleActual)
	if err != nil {
		return err
	}
	counterfactual, err := store.Samples(runID, db.SampleCounterfactual)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Run %s\n", run.RunID)
	fmt.Fprintf(a.out, "  source:   %s\n", run.Source)
	fmt.Fprintf(a.out, "  recorded: %s\n", time.Unix(0, run.CreatedAt).UTC().Format(time.RFC3339))
	fmt.Fprintf(a.out, "  fps:      %g\n", run.FPS)
	if run.Found {
		fmt.Fprintf(a.out, "  bounce:   frame %d (sample %d)\n", run.BounceFrame, run.BounceIndex)
		fmt.Fprintf(a.out, "  velocity: vx=%.2f px/s, vy=%.2f px/s\n", run.VX, run.VY)
		fmt.Fprintf(a.out, "  spin angle deviation: %.2f°\n", run.DeviationDeg)
	} else {
		fmt.Fprintln(a.out, "  bounce:   not detected")
	}
	fmt.Fprintf(a.out, "  samples:  %d actual, %d counterfactual\n", actual.Len(), counterfactual.Len())

	if *exportDir == "" {
		return nil
	}
	exports := []struct {
		name string
		log  *trajectory.Log
	}{
		{"coords.txt", actual},
		{"coords_no_spin.txt", counterfactual},
	}
	for _, e := range exports {
		if e.log.IsEmpty() {
			continue
		}
		path := filepath.Join(*exportDir, e.name)
		if err := trajectory.WriteLogFile(a.fs, path, e.log); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Wrote %s\n", path)
	}
	return nil
}

func (a *app) deleteRun(args []string) error {
	fs := flag.NewFlagSet("runs delete", flag.ContinueOnError)
	dbPath := fs.String("db", db.DefaultPath, "SQLite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	runID, err := runIDArg(fs)
	if err != nil {
		return err
	}

	database, store, err := a.openRunStore(*dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := store.Delete(runID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted run %s\n", runID)
	return nil
}

func (a *app) runMigrate(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	dbPath := fs.String("db", db.DefaultPath, "SQLite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return db.RunMigrateCommand(fs.Args(), *dbPath, a.out)
}
