package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"upside-down-research.com/oss/planner/internal/config"
	"upside-down-research.com/oss/planner/internal/o11y"
	"upside-down-research.com/oss/planner/internal/report"
	"upside-down-research.com/oss/planner/internal/search"
	"upside-down-research.com/oss/planner/internal/strips"
)

var CLI struct {
	Problem  string `arg:"" name:"problem" help:"Path to a grounded-problem JSON fixture (domain+problem grounding happens upstream of this tool)." type:"path"`
	Config   string `name:"config" help:"Path to a YAML engine config file." type:"path"`
	Output   string `name:"output" help:"Output directory for run artifacts; overrides the config file's output.directory." type:"path"`
	LogLevel string `name:"log-level" help:"Log verbosity." default:"info" enum:"debug,info,warn,error"`

	MaxNovelty   int           `name:"max-novelty" help:"Overrides the config file's novelty partition arity (0 leaves the config value)."`
	TimeBudget   time.Duration `name:"time-budget" help:"Wall-clock search budget, e.g. 30s (0 leaves the config value)."`
	MemoryBudget float64       `name:"memory-budget" help:"Resident-memory budget in MB (0 leaves the config value)."`
	LogFile      string        `name:"log-file" help:"Append log output to this file instead of stderr." type:"path"`
	PlanFile     string        `name:"plan-file" help:"Write the found plan's action signatures to this file, one per line, in addition to the output directory." type:"path"`
	Algorithm    string        `name:"algorithm" help:"Open-list variant." enum:"standard,bounded,double,pruned,"`
}

// Exit codes.
const (
	exitSolved   = 0
	exitNoPlan   = 1
	exitResource = 2
	exitBadInput = 3
)

func main() {
	kong.Parse(&CLI)
	setLogLevel(CLI.LogLevel)
	if CLI.LogFile != "" {
		f, err := os.OpenFile(CLI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Error("failed to open log file", "path", CLI.LogFile, "error", err)
			os.Exit(exitBadInput)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	cfg, err := config.LoadConfig(CLI.Config)
	if err != nil {
		log.Error("failed to load config", "path", CLI.Config, "error", err)
		os.Exit(exitBadInput)
	}
	if CLI.Output != "" {
		cfg.Output.Directory = CLI.Output
	}
	applyEngineOverrides(&cfg.Engine)

	fx, err := strips.LoadFixture(CLI.Problem)
	if err != nil {
		log.Error("failed to load problem fixture", "path", CLI.Problem, "error", err)
		os.Exit(exitBadInput)
	}
	problem, err := strips.NewGroundedProblem(fx)
	if err != nil {
		log.Error("failed to ground problem", "error", err)
		os.Exit(exitBadInput)
	}

	runID := uuid.NewString()
	registry := prometheus.NewRegistry()
	metrics := o11y.NewSearchMetrics(registry, runID)

	d := search.NewDriver(problem, cfg.Engine, metrics, runID)

	ctx := context.Background()
	if cfg.Engine.TimeBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Engine.TimeBudget)
		defer cancel()
	}

	res, err := d.Run(ctx)
	if err != nil {
		log.Error("search run failed", "error", err)
		os.Exit(exitBadInput)
	}
	writeArtifacts(ctx, cfg, d, res)
	exportInflux(ctx, cfg, res)
	if CLI.PlanFile != "" && res.Status == search.StatusSolved {
		if err := writePlanFile(CLI.PlanFile, d.ActionSignatures(res.Plan)); err != nil {
			log.Warn("failed to write plan file", "path", CLI.PlanFile, "error", err)
		}
	}

	switch res.Status {
	case search.StatusSolved:
		fmt.Printf("plan found: %d actions, cost %.1f\n", len(res.Plan), res.Cost)
		os.Exit(exitSolved)
	case search.StatusTimeOut, search.StatusOOM:
		log.Warn("search stopped by a resource budget", "status", res.Status.String())
		os.Exit(exitResource)
	default:
		log.Info("no plan exists", "status", res.Status.String())
		os.Exit(exitNoPlan)
	}
}

func writeArtifacts(_ context.Context, cfg *config.Config, d *search.Driver, res *search.Result) {
	writer := report.NewWriter(cfg.Output.Directory)

	if res.Status == search.StatusSolved {
		if err := writer.WritePlan(res.RunID, d.ActionSignatures(res.Plan)); err != nil {
			log.Warn("failed to write plan file", "error", err)
		}
	}

	rr := &report.RunReport{
		RunID:      res.RunID,
		Status:     res.Status.ToReportStatus(),
		PlanLength: len(res.Plan),
		Cost:       res.Cost,
		Expansions: res.Expansions,
		Generated:  res.Generated,
		Deadends:   res.Deadends,
		BestGC:     res.BestGC,
		Elapsed:    res.Elapsed,
	}
	if err := writer.WriteRunReport(res.RunID, rr); err != nil {
		log.Warn("failed to write run report", "error", err)
	}
}

func exportInflux(ctx context.Context, cfg *config.Config, res *search.Result) {
	if cfg.Influx.URL == "" {
		return
	}
	influxCfg := o11y.InfluxConfig{
		URL:    cfg.Influx.URL,
		Token:  cfg.Influx.Token,
		Org:    cfg.Influx.Org,
		Bucket: cfg.Influx.Bucket,
	}
	fields := map[string]any{
		"status":     string(res.Status.ToReportStatus()),
		"expansions": res.Expansions,
		"generated":  res.Generated,
		"deadends":   res.Deadends,
		"best_gc":    res.BestGC,
		"cost":       float64(res.Cost),
	}
	if err := o11y.ExportRunSummary(ctx, influxCfg, res.RunID, fields); err != nil {
		log.Warn("influxdb export failed", "error", err)
	}
}

// applyEngineOverrides layers CLI flags on top of the loaded config, the
// same precedence --output already uses for cfg.Output.Directory.
func applyEngineOverrides(eng *config.EngineOptions) {
	if CLI.MaxNovelty > 0 {
		eng.NoveltyArity = CLI.MaxNovelty
	}
	if CLI.TimeBudget > 0 {
		eng.TimeBudget = CLI.TimeBudget
	}
	if CLI.MemoryBudget > 0 {
		eng.MemoryBudgetMB = CLI.MemoryBudget
	}
	switch CLI.Algorithm {
	case "standard":
		eng.OpenList = config.OpenListStandard
	case "bounded":
		eng.OpenList = config.OpenListBounded
	case "double":
		eng.OpenList = config.OpenListDouble
	case "pruned":
		eng.OpenList = config.OpenListPruned
	}
}

func writePlanFile(path string, sigs []string) error {
	var b strings.Builder
	for _, s := range sigs {
		b.WriteString(s)
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}
