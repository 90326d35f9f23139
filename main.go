package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"qudeck/circuit"
	"qudeck/gates"
	"qudeck/internal/config"
	"qudeck/internal/logger"
	"qudeck/pauli"
	"qudeck/statevector"
	"qudeck/validate"
)

const unitaryTol = 1e-9

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newApp builds the command tree. Configuration is loaded once in Before and
// overridden by flags.
func newApp() *cli.App {
	var cfg *config.Config

	dimFlag := func() cli.Flag {
		return &cli.IntFlag{Name: "dimension", Aliases: []string{"d"}, Usage: "qudit dimension"}
	}
	quditsFlag := func() cli.Flag {
		return &cli.IntFlag{Name: "qudits", Aliases: []string{"n"}, Usage: "number of qudits"}
	}

	return &cli.App{
		Name:  "qudeck",
		Usage: "qudit Clifford circuit editor and validator",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn, error or off"},
			&cli.StringFlag{Name: "log-file", Usage: "append logs to this file"},
		},
		Before: func(c *cli.Context) error {
			var err error
			if cfg, err = config.Load(); err != nil {
				return err
			}
			if c.IsSet("log-level") {
				cfg.LogLevel = c.String("log-level")
			}
			if c.IsSet("log-file") {
				cfg.LogFile = c.String("log-file")
			}
			return nil
		},
		Action: func(c *cli.Context) error {
			return runTUI(cfg, "")
		},
		Commands: []*cli.Command{
			{
				Name:  "tui",
				Usage: "open the circuit editor",
				Flags: []cli.Flag{
					dimFlag(),
					quditsFlag(),
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "load a .qdc circuit"},
				},
				Action: func(c *cli.Context) error {
					applyShape(c, cfg)
					return runTUI(cfg, c.String("file"))
				},
			},
			{
				Name:      "validate",
				Usage:     "sample a circuit and compare against its exact distribution",
				ArgsUsage: " ",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "circuit in .qdc text form"},
					&cli.StringFlag{Name: "scenario", Usage: "built-in scenario name (see `qudeck scenarios`)"},
					dimFlag(),
					&cli.IntFlag{Name: "samples", Aliases: []string{"n"}, Usage: "number of samples"},
					&cli.IntFlag{Name: "workers", Usage: "parallel samplers"},
					&cli.Uint64Flag{Name: "seed", Usage: "sampling seed (0 picks one)"},
					&cli.Float64Flag{Name: "threshold", Usage: "TVD pass threshold"},
				},
				Action: func(c *cli.Context) error {
					applyShape(c, cfg)
					if c.IsSet("samples") {
						cfg.Samples = c.Int("samples")
					}
					if c.IsSet("workers") {
						cfg.Workers = c.Int("workers")
					}
					if c.IsSet("seed") {
						cfg.Seed = c.Uint64("seed")
					}
					if c.IsSet("threshold") {
						cfg.TVDThreshold = c.Float64("threshold")
					}
					if err := cfg.Validate(); err != nil {
						return err
					}
					return runValidate(c.Context, cfg, c.App.Writer, c.String("file"), c.String("scenario"))
				},
			},
			{
				Name:  "scenarios",
				Usage: "list the built-in validation scenarios",
				Flags: []cli.Flag{dimFlag()},
				Action: func(c *cli.Context) error {
					applyShape(c, cfg)
					return listScenarios(c.App.Writer, cfg.Dimension)
				},
			},
			{
				Name:      "pauli",
				Usage:     "parse generalized Pauli strings",
				ArgsUsage: "STRING...",
				Flags: []cli.Flag{
					dimFlag(),
					quditsFlag(),
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write msgpack rows to this file"},
				},
				Action: func(c *cli.Context) error {
					applyShape(c, cfg)
					if c.NArg() == 0 {
						return cli.Exit("pauli: at least one STRING is required", 2)
					}
					return runPauli(c.App.Writer, c.Args().Slice(), cfg.Qudits, cfg.Dimension, c.String("out"))
				},
			},
			{
				Name:      "gate",
				Usage:     "print a gate's unitary",
				ArgsUsage: "NAME",
				Flags: []cli.Flag{
					dimFlag(),
					&cli.IntFlag{Name: "multiplier", Aliases: []string{"a"}, Usage: "MUL multiplier"},
				},
				Action: func(c *cli.Context) error {
					applyShape(c, cfg)
					if c.NArg() != 1 {
						return cli.Exit("gate: exactly one NAME is required", 2)
					}
					var a []int
					if c.IsSet("multiplier") {
						a = append(a, c.Int("multiplier"))
					}
					return runGate(c.App.Writer, c.Args().First(), cfg.Dimension, a...)
				},
			},
		},
	}
}

// applyShape copies explicitly set shape flags onto cfg.
func applyShape(c *cli.Context, cfg *config.Config) {
	if c.IsSet("dimension") {
		cfg.Dimension = c.Int("dimension")
	}
	if c.IsSet("qudits") {
		cfg.Qudits = c.Int("qudits")
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	return logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
}

// seedFor returns the configured seed or a time-based one.
func seedFor(cfg *config.Config) uint64 {
	if cfg.Seed != 0 {
		return cfg.Seed
	}
	return uint64(time.Now().UnixNano())
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0))
}

func loadCircuit(path string) (*circuit.Circuit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := circuit.ParseText(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func runTUI(cfg *config.Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	log, closer, err := logger.OpenFile(logger.Config{Level: cfg.LogLevel}, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closer.Close()

	var c *circuit.Circuit
	if path != "" {
		c, err = loadCircuit(path)
	} else {
		c, err = circuit.New(cfg.Qudits, cfg.Dimension)
	}
	if err != nil {
		return err
	}
	log.Info().Int("qudits", c.NumQudits).Int("dimension", c.Dimension).Msg("editor started")

	m := newModel(cfg, log, c, func() uint64 { return seedFor(cfg) })
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func runValidate(ctx context.Context, cfg *config.Config, w io.Writer, path, scenario string) error {
	var (
		c      *circuit.Circuit
		expect []circuit.MeasurementResult
		err    error
	)
	switch {
	case path != "" && scenario != "":
		return cli.Exit("validate: use either --file or --scenario", 2)
	case path != "":
		c, err = loadCircuit(path)
	case scenario != "":
		var sc validate.Scenario
		sc, err = validate.Lookup(scenario, cfg.Dimension)
		c, expect = sc.Circuit, sc.Expect
	default:
		return cli.Exit("validate: --file or --scenario is required", 2)
	}
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	seed := seedFor(cfg)
	r := &validate.Runner{
		Sampler:   statevector.Engine{},
		Samples:   cfg.Samples,
		Workers:   cfg.Workers,
		Seed:      seed,
		Threshold: cfg.TVDThreshold,
		Cutoff:    cfg.ProbCutoff,
		Log:       newLogger(cfg),
	}
	report, err := r.Run(ctx, c)
	if err != nil {
		return err
	}
	printReport(w, report, seed)

	if expect != nil {
		if err := checkExpected(ctx, c, expect, seed); err != nil {
			return cli.Exit(err.Error(), 1)
		}
		fmt.Fprintf(w, "records: %s\n", formatResults(expect))
	}
	if !report.Passed {
		return cli.Exit(fmt.Sprintf("FAIL: TVD %.4f >= %.2f", report.TVD, report.Threshold), 1)
	}
	return nil
}

// checkExpected runs c once and compares its records with expect regardless
// of order.
func checkExpected(ctx context.Context, c *circuit.Circuit, expect []circuit.MeasurementResult, seed uint64) error {
	got, err := statevector.Engine{}.Run(ctx, c, newRand(seed))
	if err != nil {
		return err
	}
	byQudit := func(a, b circuit.MeasurementResult) int { return a.Qudit - b.Qudit }
	got, want := slices.Clone(got), slices.Clone(expect)
	slices.SortFunc(got, byQudit)
	slices.SortFunc(want, byQudit)
	if !slices.Equal(got, want) {
		return fmt.Errorf("FAIL: records %s, want %s", formatResults(got), formatResults(want))
	}
	return nil
}

func formatResults(rs []circuit.MeasurementResult) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = fmt.Sprintf("q%d=%d", r.Qudit, r.Value)
	}
	return strings.Join(parts, " ")
}

func printReport(w io.Writer, r *validate.Report, seed uint64) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Outcome", "Exact", "Empirical"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, o := range r.Top(16) {
		table.Append([]string{
			o.Label,
			strconv.FormatFloat(o.Exact, 'f', 4, 64),
			strconv.FormatFloat(o.Empirical, 'f', 4, 64),
		})
	}
	table.Render()

	verdict := "PASS"
	if !r.Passed {
		verdict = "FAIL"
	}
	fmt.Fprintf(w, "run %s  d=%d  measured %v  %d samples  seed %d\n", r.RunID, r.Dimension, r.Measured, r.Samples, seed)
	fmt.Fprintf(w, "%s  TVD %.4f  threshold %.2f  (%s)\n", verdict, r.TVD, r.Threshold, r.Elapsed.Round(time.Millisecond))
}

func listScenarios(w io.Writer, d int) error {
	scs, err := validate.Scenarios(d)
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Qudits", "Expect", "Description"})
	table.SetAutoWrapText(false)
	for _, sc := range scs {
		expect := "random"
		if sc.Expect != nil {
			expect = formatResults(sc.Expect)
		}
		table.Append([]string{sc.Name, strconv.Itoa(sc.Circuit.NumQudits), expect, sc.Description})
	}
	table.Render()
	return nil
}

func runPauli(w io.Writer, inputs []string, n, d int, out string) error {
	rows := make([]*pauli.String, 0, len(inputs))
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Input", "Canonical", "X", "Z", "Weight", "Phase"})
	table.SetAutoWrapText(false)
	for _, in := range inputs {
		p, err := parseFrame(in, n, d)
		if err != nil {
			return fmt.Errorf("%q: %w", in, err)
		}
		rows = append(rows, p)
		table.Append([]string{
			in,
			p.String(),
			fmt.Sprint(p.XPowers()),
			fmt.Sprint(p.ZPowers()),
			strconv.Itoa(p.Weight()),
			formatComplex(p.PhaseFactor()),
		})
	}
	table.Render()

	if out == "" {
		return nil
	}
	data, err := pauli.EncodeRows(rows)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(w, "wrote %d row(s) to %s\n", len(rows), out)
	return nil
}

func runGate(w io.Writer, name string, d int, a ...int) error {
	g, err := gates.Lookup(name, d, a...)
	if err != nil {
		return err
	}
	u := g.Unitary()
	rows, cols := u.Dims()

	fmt.Fprintf(w, "%s  arity %d  wires %s\n", g.Label(), g.Arity(), strings.Join(g.WireLabels(), ", "))

	table := tablewriter.NewWriter(w)
	header := make([]string, cols+1)
	for j := range cols {
		header[j+1] = strconv.Itoa(j)
	}
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for i := range rows {
		row := make([]string, cols+1)
		row[0] = strconv.Itoa(i)
		for j := range cols {
			row[j+1] = formatComplex(u.At(i, j))
		}
		table.Append(row)
	}
	table.Render()

	fmt.Fprintf(w, "unitary: %t\n", gates.IsUnitary(u, unitaryTol))
	return nil
}
