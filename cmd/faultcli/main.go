package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"Shortcircuit/internal/calc/chart"
	"Shortcircuit/internal/calc/export"
	"Shortcircuit/internal/calc/fault"
	"Shortcircuit/internal/calc/report"
)

const (
	exitOK         = 0
	exitFailure    = 1
	exitValidation = 2
)

type options struct {
	raw    map[fault.Field]*string
	tEnd   float64
	tStep  float64
	strict bool
	png    string
	svg    string
	html   string
	xlsx   string
	pdf    string
	table  bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opt, given, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		return exitValidation
	}

	raw := make(map[fault.Field]string, len(fault.Fields))
	in := bufio.NewScanner(stdin)
	for _, spec := range fault.Fields {
		if given[spec.Name] {
			raw[spec.Name] = *opt.raw[spec.Name]
			continue
		}
		fmt.Fprint(stdout, spec.Prompt)
		if in.Scan() {
			raw[spec.Name] = in.Text()
		}
	}

	p, err := fault.ParseParameters(raw)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitValidation
	}
	grid, err := fault.NewTimeGrid(0, opt.tEnd, opt.tStep)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitValidation
	}
	res, err := fault.EvaluateOn(p, grid, opt.strict)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		if errors.Is(err, fault.ErrInvalidInput) {
			return exitValidation
		}
		return exitFailure
	}

	printSummary(stdout, res)
	if opt.table {
		printTable(stdout, res.Series)
	}
	if err := writeOutputs(opt, res); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitFailure
	}
	return exitOK
}

func parseFlags(args []string, stderr io.Writer) (options, map[fault.Field]bool, error) {
	fs := flag.NewFlagSet("faultcli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: faultcli [flags]")
		fmt.Fprintln(stderr, "Computes the bolted three-phase short-circuit current of a synchronous generator.")
		fmt.Fprintln(stderr, "Machine parameters not given as flags are prompted for.")
		fs.PrintDefaults()
	}

	opt := options{raw: make(map[fault.Field]*string, len(fault.Fields))}
	for _, spec := range fault.Fields {
		opt.raw[spec.Name] = fs.String(string(spec.Name), "", spec.Usage)
	}
	fs.Float64Var(&opt.tEnd, "t-end", fault.DefaultTimeEnd, "end of the time grid in s")
	fs.Float64Var(&opt.tStep, "t-step", fault.DefaultTimeStep, "time step in s")
	fs.BoolVar(&opt.strict, "strict", false, "require X''d < X'd < Xd")
	fs.StringVar(&opt.png, "png", "", "write the plot as png to `file`")
	fs.StringVar(&opt.svg, "svg", "", "write the plot as svg to `file`")
	fs.StringVar(&opt.html, "html", "", "write an interactive chart to `file`")
	fs.StringVar(&opt.xlsx, "xlsx", "", "write the series workbook to `file`")
	fs.StringVar(&opt.pdf, "pdf", "", "write a pdf report to `file`")
	fs.BoolVar(&opt.table, "table", false, "print every sample")

	if err := fs.Parse(args); err != nil {
		return options{}, nil, err
	}
	given := map[fault.Field]bool{}
	fs.Visit(func(f *flag.Flag) { given[fault.Field(f.Name)] = true })
	return opt, given, nil
}

func printSummary(w io.Writer, res fault.Result) {
	s := res.Summary
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "\nBase current\t%.2f A\n", s.BaseCurrent)
	fmt.Fprintf(tw, "Internal EMF\t%.4f p.u.\n", s.EMF)
	fmt.Fprintf(tw, "Initial symmetrical rms (I'')\t%.2f A\n", s.InitialSymmetrical)
	fmt.Fprintf(tw, "Transient rms (I')\t%.2f A\n", s.TransientCurrent)
	fmt.Fprintf(tw, "Steady-state rms (I)\t%.2f A\n", s.SteadyStateCurrent)
	fmt.Fprintf(tw, "Initial asymmetrical rms\t%.2f A\n", s.InitialAsymmetrical)
	fmt.Fprintf(tw, "Peak instantaneous\t%.2f A at %.3f s\n", s.PeakInstantaneous, s.PeakTime)
	fmt.Fprintf(tw, "Samples\t%d (%g..%g s, step %g s)\n", s.Samples, res.Grid.Start, res.Grid.Stop, res.Grid.Step)
	tw.Flush()
}

func printTable(w io.Writer, s fault.Series) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\nt (s)\t%s\t%s\t%s\t%s\t\n", chart.LegendInstantaneous, chart.LegendRMS, chart.LegendAC, chart.LegendDC)
	for i := 0; i < s.Len(); i++ {
		fmt.Fprintf(tw, "%.4f\t%.2f\t%.2f\t%.2f\t%.2f\t\n",
			s.Time[i], s.InstantaneousAsymmetrical[i], s.RMSAsymmetrical[i], s.RMSAC[i], s.DCOffset[i])
	}
	tw.Flush()
}

func writeOutputs(opt options, res fault.Result) error {
	outputs := []struct {
		path  string
		write func(io.Writer) error
	}{
		{opt.png, func(w io.Writer) error { return chart.Write(w, res.Series, "png", 0, 0) }},
		{opt.svg, func(w io.Writer) error { return chart.Write(w, res.Series, "svg", 0, 0) }},
		{opt.html, func(w io.Writer) error { return chart.HTML(w, res.Series) }},
		{opt.xlsx, func(w io.Writer) error { return export.WriteWorkbook(w, res.Parameters, res.Series) }},
		{opt.pdf, func(w io.Writer) error {
			return report.WriteResult(w, report.Input{}, res, time.Now())
		}},
	}
	for _, o := range outputs {
		if o.path == "" {
			continue
		}
		if err := writeFile(o.path, o.write); err != nil {
			return fmt.Errorf("%s: %w", o.path, err)
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
