package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/rulebook/internal/presentation/report"
	"github.com/aretw0/rulebook/internal/presentation/tui"
	"github.com/aretw0/rulebook/pkg/adapters/file"
	"github.com/aretw0/rulebook/pkg/domain"
	"github.com/aretw0/rulebook/pkg/observability"
	"github.com/aretw0/rulebook/pkg/ports"
	"github.com/muesli/termenv"
)

// RunOptions configuration for the rule run.
type RunOptions struct {
	SourceOptions
	EngineOptions
	Format string
	Out    string
	Quiet  bool
	Log    LogOptions
}

// ErrRunFailed is returned when the run aborted or isolated malformed rules.
// The report has already been written when it is returned.
var ErrRunFailed = errors.New("rule run failed")

// Execute loads facts and rules, evaluates every rule and writes the report to stdout.
func Execute(ctx context.Context, opts RunOptions, stdout io.Writer) error {
	format, err := report.ParseFormat(sourceName(opts.Format, string(report.FormatText)))
	if err != nil {
		return err
	}

	logger := createLogger(opts.Log)

	rules, err := newRuleLoader(opts.Rules)
	if err != nil {
		return err
	}
	store, factsName, closeFacts := newFactStore(opts.SourceOptions)
	defer closeFacts()

	var facts ports.FactLoader = store
	if format == report.FormatText && !opts.Quiet {
		facts = progressFacts{FactLoader: store, name: factsName, out: stdout}
		rules = progressRules{RuleLoader: rules, name: sourceName(opts.Rules, domain.DefaultRulesFile), out: stdout}
	}

	engine := createEngine(opts.EngineOptions, logger, observability.LogHooks(logger))

	rep, runErr := engine.RunSources(ctx, rules, facts)
	if rep == nil {
		return fmt.Errorf("failed to load sources: %w", runErr)
	}

	if err := newReportWriter(stdout, format).Write(rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if opts.Out != "" {
		if err := file.NewReportWriter(opts.Out).Write(rep); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		logger.Info("Report saved", "path", opts.Out)
	}

	if runErr != nil {
		if isInterrupted(runErr) {
			if sig := interruptedBy(ctx); sig != nil {
				printSystemMessage(stdout, "Interrupted by %v", sig)
			}
			return runErr
		}
		return fmt.Errorf("%w: %w", ErrRunFailed, runErr)
	}
	return nil
}

// newReportWriter enables color and glamour rendering only on a terminal.
func newReportWriter(out io.Writer, format report.Format) *report.Writer {
	f, ok := out.(*os.File)
	if !ok || !tui.IsTerminal(f) {
		return report.NewWriter(out, format)
	}
	return report.NewWriter(out, format,
		report.WithColorProfile(termenv.ColorProfile()),
		report.WithMarkdownRenderer(tui.NewRenderer()),
	)
}
