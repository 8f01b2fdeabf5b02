// Package reporting consumes the runner's event stream and renders it for
// humans: a line per event in the canonical named-field form, plus a summary
// table once the feature finishes.
package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/log"

	"github.com/specstream/specstream/events"
	"github.com/specstream/specstream/types"
)

// TextSink drains an event channel and writes the canonical textual form of
// each step result. Skipped steps and undefined/ambiguous failures are
// ordinary outcomes here, not special cases.
type TextSink struct {
	w       io.Writer
	log     log.Logger
	verbose bool

	features []*types.FeatureResult
}

// NewTextSink creates a sink writing to w. When verbose is false only
// failures, skips and lifecycle boundaries are written; passing steps still
// count in the summary.
func NewTextSink(w io.Writer, logger log.Logger, verbose bool) *TextSink {
	if logger == nil {
		logger = log.New()
	}
	return &TextSink{
		w:       w,
		log:     logger.New("component", "text-sink"),
		verbose: verbose,
	}
}

// Run consumes the channel until it closes. It is the consumer side of the
// emitter: run it on its own goroutine and wait for it before reading
// Results.
func (s *TextSink) Run(ch <-chan events.Event) {
	for ev := range ch {
		s.handle(ev)
	}
}

// Results returns the feature results observed so far, in finish order.
func (s *TextSink) Results() []*types.FeatureResult {
	return s.features
}

func (s *TextSink) handle(ev events.Event) {
	switch ev.Kind {
	case events.KindFeatureStarted:
		fmt.Fprintf(s.w, "Feature: %s\n", ev.Ref.Feature)
	case events.KindScenarioStarted:
		fmt.Fprintf(s.w, "  Scenario: %s%s\n", ev.Ref.Scenario, locationSuffix(ev.Location))
	case events.KindStepFinished:
		s.writeStep(ev)
	case events.KindScenarioFinished:
		if ev.Scenario != nil {
			fmt.Fprintf(s.w, "  Scenario %s: %s\n", ev.Ref.Scenario, ev.Scenario.Status)
		}
	case events.KindFeatureFinished:
		if ev.Feature != nil {
			s.features = append(s.features, ev.Feature)
			fmt.Fprintf(s.w, "Feature %s: %s\n", ev.Ref.Feature, ev.Feature.Status)
		}
	case events.KindStepStarted:
		// Step lines are written on completion, when the outcome is known.
	default:
		s.log.Warn("Unknown event kind", "kind", ev.Kind, "seq", ev.Seq)
	}
}

// writeStep renders one step result with explicitly named fields. `world`
// and `error` appear only for failures; `table` whenever the declaration
// carried one.
func (s *TextSink) writeStep(ev events.Event) {
	o := ev.Outcome
	if o == nil {
		s.log.Warn("Step finished event without outcome", "seq", ev.Seq)
		return
	}
	if !s.verbose && o.Status == types.StatusPass {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "    %s %s %s [%s]", marker(o), ev.Ref.StepKind.Keyword(), ev.Ref.StepText, o.Status)
	if o.Status == types.StatusFail {
		fmt.Fprintf(&b, " (%s)", o.FailureKind)
	}
	b.WriteString("\n")
	b.WriteString(FormatOutcome(o, "      "))
	fmt.Fprint(s.w, b.String())
}

// FormatOutcome renders the canonical named-field form of a step outcome,
// one field per line with the given indent.
func FormatOutcome(o *types.StepOutcome, indent string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%scaptures: %s\n", indent, formatCaptures(o.Captures))
	if o.Location != nil {
		fmt.Fprintf(&b, "%slocation: %s\n", indent, o.Location)
	}
	if o.Status == types.StatusFail {
		fmt.Fprintf(&b, "%serror: %v\n", indent, o.Err)
		if o.World != "" {
			fmt.Fprintf(&b, "%sworld: %s\n", indent, o.World)
		}
	}
	if !o.Table.IsEmpty() {
		fmt.Fprintf(&b, "%stable: %s\n", indent, FormatTable(o.Table))
		if o.Table.Location != nil {
			fmt.Fprintf(&b, "%stable_location: %s\n", indent, o.Table.Location)
		}
	}
	return b.String()
}

// FormatTable renders table rows as a sequence of sequences of strings,
// preserving row and cell order.
func FormatTable(t *types.DataTable) string {
	rows := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = fmt.Sprintf("%q", cell)
		}
		rows[i] = "[" + strings.Join(cells, ", ") + "]"
	}
	return "[" + strings.Join(rows, ", ") + "]"
}

func formatCaptures(captures []string) string {
	if len(captures) == 0 {
		return "[]"
	}
	quoted := make([]string, len(captures))
	for i, c := range captures {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func locationSuffix(loc *types.Location) string {
	if loc == nil {
		return ""
	}
	return fmt.Sprintf(" (line %s)", loc)
}

func marker(o *types.StepOutcome) string {
	switch o.Status {
	case types.StatusPass:
		return "✓"
	case types.StatusSkip:
		return "-"
	default:
		return "✗"
	}
}
