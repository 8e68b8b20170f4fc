package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/baila-lang/baila/pkg/config"
	"github.com/baila-lang/baila/pkg/evaluator"
	"github.com/baila-lang/baila/pkg/runtime"
)

// cmdTrace runs a program and prints its trace events on stdout, with the
// program's own output sent to stderr so the events can be redirected to a
// file. With -s it summarizes a recorded NDJSON trace instead.
func cmdTrace(args []string) int {
	cl, err := parseArgs(args, "c:jst")
	if err != nil {
		return usageError("trace", err)
	}
	file, ok := cl.fileArg("trace")
	if !ok {
		return runtime.ExitUsage
	}
	cfg, err := loadConfig(cl.config)
	if err != nil {
		return usageError("trace", err)
	}
	format := cl.format
	if format == "" {
		format = cfg.Trace
	}

	if cl.summary {
		return summarize(file, format)
	}

	if format == "" || format == config.TraceOff {
		format = config.TraceJSON
	}
	source, filename, code := readSource(file)
	if code != runtime.ExitOK {
		return code
	}
	opts := append(runtimeOptions(cfg),
		runtime.WithOutput(os.Stderr),
		runtime.WithRunID(fmt.Sprintf("run-%d", time.Now().UnixNano())),
		runtime.WithTrace(traceWriter(os.Stdout, format)))
	return execute(runtime.New(opts...), source, filename)
}

func summarize(file string, format config.TraceFormat) int {
	var r io.Reader = os.Stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot read file: %s\n", file)
			return runtime.ExitUsage
		}
		defer f.Close()
		r = f
	}

	summary := computeTraceSummary(r)
	if format == config.TraceText {
		printTraceSummaryText(os.Stdout, summary)
		return runtime.ExitOK
	}
	b, _ := json.Marshal(summary)
	fmt.Println(string(b))
	return runtime.ExitOK
}

// traceWriter returns a trace callback writing each event to w as one JSON
// line or one line of text.
func traceWriter(w io.Writer, format config.TraceFormat) func(evaluator.TraceEvent) {
	enc := json.NewEncoder(w)
	return func(e evaluator.TraceEvent) {
		if format != config.TraceText {
			_ = enc.Encode(e)
			return
		}
		fmt.Fprintln(w, formatEventText(e))
	}
}

func formatEventText(e evaluator.TraceEvent) string {
	var b strings.Builder
	b.WriteString(e.Timestamp)
	b.WriteByte(' ')
	b.WriteString(string(e.Event))
	if e.Span != nil {
		b.WriteByte(' ')
		b.WriteString(e.Span.String())
	}
	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%s", k, e.Data[k])
	}
	return b.String()
}

type TraceSummary struct {
	RunID         string         `json:"runId"`
	TotalEvents   int            `json:"totalEvents"`
	Statements    int            `json:"statements"`
	FunctionCalls int            `json:"functionCalls"`
	CallsByName   map[string]int `json:"callsByName"`
	Loops         int            `json:"loops"`
	StartTime     string         `json:"startTime,omitempty"`
	EndTime       string         `json:"endTime,omitempty"`
	DurationMs    float64        `json:"durationMs"`
}

type traceEvent struct {
	Event string            `json:"event"`
	RunID string            `json:"runId"`
	TS    string            `json:"ts"`
	Data  map[string]string `json:"data,omitempty"`
}

func computeTraceSummary(r io.Reader) *TraceSummary {
	summary := &TraceSummary{
		CallsByName: make(map[string]int),
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event traceEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue // skip invalid lines
		}

		summary.TotalEvents++
		if summary.RunID == "" {
			summary.RunID = event.RunID
		}

		switch evaluator.TraceEventType(event.Event) {
		case evaluator.TraceRunStart:
			if summary.StartTime == "" {
				summary.StartTime = event.TS
			}
		case evaluator.TraceRunEnd:
			summary.EndTime = event.TS
		case evaluator.TraceStmtStart:
			summary.Statements++
		case evaluator.TraceFnCallStart:
			summary.FunctionCalls++
			if name := event.Data["fn"]; name != "" {
				summary.CallsByName[name]++
			}
		case evaluator.TraceLoopStart:
			summary.Loops++
		}
	}

	if summary.StartTime != "" && summary.EndTime != "" {
		start, err1 := parseTime(summary.StartTime)
		end, err2 := parseTime(summary.EndTime)
		if err1 == nil && err2 == nil {
			summary.DurationMs = float64(end.Sub(start).Milliseconds())
		}
	}

	return summary
}

func printTraceSummaryText(w io.Writer, s *TraceSummary) {
	fmt.Fprintf(w, "Run: %s\n", s.RunID)
	fmt.Fprintf(w, "Events: %d\n", s.TotalEvents)
	fmt.Fprintf(w, "Statements: %d\n", s.Statements)
	fmt.Fprintf(w, "Calls: %d\n", s.FunctionCalls)
	names := make([]string, 0, len(s.CallsByName))
	for name := range s.CallsByName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %d\n", name, s.CallsByName[name])
	}
	fmt.Fprintf(w, "Loops: %d\n", s.Loops)
	if s.DurationMs > 0 {
		fmt.Fprintf(w, "Duration: %.0fms\n", s.DurationMs)
	}
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %s", s)
}
