package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
)

var (
	askMaxAttempts int
	askJSON        bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the documents",
	Long: `Answer a question using the planner, judge and synthesizer loop.

Tool calls and judge verdicts are printed as they happen, followed by the
final answer and its citations. Use --json to print the events as NDJSON,
in the same shape as the HTTP /api/ask stream.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVar(&askMaxAttempts, "max-attempts", 0, "Planner and judge rounds to allow (default from settings)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print events as NDJSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askService == nil {
		return errors.New("ask service not configured")
	}

	out := cmd.OutOrStdout()
	var printer eventPrinter
	if askJSON {
		printer = &jsonPrinter{enc: json.NewEncoder(out)}
	} else {
		printer = &textPrinter{w: out, styles: stylesFor(out)}
	}

	result, err := askService.Ask(cmd.Context(), args[0], driving.AskOptions{
		MaxAttempts: askMaxAttempts,
		Sink:        services.FuncSink(printer.print),
	})
	if err != nil {
		if askJSON {
			printer.print(domain.ErrorEvent(err))
		}
		return fmt.Errorf("failed to answer question: %w", err)
	}

	if result.FinalAnswer != "" {
		printer.print(domain.ChunkEvent(result.FinalAnswer))
	}
	citations, info := services.Citations(result)
	printer.print(domain.CompleteEvent(citations, info))
	printer.summary(result)
	return nil
}

type eventPrinter interface {
	print(ev domain.Event)
	summary(result *domain.OrchestrationResult)
}

// jsonPrinter writes one event per line.
type jsonPrinter struct {
	enc *json.Encoder
}

func (p *jsonPrinter) print(ev domain.Event) {
	_ = p.enc.Encode(ev)
}

func (p *jsonPrinter) summary(*domain.OrchestrationResult) {}

// textPrinter renders events for people.
type textPrinter struct {
	w      io.Writer
	styles outputStyles
}

func (p *textPrinter) print(ev domain.Event) {
	s := p.styles
	switch ev.Type {
	case domain.EventToolCall:
		fmt.Fprintf(p.w, "%s %s\n", s.Tool.Render("→ "+ev.Tool), s.Muted.Render(formatArgs(ev.Args)))
	case domain.EventToolResult:
		fmt.Fprintf(p.w, "  %s\n", s.Muted.Render(formatToolResult(ev.Result)))
	case domain.EventJudgeResult:
		if ev.Judge == nil {
			return
		}
		style := s.Warning
		if ev.Judge.Accepted() {
			style = s.Success
		}
		fmt.Fprintf(p.w, "%s %s\n", style.Render("judge: "+string(ev.Judge.Verdict)), ev.Judge.Explanation)
	case domain.EventChunk:
		fmt.Fprintf(p.w, "\n%s\n%s\n", s.Title.Render("Answer"), ev.Text)
	case domain.EventComplete:
		if len(ev.Citations) == 0 {
			return
		}
		fmt.Fprintf(p.w, "\n%s\n", s.Title.Render("Sources"))
		for _, c := range ev.Citations {
			fmt.Fprintf(p.w, "  %s %s\n", c.Title, s.Muted.Render(fmt.Sprintf("(%d chunks)", c.ChunksUsed)))
		}
	case domain.EventError:
		fmt.Fprintln(p.w, s.Error.Render("error: "+ev.Error))
	}
}

func (p *textPrinter) summary(result *domain.OrchestrationResult) {
	fmt.Fprintf(p.w, "\n%s\n", p.styles.Muted.Render(fmt.Sprintf(
		"verdict %s after %d attempt(s) in %.1fs", result.Verdict, result.Attempts, result.ElapsedSeconds)))
}

// formatArgs renders tool arguments as sorted key=value pairs.
func formatArgs(args map[string]any) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, args[k]))
	}
	return strings.Join(parts, " ")
}

func formatToolResult(result map[string]any) string {
	if msg, ok := result["error"]; ok {
		return fmt.Sprintf("failed: %v", msg)
	}
	if n, ok := result["count"]; ok {
		return fmt.Sprintf("%v result(s)", n)
	}
	if id, ok := result["doc_id"]; ok {
		return fmt.Sprintf("read %v", id)
	}
	return "done"
}
