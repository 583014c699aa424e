package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pac-william/mercado/internal/common/eventbus"
	"github.com/pac-william/mercado/internal/storefront/api"
	"github.com/pac-william/mercado/internal/storefront/suggestion"
)

// suggestCmd represents the suggest command
var suggestCmd = &cobra.Command{
	Use:   "suggest QUERY...",
	Short: "Ask for a shopping list suggestion",
	Long: `Ask the storefront to prepare a shopping list for a dish or an occasion.
Preparing a suggestion takes a while; progress captions are shown meanwhile.
Press Ctrl+C to stop waiting.

Examples:
  mercado suggest "feijoada para 6 pessoas"
  mercado suggest cafe da manha -j`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)
}

// suggestRun is the result of one suggest invocation.
type suggestRun struct {
	Outcome    suggestion.Outcome
	Suggestion *api.Suggestion
}

func runSuggest(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("no configuration loaded")
	}

	sigCtx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run, err := suggest(cmdContext(cmd), sigCtx.Done(), newAPI(cfg), strings.Join(args, " "),
		suggestion.Options{Interval: cfg.GetCaptionInterval()}, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return printSuggestRun(cmd.OutOrStdout(), run)
}

// suggest runs one suggestion task to completion, printing progress to w.
// A value on interrupt cancels the task.
func suggest(ctx context.Context, interrupt <-chan struct{}, client *api.Client, query string, opts suggestion.Options, w io.Writer) (*suggestRun, error) {
	bus := eventbus.New()
	defer bus.Shutdown()
	events, unsubscribe := bus.Subscribe("suggestion.*", 64)
	defer unsubscribe()
	opts.Bus = bus

	var (
		mu        sync.Mutex
		fetched   *api.Suggestion
		detailErr error
	)
	nav := suggestion.NavigatorFunc(func(dest string) {
		id, err := url.PathUnescape(strings.TrimPrefix(dest, "/suggestions/"))
		if err == nil {
			var s api.Suggestion
			s, err = client.GetSuggestion(ctx, id)
			if err == nil {
				mu.Lock()
				fetched = &s
				mu.Unlock()
			}
		}
		if err != nil {
			mu.Lock()
			detailErr = err
			mu.Unlock()
		}
	})

	ctrl := suggestion.New(client, nav, opts)
	if _, err := ctrl.Start(ctx, query); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		ctrl.Wait(context.Background())
		close(done)
	}()

	var printer *progressPrinter
	if !jsonOutput {
		printer = newProgressPrinter(w)
	}
	handle := func(e eventbus.Event) {
		if printer != nil {
			printer.Handle(e)
		}
	}

loop:
	for {
		select {
		case e := <-events:
			handle(e)
		case <-interrupt:
			ctrl.Cancel()
			interrupt = nil
		case <-done:
			break loop
		}
	}
	for drained := false; !drained; {
		select {
		case e := <-events:
			handle(e)
		default:
			drained = true
		}
	}

	if n := bus.Dropped(); n > 0 {
		log.Debug().Uint64("dropped", n).Msg("progress events dropped")
	}

	out, _ := ctrl.LastOutcome()
	mu.Lock()
	defer mu.Unlock()
	switch out.Status {
	case suggestion.Failed:
		return nil, out.Err
	case suggestion.Succeeded:
		if detailErr != nil {
			return nil, detailErr
		}
	}
	return &suggestRun{Outcome: out, Suggestion: fetched}, nil
}

func printSuggestRun(w io.Writer, run *suggestRun) error {
	if jsonOutput {
		kv := map[string]any{
			"status":        run.Outcome.Status.String(),
			"task_id":       run.Outcome.TaskID,
			"caption_index": run.Outcome.ActiveIndex,
		}
		if run.Outcome.Destination != "" {
			kv["destination"] = run.Outcome.Destination
		}
		if run.Suggestion != nil {
			kv["suggestion"] = run.Suggestion
		}
		printJSON(w, kv)
		return nil
	}

	if run.Outcome.Status == suggestion.Cancelled {
		warnLabel.Fprintln(w, "Stopped waiting; the suggestion was not opened.")
		return nil
	}
	if run.Suggestion == nil {
		return nil
	}
	s := run.Suggestion
	fmt.Fprintln(w)
	title := s.Title
	if title == "" {
		title = s.Query
	}
	okLabel.Fprintf(w, "%s\n", title)
	for _, it := range s.Items {
		qty := strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", it.Quantity), "0"), ".")
		if it.Unit != "" {
			fmt.Fprintf(w, "  - %s (%s x %s)\n", it.Name, qty, it.Unit)
		} else {
			fmt.Fprintf(w, "  - %s (%s)\n", it.Name, qty)
		}
	}
	fmt.Fprintf(w, "\nOpen it again with: %s\n", run.Outcome.Destination)
	return nil
}
