package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pac-william/mercado/internal/common/apperrors"
	"github.com/pac-william/mercado/internal/common/eventbus"
	"github.com/pac-william/mercado/internal/storefront/stubsrv"
	"github.com/pac-william/mercado/internal/storefront/suggestion"
)

func TestSuggestOpensTheSuggestion(t *testing.T) {
	cfg := useStub(t, nil)
	loginAs(t, cfg, "ana@mercado.dev", "ana123")

	var out bytes.Buffer
	run, err := suggest(context.Background(), nil, newAPI(cfg), "molho de tomate",
		suggestion.Options{Interval: 10 * time.Millisecond}, &out)
	require.NoError(t, err)
	assert.Equal(t, suggestion.Succeeded, run.Outcome.Status)
	assert.True(t, strings.HasPrefix(run.Outcome.Destination, "/suggestions/"))
	require.NotNil(t, run.Suggestion)
	assert.Equal(t, run.Outcome.Destination, suggestion.Destination(run.Suggestion.ID))
	assert.Equal(t, "molho de tomate", run.Suggestion.Query)
	assert.NotEmpty(t, run.Suggestion.Items)

	s := out.String()
	assert.Contains(t, s, "Task ID: "+run.Outcome.TaskID)
	assert.Contains(t, s, suggestion.DefaultCaptions[0])
	assert.Contains(t, s, "suggestion ready at "+run.Outcome.Destination)

	out.Reset()
	require.NoError(t, printSuggestRun(&out, run))
	assert.Contains(t, out.String(), run.Suggestion.Title)
	assert.Contains(t, out.String(), "Molho de tomate")
}

func TestSuggestInterrupted(t *testing.T) {
	cfg := useStub(t, func(c *stubsrv.Config) {
		c.SuggestionDelay = 5 * time.Second
	})
	loginAs(t, cfg, "ana@mercado.dev", "ana123")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	interrupt := make(chan struct{})
	close(interrupt)

	var out bytes.Buffer
	start := time.Now()
	run, err := suggest(ctx, interrupt, newAPI(cfg), "feijoada", suggestion.Options{Interval: time.Second}, &out)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, suggestion.Cancelled, run.Outcome.Status)
	assert.Empty(t, run.Outcome.Destination)
	assert.Nil(t, run.Suggestion)
	assert.Contains(t, out.String(), "cancelled")

	out.Reset()
	require.NoError(t, printSuggestRun(&out, run))
	assert.Contains(t, out.String(), "Stopped waiting")
}

func TestSuggestRequiresLogin(t *testing.T) {
	cfg := useStub(t, nil)

	run, err := suggest(context.Background(), nil, newAPI(cfg), "feijoada",
		suggestion.Options{Interval: 10 * time.Millisecond}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Nil(t, run)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
}

func TestSuggestRejectsBlankQuery(t *testing.T) {
	cfg := useStub(t, nil)
	_, err := suggest(context.Background(), nil, newAPI(cfg), "   ", suggestion.Options{}, &bytes.Buffer{})
	assert.ErrorIs(t, err, suggestion.ErrBlankQuery)
}

func TestProgressPrinterTimeline(t *testing.T) {
	var out bytes.Buffer
	p := newProgressPrinter(&out)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	p.Handle(eventbus.Event{Topic: suggestion.TopicState, Data: suggestion.StateEvent{TaskID: "task-1", Status: suggestion.Running}})
	p.Handle(eventbus.Event{Topic: suggestion.TopicCaption, Data: suggestion.CaptionEvent{Index: 0, Caption: "Reading your request"}})
	now = now.Add(2500 * time.Millisecond)
	p.Handle(eventbus.Event{Topic: suggestion.TopicCaption, Data: suggestion.CaptionEvent{Index: 1, Caption: "Checking the shelves"}})
	now = now.Add(65 * time.Second)
	p.Handle(eventbus.Event{Topic: suggestion.TopicState, Data: suggestion.StateEvent{TaskID: "task-1", Status: suggestion.Failed, Err: apperrors.ErrServerError}})
	p.Handle(eventbus.Event{Topic: "other", Data: "ignored"})

	s := out.String()
	assert.Contains(t, s, "Task ID: task-1")
	assert.Contains(t, s, "[00:00.000] Reading your request…")
	assert.Contains(t, s, "[00:02.500] Checking the shelves…")
	assert.Contains(t, s, "[01:07.500] ❗ server failed to process the request")
	assert.NotContains(t, s, "ignored")
}
