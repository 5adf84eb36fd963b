// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Evn42/routine-builder/internal/catalog"
	"github.com/Evn42/routine-builder/internal/conversation"
	"github.com/Evn42/routine-builder/internal/selection"
	"github.com/Evn42/routine-builder/internal/storage"
	"github.com/Evn42/routine-builder/internal/ui/styles"
)

var testCatalog = &catalog.Catalog{Products: []catalog.Product{
	{Name: "A", Brand: "BrandA", Category: "skincare"},
	{Name: "A2", Brand: "BrandA", Category: "skincare"},
	{Name: "B", Brand: "BrandB", Category: "hair"},
}}

// fakeSource serves testCatalog and counts calls per category.
type fakeSource struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
}

func (s *fakeSource) Products(ctx context.Context, category string) ([]catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[category]++
	if s.err != nil {
		return nil, s.err
	}
	return testCatalog.InCategory(category), nil
}

type harness struct {
	m      Model
	source *fakeSource
	sel    *selection.Store
	conv   *conversation.Store
	gw     *fakeGateway
}

type fakeGateway struct {
	reply string
	err   error
	sent  [][]conversation.Message
}

func (g *fakeGateway) Complete(ctx context.Context, msgs []conversation.Message) (string, error) {
	g.sent = append(g.sent, msgs)
	return g.reply, g.err
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		source: &fakeSource{},
		sel:    selection.New(storage.NewMemoryKV(), nil),
		conv:   conversation.New("system", nil),
		gw:     &fakeGateway{reply: "Cleanse twice daily."},
	}
	h.sel.Initialize()
	h.m = New(h.source, h.sel, h.conv, h.gw, Options{
		Categories:    []string{"skincare", "hair"},
		AssistantName: "Marie",
		Theme:         styles.NewTheme("dark"),
	})
	// Blink commands sleep; tests never run them.
	h.m.input.Cursor.SetMode(cursor.CursorStatic)
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

// send delivers msg and returns the command it produced without running it.
func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

// run delivers msg and then feeds every resulting message back in,
// skipping spinner and blink ticks.
func (h *harness) run(msg tea.Msg) {
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		cmd := h.send(next)
		queue = append(queue, collect(cmd)...)
	}
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch msg := msg.(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	case catalogLoadedMsg, replyMsg:
		return []tea.Msg{msg}
	default:
		return nil
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+g":
		return tea.KeyMsg{Type: tea.KeyCtrlG}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func TestView_PlaceholderBeforeCategory(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "", h.m.Category())
	assert.Contains(t, h.m.View(), "Select a category to view products")
	assert.Empty(t, h.source.calls, "loader must not run without a category")
}

func TestCategorySwitch_LoadsAndFilters(t *testing.T) {
	h := newHarness(t)
	h.run(keyMsg("right"))

	assert.Equal(t, "skincare", h.m.Category())
	require.Len(t, h.m.Products(), 2)
	assert.Equal(t, "A", h.m.Products()[0].Name)
	assert.NotContains(t, h.m.View(), "BrandB")

	h.run(keyMsg("right"))
	assert.Equal(t, "hair", h.m.Category())
	require.Len(t, h.m.Products(), 1)
}

func TestToggle_FromGrid(t *testing.T) {
	h := newHarness(t)
	h.run(keyMsg("right"))
	calls := h.source.calls["skincare"]

	h.run(keyMsg("enter"))
	assert.True(t, h.sel.Contains("A"))
	assert.Contains(t, h.m.View(), "✓")

	h.run(keyMsg("enter"))
	assert.False(t, h.sel.Contains("A"))

	// Re-render uses the loaded products; no refetch.
	assert.Equal(t, calls, h.source.calls["skincare"])
}

func TestStaleCatalogResponseDropped(t *testing.T) {
	h := newHarness(t)

	first := h.send(keyMsg("right"))  // skincare, seq 1
	second := h.send(keyMsg("right")) // hair, seq 2

	// Deliver out of order: newest first, then the stale one.
	for _, msg := range collect(second) {
		h.send(msg)
	}
	for _, msg := range collect(first) {
		h.send(msg)
	}

	assert.Equal(t, "hair", h.m.Category())
	require.Len(t, h.m.Products(), 1)
	assert.Equal(t, "B", h.m.Products()[0].Name)
}

func TestCatalogError_ShowsNotice(t *testing.T) {
	h := newHarness(t)
	h.source.err = catalog.ErrCatalogUnavailable
	h.run(keyMsg("right"))

	assert.ErrorIs(t, h.m.CatalogErr(), catalog.ErrCatalogUnavailable)
	assert.Empty(t, h.m.Products())
	assert.Contains(t, h.m.View(), "Products are unavailable right now.")
}

func TestSelectionPane_RemoveAndClear(t *testing.T) {
	h := newHarness(t)
	h.run(keyMsg("right"))
	h.run(keyMsg("enter"))
	h.run(keyMsg("down"))
	h.run(keyMsg("enter"))
	require.Equal(t, 2, h.sel.Len())

	h.run(keyMsg("tab"))
	assert.Equal(t, FocusSelection, h.m.Focus())

	h.run(keyMsg("x"))
	assert.False(t, h.sel.Contains("A"))
	assert.True(t, h.sel.Contains("A2"))

	h.run(keyMsg("C"))
	assert.Zero(t, h.sel.Len())
	assert.Contains(t, h.m.View(), "No products selected.")
	assert.NotContains(t, h.m.View(), "Clear all")
}

func TestGenerate_EmptySelectionNotice(t *testing.T) {
	h := newHarness(t)
	h.run(keyMsg("ctrl+g"))

	assert.Empty(t, h.gw.sent)
	assert.Contains(t, h.m.View(), "Please select at least one product to generate a routine.")
}

func TestGenerate_ShowsReply(t *testing.T) {
	h := newHarness(t)
	h.run(keyMsg("right"))
	h.run(keyMsg("enter"))
	h.run(keyMsg("ctrl+g"))

	require.Len(t, h.gw.sent, 1)
	assert.Len(t, h.gw.sent[0], 2)
	view := h.m.View()
	assert.Contains(t, view, "Marie:")
	assert.Contains(t, view, "Cleanse")
	assert.NotContains(t, view, conversation.PayloadPrefix)
}

func TestSave(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()

	h.run(keyMsg("ctrl+s"))
	assert.Equal(t, "Saving is not configured.", h.m.Status())

	h.m.exportDir = dir
	h.run(keyMsg("ctrl+s"))
	assert.Equal(t, "Nothing to save yet.", h.m.Status())

	h.run(keyMsg("right"))
	h.run(keyMsg("enter"))
	h.run(keyMsg("ctrl+g"))
	h.run(keyMsg("ctrl+s"))
	require.True(t, strings.HasPrefix(h.m.Status(), "Saved to "+dir), h.m.Status())

	data, err := os.ReadFile(strings.TrimPrefix(h.m.Status(), "Saved to "))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Cleanse twice daily.")
}

func TestInFlightGuard(t *testing.T) {
	h := newHarness(t)
	h.run(keyMsg("right"))
	h.run(keyMsg("enter"))

	// Start a turn but hold the reply.
	pending := h.send(keyMsg("ctrl+g"))
	require.Equal(t, conversation.StateAwaitingReply, h.conv.State())
	assert.Contains(t, h.m.View(), "Creating your routine...")

	// A second request is refused while the first is pending.
	assert.Nil(t, h.send(keyMsg("ctrl+g")))
	assert.Equal(t, awaitingStatus, h.m.Status())

	for _, msg := range collect(pending) {
		h.send(msg)
	}
	assert.Equal(t, conversation.StateIdle, h.conv.State())
	assert.Empty(t, h.m.Status())
	assert.Len(t, h.gw.sent, 1)
}

func TestChat_SubmitAndFailure(t *testing.T) {
	h := newHarness(t)
	h.run(keyMsg("tab"))
	h.run(keyMsg("tab"))
	require.Equal(t, FocusInput, h.m.Focus())

	h.gw.err = errors.New("connection refused")
	h.m.input.SetValue("hello")
	h.run(keyMsg("enter"))

	msgs := h.conv.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[1].Content)
	assert.Contains(t, h.m.View(), "Sorry, there was a problem connecting to the assistant.")
}

func TestStaleReplyIgnored(t *testing.T) {
	h := newHarness(t)
	h.send(replyMsg{turnID: "not-a-turn", reply: "late"})
	assert.Len(t, h.conv.Messages(), 1)
}

func TestCatalogChanged_Reloads(t *testing.T) {
	h := newHarness(t)
	h.run(CatalogChangedMsg{})
	assert.Empty(t, h.source.calls)

	h.run(keyMsg("right"))
	h.run(CatalogChangedMsg{})
	assert.Equal(t, 2, h.source.calls["skincare"])
}

func TestQuit(t *testing.T) {
	h := newHarness(t)
	cmd := h.send(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_NarrowLayout(t *testing.T) {
	h := newHarness(t)
	h.send(tea.WindowSizeMsg{Width: 60, Height: 30})
	view := h.m.View()
	assert.True(t, strings.Contains(view, "Selected products (0)"))
}
