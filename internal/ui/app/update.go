// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"errors"
	"path/filepath"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Evn42/routine-builder/internal/catalog"
	"github.com/Evn42/routine-builder/internal/conversation"
	"github.com/Evn42/routine-builder/internal/export"
	"github.com/Evn42/routine-builder/internal/selection"
	"github.com/Evn42/routine-builder/internal/ui/views"
)

const awaitingStatus = "Waiting for the assistant to reply..."

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case catalogLoadedMsg:
		return m.handleCatalogLoaded(msg)

	case replyMsg:
		return m.handleReply(msg)

	case CatalogChangedMsg:
		if m.Category() == "" {
			return m, nil
		}
		return m.loadCategory()

	case spinner.TickMsg:
		if m.conv.State() != conversation.StateAwaitingReply {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.focus == FocusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width, m.height = msg.Width, msg.Height
	m.theme.SetSize(msg.Width, msg.Height)
	m.help.Width = msg.Width

	m.viewport.Width = msg.Width
	m.viewport.Height = conversationHeight(msg.Height)
	m.input.Width = msg.Width - 4

	if md, err := views.NewMarkdown(msg.Width-4, m.theme.IsDark); err == nil {
		m.markdown = md
	} else {
		m.log.Debug("markdown renderer unavailable", zap.Error(err))
	}
	m.ready = true
	m.refreshConversation()
	return m, nil
}

func conversationHeight(total int) int {
	h := total / 3
	if h < 4 {
		h = 4
	}
	return h
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Generate):
		return m.generate()
	case key.Matches(msg, m.keys.Save):
		m.save()
		return m, nil
	case key.Matches(msg, m.keys.NextFocus):
		return m.setFocus((m.focus + 1) % focusCount)
	case key.Matches(msg, m.keys.PrevFocus):
		return m.setFocus((m.focus + focusCount - 1) % focusCount)
	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	switch m.focus {
	case FocusGrid:
		return m.handleGridKey(msg)
	case FocusSelection:
		return m.handleSelectionKey(msg)
	default:
		return m.handleInputKey(msg)
	}
}

func (m Model) setFocus(f Focus) (tea.Model, tea.Cmd) {
	m.focus = f
	if f == FocusInput {
		return m, m.input.Focus()
	}
	m.input.Blur()
	return m, nil
}

func (m Model) handleGridKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.PrevCategory):
		return m.switchCategory(-1)
	case key.Matches(msg, m.keys.NextCategory):
		return m.switchCategory(+1)
	case key.Matches(msg, m.keys.Up):
		if m.gridCursor > 0 {
			m.gridCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.gridCursor < len(m.products)-1 {
			m.gridCursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.gridCursor < len(m.products) {
			m.toggle(m.products[m.gridCursor])
		}
	case key.Matches(msg, m.keys.ClearAll):
		m.clearAll()
	}
	return m, nil
}

func (m Model) handleSelectionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snapshot := m.sel.Snapshot()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selCursor > 0 {
			m.selCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.selCursor < len(snapshot)-1 {
			m.selCursor++
		}
	case key.Matches(msg, m.keys.Remove):
		if m.selCursor < len(snapshot) {
			m.removeByName(snapshot[m.selCursor].Name)
		}
	case key.Matches(msg, m.keys.ClearAll):
		m.clearAll()
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Submit) {
		return m.submit()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// CATALOG
// =============================================================================

func (m Model) switchCategory(delta int) (tea.Model, tea.Cmd) {
	if len(m.categories) == 0 {
		return m, nil
	}
	next := m.categoryIdx + delta
	if m.categoryIdx < 0 {
		next = 0
		if delta < 0 {
			next = len(m.categories) - 1
		}
	}
	next = (next + len(m.categories)) % len(m.categories)
	if next == m.categoryIdx {
		return m, nil
	}
	m.categoryIdx = next
	m.products = nil
	m.gridCursor = 0
	return m.loadCategory()
}

// loadCategory starts a fetch for the current category. Each fetch gets a
// new sequence number; only the newest response is applied.
func (m Model) loadCategory() (tea.Model, tea.Cmd) {
	m.seq++
	m.loading = true
	m.catalogErr = nil

	seq, category, source, ctx := m.seq, m.Category(), m.source, m.ctx
	return m, func() tea.Msg {
		products, err := source.Products(ctx, category)
		return catalogLoadedMsg{seq: seq, category: category, products: products, err: err}
	}
}

func (m Model) handleCatalogLoaded(msg catalogLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.seq {
		m.log.Debug("stale catalog response dropped",
			zap.String("category", msg.category), zap.Int("seq", msg.seq), zap.Int("current", m.seq))
		return m, nil
	}
	m.loading = false
	m.catalogErr = msg.err
	m.products = msg.products
	if msg.err != nil {
		m.products = nil
	}
	if m.gridCursor >= len(m.products) {
		m.gridCursor = max(0, len(m.products)-1)
	}
	return m, nil
}

// =============================================================================
// SELECTION
// =============================================================================

func (m *Model) toggle(p catalog.Product) {
	_, err := m.sel.Toggle(p)
	m.reportPersist(err)
}

func (m *Model) reportPersist(err error) {
	if err == nil {
		m.status = ""
		return
	}
	if errors.Is(err, selection.ErrPersist) {
		m.status = "Your selection could not be saved."
	} else {
		m.status = err.Error()
	}
	m.log.Warn("selection change not saved", zap.Error(err))
}

func (m *Model) clearAll() {
	if m.sel.Len() == 0 {
		return
	}
	m.reportPersist(m.sel.Clear())
	m.selCursor = 0
}

func (m *Model) removeByName(name string) {
	_, err := m.sel.RemoveByName(name)
	m.reportPersist(err)
	if m.selCursor >= m.sel.Len() {
		m.selCursor = max(0, m.sel.Len()-1)
	}
}

// =============================================================================
// CONVERSATION
// =============================================================================

func (m Model) generate() (tea.Model, tea.Cmd) {
	turn, err := m.conv.BeginRoutine(m.sel.Snapshot())
	return m.startTurn(turn, err)
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	turn, err := m.conv.BeginMessage(m.input.Value())
	if err == nil {
		m.input.Reset()
	}
	return m.startTurn(turn, err)
}

func (m Model) startTurn(turn *conversation.Turn, err error) (tea.Model, tea.Cmd) {
	switch {
	case errors.Is(err, conversation.ErrAwaitingReply):
		m.status = awaitingStatus
		return m, nil
	case err != nil:
		// Empty selection or message: the store already set any notice.
		m.refreshConversation()
		return m, nil
	}

	m.status = ""
	m.refreshConversation()

	gw, ctx := m.gateway, m.ctx
	request := func() tea.Msg {
		reply, err := gw.Complete(ctx, turn.Messages)
		return replyMsg{turnID: turn.ID, reply: reply, err: err}
	}
	return m, tea.Batch(m.spinner.Tick, request)
}

func (m Model) handleReply(msg replyMsg) (tea.Model, tea.Cmd) {
	var err error
	if msg.err != nil {
		err = m.conv.Fail(msg.turnID, msg.err)
	} else {
		err = m.conv.Complete(msg.turnID, msg.reply)
	}
	if errors.Is(err, conversation.ErrStaleTurn) {
		m.log.Debug("reply for stale turn dropped", zap.String("turn", msg.turnID))
		return m, nil
	}
	if m.status == awaitingStatus {
		m.status = ""
	}
	m.refreshConversation()
	return m, nil
}

// save exports the visible conversation into the export directory.
func (m *Model) save() {
	if m.exportDir == "" {
		m.status = "Saving is not configured."
		return
	}
	r := export.New(m.sel.Snapshot(), m.conv.Visible(), m.assistantName, m.modelName)
	path, err := export.WriteFile(filepath.Join(m.exportDir, export.DefaultFilename(m.assistantName, r.ExportedAt)), r)
	switch {
	case errors.Is(err, export.ErrNothingToExport):
		m.status = "Nothing to save yet."
	case err != nil:
		m.status = "The routine could not be saved."
		m.log.Warn("export failed", zap.Error(err))
	default:
		m.status = "Saved to " + path
	}
}

// refreshConversation re-renders the transcript into the viewport.
func (m *Model) refreshConversation() {
	v := views.ConversationView{
		Theme:         m.theme,
		AssistantName: m.assistantName,
		Markdown:      m.markdown,
	}
	m.viewport.SetContent(v.Render(m.conv.Notice(), m.conv.Visible()))
	m.viewport.GotoBottom()
}
