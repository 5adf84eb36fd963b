// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Evn42/routine-builder/internal/catalog"
	"github.com/Evn42/routine-builder/internal/conversation"
	"github.com/Evn42/routine-builder/internal/selection"
	"github.com/Evn42/routine-builder/internal/ui/styles"
)

// Focus is the pane receiving keys.
type Focus int

const (
	FocusGrid Focus = iota
	FocusSelection
	FocusInput
	focusCount
)

// CatalogSource returns the products of one category.
type CatalogSource interface {
	Products(ctx context.Context, category string) ([]catalog.Product, error)
}

// Options configures a Model.
type Options struct {
	Categories       []string
	AssistantName    string
	ShowDescriptions bool
	Theme            *styles.Theme
	Logger           *zap.Logger

	// ExportDir receives routines saved with ctrl+s; empty disables saving.
	ExportDir string
	Model     string
}

// Model is the top-level Bubble Tea model.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	source  CatalogSource
	sel     *selection.Store
	conv    *conversation.Store
	gateway conversation.Gateway
	log     *zap.Logger

	theme *styles.Theme
	keys  KeyMap

	// Catalog pane
	categories  []string
	categoryIdx int // -1 means none chosen
	products    []catalog.Product
	catalogErr  error
	loading     bool
	seq         int
	gridCursor  int

	// Selection pane
	selCursor int

	// Conversation pane
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	markdown *glamour.TermRenderer

	assistantName    string
	showDescriptions bool
	exportDir        string
	modelName        string

	focus  Focus
	status string
	width  int
	height int
	ready  bool
}

// New creates the model. The selection store should already be
// initialized.
func New(source CatalogSource, sel *selection.Store, conv *conversation.Store, gw conversation.Gateway, opts Options) Model {
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme("auto")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.AssistantName == "" {
		opts.AssistantName = "Assistant"
	}

	ti := textinput.New()
	ti.Placeholder = "Ask about your routine..."
	ti.Prompt = "> "
	ti.CharLimit = 2000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Theme.Spinner

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		ctx:              ctx,
		cancel:           cancel,
		source:           source,
		sel:              sel,
		conv:             conv,
		gateway:          gw,
		log:              opts.Logger,
		theme:            opts.Theme,
		keys:             DefaultKeyMap(),
		categories:       append([]string(nil), opts.Categories...),
		categoryIdx:      -1,
		input:            ti,
		viewport:         viewport.New(80, 8),
		spinner:          sp,
		help:             help.New(),
		assistantName:    opts.AssistantName,
		showDescriptions: opts.ShowDescriptions,
		exportDir:        opts.ExportDir,
		modelName:        opts.Model,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Focus returns the focused pane.
func (m Model) Focus() Focus { return m.focus }

// Category returns the raw value of the chosen category, or "".
func (m Model) Category() string {
	if m.categoryIdx < 0 || m.categoryIdx >= len(m.categories) {
		return ""
	}
	return m.categories[m.categoryIdx]
}

// Products returns the products currently shown in the grid.
func (m Model) Products() []catalog.Product {
	return append([]catalog.Product(nil), m.products...)
}

// CatalogErr returns the last catalog load error for the current category.
func (m Model) CatalogErr() error { return m.catalogErr }

// Status returns the transient status line text.
func (m Model) Status() string { return m.status }
