// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Evn42/routine-builder/internal/config"
	"github.com/Evn42/routine-builder/internal/conversation"
	"github.com/Evn42/routine-builder/internal/export"
)

func newGenerateCommand(o *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Ask the assistant for a routine built from the selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.App()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			err = a.Conversation.GenerateRoutine(cmd.Context(), a.Gateway, a.Selection.Snapshot())
			printTurn(out, a)
			if err != nil || output == "" {
				return err
			}
			return saveRoutine(out, a, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "also write the routine to a .md or .json file")
	return cmd
}

// saveRoutine exports the visible conversation and reports where it went.
func saveRoutine(w io.Writer, a *App, path string) error {
	r := export.New(a.Selection.Snapshot(), a.Conversation.Visible(), a.Config.Assistant.Name, a.Config.Gateway.Model)
	written, err := export.WriteFile(path, r)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, mutedStyle.Render("Saved to "+written))
	return nil
}

// printTurn writes whatever the conversation would display: the notice when
// one is set, otherwise the latest assistant reply.
func printTurn(w io.Writer, a *App) {
	if n := a.Conversation.Notice(); n != conversation.NoticeNone {
		fmt.Fprintln(w, noticeStyle.Render(string(n)))
		return
	}
	visible := a.Conversation.Visible()
	if len(visible) == 0 {
		return
	}
	last := visible[len(visible)-1]
	if last.Role != conversation.RoleAssistant {
		return
	}
	fmt.Fprintln(w, labelStyle.Render(a.Config.Assistant.Name+":"))
	fmt.Fprintln(w, strings.TrimRight(renderReply(w, last.Content), "\n"))
}

// =============================================================================
// CHAT REPL
// =============================================================================

const (
	chatPrompt      = "you> "
	chatHistoryFile = "chat_history"
)

// lineReader is the part of liner the REPL needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
	Close() error
}

// historyLiner wraps liner with a history file under the config directory.
type historyLiner struct {
	line *liner.State
	path string
}

func newHistoryLiner() *historyLiner {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	h := &historyLiner{line: line, path: filepath.Join(dir, chatHistoryFile)}
	if f, err := os.Open(h.path); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	return h
}

func (h *historyLiner) Prompt(prompt string) (string, error) {
	input, err := h.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		h.line.AppendHistory(input)
	}
	return input, nil
}

func (h *historyLiner) Close() error {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(h.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			_, _ = h.line.WriteHistory(f)
			f.Close()
		}
	}
	return h.line.Close()
}

// scanReader reads lines from a non-terminal input such as a pipe.
type scanReader struct {
	out     io.Writer
	scanner *bufio.Scanner
}

func (s *scanReader) Prompt(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.scanner.Text(), nil
}

func (s *scanReader) Close() error { return nil }

func newChatCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant line by line",
		Long: `chat opens a line-oriented conversation with the assistant.

  /generate   build a routine from the current selection (starts over)
  /selected   show the selection
  /save [f]   write the conversation to a .md or .json file
  /quit       leave`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.App()
			if err != nil {
				return err
			}
			var in lineReader
			if cmd.InOrStdin() == os.Stdin && IsTTY() {
				in = newHistoryLiner()
			} else {
				in = &scanReader{out: cmd.OutOrStdout(), scanner: bufio.NewScanner(cmd.InOrStdin())}
			}
			defer in.Close()
			return runChat(cmd, a, in)
		},
	}
}

func runChat(cmd *cobra.Command, a *App, in lineReader) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()
	fmt.Fprintln(out, titleStyle.Render("Chat with "+a.Config.Assistant.Name)+" "+mutedStyle.Render("(/generate, /selected, /save, /quit)"))

	for {
		input, err := in.Prompt(chatPrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}
		input = strings.TrimSpace(input)

		switch input {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/selected":
			printSelection(out, a.Selection.Snapshot())
			continue
		case "/generate":
			err = a.Conversation.GenerateRoutine(ctx, a.Gateway, a.Selection.Snapshot())
		default:
			if path, ok := strings.CutPrefix(input, "/save"); ok && (path == "" || path[0] == ' ') {
				if err := saveRoutine(out, a, strings.TrimSpace(path)); err != nil {
					DisplayError(out, err)
				}
				continue
			}
			err = a.Conversation.SubmitMessage(ctx, a.Gateway, input)
		}
		if err != nil {
			a.Log.Debug("chat turn failed", zap.Error(err))
		}
		printTurn(out, a)
	}
}
