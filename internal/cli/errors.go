// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/Evn42/routine-builder/internal/catalog"
	"github.com/Evn42/routine-builder/internal/config"
	"github.com/Evn42/routine-builder/internal/conversation"
	"github.com/Evn42/routine-builder/internal/selection"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitNetworkError = 5
	ExitNotFound     = 7
	ExitStorageError = 9
)

// NotFoundError reports a product name that is not in the catalog.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// UsageError reports bad arguments the flag parser cannot catch.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string { return e.Reason }

// GetExitCode maps an error to a process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usage *UsageError
	if errors.As(err, &usage) {
		return ExitUsageError
	}
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return ExitNotFound
	}
	var cfgErrs config.ValidateErrors
	if errors.As(err, &cfgErrs) {
		return ExitConfigError
	}

	switch {
	case errors.Is(err, catalog.ErrCatalogUnavailable),
		errors.Is(err, conversation.ErrGatewayFailure):
		return ExitNetworkError
	case errors.Is(err, selection.ErrPersist):
		return ExitStorageError
	case errors.Is(err, conversation.ErrEmptySelection),
		errors.Is(err, conversation.ErrEmptyMessage):
		return ExitUsageError
	}
	return ExitGeneralError
}

// DisplayError writes err to w in the CLI's error style.
func DisplayError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, errorStyle.Render("Error:")+" "+err.Error())
}
