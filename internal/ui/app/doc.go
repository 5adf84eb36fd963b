// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the Bubble Tea program for the routine builder.
//
// The screen has three focus zones cycled with Tab:
//
//   - grid: category tabs (left/right) and product cards (up/down, enter
//     toggles)
//   - selection: selected products (x removes, C clears)
//   - input: the chat line (enter sends)
//
// ctrl+g generates a routine from any zone and ctrl+s saves it. Stores are only mutated inside
// Update; catalog loads and gateway calls run as commands and come back as
// messages. A catalog response for a category the user has already left is
// dropped, and a gateway reply is applied only to the turn that asked.
package app
