// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "context"

// Client defines the minimal lifecycle contract for runnable client
// applications.
type Client interface {
	// Run signs in, syncs and blocks until ctx is done.
	Run(ctx context.Context) error
}

// Prompter asks the user for login input.
type Prompter interface {
	// Ask reads one line of visible input.
	Ask(label string) (string, error)
	// AskSecret reads one line without echo when a terminal is attached.
	AskSecret(label string) (string, error)
	// Confirm asks a yes/no question. Anything but y or yes is a no.
	Confirm(label string) (bool, error)
}
