// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the headless client runtime.
//
// It walks the login state machine with terminal prompts, performs the
// first sync (asking before an empty server snapshot wipes local data) and
// then keeps the vault in sync through background workers until the
// process is stopped.
package client
