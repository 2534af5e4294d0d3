// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"context"
	"testing"
)

func TestContextKeyString(t *testing.T) {
	key := contextKey("testKey")
	if key.String() != "testKey" {
		t.Errorf("expected 'testKey', got '%s'", key.String())
	}
}

func TestRunIDCtxKey(t *testing.T) {
	if RunIDCtxKey.String() != "runID" {
		t.Errorf("expected 'runID', got '%s'", RunIDCtxKey.String())
	}
}

func TestGetRunIDFromContext_Success(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-42")

	runID, ok := GetRunIDFromContext(ctx)

	if !ok {
		t.Fatal("expected ok=true, got false")
	}
	if runID != "run-42" {
		t.Errorf("expected runID=run-42, got %s", runID)
	}
}

func TestGetRunIDFromContext_Missing(t *testing.T) {
	runID, ok := GetRunIDFromContext(context.Background())

	if ok {
		t.Error("expected ok=false for missing key")
	}
	if runID != "" {
		t.Errorf("expected empty runID, got %s", runID)
	}
}

func TestGetRunIDFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), RunIDCtxKey, 42)

	if _, ok := GetRunIDFromContext(ctx); ok {
		t.Error("expected ok=false for wrong type")
	}
}

func TestGetRunIDFromContext_Empty(t *testing.T) {
	ctx := WithRunID(context.Background(), "")

	if _, ok := GetRunIDFromContext(ctx); ok {
		t.Error("expected ok=false for empty run id")
	}
}

func TestGetRunIDFromContext_DifferentKey(t *testing.T) {
	ctx := context.WithValue(context.Background(), contextKey("other"), "run-1")

	if _, ok := GetRunIDFromContext(ctx); ok {
		t.Error("expected ok=false for different key")
	}
}
