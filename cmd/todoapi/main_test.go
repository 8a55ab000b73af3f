package main

import (
	"context"
	"testing"

	"todo-planner/internal/tokenstore"
)

func TestRevocationStoreFallsBackToMemory(t *testing.T) {
	store, closeStore, err := revocationStore(context.Background(), "")
	if err != nil {
		t.Fatalf("revocationStore: %v", err)
	}
	defer closeStore()
	if _, ok := store.(*tokenstore.Memory); !ok {
		t.Errorf("store = %T, want *tokenstore.Memory", store)
	}
}

func TestRevocationStoreReturnsConnectError(t *testing.T) {
	store, closeStore, err := revocationStore(context.Background(), "not a redis url")
	if err == nil {
		closeStore()
		t.Fatal("expected an error for a bad redis url")
	}
	if store != nil || closeStore != nil {
		t.Errorf("store = %v, close set = %v", store, closeStore != nil)
	}
}
