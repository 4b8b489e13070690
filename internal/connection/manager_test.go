package connection

import (
	"testing"
	"time"
)

func TestRegisterAndGet(t *testing.T) {
	m := NewManager(10)

	err := m.Register("conn-1", 1, "east-works", "ph-analyzer-01", nil)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	client, ok := m.Get("conn-1")
	if !ok {
		t.Fatal("Get did not find registered connection")
	}
	if client.SiteSlug != "east-works" {
		t.Errorf("expected site slug east-works, got %s", client.SiteSlug)
	}
	if client.Instrument != "ph-analyzer-01" {
		t.Errorf("expected instrument ph-analyzer-01, got %s", client.Instrument)
	}
	if m.Count() != 1 {
		t.Errorf("expected count 1, got %d", m.Count())
	}
}

func TestRegisterDuplicate(t *testing.T) {
	m := NewManager(10)

	m.Register("conn-1", 1, "east-works", "ph-analyzer-01", nil)
	err := m.Register("conn-1", 1, "east-works", "do-analyzer-02", nil)
	if err == nil {
		t.Error("expected error registering duplicate connection ID")
	}
}

func TestMaxConnections(t *testing.T) {
	m := NewManager(2)

	m.Register("conn-1", 1, "east-works", "a", nil)
	m.Register("conn-2", 1, "east-works", "b", nil)
	err := m.Register("conn-3", 2, "west-works", "c", nil)
	if err != ErrMaxConnectionsReached {
		t.Errorf("expected ErrMaxConnectionsReached, got %v", err)
	}
}

func TestUnregister(t *testing.T) {
	m := NewManager(10)

	m.Register("conn-1", 1, "east-works", "a", nil)
	m.Register("conn-2", 1, "east-works", "b", nil)

	if err := m.Unregister("conn-1"); err != nil {
		t.Fatalf("Unregister failed: %v", err)
	}

	if _, ok := m.Get("conn-1"); ok {
		t.Error("connection still present after Unregister")
	}

	ids := m.GetBySite("east-works")
	if len(ids) != 1 || ids[0] != "conn-2" {
		t.Errorf("expected [conn-2] for east-works, got %v", ids)
	}

	// Removing the last connection for a site clears the site entry
	m.Unregister("conn-2")
	if len(m.GetBySite("east-works")) != 0 {
		t.Error("expected no connections for east-works")
	}

	if err := m.Unregister("conn-9"); err == nil {
		t.Error("expected error unregistering unknown connection")
	}
}

func TestGetInactiveConnections(t *testing.T) {
	m := NewManager(10)

	m.Register("stale", 1, "east-works", "a", nil)
	m.Register("fresh", 2, "west-works", "b", nil)

	time.Sleep(60 * time.Millisecond)
	m.UpdateActivity("fresh")

	inactive := m.GetInactiveConnections(30 * time.Millisecond)
	if len(inactive) != 1 || inactive[0] != "stale" {
		t.Errorf("expected [stale], got %v", inactive)
	}
}

func TestStats(t *testing.T) {
	m := NewManager(50)

	m.Register("conn-1", 1, "east-works", "a", nil)
	m.Register("conn-2", 1, "east-works", "b", nil)
	m.Register("conn-3", 2, "west-works", "c", nil)

	stats := m.Stats()
	if stats.TotalConnections != 3 {
		t.Errorf("expected 3 connections, got %d", stats.TotalConnections)
	}
	if stats.UniqueSites != 2 {
		t.Errorf("expected 2 sites, got %d", stats.UniqueSites)
	}
	if stats.MaxConnections != 50 {
		t.Errorf("expected max 50, got %d", stats.MaxConnections)
	}

	counts := m.CountBySite()
	if counts["east-works"] != 2 || counts["west-works"] != 1 {
		t.Errorf("unexpected per-site counts: %v", counts)
	}
}
