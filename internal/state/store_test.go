package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/brokerdesk/internal/brokerapi"
)

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	var s Store

	items := []brokerapi.Record{{"id": float64(1), "name": "Ayala Land"}, {"id": float64(2)}}

	before := time.Now()
	s.Update("developers", items, nil)

	snap := s.Snapshot("developers")
	if !snap.Loaded || snap.Generation != 1 {
		t.Fatalf("snapshot = %#v, want loaded generation 1", snap)
	}
	if len(snap.Items) != 2 || snap.Items[0].ID() != "1" {
		t.Fatalf("snapshot items = %#v, want 2 items", snap.Items)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Items[0]["name"] = "changed"
	items[1]["id"] = float64(99)
	snap2 := s.Snapshot("developers")
	if snap2.Items[0].String("name") != "Ayala Land" || snap2.Items[1].ID() != "2" {
		t.Fatalf("Snapshot should clone items; got %#v", snap2.Items)
	}
}

func TestStore_ScreensAreIndependent(t *testing.T) {
	var s Store
	s.Update("developers", []brokerapi.Record{{"id": "a"}}, nil)
	s.Update("properties", nil, errors.New("boom"))

	if got := s.Snapshot("developers"); got.LastError != nil || len(got.Items) != 1 {
		t.Fatalf("developers snapshot = %#v", got)
	}
	if got := s.Snapshot("properties"); got.Loaded || got.LastError == nil {
		t.Fatalf("properties snapshot = %#v, want error without data", got)
	}
	if got := s.Snapshot("unknown"); got.Loaded || got.Items != nil {
		t.Fatalf("unknown snapshot = %#v, want zero", got)
	}
	if got := s.Screens(); !reflect.DeepEqual(got, []string{"developers", "properties"}) {
		t.Fatalf("Screens = %v", got)
	}
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	var s Store

	s.Update("properties", []brokerapi.Record{{"id": "1"}}, nil)
	prev := s.Snapshot("properties")

	before := time.Now()
	origErr := errors.New("boom")
	s.Update("properties", nil, origErr)

	snap := s.Snapshot("properties")
	if len(snap.Items) != 1 || snap.Items[0].ID() != "1" {
		t.Fatalf("items changed on error: got %#v want %#v", snap.Items, prev.Items)
	}
	if snap.Generation != prev.Generation {
		t.Fatalf("Generation = %d, want unchanged %d", snap.Generation, prev.Generation)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if !errors.Is(snap.LastError, origErr) {
		t.Fatalf("LastError should wrap the original error")
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	snap := s.Snapshot("sales")
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("fresh snapshot = %#v, want online", snap)
	}

	s.Update("sales", nil, errors.New("fail 1"))
	if snap = s.Snapshot("sales"); snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("after 1 failure = %#v, want online", snap)
	}

	s.Update("sales", nil, errors.New("fail 2"))
	if snap = s.Snapshot("sales"); snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("after 2 failures = %#v, want offline", snap)
	}

	s.Update("sales", []brokerapi.Record{}, nil)
	if snap = s.Snapshot("sales"); snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("after success = %#v, want online", snap)
	}
}

func TestStore_Reset(t *testing.T) {
	var s Store
	s.Update("developers", []brokerapi.Record{{"id": "a"}}, nil)
	s.Reset()
	if snap := s.Snapshot("developers"); snap.Loaded {
		t.Fatalf("snapshot after Reset = %#v, want zero", snap)
	}
	if len(s.Screens()) != 0 {
		t.Fatalf("Screens after Reset = %v", s.Screens())
	}
}
