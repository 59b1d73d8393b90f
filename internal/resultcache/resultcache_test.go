package resultcache

import (
	"errors"
	"testing"

	"github.com/spacedb/spacedb/pkg/geom"
)

func obj(v uint64) geom.SpaceSetObject {
	return geom.SpaceSetObject{Position: geom.PositionFromInts(v), Value: geom.NewCoordinate(v)}
}

func TestGetCachesLoaderResult(t *testing.T) {
	c := New(100)
	calls := 0
	loader := func() ([]geom.SpaceSetObject, error) {
		calls++
		return []geom.SpaceSetObject{obj(1)}, nil
	}

	if _, err := c.Get("k", loader); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := c.Get("k", loader); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}
}

func TestGetPropagatesLoaderError(t *testing.T) {
	c := New(100)
	wantErr := errors.New("boom")
	_, err := c.Get("k", func() ([]geom.SpaceSetObject, error) { return nil, wantErr })
	if err == nil {
		t.Fatal("expected an error from Get")
	}
}

func TestEvictsLeastRecentlyUsedWhenOverCapacity(t *testing.T) {
	c := New(2)
	if err := c.Add("a", []geom.SpaceSetObject{obj(1), obj(2)}); err != nil {
		t.Fatalf("Add a: %v", err)
	}
	if err := c.Add("b", []geom.SpaceSetObject{obj(3), obj(4)}); err != nil {
		t.Fatalf("Add b: %v", err)
	}

	if stats := c.Stats(); stats.EntryCount != 1 {
		t.Errorf("EntryCount = %d, want 1 after eviction", stats.EntryCount)
	}
}

func TestRemoveAndClear(t *testing.T) {
	c := New(0)
	_ = c.Add("a", []geom.SpaceSetObject{obj(1)})
	c.Remove("a")
	if stats := c.Stats(); stats.EntryCount != 0 {
		t.Errorf("EntryCount after Remove = %d, want 0", stats.EntryCount)
	}

	_ = c.Add("b", []geom.SpaceSetObject{obj(2)})
	c.Clear()
	if stats := c.Stats(); stats.EntryCount != 0 {
		t.Errorf("EntryCount after Clear = %d, want 0", stats.EntryCount)
	}
}
