// Package doctest provides integration testing facilities for document stores.
package doctest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ChomusukeBot/Chomusuke/docstore"
)

// Test runs the integration test suite against stores produced by new.
//
// If a store cannot be created without error, new should call t.Fatal.
func Test(ctx context.Context, t *testing.T, new func(context.Context) docstore.Store) {
	t.Run("missing", testMissing(ctx, new(ctx)))
	t.Run("replace", testReplace(ctx, new(ctx)))
	t.Run("delete", testDelete(ctx, new(ctx)))
	t.Run("ids", testIDs(ctx, new(ctx)))
	t.Run("isolated", testIsolated(ctx, new(ctx)))
	t.Run("update", testUpdate(ctx, new(ctx)))
	t.Run("modify", testModify(ctx, new(ctx)))
}

func testMissing(ctx context.Context, s docstore.Store) func(t *testing.T) {
	return func(t *testing.T) {
		c := s.Collection("kessoku")
		b, err := c.Get(ctx, "bocchi")
		if !errors.Is(err, docstore.ErrNotFound) {
			t.Errorf("wrong error for missing document: want ErrNotFound, got %v", err)
		}
		if b != nil {
			t.Errorf("got document for missing id: %q", b)
		}
	}
}

func testReplace(ctx context.Context, s docstore.Store) func(t *testing.T) {
	return func(t *testing.T) {
		c := s.Collection("kessoku")
		if err := c.Put(ctx, "bocchi", []byte(`{"part":"guitar"}`)); err != nil {
			t.Fatalf("couldn't put: %v", err)
		}
		if err := c.Put(ctx, "bocchi", []byte(`{"part":"lead guitar"}`)); err != nil {
			t.Fatalf("couldn't replace: %v", err)
		}
		b, err := c.Get(ctx, "bocchi")
		if err != nil {
			t.Fatalf("couldn't get: %v", err)
		}
		if string(b) != `{"part":"lead guitar"}` {
			t.Errorf("wrong document after replace: got %s", b)
		}
		ids, err := c.IDs(ctx)
		if err != nil {
			t.Fatalf("couldn't list: %v", err)
		}
		if diff := cmp.Diff([]string{"bocchi"}, ids); diff != "" {
			t.Errorf("replace duplicated a document (-want +got):\n%s", diff)
		}
	}
}

func testDelete(ctx context.Context, s docstore.Store) func(t *testing.T) {
	return func(t *testing.T) {
		c := s.Collection("kessoku")
		ok, err := c.Delete(ctx, "ryou")
		if err != nil {
			t.Errorf("couldn't delete missing document: %v", err)
		}
		if ok {
			t.Errorf("deleting missing document reported existence")
		}
		if err := c.Put(ctx, "ryou", []byte(`{}`)); err != nil {
			t.Fatalf("couldn't put: %v", err)
		}
		ok, err = c.Delete(ctx, "ryou")
		if err != nil {
			t.Errorf("couldn't delete: %v", err)
		}
		if !ok {
			t.Errorf("deleting present document reported absence")
		}
		if _, err := c.Get(ctx, "ryou"); !errors.Is(err, docstore.ErrNotFound) {
			t.Errorf("document still present after delete: %v", err)
		}
	}
}

func testIDs(ctx context.Context, s docstore.Store) func(t *testing.T) {
	return func(t *testing.T) {
		c := s.Collection("kessoku")
		for _, id := range []string{"nijika", "bocchi", "ryou", "kita"} {
			if err := c.Put(ctx, id, []byte(`{}`)); err != nil {
				t.Fatalf("couldn't put %s: %v", id, err)
			}
		}
		ids, err := c.IDs(ctx)
		if err != nil {
			t.Fatalf("couldn't list: %v", err)
		}
		want := []string{"bocchi", "kita", "nijika", "ryou"}
		if diff := cmp.Diff(want, ids); diff != "" {
			t.Errorf("wrong ids (-want +got):\n%s", diff)
		}
	}
}

func testIsolated(ctx context.Context, s docstore.Store) func(t *testing.T) {
	return func(t *testing.T) {
		a := s.Collection("kessoku")
		b := s.Collection("kessoku_band")
		if err := a.Put(ctx, "bocchi", []byte(`{"band":"kessoku"}`)); err != nil {
			t.Fatalf("couldn't put: %v", err)
		}
		if _, err := b.Get(ctx, "bocchi"); !errors.Is(err, docstore.ErrNotFound) {
			t.Errorf("document leaked between collections: %v", err)
		}
		ids, err := b.IDs(ctx)
		if err != nil {
			t.Fatalf("couldn't list: %v", err)
		}
		if len(ids) != 0 {
			t.Errorf("ids leaked between collections: %q", ids)
		}
	}
}

func testUpdate(ctx context.Context, s docstore.Store) func(t *testing.T) {
	return func(t *testing.T) {
		c := s.Collection("sickhack")
		err := c.Update(ctx, "kikuri", func(old []byte) ([]byte, error) {
			if old != nil {
				t.Errorf("missing document passed as %q", old)
			}
			return []byte(`{"n":1}`), nil
		})
		if err != nil {
			t.Fatalf("couldn't insert through update: %v", err)
		}
		err = c.Update(ctx, "kikuri", func(old []byte) ([]byte, error) {
			if string(old) != `{"n":1}` {
				t.Errorf("wrong old document: %q", old)
			}
			return []byte(`{"n":2}`), nil
		})
		if err != nil {
			t.Fatalf("couldn't update: %v", err)
		}
		abort := errors.New("abort")
		err = c.Update(ctx, "kikuri", func(old []byte) ([]byte, error) {
			return nil, abort
		})
		if !errors.Is(err, abort) {
			t.Errorf("wrong error from aborted update: %v", err)
		}
		b, err := c.Get(ctx, "kikuri")
		if err != nil {
			t.Fatalf("couldn't get: %v", err)
		}
		if string(b) != `{"n":2}` {
			t.Errorf("aborted update changed document to %s", b)
		}
	}
}

func testModify(ctx context.Context, s docstore.Store) func(t *testing.T) {
	type doc struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	return func(t *testing.T) {
		c := s.Collection("starry")
		for range 3 {
			err := docstore.Modify(ctx, c, "seika", func(v *doc, exists bool) error {
				if !exists {
					v.Name = "seika"
				}
				v.Count++
				return nil
			})
			if err != nil {
				t.Fatalf("couldn't modify: %v", err)
			}
		}
		got, err := docstore.Find[doc](ctx, c, "seika")
		if err != nil {
			t.Fatalf("couldn't find: %v", err)
		}
		if diff := cmp.Diff(doc{Name: "seika", Count: 3}, got); diff != "" {
			t.Errorf("wrong document (-want +got):\n%s", diff)
		}
		if err := docstore.Save(ctx, c, "pa", doc{Name: "pa"}); err != nil {
			t.Fatalf("couldn't save: %v", err)
		}
		got, err = docstore.Find[doc](ctx, c, "pa")
		if err != nil {
			t.Fatalf("couldn't find saved: %v", err)
		}
		if diff := cmp.Diff(doc{Name: "pa"}, got); diff != "" {
			t.Errorf("wrong saved document (-want +got):\n%s", diff)
		}
	}
}
