package storage

import "testing"

func newTestDocumentStore(t *testing.T) *DocumentStore {
	t.Helper()
	ds, err := NewDocumentStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open document store: %v", err)
	}
	t.Cleanup(func() { ds.Close() })
	return ds
}

func TestDocumentAddGet(t *testing.T) {
	ds := newTestDocumentStore(t)

	doc, err := ds.Add("Runbook", "restart the service with systemctl")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if doc.ID == 0 {
		t.Error("no ID assigned")
	}

	got, err := ds.Get(doc.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil || got.Title != "Runbook" || got.Content != "restart the service with systemctl" {
		t.Errorf("got = %+v", got)
	}
}

func TestDocumentGetMissing(t *testing.T) {
	ds := newTestDocumentStore(t)

	got, err := ds.Get(999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("got = %+v, want nil for missing document", got)
	}
}

func TestDocumentUpdate(t *testing.T) {
	ds := newTestDocumentStore(t)

	doc, err := ds.Add("Old title", "old content")
	if err != nil {
		t.Fatal(err)
	}

	doc.Title = "New title"
	doc.Content = "new content"
	if err := ds.Update(*doc); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := ds.Get(doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "New title" || got.Content != "new content" {
		t.Errorf("got = %+v", got)
	}

	if err := ds.Update(Document{ID: 12345, Title: "x", Content: "y"}); err == nil {
		t.Error("expected error updating a missing document")
	}
}

func TestDocumentDeleteAndCount(t *testing.T) {
	ds := newTestDocumentStore(t)

	a, _ := ds.Add("A", "alpha")
	if _, err := ds.Add("B", "beta"); err != nil {
		t.Fatal(err)
	}

	if n, err := ds.Count(); err != nil || n != 2 {
		t.Fatalf("count = %d (%v), want 2", n, err)
	}

	if err := ds.Delete(a.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if n, _ := ds.Count(); n != 1 {
		t.Errorf("count after delete = %d, want 1", n)
	}
}

func TestDocumentSearch(t *testing.T) {
	ds := newTestDocumentStore(t)

	if _, err := ds.Add("Deploy guide", "how to deploy to production"); err != nil {
		t.Fatal(err)
	}
	if _, err := ds.Add("Recipes", "pasta with tomatoes"); err != nil {
		t.Fatal(err)
	}

	docs, err := ds.Search("deploy")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(docs) != 1 || docs[0].Title != "Deploy guide" {
		t.Errorf("search result = %+v", docs)
	}

	docs, err = ds.Search("nomatch")
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 0 {
		t.Errorf("unexpected matches: %+v", docs)
	}
}

func TestDocumentList(t *testing.T) {
	ds := newTestDocumentStore(t)

	if _, err := ds.Add("First", "one"); err != nil {
		t.Fatal(err)
	}
	if _, err := ds.Add("Second", "two"); err != nil {
		t.Fatal(err)
	}

	docs, err := ds.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("listed %d documents, want 2", len(docs))
	}
}
