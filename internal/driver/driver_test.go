package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"rivet/internal/diag"
	"rivet/internal/project"
	"rivet/internal/token"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const cleanSource = `
fn main() {
	let a = 1;
	let b = a + 1;
}
`

const movedSource = `
fn main() {
	let s = "hello";
	let t = s;
	let u = s;
}
`

func TestCheckCleanFile(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.rv", cleanSource)

	res, err := Check(path, 100)
	if err != nil {
		t.Fatal(err)
	}
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", res.Bag.Items())
	}
	if len(res.Timing.Phases) == 0 {
		t.Fatal("expected timing phases")
	}
}

func TestCheckReportsOwnershipError(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.rv", movedSource)

	res, err := Check(path, 100)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, d := range res.Bag.Items() {
		if d.Code == diag.OwnUseAfterMove {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected OwnUseAfterMove, got %v", res.Bag.Items())
	}
}

func TestCheckSkipsVerifyOnParseError(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "bad.rv", "fn broken( {")

	res, err := Check(path, 100)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Bag.HasErrors() {
		t.Fatal("expected parse diagnostics")
	}
	for _, d := range res.Bag.Items() {
		if d.Code >= 3000 {
			t.Fatalf("ownership diagnostics should not run on broken input: %v", d)
		}
	}
}

func TestTokenizeProducesEOF(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.rv", "let x = 1;")

	res, err := Tokenize(path, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Tokens) == 0 {
		t.Fatal("no tokens")
	}
	last := res.Tokens[len(res.Tokens)-1]
	if last.Kind != token.EOF {
		t.Fatalf("last token = %v", last)
	}
}

func TestCheckDirWalksTree(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "a.rv", cleanSource)
	sub := filepath.Join(dir, "sub")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeSource(t, sub, "b.rv", movedSource)
	writeSource(t, dir, "ignored.txt", "not a source file")

	_, results, err := CheckDir(context.Background(), dir, CheckDirOptions{MaxDiagnostics: 100})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	// отсортировано по пути: a.rv, затем sub/b.rv
	if results[0].Bag.Len() != 0 {
		t.Fatalf("a.rv should be clean: %v", results[0].Bag.Items())
	}
	if !results[1].Bag.HasErrors() {
		t.Fatal("sub/b.rv should have errors")
	}
}

func TestCheckDirUsesCache(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "main.rv", movedSource)

	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	cache, err := OpenDiskCache("rivet-test")
	if err != nil {
		t.Fatal(err)
	}
	opts := CheckDirOptions{MaxDiagnostics: 100, Cache: cache}

	_, first, err := CheckDir(context.Background(), dir, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first[0].FromCache {
		t.Fatal("first run should not hit the cache")
	}

	_, second, err := CheckDir(context.Background(), dir, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second[0].FromCache {
		t.Fatal("second run should hit the cache")
	}
	if second[0].Bag.Len() != first[0].Bag.Len() {
		t.Fatalf("cached diagnostics differ: %d vs %d", second[0].Bag.Len(), first[0].Bag.Len())
	}
	for i, d := range second[0].Bag.Items() {
		orig := first[0].Bag.Items()[i]
		if d.Code != orig.Code || d.Primary.Start != orig.Primary.Start {
			t.Fatalf("cached diagnostic %d differs: %+v vs %+v", i, d, orig)
		}
	}
}

func TestDiskCacheMissOnDifferentKey(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	cache, err := OpenDiskCache("rivet-test")
	if err != nil {
		t.Fatal(err)
	}
	key := project.HashBytes([]byte("content"))
	var out CheckPayload
	hit, err := cache.Get(key, &out)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Fatal("unexpected cache hit")
	}

	payload := &CheckPayload{Schema: diskCacheSchemaVersion, Path: "x.rv", ContentHash: key}
	if err := cache.Put(key, payload); err != nil {
		t.Fatal(err)
	}
	hit, err = cache.Get(key, &out)
	if err != nil || !hit {
		t.Fatalf("hit=%v err=%v", hit, err)
	}
	if out.Path != "x.rv" {
		t.Fatalf("payload path = %q", out.Path)
	}
}

func TestCheckDirEmitsEvents(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "main.rv", cleanSource)

	events := make(chan Event, 16)
	done := make(chan []Event)
	go func() {
		var got []Event
		for ev := range events {
			got = append(got, ev)
		}
		done <- got
	}()

	_, _, err := CheckDir(context.Background(), dir, CheckDirOptions{MaxDiagnostics: 100, Events: events})
	if err != nil {
		t.Fatal(err)
	}
	close(events)
	got := <-done

	sawQueued, sawDone := false, false
	for _, ev := range got {
		if ev.Status == StatusQueued {
			sawQueued = true
		}
		if ev.Status == StatusDone && ev.Stage == StageCheck {
			sawDone = true
		}
	}
	if !sawQueued || !sawDone {
		t.Fatalf("missing lifecycle events: %+v", got)
	}
}
