package driver

import (
	"testing"

	"erbfmt/internal/format"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := cacheKey(format.DefaultOptions(), nil, []byte("<p>x</p>"))

	if _, ok, err := cache.Get(key); err != nil || ok {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}
	if err := cache.Put(key, []byte("<p>x</p>\n")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := cache.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get after Put: ok=%v err=%v", ok, err)
	}
	if string(got) != "<p>x</p>\n" {
		t.Fatalf("cached bytes\nwant %q\ngot  %q", "<p>x</p>\n", got)
	}

	stats, err := cache.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Entries != 1 || stats.Bytes == 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if _, ok, _ := cache.Get(key); ok {
		t.Fatal("entry survived DropAll")
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll on empty cache: %v", err)
	}
}

func TestNilDiskCache(t *testing.T) {
	var cache *DiskCache
	key := cacheKey(format.DefaultOptions(), nil, nil)
	if err := cache.Put(key, []byte("x")); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := cache.Get(key); ok || err != nil {
		t.Fatalf("nil cache hit: ok=%v err=%v", ok, err)
	}
	if stats, err := cache.Stats(); err != nil || stats.Entries != 0 {
		t.Fatalf("nil cache stats %+v, %v", stats, err)
	}
}

func TestCacheKeyDependsOnOptionsAndRange(t *testing.T) {
	content := []byte("<div>\n</div>\n")
	base := format.DefaultOptions()
	tabs := base
	tabs.UseTabs = true

	keys := map[Digest]string{}
	add := func(name string, d Digest) {
		t.Helper()
		if prev, ok := keys[d]; ok {
			t.Fatalf("%s collides with %s", name, prev)
		}
		keys[d] = name
	}
	add("default", cacheKey(base, nil, content))
	add("tabs", cacheKey(tabs, nil, content))
	add("range", cacheKey(base, &LineRange{From: 1, To: 1}, content))
	add("other content", cacheKey(base, nil, []byte("<div></div>\n")))

	if cacheKey(base, nil, content) != cacheKey(base, nil, content) {
		t.Fatal("cache key is not deterministic")
	}
}
