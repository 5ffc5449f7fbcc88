package chart

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/ananyev/adkchat/internal/domain"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestRenderScatter(t *testing.T) {
	t.Parallel()

	payload := domain.GraphPayload{
		XAxis:  "distance",
		YAxis:  "cost",
		Points: []domain.Point{{X: 1, Y: 2}, {X: 3, Y: 4}},
	}

	png, err := Render(payload)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Error("output is not a PNG")
	}
}

func TestRenderSinglePoint(t *testing.T) {
	t.Parallel()

	payload := domain.GraphPayload{
		XAxis:  "x",
		YAxis:  "y",
		Points: []domain.Point{{X: 5, Y: 5}},
	}

	png, err := Render(payload)
	if err != nil {
		t.Fatalf("Render failed for single point: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Error("output is not a PNG")
	}
}

func TestRenderDeterministic(t *testing.T) {
	t.Parallel()

	payload := domain.GraphPayload{
		XAxis:  "distance",
		YAxis:  "cost",
		Points: []domain.Point{{X: 1, Y: 10}, {X: 2, Y: 20}, {X: 3, Y: 15}},
	}

	first, err := Render(payload)
	if err != nil {
		t.Fatalf("first render failed: %v", err)
	}
	second, err := Render(payload)
	if err != nil {
		t.Fatalf("second render failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("identical input must render identical output")
	}
}

func TestRenderEmptyPoints(t *testing.T) {
	t.Parallel()

	_, err := Render(domain.GraphPayload{XAxis: "x", YAxis: "y"})
	var renderErr *RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("expected RenderError, got %v", err)
	}
}

func TestRenderNonFiniteCoordinate(t *testing.T) {
	t.Parallel()

	payload := domain.GraphPayload{
		XAxis:  "x",
		YAxis:  "y",
		Points: []domain.Point{{X: 1, Y: math.NaN()}},
	}
	_, err := Render(payload)
	var renderErr *RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("expected RenderError for NaN, got %v", err)
	}
}

func TestArtifactCachePutGet(t *testing.T) {
	t.Parallel()

	cache := NewArtifactCache(4)
	id := cache.Put([]byte("png-bytes"))

	got, ok := cache.Get(id)
	if !ok {
		t.Fatal("expected artifact to be cached")
	}
	if string(got) != "png-bytes" {
		t.Errorf("artifact corrupted: %q", got)
	}
	if _, ok := cache.Get("missing"); ok {
		t.Error("unexpected hit for unknown id")
	}
}

func TestArtifactCacheEvictsOldest(t *testing.T) {
	t.Parallel()

	cache := NewArtifactCache(2)
	first := cache.Put([]byte("one"))
	second := cache.Put([]byte("two"))
	third := cache.Put([]byte("three"))

	if _, ok := cache.Get(first); ok {
		t.Error("oldest artifact should have been evicted")
	}
	if _, ok := cache.Get(second); !ok {
		t.Error("second artifact should survive")
	}
	if _, ok := cache.Get(third); !ok {
		t.Error("third artifact should survive")
	}
}
