package crawl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDocumentLink(t *testing.T) {
	assert.True(t, IsDocumentLink("https://example.com/prices.pdf"))
	assert.True(t, IsDocumentLink("https://example.com/files/JULY.PDF"))
	assert.False(t, IsDocumentLink("https://example.com/prices.html"))
	assert.False(t, IsDocumentLink("https://example.com/prices.xlsx"), "spreadsheets are outputs, not inputs")
	assert.False(t, IsDocumentLink("https://example.com/"))
}

func TestIsSameDomain(t *testing.T) {
	assert.True(t, IsSameDomain("https://example.com/a", "example.com"))
	assert.False(t, IsSameDomain("https://cdn.example.com/a", "example.com"))
	assert.False(t, IsSameDomain("https://other.com/a", "example.com"))
}

func TestIsStaticAsset(t *testing.T) {
	assert.True(t, IsStaticAsset("https://example.com/logo.png"))
	assert.True(t, IsStaticAsset("https://example.com/app.js"))
	assert.False(t, IsStaticAsset("https://example.com/page"))
	assert.False(t, IsStaticAsset("https://example.com/prices.pdf"))
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://example.com/a", NormalizeURL("https://example.com/a/"))
	assert.Equal(t, "https://example.com/a", NormalizeURL("https://example.com/a#section"))
	assert.Equal(t, "https://example.com/a?p=1", NormalizeURL("https://example.com/a?p=1"))
}

func TestFrontierDedupAndOrder(t *testing.T) {
	f := NewFrontier()
	f.Push("a")
	f.Push("b")
	f.Push("a") // duplicate, even after popping
	u, ok := f.Pop()
	assert.True(t, ok)
	assert.Equal(t, "a", u)
	f.Push("a")
	u, ok = f.Pop()
	assert.True(t, ok)
	assert.Equal(t, "b", u)
	_, ok = f.Pop()
	assert.False(t, ok)
	assert.Equal(t, 2, f.Visited())
}

func TestLinkSetInsertionOrder(t *testing.T) {
	s := NewLinkSet()
	s.Add("x")
	s.Add("y")
	s.Add("x")
	assert.Equal(t, []string{"x", "y"}, s.All())
}
