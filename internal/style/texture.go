package style

import (
	"bytes"

	svg "github.com/ajstarks/svgo"

	"github.com/couchcryptid/worksite-map/internal/lru"
)

// TextureCache memoizes the serialized <g> symbol of each template so a frame
// with thousands of markers serializes every distinct template once.
type TextureCache struct {
	cache *lru.Cache[string, string]
}

// NewTextureCache creates a cache holding at most size symbols.
func NewTextureCache(size int) *TextureCache {
	return &TextureCache{cache: lru.New[string, string](size)}
}

// Symbol returns the template as a group whose id is the template key,
// suitable for a <defs> block and referenced with <use href="#key">.
func (c *TextureCache) Symbol(t Template) string {
	key := t.Key()
	if s, ok := c.cache.Get(key); ok {
		return s
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Gid(key)
	t.Draw(canvas)
	canvas.Gend()

	s := buf.String()
	c.cache.Put(key, s)
	return s
}

// Len reports how many symbols are cached.
func (c *TextureCache) Len() int {
	return c.cache.Len()
}
