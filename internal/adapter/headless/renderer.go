package headless

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	svg "github.com/ajstarks/svgo"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"

	"github.com/couchcryptid/worksite-map/internal/geo"
	"github.com/couchcryptid/worksite-map/internal/overlay"
	"github.com/couchcryptid/worksite-map/internal/style"
)

// cullMargin keeps markers whose texture overlaps the viewport edge.
const cullMargin = style.Size

// RendererOptions configures the SVG frame renderer.
type RendererOptions struct {
	// DoubleBuffering renders into a back buffer and swaps, so readers never
	// wait on a frame in progress.
	DoubleBuffering bool
	// TileURL is a basemap tile template with {z}, {x} and {y}
	// placeholders. Empty draws no basemap.
	TileURL  string
	Legends  bool
	Textures *style.TextureCache
}

// Renderer implements overlay.Renderer by writing SVG frames.
type Renderer struct {
	m    *Map
	opts RendererOptions

	mu     sync.RWMutex
	front  *bytes.Buffer
	back   *bytes.Buffer
	frames int
}

var _ overlay.Renderer = (*Renderer)(nil)

// NewRenderer creates a renderer for the given host.
func NewRenderer(m *Map, opts RendererOptions) *Renderer {
	if opts.Textures == nil {
		opts.Textures = style.NewTextureCache(256)
	}
	return &Renderer{
		m:     m,
		opts:  opts,
		front: new(bytes.Buffer),
		back:  new(bytes.Buffer),
	}
}

// Render draws the sprites at the host's current view. It runs on the
// host's event loop.
func (r *Renderer) Render(sprites []*overlay.Sprite) error {
	if !r.opts.DoubleBuffering {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.front.Reset()
		if err := r.write(r.front, sprites); err != nil {
			return err
		}
		r.frames++
		return nil
	}

	r.back.Reset()
	if err := r.write(r.back, sprites); err != nil {
		return err
	}
	r.mu.Lock()
	r.front, r.back = r.back, r.front
	r.frames++
	r.mu.Unlock()
	return nil
}

// Frame returns a copy of the last completed frame.
func (r *Renderer) Frame() []byte {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return bytes.Clone(r.front.Bytes())
}

// Frames reports how many frames have been rendered.
func (r *Renderer) Frames() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frames
}

func (r *Renderer) write(w io.Writer, sprites []*overlay.Sprite) error {
	m := r.m
	canvas := svg.New(w)
	canvas.Start(m.width, m.height)

	if r.opts.TileURL != "" {
		r.writeTiles(canvas)
	}

	visible := make([]*overlay.Sprite, 0, len(sprites))
	screen := make([]orb.Point, 0, len(sprites))
	for _, sp := range sprites {
		if !sp.HasTexture {
			continue
		}
		p := m.LayerToScreen(sp.Position)
		if p[0] < -cullMargin || p[1] < -cullMargin ||
			p[0] > float64(m.width+cullMargin) || p[1] > float64(m.height+cullMargin) {
			continue
		}
		visible = append(visible, sp)
		screen = append(screen, p)
	}

	canvas.Def()
	seen := make(map[string]bool)
	for _, sp := range visible {
		key := sp.Template.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		if _, err := io.WriteString(canvas.Writer, r.opts.Textures.Symbol(sp.Template)); err != nil {
			return fmt.Errorf("write marker symbol: %w", err)
		}
	}
	canvas.DefEnd()

	scale := m.Scale(m.zoom)
	canvas.Gid("markers")
	for i, sp := range visible {
		p := screen[i]
		canvas.Use(0, 0, "#"+sp.Template.Key(),
			fmt.Sprintf(`transform="translate(%.2f,%.2f) scale(%.4f)"`, p[0], p[1], sp.Scale*scale),
			fmt.Sprintf(`opacity="%.2f"`, sp.Alpha),
			fmt.Sprintf(`data-worksite="%d"`, sp.Site.ID),
		)
		if r.opts.Legends && sp.Legend != "" {
			canvas.Text(int(math.Round(p[0])), int(math.Round(p[1]))+style.Size/2+4, sp.Legend,
				`text-anchor="middle"`, `font-size="11"`, `fill="#333333"`)
		}
	}
	canvas.Gend()

	canvas.End()
	return nil
}

// writeTiles lays out the basemap tiles covering the viewport.
func (r *Renderer) writeTiles(canvas *svg.SVG) {
	m := r.m
	z := maptile.Zoom(m.zoom)
	b := m.Bounds()
	nw := maptile.At(orb.Point{b.Min.Lon(), b.Max.Lat()}, z)
	se := maptile.At(orb.Point{b.Max.Lon(), b.Min.Lat()}, z)
	origin := m.pixelOrigin()

	canvas.Gid("basemap")
	for y := nw.Y; y <= se.Y; y++ {
		for x := nw.X; x <= se.X; x++ {
			t := maptile.New(x, y, z)
			if !t.Valid() {
				continue
			}
			sx := int(math.Round(float64(x)*geo.TileSize - origin[0]))
			sy := int(math.Round(float64(y)*geo.TileSize - origin[1]))
			canvas.Image(sx, sy, geo.TileSize, geo.TileSize, tileURL(r.opts.TileURL, t))
		}
	}
	canvas.Gend()
}

func tileURL(template string, t maptile.Tile) string {
	return strings.NewReplacer(
		"{z}", fmt.Sprint(t.Z),
		"{x}", fmt.Sprint(t.X),
		"{y}", fmt.Sprint(t.Y),
	).Replace(template)
}
