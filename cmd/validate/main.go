// Command validate performs data integrity checks on a worksite snapshot,
// read from a JSON fixture or from the worksite store. It verifies
// coordinates, identity, work type statuses, style coverage, and that every
// marker is reachable through the spatial hit index.
//
// Usage:
//
//	go run ./cmd/validate -json data/mock/worksites.json
//	go run ./cmd/validate -driver sqlite -dsn worksites.db -zoom 16
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/paulmach/orb"

	"github.com/couchcryptid/worksite-map/internal/adapter/headless"
	"github.com/couchcryptid/worksite-map/internal/domain"
	"github.com/couchcryptid/worksite-map/internal/geo"
	"github.com/couchcryptid/worksite-map/internal/overlay"
	"github.com/couchcryptid/worksite-map/internal/spatial"
	"github.com/couchcryptid/worksite-map/internal/store"
	"github.com/couchcryptid/worksite-map/internal/style"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	jsonPath := flag.String("json", "", "path to a worksite JSON fixture")
	driver := flag.String("driver", "sqlite", "store driver when reading from a store")
	dsn := flag.String("dsn", "", "store DSN when reading from a store")
	zoom := flag.Int("zoom", overlay.DefaultInteractiveZoom+4, "zoom level for the hit index check")
	flag.Parse()

	if (*jsonPath == "") == (*dsn == "") {
		flag.Usage()
		os.Exit(1)
	}

	sites, source, err := load(*jsonPath, *driver, *dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	if code := run(sites, source, *zoom); code != 0 {
		os.Exit(code)
	}
}

func load(jsonPath, driver, dsn string) ([]domain.Worksite, string, error) {
	if jsonPath != "" {
		data, err := os.ReadFile(jsonPath)
		if err != nil {
			return nil, "", fmt.Errorf("load JSON: %w", err)
		}
		var sites []domain.Worksite
		if err := json.Unmarshal(data, &sites); err != nil {
			return nil, "", fmt.Errorf("decode JSON: %w", err)
		}
		return sites, jsonPath, nil
	}

	st, err := store.Open(driver, dsn, slog.New(slog.DiscardHandler))
	if err != nil {
		return nil, "", err
	}
	defer st.Close()
	sites, err := st.Worksites(context.Background())
	if err != nil {
		return nil, "", err
	}
	return sites, driver + " store", nil
}

func run(sites []domain.Worksite, source string, zoom int) int {
	fmt.Println("=== Worksite Integrity Validation ===")
	fmt.Printf("Source: %s (%d worksites)\n\n", source, len(sites))

	resolver := style.NewResolver()
	phases := []*phase{
		validateCoordinates(sites),
		validateIdentity(sites),
		validateWorkTypes(sites),
		validateStyles(sites, resolver),
		validateHitIndex(sites, zoom),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phases ──

func validateCoordinates(sites []domain.Worksite) *phase {
	p := &phase{name: "Coordinates in range"}
	for _, s := range sites {
		lat, lon := s.Location.Lat, s.Location.Lon
		switch {
		case math.IsNaN(lat) || math.IsNaN(lon):
			p.errorf("worksite %d: NaN coordinate", s.ID)
		case lat < -90 || lat > 90 || lon < -180 || lon > 180:
			p.errorf("worksite %d: %.6f,%.6f outside WGS-84 range", s.ID, lat, lon)
		case math.Abs(lat) > headless.MaxLatitude:
			p.errorf("worksite %d: latitude %.6f beyond the Web Mercator limit", s.ID, lat)
		case lat == 0 && lon == 0:
			p.errorf("worksite %d: null island coordinate", s.ID)
		}
	}
	return p
}

func validateIdentity(sites []domain.Worksite) *phase {
	p := &phase{name: "Unique worksite IDs"}
	seen := make(map[int64]bool, len(sites))
	for i, s := range sites {
		if s.ID <= 0 {
			p.errorf("record %d: non-positive ID %d", i, s.ID)
		}
		if seen[s.ID] {
			p.errorf("duplicate worksite ID %d", s.ID)
		}
		seen[s.ID] = true
	}
	return p
}

func validateWorkTypes(sites []domain.Worksite) *phase {
	p := &phase{name: "Work types and statuses"}
	known := make(map[domain.Status]bool, len(domain.Statuses))
	for _, st := range domain.Statuses {
		known[st] = true
	}

	for _, s := range sites {
		if len(s.WorkTypes) == 0 {
			p.errorf("worksite %d: no work types", s.ID)
			continue
		}
		for _, wt := range s.WorkTypes {
			if strings.TrimSpace(wt.WorkType) == "" {
				p.errorf("worksite %d: empty work type name", s.ID)
			}
			if !known[wt.Status] {
				p.errorf("worksite %d: %s has unknown status %q", s.ID, wt.WorkType, wt.Status)
			}
		}
	}
	return p
}

func validateStyles(sites []domain.Worksite, resolver *style.Resolver) *phase {
	p := &phase{name: "Marker styles resolve"}
	for _, s := range sites {
		for _, wt := range s.WorkTypes {
			if _, ok := resolver.Shapes[wt.WorkType]; !ok {
				p.errorf("worksite %d: work type %q has no shape (drawn as %s)", s.ID, wt.WorkType, style.ShapeUnknown)
			}
			first, ok := resolver.TemplateFor(wt, s.MultiType())
			if !ok {
				p.errorf("worksite %d: no colours for style key %s", s.ID, style.Key(wt))
				continue
			}
			if again, _ := resolver.TemplateFor(wt, s.MultiType()); again != first {
				p.errorf("worksite %d: template for %s is not deterministic", s.ID, style.Key(wt))
			}
		}
	}
	return p
}

// marker is the hit target used by the index check.
type marker struct {
	id int64
	p  orb.Point
}

func (m marker) Point() orb.Point   { return m.p }
func (m marker) HitRadius() float64 { return overlay.MarkerRadius }

func validateHitIndex(sites []domain.Worksite, zoom int) *phase {
	p := &phase{name: fmt.Sprintf("Markers hittable at zoom %d", zoom)}

	markers := make([]marker, 0, len(sites))
	for _, s := range sites {
		markers = append(markers, marker{id: s.ID, p: geo.Project(geo.LatLng(s.Location), zoom)})
	}
	idx := spatial.Build(markers, spatial.LevelRadius(zoom, 1))

	overlapping := 0
	for _, m := range markers {
		hit, ok := idx.Query(m.p)
		switch {
		case !ok:
			p.errorf("worksite %d: not found by the hit index", m.id)
		case hit.id != m.id:
			overlapping++
		}
	}
	fmt.Printf("Hit index: %d markers, %d covered by a neighbour at zoom %d\n", idx.Len(), overlapping, zoom)
	return p
}
