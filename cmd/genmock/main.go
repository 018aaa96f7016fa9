// Command genmock generates a reproducible set of mock worksites around a
// disaster area and seeds them into the worksite store. It can also write the
// same set as a JSON fixture for tests and the validate command.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -driver sqlite -dsn worksites.db \
//	  -center 29.7604,-95.3698 -radius-km 25 -count 500 \
//	  -out data/mock/worksites.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/worksite-map/internal/domain"
	"github.com/couchcryptid/worksite-map/internal/geo"
	"github.com/couchcryptid/worksite-map/internal/store"
	"github.com/couchcryptid/worksite-map/internal/style"
)

// baseDate anchors UpdatedAt so fixtures are stable across runs.
var baseDate = time.Date(2024, time.October, 1, 12, 0, 0, 0, time.UTC)

const earthRadiusKm = 6371.0

var cities = []string{"", "", "Houston", "Pasadena", "Bellaire", "Humble", "Katy", "Spring"}

var organizations = []int64{3, 7, 12, 21}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	driver := flag.String("driver", "sqlite", "store driver: sqlite or postgres")
	dsn := flag.String("dsn", "", "store DSN; empty skips seeding")
	centerFlag := flag.String("center", "29.7604,-95.3698", "center of the affected area as lat,lon")
	radiusKm := flag.Float64("radius-km", 25, "radius of the affected area in kilometres")
	count := flag.Int("count", 500, "number of worksites to generate")
	seed := flag.Uint64("seed", 1, "random seed")
	out := flag.String("out", "", "optional output path for a JSON fixture")
	flag.Parse()

	if *dsn == "" && *out == "" {
		flag.Usage()
		return fmt.Errorf("nothing to do: set -dsn, -out, or both")
	}
	center, err := parseCenter(*centerFlag)
	if err != nil {
		return err
	}
	if *count <= 0 || *radiusKm <= 0 {
		return fmt.Errorf("count and radius-km must be positive")
	}

	sites := generate(rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15)), center, *radiusKm, *count)
	log.Printf("generated %d worksites around %.4f,%.4f", len(sites), center.Lat, center.Lon)

	if *out != "" {
		if err := writeJSON(*out, sites); err != nil {
			return fmt.Errorf("writing fixture: %w", err)
		}
		log.Printf("wrote fixture: %s", *out)
	}

	if *dsn != "" {
		st, err := store.Open(*driver, *dsn, slog.Default())
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Replace(context.Background(), sites); err != nil {
			return err
		}
		log.Printf("seeded %s store", *driver)
	}

	printStats(sites)
	return nil
}

func parseCenter(s string) (geo.LatLng, error) {
	lat, lon, ok := strings.Cut(s, ",")
	if !ok {
		return geo.LatLng{}, fmt.Errorf("invalid -center %q: expected lat,lon", s)
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return geo.LatLng{}, fmt.Errorf("invalid -center latitude: %w", err)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return geo.LatLng{}, fmt.Errorf("invalid -center longitude: %w", err)
	}
	return geo.LatLng{Lat: la, Lon: lo}, nil
}

func workTypeNames() []string {
	names := make([]string, 0, len(style.DefaultShapes))
	for name := range style.DefaultShapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func generate(rng *rand.Rand, center geo.LatLng, radiusKm float64, count int) []domain.Worksite {
	names := workTypeNames()
	sites := make([]domain.Worksite, 0, count)

	for i := range count {
		loc := scatter(rng, center, radiusKm)
		site := domain.Worksite{
			ID:        int64(1000 + i),
			Location:  domain.Location(loc),
			City:      cities[rng.IntN(len(cities))],
			UpdatedAt: baseDate.Add(-time.Duration(rng.IntN(60*24)) * time.Hour),
		}
		if site.City == "" && rng.IntN(2) == 0 {
			site.Label = fmt.Sprintf("Case W%05d", site.ID)
		}

		n := 1 + rng.IntN(3)
		perm := rng.Perm(len(names))[:n]
		for _, j := range perm {
			wt := domain.WorkType{
				WorkType: names[j],
				Status:   domain.Statuses[rng.IntN(len(domain.Statuses))],
			}
			if rng.IntN(3) == 0 {
				org := organizations[rng.IntN(len(organizations))]
				wt.ClaimedBy = &org
			}
			site.WorkTypes = append(site.WorkTypes, wt)
		}
		sites = append(sites, site)
	}
	return sites
}

// scatter places a point uniformly inside a circle around center.
func scatter(rng *rand.Rand, center geo.LatLng, radiusKm float64) geo.LatLng {
	d := radiusKm * math.Sqrt(rng.Float64()) / earthRadiusKm
	bearing := rng.Float64() * 2 * math.Pi

	lat1 := center.Lat * math.Pi / 180
	lon1 := center.Lon * math.Pi / 180
	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) + math.Cos(lat1)*math.Sin(d)*math.Cos(bearing))
	lon2 := lon1 + math.Atan2(math.Sin(bearing)*math.Sin(d)*math.Cos(lat1), math.Cos(d)-math.Sin(lat1)*math.Sin(lat2))

	lon := math.Mod(lon2*180/math.Pi+540, 360) - 180
	return geo.LatLng{Lat: lat2 * 180 / math.Pi, Lon: lon}
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(sites []domain.Worksite) {
	byType := map[string]int{}
	byKey := map[string]int{}
	multi, claimed := 0, 0
	points := make([]geo.LatLng, 0, len(sites))

	for _, s := range sites {
		points = append(points, geo.LatLng(s.Location))
		if s.MultiType() {
			multi++
		}
		active := domain.ActiveWorkType(s.WorkTypes, domain.Filters{}, nil)
		byType[active.WorkType]++
		byKey[style.Key(active)]++
		if active.Claimed() {
			claimed++
		}
	}

	centroid := geo.AverageGeolocation(points)
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(sites))
	fmt.Printf("Multi-type: %d\n", multi)
	fmt.Printf("Claimed (active type): %d\n", claimed)
	fmt.Printf("Centroid: %.6f,%.6f\n", centroid.Lat, centroid.Lon)

	printCounts("Active work types", byType)
	printCounts("Style keys", byKey)
}

func printCounts(title string, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("\n%s:\n", title)
	for _, k := range keys {
		fmt.Printf("  %-36s %d\n", k, counts[k])
	}
}
