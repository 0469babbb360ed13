package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/zonograph/internal/additional"
	"github.com/MeKo-Tech/zonograph/internal/countryfinder"
	"github.com/MeKo-Tech/zonograph/internal/hierarchy"
	"github.com/MeKo-Tech/zonograph/internal/osm"
	"github.com/MeKo-Tech/zonograph/internal/typer"
	"github.com/MeKo-Tech/zonograph/internal/worker"
	"github.com/MeKo-Tech/zonograph/internal/zone"
)

// Options configures a build.
type Options struct {
	Input        string // OSM PBF path
	LibpostalDir string // per-country rule files
	CountryCode  string // forced country when the extract has none
	DisableGeom  bool
	Workers      int  // 0 means platform parallelism
	ShowProgress bool // display a progress bar during the parallel stages
}

// Build runs the whole pipeline over the extract and returns the zone
// catalog. The PBF is opened once, consumed for ingestion, and
// re-scanned for the additional-city pass.
func Build(opts Options, logger *slog.Logger) (*Cosmogony, error) {
	if logger == nil {
		logger = slog.Default()
	}

	src, err := osm.Open(opts.Input)
	if err != nil {
		return nil, err
	}
	defer src.Close() // nolint:errcheck

	zone.ResetGeometryFailures()
	stats := NewStats()

	zones, err := osm.IngestZones(src, !opts.DisableGeom, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ingest zones: %w", err)
	}

	inclusionProgress := worker.NewProgress(len(zones), opts.ShowProgress)
	inclusions := hierarchy.FindInclusions(zones, opts.Workers, inclusionProgress.Callback(), logger)
	inclusionProgress.Done()

	if err := typeZones(zones, inclusions, &stats, opts, logger); err != nil {
		return nil, err
	}

	hierarchy.BuildHierarchy(zones, inclusions, logger)

	if !opts.DisableGeom {
		cities, err := additional.ComputeAdditionalCities(zones, src, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to compute additional cities: %w", err)
		}
		zones = append(zones, cities...)
	}

	computeLabels(zones, logger)

	zones = pruneUntyped(zones, logger)

	stats.GeometryFailures = int(zone.GeometryFailures())
	stats.Compute(zones)

	return &Cosmogony{
		Zones: zones,
		Meta: Metadata{
			OSMFilename: filepath.Base(opts.Input),
			Stats:       stats,
		},
	}, nil
}

// typeZones resolves each zone's country and type. The map runs in
// parallel over the zone vector; workers only read zones and write
// their own slot of the out-of-line result vector. Assignment back
// into the zones happens sequentially afterwards, in zone-id order.
func typeZones(zones []zone.Zone, inclusions [][]zone.Index, stats *Stats, opts Options, logger *slog.Logger) error {
	logger.Info("reading type rules", "dir", opts.LibpostalDir)
	zoneTyper, err := typer.New(opts.LibpostalDir)
	if err != nil {
		return fmt.Errorf("failed to load type rules: %w", err)
	}
	if opts.CountryCode != "" && !zoneTyper.HasCountry(opts.CountryCode) {
		return fmt.Errorf("no rules for forced country code %q", opts.CountryCode)
	}

	logger.Info("indexing countries")
	finder := countryfinder.New(zones, zoneTyper)
	if opts.CountryCode == "" && finder.IsEmpty() {
		return errors.New("no country code provided and no country detected in the extract")
	}

	logger.Info("typing zones")
	type result struct {
		country string
		zt      zone.ZoneType
		err     error
	}
	results := make([]result, len(zones))

	progress := worker.NewProgress(len(zones), opts.ShowProgress)
	pool := worker.New(worker.Config{Workers: opts.Workers, OnProgress: progress.Callback()})
	pool.RunIndexed(context.Background(), len(zones), func(i int) error {
		z := &zones[i]
		country := strings.ToUpper(opts.CountryCode)
		if country == "" {
			country = finder.CountryOf(z, inclusions[i], zones)
		}
		if country == "" {
			results[i] = result{}
			return nil
		}
		zt, err := zoneTyper.TypeOf(z, country, inclusions[i], zones)
		results[i] = result{country: country, zt: zt, err: err}
		return nil
	})
	progress.Done()

	for i := range zones {
		res := results[i]
		switch {
		case res.country == "":
			logger.Info("no country found for zone, skipping", "osm_id", zones[i].OSMID, "name", zones[i].Name)
			stats.ZoneWithoutCountry++
		case res.err == nil:
			zones[i].Type = res.zt
		default:
			var invalid *typer.InvalidCountryError
			var unknown *typer.UnknownLevelError
			switch {
			case errors.As(res.err, &invalid):
				logger.Info("no rules for country", "country", invalid.Country)
				stats.CountUnknownCountryRules(invalid.Country)
			case errors.As(res.err, &unknown):
				logger.Debug("unhandled admin_level", "osm_id", zones[i].OSMID, "country", unknown.Country)
				stats.CountUnhandledLevel(unknown.Country, unknown.Level)
			default:
				return fmt.Errorf("failed to type zone %s: %w", zones[i].OSMID, res.err)
			}
		}
	}
	return nil
}

// computeLabels fills in every zone's label, in zone-id order. The
// split view hands each iteration exclusive access to one zone and
// read access to the rest.
func computeLabels(zones []zone.Zone, logger *slog.Logger) {
	logger.Info("computing zone labels", "zones", len(zones))
	for i := range zones {
		view, z := zone.Split(zones, i)
		z.ComputeLabel(view)
	}
}

// pruneUntyped drops zones that never got a type. NonAdministrative is
// a type and survives. Zone indices are invalid afterwards.
func pruneUntyped(zones []zone.Zone, logger *slog.Logger) []zone.Zone {
	kept := zones[:0]
	for i := range zones {
		if zones[i].Type != zone.TypeNone {
			kept = append(kept, zones[i])
		}
	}
	logger.Info("untagged zones pruned", "removed", len(zones)-len(kept), "kept", len(kept))
	return kept
}
