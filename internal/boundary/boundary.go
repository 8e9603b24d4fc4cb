// Package boundary downloads Tertiary Planning Unit boundary data from
// the Hong Kong open-data portals.
package boundary

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hkgeo/station-cli/internal/fetcher"
)

// Source is one census vintage with its ordered candidate URLs. The first
// candidate that yields a parseable, non-empty feature collection wins.
type Source struct {
	Vintage    string
	Candidates []string
}

// DefaultSources lists the known TPU boundary endpoints per vintage.
func DefaultSources() []Source {
	query := "/query?where=1%3D1&outFields=*&f=geojson&outSR=4326&resultRecordCount=10000"
	return []Source{
		{
			Vintage: "2021",
			Candidates: []string{
				"https://www.geodata.gov.hk/gs/api/v1.0.0/collections/TPU_2021/items?f=json&limit=10000",
				"https://services3.arcgis.com/6j1KwZfY2fZrfNMR/arcgis/rest/services/TPU_SB_VC_2021_PlanD/FeatureServer/0" + query,
			},
		},
		{
			Vintage: "2016",
			Candidates: []string{
				"https://services3.arcgis.com/6j1KwZfY2fZrfNMR/arcgis/rest/services/TPU_SB_VC_2016_PlanD_gdb/FeatureServer/0" + query,
			},
		},
		{
			Vintage: "2011",
			Candidates: []string{
				"https://services3.arcgis.com/6j1KwZfY2fZrfNMR/arcgis/rest/services/TPU_SB_VC_2011_PlanD_gdb/FeatureServer/0" + query,
			},
		},
	}
}

// Result reports one vintage's download.
type Result struct {
	Vintage  string
	Path     string
	Features int
	URL      string
}

// Downloader fetches boundary GeoJSON into an output directory.
type Downloader struct {
	fetcher fetcher.Fetcher
	outDir  string
}

// NewDownloader creates a Downloader writing into outDir.
func NewDownloader(f fetcher.Fetcher, outDir string) *Downloader {
	return &Downloader{fetcher: f, outDir: outDir}
}

// DownloadAll fetches every source, vintages in parallel. A vintage whose
// candidates all fail is logged and skipped; it does not abort the others.
func (d *Downloader) DownloadAll(ctx context.Context, sources []Source) ([]Result, error) {
	if err := os.MkdirAll(d.outDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "boundary: create output dir %s", d.outDir)
	}

	var (
		mu      sync.Mutex
		results []Result
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)

	for _, src := range sources {
		g.Go(func() error {
			res, err := d.download(gctx, src)
			if err != nil {
				zap.L().Warn("boundary: vintage download failed",
					zap.String("vintage", src.Vintage),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			results = append(results, *res)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (d *Downloader) download(ctx context.Context, src Source) (*Result, error) {
	var lastErr error
	for _, candidate := range src.Candidates {
		body, err := d.fetcher.Download(ctx, candidate)
		if err != nil {
			lastErr = err
			zap.L().Debug("boundary: candidate failed, trying next",
				zap.String("vintage", src.Vintage),
				zap.String("url", candidate),
				zap.Error(err),
			)
			continue
		}

		data, err := io.ReadAll(body)
		_ = body.Close()
		if err != nil {
			lastErr = eris.Wrap(err, "boundary: read body")
			continue
		}

		count, err := featureCount(data)
		if err != nil {
			lastErr = err
			zap.L().Debug("boundary: candidate payload invalid, trying next",
				zap.String("vintage", src.Vintage),
				zap.String("url", candidate),
				zap.Error(err),
			)
			continue
		}

		path := filepath.Join(d.outDir, "tpu_boundaries_"+src.Vintage+".geojson")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, eris.Wrapf(err, "boundary: write %s", path)
		}

		zap.L().Info("boundary: vintage downloaded",
			zap.String("vintage", src.Vintage),
			zap.Int("features", count),
			zap.String("path", path),
		)
		return &Result{Vintage: src.Vintage, Path: path, Features: count, URL: candidate}, nil
	}

	if lastErr == nil {
		lastErr = eris.Errorf("boundary: no candidates for vintage %s", src.Vintage)
	}
	return nil, eris.Wrapf(lastErr, "boundary: all candidates failed for vintage %s", src.Vintage)
}

// featureCount validates the payload as GeoJSON and returns the feature
// count. Payloads with zero features are rejected so the next candidate
// endpoint is tried.
func featureCount(data []byte) (int, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return 0, eris.Wrap(err, "boundary: parse geojson")
	}
	if len(fc.Features) == 0 {
		return 0, eris.New("boundary: no features in payload")
	}
	return len(fc.Features), nil
}
