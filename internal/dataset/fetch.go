package dataset

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// versionFileName is written inside an unpacked dataset folder so partial
// extractions and stale versions can be told apart from good ones.
const versionFileName = "version.txt"

// FetcherConfig holds fetcher configuration
type FetcherConfig struct {
	Timeout time.Duration
	Mirror  string // Optional base URL replacing the manifest host
}

// Fetcher downloads dataset archives into the data directory and records
// them in the registry.
type Fetcher struct {
	dataDir  string
	registry *Registry
	client   *http.Client
	mirror   string
	logger   zerolog.Logger
}

// Result describes the outcome of a fetch.
type Result struct {
	Record     Record
	Downloaded bool // false when the dataset was already present
}

// NewFetcher creates a new dataset fetcher
func NewFetcher(dataDir string, registry *Registry, cfg FetcherConfig, logger zerolog.Logger) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Minute
	}
	return &Fetcher{
		dataDir:  dataDir,
		registry: registry,
		client:   &http.Client{Timeout: cfg.Timeout},
		mirror:   cfg.Mirror,
		logger:   logger.With().Str("component", "dataset-fetcher").Logger(),
	}
}

// Fetch downloads and unpacks the named dataset. A dataset already recorded
// at the manifest version with its folder intact is not re-downloaded.
func (f *Fetcher) Fetch(ctx context.Context, name string) (*Result, error) {
	ds, err := Lookup(name)
	if err != nil {
		return nil, err
	}

	folder := filepath.Join(f.dataDir, ds.Folder)

	if rec, err := f.registry.Get(ctx, name); err == nil {
		if rec.Version == ds.Version && folderVersion(folder) == ds.Version {
			f.logger.Debug().Str("dataset", name).Str("path", rec.Path).Msg("Dataset already present")
			return &Result{Record: *rec, Downloaded: false}, nil
		}
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	archivePath, size, err := f.download(ctx, ds)
	if err != nil {
		return nil, err
	}
	defer os.Remove(archivePath)

	f.logger.Info().Str("dataset", name).Int64("bytes", size).Msg("Archive downloaded")

	if err := extractTarGz(archivePath, f.dataDir); err != nil {
		return nil, fmt.Errorf("extract %s: %w", name, err)
	}

	if err := os.WriteFile(filepath.Join(folder, versionFileName), []byte(ds.Version+"\n"), 0644); err != nil {
		return nil, fmt.Errorf("write version file: %w", err)
	}

	rec := Record{
		Name:        ds.Name,
		Version:     ds.Version,
		Path:        folder,
		ArchiveSize: size,
		FetchedAt:   time.Now().UTC(),
	}
	if err := f.registry.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("register %s: %w", name, err)
	}

	return &Result{Record: rec, Downloaded: true}, nil
}

// download retrieves the archive to a temp file in the data directory and
// verifies its digest. The caller removes the file.
func (f *Fetcher) download(ctx context.Context, ds Dataset) (string, int64, error) {
	reqURL, err := f.resolveURL(ds.URL)
	if err != nil {
		return "", 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("download %s: %w", ds.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("download %s: unexpected status %s", ds.Name, resp.Status)
	}

	tmp, err := os.CreateTemp(f.dataDir, ".fetch-"+ds.Name+"-*.tar.gz")
	if err != nil {
		return "", 0, fmt.Errorf("create temp archive: %w", err)
	}

	hash := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, hash), resp.Body)
	closeErr := tmp.Close()
	if err != nil {
		os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("download %s: %w", ds.Name, err)
	}
	if closeErr != nil {
		os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("write archive: %w", closeErr)
	}

	if ds.SHA256 != "" {
		digest := hex.EncodeToString(hash.Sum(nil))
		if digest != ds.SHA256 {
			os.Remove(tmp.Name())
			return "", 0, fmt.Errorf("download %s: checksum mismatch (got %s, want %s)", ds.Name, digest, ds.SHA256)
		}
	}

	return tmp.Name(), size, nil
}

// resolveURL applies the mirror override, keeping the manifest path.
func (f *Fetcher) resolveURL(raw string) (string, error) {
	if f.mirror == "" {
		return raw, nil
	}
	orig, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse manifest url: %w", err)
	}
	base, err := url.Parse(f.mirror)
	if err != nil {
		return "", fmt.Errorf("parse mirror url: %w", err)
	}
	orig.Scheme = base.Scheme
	orig.Host = base.Host
	if base.Path != "" && base.Path != "/" {
		orig.Path = strings.TrimSuffix(base.Path, "/") + orig.Path
	}
	return orig.String(), nil
}

// folderVersion reads the version file of an unpacked dataset folder,
// returning "" when absent.
func folderVersion(folder string) string {
	data, err := os.ReadFile(filepath.Join(folder, versionFileName))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// extractTarGz unpacks a tar.gz archive under destDir, refusing entries that
// would escape it.
func extractTarGz(archivePath, destDir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("open gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar entry: %w", err)
		}

		target, err := securePath(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("create %s: %w", filepath.Dir(target), err)
			}
			if err := writeEntry(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		default:
			// Symlinks and special files are not expected in dataset
			// archives; skip rather than fail the whole extraction.
		}
	}
}

func writeEntry(target string, r io.Reader, mode os.FileMode) error {
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", target, err)
	}
	return out.Close()
}

// securePath joins name under destDir and rejects traversal outside it.
func securePath(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.Clean(name))
	if target != destDir && !strings.HasPrefix(target, destDir+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry escapes destination: %s", name)
	}
	return target, nil
}
