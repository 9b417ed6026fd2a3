// Package wordfreq reads English word frequencies from the wordfreq dataset.
// The dataset is the source for generated reference tables and word lists.
package wordfreq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/cryptology/internal/logging"
	"github.com/verte-zerg/cryptology/internal/wordlist"
)

const pypiEndpoint = "https://pypi.org/pypi/wordfreq/json"

// Wheel describes a cached wordfreq wheel.
type Wheel struct {
	Version  string
	Path     string
	Filename string
	Cached   bool
}

// Entry is a word with its Zipf frequency (log10 of occurrences per billion words).
type Entry struct {
	Word string
	Zipf float64
}

type pypiFile struct {
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	Packagetype string `json:"packagetype"`
}

type pypiResponse struct {
	Info struct {
		Version string `json:"version"`
	} `json:"info"`
	URLs []pypiFile `json:"urls"`
}

// Downloader fetches wordfreq wheels from PyPI.
type Downloader struct {
	Endpoint string
	Client   *http.Client
	Logger   *slog.Logger
}

// NewDownloader returns a downloader for the public PyPI endpoint.
func NewDownloader() *Downloader {
	return &Downloader{
		Endpoint: pypiEndpoint,
		Client:   &http.Client{Timeout: 60 * time.Second},
		Logger:   logging.Component(logging.ComponentWordfreq),
	}
}

// DownloadLatestWheel fetches the latest wordfreq wheel into cacheDir.
func DownloadLatestWheel(ctx context.Context, cacheDir string) (Wheel, error) {
	return NewDownloader().Download(ctx, cacheDir)
}

// Download fetches the latest wheel into cacheDir unless it is already cached.
func (d *Downloader) Download(ctx context.Context, cacheDir string) (Wheel, error) {
	if cacheDir == "" {
		return Wheel{}, errors.New("cache directory is required")
	}
	logger := d.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	release, err := d.latestRelease(ctx)
	if err != nil {
		return Wheel{}, err
	}
	file, ok := pickWheel(release.URLs)
	if !ok {
		return Wheel{}, fmt.Errorf("wordfreq %s: no wheel published", release.Info.Version)
	}
	wheel := Wheel{
		Version:  release.Info.Version,
		Filename: file.Filename,
		Path:     filepath.Join(cacheDir, file.Filename),
	}

	switch _, err := os.Stat(wheel.Path); {
	case err == nil:
		logger.Debug("using cached wheel", "path", wheel.Path)
		wheel.Cached = true
		return wheel, nil
	case !errors.Is(err, os.ErrNotExist):
		return Wheel{}, fmt.Errorf("stat cached wheel: %w", err)
	}

	logger.Info("downloading wheel", "version", wheel.Version, "url", file.URL)
	if err := d.fetchTo(ctx, file.URL, wheel.Path); err != nil {
		return Wheel{}, err
	}
	return wheel, nil
}

func (d *Downloader) latestRelease(ctx context.Context) (pypiResponse, error) {
	var release pypiResponse
	body, err := d.open(ctx, d.Endpoint)
	if err != nil {
		return release, err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(&release); err != nil {
		return release, fmt.Errorf("decode pypi response: %w", err)
	}
	if release.Info.Version == "" {
		return release, errors.New("pypi response has no version")
	}
	return release, nil
}

// fetchTo downloads url next to dest and renames it into place.
func (d *Downloader) fetchTo(ctx context.Context, url, dest string) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	body, err := d.open(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return fmt.Errorf("create temp wheel: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("download %s: %w", url, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp wheel: %w", err)
	}
	return os.Rename(tmp.Name(), dest)
}

// open issues a GET and returns the body of a 200 response.
func (d *Downloader) open(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return resp.Body, nil
}

// pickWheel prefers the pure-Python wheel over any other binary distribution.
func pickWheel(files []pypiFile) (pypiFile, bool) {
	var fallback pypiFile
	found := false
	for _, f := range files {
		if f.Packagetype != "bdist_wheel" {
			continue
		}
		if strings.HasSuffix(f.Filename, "py3-none-any.whl") {
			return f, true
		}
		if !found {
			fallback, found = f, true
		}
	}
	return fallback, found
}

// ReadEntries returns the English entries of the given list type ("large" or
// "small"), most frequent first. Words that are not plain lowercase ASCII
// are dropped; the first occurrence of a word wins.
func ReadEntries(wheelPath, listType string) ([]Entry, error) {
	if wheelPath == "" {
		return nil, fmt.Errorf("wheel path is required")
	}
	if listType == "" {
		return nil, fmt.Errorf("word list type is required")
	}
	raw, err := readWheelEntries(wheelPath, "en", listType)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(raw, func(i, j int) bool {
		return raw[i].Zipf > raw[j].Zipf
	})

	keep := wordlist.FilterForLang("en")
	seen := make(map[string]struct{}, len(raw))
	out := make([]Entry, 0, len(raw))
	for _, e := range raw {
		if _, ok := seen[e.Word]; ok {
			continue
		}
		if !keep(e.Word) {
			continue
		}
		seen[e.Word] = struct{}{}
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no usable words found for en/%s", listType)
	}
	return out, nil
}

// ExtractWordlist returns up to limit of the most frequent English words
// with 2 to 20 letters.
func ExtractWordlist(wheelPath, listType string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}
	entries, err := ReadEntries(wheelPath, listType)
	if err != nil {
		return nil, err
	}
	words := make([]string, 0, min(limit, len(entries)))
	for _, e := range entries {
		if len(e.Word) < 2 || len(e.Word) > 20 {
			continue
		}
		words = append(words, e.Word)
		if len(words) >= limit {
			break
		}
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("no words found for en/%s", listType)
	}
	return words, nil
}

// WriteAttribution writes attribution and license files based on the wheel.
func WriteAttribution(wheelPath, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	attrText := strings.Join([]string{
		"Generated from the wordfreq dataset.",
		"Source: https://github.com/rspeer/wordfreq",
		"Data license: Creative Commons Attribution-ShareAlike 4.0 International (CC BY-SA 4.0).",
		"Changes were made: filtered to lowercase ASCII English words and reduced to letter statistics or a truncated list.",
		"Includes data from Google Books Ngrams: https://books.google.com/ngrams",
		"Includes data from the Leeds Internet Corpus: https://corpus.leeds.ac.uk/",
		"",
	}, "\n")
	if err := os.WriteFile(filepath.Join(outDir, "ATTRIBUTION.txt"), []byte(attrText), 0o644); err != nil {
		return fmt.Errorf("failed to write attribution: %w", err)
	}

	licenseText, err := readWheelLicense(wheelPath)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "LICENSE.txt"), licenseText, 0o644); err != nil {
		return fmt.Errorf("failed to write license: %w", err)
	}
	return nil
}
