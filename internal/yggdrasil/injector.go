package yggdrasil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"

	"mclc/internal/auth"
	"mclc/pkg/logging"
)

const (
	// defaultArtifactBaseURL serves artifact/latest.json with the current
	// authlib-injector release.
	defaultArtifactBaseURL = "https://authlib-injector.yushi.moe"
	// defaultArtifactMirrorURL is the BMCLAPI mirror used when the primary
	// endpoint is unreachable or unusable.
	defaultArtifactMirrorURL = "https://bmclapi2.bangbang93.com/mirrors/authlib-injector"

	jarFileName = "authlib-injector.jar"
)

// Provisioner resolves and caches the authlib-injector agent jar.
type Provisioner struct {
	cacheDir   string
	httpClient *http.Client
	baseURL    string
	mirrorURL  string
	quiet      bool
}

// ProvisionerOption configures the Provisioner.
type ProvisionerOption func(*Provisioner)

// WithProvisionerHTTPClient sets a custom HTTP client.
func WithProvisionerHTTPClient(httpClient *http.Client) ProvisionerOption {
	return func(p *Provisioner) {
		p.httpClient = httpClient
	}
}

// WithArtifactURLs overrides the primary and mirror artifact endpoints.
func WithArtifactURLs(baseURL, mirrorURL string) ProvisionerOption {
	return func(p *Provisioner) {
		p.baseURL = baseURL
		p.mirrorURL = mirrorURL
	}
}

// WithQuietProgress disables the download spinner.
func WithQuietProgress() ProvisionerOption {
	return func(p *Provisioner) {
		p.quiet = true
	}
}

// NewProvisioner creates a Provisioner caching under cacheDir.
func NewProvisioner(cacheDir string, opts ...ProvisionerOption) *Provisioner {
	p := &Provisioner{
		cacheDir:  cacheDir,
		baseURL:   defaultArtifactBaseURL,
		mirrorURL: defaultArtifactMirrorURL,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.httpClient == nil {
		p.httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}

	return p
}

// JarPath returns the cache path of the agent jar.
func (p *Provisioner) JarPath() string {
	return filepath.Join(p.cacheDir, jarFileName)
}

// GetOrProvision returns the path to the cached agent jar, downloading it
// first when absent. An existing jar is returned as-is.
func (p *Provisioner) GetOrProvision(ctx context.Context) (string, error) {
	jarPath := p.JarPath()
	if _, err := os.Stat(jarPath); err == nil {
		logging.Debug("Injector", "using cached agent at %s", jarPath)
		return jarPath, nil
	}

	downloadURL := p.resolveDownloadURL(ctx)
	logging.Info("Injector", "downloading authlib-injector from %s", downloadURL)

	if err := os.MkdirAll(p.cacheDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create cache directory %s: %w", p.cacheDir, err)
	}

	if err := p.download(ctx, downloadURL, jarPath); err != nil {
		return "", err
	}

	logging.Info("Injector", "authlib-injector cached at %s", jarPath)
	return jarPath, nil
}

// resolveDownloadURL asks the primary endpoint for the latest artifact URL
// and falls back to the fixed mirror template when that fails in any way.
func (p *Provisioner) resolveDownloadURL(ctx context.Context) string {
	mirror := p.mirrorURL + "/artifact/latest/" + jarFileName

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/artifact/latest.json", nil)
	if err != nil {
		return mirror
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		logging.Warn("Injector", "primary artifact endpoint unreachable, using mirror: %v", err)
		return mirror
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logging.Warn("Injector", "primary artifact endpoint returned %d, using mirror", resp.StatusCode)
		return mirror
	}

	var latest struct {
		DownloadURL string `json:"download_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&latest); err != nil || latest.DownloadURL == "" {
		logging.Warn("Injector", "primary artifact metadata unusable, using mirror")
		return mirror
	}
	return latest.DownloadURL
}

func (p *Provisioner) download(ctx context.Context, downloadURL, jarPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return &auth.TransportError{Stage: "injector_download", Err: err}
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return &auth.TransportError{Stage: "injector_download", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &auth.ProviderError{Stage: "injector_download", Status: resp.StatusCode, Body: string(body)}
	}

	var s *spinner.Spinner
	if !p.quiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " Downloading authlib-injector..."
		s.Start()
		defer s.Stop()
	}

	tmp, err := os.CreateTemp(p.cacheDir, jarFileName+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	progress := &progressWriter{total: resp.ContentLength, spinner: s}
	if _, err := io.Copy(tmp, io.TeeReader(resp.Body, progress)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &auth.TransportError{Stage: "injector_download", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, jarPath); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// progressWriter emits coarse download progress at megabyte granularity.
type progressWriter struct {
	total      int64
	downloaded int64
	lastMiB    int64
	spinner    *spinner.Spinner
}

func (w *progressWriter) Write(data []byte) (int, error) {
	w.downloaded += int64(len(data))

	mib := w.downloaded >> 20
	if mib > w.lastMiB {
		w.lastMiB = mib
		if w.total > 0 {
			pct := w.downloaded * 100 / w.total
			if w.spinner != nil {
				w.spinner.Suffix = fmt.Sprintf(" Downloading authlib-injector... %d MiB (%d%%)", mib, pct)
			}
			logging.Debug("Injector", "downloaded %d/%d bytes (%d%%)", w.downloaded, w.total, pct)
		} else {
			if w.spinner != nil {
				w.spinner.Suffix = fmt.Sprintf(" Downloading authlib-injector... %d MiB", mib)
			}
			logging.Debug("Injector", "downloaded %d bytes", w.downloaded)
		}
	}

	return len(data), nil
}
