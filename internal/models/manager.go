package models

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrUnsafePath is returned for archive entries escaping the models directory.
var ErrUnsafePath = errors.New("archive entry outside destination")

// Progress reports download state.
type Progress struct {
	ModelID    string
	Downloaded int64
	Total      int64
	Done       bool
}

// Fraction is the completed share, 0..1.
func (p Progress) Fraction() float32 {
	if p.Done {
		return 1
	}
	if p.Total <= 0 {
		return 0
	}
	f := float32(p.Downloaded) / float32(p.Total)
	if f > 1 {
		f = 1
	}
	return f
}

// Manager downloads and locates models under one directory.
type Manager struct {
	mu     sync.Mutex
	dir    string
	client *http.Client
}

// NewManager creates the models directory if needed.
func NewManager(dir string, client *http.Client) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create models dir: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Manager{dir: dir, client: client}, nil
}

// Dir returns the models directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Path returns where the model lives on disk.
func (m *Manager) Path(info ModelInfo) string {
	return filepath.Join(m.dir, info.Dir)
}

// IsDownloaded reports whether the model directory exists.
func (m *Manager) IsDownloaded(info ModelInfo) bool {
	stat, err := os.Stat(m.Path(info))
	return err == nil && stat.IsDir()
}

// Downloaded lists registry models present on disk.
func (m *Manager) Downloaded() []ModelInfo {
	var out []ModelInfo
	for _, info := range Registry {
		if m.IsDownloaded(info) {
			out = append(out, info)
		}
	}
	return out
}

// Download fetches and unpacks the model. progress may be nil; intermediate
// updates are dropped when the receiver is slow, the final one is not.
func (m *Manager) Download(ctx context.Context, info ModelInfo, progress chan<- Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.IsDownloaded(info) {
		sendFinal(progress, info)
		return nil
	}

	tmp, err := os.CreateTemp(m.dir, info.ID+"-*.zip")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	err = m.fetch(ctx, info, tmp, progress)
	tmp.Close()
	if err != nil {
		return err
	}

	if err := unzip(tmpPath, m.dir); err != nil {
		return fmt.Errorf("unpack %s: %w", info.ID, err)
	}
	if !m.IsDownloaded(info) {
		return fmt.Errorf("archive for %s has no %s directory", info.ID, info.Dir)
	}

	sendFinal(progress, info)
	return nil
}

func (m *Manager) fetch(ctx context.Context, info ModelInfo, w io.Writer, progress chan<- Progress) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, info.URL, nil)
	if err != nil {
		return err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", info.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: %s", info.ID, resp.Status)
	}

	total := resp.ContentLength
	if total <= 0 {
		total = info.Size
	}

	var downloaded int64
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
			downloaded += int64(n)
			if progress != nil {
				select {
				case progress <- Progress{ModelID: info.ID, Downloaded: downloaded, Total: total}:
				default:
				}
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func sendFinal(progress chan<- Progress, info ModelInfo) {
	if progress != nil {
		progress <- Progress{ModelID: info.ID, Downloaded: info.Size, Total: info.Size, Done: true}
	}
}

func unzip(src, destDir string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	root := filepath.Clean(destDir) + string(os.PathSeparator)
	for _, f := range r.File {
		target := filepath.Join(destDir, f.Name)
		if !strings.HasPrefix(target, root) {
			return fmt.Errorf("%w: %s", ErrUnsafePath, f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := extract(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extract(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	_, err = io.Copy(out, rc)
	return err
}

// Delete removes the model from disk.
func (m *Manager) Delete(info ModelInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return os.RemoveAll(m.Path(info))
}
