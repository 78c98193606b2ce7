package canvas

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// maxImageBytes caps the size of a single sticker source.
const maxImageBytes = 16 << 20

// Loader fetches the encoded bytes of a sticker image by source key.
type Loader interface {
	Load(ctx context.Context, src string) ([]byte, error)
}

// LoaderFunc adapts a function to the [Loader] interface.
type LoaderFunc func(ctx context.Context, src string) ([]byte, error)

func (f LoaderFunc) Load(ctx context.Context, src string) ([]byte, error) {
	return f(ctx, src)
}

// DirLoader reads sources as slash-separated paths below Root. Paths cannot
// escape Root.
type DirLoader struct {
	Root string
}

func (l DirLoader) Load(_ context.Context, src string) ([]byte, error) {
	name := filepath.Join(l.Root, filepath.FromSlash(filepath.Clean("/"+src)))
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("canvas: %w", err)
	}
	defer f.Close()
	return readCapped(f)
}

// HTTPLoader fetches http and https sources.
type HTTPLoader struct {
	// Client defaults to http.DefaultClient.
	Client *http.Client
}

func (l HTTPLoader) Load(ctx context.Context, src string) ([]byte, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("canvas: invalid image URL %q: %w", src, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("canvas: fetching %s: %w", src, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("canvas: fetching %s: status %s", src, resp.Status)
	}
	return readCapped(resp.Body)
}

// MemLoader serves sources from memory. It is useful for embedded sticker
// sets and tests.
type MemLoader map[string][]byte

func (l MemLoader) Load(_ context.Context, src string) ([]byte, error) {
	data, ok := l[src]
	if !ok {
		return nil, fmt.Errorf("canvas: image %q: %w", src, os.ErrNotExist)
	}
	return data, nil
}

// SchemeLoader dispatches on the source form: base64 "data:" URIs are decoded
// inline, http and https go to Web, everything else goes to Local.
type SchemeLoader struct {
	Local Loader
	Web   Loader
}

func (l SchemeLoader) Load(ctx context.Context, src string) ([]byte, error) {
	switch {
	case strings.HasPrefix(src, "data:"):
		return decodeDataURI(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		if l.Web == nil {
			return nil, fmt.Errorf("canvas: no web loader for %s", src)
		}
		return l.Web.Load(ctx, src)
	default:
		if l.Local == nil {
			return nil, fmt.Errorf("canvas: no local loader for %s", src)
		}
		return l.Local.Load(ctx, src)
	}
}

// DefaultLoader serves files below root, web URLs and data URIs.
func DefaultLoader(root string) Loader {
	return SchemeLoader{Local: DirLoader{Root: root}, Web: HTTPLoader{}}
}

func decodeDataURI(src string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, errors.New("canvas: only base64 data URIs are supported")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("canvas: decoding data URI: %w", err)
	}
	return data, nil
}

func readCapped(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("canvas: reading image: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("canvas: image exceeds %d bytes", maxImageBytes)
	}
	return data, nil
}
