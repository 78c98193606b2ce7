package canvas

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestDirLoader(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	outside := filepath.Join(filepath.Dir(root), "secret.png")
	os.WriteFile(outside, []byte("secret"), 0o644)
	t.Cleanup(func() { os.Remove(outside) })

	l := DirLoader{Root: root}
	data, err := l.Load(context.Background(), "a.png")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "png" {
		t.Errorf("data = %q", data)
	}
	if _, err := l.Load(context.Background(), "../secret.png"); err == nil {
		t.Error("DirLoader escaped its root")
	}
}

func TestSchemeLoader(t *testing.T) {
	payload := []byte("sticker")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/s.png" {
			http.NotFound(w, r)
			return
		}
		w.Write(payload)
	}))
	defer srv.Close()

	l := SchemeLoader{
		Local: MemLoader{"local.png": []byte("local")},
		Web:   HTTPLoader{Client: srv.Client()},
	}
	ctx := context.Background()

	tests := []struct {
		src     string
		want    []byte
		wantErr bool
	}{
		{"local.png", []byte("local"), false},
		{"missing.png", nil, true},
		{srv.URL + "/s.png", payload, false},
		{srv.URL + "/404.png", nil, true},
		{"data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("inline")), []byte("inline"), false},
		{"data:text/plain,hello", nil, true},
	}
	for _, tt := range tests {
		got, err := l.Load(ctx, tt.src)
		if (err != nil) != tt.wantErr {
			t.Errorf("Load(%q) err = %v, wantErr %v", tt.src, err, tt.wantErr)
			continue
		}
		if !bytes.Equal(got, tt.want) {
			t.Errorf("Load(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}
