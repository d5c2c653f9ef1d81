package main

import (
	"context"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/csheth/logopreview/internal/editor"
	"github.com/csheth/logopreview/internal/tuitest"
)

func TestTUIRendersSelectedLogo(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary and drives it in a PTY")
	}
	binary := buildBinary(t, moduleDir(t))
	svc := &fakeService{}
	srv := httptest.NewServer(svc)
	defer srv.Close()

	logo := writeLogo(t)
	rec, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: []string{binary,
			"--no-alt-screen", "--no-watch",
			"--server", srv.URL,
			"--log-file", "off",
			"--logo", logo,
		},
		Env:    isolatedEnv(t),
		Width:  160,
		Height: 40,
		Steps: []tuitest.Step{
			tuitest.Wait(time.Second),
			{Input: tuitest.KeyEnter},
			tuitest.Wait(1500 * time.Millisecond),
			{Input: []byte("?")},
			tuitest.Wait(500 * time.Millisecond),
			{Input: []byte("q")},
		},
		Timeout: 15 * time.Second,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}

	output := rec.Output()
	for _, want := range []string{"acme.png", "processed_logo.png", "download=true", "Horizontal", "Keys"} {
		if !strings.Contains(output, want) {
			t.Fatalf("output missing %q:\n%s", want, output)
		}
	}
	if len(svc.forms) != 1 {
		t.Fatalf("render requests = %d, want 1", len(svc.forms))
	}
}

func TestHeadlessRenderCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}
	binary := buildBinary(t, moduleDir(t))
	srv := httptest.NewServer(&fakeService{})
	defer srv.Close()

	out := t.TempDir()
	cmd := exec.Command(binary, "render",
		"--server", srv.URL,
		"--log-file", "off",
		"--logo", writeLogo(t),
		"--horizontal", "20",
		"--out", out,
	)
	cmd.Env = append(os.Environ(), isolatedEnv(t)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("render: %v\n%s", err, output)
	}
	if !strings.Contains(string(output), "exported") {
		t.Fatalf("unexpected output:\n%s", output)
	}
	if _, err := os.Stat(filepath.Join(out, "processed_logo.yaml")); err != nil {
		t.Fatalf("manifest missing: %v", err)
	}
}

func TestHeadlessRenderFailsWithoutLogo(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}
	binary := buildBinary(t, moduleDir(t))
	cmd := exec.Command(binary, "render", "--log-file", "off", "--server", "http://127.0.0.1:1")
	cmd.Env = append(os.Environ(), isolatedEnv(t)...)
	output, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("expected non-zero exit:\n%s", output)
	}
	if !strings.Contains(string(output), editor.ErrNoFile.Error()) {
		t.Fatalf("unexpected output:\n%s", output)
	}
}

// isolatedEnv keeps the user's config and artifact cache out of the run.
func isolatedEnv(t *testing.T) []string {
	t.Helper()
	home := t.TempDir()
	return []string{
		"HOME=" + home,
		"XDG_CONFIG_HOME=" + filepath.Join(home, "config"),
		"XDG_CACHE_HOME=" + filepath.Join(home, "cache"),
		"LOGOPREVIEW_CACHE_DIR=" + filepath.Join(home, "artifacts"),
		"LOGOPREVIEW_SERVER=",
	}
}

func moduleDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	return filepath.Dir(file)
}

func buildBinary(t *testing.T, cmdDir string) string {
	t.Helper()
	name := "logopreview-integration"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	binPath := filepath.Join(t.TempDir(), name)
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = cmdDir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build CLI: %v\n%s", err, output)
	}
	return binPath
}
