package browser

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestCommand(t *testing.T) {
	const target = "https://tronscan.org/#/address/TLyqzVGLV1srkB7dToTAEqgDSfPtXRJZYH"
	tests := []struct {
		goos string
		name string
		args []string
	}{
		{"darwin", "open", []string{target}},
		{"linux", "xdg-open", []string{target}},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", target}},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			cmd, err := command(tt.goos, target)
			if err != nil {
				t.Fatal(err)
			}
			if got := filepath.Base(cmd.Args[0]); got != tt.name {
				t.Errorf("program = %q, want %q", got, tt.name)
			}
			if !slices.Equal(cmd.Args[1:], tt.args) {
				t.Errorf("args = %q, want %q", cmd.Args[1:], tt.args)
			}
		})
	}

	if _, err := command("plan9", target); err == nil || !strings.Contains(err.Error(), "unsupported OS") {
		t.Errorf("plan9: err = %v", err)
	}
}

func TestOpenRejectsNonWebLinks(t *testing.T) {
	for _, link := range []string{"file:///etc/passwd", "javascript:alert(1)", "tron:TLyqz"} {
		if err := Open(link); err == nil || !strings.Contains(err.Error(), "refusing") {
			t.Errorf("Open(%q) = %v, want refusal", link, err)
		}
	}
}
