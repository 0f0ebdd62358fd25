package documents

import (
	"strings"
	"testing"
)

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name   string
		header string
		data   []byte
		want   string
	}{
		{"explicit header wins", "text/csv", []byte("a,b\n1,2"), "text/csv"},
		{"header with params trimmed", "text/plain; charset=utf-8", []byte("hello"), "text/plain"},
		{"octet-stream falls through to sniff", "application/octet-stream", []byte("%PDF-1.7 fake"), "application/pdf"},
		{"empty header sniffs text", "", []byte("plain words"), "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectContentType(tt.header, tt.data); got != tt.want {
				t.Errorf("detectContentType() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		contentType string
		want        string
	}{
		{"plain text", []byte("invoice rules"), "text/plain", "invoice rules"},
		{"markdown", []byte("# Policy"), "text/markdown", "# Policy"},
		{"csv", []byte("a,b\n1,2"), "text/csv", "a,b\n1,2"},
		{"pdf yields no text", []byte("%PDF-1.7"), "application/pdf", ""},
		{"invalid utf8 yields no text", []byte{0xff, 0xfe, 0x00}, "text/plain", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractText(tt.data, tt.contentType); got != tt.want {
				t.Errorf("extractText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain name", "report.pdf", "report.pdf"},
		{"path stripped", "/etc/passwd", "passwd"},
		{"traversal stripped", "../../secret.txt", "secret.txt"},
		{"empty falls back", "", "document"},
		{"spaces escaped", "q3 report.csv", "q3%20report.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeFilename(tt.input)
			if got != tt.want {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if strings.Contains(got, "/") {
				t.Errorf("sanitized name contains a path separator: %q", got)
			}
		})
	}
}
