package storage

import "testing"

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		endpoint   string
		useSSL     bool
		wantHost   string
		wantSecure bool
	}{
		{"https://s3.example.com", false, "s3.example.com", true},
		{"http://localhost:9000", true, "localhost:9000", false},
		{"localhost:9000", false, "localhost:9000", false},
		{"//storage.local/", true, "storage.local", true},
	}

	for _, tt := range tests {
		host, secure := normalizeEndpoint(tt.endpoint, tt.useSSL)
		if host != tt.wantHost || secure != tt.wantSecure {
			t.Errorf("normalizeEndpoint(%q, %v) = (%q, %v), want (%q, %v)",
				tt.endpoint, tt.useSSL, host, secure, tt.wantHost, tt.wantSecure)
		}
	}
}

func TestNewMinioClient_RequiresSettings(t *testing.T) {
	cases := []MinioConfig{
		{AccessKey: "a", SecretKey: "b", Bucket: "c"},
		{Endpoint: "localhost:9000", Bucket: "c"},
		{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"},
	}
	for i, cfg := range cases {
		if _, err := NewMinioClient(cfg); err == nil {
			t.Errorf("case %d: expected error for incomplete config", i)
		}
	}
}
