package config

import (
	"path/filepath"
	"testing"
)

func TestDataDirDefault(t *testing.T) {
	t.Setenv("FRAMELAPSE_DATA_DIR", "")
	if got := GetDataDir(); got != "./data" {
		t.Errorf("GetDataDir() = %q, want ./data", got)
	}
}

func TestDataDirOverride(t *testing.T) {
	t.Setenv("FRAMELAPSE_DATA_DIR", "/var/lib/framelapse")

	if got := GetDataDir(); got != "/var/lib/framelapse" {
		t.Errorf("GetDataDir() = %q", got)
	}
	if got := GetSuccessDBPath(); got != filepath.Join("/var/lib/framelapse", "success.db") {
		t.Errorf("GetSuccessDBPath() = %q", got)
	}
	if got := GetFailuresDBPath(); got != filepath.Join("/var/lib/framelapse", "failures.db") {
		t.Errorf("GetFailuresDBPath() = %q", got)
	}
	if got := GetCredentialsDBPath(); got != filepath.Join("/var/lib/framelapse", "credentials.db") {
		t.Errorf("GetCredentialsDBPath() = %q", got)
	}
}

func TestListenAddr(t *testing.T) {
	t.Setenv("FRAMELAPSE_LISTEN", "")
	if got := GetListenAddr(); got != ":8080" {
		t.Errorf("GetListenAddr() = %q, want :8080", got)
	}

	t.Setenv("FRAMELAPSE_LISTEN", "127.0.0.1:9999")
	if got := GetListenAddr(); got != "127.0.0.1:9999" {
		t.Errorf("GetListenAddr() = %q", got)
	}
}
