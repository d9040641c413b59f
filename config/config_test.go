package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sim.cfg")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadRecognizedKeys(t *testing.T) {
	path := writeTempConfig(t, `
# comment line
sim.terminate.atTime=50000
net.numOfHonestNodes=3
net.numOfMaliciousNodes=1
pow.hashPowerMean=2.35597310021E10
node.hashPowerChanges={3:5.0E10:50000}
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TerminateAtTime != 50000 {
		t.Errorf("TerminateAtTime = %v, want 50000", cfg.TerminateAtTime)
	}
	if cfg.NumHonestNodes != 3 || cfg.NumMaliciousNodes != 1 {
		t.Errorf("node counts wrong: %+v", cfg)
	}
	if len(cfg.HashPowerChanges) != 1 || cfg.HashPowerChanges[0].NodeID != 3 {
		t.Errorf("hashpower changes wrong: %+v", cfg.HashPowerChanges)
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	path := writeTempConfig(t, "totally.unknown.key=1\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected ConfigError for unrecognized key")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/sim.cfg"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidateRejectsZeroNodes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumHonestNodes = 0
	cfg.NumMaliciousNodes = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected Validate to reject zero total nodes")
	}
}
