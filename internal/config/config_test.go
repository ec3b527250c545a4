package config

import "testing"

func TestLoadFallsBackToDefaultsWithoutAFile(t *testing.T) {
	cfg, err := Load("nonexistent-matchengine-config", t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if cfg.Risk != want.Risk {
		t.Errorf("expected default risk limits, got %+v", cfg.Risk)
	}
}

func TestToRiskConfigConvertsFields(t *testing.T) {
	cfg := Default()
	cfg.Risk.MaxQuantity = 42
	cfg.Risk.MinPrice = 2
	cfg.Risk.MaxPrice = 9000

	rc := ToRiskConfig(cfg)
	if rc.MaxQuantity != 42 || rc.MinPrice != 2 || rc.MaxPrice != 9000 {
		t.Errorf("unexpected conversion: %+v", rc)
	}
}
