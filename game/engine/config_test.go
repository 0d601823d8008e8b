package engine

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateGameConfig(t *testing.T) {
	if err := ValidateGameConfig(DefaultGameConfig()); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*GameConfig)
		wantErr string
	}{
		{"missing name", func(c *GameConfig) { c.Name = "" }, "name is required"},
		{"board too narrow", func(c *GameConfig) { c.BoardWidth = 2 }, "board_width"},
		{"board too tall", func(c *GameConfig) { c.BoardHeight = 13 }, "board_height"},
		{"tiny tiles", func(c *GameConfig) { c.TileSize = 4 }, "tile_size"},
		{"zero health", func(c *GameConfig) { c.StartingHealth = 0 }, "starting_health"},
		{"mana cap too high", func(c *GameConfig) { c.ManaCap = 10 }, "mana_cap"},
		{"hand too large", func(c *GameConfig) { c.HandSize = 7 }, "hand_size"},
		{"opening hand exceeds hand", func(c *GameConfig) { c.HandSize = 2 }, "opening_hand"},
		{"no movement", func(c *GameConfig) { c.MoveRange = 0 }, "move_range"},
		{"unnamed avatar", func(c *GameConfig) { c.Avatars[1].Name = "" }, "avatars[1].name"},
		{"avatar off board", func(c *GameConfig) { c.Avatars[0].StartX = 10 }, "off the board"},
		{"shared start", func(c *GameConfig) { c.Avatars[1].StartX = 2 }, "share start tile"},
		{"card too expensive", func(c *GameConfig) { c.Decks[0][0].Cost = 10 }, "cost"},
		{"card without health", func(c *GameConfig) { c.Decks[1][2].Health = 0 }, "health"},
		{"no preload", func(c *GameConfig) { c.PreloadImages = nil }, "preload_images"},
		{"blank preload", func(c *GameConfig) { c.PreloadImages = []string{" "} }, "preload_images[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGameConfig()
			tt.mutate(cfg)
			err := ValidateGameConfig(cfg)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}

	if err := ValidateGameConfig(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestLoadGameConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid file", func(t *testing.T) {
		cfg := DefaultGameConfig()
		cfg.Name = "from-file"
		data, _ := json.Marshal(cfg)
		path := filepath.Join(dir, "valid.json")
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}

		loaded, err := LoadGameConfig(path)
		if err != nil {
			t.Fatalf("LoadGameConfig failed: %v", err)
		}
		if loaded.Name != "from-file" {
			t.Errorf("Expected name from-file, got %s", loaded.Name)
		}
		if len(loaded.Deck(Player2)) != 8 {
			t.Errorf("Expected 8 cards in deck 2, got %d", len(loaded.Deck(Player2)))
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		os.WriteFile(path, []byte("{not json"), 0644)
		if _, err := LoadGameConfig(path); err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})

	t.Run("fails validation", func(t *testing.T) {
		path := filepath.Join(dir, "invalid.json")
		os.WriteFile(path, []byte(`{"name":"x","board_width":1}`), 0644)
		if _, err := LoadGameConfig(path); err == nil {
			t.Error("Expected validation error")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadGameConfig(filepath.Join(dir, "nope.json")); err == nil {
			t.Error("Expected error for missing file")
		}
	})
}

func TestTurnRefill(t *testing.T) {
	cfg := DefaultGameConfig()
	tests := []struct {
		round int
		want  int
	}{
		{1, 2},
		{2, 3},
		{8, 9},
		{20, 9},
	}
	for _, tt := range tests {
		if got := cfg.TurnRefill(tt.round); got != tt.want {
			t.Errorf("TurnRefill(%d) = %d, want %d", tt.round, got, tt.want)
		}
	}

	cfg.ManaCap = 4
	if got := cfg.TurnRefill(10); got != 4 {
		t.Errorf("Expected refill capped at 4, got %d", got)
	}
}

func TestEffect(t *testing.T) {
	cfg := DefaultGameConfig()

	if fx := cfg.Effect("summon"); fx.Name != "f1_summon" {
		t.Errorf("Expected f1_summon, got %s", fx.Name)
	}
	fx := cfg.Effect("sparkle")
	if fx.Name != "sparkle" || fx.FrameRate != 24 {
		t.Errorf("Unexpected fallback effect: %+v", fx)
	}
}
