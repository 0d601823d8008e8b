// Package config manages the duel rule sets stored on disk.
//
// The config package handles:
//   - Loading rule sets from JSON files in a directory
//   - Validation through engine.ValidateGameConfig
//   - Default rule-set selection and caching
//   - Rule-set discovery and listing
//
// Rule-Set Format:
//
// Each file describes a board (size, tile geometry, offsets), player
// resources (starting health, mana cap, hand size, opening hand), the two
// avatars with their start tiles, one deck per player, named effect
// animations, and the list of images the renderer preloads.
//
// Default Selection:
//
// classic.json is the default when present. Otherwise the first valid file
// in name order is used, and an empty or unreadable directory falls back to
// the built-in rule set from engine.DefaultGameConfig.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	skirmish, err := manager.LoadConfig("skirmish")
//	rules := manager.GetDefault()
package config
