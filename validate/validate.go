// Command validate checks duel rule-set JSON files. Beyond the engine's own
// validation it reports:
//   - Cards whose cost exceeds the mana cap and can never be played
//   - Effects the rules reference that the rule set does not define
//   - Decks smaller than the opening hand
//   - Distance between the two avatars and the turns needed to close it
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/tactics-duel/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// effects the bundled rules play
var requiredEffects = []string{"summon", "projectile", "hit"}

// validateConfig loads and validates a single rule-set file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		result.fail("%s", strings.TrimPrefix(err.Error(), "config validation: "))
		return result
	}

	for i, deck := range config.Decks {
		for _, card := range deck {
			if card.Cost > config.ManaCap {
				result.fail("Player %d card %q costs %d but mana is capped at %d", i+1, card.Name, card.Cost, config.ManaCap)
			}
		}
		if len(deck) < config.OpeningHand {
			result.warn("Player %d deck has %d cards, fewer than the opening hand of %d", i+1, len(deck), config.OpeningHand)
		}
		if len(deck) == 0 {
			result.warn("Player %d deck is empty", i+1)
		}
	}

	for _, name := range requiredEffects {
		if _, ok := config.Effects[name]; !ok {
			result.warn("Effect %q not defined, the sprite name %q will be used", name, name)
		}
	}

	if !result.Valid {
		return result
	}

	reach := analyzeReach(&config)
	result.Errors = append(result.Errors,
		fmt.Sprintf("✓ Name: %s", config.Name),
		fmt.Sprintf("✓ Board: %dx%d", config.BoardWidth, config.BoardHeight),
		fmt.Sprintf("✓ Decks: %d / %d cards", len(config.Decks[0]), len(config.Decks[1])),
		fmt.Sprintf("✓ Mana cap: %d, hand %d (opening %d)", config.ManaCap, config.HandSize, config.OpeningHand),
		fmt.Sprintf("✓ Avatars %d tiles apart, adjacent after %d moves each", reach.Distance, reach.TurnsToContact),
	)

	return result
}

// Reach describes how far apart the avatars start
type Reach struct {
	Distance       int
	TurnsToContact int
}

// analyzeReach measures the Manhattan distance between the avatars and how
// many moves of move_range tiles it takes until they are adjacent
func analyzeReach(config *engine.GameConfig) Reach {
	a, b := config.Avatars[0], config.Avatars[1]
	distance := abs(a.StartX-b.StartX) + abs(a.StartY-b.StartY)

	gap := distance - 1
	turns := 0
	if gap > 0 {
		// Both avatars close in, one move each per round
		perRound := 2 * config.MoveRange
		turns = (gap + perRound - 1) / perRound
	}
	return Reach{Distance: distance, TurnsToContact: turns}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// validateFiles validates every file and writes a report. It returns false
// when any file is invalid.
func validateFiles(out io.Writer, files []string) bool {
	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Fprintf(out, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(out, "✅ VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(out, "  "+info)
			}
		} else {
			fmt.Fprintln(out, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Fprintln(out, "  ❌ "+err)
			}
		}
		for _, w := range result.Warnings {
			fmt.Fprintln(out, "  ⚠️  "+w)
		}
	}

	fmt.Fprintf(out, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(out, "✅ All rule sets are valid!")
	} else {
		fmt.Fprintln(out, "❌ Some rule sets have errors")
	}
	return allValid
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate duel rule-set files",
		ArgsUsage: "[file.json ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Value:   "configs",
				Usage:   "directory scanned when no files are given",
				Sources: cli.EnvVars("TACTICS_CONFIG_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				var err error
				files, err = filepath.Glob(filepath.Join(cmd.String("dir"), "*.json"))
				if err != nil {
					return fmt.Errorf("finding rule sets: %w", err)
				}
			}
			if len(files) == 0 {
				return fmt.Errorf("no rule-set files found")
			}

			if !validateFiles(out, files) {
				return fmt.Errorf("invalid rule sets found")
			}
			return nil
		},
	}
}

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
