// Command analyze prints quick, human-readable heuristics about the rule sets
// in a config directory: deck mana curves, the round each card first becomes
// affordable, stat totals, and cards whose cost exceeds the mana cap.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/tactics-duel/game/engine"
)

// DeckAnalysis summarizes one player's deck
type DeckAnalysis struct {
	Cards       int
	Curve       map[int]int // cost -> count
	AvgCost     float64
	TotalAttack int
	TotalHealth int
	Unplayable  []string
	// FirstRound maps a card name to the first round its cost is covered by the turn refill
	FirstRound map[string]int
}

// analyzeDeck computes the deck summary against the rule set's mana rules
func analyzeDeck(config *engine.GameConfig, deck []engine.CardDefinition) DeckAnalysis {
	a := DeckAnalysis{
		Cards:      len(deck),
		Curve:      make(map[int]int),
		FirstRound: make(map[string]int),
	}
	totalCost := 0
	for _, card := range deck {
		a.Curve[card.Cost]++
		totalCost += card.Cost
		a.TotalAttack += card.Attack
		a.TotalHealth += card.Health

		round := firstAffordableRound(config, card.Cost)
		if round < 0 {
			a.Unplayable = append(a.Unplayable, card.Name)
			continue
		}
		if prev, ok := a.FirstRound[card.Name]; !ok || round < prev {
			a.FirstRound[card.Name] = round
		}
	}
	if len(deck) > 0 {
		a.AvgCost = float64(totalCost) / float64(len(deck))
	}
	return a
}

// firstAffordableRound returns the first round whose refill covers cost, or -1
func firstAffordableRound(config *engine.GameConfig, cost int) int {
	if cost > config.ManaCap {
		return -1
	}
	for round := 1; ; round++ {
		if config.TurnRefill(round) >= cost {
			return round
		}
	}
}

func analyzeConfig(out io.Writer, path string) error {
	config, err := engine.LoadGameConfig(path)
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	fmt.Fprintf(out, "Name: %s\n", config.Name)
	fmt.Fprintf(out, "Board: %d x %d, move range %d\n", config.BoardWidth, config.BoardHeight, config.MoveRange)
	fmt.Fprintf(out, "Starting health: %d, mana cap: %d\n", config.StartingHealth, config.ManaCap)

	for i, deck := range config.Decks {
		a := analyzeDeck(config, deck)
		fmt.Fprintf(out, "\nPlayer %d deck: %d cards, avg cost %.1f, total %d attack / %d health\n",
			i+1, a.Cards, a.AvgCost, a.TotalAttack, a.TotalHealth)
		fmt.Fprintf(out, "  Curve: %s\n", formatCurve(a.Curve))

		if len(a.Unplayable) > 0 {
			fmt.Fprintf(out, "  ⚠️  Never playable: %s\n", strings.Join(a.Unplayable, ", "))
		} else {
			fmt.Fprintf(out, "  ✅ Every card is affordable by round %d\n", latestRound(a.FirstRound))
		}
	}
	return nil
}

func formatCurve(curve map[int]int) string {
	costs := make([]int, 0, len(curve))
	for cost := range curve {
		costs = append(costs, cost)
	}
	sort.Ints(costs)

	parts := make([]string, 0, len(costs))
	for _, cost := range costs {
		parts = append(parts, fmt.Sprintf("%d:%s", cost, strings.Repeat("#", curve[cost])))
	}
	return strings.Join(parts, " ")
}

func latestRound(rounds map[string]int) int {
	latest := 1
	for _, r := range rounds {
		if r > latest {
			latest = r
		}
	}
	return latest
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Print deck and mana heuristics for rule sets",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Value:   "configs",
				Usage:   "directory containing rule sets",
				Sources: cli.EnvVars("TACTICS_CONFIG_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files, err := filepath.Glob(filepath.Join(cmd.String("dir"), "*.json"))
			if err != nil {
				return err
			}
			sort.Strings(files)

			for _, file := range files {
				fmt.Fprintf(out, "\n=== Analyzing %s ===\n", filepath.Base(file))
				if err := analyzeConfig(out, file); err != nil {
					fmt.Fprintf(out, "Error: %v\n", err)
				}
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
