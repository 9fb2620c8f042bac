package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-2048/internal/storage"
)

var (
	flagLimit       int
	flagScorePlayer string
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show high scores",
	Long: `Display the best finished games and overall statistics.

Examples:
  t2048 scores
  t2048 scores --limit 20
  t2048 scores --player alice`,
	Args: cobra.NoArgs,
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of results to show")
	scoresCmd.Flags().StringVar(&flagScorePlayer, "player", "", "Only show results of this player")
}

func runScores(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	store := openStore(cfg)
	defer store.Close()

	var (
		results []storage.Result
		err     error
	)
	if flagScorePlayer != "" {
		results, err = store.TopScoresFor(flagScorePlayer, flagLimit)
	} else {
		results, err = store.TopScores(flagLimit)
	}
	if err != nil {
		store.Close()
		exitf("retrieving scores: %v", err)
	}

	// Display scores
	if flagScorePlayer != "" {
		fmt.Printf("High Scores - %s\n", flagScorePlayer)
	} else {
		fmt.Println("High Scores")
	}
	fmt.Println()

	if len(results) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Play 't2048 play' to set the first high score!")
		return
	}

	// Print header
	fmt.Printf("  %-4s  %-14s  %-8s  %-6s  %-5s  %s\n", "Rank", "Player", "Score", "Tile", "Moves", "Date")
	fmt.Printf("  %-4s  %-14s  %-8s  %-6s  %-5s  %s\n", "----", "------", "-----", "----", "-----", "----")

	// Print scores
	for i, r := range results {
		tile := fmt.Sprintf("%d", r.MaxTile)
		if r.Won {
			tile += "*"
		}
		fmt.Printf("  %-4d  %-14s  %-8d  %-6s  %-5d  %s\n",
			i+1, r.Player, r.Score, tile, r.Moves, r.CreatedAt.Local().Format("2006-01-02 15:04"))
	}

	stats, err := store.Stats()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving stats: %v\n", err)
		return
	}
	fmt.Println()
	fmt.Printf("Games: %d  Wins: %d  Best: %d  Average: %.0f  Best tile: %d\n",
		stats.Games, stats.Wins, stats.Best, stats.Average, stats.BestTile)
}
