// Package main is the entry point for the combat API server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "combat-api",
	Short: "D&D 5e combat engine server",
	Long:  `combat-api hosts turn-based D&D 5e combat encounters over websockets, with Redis-backed snapshots.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
