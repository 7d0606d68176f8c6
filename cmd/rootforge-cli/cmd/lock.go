package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var lockCmd = &cobra.Command{
	Use:   "lock <partition>",
	Short: "Mark an archive partition as held by another writer",
	Long: `Mark a partition (the first path segment, e.g. chara) as held. Clones
that touch a held partition are rejected before they write anything.

Example:
  rootforge-cli lock chara`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		holder, _ := os.Hostname()
		if err := archive.LockPartition(context.Background(), args[0], fmt.Sprintf("rootforge-cli@%s:%d", holder, os.Getpid())); err != nil {
			return err
		}
		fmt.Printf("Locked %s\n", args[0])
		return nil
	},
}

var unlockCmd = &cobra.Command{
	Use:   "unlock <partition>",
	Short: "Release an archive partition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := archive.UnlockPartition(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Unlocked %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(unlockCmd)
}
