package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/medassist-labs/medchat/internal/config"
	"github.com/medassist-labs/medchat/internal/session"
)

func sessionsCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and maintain stored chat sessions",
	}
	root.AddCommand(sessionsLsCmd(), sessionsShowCmd(), sessionsPruneCmd())
	return root
}

func openSessionStore(cmd *cobra.Command) (*session.Store, *config.Config, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	return session.NewStore(cfg.Sessions.Dir, cfg.Sessions.BackupDir), cfg, nil
}

func sessionsLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List session ids on disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := openSessionStore(cmd)
			if err != nil {
				return err
			}
			ids, err := st.List()
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}
}

func sessionsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print a session's turns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := openSessionStore(cmd)
			if err != nil {
				return err
			}
			turns, err := st.Load(args[0])
			if err != nil {
				return err
			}
			for _, turn := range turns {
				role := "User"
				if turn.Role == session.RoleAssistant {
					role = "Assistant"
				}
				fmt.Printf("%s: %s\n", role, turn.Text)
			}
			return nil
		},
	}
}

func sessionsPruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Quarantine unreadable session files",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cfg, err := openSessionStore(cmd)
			if err != nil {
				return err
			}
			ids, err := st.List()
			if err != nil {
				return err
			}

			// Load quarantines anything unparsable as a side effect; the
			// backup dir delta is the count of files it moved.
			before := countFiles(cfg.Sessions.BackupDir)
			for _, id := range ids {
				if _, err := st.Load(id); err != nil {
					fmt.Fprintf(os.Stderr, "session %s: %v\n", id, err)
				}
			}
			moved := countFiles(cfg.Sessions.BackupDir) - before

			fmt.Printf("scanned %d sessions, quarantined %d\n", len(ids), moved)
			return nil
		},
	}
}

func countFiles(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() {
			n++
		}
	}
	return n
}
