package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/medassist-labs/medchat/internal/config"
	"github.com/medassist-labs/medchat/internal/store"
)

func userCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "user",
		Short: "Manage the identity directory",
	}
	root.AddCommand(userAddCmd(), userLsCmd())
	return root
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	return store.Open(cfg.Identity.DBPath)
}

func userAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a user in the identity directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			name, _ := cmd.Flags().GetString("name")
			mobile, _ := cmd.Flags().GetString("mobile")

			db, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			u := &store.User{
				ID:     uuid.New().String(),
				Email:  email,
				Name:   name,
				Mobile: mobile,
				Active: true,
			}
			if err := db.CreateUser(u); err != nil {
				return err
			}
			fmt.Println(u.ID)
			return nil
		},
	}
	cmd.Flags().String("email", "", "user email (required)")
	cmd.Flags().String("name", "", "display name")
	cmd.Flags().String("mobile", "", "mobile number")
	return cmd
}

func userLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			users, err := db.ListUsers()
			if err != nil {
				return err
			}
			for _, u := range users {
				state := "active"
				if !u.Active {
					state = "inactive"
				}
				fmt.Printf("%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Name, state)
			}
			return nil
		},
	}
}
