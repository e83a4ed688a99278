package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "medchat",
		Short:        "medchat — conversational medical assistant backend",
		Long:         "Serves the chat API in front of the generative language model, with durable per-session history and upstream credential rotation.",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "medchat.yaml", "config file path")

	root.AddCommand(
		serveCmd(),
		sessionsCmd(),
		userCmd(),
		versionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
