package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is stamped via -ldflags at release time.
var version = "0.1.0-dev"

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the medchat version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("medchat " + version)
		},
	}
}
