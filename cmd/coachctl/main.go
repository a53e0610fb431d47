package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCMD().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCMD() *cobra.Command {
	var server string
	var root = &cobra.Command{
		Use:          "coachctl",
		Short:        "Client for the explanation coach service",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&server, "server", getenv("COACH_SERVER", "http://localhost:8080"), "service base URL")

	client := func() *Client { return NewClient(server) }
	root.AddCommand(analyzeCMD(client), historyCMD(client), showCMD(client))
	return root
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
