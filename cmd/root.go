package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/nguyentranbao-ct/community-realtime/internal/app"
	"github.com/nguyentranbao-ct/community-realtime/internal/kafka"
	"github.com/nguyentranbao-ct/community-realtime/internal/server"
)

var rootCmd = &cobra.Command{
	Use:           "community-realtime",
	Short:         "Real-time chat, presence and notification engine",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          serve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the event consumer",
	RunE:  serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command, args []string) error {
	app.Invoke(
		server.StartServer,
		kafka.StartConsumeMessages,
	).Run()
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
