package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the publish worker and the daily digest without the http API",
	Run:   runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(_ *cobra.Command, _ []string) {
	initApp()
	startBackground()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logrus.Info("[WORKER] Reception of termination signal, shutting down gracefully...")
	StopApp()
}
