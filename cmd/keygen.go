package cmd

import (
	"fmt"

	"github.com/imbizlab/groomflo-app/pkg/crypto"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Print a new APP_ENCRYPTION_KEY for access token encryption",
	Run: func(_ *cobra.Command, _ []string) {
		key, err := crypto.GenerateKey()
		if err != nil {
			logrus.Fatalf("[KEYGEN] %v", err)
		}
		fmt.Println(key)
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}
