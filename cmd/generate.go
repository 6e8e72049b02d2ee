package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	domainPost "github.com/imbizlab/groomflo-app/domains/post"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one week of pending posts for a business and print them as JSON",
	Run:   runGenerate,
}

func init() {
	generateCmd.Flags().String("business", "", "business id (required)")
	generateCmd.Flags().String("week-start", "", "first day of the week, YYYY-MM-DD (default: today in the business timezone)")
	_ = generateCmd.MarkFlagRequired("business")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) {
	businessID, _ := cmd.Flags().GetString("business")
	weekStart, _ := cmd.Flags().GetString("week-start")

	initApp()
	defer StopApp()

	response, err := postUsecase.GenerateWeek(context.Background(), businessID, domainPost.GenerateWeekRequest{
		WeekStartDate: weekStart,
	})
	if err != nil {
		logrus.Errorf("[GENERATE] %v", err)
		StopApp()
		os.Exit(1)
	}

	out, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		logrus.Fatalf("[GENERATE] %v", err)
	}
	fmt.Println(string(out))
	logrus.Infof("[GENERATE] %d posts created for the week of %s", len(response.Posts), response.Week.WeekStarting.Format("2006-01-02"))
}
