package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"explanation-coach-service/internal/models"
)

func analyzeCMD(client func() *Client) *cobra.Command {
	var (
		req             models.AnalysisRequest
		explanationFile string
		sourceFile      string
	)
	var analyze = &cobra.Command{
		Use:   "analyze",
		Short: "Analyze an explanation of a concept",
		RunE: func(cmd *cobra.Command, args []string) error {
			if explanationFile != "" {
				b, err := readInput(explanationFile)
				if err != nil {
					return err
				}
				req.Explanation = string(b)
			}
			if sourceFile != "" {
				b, err := os.ReadFile(sourceFile)
				if err != nil {
					return fmt.Errorf("read source: %w", err)
				}
				req.SourceText = string(b)
			}

			resp, err := client().Analyze(cmd.Context(), req)
			if err != nil {
				return err
			}
			printAnalysis(cmd.OutOrStdout(), resp)
			return nil
		},
	}
	analyze.Flags().StringVar(&req.Concept, "concept", "", "concept being explained")
	analyze.Flags().StringVar(&req.Explanation, "explanation", "", "explanation text")
	analyze.Flags().StringVarP(&explanationFile, "file", "f", "", "read the explanation from a file (- for stdin)")
	analyze.Flags().StringVar(&req.TargetAudience, "audience", "", "target audience (default set by the service)")
	analyze.Flags().StringVar(&sourceFile, "source", "", "reference document to ground the analysis")
	analyze.Flags().StringVar(&req.PreviousAttemptID, "previous", "", "previous attempt id to compare against")
	analyze.Flags().Float64Var(&req.TotalTimeSeconds, "total", 0, "recording length in seconds")
	analyze.Flags().Float64Var(&req.ActiveSpeakingSeconds, "active", 0, "active speaking time in seconds")
	_ = analyze.MarkFlagRequired("concept")

	return analyze
}

func historyCMD(client func() *Client) *cobra.Command {
	var limit int
	var history = &cobra.Command{
		Use:   "history",
		Short: "List recent attempts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			attempts, err := client().History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), attempts)
			return nil
		},
	}
	history.Flags().IntVarP(&limit, "limit", "n", 0, "number of attempts (0 = service default)")

	return history
}

func showCMD(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "show <attempt-id>",
		Short: "Show one attempt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := client().Attempt(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printAttempt(cmd.OutOrStdout(), a)
			return nil
		},
	}
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read explanation: %w", err)
	}
	return b, nil
}
