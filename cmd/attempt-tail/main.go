// attempt-tail follows the attempt event topics and prints each event.
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"explanation-coach-service/internal/events"
)

func main() {
	var (
		brokers       string
		topicSaved    string
		topicCompared string
		since         time.Duration
	)
	var root = &cobra.Command{
		Use:          "attempt-tail",
		Short:        "Print attempt events as they are published",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			list := strings.Split(brokers, ",")
			printer := &Printer{out: color.Output}

			faint.Fprintf(color.Output, "Consuming %s, %s from %s (last %s)\n", topicSaved, topicCompared, brokers, since)

			var wg sync.WaitGroup
			for _, topic := range []string{topicSaved, topicCompared} {
				wg.Add(1)
				go func(topic string) {
					defer wg.Done()
					consume(ctx, list, topic, since, printer)
				}(topic)
			}
			wg.Wait()
			return nil
		},
	}
	root.Flags().StringVar(&brokers, "brokers", "localhost:9092", "Kafka brokers (comma-separated)")
	root.Flags().StringVar(&topicSaved, "topic-saved", events.EventAttemptSaved, "attempt saved topic")
	root.Flags().StringVar(&topicCompared, "topic-compared", events.EventAttemptCompared, "attempt compared topic")
	root.Flags().DurationVar(&since, "since", time.Hour, "replay events newer than this")

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
