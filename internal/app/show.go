package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
)

// Show prints recent selected events.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show events")
	}
	if closeStore != nil {
		defer closeStore()
	}

	events, err := store.ListRecentEvents(ctx, opts.Limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintln(os.Stdout, "no events found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Date\tType\tExtremity\tChannels\tRecorded (UTC)")

	for _, event := range events {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\n",
			event.Date.UTC().Format("2006-01-02"),
			event.Type,
			formatDecimal(event.Score, 4),
			joinInline(event.Channels),
			event.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		)
	}

	writer.Flush()
	return nil
}

func joinInline(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ",")
}

func formatDecimal(d decimal.Decimal, places int32) string {
	return d.StringFixed(places)
}
