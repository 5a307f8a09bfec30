// Command seacheck fetches one round of readings from a live IOC station and
// prints the resulting classification. Handy for verifying station codes and
// upstream reachability without starting the full service.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/misua/quake-monitor-web/internal/adapter/ioc"
	"github.com/misua/quake-monitor-web/internal/domain"
	"github.com/misua/quake-monitor-web/internal/observability"
	"github.com/misua/quake-monitor-web/internal/sealevel"
)

func main() {
	station := flag.String("station", "davo", "IOC station code")
	baseURL := flag.String("url", "https://www.ioc-sealevelmonitoring.org", "IOC facility base URL")
	timeout := flag.Duration("timeout", 15*time.Second, "fetch timeout")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()

	client := ioc.NewClient(*baseURL, *timeout, logger)
	monitor := sealevel.New(*station, client, logger, metrics)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout+5*time.Second)
	defer cancel()

	snapshot := monitor.Status(ctx)

	fmt.Printf("Station:     %s\n", *station)
	fmt.Printf("Status:      %s\n", snapshot.Status)
	if snapshot.Level != nil {
		fmt.Printf("Level:       %.2fm\n", *snapshot.Level)
	} else {
		fmt.Printf("Level:       n/a\n")
	}
	fmt.Printf("Trend:       %s\n", snapshot.Trend)
	fmt.Printf("Deviation:   %.2fm\n", snapshot.Deviation)
	fmt.Printf("Last Update: %s\n", snapshot.LastUpdate)
	fmt.Printf("Alert:       %v\n", snapshot.Alert)

	if snapshot.Status == domain.StatusNoData {
		os.Exit(1)
	}
}
