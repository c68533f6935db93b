// Command checkstore verifies the configured row store before deploying:
// it opens the store, prepares the header, parses every row and reports
// whether reminders are configured.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/xyz-asif/sheetodo/internal/config"
	"github.com/xyz-asif/sheetodo/internal/database"
	"github.com/xyz-asif/sheetodo/internal/features/todos"
	"github.com/xyz-asif/sheetodo/internal/pkg/logger"
	"github.com/xyz-asif/sheetodo/internal/pkg/validator"
)

func main() {
	cfg := config.Load()
	logger.SetDefault(logger.New(logger.ParseLevel(cfg.LogLevel)))

	if err := cfg.Validate(); err != nil {
		fail("Configuration invalid", err)
	}
	fmt.Printf("✅ Configuration loaded (store=%s, timezone=%s)\n", cfg.RowStore, cfg.Timezone)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Printf("\nTesting %s row store...\n", cfg.RowStore)
	store, release, err := database.OpenRowStore(ctx, cfg, todos.SheetLayout())
	if err != nil {
		fail("Row store connection failed", err)
	}
	defer release()
	fmt.Println("✅ Row store connected and header is current")

	list, err := todos.NewRepository(store, cfg.Timezone).List(ctx)
	if err != nil {
		fail("Reading todos failed", err)
	}
	open := todos.ApplyListOptions(list, todos.ListOptions{Status: todos.FilterOpen})
	fmt.Printf("✅ Parsed %d todos (%d open)\n", len(list), len(open))

	foreign := 0
	for _, t := range list {
		if !validator.IsValidUUID(t.ID) {
			foreign++
		}
	}
	if foreign > 0 {
		fmt.Printf("  ⚠️  %d rows carry ids that are not UUIDs (edited by hand?)\n", foreign)
	}

	fmt.Println("\nReminders:")
	if cfg.CronAuthToken == "" {
		fmt.Println("  ⚠️  CRON_AUTH_TOKEN not set: /cron/remind rejects every call")
	} else {
		fmt.Println("  ✅ CRON_AUTH_TOKEN set")
	}
	if cfg.LineChannelAccessToken == "" || cfg.LineUserID == "" {
		fmt.Println("  ⚠️  LINE_CHANNEL_ACCESS_TOKEN or LINE_USER_ID missing: pushes will fail")
	} else {
		fmt.Println("  ✅ LINE push configured")
	}

	fmt.Println("\n🎉 All systems ready!")
}

func fail(what string, err error) {
	fmt.Fprintf(os.Stderr, "❌ %s: %v\n", what, err)
	os.Exit(1)
}
