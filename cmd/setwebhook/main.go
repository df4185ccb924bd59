package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Rrens/telegram-gemini-bot/internal/config"
	"github.com/Rrens/telegram-gemini-bot/internal/telegram"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	infoOnly := flag.Bool("info", false, "print the current webhook registration and exit")
	url := flag.String("url", "", "webhook URL (defaults to WEBHOOK_URL)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	bot, err := telegram.NewBot(cfg.Telegram.BotToken, cfg.Telegram.APIEndpoint, cfg.Telegram.BotUsername, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to Telegram: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Connected as @%s\n", bot.Username())

	if !*infoOnly {
		target := *url
		if target == "" {
			target = cfg.Telegram.WebhookURL
		}
		if target == "" {
			fmt.Fprintln(os.Stderr, "No webhook URL: pass -url or set WEBHOOK_URL")
			os.Exit(1)
		}

		if err := bot.SetWebhook(target); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Webhook set to %s\n", target)
	}

	info, err := bot.WebhookInfo()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	fmt.Printf("URL:              %s\n", info.URL)
	fmt.Printf("Pending updates:  %d\n", info.PendingUpdateCount)
	if info.LastErrorMessage != "" {
		fmt.Printf("Last error:       %s\n", info.LastErrorMessage)
	}
}
