package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fardannozami/consistency-tracker/internal/app/usecase"
	"github.com/fardannozami/consistency-tracker/internal/config"
	"github.com/fardannozami/consistency-tracker/internal/infra/clock"
	"github.com/fardannozami/consistency-tracker/internal/infra/storage"
	"github.com/fardannozami/consistency-tracker/internal/infra/wa"

	walog "go.mau.fi/whatsmeow/util/log"
)

func main() {
	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Logger
	logger := walog.Stdout("Client", "INFO", true)

	// 3. State store
	store, closeStore, err := storage.Open(context.Background(), cfg.StoreBackend, cfg.StateDir, cfg.StateDBPath)
	if err != nil {
		log.Fatalf("Failed to open state store: %v", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Printf("Failed to close state store: %v", err)
		}
	}()

	// 4. Use Cases
	clk := clock.System{Location: cfg.Location}
	handleMessageUC := usecase.NewHandleMessageUsecase(
		usecase.NewTrackActivityUsecase(store, clk),
		usecase.NewGetStatsUsecase(store, clk),
		usecase.NewWeeklyRecapUsecase(store, clk),
		usecase.NewMonthlyCalendarUsecase(store, clk),
		cfg.DefaultActivity,
	)

	// 5. WhatsApp Service
	if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
		log.Fatalf("Failed to create session directory: %v", err)
	}
	waService := wa.NewService(cfg.SQLitePath, logger)

	// 6. Register Message Handler
	waService.SetMessageHandler(func(ctx context.Context, msg wa.IncomingMessage) {
		if cfg.GroupID != "" && msg.Chat.String() != cfg.GroupID {
			return
		}
		if msg.FromMe {
			return
		}

		pushName := msg.PushName
		if pushName == "" {
			pushName = "Unknown"
		}

		log.Printf("Message from %s (%s): %s", pushName, msg.SenderID, msg.Text)

		response, err := handleMessageUC.Execute(ctx, msg.SenderID, pushName, msg.Text)
		if err != nil {
			log.Printf("Error handling message: %v", err)
			return
		}
		if response == "" {
			return
		}

		delayMs := cfg.ReplyDelayMinMs
		if cfg.ReplyDelayMaxMs > cfg.ReplyDelayMinMs {
			delayMs = cfg.ReplyDelayMinMs + rand.Intn(cfg.ReplyDelayMaxMs-cfg.ReplyDelayMinMs+1)
		}
		if delayMs > 0 {
			if cfg.ShowTyping {
				waService.SetTyping(ctx, msg.Chat, true)
			}
			time.Sleep(time.Duration(delayMs) * time.Millisecond)
			if cfg.ShowTyping {
				waService.SetTyping(ctx, msg.Chat, false)
			}
		}

		if err := waService.Reply(ctx, msg.Chat, response); err != nil {
			log.Printf("Failed to send response: %v", err)
		}
	})

	// 7. Initialize Client (session store, device) without connecting
	ctx := context.Background()
	if err := waService.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize WhatsApp service: %v", err)
	}

	// 8. Connect / Login
	switch {
	case waService.IsLoggedIn():
		if err := waService.Connect(); err != nil {
			log.Fatalf("Failed to connect: %v", err)
		}
		log.Println("Client is already logged in.")
	case cfg.BotPhone != "":
		if err := waService.Connect(); err != nil {
			log.Fatalf("Failed to connect for pairing: %v", err)
		}
		log.Println("Not logged in. Attempting to pair with phone:", cfg.BotPhone)
		code, err := waService.Pair(ctx, cfg.BotPhone)
		if err != nil {
			log.Printf("Failed to generate pair code: %v", err)
		} else {
			log.Printf("PAIR CODE: %s", code)
			log.Println("Verify this code on WhatsApp (Linked Devices > Link with phone number)")
		}
	default:
		log.Println("Not logged in. BOT_PHONE not set. Printing QR...")
		go func() {
			if err := waService.PrintQR(ctx); err != nil {
				log.Printf("QR login failed: %v", err)
			}
		}()
	}

	log.Println("Bot is running... Press Ctrl+C to exit.")

	// 9. Wait for OS Signal
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("Shutting down...")
	waService.Disconnect()
}
