// ABOUTME: Terminal chat client driving the widget engine against the booking backend
// ABOUTME: Readline-style prompt loop with rating commands and session close on exit

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"

	"github.com/comp423-25s/csxl-a2/internal/auth"
	"github.com/comp423-25s/csxl-a2/internal/backend"
	"github.com/comp423-25s/csxl-a2/internal/config"
	"github.com/comp423-25s/csxl-a2/internal/feedback"
	"github.com/comp423-25s/csxl-a2/internal/intent"
	"github.com/comp423-25s/csxl-a2/internal/record"
	"github.com/comp423-25s/csxl-a2/internal/session"
	"github.com/comp423-25s/csxl-a2/internal/widget"
)

func main() {
	configPath := flag.String("config", defaultConfigPath(), "path to config file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configPath); err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Logging.Level)
	slog.SetDefault(logger)

	repo, closeRepo, err := buildRepository(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	retention, err := cfg.retention()
	if err != nil {
		return err
	}

	userID, err := auth.UserIDFromToken(cfg.Backend.Token)
	if err != nil {
		logger.Warn("could not read user id from token, submitting anonymously", "error", err)
	}

	client := backend.NewClient(cfg.Backend.URL, cfg.Backend.Token, nil, logger)
	sessions := session.NewStore(repo, retention, logger)
	ratings := feedback.New(sessions, logger)
	submitter := record.NewSubmitter(client, logger)
	w := widget.New(sessions, ratings, submitter, client, userID, logger)

	messages, err := w.Open(ctx)
	if err != nil {
		return fmt.Errorf("opening session: %w", err)
	}
	for _, m := range messages {
		printMessage(m, intent.CategoryNone)
	}

	return promptLoop(ctx, w)
}

// promptLoop reads user input until EOF or /quit, closing (and submitting)
// the session on the way out.
func promptLoop(ctx context.Context, w *widget.Widget) error {
	green := color.New(color.FgGreen)
	scanner := bufio.NewScanner(os.Stdin)

	var feedbackText string
	for {
		green.Print("you> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "/quit" || line == "/exit":
			if err := w.Close(ctx, feedbackText); err != nil {
				return err
			}
			fmt.Println("bye!")
			return nil

		case line == "/clear":
			if err := w.Reset(ctx); err != nil {
				color.Red("clear failed: %v\n", err)
			} else {
				fmt.Println("session cleared")
			}

		case strings.HasPrefix(line, "/rate "):
			handleRate(ctx, w, line)

		case strings.HasPrefix(line, "/feedback "):
			feedbackText = strings.TrimSpace(strings.TrimPrefix(line, "/feedback "))
			fmt.Println("feedback noted, submitted when the chat closes")

		case line == "/help":
			printHelp()

		default:
			reply, err := w.Send(ctx, line)
			if err != nil {
				return err
			}
			if reply != nil {
				printMessage(reply.Message, reply.Category)
			}
		}
	}

	if err := scanner.Err(); err != nil && err != io.EOF {
		return err
	}
	// EOF closes the session the same way /quit does
	return w.Close(ctx, feedbackText)
}

func handleRate(ctx context.Context, w *widget.Widget, line string) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		color.Red("usage: /rate <message-id> <stars 1-5>\n")
		return
	}
	id, err1 := strconv.Atoi(fields[1])
	stars, err2 := strconv.Atoi(fields[2])
	if err1 != nil || err2 != nil {
		color.Red("usage: /rate <message-id> <stars 1-5>\n")
		return
	}
	if err := w.Rate(ctx, id, stars); err != nil {
		color.Red("rating failed: %v\n", err)
		return
	}
	fmt.Printf("rated message %d: %d star(s)\n", id, stars)
}

func printMessage(m session.Message, category intent.Category) {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	if m.Sender == session.SenderBot {
		cyan.Printf("bot #%d> ", m.ID)
		fmt.Print(m.Text)
		if badge := badgeFor(category); badge != "" {
			yellow.Printf("  [%s]", badge)
		}
		fmt.Println()
	} else {
		fmt.Printf("you #%d> %s\n", m.ID, m.Text)
	}
}

// badgeFor renders the confirmation badge for classified bot replies.
func badgeFor(category intent.Category) string {
	switch category {
	case intent.CategoryReservationCreated:
		return "reservation confirmed"
	case intent.CategoryReservationChanged:
		return "reservation updated"
	case intent.CategoryReservationCancelled:
		return "reservation cancelled"
	case intent.CategoryOfficeHourPending:
		return "ticket pending"
	case intent.CategoryOfficeHourConfirmed:
		return "ticket submitted"
	default:
		return ""
	}
}

func printHelp() {
	yellow := color.New(color.FgYellow)
	yellow.Println("Commands:")
	fmt.Println("  /rate <id> <stars>   Rate a bot message 1-5")
	fmt.Println("  /feedback <text>     Set written feedback for this session")
	fmt.Println("  /clear               Reset the session to the greeting")
	fmt.Println("  /quit                Close the chat (submits the conversation)")
	fmt.Println("  anything else        Send a message to the assistant")
}

// buildRepository constructs the configured session repository.
func buildRepository(cfg *Config) (session.Repository, func(), error) {
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.Session.RedisAddr})
		prefix := cfg.Session.RedisPrefix
		if prefix == "" {
			prefix = "xl-chat"
		}
		repo := session.NewRedisRepository(client, prefix, 0)
		return repo, func() { repo.Close() }, nil

	case config.SessionBackendMemory:
		return session.NewMemoryRepository(), func() {}, nil

	default: // sqlite
		path := cfg.Session.DatabasePath
		if path == "" {
			path = defaultDatabasePath()
		}
		repo, err := session.NewSQLiteRepository(path)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { repo.Close() }, nil
	}
}

func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn // quiet by default, it's a chat UI
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
