// ABOUTME: Admin console CLI for chatbot analytics and room availability management
// ABOUTME: Stats, paginated conversation listing with load-more reveal, and toggles

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/comp423-25s/csxl-a2/internal/adminstats"
	"github.com/comp423-25s/csxl-a2/internal/backend"
	"github.com/comp423-25s/csxl-a2/internal/config"
	"github.com/comp423-25s/csxl-a2/internal/rooms"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, err := buildClient()
	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "stats":
		err = cmdStats(ctx, client)
	case "user-stats":
		err = cmdUserStats(ctx, client, args)
	case "list":
		err = cmdList(ctx, client, args)
	case "rooms":
		err = cmdRooms(ctx, client)
	case "toggle":
		err = cmdToggle(ctx, client, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	yellow := color.New(color.FgYellow)
	fmt.Println("Usage: xl-admin <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  stats                    Aggregate stats over all conversations")
	fmt.Println("  user-stats <user-id>     Aggregate stats for one user")
	fmt.Println("  list [flags]             Paginated conversation listing")
	fmt.Println("  rooms                    Show room availability")
	fmt.Println("  toggle <room-id>         Toggle a room's availability")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  XL_BACKEND_URL           Backend base URL (or use XL_ADMIN_CONFIG yaml)")
	fmt.Println("  XL_TOKEN                 Bearer token")
	fmt.Println("  XL_ADMIN_CONFIG          Path to a gateway yaml config file")
}

// buildClient assembles the backend client from the yaml config file when
// XL_ADMIN_CONFIG is set, otherwise straight from the environment.
func buildClient() (*backend.Client, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if path := os.Getenv("XL_ADMIN_CONFIG"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		return backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Token, nil, logger), nil
	}

	baseURL := os.Getenv("XL_BACKEND_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("XL_BACKEND_URL is required (or set XL_ADMIN_CONFIG)")
	}
	return backend.NewClient(baseURL, os.Getenv("XL_TOKEN"), nil, logger), nil
}

func cmdStats(ctx context.Context, client *backend.Client) error {
	records, err := client.ListConversations(ctx)
	if err != nil {
		return err
	}
	stats, err := adminstats.ComputeStats(records)
	if err != nil {
		return err
	}
	printStats(stats, len(records))
	return nil
}

func cmdUserStats(ctx context.Context, client *backend.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: xl-admin user-stats <user-id>")
	}
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %q", args[0])
	}

	stats, err := adminstats.UserStats(ctx, client, userID, nil)
	if err != nil {
		return err
	}
	printStats(stats, -1)
	return nil
}

func printStats(stats *adminstats.Stats, records int) {
	cyan := color.New(color.FgCyan)

	if records >= 0 {
		fmt.Printf("Conversations: %d\n", records)
	}
	if stats.AverageRating != nil {
		cyan.Printf("Average rating: %.2f\n", *stats.AverageRating)
	} else {
		fmt.Println("Average rating: no rated messages")
	}

	if len(stats.CountsByDay) == 0 {
		return
	}
	days := make([]string, 0, len(stats.CountsByDay))
	for day := range stats.CountsByDay {
		days = append(days, day)
	}
	// map order is random; show chronologically
	sort.Strings(days)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DAY\tMESSAGES")
	for _, day := range days {
		fmt.Fprintf(w, "%s\t%d\n", day, stats.CountsByDay[day])
	}
	w.Flush()
}

func cmdList(ctx context.Context, client *backend.Client, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	page := fs.Int("page", 1, "page number (1-based)")
	pageSize := fs.Int("page-size", adminstats.DefaultPageSize, "records per page")
	orderBy := fs.String("order-by", adminstats.OrderByDateDesc, "sort key (date-asc, date-desc, rating-asc, rating-desc)")
	filter := fs.String("filter", "", "backend filter expression")
	if err := fs.Parse(args); err != nil {
		return err
	}

	lister := adminstats.NewLister(client, nil)
	result, err := lister.List(ctx, backend.PageParams{
		Page:     *page,
		PageSize: *pageSize,
		OrderBy:  *orderBy,
		Filter:   *filter,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%d conversation(s) total\n", result.TotalCount)
	if len(result.Items) == 0 {
		fmt.Println("nothing on this page")
		return nil
	}

	// The reveal window is a view concern: it gates how many of the loaded
	// records are rendered, independent of the server paging above.
	reveal := adminstats.NewReveal(adminstats.DefaultPageSize)
	reveal.SetTotal(len(result.Items))
	stdin := bufio.NewScanner(os.Stdin)

	for {
		printRecords(result.Items[:reveal.Visible()])
		if !reveal.HasMore() {
			return nil
		}
		fmt.Printf("-- %d of %d shown, press enter for more (q to stop) -- ",
			reveal.Visible(), len(result.Items))
		if !stdin.Scan() || strings.TrimSpace(stdin.Text()) == "q" {
			return nil
		}
		reveal.LoadMore()
	}
}

func printRecords(items []backend.ConversationRecord) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tMESSAGES\tRATING\tOUTCOME")
	for _, rec := range items {
		created := rec.CreatedAt
		if t, err := time.Parse(time.RFC3339, rec.CreatedAt); err == nil {
			created = t.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\n",
			rec.ID, created, len(rec.ChatHistory), rec.Rating, rec.Outcome)
	}
	w.Flush()
}

func cmdRooms(ctx context.Context, client *backend.Client) error {
	ctrl := rooms.NewController(client, nil, nil)
	list, err := ctrl.Load(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROOM\tNICKNAME\tAVAILABLE")
	for _, room := range list {
		avail := color.RedString("no")
		if room.IsAvailable {
			avail = color.GreenString("yes")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", room.ID, room.Nickname, avail)
	}
	w.Flush()
	return nil
}

func cmdToggle(ctx context.Context, client *backend.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: xl-admin toggle <room-id>")
	}
	roomID := args[0]

	alert := func(id string, err error) {
		color.Red("toggle for %s was rejected: %v\n", id, err)
	}
	ctrl := rooms.NewController(client, alert, nil)
	if _, err := ctrl.Load(ctx); err != nil {
		return err
	}

	done, err := ctrl.Toggle(ctx, roomID)
	if err != nil {
		return err
	}

	res := <-done
	if res.Err != nil {
		// The alert already fired; the displayed value stays at the last
		// confirmed state.
		return nil
	}
	if res.Available {
		color.Green("%s is now available\n", roomID)
	} else {
		color.Yellow("%s is now unavailable\n", roomID)
	}
	return nil
}
