// Package main provides the admin CLI entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
	"github.com/joho/godotenv"

	apiconnect "github.com/junlend/web/internal/api/connect"
	"github.com/junlend/web/internal/api/connect/adminv1"
)

var (
	app     = kingpin.New("junlend-admincli", "JunLend web shell admin client")
	server  = app.Flag("server", "Server address").Default("http://localhost:8080").String()
	token   = app.Flag("token", "Admin token (or set ADMIN_TOKEN env)").Envar("ADMIN_TOKEN").String()
	timeout = app.Flag("timeout", "Request timeout").Default("10s").Duration()

	// status command
	statusCmd = app.Command("status", "Get instance status")

	// list-views command
	listCmd = app.Command("list-views", "List mounted live views").Alias("list")

	// broadcast command
	broadcastCmd     = app.Command("broadcast", "Show a toast on every mounted view")
	broadcastKind    = broadcastCmd.Flag("kind", "Toast kind").Default("info").Enum("info", "success", "error")
	broadcastMessage = broadcastCmd.Arg("message", "Toast message").Required().String()

	// send-toast command
	sendCmd     = app.Command("send-toast", "Queue a toast for one visitor")
	sendKind    = sendCmd.Flag("kind", "Toast kind").Default("info").Enum("info", "success", "error")
	sendVisitor = sendCmd.Arg("visitor-id", "Visitor ID (UUID)").Required().String()
	sendMessage = sendCmd.Arg("message", "Toast message").Required().String()

	// stop command
	stopCmd = app.Command("stop", "Stop serving and close live views")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Check admin token
	if *token == "" {
		fail("admin token is required (use --token or ADMIN_TOKEN env)")
	}

	client := adminv1.NewAdminServiceClient(
		http.DefaultClient,
		*server,
		connect.WithInterceptors(apiconnect.NewTokenInterceptor(*token)),
	)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// Execute command
	switch command {
	case statusCmd.FullCommand():
		status(ctx, client)
	case listCmd.FullCommand():
		listViews(ctx, client)
	case broadcastCmd.FullCommand():
		broadcast(ctx, client, *broadcastKind, *broadcastMessage)
	case sendCmd.FullCommand():
		sendToast(ctx, client, *sendVisitor, *sendKind, *sendMessage)
	case stopCmd.FullCommand():
		stopServing(ctx, client)
	}
}

func status(ctx context.Context, client *adminv1.AdminServiceClient) {
	resp, err := client.GetStatus(ctx, connect.NewRequest(&adminv1.GetStatusRequest{}))
	if err != nil {
		fail(err.Error())
	}

	s := resp.Msg
	fmt.Println(color.CyanString("\n=== INSTANCE STATUS ==="))
	fmt.Printf("Instance ID: %s\n", s.InstanceID)
	fmt.Printf("Phase: %s\n", formatPhase(s.Phase))
	fmt.Printf("Accepting Connects: %v\n", s.Accepting)
	fmt.Printf("Uptime: %s\n", time.Duration(s.UptimeSeconds)*time.Second)
	fmt.Printf("Live Views: %d (visitors: %d)\n", s.ViewCount, s.VisitorCount)
	fmt.Printf("Visitors With Queued Toasts: %d\n", s.QueuedVisitors)
	fmt.Printf("Rotation: %v every %dms\n", s.Labels, s.PeriodMs)
	fmt.Println()
}

func listViews(ctx context.Context, client *adminv1.AdminServiceClient) {
	resp, err := client.ListViews(ctx, connect.NewRequest(&adminv1.ListViewsRequest{}))
	if err != nil {
		fail(err.Error())
	}

	fmt.Printf("Live views (%d):\n", len(resp.Msg.Views))
	for _, v := range resp.Msg.Views {
		last := v.LastSentAt
		if last == "" {
			last = "never"
		}
		fmt.Printf("  %s: visitor=%s addr=%s (frames: %d, toasts: %d, mounted: %s, last sent: %s)\n",
			color.CyanString(v.ViewID), v.VisitorID, v.RemoteAddr,
			v.FramesSent, v.ToastsSent, v.MountedAt, last)
		if v.UserAgent != "" {
			fmt.Printf("    %s\n", color.BlueString(v.UserAgent))
		}
	}
}

func broadcast(ctx context.Context, client *adminv1.AdminServiceClient, kind, message string) {
	resp, err := client.BroadcastToast(ctx, connect.NewRequest(&adminv1.BroadcastToastRequest{
		Kind:    kind,
		Message: message,
	}))
	if err != nil {
		fail(err.Error())
	}

	if resp.Msg.Success {
		fmt.Println(color.GreenString("Toast %s delivered to %d view(s)", resp.Msg.ToastID, resp.Msg.Delivered))
	} else {
		fmt.Println(color.YellowString("Failed: %s", resp.Msg.Message))
	}
}

func sendToast(ctx context.Context, client *adminv1.AdminServiceClient, visitorID, kind, message string) {
	resp, err := client.SendToast(ctx, connect.NewRequest(&adminv1.SendToastRequest{
		VisitorID: visitorID,
		Kind:      kind,
		Message:   message,
	}))
	if err != nil {
		fail(err.Error())
	}

	if resp.Msg.Success {
		fmt.Println(color.GreenString("Toast %s queued for %s", resp.Msg.ToastID, visitorID))
	} else {
		fmt.Println(color.YellowString("Failed: %s", resp.Msg.Message))
	}
}

func stopServing(ctx context.Context, client *adminv1.AdminServiceClient) {
	resp, err := client.StopServing(ctx, connect.NewRequest(&adminv1.StopServingRequest{}))
	if err != nil {
		fail(err.Error())
	}

	if resp.Msg.Success {
		fmt.Println(color.GreenString("Instance stopped"))
	} else {
		fmt.Println(color.YellowString("Failed: %s", resp.Msg.Message))
	}
}

func formatPhase(phase string) string {
	switch phase {
	case "serving":
		return color.GreenString("Serving")
	case "starting":
		return color.YellowString("Starting")
	case "draining":
		return color.MagentaString("Draining")
	case "stopped":
		return color.RedString("Stopped")
	default:
		return color.HiRedString("Unknown (%s)", phase)
	}
}

func fail(msg string) {
	fmt.Println(color.RedString("Error: %s", msg))
	os.Exit(1)
}
