// Package main provides the user CLI entry point for testing.
package main

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"

	"github.com/junlend/web/internal/api/web"
	"github.com/junlend/web/internal/app/bootstrap"
	"github.com/junlend/web/internal/domain/wallet"
)

var (
	app        = kingpin.New("junlend-usercli", "JunLend web shell user client for testing")
	server     = app.Flag("server", "Server address").Default("http://localhost:8080").String()
	storageKey = app.Flag("storage-key", "Wallet library storage key").Default("wagmi").String()
	chains     = app.Flag("chain", "Supported chain ID (repeatable, first is the fallback)").Default("1").Int64List()

	// watch command
	watchCmd     = app.Command("watch", "Mount a live view and print frames and toasts")
	watchVisitor = watchCmd.Flag("visitor", "Visitor ID cookie to present").String()

	// decode command
	decodeCmd    = app.Command("decode", "Derive the first-paint wallet state from a Cookie header")
	decodeHeader = decodeCmd.Arg("cookie-header", "Raw Cookie header text").Required().String()

	// mint command
	mintCmd       = app.Command("mint", "Print a wallet session cookie for a connected account")
	mintAddress   = mintCmd.Arg("address", "Account address (0x...)").Required().String()
	mintChain     = mintCmd.Flag("chain-id", "Chain ID of the connection").Default("1").Int64()
	mintConnector = mintCmd.Flag("connector", "Connector ID").Default("injected").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	b := bootstrap.New(bootstrap.Config{
		StorageKey: *storageKey,
		ChainIDs:   *chains,
		Reconnect:  true,
	})

	// Execute command
	switch command {
	case watchCmd.FullCommand():
		watch(*server, *watchVisitor)
	case decodeCmd.FullCommand():
		decode(b, *decodeHeader)
	case mintCmd.FullCommand():
		mint(b, *mintAddress, *mintChain, *mintConnector)
	}
}

func watch(serverAddr, visitorID string) {
	u, err := url.Parse(serverAddr)
	if err != nil {
		fmt.Printf("Error: invalid server address: %v\n", err)
		os.Exit(1)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/live"

	header := http.Header{}
	if visitorID != "" {
		header.Set("Cookie", "vid="+visitorID)
	}

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err != nil {
		if resp != nil {
			fmt.Printf("Error: %v (status %d)\n", err, resp.StatusCode)
		} else {
			fmt.Printf("Error: %v\n", err)
		}
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Println("Live view mounted. Press Ctrl+C to exit.")

	// Handle shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nUnmounting...")
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
		os.Exit(0)
	}()

	for {
		var msg web.LiveMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				fmt.Println("Server closed the live view")
				return
			}
			fmt.Printf("Stream error: %v\n", err)
			return
		}
		printMessage(msg)
	}
}

func printMessage(msg web.LiveMessage) {
	switch msg.Type {
	case web.MessageFrame:
		if msg.Frame == nil {
			return
		}
		marker := " "
		if msg.Frame.Changed {
			marker = "*"
		}
		fmt.Printf("[frame %d]%s %s (index %d)\n", msg.Frame.Seq, marker, msg.Frame.Label, msg.Frame.Index)
	case web.MessageToast:
		if msg.Toast == nil {
			return
		}
		fmt.Printf("[toast %s] %s: %s\n", msg.Toast.ID, strings.ToUpper(string(msg.Toast.Kind)), msg.Toast.Message)
	default:
		fmt.Printf("[unknown %q]\n", msg.Type)
	}
}

func decode(b *bootstrap.Bootstrapper, header string) {
	if _, err := b.Parse(header); err != nil {
		fmt.Printf("No active session: %v\n", err)
	}
	state := b.FromCookieHeader(header)

	fmt.Printf("Status: %s\n", state.Status)
	fmt.Printf("Chain ID: %d\n", state.ChainID)
	if state.IsConnected() {
		fmt.Printf("Address: %s (%s)\n", state.Address, state.DisplayAddress())
		fmt.Printf("Connector: %s (%s)\n", state.Connector.Name, state.Connector.Type)
	}
}

func mint(b *bootstrap.Bootstrapper, address string, chainID int64, connectorID string) {
	normalized, err := wallet.NormalizeAddress(address)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	cookie, err := b.SessionCookie(wallet.Connection{
		Accounts: []string{normalized},
		ChainID:  chainID,
		Connector: wallet.Connector{
			ID:   connectorID,
			Name: connectorID,
			Type: connectorID,
			UID:  connectorID,
		},
	}, 0, false)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Cookie: %s=%s\n", cookie.Name, cookie.Value)
}
