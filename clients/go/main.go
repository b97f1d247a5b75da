// linkdrop CLI - command line client for a linkdrop server
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/eldtechnologies/linkdrop/clients/go/linkdrop"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	client := linkdrop.NewClient(os.Getenv("LINKDROP_URL"))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := os.Args[1]

	switch cmd {
	case "health":
		resp, err := client.Health(ctx)
		exitOnError(err)
		printJSON(resp)

	case "links":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: linkdrop links <chat_id> [YYYY-MM-DD]")
			os.Exit(1)
		}
		date := ""
		if len(os.Args) > 3 {
			date = os.Args[3]
		}
		resp, err := client.Links(ctx, parseChatID(os.Args[2]), date)
		exitOnError(err)
		fmt.Printf("%s (%d links)\n", resp.Date, resp.Count)
		for _, link := range resp.Links {
			fmt.Printf("  %s\n", link)
		}

	case "topic":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: linkdrop topic <chat_id>")
			os.Exit(1)
		}
		resp, err := client.Topic(ctx, parseChatID(os.Args[2]))
		exitOnError(err)
		printJSON(resp)

	case "send":
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, "Usage: linkdrop send <chat_id> <text>")
			os.Exit(1)
		}
		status, err := client.Send(ctx, parseChatID(os.Args[2]), os.Args[3])
		exitOnError(err)
		fmt.Println(status)

	case "help", "--help", "-h":
		usage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`linkdrop CLI - inspect and exercise a linkdrop server

Usage: linkdrop <command> [options]

Commands:
  links <chat_id> [date]   List links captured for a chat (default: today, UTC)
  topic <chat_id>          Show whether a chat's topic is closed
  send <chat_id> <text>    Post a fake Telegram message to the webhook
  health                   Check server health

Environment:
  LINKDROP_URL   Server URL (default: http://localhost:8080)`)
}

func parseChatID(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid chat id: %s\n", s)
		os.Exit(1)
	}
	return id
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}
