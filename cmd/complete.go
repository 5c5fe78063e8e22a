package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"quillstream/internal/client"
)

const completeUsage = `Usage:
  quillstream complete [--url <url>] --option <name> [--command <text>] [--lang en|ja] [--format text|html] <text>

Flags:
  --url     string   Generate endpoint (default "http://127.0.0.1:3000/generate")
  --option  string   Editing command, see "quillstream commands" (default "continue")
  --command string   Free-form instruction for the "zap" option
  --lang    string   Prompt language override
  --format  string   Input format: text or html`

func complete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("complete", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, completeUsage)
	}

	var url string
	var opts client.Options
	fs.StringVar(&url, "url", "http://127.0.0.1:3000/generate", "generate endpoint")
	fs.StringVar(&opts.Option, "option", "continue", "editing command")
	fs.StringVar(&opts.Command, "command", "", "instruction for zap")
	fs.StringVar(&opts.Language, "lang", "", "prompt language")
	fs.StringVar(&opts.Format, "format", "", "input format")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("parse complete flags: %w", err)
	}

	text := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(text) == "" {
		return errors.New("complete requires the text to work on")
	}

	printed := 0
	c := client.New(url, nil, client.Callbacks{
		OnUpdate: func(completion string) {
			fmt.Print(completion[printed:])
			printed = len(completion)
		},
	})

	_, err := c.Complete(ctx, text, opts)
	fmt.Println()
	if errors.Is(err, client.ErrRateLimited) {
		return errors.New(client.RateLimitMessage)
	}
	return err
}
