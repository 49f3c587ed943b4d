// Command contact submits a message through the portfolio contact API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/portfolio/backend/pkg/contactclient"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	var form contactclient.Form
	var apiURL string
	var timeout time.Duration

	flagSet := pflag.NewFlagSet("contact", pflag.ContinueOnError)
	flagSet.StringVar(&apiURL, "api", envOr("CONTACT_API_URL", "http://localhost:5001"), "base URL of the contact API")
	flagSet.StringVarP(&form.Name, "name", "n", "", "your name")
	flagSet.StringVarP(&form.Email, "email", "e", "", "your email address")
	flagSet.StringVarP(&form.Subject, "subject", "s", "", "message subject")
	flagSet.StringVarP(&form.Message, "message", "m", "", `message body ("-" reads stdin)`)
	flagSet.DurationVar(&timeout, "timeout", 60*time.Second, "overall request timeout")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	if form.Message == "-" {
		body, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}
		form.Message = strings.TrimRight(string(body), "\n")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := contactclient.New(apiURL, nil).Submit(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, result.Message)
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
