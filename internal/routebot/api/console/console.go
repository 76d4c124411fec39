// Package console is a line based transport for running the bot locally.
// Input lines look like "sender: message text"; replies are printed as "-> sender: text".
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// DefaultSender is used for input lines without a "sender:" prefix.
const DefaultSender = "console"

// Console reads inbound messages from in and writes replies to out.
type Console struct {
	in  io.Reader
	out io.Writer
	mu  sync.Mutex // Serializes writes to out
}

// New creates a console transport.
func New(in io.Reader, out io.Writer) *Console {
	return &Console{in: in, out: out}
}

// SendMessage prints text addressed to recipientID.
func (c *Console) SendMessage(ctx context.Context, recipientID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.out, "-> %s: %s\n", recipientID, text); err != nil {
		return fmt.Errorf("write console reply: %w", err)
	}
	return nil
}

// Run feeds every non-empty input line to handle until the input ends or ctx is cancelled.
func (c *Console) Run(ctx context.Context, handle func(ctx context.Context, senderID, body string) error) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					if err != nil {
						return fmt.Errorf("read console input: %w", err)
					}
				default:
				}
				return nil
			}
			sender, body := ParseLine(line)
			if body == "" {
				continue
			}
			if err := handle(ctx, sender, body); err != nil {
				logrus.WithError(err).WithField("conversation", sender).Debug("Message handling failed")
			}
		}
	}
}

// ParseLine splits "sender: text" into its parts.
func ParseLine(line string) (sender, body string) {
	sender, body, found := strings.Cut(line, ":")
	if !found || strings.ContainsAny(strings.TrimSpace(sender), " \t") || strings.TrimSpace(sender) == "" {
		return DefaultSender, strings.TrimSpace(line)
	}
	return strings.TrimSpace(sender), strings.TrimSpace(body)
}
