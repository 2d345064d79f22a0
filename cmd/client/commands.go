package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/spf13/cobra"

	"github.com/dayanaadylkhanova/altcha-pow/internal/adapter/form"
	"github.com/dayanaadylkhanova/altcha-pow/internal/adapter/transport/tcp"
	"github.com/dayanaadylkhanova/altcha-pow/internal/service"
	"github.com/dayanaadylkhanova/altcha-pow/pkg/logger"
)

var errRejected = errors.New("solution rejected")

type options struct {
	logLevel string
	timeout  time.Duration
	addr     string
	url      string
	field    string
	retries  int
}

func newRootCmd() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:           "altcha-client",
		Short:         "Fetches, solves and submits ALTCHA proof-of-work challenges.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&o.logLevel, "log-level", getenv("LOG_LEVEL", "info"), "debug, info, warn or error")
	root.PersistentFlags().DurationVar(&o.timeout, "timeout", 30*time.Second, "overall deadline")

	solve := &cobra.Command{
		Use:   "solve <challenge|->",
		Short: "Solve a challenge given as JSON or base64 and print the encoded solution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd.Context(), o, cmd.InOrStdin(), cmd.OutOrStdout(), args[0])
		},
	}

	tcpCmd := &cobra.Command{
		Use:   "tcp",
		Short: "Run the line protocol against a TCP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTCP(cmd.Context(), o, cmd.OutOrStdout())
		},
	}
	tcpCmd.Flags().StringVar(&o.addr, "addr", getenv("SERVER_ADDR", "localhost:9090"), "server address")

	httpCmd := &cobra.Command{
		Use:   "http",
		Short: "Fetch a challenge over HTTP, solve it and post it to /verify",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHTTP(cmd.Context(), o, cmd.OutOrStdout())
		},
	}
	httpCmd.Flags().StringVar(&o.url, "url", getenv("SERVER_URL", "http://localhost:8080"), "server base URL")
	httpCmd.Flags().StringVar(&o.field, "field", form.FieldCurrent, "form field carrying the payload")
	httpCmd.Flags().IntVar(&o.retries, "retries", 3, "retries for transient HTTP failures")

	root.AddCommand(solve, tcpCmd, httpCmd)
	return root
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func (o *options) logger() *slog.Logger {
	return logger.NewJSON(logger.LevelFromEnv(o.logLevel))
}

func (o *options) deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, o.timeout)
}

// solveChallenge turns a raw challenge (JSON or base64) into an encoded solution.
func solveChallenge(ctx context.Context, raw []byte) (string, error) {
	ch, err := service.ParseChallenge(raw)
	if err != nil {
		return "", fmt.Errorf("parse challenge: %w", err)
	}
	sol, err := service.Solve(ctx, ch, 0, 0)
	if err != nil {
		return "", fmt.Errorf("solve: %w", err)
	}
	return service.EncodeSolution(sol)
}

func runSolve(ctx context.Context, o *options, in io.Reader, out io.Writer, arg string) error {
	ctx, cancel := o.deadline(ctx)
	defer cancel()

	raw := []byte(arg)
	if arg == "-" {
		b, err := io.ReadAll(io.LimitReader(in, 2*service.MaxPayloadSize))
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		raw = b
	}
	payload, err := solveChallenge(ctx, []byte(strings.TrimSpace(string(raw))))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, payload)
	return err
}

func runTCP(ctx context.Context, o *options, out io.Writer) error {
	log := o.logger()
	ctx, cancel := o.deadline(ctx)
	defer cancel()

	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", o.addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", o.addr, err)
	}
	defer conn.Close()
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}

	br := bufio.NewReader(conn)
	line, err := br.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read challenge: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == form.NotConfiguredMessage {
		return errors.New(line)
	}
	log.Debug("challenge received", "bytes", len(line))

	start := time.Now()
	payload, err := solveChallenge(ctx, []byte(line))
	if err != nil {
		return err
	}
	log.Debug("challenge solved", "took", time.Since(start).String())

	if _, err := io.WriteString(conn, payload+"\n"); err != nil {
		return fmt.Errorf("write solution: %w", err)
	}

	reply, err := br.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && reply != "") {
		return fmt.Errorf("read reply: %w", err)
	}
	reply = strings.TrimSpace(reply)
	fmt.Fprintln(out, reply)
	if reply != tcp.ReplyOK {
		return errRejected
	}
	return nil
}

func newHTTPClient(log *slog.Logger, retries int) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = retries
	c.RetryWaitMin = 100 * time.Millisecond
	c.RetryWaitMax = 2 * time.Second
	c.Logger = log
	return c
}

func runHTTP(ctx context.Context, o *options, out io.Writer) error {
	log := o.logger()
	ctx, cancel := o.deadline(ctx)
	defer cancel()

	client := newHTTPClient(log, o.retries)
	base := strings.TrimRight(o.url, "/")

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, base+"/challenge", nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch challenge: %w", err)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 2*service.MaxPayloadSize))
	_ = resp.Body.Close()
	if err != nil {
		return fmt.Errorf("read challenge: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch challenge: unexpected status %d", resp.StatusCode)
	}

	payload, err := solveChallenge(ctx, raw)
	if err != nil {
		return err
	}

	body := url.Values{o.field: {payload}}.Encode()
	req, err = retryablehttp.NewRequestWithContext(ctx, http.MethodPost, base+"/verify", strings.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err = client.Do(req)
	if err != nil {
		return fmt.Errorf("submit solution: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Verified bool   `json:"verified"`
		Error    string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode verify response: %w", err)
	}
	if !result.Verified {
		fmt.Fprintln(out, result.Error)
		return errRejected
	}
	fmt.Fprintln(out, "verified")
	return nil
}
