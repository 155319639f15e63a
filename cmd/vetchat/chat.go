package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"vetchat/relay/pkg/cli"
	"vetchat/relay/pkg/config"
	"vetchat/relay/pkg/conversation"
	"vetchat/relay/pkg/knowledge"
	"vetchat/relay/pkg/prompt"
	"vetchat/relay/pkg/security/secrets"
)

const chatHelp = `Commands:
  /attach <path>...   attach photos, PDFs or text files to the next message
  /files              list pending attachments
  /remove <n>         drop pending attachment n
  /retry              resend the last message after an error
  /reset              start a new conversation
  /quit               leave`

type chatOptions struct {
	relayURL    string
	apiKey      string
	model       string
	pdfMode     string
	maxFileSize string
	maxHistory  int
	timeout     time.Duration
}

func newChatCmd(_ *rootOptions) *cobra.Command {
	opts := &chatOptions{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the FIP assistant through a relay",
		Long: `Start an interactive conversation with the FIP assistant.

Messages are sent through a running relay. The API key is taken from
--api-key, or OPENAI_API_KEY (a .env file is honoured). Leave both unset
when the relay holds the key.

` + chatHelp,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.relayURL, "relay", "http://127.0.0.1:8080/api/chat", "relay endpoint URL")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "OpenAI API key sent with each request")
	cmd.Flags().StringVar(&opts.model, "model", "", "model override (relay default when empty)")
	cmd.Flags().StringVar(&opts.pdfMode, "pdf-mode", string(conversation.PDFNative), "how PDFs are sent: native or text")
	cmd.Flags().StringVar(&opts.maxFileSize, "max-file-size", "10MiB", "largest file accepted for attachment")
	cmd.Flags().IntVar(&opts.maxHistory, "max-history", 0, "earlier messages sent with each turn (0 for all)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", conversation.DefaultClientTimeout, "deadline for one reply")
	return cmd
}

func runChat(cmd *cobra.Command, opts *chatOptions) error {
	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	conv, err := newConversation(ctx, opts)
	if err != nil {
		return err
	}

	session := &chatSession{
		conv: conv,
		in:   bufio.NewScanner(cmd.InOrStdin()),
		out:  cmd.OutOrStdout(),
	}
	if err := session.run(ctx); err != nil {
		return cli.NewCommandError("chat", err)
	}
	return nil
}

func newConversation(ctx context.Context, opts *chatOptions) (*conversation.Conversation, error) {
	maxBytes, err := humanize.ParseBytes(opts.maxFileSize)
	if err != nil {
		return nil, cli.NewConfigError("", fmt.Errorf("--max-file-size: %w", err))
	}

	var mode conversation.PDFMode
	switch conversation.PDFMode(opts.pdfMode) {
	case conversation.PDFNative, conversation.PDFText:
		mode = conversation.PDFMode(opts.pdfMode)
	default:
		return nil, cli.NewConfigError("", fmt.Errorf("--pdf-mode must be native or text, got %q", opts.pdfMode))
	}

	apiKey := opts.apiKey
	if apiKey == "" {
		apiKey, err = secrets.NewEnvProvider("").GetSecret(ctx, config.DefaultSecretName)
		if err != nil && !errors.Is(err, secrets.ErrNotFound) {
			return nil, err
		}
	}

	kb, err := knowledge.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge base: %w", err)
	}

	var promptOpts []prompt.Option
	if opts.maxHistory > 0 {
		promptOpts = append(promptOpts, prompt.WithMaxHistory(opts.maxHistory))
	}

	client := conversation.NewClient(opts.relayURL,
		conversation.WithAPIKey(apiKey),
		conversation.WithModel(opts.model),
		conversation.WithHTTPClient(&http.Client{Timeout: opts.timeout}),
	)
	encoder := conversation.NewEncoder(
		conversation.WithMaxFileBytes(int64(maxBytes)),
		conversation.WithPDFMode(mode),
	)
	return conversation.New(client, prompt.New(kb, promptOpts...), conversation.WithEncoder(encoder)), nil
}

// chatSession reads lines from in and runs them against conv.
type chatSession struct {
	conv *conversation.Conversation
	in   *bufio.Scanner
	out  io.Writer
}

func (s *chatSession) run(ctx context.Context) error {
	s.in.Buffer(make([]byte, 0, 64*1024), 1<<20)
	fmt.Fprintln(s.out, "FIP assistant. Type a question, or /help for commands.")

	for ctx.Err() == nil {
		fmt.Fprint(s.out, "> ")
		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}
		line := strings.TrimSpace(s.in.Text())
		if line == "" {
			continue
		}
		if s.handle(ctx, line) {
			return nil
		}
	}
	return nil
}

// handle runs one input line and reports whether the session should end.
func (s *chatSession) handle(ctx context.Context, line string) bool {
	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch command {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Fprintln(s.out, chatHelp)
	case "/attach":
		s.attach(ctx, strings.Fields(arg))
	case "/files":
		s.listPending()
	case "/remove":
		n, err := strconv.Atoi(arg)
		if err != nil || !s.conv.RemovePending(n-1) {
			fmt.Fprintf(s.out, "no pending attachment %q\n", arg)
			return false
		}
		fmt.Fprintf(s.out, "removed attachment %d\n", n)
	case "/retry":
		s.reply(s.conv.Retry(ctx))
	case "/reset":
		if err := s.conv.Reset(); err != nil {
			fmt.Fprintln(s.out, err)
			return false
		}
		fmt.Fprintln(s.out, "conversation cleared")
	default:
		if strings.HasPrefix(command, "/") {
			fmt.Fprintf(s.out, "unknown command %s, type /help\n", command)
			return false
		}
		fmt.Fprintln(s.out, "waiting for the assistant...")
		s.reply(s.conv.Send(ctx, line))
	}
	return false
}

func (s *chatSession) attach(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		fmt.Fprintln(s.out, "usage: /attach <path>...")
		return
	}

	files := make([]conversation.File, 0, len(paths))
	for _, path := range paths {
		f, err := conversation.ReadFile(path)
		if err != nil {
			fmt.Fprintln(s.out, err)
			return
		}
		files = append(files, f)
	}

	atts, err := s.conv.Attach(ctx, files...)
	if err != nil {
		fmt.Fprintf(s.out, "could not attach %v\n", err)
		return
	}
	for _, a := range atts {
		fmt.Fprintf(s.out, "attached %s\n", a)
	}
}

func (s *chatSession) listPending() {
	pending := s.conv.Pending()
	if len(pending) == 0 {
		fmt.Fprintln(s.out, "no pending attachments")
		return
	}
	for i, a := range pending {
		fmt.Fprintf(s.out, "%d. %s\n", i+1, a)
	}
}

func (s *chatSession) reply(text string, err error) {
	switch {
	case err == nil:
		fmt.Fprintf(s.out, "\n%s\n\n", text)
	case errors.Is(err, conversation.ErrEmptyTurn),
		errors.Is(err, conversation.ErrNothingToRetry),
		errors.Is(err, conversation.ErrBusy):
		fmt.Fprintln(s.out, err)
	default:
		slog.Debug("turn failed", "error", err)
		fmt.Fprintf(s.out, "%s\n(type /retry to send it again)\n", conversation.Describe(err))
	}
}
