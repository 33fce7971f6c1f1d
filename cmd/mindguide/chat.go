package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samber/do"
	"github.com/spf13/cobra"

	"github.com/Mahaveer86619/mindguide/internal/app/conversation"
	"github.com/Mahaveer86619/mindguide/internal/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Take an assessment in the terminal",
	Long:  `Runs one conversation against the configured backends, reading answers from stdin. Type 'restart' for a new test or 'quit' to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd)
	},
}

func init() {
	chatCmd.Flags().String("user", "local", "User ID the conversation is stored under")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// Keep stdout for the conversation.
	cfg.Log.Level = "warn"
	sink, err := initLogging(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = sink.Shutdown() }()

	user, err := cmd.Flags().GetString("user")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	di := newInjector(ctx, cfg)
	defer func() { _ = di.Shutdown() }()

	svc, err := do.Invoke[*conversation.Service](di)
	if err != nil {
		return err
	}
	userID := domain.UserID(user)
	out := cmd.OutOrStdout()

	start, err := svc.StartSession(ctx, conversation.StartSessionInput{UserID: userID})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n\n", start.Reply)

	in := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !in.Scan() {
			if err := in.Err(); err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			return nil
		}

		text := strings.TrimSpace(in.Text())
		switch strings.ToLower(text) {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "restart":
			start, err := svc.StartSession(ctx, conversation.StartSessionInput{UserID: userID})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\n\n", start.Reply)
			continue
		}

		reply, err := svc.SendMessage(ctx, conversation.SendMessageInput{UserID: userID, Text: text})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\n\n", reply.Reply)
	}
}
