package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/sakhi/backend/internal/app"
	chatmodel "github.com/zhouzirui/sakhi/backend/internal/model/chat"
	"github.com/zhouzirui/sakhi/backend/internal/service/chat"
)

func newChatCmd() *cobra.Command {
	var (
		topic string
		mode  string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the companion in the terminal (empty line or /quit exits)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if mode != "" {
				cfg.Companion.Mode = mode
			}

			application, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer application.Shutdown()

			return chatLoop(cmd, application.Chat(), topic)
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "opening topic for the greeting")
	cmd.Flags().StringVar(&mode, "mode", "", "override COMPANION_MODE (local, remote-text, remote-text-speech)")
	return cmd
}

func chatLoop(cmd *cobra.Command, svc *chat.Service, topic string) error {
	out := cmd.OutOrStdout()

	session, err := svc.Start(cmd.Context(), topic, nil)
	if err != nil {
		return err
	}
	defer svc.End(cmd.Context(), session.ID)
	printReply(out, session)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "you> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "/quit" {
			return nil
		}

		session, err = svc.SendText(cmd.Context(), session.ID, line, nil)
		if err != nil {
			return err
		}
		printReply(out, session)
	}
}

func printReply(out io.Writer, session chatmodel.Session) {
	msg, ok := session.Last()
	if !ok || msg.Author != chatmodel.AuthorCompanion {
		return
	}
	if msg.Kind == chatmodel.KindAudio {
		fmt.Fprintf(out, "sakhi> [voice reply %.1fs] %s\n", msg.DurationSeconds, msg.Text)
		return
	}
	fmt.Fprintf(out, "sakhi> %s\n", msg.Text)
}
