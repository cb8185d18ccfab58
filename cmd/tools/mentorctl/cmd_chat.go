package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/startup-mentor/backend/internal/model/mentor"
	"github.com/zhouzirui/startup-mentor/backend/internal/service/ai"
	chatService "github.com/zhouzirui/startup-mentor/backend/internal/service/chat"
)

var chatCmd = &cobra.Command{
	Use:   "chat <mentorID>",
	Short: "Open an interactive chat with a mentor",
	Long: `Open an interactive chat with a mentor. Each line you type is one turn.

In-chat commands:
  /history - print the settled turn records
  /quit    - leave the chat`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, ok := current.mentors.FindByID(args[0])
		if !ok {
			return fmt.Errorf("unknown mentor %q", args[0])
		}
		return runChat(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), m, current.transport)
	},
}

// runChat is a line-oriented REPL. Rendering is driven entirely by controller events.
func runChat(ctx context.Context, in io.Reader, out io.Writer, m mentor.Mentor, transport ai.Transport) error {
	controller := chatService.NewController(m, transport,
		chatService.WithLogger(current.logger),
		chatService.WithTurnTimeout(current.cfg.AI.TurnTimeout),
	)
	defer controller.Close()

	renderer := newTranscriptRenderer(out, m)
	unsubscribe := controller.Subscribe(renderer.Handle)
	defer unsubscribe()

	renderMentorCard(out, m)
	fmt.Fprintln(out, mutedStyle.Render("type your pitch, /quit to leave"))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, promptStyle.Render("you> "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "/quit", "/exit":
			return nil
		case "/history":
			renderHistory(out, controller.History())
			continue
		}

		if !controller.Submit(line) {
			continue
		}
		if err := controller.Wait(ctx); err != nil {
			return err
		}
	}
}
