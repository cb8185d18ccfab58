package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zhouzirui/startup-mentor/backend/internal/config"
	"github.com/zhouzirui/startup-mentor/backend/internal/model/mentor"
	"github.com/zhouzirui/startup-mentor/backend/internal/service/ai"
)

func useScripted(t *testing.T) mentor.Mentor {
	t.Helper()
	store := mentor.NewMemoryStore(mentor.Seed())
	current = app{
		cfg:       &config.Config{AI: config.AIConfig{TurnTimeout: time.Second}},
		logger:    zap.NewNop(),
		mentors:   store,
		transport: ai.NewScriptedTransport(0),
	}
	m, ok := store.FindByID("elon")
	require.True(t, ok)
	return m
}

func TestRunChatRendersTurns(t *testing.T) {
	m := useScripted(t)
	in := strings.NewReader("Rockets for pets\n   \n/history\n/quit\n")
	var out bytes.Buffer

	require.NoError(t, runChat(context.Background(), in, &out, m, current.transport))

	transcript := out.String()
	reply := ai.NewScriptedTransport(0).Reply(ai.ChatRequest{Mentor: m, UserText: "Rockets for pets"})
	require.Contains(t, transcript, reply)
	require.Contains(t, transcript, "user: Rockets for pets")
	require.Contains(t, transcript, "model: "+reply)
}

func TestMentorsCommandSearch(t *testing.T) {
	useScripted(t)
	var out bytes.Buffer
	mentorsCmd.SetOut(&out)

	require.NoError(t, mentorsCmd.RunE(mentorsCmd, []string{"bezos"}))
	require.Contains(t, out.String(), "Jeff Bezos")
	require.NotContains(t, out.String(), "Elon Musk")
}

func TestDossierCommand(t *testing.T) {
	useScripted(t)
	var out bytes.Buffer
	dossierCmd.SetOut(&out)
	dossierCmd.SetContext(context.Background())

	require.NoError(t, dossierCmd.RunE(dossierCmd, []string{"pavel_durov", "Private", "messenger"}))
	require.Contains(t, out.String(), "Tech Stack")
	require.Contains(t, out.String(), "Private messenger")
}
