package ai

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/startup-mentor/backend/internal/model/chat"
)

func drain(t *testing.T, ctx context.Context, transport Transport, req ChatRequest) ([]string, error) {
	t.Helper()
	reader, err := transport.StreamChat(ctx, req)
	require.NoError(t, err)
	defer reader.Close()

	var fragments []string
	for {
		fragment, err := reader.Recv()
		if errors.Is(err, io.EOF) {
			return fragments, nil
		}
		if err != nil {
			return fragments, err
		}
		fragments = append(fragments, fragment)
	}
}

func TestScriptedStreamConcatenatesToReply(t *testing.T) {
	transport := NewScriptedTransport(0)
	req := ChatRequest{Mentor: seedMentor(t, "elon"), UserText: "Rockets for pets"}

	fragments, err := drain(t, context.Background(), transport, req)
	require.NoError(t, err)
	require.Greater(t, len(fragments), 1)
	for _, fragment := range fragments {
		require.NotEmpty(t, fragment)
	}
	require.Equal(t, transport.Reply(req), strings.Join(fragments, ""))
	require.Contains(t, transport.Reply(req), "Elon Musk")
}

func TestScriptedSummaryUsesFirstPitch(t *testing.T) {
	transport := NewScriptedTransport(0)
	req := ChatRequest{
		Mentor: seedMentor(t, "bill_gates"),
		History: []chat.Turn{
			{Role: chat.RoleUser, Text: "Clean water sensors"},
			{Role: chat.RoleModel, Text: "Measure everything."},
		},
		UserText: "make me a slide",
	}

	reply := transport.Reply(req)
	require.Contains(t, reply, "Executive summary")
	require.Contains(t, reply, "Clean water sensors")
}

func TestScriptedStreamHonoursCancellation(t *testing.T) {
	transport := NewScriptedTransport(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := drain(t, ctx, transport, ChatRequest{Mentor: seedMentor(t, "sundar"), UserText: "hi"})
	require.ErrorIs(t, err, ErrStreamFailure)
}

func TestScriptedGeneratePassesSchema(t *testing.T) {
	transport := NewScriptedTransport(0)
	dossier, err := transport.Generate(context.Background(), DossierRequest{Mentor: seedMentor(t, "pavel_durov"), Idea: "Private messenger"})
	require.NoError(t, err)
	require.Len(t, dossier.Plan, 5)
	require.Contains(t, dossier.Perspective, "Private messenger")
}
