package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mahaveer86619/mindguide/internal/app/conversation"
	"github.com/Mahaveer86619/mindguide/internal/app/reports"
	"github.com/Mahaveer86619/mindguide/internal/config"
	"github.com/Mahaveer86619/mindguide/internal/domain"
)

func TestInjectorWiresLocalMode(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Storage.Backend = "memory"
	cfg.LLM.Provider = "mock"
	cfg.Notify.Channel = "log"

	ctx := context.Background()
	di := newInjector(ctx, cfg)
	defer func() { _ = di.Shutdown() }()

	svc := do.MustInvoke[*conversation.Service](di)
	_, err = svc.StartSession(ctx, conversation.StartSessionInput{UserID: "u1"})
	require.NoError(t, err)

	out, err := svc.SendMessage(ctx, conversation.SendMessageInput{UserID: "u1", Text: "1"})
	require.NoError(t, err)
	assert.Equal(t, domain.StageAssessment, out.Stage)

	recs, err := do.MustInvoke[*reports.Service](di).ListUserReports(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestChatCommandRunsAnAssessment(t *testing.T) {
	t.Setenv("MINDGUIDE_STORAGE_BACKEND", "memory")
	t.Setenv("MINDGUIDE_LLM_PROVIDER", "mock")
	t.Setenv("MINDGUIDE_NOTIFY_CHANNEL", "log")

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader("3\nno\nno\nyes\nno\nno\nquit\n"))
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"chat", "--user", "cli-test"})
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	text := out.String()
	assert.Contains(t, text, "Welcome to MindGuide AI!")
	assert.Contains(t, text, "Question 5/5:")
	assert.Contains(t, text, "Score: 2/10")
	assert.Contains(t, text, "Severity: LOW")
}
