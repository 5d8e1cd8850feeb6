package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	eventbus "github.com/hanpama/relaygraph/internal/eventbus"
	events "github.com/hanpama/relaygraph/internal/events"
	reqid "github.com/hanpama/relaygraph/internal/reqid"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(Options{Level: "debug", Format: "json", Output: &buf})
	require.NoError(t, err)
	require.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.WithField("k", "v").Debug("hello")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "hello", line["msg"])
	require.Equal(t, "v", line["k"])
}

func TestNewLoggerText(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(Options{Format: "TEXT", Output: &buf})
	require.NoError(t, err)
	require.Equal(t, logrus.InfoLevel, logger.GetLevel())
	logger.Info("plain")
	require.True(t, strings.Contains(buf.String(), "msg=plain"))
}

func TestNewLoggerRejectsBadOptions(t *testing.T) {
	_, err := NewLogger(Options{Level: "loud"})
	require.Error(t, err)
	_, err = NewLogger(Options{Format: "xml"})
	require.Error(t, err)
}

func TestSubscribeLogsEvents(t *testing.T) {
	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	defer Subscribe(logger)()

	ctx, rid := reqid.NewContext(context.Background())
	eventbus.Publish(ctx, events.FieldResolveFinish{ObjectType: "Query", Field: "ok"})
	require.Empty(t, hook.AllEntries())

	eventbus.Publish(ctx, events.FieldResolveFinish{ObjectType: "Mutation", Field: "boom", Err: errors.New("bad"), Duration: time.Millisecond})
	eventbus.Publish(ctx, events.GraphQLFinish{OperationType: "mutation", Errors: []error{errors.New("bad")}})
	eventbus.Publish(ctx, events.HTTPFinish{Request: httptest.NewRequest("POST", "/graphql", nil), Status: 200})

	entries := hook.AllEntries()
	require.Len(t, entries, 3)
	require.Equal(t, "Resolver failed", entries[0].Message)
	require.Equal(t, "Mutation.boom", entries[0].Data["field"])
	require.Equal(t, logrus.WarnLevel, entries[1].Level)
	require.Equal(t, "HTTP request", entries[2].Message)
	require.Equal(t, "/graphql", entries[2].Data["path"])
	for _, e := range entries {
		require.Equal(t, rid, e.Data["request_id"])
	}
}
