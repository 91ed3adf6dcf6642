package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestForCarriesFields(t *testing.T) {
	buf := &bytes.Buffer{}
	SetLoggerOptions(func(l *logrus.Logger) {
		l.SetOutput(buf)
		l.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})
	})

	ctx := NewContextWithFields(context.Background(), logrus.Fields{"heap": "scores"})
	For(ctx).Info("pushed")
	require.Contains(t, buf.String(), "heap=scores")
	require.Contains(t, buf.String(), "msg=pushed")

	/* Contexts without a logger fall back to the default one */
	buf.Reset()
	For(context.Background()).Info("plain")
	require.NotContains(t, buf.String(), "heap=")
}

func TestSetLevel(t *testing.T) {
	require.NoError(t, SetLevel("debug"))
	require.Equal(t, logrus.DebugLevel, Default().Logger.GetLevel())
	require.Error(t, SetLevel("loud"))
	require.NoError(t, SetLevel("info"))
}
