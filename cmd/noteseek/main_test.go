package main

import (
	"flag"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	newContext := func(level string) *cli.Context {
		set := flag.NewFlagSet("test", flag.ContinueOnError)
		set.String("log-level", level, "")
		return cli.NewContext(cli.NewApp(), set, nil)
	}

	t.Run("valid levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "INFO"} {
			require.NoError(t, setupLogger(newContext(level)))
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		err := setupLogger(newContext("verbose"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestIndexCommandRequiresVault(t *testing.T) {
	app := &cli.App{
		Name: "noteseek",
		Commands: []*cli.Command{
			{
				Name:   "index",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "db", Required: true},
					&cli.StringFlag{Name: "vault", Required: true},
				},
			},
		},
	}

	err := app.Run([]string{"noteseek", "index", "--db", t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vault")
}

func TestIndexCommandMissingVaultDir(t *testing.T) {
	app := &cli.App{
		Name: "noteseek",
		Commands: []*cli.Command{
			{
				Name:   "index",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "db", Required: true},
					&cli.StringFlag{Name: "vault", Required: true},
					&cli.IntFlag{Name: "pool-size"},
					&cli.IntFlag{Name: "lock-attempts", Value: 1},
					&cli.DurationFlag{Name: "lock-delay"},
				},
			},
		},
	}

	missing := t.TempDir() + string(os.PathSeparator) + "does-not-exist"
	err := app.Run([]string{"noteseek", "index", "--db", t.TempDir(), "--vault", missing})
	require.Error(t, err)
}
