package main

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/jrsteele09/tenant-dashboard/internal/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// lockedBuffer guards log output written from the listener goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRootCmd(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("ENV", "TEST")

	runContext := func(ctx context.Context, args ...string) (string, error) {
		cmd := newRootCmd()
		out := &lockedBuffer{}
		cmd.SetOut(out)
		cmd.SetErr(out)
		cmd.SetArgs(args)
		err := cmd.ExecuteContext(ctx)
		return out.String(), err
	}
	run := func(args ...string) (string, error) {
		return runContext(context.Background(), args...)
	}

	t.Run("help lists the subcommands", func(t *testing.T) {
		out, err := run("--help")
		require.NoError(t, err)
		for _, sub := range []string{"serve", "seed", "migrate"} {
			require.Contains(t, out, sub)
		}
		require.Contains(t, out, "--session-sweep")
	})

	t.Run("migrate needs postgres", func(t *testing.T) {
		_, err := run("migrate")
		require.ErrorContains(t, err, "STORE_DRIVER=postgres")
	})

	t.Run("session sweep is off by default", func(t *testing.T) {
		for _, cmd := range []*cobra.Command{newRootCmd(), newServeCmd(config.New())} {
			flag := cmd.Flags().Lookup("session-sweep")
			require.NotNil(t, flag)
			require.Equal(t, "0s", flag.DefValue)
		}
	})

	t.Run("seed into memory", func(t *testing.T) {
		out, err := run("seed")
		require.NoError(t, err)
		require.NotContains(t, out, "Server stopped")
	})

	t.Run("serve logs shutdown", func(t *testing.T) {
		t.Setenv("GOOGLE_CLIENT_ID", "id")
		t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
		t.Setenv("SITE_URL", "http://localhost")
		t.Setenv("PORT", "0")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		out, err := runContext(ctx, "serve", "--migrate=false")
		require.NoError(t, err)
		require.Contains(t, out, "Server stopped")
	})

	t.Run("seed disabled", func(t *testing.T) {
		t.Setenv("DEMO_SEED_ENABLED", "false")
		_, err := run("seed")
		require.ErrorContains(t, err, "disabled")
	})

	t.Run("serve validates config", func(t *testing.T) {
		t.Setenv("GOOGLE_CLIENT_ID", "")
		t.Setenv("GOOGLE_CLIENT_SECRET", "")
		_, err := run("serve")
		require.ErrorContains(t, err, "GOOGLE_CLIENT_ID")
	})
}
