package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/law-makers/shiptrack/internal/app"
	"github.com/law-makers/shiptrack/internal/config"
	"github.com/law-makers/shiptrack/internal/store"
)

type closeCountingStore struct {
	store.Store
	closed int
}

func (s *closeCountingStore) Close() error {
	s.closed++
	return nil
}

func TestExecute_ClosesAppWhenCommandFails(t *testing.T) {
	st := &closeCountingStore{}
	logger := zerolog.Nop()
	a := &app.Application{
		Config: &config.Config{ShutdownTimeout: time.Second},
		Logger: &logger,
		Store:  st,
	}

	boom := errors.New("cycle failed")
	root := &cobra.Command{Use: "shiptrack", SilenceUsage: true, SilenceErrors: true}
	child := &cobra.Command{
		Use: "run",
		RunE: func(cmd *cobra.Command, args []string) error {
			SetApp(cmd, a)
			return boom
		},
	}
	root.AddCommand(child)
	root.SetArgs([]string{"run"})

	if err := execute(context.Background(), root); !errors.Is(err, boom) {
		t.Fatalf("execute error = %v, want %v", err, boom)
	}
	if st.closed != 1 {
		t.Fatalf("store closed %d times, want 1", st.closed)
	}
	if GetAppFromCmd(child) != nil {
		t.Error("closed application still attached to the command")
	}

	closeApp(child)
	if st.closed != 1 {
		t.Errorf("second close reached the store, closed = %d", st.closed)
	}
}

func TestCloseApp_NoApplication(t *testing.T) {
	closeApp(nil)
	closeApp(&cobra.Command{Use: "parse"})
}
