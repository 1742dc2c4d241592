package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/contact-enrich/internal/stream"
)

var (
	runSpreadsheets []string
	runAutoContinue bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Enrich spreadsheets and print contacts as JSON lines",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(runSpreadsheets) == 0 {
			return eris.New("at least one --spreadsheet is required")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "run")
		if err != nil {
			return err
		}
		defer env.Close()

		st := env.Streams.Create(runSpreadsheets)
		p := &runPrinter{
			enc:    json.NewEncoder(cmd.OutOrStdout()),
			gate:   st.Gate(),
			decide: continueDecider(runAutoContinue, os.Stdin, cmd.ErrOrStderr()),
		}

		err = env.Streams.Run(ctx, st.ID, p.emit)
		zap.L().Info("run finished",
			zap.String("stream_id", st.ID),
			zap.Int("contacts", p.contacts),
			zap.Int("errors", p.errors),
		)
		if errors.Is(err, stream.ErrStopped) {
			return nil
		}
		return err
	},
}

// runPrinter writes stream events as JSON lines and answers pauses.
type runPrinter struct {
	enc      *json.Encoder
	gate     *stream.Gate
	decide   func() bool
	contacts int
	errors   int
}

func (p *runPrinter) emit(ev stream.Event) error {
	p.contacts += len(ev.Contacts)
	if ev.Error != "" {
		p.errors++
	}
	if err := p.enc.Encode(ev); err != nil {
		return eris.Wrap(err, "write event")
	}
	if ev.AwaitUserAction {
		if p.decide() {
			p.gate.Continue()
		} else {
			p.gate.Stop()
		}
	}
	return nil
}

// continueDecider answers pauses: always yes with auto, by prompt when in
// is a terminal, otherwise no.
func continueDecider(auto bool, in *os.File, prompt io.Writer) func() bool {
	if auto {
		return func() bool { return true }
	}
	fd := in.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return func() bool { return false }
	}
	reader := bufio.NewReader(in)
	return func() bool {
		return askContinue(reader, prompt)
	}
}

// askContinue prompts until it reads an answer. Empty means yes.
func askContinue(r *bufio.Reader, w io.Writer) bool {
	for {
		fmt.Fprint(w, "Continue enriching? [Y/n] ")
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "", "y", "yes":
			return true
		case "n", "no":
			return false
		}
		if err != nil {
			return false
		}
	}
}

func init() {
	runCmd.Flags().StringSliceVar(&runSpreadsheets, "spreadsheet", nil, "spreadsheet id to enrich (repeatable)")
	runCmd.Flags().BoolVar(&runAutoContinue, "auto-continue", false, "resume automatically at every pause")
	rootCmd.AddCommand(runCmd)
}
