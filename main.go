package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/remorses/tuistory/config"
	"github.com/remorses/tuistory/keys"
	"github.com/remorses/tuistory/log"
	"github.com/remorses/tuistory/scenario"
	"github.com/remorses/tuistory/screen"
	"github.com/remorses/tuistory/session"
	"github.com/remorses/tuistory/ui"
)

var (
	version = "0.3.0"

	colsFlag    int
	rowsFlag    int
	timeoutFlag time.Duration
	reportFlag  string

	rootCmd = &cobra.Command{
		Use:   "tuistory",
		Short: "Drive terminal user interfaces the way a headless browser drives web pages.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	runCmd = &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scripted scenario against a freshly launched program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()

			sc, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			if sc.Cols == 0 {
				sc.Cols = cfg.DefaultCols
			}
			if sc.Rows == 0 {
				sc.Rows = cfg.DefaultRows
			}

			opts, err := sc.LaunchOptions()
			if err != nil {
				return err
			}
			sess, err := session.LaunchReady(opts)
			if err != nil {
				return err
			}
			defer func() { _ = sess.Close() }()

			reportDir := reportFlag
			if reportDir == "" {
				base := cfg.ArtifactDir
				if base == "" {
					base = os.TempDir()
				}
				reportDir = filepath.Join(base, "tuistory-"+sess.ID())
			}

			if err := scenario.Run(sess, sc, reportDir); err != nil {
				return fmt.Errorf("scenario %s: %w", sc.Name, err)
			}
			fmt.Printf("scenario %s passed (artifacts in %s)\n", sc.Name, reportDir)
			return nil
		},
	}

	execCmd = &cobra.Command{
		Use:   "exec -- <command> [args...]",
		Short: "Launch a program, wait for it to settle, and print its screen",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := session.LaunchReady(session.LaunchOptions{
				Command: args[0],
				Args:    args[1:],
				Cols:    colsFlag,
				Rows:    rowsFlag,
			})
			if err != nil {
				return err
			}
			defer func() { _ = sess.Close() }()

			txt, err := sess.Text(&screen.TextOptions{TrimEnd: true, Timeout: timeoutFlag})
			if err != nil {
				return err
			}
			fmt.Println(strings.TrimPrefix(txt, "\n"))
			return nil
		},
	}

	keysCmd = &cobra.Command{
		Use:   "keys <chord>...",
		Short: "Print the wire encoding of key chords (chord syntax: ctrl+c, alt+enter)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				names := strings.Split(arg, "+")
				chord := make([]keys.Key, 0, len(names))
				for _, name := range names {
					k, err := keys.Parse(name)
					if err != nil {
						return err
					}
					chord = append(chord, k)
				}
				fmt.Printf("%s\t%q\n", arg, keys.Encode(chord...))
			}
			return nil
		},
	}

	watchCmd = &cobra.Command{
		Use:   "watch -- <command> [args...]",
		Short: "Launch a program and view its screen live, forwarding keystrokes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("watch needs a terminal on stdout")
			}

			sess, err := session.Launch(session.LaunchOptions{
				Command: args[0],
				Args:    args[1:],
				Cols:    colsFlag,
				Rows:    rowsFlag,
			})
			if err != nil {
				return err
			}
			defer func() { _ = sess.Close() }()

			return ui.Watch(sess, strings.Join(args, " "))
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of tuistory",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tuistory version %s\n", version)
		},
	}
)

func init() {
	runCmd.Flags().StringVar(&reportFlag, "report", "", "directory for snapshot and frame artifacts")
	for _, c := range []*cobra.Command{execCmd, watchCmd} {
		c.Flags().IntVar(&colsFlag, "cols", 0, "terminal width (default 80)")
		c.Flags().IntVar(&rowsFlag, "rows", 0, "terminal height (default 24)")
	}
	execCmd.Flags().DurationVar(&timeoutFlag, "timeout", 0, "how long to wait for output")

	rootCmd.AddCommand(runCmd, execCmd, keysCmd, watchCmd, versionCmd)
}

func main() {
	log.Initialize()
	defer log.Close()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
