// Command zynmidirouterd is the router's entrypoint: it wires together
// the filter state, the two lock-free rings, the process callback, and
// either a real audio-server client or the software emulate transport,
// then blocks until an exit signal arrives.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/schollz/zynmidirouter/internal/audioclient"
	"github.com/schollz/zynmidirouter/internal/config"
	"github.com/schollz/zynmidirouter/internal/encoder"
	"github.com/schollz/zynmidirouter/internal/filter"
	"github.com/schollz/zynmidirouter/internal/guimonitor"
	"github.com/schollz/zynmidirouter/internal/midiemulate"
	"github.com/schollz/zynmidirouter/internal/process"
	"github.com/schollz/zynmidirouter/internal/ring"
)

var (
	configPath string
	clientName string
	emulate    bool
	monitor    bool
	debugLog   string
)

func main() {
	root := &cobra.Command{
		Use:   "zynmidirouterd",
		Short: "Real-time MIDI routing and filtering engine",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a JSON config file")
	root.PersistentFlags().StringVar(&debugLog, "debug", "", "if set, write debug logs to this file; empty disables logging")

	root.AddCommand(runCmd(), validateConfigCmd(), monitorCmd())

	if err := root.Execute(); err != nil {
		log.Printf("Fatal: %v", err)
		os.Exit(1)
	}
}

func setupLogging() *os.File {
	if debugLog == "" {
		log.SetOutput(io.Discard)
		return nil
	}
	f, err := os.OpenFile(debugLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Printf("Fatal: %v", err)
		os.Exit(1)
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	return f
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the router against a real or emulated MIDI transport",
		RunE: func(cmd *cobra.Command, args []string) error {
			if f := setupLogging(); f != nil {
				defer f.Close()
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if clientName != "" {
				cfg.ClientName = clientName
			}
			if emulate {
				cfg.Emulate = true
			}

			st := filter.New()
			if err := config.Apply(cfg, st); err != nil {
				return fmt.Errorf("applying config: %w", err)
			}

			out := &ring.Bytes{}
			gui := &ring.GUI{}
			encoders := encoder.NewRegistry()
			cb := &process.Callback{State: st, Out: out, GUI: gui, Encoders: encoders}

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

			if cfg.Emulate {
				transport, err := midiemulate.Open(cfg.ClientName+" in", cfg.ClientName+" out", cb)
				if err != nil {
					return err
				}
				ctx, cancel := context.WithCancel(context.Background())
				defer cancel()
				if err := transport.Start(ctx); err != nil {
					return err
				}
				defer transport.Stop()
				log.Printf("router running in emulate mode as %q", cfg.ClientName)
			} else {
				ac, err := audioclient.New(cfg.ClientName, cb)
				if err != nil {
					return err
				}
				if err := ac.Start(); err != nil {
					return err
				}
				defer ac.Stop()
				log.Printf("router running against audio server as %q", cfg.ClientName)
			}

			if monitor {
				return guimonitor.Run(gui)
			}

			<-sig
			log.Println("shutting down")
			return nil
		},
	}
	cmd.Flags().StringVar(&clientName, "client-name", "", "override the configured client name")
	cmd.Flags().BoolVar(&emulate, "emulate", false, "use the software MIDI transport instead of the audio server")
	cmd.Flags().BoolVar(&monitor, "monitor", false, "show the GUI capture monitor instead of waiting on a signal")
	return cmd
}

func validateConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-config",
		Short: "Load a config file and report whether it applies cleanly",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			st := filter.New()
			if err := config.Apply(cfg, st); err != nil {
				return err
			}
			fmt.Println("config OK")
			return nil
		},
	}
}

func monitorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Attach a standalone GUI monitor to a freshly created (empty) capture ring",
		Long: "monitor is mainly useful for smoke-testing the TUI itself; a monitor " +
			"attached to a real router's ring is started with 'run --monitor' instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return guimonitor.Run(&ring.GUI{})
		},
	}
}
