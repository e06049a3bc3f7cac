package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/lockdash/internal/app"
	"github.com/five82/lockdash/internal/lockapi"
	"github.com/five82/lockdash/internal/realtime"
	"github.com/five82/lockdash/internal/state"
)

const commandTimeout = 10 * time.Second

// withServices builds the object graph for one CLI command and tears it down afterwards.
func withServices(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, svc *app.Services) error) error {
	svc, err := app.Build(flags.options(true))
	if err != nil {
		return err
	}
	defer svc.Close()
	return fn(cmd.Context(), svc)
}

func newStatusCmd(flags *globalFlags) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show door, mode, health and access statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, flags, func(ctx context.Context, svc *app.Services) error {
				ctx, cancel := context.WithTimeout(ctx, commandTimeout)
				defer cancel()

				svc.Refresh(ctx)
				snap := svc.Store.Snapshot()
				health, healthErr := svc.API.Health(ctx)

				if jsonOutput {
					return writeStatusJSON(cmd.OutOrStdout(), svc.Endpoint(), snap, health, healthErr)
				}
				writeStatus(cmd.OutOrStdout(), svc.Endpoint(), snap, health, healthErr)
				if snap.Error != "" {
					return errors.New(snap.Error)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	return cmd
}

func writeStatus(out io.Writer, endpoint string, snap state.Snapshot, health lockapi.Health, healthErr error) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Endpoint:\t%s\n", endpoint)
	fmt.Fprintf(w, "Door:\t%s\n", snap.DoorStatus)
	fmt.Fprintf(w, "Mode:\t%s\n", snap.Mode)
	if healthErr == nil {
		fmt.Fprintf(w, "Backend:\t%s\n", health.Status)
		fmt.Fprintf(w, "UART:\t%s\n", connectedLabel(health.UARTConnected))
	} else {
		fmt.Fprintf(w, "Backend:\tunreachable (%v)\n", healthErr)
	}
	if cfg := snap.Config; cfg != nil {
		fmt.Fprintf(w, "Serial port:\t%s @ %d baud\n", cfg.UARTPort, cfg.UARTBaudrate)
		fmt.Fprintf(w, "Face threshold:\t%.2f\n", cfg.FaceSimilarityThreshold)
	}
	if stats := snap.Stats; stats != nil {
		fmt.Fprintf(w, "Accesses:\t%d total, %d granted, %d denied (%.0f%%)\n",
			stats.TotalAccesses, stats.SuccessfulAccesses, stats.FailedAccesses, stats.SuccessRate()*100)
	}
	if snap.Error != "" {
		fmt.Fprintf(w, "Error:\t%s\n", snap.Error)
	}
	_ = w.Flush()
}

func writeStatusJSON(out io.Writer, endpoint string, snap state.Snapshot, health lockapi.Health, healthErr error) error {
	payload := map[string]any{
		"endpoint":    endpoint,
		"door_status": snap.DoorStatus,
		"mode":        snap.Mode,
		"config":      snap.Config,
		"stats":       snap.Stats,
	}
	if healthErr == nil {
		payload["health"] = health
	}
	if snap.Error != "" {
		payload["error"] = snap.Error
	}
	return printJSON(out, payload)
}

func connectedLabel(ok bool) string {
	if ok {
		return "connected"
	}
	return "disconnected"
}

func newWatchCmd(flags *globalFlags) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream push events from the lock backend",
		Long: `Connect to the backend's push channel and print enrollment, scan and
system events as they arrive. The connection is retried until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, flags, func(ctx context.Context, svc *app.Services) error {
				out := cmd.OutOrStdout()
				unsubscribe := svc.Transport.Subscribe(func(msg realtime.Message) {
					if jsonOutput {
						data, err := json.Marshal(msg)
						if err == nil {
							fmt.Fprintln(out, string(data))
						}
						return
					}
					fmt.Fprintf(out, "%s  %-20s %s\n", time.Now().Format("15:04:05"), msg.Type, msg.Text("message"))
				})
				defer unsubscribe()

				svc.Transport.Connect()
				fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (ctrl+c to stop)\n", svc.Transport.URL())
				<-ctx.Done()
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print raw JSON events")
	return cmd
}

func newDoorCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "door <lock|unlock>",
		Short:     "Lock or unlock the door",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"lock", "unlock"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var status lockapi.DoorStatus
			switch strings.ToLower(args[0]) {
			case "lock":
				status = lockapi.DoorLocked
			case "unlock":
				status = lockapi.DoorUnlocked
			default:
				return fmt.Errorf("unknown door action %q (want lock or unlock)", args[0])
			}
			return withServices(cmd, flags, func(ctx context.Context, svc *app.Services) error {
				ctx, cancel := context.WithTimeout(ctx, commandTimeout)
				defer cancel()
				if err := svc.SetDoor(ctx, status); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "door %s\n", status)
				return nil
			})
		},
	}
}

func newModeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "mode [entry_exit|registration|toggle]",
		Short:     "Show or change the operating mode",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"entry_exit", "registration", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, flags, func(ctx context.Context, svc *app.Services) error {
				ctx, cancel := context.WithTimeout(ctx, commandTimeout)
				defer cancel()

				if len(args) == 0 {
					st, err := svc.API.GetDetailedStatus(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s (door %s)\n", st.Mode, st.DoorStatus)
					return nil
				}

				svc.Store.FetchState(ctx)
				if snap := svc.Store.Snapshot(); snap.Error != "" {
					return errors.New(snap.Error)
				}

				target := lockapi.Mode(strings.ToLower(args[0]))
				if target == "toggle" {
					target = svc.Store.Snapshot().Mode.Toggle()
				}
				if !target.Valid() {
					return fmt.Errorf("unknown mode %q", args[0])
				}
				if err := svc.Store.SetMode(ctx, target); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "mode %s\n", target)
				return nil
			})
		},
	}
}

func newEndpointCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "endpoint",
		Short: "Show or change the saved lock backend endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, flags, func(_ context.Context, svc *app.Services) error {
				fmt.Fprintln(cmd.OutOrStdout(), svc.Endpoint())
				return nil
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <url>",
		Short: "Save a new endpoint to prefs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, flags, func(_ context.Context, svc *app.Services) error {
				if err := svc.SetEndpoint(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "endpoint %s\n", svc.Endpoint())
				return nil
			})
		},
	})
	return cmd
}

func newConfigCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or update the backend's runtime configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, flags, func(ctx context.Context, svc *app.Services) error {
				ctx, cancel := context.WithTimeout(ctx, commandTimeout)
				defer cancel()
				cfg, err := svc.API.GetConfig(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), cfg)
			})
		},
	}

	var (
		port      string
		baud      int
		threshold float64
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Update serial port, baud rate or face threshold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var update lockapi.ConfigUpdate
			if cmd.Flags().Changed("uart-port") {
				update.UARTPort = &port
			}
			if cmd.Flags().Changed("baud") {
				update.UARTBaudrate = &baud
			}
			if cmd.Flags().Changed("face-threshold") {
				update.FaceSimilarityThreshold = &threshold
			}
			if update.Empty() {
				return errors.New("nothing to update: pass --uart-port, --baud or --face-threshold")
			}
			return withServices(cmd, flags, func(ctx context.Context, svc *app.Services) error {
				ctx, cancel := context.WithTimeout(ctx, commandTimeout)
				defer cancel()
				if err := svc.Store.UpdateConfig(ctx, update); err != nil {
					return err
				}
				snap := svc.Store.Snapshot()
				if snap.Error != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", snap.Error)
				}
				return printJSON(cmd.OutOrStdout(), snap.Config)
			})
		},
	}
	set.Flags().StringVar(&port, "uart-port", "", "serial device, e.g. /dev/ttyUSB0")
	set.Flags().IntVar(&baud, "baud", 0, "serial baud rate")
	set.Flags().Float64Var(&threshold, "face-threshold", 0, "face similarity threshold (0-1)")
	cmd.AddCommand(set)
	return cmd
}

func newLogsCmd(flags *globalFlags) *cobra.Command {
	var (
		limit      int
		offset     int
		method     string
		accessType string
		failedOnly bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List access log entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := lockapi.LogQuery{Limit: limit, Offset: offset, Method: method, AccessType: accessType}
			if failedOnly {
				success := false
				query.Success = &success
			}
			return withServices(cmd, flags, func(ctx context.Context, svc *app.Services) error {
				ctx, cancel := context.WithTimeout(ctx, commandTimeout)
				defer cancel()
				page, err := svc.API.GetLogs(ctx, query)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), page)
				}
				writeLogs(cmd.OutOrStdout(), page)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of entries")
	cmd.Flags().IntVar(&offset, "offset", 0, "entries to skip")
	cmd.Flags().StringVar(&method, "method", "", "filter by method: face, fingerprint, rfid, keypad")
	cmd.Flags().StringVar(&accessType, "type", "", "filter by access type: entry, exit, registration")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "only denied attempts")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	var confirmed bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every access log entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return errors.New("refusing to clear logs without --yes")
			}
			return apiCommand(flags, func(ctx context.Context, cmd *cobra.Command, _ []string, api *lockapi.Client) error {
				if err := api.ClearLogs(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "access logs cleared")
				return nil
			})(cmd, args)
		},
	}
	clearCmd.Flags().BoolVar(&confirmed, "yes", false, "confirm deletion")

	cmd.AddCommand(
		deleteByID(flags, "rm <id>", "Delete one access log entry", (*lockapi.Client).DeleteLog),
		clearCmd,
	)
	return cmd
}

func writeLogs(out io.Writer, page lockapi.LogPage) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tMETHOD\tTYPE\tRESULT\tUSER")
	for _, entry := range page.Logs {
		ts := entry.Timestamp
		if parsed := entry.ParsedTime(); !parsed.IsZero() {
			ts = parsed.Format("2006-01-02 15:04:05")
		}
		result := "granted"
		if !entry.Success {
			result = "denied"
		}
		user := entry.UserName
		if user == "" {
			user = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", entry.ID, ts, entry.AccessMethod, entry.AccessType, result, user)
	}
	_ = w.Flush()
	fmt.Fprintf(out, "%d of %d entries\n", len(page.Logs), page.Total)
}
