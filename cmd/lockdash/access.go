package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/five82/lockdash/internal/app"
	"github.com/five82/lockdash/internal/lockapi"
)

// apiCommand wraps fn with a service graph and the per-command timeout.
func apiCommand(flags *globalFlags, fn func(ctx context.Context, cmd *cobra.Command, args []string, api *lockapi.Client) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, flags, func(ctx context.Context, svc *app.Services) error {
			ctx, cancel := context.WithTimeout(ctx, commandTimeout)
			defer cancel()
			return fn(ctx, cmd, args, svc.API)
		})
	}
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func deleteByID(flags *globalFlags, use, short string, del func(*lockapi.Client, context.Context, int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: apiCommand(flags, func(ctx context.Context, cmd *cobra.Command, args []string, api *lockapi.Client) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := del(api, ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", id)
			return nil
		}),
	}
}

func writeVerify(out io.Writer, res lockapi.VerifyResult) {
	verdict := "denied"
	if res.Success {
		verdict = "granted"
	}
	line := verdict
	if res.UserName != "" {
		line += " " + res.UserName
	}
	if res.Similarity > 0 {
		line += fmt.Sprintf(" (similarity %.2f)", res.Similarity)
	}
	if res.Message != "" {
		line += ": " + res.Message
	}
	fmt.Fprintln(out, line)
}

func newUsersCmd(flags *globalFlags) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users and their enrolled credentials",
		Args:  cobra.NoArgs,
		RunE: apiCommand(flags, func(ctx context.Context, cmd *cobra.Command, _ []string, api *lockapi.Client) error {
			users, err := api.ListUsers(ctx)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), users)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tFINGERPRINTS\tFACES\tCREATED")
			for _, u := range users {
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\n", u.ID, u.Name, u.FingerprintsCount, u.FacesCount, u.CreatedAt)
			}
			return w.Flush()
		}),
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	cmd.AddCommand(deleteByID(flags, "rm <id>", "Delete a user and all their credentials", (*lockapi.Client).DeleteUser))
	return cmd
}

func newCardsCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "List registered RFID cards",
		Args:  cobra.NoArgs,
		RunE: apiCommand(flags, func(ctx context.Context, cmd *cobra.Command, _ []string, api *lockapi.Client) error {
			cards, err := api.ListCards(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUID\tUSER\tACTIVE")
			for _, card := range cards {
				fmt.Fprintf(w, "%d\t%s\t%s\t%t\n", card.ID, card.CardUID, card.UserName, card.IsActive)
			}
			return w.Flush()
		}),
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <uid> <user>",
			Short: "Register a card for a user",
			Args:  cobra.ExactArgs(2),
			RunE: apiCommand(flags, func(ctx context.Context, cmd *cobra.Command, args []string, api *lockapi.Client) error {
				card, err := api.RegisterCard(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "card %s registered for %s (id %d)\n", card.CardUID, card.UserName, card.ID)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "verify <uid>",
			Short: "Check a card UID against the registered cards",
			Args:  cobra.ExactArgs(1),
			RunE: apiCommand(flags, func(ctx context.Context, cmd *cobra.Command, args []string, api *lockapi.Client) error {
				res, err := api.VerifyCard(ctx, args[0])
				if err != nil {
					return err
				}
				writeVerify(cmd.OutOrStdout(), res)
				return nil
			}),
		},
		deleteByID(flags, "rm <id>", "Delete a registered card", (*lockapi.Client).DeleteCard),
	)
	return cmd
}

func newPrintsCmd(flags *globalFlags) *cobra.Command {
	var sensor bool
	cmd := &cobra.Command{
		Use:   "prints",
		Short: "List enrolled fingerprints",
		Args:  cobra.NoArgs,
		RunE: apiCommand(flags, func(ctx context.Context, cmd *cobra.Command, _ []string, api *lockapi.Client) error {
			if sensor {
				slots, err := api.SensorFingerprints(ctx)
				if err != nil {
					return err
				}
				if !slots.Success {
					return fmt.Errorf("sensor: %s", slots.Message)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d slots in use: %v\n", slots.Count, slots.Fingerprints)
				return nil
			}
			prints, err := api.ListFingerprints(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSLOT\tUSER\tACTIVE")
			for _, fp := range prints {
				fmt.Fprintf(w, "%d\t%d\t%s\t%t\n", fp.ID, fp.FingerprintID, fp.UserName, fp.IsActive)
			}
			return w.Flush()
		}),
	}
	cmd.Flags().BoolVar(&sensor, "sensor", false, "list slots stored on the sensor instead of the database")

	var finger int
	enroll := &cobra.Command{
		Use:   "enroll <slot> <user>",
		Short: "Start fingerprint enrollment; follow progress with watch",
		Args:  cobra.ExactArgs(2),
		RunE: apiCommand(flags, func(ctx context.Context, cmd *cobra.Command, args []string, api *lockapi.Client) error {
			slot, err := strconv.Atoi(args[0])
			if err != nil || slot <= 0 {
				return fmt.Errorf("invalid slot %q", args[0])
			}
			fp, err := api.EnrollFingerprint(ctx, lockapi.EnrollRequest{FingerprintID: slot, UserName: args[1], FingerPosition: finger})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enrolling slot %d for %s\n", fp.FingerprintID, fp.UserName)
			return nil
		}),
	}
	enroll.Flags().IntVar(&finger, "finger", 1, "finger position (1-10)")

	cmd.AddCommand(
		enroll,
		&cobra.Command{
			Use:   "verify <slot>",
			Short: "Check a sensor slot against enrolled prints",
			Args:  cobra.ExactArgs(1),
			RunE: apiCommand(flags, func(ctx context.Context, cmd *cobra.Command, args []string, api *lockapi.Client) error {
				slot, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid slot %q", args[0])
				}
				res, err := api.VerifyFingerprint(ctx, slot)
				if err != nil {
					return err
				}
				writeVerify(cmd.OutOrStdout(), res)
				return nil
			}),
		},
		deleteByID(flags, "rm <id>", "Delete an enrolled fingerprint", (*lockapi.Client).DeleteFingerprint),
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every fingerprint from the database and the sensor",
			Args:  cobra.NoArgs,
			RunE: apiCommand(flags, func(ctx context.Context, cmd *cobra.Command, _ []string, api *lockapi.Client) error {
				res, err := api.ClearFingerprints(ctx)
				if err != nil {
					return err
				}
				if !res.Success {
					return fmt.Errorf("clear fingerprints: %s", res.Message)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "fingerprints cleared")
				return nil
			}),
		},
	)
	return cmd
}

func newFacesCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "faces",
		Short: "List users with a registered face",
		Args:  cobra.NoArgs,
		RunE: apiCommand(flags, func(ctx context.Context, cmd *cobra.Command, _ []string, api *lockapi.Client) error {
			users, err := api.ListFaceUsers(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tFACE\tCREATED")
			for _, u := range users {
				fmt.Fprintf(w, "%d\t%s\t%t\t%s\n", u.ID, u.Name, u.HasFace, u.CreatedAt)
			}
			return w.Flush()
		}),
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "verify",
			Short: "Match the current camera frame",
			Args:  cobra.NoArgs,
			RunE: apiCommand(flags, func(ctx context.Context, cmd *cobra.Command, _ []string, api *lockapi.Client) error {
				res, err := api.VerifyFaceFromStream(ctx)
				if err != nil {
					return err
				}
				writeVerify(cmd.OutOrStdout(), res)
				return nil
			}),
		},
		deleteByID(flags, "rm <user-id>", "Delete a user's registered face", (*lockapi.Client).DeleteFace),
	)
	return cmd
}

func newKeypadCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keypad",
		Short: "Show whether a keypad password is set",
		Args:  cobra.NoArgs,
		RunE: apiCommand(flags, func(ctx context.Context, cmd *cobra.Command, _ []string, api *lockapi.Client) error {
			has, err := api.HasKeypadPassword(ctx)
			if err != nil {
				return err
			}
			if has {
				fmt.Fprintln(cmd.OutOrStdout(), "keypad password set")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "no keypad password")
			}
			return nil
		}),
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <password>",
			Short: "Set or change the keypad password",
			Args:  cobra.ExactArgs(1),
			RunE: apiCommand(flags, func(ctx context.Context, cmd *cobra.Command, args []string, api *lockapi.Client) error {
				res, err := api.SetKeypadPassword(ctx, args[0])
				if err != nil {
					return err
				}
				if !res.Success {
					return fmt.Errorf("set keypad password: %s", res.Message)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "keypad password updated")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "verify <password>",
			Short: "Check a keypad password",
			Args:  cobra.ExactArgs(1),
			RunE: apiCommand(flags, func(ctx context.Context, cmd *cobra.Command, args []string, api *lockapi.Client) error {
				res, err := api.VerifyKeypad(ctx, args[0])
				if err != nil {
					return err
				}
				writeVerify(cmd.OutOrStdout(), res)
				return nil
			}),
		},
	)
	return cmd
}
