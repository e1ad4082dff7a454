package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/leadbooth/internal/config"
	"github.com/kalambet/leadbooth/internal/lead"
)

// --- capture ---

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture a lead from the command line",
	Long: `Capture a lead from the command line.

Examples:
  leadbooth capture --first-name Anne --last-name Chen --company "Acme Radio"
  leadbooth capture --first-name Bob --email bob@example.com --intent high`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rec := lead.Record{CaptureMethod: "cli"}
		rec.FirstName, _ = cmd.Flags().GetString("first-name")
		rec.LastName, _ = cmd.Flags().GetString("last-name")
		rec.Company, _ = cmd.Flags().GetString("company")
		rec.Email, _ = cmd.Flags().GetString("email")
		rec.Title, _ = cmd.Flags().GetString("title")
		rec.Phone, _ = cmd.Flags().GetString("phone")
		rec.Owner, _ = cmd.Flags().GetString("owner")
		rec.Products, _ = cmd.Flags().GetString("products")
		rec.Summary, _ = cmd.Flags().GetString("summary")
		rec.NextSteps, _ = cmd.Flags().GetString("next-steps")
		rec.IntentLevel, _ = cmd.Flags().GetString("intent")

		if rec.FirstName == "" && rec.LastName == "" && rec.Company == "" && rec.Email == "" {
			return fmt.Errorf("at least one of --first-name, --last-name, --company, or --email is required")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/", rec)
		if err != nil {
			return err
		}

		var result struct {
			Status string `json:"status"`
			Row    int    `json:"row"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Captured lead in row %d", result.Row)
		return nil
	},
}

func init() {
	captureCmd.Flags().String("first-name", "", "lead's first name")
	captureCmd.Flags().String("last-name", "", "lead's last name")
	captureCmd.Flags().String("company", "", "company or organization")
	captureCmd.Flags().String("email", "", "email address")
	captureCmd.Flags().String("title", "", "job title")
	captureCmd.Flags().String("phone", "", "phone number")
	captureCmd.Flags().String("owner", "", "owning salesperson")
	captureCmd.Flags().String("products", "", "products discussed")
	captureCmd.Flags().String("summary", "", "conversation summary")
	captureCmd.Flags().String("next-steps", "", "agreed next steps")
	captureCmd.Flags().String("intent", "", "buying intent level")
}

// --- search ---

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find leads by name, email, or company",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := "/?action=search&q=" + url.QueryEscape(query)
		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}

		var result struct {
			Status  string              `json:"status"`
			Results []lead.SearchResult `json:"results"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if len(result.Results) == 0 {
			fmt.Println("No leads found.")
			return nil
		}

		for _, r := range result.Results {
			name := strings.TrimSpace(r.FirstName + " " + r.LastName)
			if name == "" {
				name = "(no name)"
			}
			fmt.Printf("%s  %s", colorize(colorCyan, fmt.Sprintf("row %d", r.RowNumber)), colorize(colorBold, name))
			if r.Company != "" {
				fmt.Printf("  %s", r.Company)
			}
			if r.Email != "" {
				fmt.Printf("  <%s>", r.Email)
			}
			fmt.Println()
			if r.IntentLevel != "" {
				fmt.Printf("       intent: %s\n", r.IntentLevel)
			}
		}
		return nil
	},
}

// --- meeting ---

var meetingCmd = &cobra.Command{
	Use:   "meeting",
	Short: "Manage pre-booked meeting outcomes",
}

var meetingUpdateCmd = &cobra.Command{
	Use:   "update <row>",
	Short: "Record a meeting outcome on an existing lead row",
	Long: `Record a meeting outcome on an existing lead row.

Examples:
  leadbooth meeting update 7 --status completed --notes "great demo" --by dana
  leadbooth meeting update 7 --status no_show`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		notes, _ := cmd.Flags().GetString("notes")
		potential, _ := cmd.Flags().GetString("deal-potential")
		by, _ := cmd.Flags().GetString("by")

		if status == "" {
			return fmt.Errorf("--status is required")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		body := map[string]any{
			"action":         "update_meeting",
			"row_number":     args[0],
			"meeting_status": status,
			"meeting_notes":  notes,
			"deal_potential": potential,
			"updated_by":     by,
		}
		resp, err := client.post(cmd.Context(), "/", body)
		if err != nil {
			return err
		}

		var result struct {
			Status string `json:"status"`
			Row    int    `json:"row"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Row %d marked %s", result.Row, lead.StatusLabel(status))
		return nil
	},
}

func init() {
	meetingUpdateCmd.Flags().String("status", "", "meeting status: completed, no_show, or rescheduled")
	meetingUpdateCmd.Flags().String("notes", "", "notes appended to the conversation summary")
	meetingUpdateCmd.Flags().String("deal-potential", "", "new deal potential rating")
	meetingUpdateCmd.Flags().String("by", "", "who recorded the outcome")
	meetingCmd.AddCommand(meetingUpdateCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			return fmt.Errorf("usage: leadbooth config set <key> <value>\nvalid keys: %s", strings.Join(config.ValidKeys(), ", "))
		}
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
