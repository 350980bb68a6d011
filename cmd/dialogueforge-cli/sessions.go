package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dialogueforge/dialogueforge/internal/domain"
	"github.com/dialogueforge/dialogueforge/internal/export"
	"github.com/dialogueforge/dialogueforge/internal/storage"
)

// newSessionsCmd creates the sessions subcommand group.
func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Browse and manage stored conversion sessions",
	}
	cmd.AddCommand(newSessionsListCmd())
	cmd.AddCommand(newSessionsShowCmd())
	cmd.AddCommand(newSessionsDeleteCmd())
	return cmd
}

func newSessionsListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			sessions, err := storage.NewSessionRepository(db).List(ctx, limit)
			if err != nil {
				return err
			}

			if outputJSON {
				return json.NewEncoder(os.Stdout).Encode(sessions)
			}

			ui := NewUI(outputJSON, noColor)
			defer ui.Close()
			if len(sessions) == 0 {
				ui.Info("no sessions stored yet")
				return nil
			}
			for _, s := range sessions {
				ui.KeyValue(s.ID, fmt.Sprintf("%s (%s) %d chunks, %d records, %s",
					s.Filename, s.Format, s.ChunkCount, s.RecordCount,
					s.CreatedAt.Format("2006-01-02 15:04")))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum sessions to list")
	return cmd
}

func newSessionsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show a session and its dialogue records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			session, err := storage.NewSessionRepository(db).GetByID(ctx, args[0])
			if err != nil {
				return err
			}
			records, err := storage.NewRecordRepository(db).ListBySession(ctx, args[0])
			if err != nil {
				return err
			}

			if outputJSON {
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"session": session,
					"records": records,
				})
			}

			ui := NewUI(outputJSON, noColor)
			defer ui.Close()
			ui.KeyValue("file", session.Filename)
			ui.KeyValue("format", session.Format)
			ui.KeyValue("style", session.Style)
			ui.KeyValue("model", session.Model)
			ui.KeyValue("records", session.RecordCount)
			for _, rec := range records {
				ui.Info("Q: %s", rec.Question)
				fmt.Printf("   A: %s\n", rec.Answer)
			}
			return nil
		},
	}
}

func newSessionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a session and its records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := storage.NewSessionRepository(db).Delete(ctx, args[0]); err != nil {
				return err
			}
			ui := NewUI(outputJSON, noColor)
			defer ui.Close()
			ui.Success("deleted session %s", args[0])
			return nil
		},
	}
}

// newExportCmd creates the export subcommand, which re-serializes a stored
// session's records in any supported format.
func newExportCmd() *cobra.Command {
	var (
		exportFormat string
		outPath      string
	)

	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Export a stored session's records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			stored, err := storage.NewRecordRepository(db).ListBySession(ctx, args[0])
			if err != nil {
				return err
			}
			records := toDomainRecords(stored)

			output, err := export.Export(records, domain.ExportFormat(exportFormat))
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath = args[0] + export.FileExtension(domain.ExportFormat(exportFormat))
			}
			if err := os.WriteFile(outPath, output, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}

			ui := NewUI(outputJSON, noColor)
			defer ui.Close()
			ui.Success("exported %d record(s) to %s", len(records), outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&exportFormat, "export-format", "json", "export format: json, jsonl, csv, or xlsx")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file path")
	return cmd
}

// toDomainRecords converts stored rows back into export-ready records.
func toDomainRecords(stored []*storage.StoredRecord) []domain.DialogueRecord {
	records := make([]domain.DialogueRecord, 0, len(stored))
	for _, s := range stored {
		var topics []string
		if s.Topics != "" {
			topics = strings.Split(s.Topics, ",")
		}
		records = append(records, domain.DialogueRecord{
			ID:            s.ID,
			Question:      s.Question,
			Answer:        s.Answer,
			SourceChunkID: s.SourceChunkID,
			DialogueType:  domain.DialogueStyle(s.DialogueType),
			Topics:        topics,
			Confidence:    s.Confidence,
			IsDemo:        s.IsDemo,
		})
	}
	return records
}
