package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

// TestNewExportReport tests the ExportReport constructor.
func TestNewExportReport(t *testing.T) {
	t.Parallel()

	report := NewExportReport("/home/user/.password-store", "/tmp/export.csv")

	t.Run("assigns a run ID", func(t *testing.T) {
		t.Parallel()
		if report.RunID == "" {
			t.Error("expected RunID to be set")
		}
	})

	t.Run("records store root and output path", func(t *testing.T) {
		t.Parallel()
		if report.StoreRoot != "/home/user/.password-store" {
			t.Errorf("StoreRoot = %q", report.StoreRoot)
		}
		if report.OutputPath != "/tmp/export.csv" {
			t.Errorf("OutputPath = %q", report.OutputPath)
		}
	})

	t.Run("sets start timestamp", func(t *testing.T) {
		t.Parallel()
		if report.StartedAt.IsZero() {
			t.Error("expected StartedAt to be set")
		}
		if time.Since(report.StartedAt) > time.Second {
			t.Error("StartedAt is too old")
		}
	})

	t.Run("distinct runs get distinct IDs", func(t *testing.T) {
		t.Parallel()
		other := NewExportReport("/store", "/out.csv")
		if other.RunID == report.RunID {
			t.Error("expected distinct run IDs")
		}
	})
}

// TestExportReportAccounting tests row and failure accounting.
func TestExportReportAccounting(t *testing.T) {
	t.Parallel()

	report := NewExportReport("/store", "/out.csv")
	report.AddRow(ExportRow{Name: "a", Password: "x"})
	report.AddRow(ExportRow{Name: "b", Password: "y"})
	report.AddFailure("c", "decryption failed: bad passphrase")

	if report.SucceededCount != 2 {
		t.Errorf("SucceededCount = %d, expected 2", report.SucceededCount)
	}
	if report.FailedCount != 1 {
		t.Errorf("FailedCount = %d, expected 1", report.FailedCount)
	}
	if len(report.Rows) != 2 {
		t.Errorf("len(Rows) = %d, expected 2", len(report.Rows))
	}
	if !report.HasFailures() {
		t.Error("expected HasFailures to be true")
	}
	if got := report.Failures[0]; got.Name != "c" || !strings.Contains(got.Reason, "bad passphrase") {
		t.Errorf("unexpected failure record: %+v", got)
	}
}

// TestExportReportFinish tests duration stamping and error recording.
func TestExportReportFinish(t *testing.T) {
	t.Parallel()

	t.Run("clean run", func(t *testing.T) {
		t.Parallel()

		report := NewExportReport("/store", "/out.csv")
		report.Finish(nil)
		if !report.Completed() {
			t.Error("expected Completed to be true")
		}
		if report.ErrorMessage != "" {
			t.Errorf("ErrorMessage = %q, expected empty", report.ErrorMessage)
		}
	})

	t.Run("fatal error", func(t *testing.T) {
		t.Parallel()

		report := NewExportReport("/store", "/out.csv")
		report.Finish(errors.New("cannot enumerate store"))
		if report.Completed() {
			t.Error("expected Completed to be false")
		}
		if report.ErrorMessage != "cannot enumerate store" {
			t.Errorf("ErrorMessage = %q", report.ErrorMessage)
		}
	})
}

// TestExportReportSerializationExcludesRows tests that no decrypted field
// data survives JSON serialization. Serialized reports go to history storage
// and report files, so leaking a row here would leak a password.
func TestExportReportSerializationExcludesRows(t *testing.T) {
	t.Parallel()

	report := NewExportReport("/store", "/out.csv")
	report.AddRow(ExportRow{
		Name:     "social/example.com/alice",
		Email:    "alice@example.com",
		Username: "alice",
		Password: "hunter2-super-secret",
		Note:     "recovery words: correct horse",
	})
	report.AddFailure("work/vpn", "decryption failed: corrupt data")
	report.Finish(nil)

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	serialized := string(data)

	for _, secret := range []string{"hunter2-super-secret", "correct horse", "alice@example.com"} {
		if strings.Contains(serialized, secret) {
			t.Errorf("serialized report contains %q", secret)
		}
	}

	// Non-secret run metadata must survive.
	for _, want := range []string{"work/vpn", "corrupt data", report.RunID} {
		if !strings.Contains(serialized, want) {
			t.Errorf("serialized report missing %q", want)
		}
	}
}

// TestExportReportStages tests stage recording order.
func TestExportReportStages(t *testing.T) {
	t.Parallel()

	report := NewExportReport("/store", "/out.csv")
	for _, stage := range []string{"setup", "count", "process", "export"} {
		report.AddStage(stage)
	}
	if len(report.PerformedStages) != 4 {
		t.Fatalf("len(PerformedStages) = %d, expected 4", len(report.PerformedStages))
	}
	if report.PerformedStages[0] != "setup" || report.PerformedStages[3] != "export" {
		t.Errorf("unexpected stage order: %v", report.PerformedStages)
	}
}
