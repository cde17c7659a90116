package services_test

import (
	"testing"
	"time"

	"DataPos/app/models"
	"DataPos/app/services"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func journalWithDB(t *testing.T) *services.JournalService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&models.JournalSale{}, &models.PrintJob{}, &models.DrawerEvent{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return services.NewJournalService(db)
}

func journaledSale(receipt string, total float64, createdAt time.Time) *models.Sale {
	return &models.Sale{
		ReceiptNumber: receipt,
		GrandTotal:    total,
		PaymentMethod: models.PaymentCash,
		CashierName:   "Arben",
		CreatedAt:     createdAt,
		Items: []models.SaleItem{
			{Name: "Djathë", Quantity: 2, UnitPrice: total / 2, Total: total},
		},
	}
}

func TestJournalRecordAndFindSale(t *testing.T) {
	journal := journalWithDB(t)

	sale := journaledSale("RCP-20260901-0001", 23.6, time.Now())
	if err := journal.RecordSale(sale); err != nil {
		t.Fatalf("RecordSale: %v", err)
	}

	found, err := journal.FindSale("RCP-20260901-0001")
	if err != nil {
		t.Fatalf("FindSale: %v", err)
	}
	if found.GrandTotal != 23.6 || len(found.Items) != 1 {
		t.Errorf("found = %+v, want the journaled sale back", found)
	}

	if _, err := journal.FindSale("RCP-00000000-0000"); err == nil {
		t.Error("expected an error for an unknown receipt")
	}
}

func TestJournalRecentSalesOrder(t *testing.T) {
	journal := journalWithDB(t)

	base := time.Now().Add(-time.Hour)
	for i, receipt := range []string{"RCP-20260901-0001", "RCP-20260901-0002", "RCP-20260901-0003"} {
		sale := journaledSale(receipt, float64(10+i), base.Add(time.Duration(i)*time.Minute))
		if err := journal.RecordSale(sale); err != nil {
			t.Fatalf("RecordSale: %v", err)
		}
	}

	sales, err := journal.RecentSales(2)
	if err != nil {
		t.Fatalf("RecentSales: %v", err)
	}
	if len(sales) != 2 {
		t.Fatalf("got %d sales, want 2", len(sales))
	}
	if sales[0].ReceiptNumber != "RCP-20260901-0003" {
		t.Errorf("newest first: got %q", sales[0].ReceiptNumber)
	}
}

func TestJournalPrintJobs(t *testing.T) {
	journal := journalWithDB(t)

	if err := journal.RecordPrintJob("RCP-20260901-0001", models.FormatThermal80, models.BackendRaw, true, ""); err != nil {
		t.Fatalf("RecordPrintJob: %v", err)
	}
	if err := journal.RecordPrintJob("RCP-20260901-0002", models.FormatThermal80, models.BackendSurface, false, "printer offline"); err != nil {
		t.Fatalf("RecordPrintJob: %v", err)
	}

	failed, err := journal.FailedPrintJobs(10)
	if err != nil {
		t.Fatalf("FailedPrintJobs: %v", err)
	}
	if len(failed) != 1 || failed[0].ReceiptNumber != "RCP-20260901-0002" {
		t.Errorf("failed jobs = %+v, want only the offline one", failed)
	}
}

func TestJournalDrawerEvents(t *testing.T) {
	journal := journalWithDB(t)

	journal.RecordDrawerEvent(7, "open", 50, 50, "")
	journal.RecordDrawerEvent(7, "sale", 30, 80, "")
	journal.RecordDrawerEvent(8, "open", 10, 10, "")

	events, err := journal.DrawerEvents(7)
	if err != nil {
		t.Fatalf("DrawerEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events for session 7, want 2", len(events))
	}
	if events[0].Kind != "open" || events[1].Kind != "sale" {
		t.Errorf("event order = %q, %q, want open then sale", events[0].Kind, events[1].Kind)
	}
	if events[1].Balance != 80 {
		t.Errorf("sale balance = %v, want 80", events[1].Balance)
	}
}

func TestJournalWithoutDB(t *testing.T) {
	journal := services.NewJournalService(nil)

	if err := journal.RecordSale(journaledSale("RCP-20260901-0001", 1, time.Now())); err == nil {
		t.Error("expected an error without a database")
	}
	if _, err := journal.RecentSales(5); err == nil {
		t.Error("expected an error without a database")
	}
	// The drawer audit trail silently drops events instead
	journal.RecordDrawerEvent(1, "open", 1, 1, "")
}
