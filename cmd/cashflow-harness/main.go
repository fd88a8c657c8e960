package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"bitbucket.org/shumbadigital/lodgebooks_backend/config"
	"bitbucket.org/shumbadigital/lodgebooks_backend/models"
	"bitbucket.org/shumbadigital/lodgebooks_backend/models/reports"
	"bitbucket.org/shumbadigital/lodgebooks_backend/utils"
	"github.com/google/uuid"
)

func main() {
	businessID := flag.String("business-id", "", "Business id (uuid string), required.")
	period := flag.String("period", time.Now().UTC().Format("2006-01"), "Reporting period, YYYY-MM or YYYY.")
	basis := flag.String("basis", "cash", "Reporting basis: cash or accrual.")
	residenceID := flag.Int("residence-id", 0, "Optional: restrict to one residence (0 for all).")
	excelPath := flag.String("excel", "", "Optional: also write the statement to this .xlsx path.")
	asOfDate := flag.String("as-of", "", "Optional: backdate the statement to this business-local date, YYYY-MM-DD.")
	refresh := flag.Bool("refresh", false, "Drop the cached statement and rebuild.")
	listResidences := flag.Bool("list-residences", false, "List the business's residences and exit.")
	migrate := flag.Bool("migrate", false, "Run schema migration before generating.")
	flag.Parse()

	if strings.TrimSpace(*businessID) == "" {
		fmt.Fprintln(os.Stderr, "-business-id is required")
		os.Exit(1)
	}
	if _, err := uuid.Parse(strings.TrimSpace(*businessID)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid business id: %v\n", err)
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}
	// Redis is optional here; cache and locks degrade to no-ops without it.
	config.ConnectRedisWithRetry()
	if config.GetRedisDB() == nil {
		fmt.Fprintln(os.Stderr, "redis unavailable; report caching and locking disabled")
	}

	if *migrate {
		models.MigrateTable()
	}

	ctx := context.Background()
	ctx = utils.SetBusinessIdInContext(ctx, strings.TrimSpace(*businessID))
	ctx = utils.SetUserNameInContext(ctx, "CashflowHarness")

	if *listResidences {
		residences, err := models.GetResidences(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "listing residences failed: %v\n", err)
			os.Exit(1)
		}
		for _, r := range residences {
			fmt.Printf("%d\t%s\tactive=%t\n", r.ID, r.Name, utils.DereferencePtr(r.IsActive))
		}
		return
	}

	input := &reports.CashFlowStatementInput{
		Period:       strings.TrimSpace(*period),
		Basis:        strings.TrimSpace(*basis),
		ForceRefresh: *refresh,
	}
	if *residenceID > 0 {
		input.ResidenceId = residenceID
	}
	if strings.TrimSpace(*asOfDate) != "" {
		parsed, err := time.Parse("2006-01-02", strings.TrimSpace(*asOfDate))
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid as-of date: %v\n", err)
			os.Exit(1)
		}
		asOf := models.MyDateString(parsed)
		input.AsOf = &asOf
	}

	statement, err := reports.GenerateCashFlowStatement(ctx, input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate failed: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(statement, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	if strings.TrimSpace(*excelPath) != "" {
		if err := reports.SaveCashFlowExcel(strings.TrimSpace(*excelPath), statement); err != nil {
			fmt.Fprintf(os.Stderr, "excel export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", *excelPath)
	}
}
