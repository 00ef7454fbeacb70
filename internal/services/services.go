package services

import "github.com/tahcohcat/calmkid/internal/database"

// Services is the wired set used by the server and the CLI. They share one
// LedgerService so every balance change goes through the same user locks.
type Services struct {
	Accounts  *AccountService
	Profiles  *ProfileService
	Moods     *MoodService
	Catalog   *CatalogService
	Ledger    *LedgerService
	Progress  *ProgressService
	Rewards   *RewardService
	Journal   *JournalService
	Reports   *ReportService
	Dashboard *DashboardService
}

func New(db *database.DB, opts Options, suggestions int) *Services {
	opts = opts.withDefaults()

	ledger := NewLedgerService(db, opts)
	catalog := NewCatalogService(db, opts)
	moods := NewMoodService(db, opts)
	profiles := NewProfileService(db, opts)
	progress := NewProgressService(db, ledger, opts)

	return &Services{
		Accounts:  NewAccountService(db, opts),
		Profiles:  profiles,
		Moods:     moods,
		Catalog:   catalog,
		Ledger:    ledger,
		Progress:  progress,
		Rewards:   NewRewardService(db, ledger, catalog, opts),
		Journal:   NewJournalService(db, opts),
		Reports:   NewReportService(db, moods, progress, opts),
		Dashboard: NewDashboardService(profiles, moods, catalog, progress, suggestions),
	}
}
