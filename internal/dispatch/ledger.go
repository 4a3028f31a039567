package dispatch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jobpilot-engine/internal/domain"
	"jobpilot-engine/internal/store"
)

// StoreLedger backs the Ledger with the sqlite application table,
// resolving listing identity keys to row ids.
type StoreLedger struct {
	DB *sql.DB
}

func (l *StoreLedger) HasApplication(ctx context.Context, listingKey, profileID string) (bool, error) {
	sl, err := store.GetListingByIdentity(ctx, l.DB, listingKey)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return store.HasApplication(ctx, l.DB, sl.ID, profileID)
}

func (l *StoreLedger) RecordApplication(ctx context.Context, listingKey, profileID string, method domain.ApplyMethod, message string, at time.Time) error {
	sl, err := store.GetListingByIdentity(ctx, l.DB, listingKey)
	if err != nil {
		return fmt.Errorf("resolve listing %s: %w", listingKey, err)
	}
	_, err = store.RecordApplication(ctx, l.DB, store.Application{
		ListingID: sl.ID,
		ProfileID: profileID,
		Method:    string(method),
		Status:    store.StatusApplied,
		Message:   message,
		AppliedAt: at,
	})
	if errors.Is(err, store.ErrDuplicateApplication) {
		return ErrAlreadyApplied
	}
	return err
}
