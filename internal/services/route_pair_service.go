package services

import (
	"cmp"
	"context"
	"database/sql"
	"slices"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shuttle_admin/internal/models"
)

const pairInsertBatch = 500

type stopPair struct {
	departure uint
	arrival   uint
}

// ReconcileResult reports the writes done by one reconciliation run.
type ReconcileResult struct {
	Inserted int64 `json:"inserted"`
	Deleted  int64 `json:"deleted"`
	Active   int   `json:"active"`
}

// RoutePairService keeps the route_pairs table equal to the full directed
// pairing of the active stop set.
type RoutePairService struct {
	db *gorm.DB
}

func NewRoutePairService(db *gorm.DB) *RoutePairService {
	return &RoutePairService{db: db}
}

// Reconcile diffs the desired pair set against the live rows, inserts what
// is missing and only then soft-deletes what is stale. Inserts and deletes
// run in separate snapshot transactions; the delete phase re-reads the
// active stops, so a stop changed in between is judged on its newest state.
// An interrupted delete phase leaves a superset of the desired rows, which
// the next run trims.
func (s *RoutePairService) Reconcile(ctx context.Context) (ReconcileResult, error) {
	var res ReconcileResult
	err := retryTransient(ctx, "reconcile route pairs", func() error {
		var err error
		res, err = s.reconcileOnce(ctx)
		return err
	})
	return res, err
}

func (s *RoutePairService) reconcileOnce(ctx context.Context) (ReconcileResult, error) {
	const op = "reconcile route pairs"
	db := s.db.WithContext(ctx)
	opts := snapshotOptions(db.Dialector.Name())

	var res ReconcileResult
	err := db.Transaction(func(tx *gorm.DB) error {
		stopIDs, existing, err := pairSnapshot(tx)
		if err != nil {
			return err
		}
		toInsert, _ := diffPairs(desiredPairs(stopIDs), existing)
		if len(toInsert) == 0 {
			return nil
		}

		rows := make([]models.RoutePair, 0, len(toInsert))
		for _, p := range toInsert {
			rows = append(rows, models.RoutePair{DepartureID: p.departure, ArrivalID: p.arrival})
		}
		// A concurrent run may have inserted some of these already.
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).
			CreateInBatches(&rows, pairInsertBatch)
		if result.Error != nil {
			return result.Error
		}
		res.Inserted = result.RowsAffected
		return nil
	}, opts...)
	if err != nil {
		return res, storeError(op, err)
	}

	var activeStops int
	err = db.Transaction(func(tx *gorm.DB) error {
		stopIDs, existing, err := pairSnapshot(tx)
		if err != nil {
			return err
		}
		activeStops = len(stopIDs)
		res.Active = len(stopIDs) * (len(stopIDs) - 1)

		_, toDelete := diffPairs(desiredPairs(stopIDs), existing)
		if len(toDelete) == 0 {
			return nil
		}
		result := tx.Delete(&models.RoutePair{}, toDelete)
		if result.Error != nil {
			return result.Error
		}
		res.Deleted = result.RowsAffected
		return nil
	}, opts...)
	if err != nil {
		return res, storeError(op, err)
	}

	if res.Inserted > 0 || res.Deleted > 0 {
		logrus.WithFields(logrus.Fields{
			"active_stops": activeStops,
			"inserted":     res.Inserted,
			"deleted":      res.Deleted,
		}).Info("route pairs reconciled")
	}
	return res, nil
}

// pairSnapshot reads the active stop ids and the live pairs. Both reads must
// share one transaction.
func pairSnapshot(tx *gorm.DB) ([]uint, []models.RoutePair, error) {
	var stopIDs []uint
	if err := tx.Model(&models.Stop{}).Scopes(models.ActiveStops).
		Order("id").Pluck("id", &stopIDs).Error; err != nil {
		return nil, nil, err
	}

	var existing []models.RoutePair
	if err := tx.Select("id", "departure_id", "arrival_id").
		Order("id").Find(&existing).Error; err != nil {
		return nil, nil, err
	}
	return stopIDs, existing, nil
}

// snapshotOptions returns the transaction options for a reconciliation
// phase. Postgres runs it serializable so two runs racing over the same stop
// change abort with 40001 and are retried. SQLite transactions are already
// serializable.
func snapshotOptions(dialect string) []*sql.TxOptions {
	if dialect == "postgres" {
		return []*sql.TxOptions{{Isolation: sql.LevelSerializable}}
	}
	return nil
}

// ListActive returns the live route pairs ordered by departure then arrival.
func (s *RoutePairService) ListActive(ctx context.Context) ([]models.RoutePair, error) {
	var pairs []models.RoutePair
	if err := s.db.WithContext(ctx).Order("departure_id, arrival_id").Find(&pairs).Error; err != nil {
		return nil, storeError("list route pairs", err)
	}
	return pairs, nil
}

func desiredPairs(stopIDs []uint) map[stopPair]struct{} {
	desired := make(map[stopPair]struct{}, len(stopIDs)*len(stopIDs))
	for _, a := range stopIDs {
		for _, b := range stopIDs {
			if a != b {
				desired[stopPair{a, b}] = struct{}{}
			}
		}
	}
	return desired
}

// diffPairs returns the pairs missing from existing, in a stable order, and
// the ids of existing rows that are not desired. Duplicate live rows for one
// pair keep the lowest id; the rest are stale.
func diffPairs(desired map[stopPair]struct{}, existing []models.RoutePair) ([]stopPair, []uint) {
	seen := make(map[stopPair]struct{}, len(existing))
	var toDelete []uint
	for _, row := range existing {
		p := stopPair{row.DepartureID, row.ArrivalID}
		if _, ok := desired[p]; !ok {
			toDelete = append(toDelete, row.ID)
			continue
		}
		if _, dup := seen[p]; dup {
			toDelete = append(toDelete, row.ID)
			continue
		}
		seen[p] = struct{}{}
	}

	toInsert := make([]stopPair, 0, len(desired)-len(seen))
	for p := range desired {
		if _, ok := seen[p]; !ok {
			toInsert = append(toInsert, p)
		}
	}
	slices.SortFunc(toInsert, func(a, b stopPair) int {
		if c := cmp.Compare(a.departure, b.departure); c != 0 {
			return c
		}
		return cmp.Compare(a.arrival, b.arrival)
	})
	return toInsert, toDelete
}
