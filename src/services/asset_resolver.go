package services

import (
	"context"
	"fmt"

	"assetsync/src/clients/nibo"
	"assetsync/src/models"
	"assetsync/src/repositories"
	"assetsync/src/utils"

	"github.com/jackc/pgx/v5"
)

// AssetIndex maps normalized cost center keys to local asset ids for one
// (company, user) pair, built once per sync.
type AssetIndex struct {
	CompanyID    int
	UserID       int
	UnassignedID int

	byKey    map[string]int
	disabled map[string]bool
}

// Lookup returns the asset mapped to key, if any.
func (i *AssetIndex) Lookup(key string) (int, bool) {
	id, ok := i.byKey[key]
	return id, ok
}

// Forget drops a key from the index, used when the record that created the
// mapping was rolled back.
func (i *AssetIndex) Forget(key string) {
	delete(i.byKey, key)
}

type AssetResolverI interface {
	BuildIndex(ctx context.Context, tx pgx.Tx, companyID, userID int, costCenters []nibo.RawRecord) (*AssetIndex, int, error)
	Resolve(ctx context.Context, tx pgx.Tx, index *AssetIndex, key string) (int, bool, error)
}

// AssetResolver maps normalized cost center keys to local assets, creating
// assets on first sight and routing everything unresolvable to the reserved
// unassigned asset.
type AssetResolver struct {
	assetRepo repositories.AssetRepository
	txManager repositories.TxManager
}

func NewAssetResolver(assetRepo repositories.AssetRepository, txManager repositories.TxManager) *AssetResolver {
	return &AssetResolver{assetRepo: assetRepo, txManager: txManager}
}

// Candidate field names for cost center listing records.
var (
	costCenterListIDFields   = []string{"costCenterId", "id", "costCenterID", "centerId"}
	costCenterListNameFields = []string{"description", "name", "title"}
)

const unnamedCostCenter = "Unnamed cost center"

// BuildIndex loads the existing asset mappings for (company, user), registers
// an asset for every cost center not seen before, and guarantees the
// unassigned asset exists. Disabled assets are frozen: their keys resolve to
// the unassigned bucket and never spawn replacements. Returns the index and
// the number of assets created.
func (r *AssetResolver) BuildIndex(ctx context.Context, tx pgx.Tx, companyID, userID int, costCenters []nibo.RawRecord) (*AssetIndex, int, error) {
	logger := utils.LoggerFromContext(ctx)

	existing, err := r.assetRepo.GetByCompanyAndUser(ctx, companyID, userID, tx)
	if err != nil {
		return nil, 0, fmt.Errorf("loading existing assets: %w", err)
	}

	index := &AssetIndex{
		CompanyID: companyID,
		UserID:    userID,
		byKey:     make(map[string]int),
		disabled:  make(map[string]bool),
	}

	for _, asset := range existing {
		if asset.ExternalCostCenterID == nil {
			continue
		}
		key := NormalizeExternalKey(*asset.ExternalCostCenterID)
		if !asset.Active {
			index.disabled[key] = true
			continue
		}
		index.byKey[key] = asset.ID
	}

	created := 0
	for _, cc := range costCenters {
		key := NormalizeExternalKey(firstField(cc, costCenterListIDFields))
		if key == SentinelKey {
			// Some accounts nest the identifier one level down.
			for _, field := range []string{"costCenter", "cost_center"} {
				if nested, ok := cc[field].(map[string]interface{}); ok {
					key = NormalizeExternalKey(firstField(nested, nestedIDFields))
					break
				}
			}
		}
		if key == SentinelKey {
			continue
		}
		if _, ok := index.byKey[key]; ok {
			continue
		}
		if index.disabled[key] {
			continue
		}

		name := unnamedCostCenter
		if v, ok := firstField(cc, costCenterListNameFields).(string); ok && v != "" {
			name = v
		}

		id, err := r.createAsset(ctx, tx, index, key, name)
		if err != nil {
			logger.WithError(err).Warnf("skipping cost center %q", key)
			continue
		}
		if id != 0 {
			index.byKey[key] = id
			created++
		}
	}

	if err := r.ensureUnassigned(ctx, tx, index); err != nil {
		return nil, 0, err
	}

	return index, created, nil
}

// Resolve maps a normalized key to an asset id. Unknown non-sentinel keys
// create an asset on the spot (first reconciliation sight); disabled mappings
// and the sentinel fall back to the unassigned asset. The bool result reports
// whether an asset was created.
func (r *AssetResolver) Resolve(ctx context.Context, tx pgx.Tx, index *AssetIndex, key string) (int, bool, error) {
	if id, ok := index.byKey[key]; ok {
		return id, false, nil
	}
	if key == SentinelKey || index.disabled[key] {
		return index.UnassignedID, false, nil
	}

	id, err := r.createAsset(ctx, tx, index, key, key)
	if err != nil {
		return 0, false, err
	}
	if id == 0 {
		// The winning row for this key is disabled.
		index.disabled[key] = true
		return index.UnassignedID, false, nil
	}
	index.byKey[key] = id
	return id, true, nil
}

// createAsset inserts a new asset with the default classification inside a
// savepoint. A uniqueness violation means a concurrent sync won the race, so
// the winner is re-queried instead of failing the batch. Returns 0 when the
// winner is disabled.
func (r *AssetResolver) createAsset(ctx context.Context, tx pgx.Tx, index *AssetIndex, key, name string) (int, error) {
	asset := defaultAsset(index.CompanyID, index.UserID, name)
	asset.ExternalCostCenterID = &key

	err := r.txManager.WithSavepoint(ctx, tx, func(sp pgx.Tx) error {
		return r.assetRepo.Create(ctx, asset, sp)
	})
	if err == nil {
		return asset.ID, nil
	}
	if !repositories.IsUniqueViolation(err) {
		return 0, err
	}

	winner, qerr := r.assetRepo.GetByExternalKey(ctx, index.CompanyID, index.UserID, key, tx)
	if qerr != nil {
		return 0, qerr
	}
	if winner == nil {
		return 0, err
	}
	if !winner.Active {
		return 0, nil
	}
	return winner.ID, nil
}

// ensureUnassigned creates the reserved catch-all asset for (company, user)
// if it does not exist yet. There is exactly one, enforced by a partial
// unique index on the null external key.
func (r *AssetResolver) ensureUnassigned(ctx context.Context, tx pgx.Tx, index *AssetIndex) error {
	unassigned, err := r.assetRepo.GetUnassigned(ctx, index.CompanyID, index.UserID, tx)
	if err != nil {
		return fmt.Errorf("loading unassigned asset: %w", err)
	}
	if unassigned != nil {
		index.UnassignedID = unassigned.ID
		return nil
	}

	asset := defaultAsset(index.CompanyID, index.UserID, models.UnassignedAssetName)
	err = r.txManager.WithSavepoint(ctx, tx, func(sp pgx.Tx) error {
		return r.assetRepo.Create(ctx, asset, sp)
	})
	if err != nil {
		if repositories.IsUniqueViolation(err) {
			winner, qerr := r.assetRepo.GetUnassigned(ctx, index.CompanyID, index.UserID, tx)
			if qerr == nil && winner != nil {
				index.UnassignedID = winner.ID
				return nil
			}
		}
		return fmt.Errorf("creating unassigned asset: %w", err)
	}

	index.UnassignedID = asset.ID
	return nil
}

func defaultAsset(companyID, userID int, name string) *models.Asset {
	return &models.Asset{
		CompanyID:         companyID,
		UserID:            userID,
		Name:              name,
		Status:            models.AssetStatusVacant,
		AssetType:         models.AssetTypeResidential,
		Purpose:           models.AssetPurposeLeaseSale,
		DivestmentGrade:   models.AssetDivestmentModerate,
		Potential:         models.AssetPotentialMedium,
		ParticipationRate: models.DefaultParticipationRate,
		Active:            true,
	}
}
