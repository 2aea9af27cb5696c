package assetloader

import (
	"context"
	"fmt"
	"time"

	"github.com/datalens/catalogd/internal/domain"
	"github.com/datalens/catalogd/internal/repository"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader"
)

// AssetLoader batches per-request asset lookups so lineage and favorite
// hydration hit the repository once per tick instead of once per ID.
type AssetLoader struct {
	Loader *dataloader.Loader
}

// NewAssetLoader creates a batched loader over AssetRepository.GetByIDs.
func NewAssetLoader(repo repository.AssetRepository) *AssetLoader {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := make([]uuid.UUID, len(keys))
		for i, k := range keys {
			id, err := uuid.Parse(k.String())
			if err != nil {
				return []*dataloader.Result{{Error: fmt.Errorf("invalid UUID: %w", err)}}
			}
			ids[i] = id
		}

		assets, err := repo.GetByIDs(ctx, ids)
		if err != nil {
			results := make([]*dataloader.Result, len(keys))
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		assetMap := make(map[uuid.UUID]domain.Asset, len(assets))
		for _, a := range assets {
			assetMap[a.ID] = a
		}

		// Results must line up with the key order.
		results := make([]*dataloader.Result, len(keys))
		for i, id := range ids {
			if a, ok := assetMap[id]; ok {
				results[i] = &dataloader.Result{Data: a}
			} else {
				results[i] = &dataloader.Result{Data: nil}
			}
		}

		return results
	}

	loader := dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(5*time.Millisecond))

	return &AssetLoader{Loader: loader}
}

// LoadMany resolves a batch of asset IDs through the loader, dropping IDs
// that no longer exist.
func (l *AssetLoader) LoadMany(ctx context.Context, ids []uuid.UUID) ([]domain.Asset, error) {
	if len(ids) == 0 {
		return []domain.Asset{}, nil
	}

	keys := make(dataloader.Keys, len(ids))
	for i, id := range ids {
		keys[i] = dataloader.StringKey(id.String())
	}

	thunk := l.Loader.LoadMany(ctx, keys)
	values, errs := thunk()
	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("failed to batch-load assets: %w", err)
		}
	}

	assets := make([]domain.Asset, 0, len(values))
	for _, value := range values {
		if a, ok := value.(domain.Asset); ok {
			assets = append(assets, a)
		}
	}
	return assets, nil
}
