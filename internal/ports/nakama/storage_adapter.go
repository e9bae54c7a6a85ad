package nakama

import (
	"context"
	"fmt"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"

	"hitstory/internal/ports"
)

// StorageEngine is the slice of runtime.NakamaModule the snapshot adapter uses.
type StorageEngine interface {
	StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error)
	StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error)
	StorageDelete(ctx context.Context, deletes []*runtime.StorageDelete) error
}

// NakamaSnapshotAdapter implements ports.SnapshotPort over Nakama storage,
// scoped to one user. Clients may read their documents but only the server writes.
type NakamaSnapshotAdapter struct {
	nk     StorageEngine
	userID string
}

// NewNakamaSnapshotAdapter creates a snapshot adapter for userID.
func NewNakamaSnapshotAdapter(nk StorageEngine, userID string) *NakamaSnapshotAdapter {
	return &NakamaSnapshotAdapter{nk: nk, userID: userID}
}

func (a *NakamaSnapshotAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	objects, err := a.nk.StorageRead(ctx, []*runtime.StorageRead{{
		Collection: StorageCollection,
		Key:        key,
		UserID:     a.userID,
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	for _, obj := range objects {
		if obj.GetKey() == key {
			return []byte(obj.GetValue()), nil
		}
	}
	return nil, ports.ErrSnapshotNotFound
}

func (a *NakamaSnapshotAdapter) Set(ctx context.Context, key string, data []byte) error {
	_, err := a.nk.StorageWrite(ctx, []*runtime.StorageWrite{{
		Collection:      StorageCollection,
		Key:             key,
		UserID:          a.userID,
		Value:           string(data),
		PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (a *NakamaSnapshotAdapter) Clear(ctx context.Context, key string) error {
	if err := a.nk.StorageDelete(ctx, []*runtime.StorageDelete{{
		Collection: StorageCollection,
		Key:        key,
		UserID:     a.userID,
	}}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

var _ ports.SnapshotPort = (*NakamaSnapshotAdapter)(nil)
