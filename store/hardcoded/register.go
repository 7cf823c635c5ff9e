package hardcoded

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/mwantia/didmeta/data"
)

// RegisterDID inserts a new DID row. Additional fixed columns may be passed
// through did.Meta.
func (s *Store) RegisterDID(ctx context.Context, did *data.DID) error {
	if did == nil || did.Scope == "" || did.Name == "" {
		return fmt.Errorf("%w: scope and name are required", data.ErrInvalidObject)
	}
	if _, err := data.ParseDIDType(string(did.Type)); err != nil {
		return err
	}

	now := s.timestamp()
	createdAt := did.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	columns := []string{"scope", "name", "did_type", "account", "bytes", "length", "events", "guid", "adler32", "md5", "created_at", "updated_at"}
	args := []any{did.Scope, did.Name, string(did.Type), did.Account, did.Bytes, did.Length, did.Events,
		nullString(did.GUID), nullString(did.Adler32), nullString(did.MD5), createdAt.UTC(), now}

	for _, key := range slices.Sorted(maps.Keys(did.Meta)) {
		if slices.Contains(columns, key) || !data.IsMutableColumn(key) {
			return fmt.Errorf("%w: %s cannot be passed as additional column", data.ErrInvalidMetadata, key)
		}
		v, err := columnValue(key, did.Meta[key])
		if err != nil {
			return err
		}
		columns = append(columns, key)
		args = append(args, v)
	}

	query := fmt.Sprintf("INSERT INTO dids (%s) VALUES (%s)",
		strings.Join(columns, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "))

	return s.db.RunInTx(ctx, func(ctx context.Context) error {
		exists, err := s.Exists(ctx, did.Scope, did.Name)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", data.ErrDuplicate, did.Ref())
		}

		if _, err := s.db.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to register %s: %w", did.Ref(), err)
		}

		s.log.Debug("Registered %s %s", did.Type, did.Ref())
		return nil
	})
}

// Attach adds children to a collection and re-aggregates it. Datasets hold
// files only; containers hold datasets and containers.
func (s *Store) Attach(ctx context.Context, scope, name string, children []data.DIDRef) error {
	return s.db.RunInTx(ctx, func(ctx context.Context) error {
		parentType, err := s.Type(ctx, scope, name)
		if err != nil {
			return err
		}
		if !parentType.IsCollection() {
			return fmt.Errorf("%w: %s:%s is a %s and cannot have content", data.ErrUnsupportedOperation, scope, name, parentType)
		}

		for _, ref := range children {
			if err := s.attachOne(ctx, scope, name, parentType, ref); err != nil {
				return err
			}
		}

		return s.reaggregate(ctx, data.DIDRef{Scope: scope, Name: name})
	})
}

func (s *Store) attachOne(ctx context.Context, scope, name string, parentType data.DIDType, ref data.DIDRef) error {
	child, err := s.Get(ctx, ref.Scope, ref.Name)
	if err != nil {
		return err
	}

	childType, _ := child["did_type"].(data.DIDType)
	switch {
	case parentType == data.DIDTypeDataset && childType != data.DIDTypeFile:
		return fmt.Errorf("%w: datasets can only contain files, %s is a %s", data.ErrUnsupportedOperation, ref, childType)
	case parentType == data.DIDTypeContainer && !childType.IsCollection():
		return fmt.Errorf("%w: containers can only contain collections, %s is a %s", data.ErrUnsupportedOperation, ref, childType)
	}

	_, err = s.db.Exec(ctx, `INSERT INTO contents (scope, name, child_scope, child_name, did_type, child_type, bytes, events, guid, adler32, md5, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		scope, name, ref.Scope, ref.Name, string(parentType), string(childType),
		child["bytes"], child["events"], child["guid"], child["adler32"], child["md5"], s.timestamp())
	if err != nil {
		return fmt.Errorf("failed to attach %s to %s:%s: %w", ref, scope, name, err)
	}
	return nil
}

// AddReplica records a replica of a file on a storage location and accounts
// for it in the location usage counter.
func (s *Store) AddReplica(ctx context.Context, rseID, scope, name string) error {
	return s.db.RunInTx(ctx, func(ctx context.Context) error {
		bytes, adler32, err := s.fileSize(ctx, scope, name)
		if err != nil {
			return err
		}

		if _, err := s.db.Exec(ctx, "INSERT INTO replicas (rse_id, scope, name, bytes, adler32, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			rseID, scope, name, bytes, adler32, s.timestamp()); err != nil {
			return fmt.Errorf("failed to add replica of %s:%s on %s: %w", scope, name, rseID, err)
		}

		return s.rses.Increase(ctx, rseID, 1, bytes)
	})
}

// AddLock records a rule lock on a file replica and accounts for it in the
// account usage counter.
func (s *Store) AddLock(ctx context.Context, ruleID, rseID, account, scope, name string) error {
	return s.db.RunInTx(ctx, func(ctx context.Context) error {
		bytes, _, err := s.fileSize(ctx, scope, name)
		if err != nil {
			return err
		}

		if _, err := s.db.Exec(ctx, "INSERT INTO locks (scope, name, rule_id, rse_id, account, bytes, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			scope, name, ruleID, rseID, account, bytes, s.timestamp()); err != nil {
			return fmt.Errorf("failed to add lock %s on %s:%s: %w", ruleID, scope, name, err)
		}

		return s.accounts.Increase(ctx, rseID, account, 1, bytes)
	})
}

// AddDatasetLock records a rule lock on a collection, copying its current
// length and size.
func (s *Store) AddDatasetLock(ctx context.Context, ruleID, rseID, account, scope, name string) error {
	return s.db.RunInTx(ctx, func(ctx context.Context) error {
		meta, err := s.Get(ctx, scope, name)
		if err != nil {
			return err
		}

		if _, err := s.db.Exec(ctx, `INSERT INTO dataset_locks (scope, name, rule_id, rse_id, account, length, bytes, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			scope, name, ruleID, rseID, account, meta["length"], meta["bytes"], s.timestamp()); err != nil {
			return fmt.Errorf("failed to add dataset lock %s on %s:%s: %w", ruleID, scope, name, err)
		}
		return nil
	})
}

// AddRequest records a pending transfer of a file and returns its id.
func (s *Store) AddRequest(ctx context.Context, scope, name, destRSEID string) (string, error) {
	id := uuid.NewString()

	err := s.db.RunInTx(ctx, func(ctx context.Context) error {
		bytes, adler32, err := s.fileSize(ctx, scope, name)
		if err != nil {
			return err
		}

		if _, err := s.db.Exec(ctx, "INSERT INTO requests (id, scope, name, dest_rse_id, bytes, adler32, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			id, scope, name, destRSEID, bytes, adler32, s.timestamp()); err != nil {
			return fmt.Errorf("failed to add request for %s:%s: %w", scope, name, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return id, nil
}

// RequestBytes returns the size recorded on a transfer request.
func (s *Store) RequestBytes(ctx context.Context, id string) (int64, error) {
	var bytes int64
	if err := s.db.QueryRow(ctx, "SELECT COALESCE(bytes, 0) FROM requests WHERE id = ?", id).Scan(&bytes); err != nil {
		return 0, fmt.Errorf("failed to read request %s: %w", id, err)
	}
	return bytes, nil
}

func (s *Store) fileSize(ctx context.Context, scope, name string) (int64, any, error) {
	meta, err := s.Get(ctx, scope, name)
	if err != nil {
		return 0, nil, err
	}
	if meta["did_type"] != data.DIDTypeFile {
		return 0, nil, fmt.Errorf("%w: %s:%s is not a file", data.ErrUnsupportedOperation, scope, name)
	}

	bytes, _ := data.ToInt64(meta["bytes"])
	return bytes, meta["adler32"], nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
