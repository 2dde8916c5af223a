package store

import (
	"context"
	"fmt"

	"github.com/poserig/combokeys/internal/compiler"
	"github.com/poserig/combokeys/internal/scene"
)

// SaveSnapshot stores a named rig wholesale: the compiled document plus
// every synthesized channel, weight array, and shape key value currently
// in the scene. An existing snapshot under the same name is replaced;
// the write is atomic, so readers never see a half-saved rig.
func (s *Store) SaveSnapshot(ctx context.Context, name string, doc *compiler.Document, sc *scene.Scene) error {
	docJSON, err := marshalDocument(doc)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save snapshot: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	// Replacing the rigs row cascades the old child rows away.
	if _, err := tx.ExecContext(ctx, `DELETE FROM rigs WHERE name = ?`, name); err != nil {
		return fmt.Errorf("save snapshot: clear previous: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO rigs (name, document) VALUES (?, ?)
	`, name, docJSON); err != nil {
		return fmt.Errorf("save snapshot: insert rig: %w", err)
	}

	for _, key := range sc.ChannelKeys() {
		ch, ok := sc.Channel(key)
		if !ok {
			continue
		}

		kfsJSON, err := marshalKeyframes(ch.Keyframes)
		if err != nil {
			return fmt.Errorf("save snapshot: channel %s[%d]: %w", key.Path, key.Index, err)
		}
		bindingsJSON, err := marshalBindings(ch.Driver.Bindings)
		if err != nil {
			return fmt.Errorf("save snapshot: channel %s[%d]: %w", key.Path, key.Index, err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO channels
			(rig_name, path, idx, keyframes, extrapolation, driver_type, expression, bindings, muted)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			name,
			key.Path,
			key.Index,
			kfsJSON,
			string(ch.Mode),
			string(ch.Driver.Type),
			ch.Driver.Expression,
			bindingsJSON,
			ch.Muted,
		); err != nil {
			return fmt.Errorf("save snapshot: insert channel: %w", err)
		}
	}

	for _, arrayName := range sc.WeightArrayNames() {
		elements, err := marshalFloats(sc.WeightArray(arrayName))
		if err != nil {
			return fmt.Errorf("save snapshot: weight array %s: %w", arrayName, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO weight_arrays (rig_name, name, elements) VALUES (?, ?, ?)
		`, name, arrayName, elements); err != nil {
			return fmt.Errorf("save snapshot: insert weight array: %w", err)
		}
	}

	for _, keyName := range sc.ShapeKeys() {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO shape_keys (rig_name, name, value) VALUES (?, ?, ?)
		`, name, keyName, sc.ShapeKey(keyName)); err != nil {
			return fmt.Errorf("save snapshot: insert shape key: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save snapshot: commit: %w", err)
	}
	return nil
}

// Delete removes a named rig and everything saved with it.
func (s *Store) Delete(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM rigs WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete rig: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rig: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
