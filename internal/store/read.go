package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/poserig/combokeys/internal/compiler"
	"github.com/poserig/combokeys/internal/curve"
	"github.com/poserig/combokeys/internal/rig"
)

// ChannelRecord is one saved animation channel.
type ChannelRecord struct {
	Key           rig.ChannelKey
	Keyframes     []curve.Keyframe
	Extrapolation curve.Extrapolation
	Driver        rig.ScriptedDriver
	Muted         bool
}

// Snapshot is one fully loaded rig.
type Snapshot struct {
	Name         string
	SavedAt      string
	Document     *compiler.Document
	Channels     []ChannelRecord
	WeightArrays map[string][]float64
	ShapeKeys    map[string]float64
}

// List returns every saved rig name in sorted order.
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM rigs ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list rigs: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list rigs: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rigs: %w", err)
	}
	return names, nil
}

// LoadDocument returns just the compiled document of a saved rig.
func (s *Store) LoadDocument(ctx context.Context, name string) (*compiler.Document, error) {
	var docJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT document FROM rigs WHERE name = ?
	`, name).Scan(&docJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	return unmarshalDocument(docJSON)
}

// LoadSnapshot returns a saved rig in full: document, channels, weight
// arrays, and shape key values. Channels come back ordered by path then
// index, so traversal is deterministic.
func (s *Store) LoadSnapshot(ctx context.Context, name string) (*Snapshot, error) {
	snap := &Snapshot{
		Name:         name,
		WeightArrays: map[string][]float64{},
		ShapeKeys:    map[string]float64{},
	}

	var docJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT document, saved_at FROM rigs WHERE name = ?
	`, name).Scan(&docJSON, &snap.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if snap.Document, err = unmarshalDocument(docJSON); err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	if snap.Channels, err = s.loadChannels(ctx, name); err != nil {
		return nil, err
	}
	if err := s.loadWeightArrays(ctx, name, snap.WeightArrays); err != nil {
		return nil, err
	}
	if err := s.loadShapeKeys(ctx, name, snap.ShapeKeys); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Store) loadChannels(ctx context.Context, name string) ([]ChannelRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, idx, keyframes, extrapolation, driver_type, expression, bindings, muted
		FROM channels
		WHERE rig_name = ?
		ORDER BY path ASC, idx ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("load channels: %w", err)
	}
	defer rows.Close()

	var records []ChannelRecord
	for rows.Next() {
		var (
			rec           ChannelRecord
			kfsJSON       string
			extrapolation string
			driverType    string
			bindingsJSON  string
		)
		if err := rows.Scan(
			&rec.Key.Path, &rec.Key.Index,
			&kfsJSON, &extrapolation,
			&driverType, &rec.Driver.Expression, &bindingsJSON,
			&rec.Muted,
		); err != nil {
			return nil, fmt.Errorf("load channels: %w", err)
		}

		rec.Extrapolation = curve.Extrapolation(extrapolation)
		rec.Driver.Type = rig.DriverType(driverType)
		if rec.Keyframes, err = unmarshalKeyframes(kfsJSON); err != nil {
			return nil, fmt.Errorf("load channels: %w", err)
		}
		if rec.Driver.Bindings, err = unmarshalBindings(bindingsJSON); err != nil {
			return nil, fmt.Errorf("load channels: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load channels: %w", err)
	}
	return records, nil
}

func (s *Store) loadWeightArrays(ctx context.Context, name string, out map[string][]float64) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, elements FROM weight_arrays WHERE rig_name = ?
	`, name)
	if err != nil {
		return fmt.Errorf("load weight arrays: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var arrayName, elements string
		if err := rows.Scan(&arrayName, &elements); err != nil {
			return fmt.Errorf("load weight arrays: %w", err)
		}
		values, err := unmarshalFloats(elements)
		if err != nil {
			return fmt.Errorf("load weight arrays: %w", err)
		}
		out[arrayName] = values
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load weight arrays: %w", err)
	}
	return nil
}

func (s *Store) loadShapeKeys(ctx context.Context, name string, out map[string]float64) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, value FROM shape_keys WHERE rig_name = ?
	`, name)
	if err != nil {
		return fmt.Errorf("load shape keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var keyName string
		var value float64
		if err := rows.Scan(&keyName, &value); err != nil {
			return fmt.Errorf("load shape keys: %w", err)
		}
		out[keyName] = value
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load shape keys: %w", err)
	}
	return nil
}
