package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poserig/combokeys/internal/compiler"
	"github.com/poserig/combokeys/internal/rig"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "rigs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testDocument() *compiler.Document {
	pose := 0.5
	return &compiler.Document{
		Scene: compiler.SceneSpec{
			ShapeKeys: map[string]float64{"Smile": 0, "JawOpen": 0.5},
		},
		Targets: []compiler.TargetSpec{{
			Name: "Smile",
			Drivers: []compiler.DriverSpec{{
				Name: "JawOpen",
				Variables: []compiler.VariableSpec{{
					Pose:    &pose,
					Targets: []compiler.TargetRefSpec{{ShapeKey: "JawOpen"}},
				}},
			}},
		}},
	}
}

func TestOpenAppliesPragmas(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.verifyPragma("journal_mode", "wal"))
	require.NoError(t, s.verifyPragma("foreign_keys", "1"))
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rigs.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := testDocument()
	sc, m := compiler.Build(doc)
	require.NoError(t, s.SaveSnapshot(ctx, "face", doc, sc))

	snap, err := s.LoadSnapshot(ctx, "face")
	require.NoError(t, err)
	assert.Equal(t, "face", snap.Name)
	assert.NotEmpty(t, snap.SavedAt)

	require.Len(t, snap.Document.Targets, 1)
	assert.Equal(t, "Smile", snap.Document.Targets[0].Name)

	// One weight element channel plus the combination channel.
	require.Len(t, snap.Channels, 2)

	identifier := m.Targets()[0].Identifier()
	weights, ok := snap.WeightArrays[rig.WeightArrayName(identifier)]
	require.True(t, ok)
	assert.Len(t, weights, 1)

	assert.Equal(t, 0.5, snap.ShapeKeys["JawOpen"])
}

func TestSnapshotPreservesChannelState(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := testDocument()
	sc, m := compiler.Build(doc)
	require.NoError(t, s.SaveSnapshot(ctx, "face", doc, sc))

	snap, err := s.LoadSnapshot(ctx, "face")
	require.NoError(t, err)

	identifier := m.Targets()[0].Identifier()
	var weightCh, comboCh *ChannelRecord
	for i := range snap.Channels {
		rec := &snap.Channels[i]
		switch {
		case rec.Key.Index >= 0:
			weightCh = rec
		default:
			comboCh = rec
		}
	}
	require.NotNil(t, weightCh)
	require.NotNil(t, comboCh)

	assert.Equal(t, rig.WeightArrayPath(identifier), weightCh.Key.Path)
	assert.Equal(t, "fabs(var-0.5)", weightCh.Driver.Expression)
	require.Len(t, weightCh.Keyframes, 2)
	assert.Equal(t, 0.5, weightCh.Keyframes[1].Co[0])

	assert.Equal(t, `key_blocks["Smile"].value`, comboCh.Key.Path)
	assert.Equal(t, "d0", comboCh.Driver.Expression)
	require.Len(t, comboCh.Driver.Bindings, 1)
	prop, ok := comboCh.Driver.Bindings[0].Value.(rig.PropertyValue)
	require.True(t, ok)
	assert.Equal(t, rig.IDMesh, prop.IDType)

	// Binding round-trips through the tagged encoding unchanged.
	live, ok := sc.Channel(comboCh.Key)
	require.True(t, ok)
	assert.Equal(t, live.Driver.Bindings, comboCh.Driver.Bindings)
}

func TestSaveReplacesPrevious(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := testDocument()
	sc, _ := compiler.Build(doc)
	require.NoError(t, s.SaveSnapshot(ctx, "face", doc, sc))

	doc2 := testDocument()
	doc2.Targets[0].Name = "Frown"
	doc2.Scene.ShapeKeys["Frown"] = 0
	sc2, _ := compiler.Build(doc2)
	require.NoError(t, s.SaveSnapshot(ctx, "face", doc2, sc2))

	loaded, err := s.LoadDocument(ctx, "face")
	require.NoError(t, err)
	require.Len(t, loaded.Targets, 1)
	assert.Equal(t, "Frown", loaded.Targets[0].Name)

	// No stale child rows survive the replace.
	snap, err := s.LoadSnapshot(ctx, "face")
	require.NoError(t, err)
	for _, rec := range snap.Channels {
		assert.NotContains(t, rec.Key.Path, "Smile")
	}
}

func TestListAndDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := testDocument()
	sc, _ := compiler.Build(doc)
	require.NoError(t, s.SaveSnapshot(ctx, "b-face", doc, sc))
	require.NoError(t, s.SaveSnapshot(ctx, "a-face", doc, sc))

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a-face", "b-face"}, names)

	require.NoError(t, s.Delete(ctx, "a-face"))
	names, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b-face"}, names)

	assert.ErrorIs(t, s.Delete(ctx, "a-face"), ErrNotFound)
}

func TestLoadMissingRig(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.LoadDocument(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.LoadSnapshot(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
