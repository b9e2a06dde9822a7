package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/omr-eval/internal/config"
	"github.com/ironsheep/omr-eval/internal/imaging"
	"github.com/ironsheep/omr-eval/internal/omr"
	"github.com/ironsheep/omr-eval/internal/omr/omrtest"
	"github.com/ironsheep/omr-eval/internal/scoring"
)

func newEvaluator(t *testing.T) *omr.Evaluator {
	t.Helper()
	cfg := config.Default()
	cfg.Sheet.Rows = 4
	cfg.Subjects.Count = 2
	cfg.Subjects.QuestionsPerSubject = 2
	ev, err := omr.New(cfg)
	require.NoError(t, err)
	return ev
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.PNG", "a.jpg", "notes.txt", "c.webp"} {
		writeFile(t, filepath.Join(dir, name), []byte("x"))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))

	paths, err := Collect(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.PNG"),
		filepath.Join(dir, "c.webp"),
	}, paths)

	_, err = Collect(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestStemAndOverlayPath(t *testing.T) {
	assert.Equal(t, "21CS042", Stem("/scans/21CS042.jpg"))
	assert.Equal(t, filepath.Join("out", "21CS042_overlay.png"), OverlayPath("out", "/scans/21CS042.jpg"))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "overlays")

	writeFile(t, filepath.Join(dir, "01.png"), omrtest.PNG(omrtest.Draw(omrtest.Rows(0, 1, 2, 3))))
	writeFile(t, filepath.Join(dir, "02.png"), omrtest.PNG(omrtest.Draw(omrtest.Rows(3, 3, 3, 3))))
	writeFile(t, filepath.Join(dir, "03.png"), []byte("not an image"))
	writeFile(t, filepath.Join(dir, "04.png"), omrtest.PNG(omrtest.Blank(600, 300)))

	paths, err := Collect(dir)
	require.NoError(t, err)

	key := scoring.AnswerKey{"1": "A", "2": "B", "3": "C", "4": "D"}
	r := NewRunner(newEvaluator(t), FixedKey("A", key), 2, outDir, nil)

	items, err := r.Run(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, items, 4)

	for i, item := range items {
		assert.Equal(t, paths[i], item.Path)
	}

	require.NoError(t, items[0].Err)
	assert.Equal(t, 4, items[0].Outcome.Result.Total)
	assert.Equal(t, "A", items[0].Set)
	assert.FileExists(t, items[0].OverlayPath)

	require.NoError(t, items[1].Err)
	assert.Equal(t, 1, items[1].Outcome.Result.Total)

	var decodeErr *imaging.DecodeError
	assert.True(t, errors.As(items[2].Err, &decodeErr))
	assert.Nil(t, items[2].Outcome)

	require.NoError(t, items[3].Err)
	assert.Equal(t, 0, items[3].Outcome.Result.Total)
}

func TestRun_NoOverlayDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sheet.png")
	writeFile(t, path, omrtest.PNG(omrtest.Draw(omrtest.Rows(0, 0, 0, 0))))

	r := NewRunner(newEvaluator(t), FixedKey("", scoring.AnswerKey{"1": "A"}), 1, "", nil)
	items, err := r.Run(context.Background(), []string{path})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Empty(t, items[0].OverlayPath)
	assert.Equal(t, 1, items[0].Outcome.Result.Total)
}

func TestRun_Cancelled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sheet.png")
	writeFile(t, path, omrtest.PNG(omrtest.Blank(100, 100)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(newEvaluator(t), FixedKey("", nil), 1, "", nil)
	_, err := r.Run(ctx, []string{path, path})
	assert.ErrorIs(t, err, context.Canceled)
}
