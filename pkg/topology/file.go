package topology

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/topoview/pkg/errors"
	"github.com/matzehuels/topoview/pkg/scene"
)

// FileSource serves scene graphs from disk. Path is either a single file,
// returned for every request, or a directory holding one file per start
// object named <id>.json, <id>.yaml or <id>.yml.
type FileSource struct {
	Path string
}

var sceneExtensions = []string{".json", ".yaml", ".yml"}

// Fetch reads the scene graph for req. Undecodable files are reported as
// MALFORMED_PAYLOAD, absent ones as FILE_NOT_FOUND.
func (s FileSource) Fetch(ctx context.Context, req scene.Request) (*scene.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.resolve(req.StartID)
	if err != nil {
		return nil, err
	}
	g, err := scene.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedPayload, err, "cannot decode %s", path)
	}
	return g, nil
}

func (s FileSource) resolve(startID string) (string, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "scene source %s", s.Path)
	}
	if !info.IsDir() {
		return s.Path, nil
	}
	if err := errors.ValidateID(startID); err != nil {
		return "", err
	}
	for _, ext := range sceneExtensions {
		p := filepath.Join(s.Path, startID+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", errors.New(errors.ErrCodeFileNotFound, "no scene file for %q in %s", startID, s.Path)
}

// IDs lists the start objects a directory source can serve, sorted. A
// single-file source has none.
func (s FileSource) IDs() ([]string, error) {
	entries, err := os.ReadDir(s.Path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scene source %s", s.Path)
		}
		// Not a directory.
		return nil, nil
	}
	seen := make(map[string]bool)
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if !slices.Contains(sceneExtensions, ext) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ext)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}
