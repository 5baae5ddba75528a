package etl

import (
	"context"
	"fmt"

	"github.com/provanalytics/provsync/internal/table"
)

type execCall struct {
	query string
	args  map[string]any
}

type insertCall struct {
	target    string
	tbl       *table.Table
	batchSize int
}

// fakeSQL records every call. execRows, when set, decides the affected
// row count per Exec call.
type fakeSQL struct {
	execCalls   []execCall
	execRows    func(query string, args map[string]any) (int64, error)
	queryCalls  []string
	queryResult *table.Table
	queryErr    error
	backupCalls [][2]string
	clearCalls  []string
	insertCalls []insertCall
	insertErr   error
}

var _ SQL = (*fakeSQL)(nil)

func (f *fakeSQL) Query(_ context.Context, query string) (*table.Table, error) {
	f.queryCalls = append(f.queryCalls, query)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.queryResult, nil
}

func (f *fakeSQL) Exec(_ context.Context, query string, args map[string]any) (int64, error) {
	f.execCalls = append(f.execCalls, execCall{query: query, args: args})
	if f.execRows != nil {
		return f.execRows(query, args)
	}
	return 1, nil
}

func (f *fakeSQL) BackupTable(_ context.Context, source, backup string) error {
	f.backupCalls = append(f.backupCalls, [2]string{source, backup})
	return nil
}

func (f *fakeSQL) ClearTable(_ context.Context, name string) (int64, error) {
	f.clearCalls = append(f.clearCalls, name)
	return 0, nil
}

func (f *fakeSQL) InsertBatch(_ context.Context, target string, tbl *table.Table, batchSize int) (int64, error) {
	f.insertCalls = append(f.insertCalls, insertCall{target: target, tbl: tbl, batchSize: batchSize})
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	return int64(tbl.Len()), nil
}

type uploadCall struct {
	folder  string
	name    string
	content []byte
}

type fakeFiles struct {
	downloads map[string][]byte
	uploads   []uploadCall
}

var _ Files = (*fakeFiles)(nil)

func (f *fakeFiles) Download(_ context.Context, path string) ([]byte, error) {
	data, ok := f.downloads[path]
	if !ok {
		return nil, fmt.Errorf("download of %s failed: 404 Not Found", path)
	}
	return data, nil
}

func (f *fakeFiles) Upload(_ context.Context, folder, name string, content []byte) error {
	f.uploads = append(f.uploads, uploadCall{folder: folder, name: name, content: content})
	return nil
}
