package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/cognicore/shiver/pkg/shiver/internalerr"
	"github.com/cognicore/shiver/pkg/shiver/records"
	"github.com/cognicore/shiver/pkg/shiver/store"
)

const backupFormat = "shiver-backup"

// BackupInfo marks a backup file.
type BackupInfo struct {
	Format    string               `json:"format"`
	Version   int                  `json:"version"`
	CreatedAt time.Time            `json:"createdAt"`
	Counts    map[records.Kind]int `json:"counts"`
}

type backupFile struct {
	Info    *BackupInfo        `json:"_backup"`
	Records []records.Envelope `json:"records"`
}

// Backup writes every collection as pretty-printed JSON.
func Backup(ctx context.Context, st store.Store, w io.Writer) error {
	out := backupFile{
		Info: &BackupInfo{
			Format:    backupFormat,
			Version:   1,
			CreatedAt: time.Now().UTC(),
			Counts:    make(map[records.Kind]int),
		},
		Records: []records.Envelope{},
	}
	for _, kind := range records.Kinds() {
		recs, err := st.GetAll(ctx, kind)
		if err != nil {
			return fmt.Errorf("load %s: %w", kind, err)
		}
		for _, rec := range recs {
			env, err := records.Encode(rec)
			if err != nil {
				return err
			}
			out.Records = append(out.Records, env)
		}
		out.Info.Counts[kind] = len(recs)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// Restore adds every record of a backup to st. Records get fresh
// identifiers; routes and creation times are kept. The file is fully
// decoded before anything is written.
func Restore(ctx context.Context, st store.Store, r io.Reader) (int, error) {
	var in backupFile
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return 0, fmt.Errorf("%w: backup: %v", internalerr.ErrInvalidInput, err)
	}
	if in.Info == nil || in.Info.Format != backupFormat {
		return 0, fmt.Errorf("%w: not a backup file (missing _backup)", internalerr.ErrInvalidInput)
	}

	recs := make([]records.Record, 0, len(in.Records))
	for i, env := range in.Records {
		rec, err := records.Decode(env)
		if err != nil {
			return 0, fmt.Errorf("%w: record %d: %v", internalerr.ErrInvalidInput, i, err)
		}
		rec.Meta().ID = 0
		recs = append(recs, rec)
	}

	for i, rec := range recs {
		if _, err := st.Add(ctx, rec); err != nil {
			return i, fmt.Errorf("restore record %d: %w", i, err)
		}
	}
	return len(recs), nil
}
