// Package importer seeds the metadata store from a reconstruction data tree laid out as
// <week>/<author>/<name>/metadata.yaml.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/openreal2sim/review-dashboard/api/v1alpha1"
	"github.com/openreal2sim/review-dashboard/internal/store"
	"github.com/openreal2sim/review-dashboard/internal/store/model"
	"go.uber.org/zap"
	"sigs.k8s.io/yaml"
)

const metadataFile = "metadata.yaml"

// Metadata is the content of a metadata.yaml file. Unknown keys are ignored.
type Metadata struct {
	Prompt  string `json:"prompt"`
	Status  string `json:"status"`
	Pose    string `json:"pose"`
	Gripped bool   `json:"gripped"`
}

type Result struct {
	Examined int
	Imported int
	Skipped  int
	// records held by the store once the import is done
	Stored int64
}

type Importer struct {
	store  store.Store
	dryRun bool
}

func NewImporter(s store.Store, dryRun bool) *Importer {
	return &Importer{store: s, dryRun: dryRun}
}

// Import walks root and upserts one record per reconstruction folder in a single transaction.
// Folders without metadata.yaml are skipped. A file that does not parse is reported and skipped,
// the remaining records are still written.
func (i *Importer) Import(ctx context.Context, root fs.FS) (Result, error) {
	logger := zap.S().Named("importer")

	recs, result, walkErr := Collect(root)
	if walkErr != nil {
		var merr *multierror.Error
		if !errors.As(walkErr, &merr) {
			return result, walkErr
		}
		for _, e := range merr.Errors {
			logger.Warnw("skipping reconstruction", "error", e)
		}
	}

	if i.dryRun {
		for _, r := range recs {
			logger.Infow("would import", "reconstruction", r.Name, "week", r.Week, "author", r.Author, "status", r.Status, "pose", r.Pose)
		}
		if err := i.count(ctx, &result); err != nil {
			return result, err
		}
		return result, walkErr
	}

	if err := i.store.Reconstruction().SetMany(ctx, recs); err != nil {
		result.Skipped += result.Imported
		result.Imported = 0
		return result, fmt.Errorf("failed to write %d reconstructions: %w", len(recs), err)
	}
	if err := i.count(ctx, &result); err != nil {
		return result, err
	}
	logger.Infow("import done", "examined", result.Examined, "imported", result.Imported, "skipped", result.Skipped, "stored", result.Stored)

	return result, walkErr
}

func (i *Importer) count(ctx context.Context, result *Result) error {
	stored, err := i.store.Reconstruction().Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count reconstructions: %w", err)
	}
	result.Stored = stored
	return nil
}

// Collect reads the data tree without touching the store. Parse failures are gathered in a
// *multierror.Error, any other error stops the walk.
func Collect(root fs.FS) (model.ReconstructionList, Result, error) {
	var (
		result Result
		recs   model.ReconstructionList
		errs   *multierror.Error
		seen   = map[string]string{}
	)

	weeks, err := subdirs(root, ".")
	if err != nil {
		return nil, result, err
	}

	for _, week := range weeks {
		authors, err := subdirs(root, week)
		if err != nil {
			return nil, result, err
		}
		for _, author := range authors {
			names, err := subdirs(root, path.Join(week, author))
			if err != nil {
				return nil, result, err
			}
			for _, name := range names {
				result.Examined++
				dir := path.Join(week, author, name)

				content, err := fs.ReadFile(root, path.Join(dir, metadataFile))
				if errors.Is(err, fs.ErrNotExist) {
					result.Skipped++
					continue
				}
				if err != nil {
					return nil, result, err
				}

				var md Metadata
				if err := yaml.Unmarshal(content, &md); err != nil {
					errs = multierror.Append(errs, fmt.Errorf("%s: %w", dir, err))
					result.Skipped++
					continue
				}

				if other, ok := seen[name]; ok {
					errs = multierror.Append(errs, fmt.Errorf("%s: name already imported from %s", dir, other))
					result.Skipped++
					continue
				}
				seen[name] = dir

				recs = append(recs, model.Reconstruction{
					Name:    name,
					Week:    week,
					Author:  author,
					Prompt:  md.Prompt,
					Status:  string(v1alpha1.StringToReconstructionStatus(md.Status)),
					Pose:    string(v1alpha1.StringToPoseStatus(md.Pose)),
					Gripped: md.Gripped,
				})
				result.Imported++
			}
		}
	}

	return recs, result, errs.ErrorOrNil()
}

func subdirs(root fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(root, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
