package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"rivet/internal/diag"
	"rivet/internal/observ"
	"rivet/internal/project"
	"rivet/internal/source"
)

// SourceExt — расширение проверяемых файлов.
const SourceExt = ".rv"

// CheckDirOptions настраивает параллельный прогон по директории.
type CheckDirOptions struct {
	MaxDiagnostics int
	Jobs           int
	// Cache — nil отключает кэш результатов.
	Cache *DiskCache
	// Events — nil отключает прогресс; канал закрывает вызывающий.
	Events chan<- Event
}

// CheckDirResult содержит результат проверки одного файла.
type CheckDirResult struct {
	Path      string
	FileID    source.FileID
	Bag       *diag.Bag
	FromCache bool
	Timing    observ.Report
	LoadErr   error
}

// listSourceFiles возвращает отсортированный список всех *.rv в директории.
func listSourceFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, SourceExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// детерминированный порядок
	sort.Strings(files)
	return files, nil
}

// CheckDir проверяет все *.rv файлы в директории параллельно.
func CheckDir(ctx context.Context, dir string, opts CheckDirOptions) (*source.FileSet, []CheckDirResult, error) {
	files, err := listSourceFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	fileSet := source.NewFileSetWithBase(dir)
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	// файлы загружаются до параллельной фазы: FileSet не потокобезопасен
	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error, len(files))
	for _, path := range files {
		emit(opts.Events, Event{File: path, Stage: StageLex, Status: StatusQueued})
		fileID, err := fileSet.Load(path)
		if err != nil {
			loadErrors[path] = err
			continue
		}
		fileIDs[path] = fileID
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if jobs > len(files) {
		jobs = len(files)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]CheckDirResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if loadErr, failed := loadErrors[path]; failed {
				results[i] = CheckDirResult{Path: path, LoadErr: loadErr, Bag: diag.NewBag(opts.MaxDiagnostics)}
				emit(opts.Events, Event{File: path, Stage: StageLex, Status: StatusError})
				return nil
			}
			fileID := fileIDs[path]
			file := fileSet.Get(fileID)
			hash := project.Digest(file.Hash)

			if opts.Cache != nil {
				var payload CheckPayload
				if hit, err := opts.Cache.Get(hash, &payload); err == nil && hit && payload.ContentHash == hash {
					results[i] = CheckDirResult{
						Path:      path,
						FileID:    fileID,
						Bag:       bagFromPayload(&payload, fileID, opts.MaxDiagnostics),
						FromCache: true,
					}
					emit(opts.Events, Event{File: path, Stage: StageCheck, Status: StatusDone})
					return nil
				}
			}

			emit(opts.Events, Event{File: path, Stage: StageParse, Status: StatusWorking})
			res, err := checkLoaded(fileSet, fileID, opts.MaxDiagnostics)
			if err != nil {
				return err
			}
			emit(opts.Events, Event{File: path, Stage: StageCheck, Status: StatusWorking})

			results[i] = CheckDirResult{
				Path:   path,
				FileID: fileID,
				Bag:    res.Bag,
				Timing: res.Timing,
			}
			if opts.Cache != nil {
				// промах кэша не фатален
				_ = opts.Cache.Put(hash, payloadFromBag(path, hash, res.Bag))
			}
			status := StatusDone
			if res.Bag.HasErrors() {
				status = StatusError
			}
			emit(opts.Events, Event{File: path, Stage: StageCheck, Status: status})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}
