package parallel

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gitrdm/gokanprop/pkg/cp"
	"github.com/gitrdm/gokanprop/pkg/modelfile"
)

// Result is the outcome of propagating one model file.
type Result struct {
	Path  string
	Model *modelfile.Model
	Err   error
}

// PropagateFiles loads each model file, builds it on its own store and
// propagates it, running at most workers files at a time. Results are
// returned in the order of paths. A file that cannot be loaded or built
// only sets the Err of its Result; the returned error is non-nil only when
// ctx is done before every file was processed.
//
// config is shared by all stores, so its Logger and Metrics must be safe for
// concurrent use (logrus loggers and Prometheus collectors are).
func PropagateFiles(ctx context.Context, paths []string, workers int, config *cp.Config) ([]Result, error) {
	if config == nil {
		config = cp.DefaultConfig()
	}
	log := config.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	results := make([]Result, len(paths))
	for i, path := range paths {
		results[i].Path = path
	}
	pool := NewWorkerPool(ctx, workers)
	for i := range paths {
		r := &results[i]
		err := pool.Submit(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				r.Err = err
				return nil
			}
			r.Model, r.Err = propagateFile(r.Path, config)
			entry := log.WithField("file", r.Path)
			if r.Err != nil {
				entry.WithError(r.Err).Debug("file rejected")
			} else {
				entry.WithField("outcome", r.Model.Outcome.String()).Debug("file propagated")
			}
			return nil
		})
		if err != nil {
			r.Err = err
		}
	}
	if err := pool.Wait(); err != nil {
		return results, errors.Wrap(err, "batch failed")
	}
	if err := ctx.Err(); err != nil {
		for i := range results {
			if results[i].Model == nil && results[i].Err == nil {
				results[i].Err = err
			}
		}
		return results, errors.Wrap(err, "batch interrupted")
	}
	return results, nil
}

func propagateFile(path string, config *cp.Config) (*modelfile.Model, error) {
	f, err := modelfile.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return f.Build(config)
}
