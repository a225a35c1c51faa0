// Package dataprocessing turns a directory of enrolment files into an immutable
// Table and answers the aggregate queries the dashboard needs.
//
// # Architecture
//
// The package is organized into four stages:
//
// 1. Loader: validates the data directory and parses every .csv/.xlsx file concurrently
// 2. Normalizer: canonicalises labels, parses dates and coerces counts
// 3. Table: the immutable record set with region filtering
// 4. Aggregator: trend, rankings and headline totals
//
// DatasetCache sits in front of the Loader and reloads only when the file
// listing fingerprint changes (or never, in process mode).
//
// # Usage
//
//	loader := dataprocessing.NewLoader(logger)
//	cache, _ := dataprocessing.NewDatasetCache(loader, dataprocessing.CacheModeModTime, logger)
//	ds, err := cache.Get(ctx, "data")
//	if err != nil {
//	    return err
//	}
//	punjab := ds.Table.Filter("Punjab")
//	headline := dataprocessing.Summarize(punjab)
//	districts, err := dataprocessing.RankDistricts(punjab, 10)
//
// # Data Flow
//
//	Directory → Loader (gota frames, Concat) → Normalizer → Table → Filter → Aggregator
//
// # Error Handling
//
// Directory problems are CONFIG AppErrors wrapping the validation sentinels, or
// ErrEmptyDataset when no file has rows. A grouping over an absent identifier
// column fails with ErrMissingColumn. Bad dates and bad counts are not errors.
package dataprocessing
