// Package project ties the storage repository, the symlink synchronizer, the
// template loader, the retention pruner and the validator together into the
// operations the CLI exposes. Operations over every project run through a
// bounded worker pool and always report results in project list order.
package project
