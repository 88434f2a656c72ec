// Package config loads the seeding configuration file and the runner
// settings. The seeding file keeps the historical parallel-array layout;
// package seeding turns it into one record per algorithm.
package config
