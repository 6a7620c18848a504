//go:build race

package batchpar_test

const raceEnabled = true
