//go:build !race

package batchpar_test

const raceEnabled = false
