package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var (
	ErrTimezonesNotFound = errors.New("could not find timezones file in any config path")
	ErrInvalidTimezone   = errors.New("invalid timezone line")
)

// TimezoneEntry is a single named UTC offset.
type TimezoneEntry struct {
	Name   string
	Offset float64 // hours, may be fractional (e.g. 5.5)
}

// LoadTimezones loads the timezone table. An explicit path is tried first,
// then timezones.csv inside configDir and the usual config paths.
func LoadTimezones(path, configDir string) ([]TimezoneEntry, error) {
	if path != "" {
		return loadTimezonesFromPath(path)
	}

	searchPaths := []string{}
	if configDir != "" {
		searchPaths = append(searchPaths, configDir)
	}

	paths, err := configPaths()
	if err != nil {
		return nil, err
	}

	searchPaths = append(searchPaths, paths...)

	for _, dir := range searchPaths {
		if entries, err := loadTimezonesFromPath(dir + "/timezones.csv"); err == nil {
			return entries, nil
		}
	}

	return nil, ErrTimezonesNotFound
}

// loadTimezonesFromPath reads NAME,offset lines from a file.
func loadTimezonesFromPath(path string) ([]TimezoneEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open timezones file: %w", err)
	}
	defer f.Close()

	entries, err := ParseTimezones(bufio.NewScanner(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return entries, nil
}

// ParseTimezones parses NAME,offset lines. Blank lines and # comments are skipped.
func ParseTimezones(scanner *bufio.Scanner) ([]TimezoneEntry, error) {
	var entries []TimezoneEntry

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, offsetStr, ok := strings.Cut(line, ",")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: line %d", ErrInvalidTimezone, lineNo)
		}

		offset, err := strconv.ParseFloat(strings.TrimSpace(offsetStr), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidTimezone, lineNo, err)
		}

		entries = append(entries, TimezoneEntry{Name: name, Offset: offset})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read timezones: %w", err)
	}

	return entries, nil
}
