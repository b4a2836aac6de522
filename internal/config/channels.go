package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadChannels читает список каналов: по одному на строку, пустые строки пропускаются.
func LoadChannels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	defer f.Close()

	return ReadChannels(f)
}

func ReadChannels(r io.Reader) ([]string, error) {
	var out []string

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan channels: %w", err)
	}
	return out, nil
}

// SplitChannels разворачивает значения --channels, допускающие "a,b".
func SplitChannels(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
