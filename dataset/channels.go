package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Channel names follow the managed training environment's directory layout:
// one subdirectory per input channel, each holding the channel's data files.
const (
	TrainChannel      = "train"
	ValidationChannel = "validation"
)

// WriteChannels lays out train and validation CSV files under dir the way a
// training job expects its input channels. The validation table may be nil.
func WriteChannels(dir string, train, validation *Table) error {
	if train == nil || train.Len() == 0 {
		return fmt.Errorf("train table is empty")
	}
	trainPath := filepath.Join(dir, TrainChannel, "train.csv")
	if err := train.WriteCSV(trainPath); err != nil {
		return fmt.Errorf("write train channel: %w", err)
	}
	if validation != nil && validation.Len() > 0 {
		valPath := filepath.Join(dir, ValidationChannel, "validation.csv")
		if err := validation.WriteCSV(valPath); err != nil {
			return fmt.Errorf("write validation channel: %w", err)
		}
	}
	return nil
}

// ChannelFile resolves the single data file inside a channel directory. When
// the channel holds several CSVs the lexicographically first one is used.
func ChannelFile(channelDir string) (string, error) {
	entries, err := os.ReadDir(channelDir)
	if err != nil {
		return "", err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".csv") {
			files = append(files, entry.Name())
		}
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no csv file in channel %s", channelDir)
	}
	sort.Strings(files)
	return filepath.Join(channelDir, files[0]), nil
}
